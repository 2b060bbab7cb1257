// internal/game/messages.go
package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the tag of an inbound client message.
type MessageType string

const (
	MsgCreateGame             MessageType = "CreateGame"
	MsgJoinGame               MessageType = "JoinGame"
	MsgDeleteGame             MessageType = "DeleteGame"
	MsgStartButtonClicked     MessageType = "StartButtonClicked"
	MsgLeaveGame              MessageType = "LeaveGame"
	MsgStitchGoal             MessageType = "StitchGoal"
	MsgLayCard                MessageType = "LayCard"
	MsgRuleChangeRequest      MessageType = "RuleChangeRequest"
	MsgChangeStitchPrediction MessageType = "ChangeStitchPrediction"
	MsgChangeCard             MessageType = "ChangeCard"
	MsgRequestSelectedRole    MessageType = "RequestSelectedRole"
	MsgVoteForWinner          MessageType = "VoteForWinner"
)

var (
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrMalformedMessage = errors.New("malformed message")
)

// ClientMessage is the single tagged message a client sends. Only the fields of the tag are set.
type ClientMessage struct {
	Type MessageType `json:"type"`

	GameID *int `json:"gameID,omitempty"`
	Goal   *int `json:"goal,omitempty"`

	Card          *Card  `json:"card,omitempty"`
	SelectedColor *Color `json:"selectedColor,omitempty"`

	Rule RuleKey `json:"rule,omitempty"`

	// Value is a string for RuleChangeRequest and VoteForWinner, an int for ChangeStitchPrediction.
	Value json.RawMessage `json:"value,omitempty"`

	RoleName string `json:"roleName,omitempty"`
}

// DecodeClientMessage parses and validates one inbound frame.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := msg.validate(); err != nil {
		return msg, err
	}
	return msg, nil
}

func (m ClientMessage) validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %s", ErrMalformedMessage, m.Type, field)
	}
	switch m.Type {
	case MsgCreateGame, MsgStartButtonClicked:
	case MsgJoinGame, MsgLeaveGame, MsgDeleteGame:
		if m.GameID == nil {
			return missing("gameID")
		}
	case MsgStitchGoal:
		if m.Goal == nil {
			return missing("goal")
		}
	case MsgLayCard, MsgChangeCard:
		if m.Card == nil {
			return missing("card")
		}
	case MsgRuleChangeRequest:
		if m.Rule == "" {
			return missing("rule")
		}
		if _, err := m.StringValue(); err != nil {
			return err
		}
	case MsgChangeStitchPrediction:
		if _, err := m.IntValue(); err != nil {
			return err
		}
	case MsgVoteForWinner:
		if _, err := m.StringValue(); err != nil {
			return err
		}
	case MsgRequestSelectedRole:
		if m.RoleName == "" {
			return missing("roleName")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
	return nil
}

// IntValue decodes Value as an integer.
func (m ClientMessage) IntValue() (int, error) {
	var v int
	if len(m.Value) == 0 {
		return 0, fmt.Errorf("%w: %s requires value", ErrMalformedMessage, m.Type)
	}
	if err := json.Unmarshal(m.Value, &v); err != nil {
		return 0, fmt.Errorf("%w: value: %v", ErrMalformedMessage, err)
	}
	return v, nil
}

// StringValue decodes Value as a string.
func (m ClientMessage) StringValue() (string, error) {
	var v string
	if len(m.Value) == 0 {
		return "", fmt.Errorf("%w: %s requires value", ErrMalformedMessage, m.Type)
	}
	if err := json.Unmarshal(m.Value, &v); err != nil {
		return "", fmt.Errorf("%w: value: %v", ErrMalformedMessage, err)
	}
	return v, nil
}

// EventType is the tag of an outbound server message.
type EventType string

const (
	EvGameCreated                EventType = "GameCreated"
	EvGameInfo                   EventType = "GameInfo"
	EvRuleChange                 EventType = "RuleChange"
	EvRound                      EventType = "Round"
	EvIsPredict                  EventType = "IsPredict"
	EvStitchGoal                 EventType = "StitchGoal"
	EvHasPredicted               EventType = "HasPredicted"
	EvAcceptedGoal               EventType = "AcceptedGoal"
	EvCards                      EventType = "Cards"
	EvTrump                      EventType = "Trump"
	EvPlayerCard                 EventType = "PlayerCard"
	EvCurrentPlayer              EventType = "CurrentPlayer"
	EvWinner                     EventType = "Winner"
	EvClearForNewSubRound        EventType = "ClearForNewSubRound"
	EvUpdateDoneStitches         EventType = "UpdateDoneStitches"
	EvResults                    EventType = "Results"
	EvEndGame                    EventType = "EndGame"
	EvGameStarted                EventType = "GameStarted"
	EvOpenGames                  EventType = "OpenGames"
	EvRedirectHome               EventType = "RedirectHome"
	EvSelectedRoles              EventType = "SelectedRoles"
	EvCurrentRoleSelectingPlayer EventType = "CurrentRoleSelectingPlayer"
	EvShowChangeStitchModal      EventType = "ShowChangeStitchModal"
	EvShowWinnerPollModal        EventType = "ShowWinnerPollModal"
	EvSevenPointFiveUsed         EventType = "SevenPointFiveUsed"
	EvLoginResponse              EventType = "LoginResponse"
)

// Event is any outbound message. All implementations embed header, which puts the
// "type" tag next to the payload fields.
type Event interface {
	EventType() EventType
}

type header struct {
	Type EventType `json:"type"`
}

func (h header) EventType() EventType { return h.Type }

type GameCreatedEvent struct {
	header
	GameID int `json:"gameID"`
}

type GameInfoEvent struct {
	header
	Players []string `json:"players"`
}

type RuleChangeEvent struct {
	header
	Rules RuleSet `json:"rules"`
}

type RoundEvent struct {
	header
	Round     int    `json:"round"`
	FirstCome string `json:"firstCome"`
}

type IsPredictEvent struct {
	header
	IsPredict bool `json:"isPredict"`
}

type StitchGoalEvent struct {
	header
	Name string `json:"name"`
	Goal int    `json:"goal"`
}

type HasPredictedEvent struct {
	header
	Name string `json:"name"`
}

type CardsEvent struct {
	header
	Cards   []Card `json:"cards"`
	NewCard *Card  `json:"newCard"`
}

type TrumpEvent struct {
	header
	Trump   Card           `json:"trump"`
	Shifted map[string]int `json:"shifted"`
}

type PlayerCardEvent struct {
	header
	Card LaidCard `json:"card"`
}

type CurrentPlayerEvent struct {
	header
	Player string `json:"player"`
}

type WinnerEvent struct {
	header
	Winner *string `json:"winner"`
}

type UpdateDoneStitchesEvent struct {
	header
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

type ResultsEvent struct {
	header
	Results map[string]int `json:"results"`
}

// PlayerPoints is one scoreboard line. Roles is omitted when roles are secret.
type PlayerPoints struct {
	Player string   `json:"player"`
	Points int      `json:"points"`
	Roles  []string `json:"roles,omitempty"`
}

type EndGameEvent struct {
	header
	Players []PlayerPoints `json:"players"`
}

type GameStartedEvent struct {
	header
	Players []string `json:"players"`
}

// GameData describes an open lobby.
type GameData struct {
	Owner string `json:"owner"`
	ID    int    `json:"id"`
}

type OpenGamesEvent struct {
	header
	Games []GameData `json:"games"`
}

type SelectedRolesEvent struct {
	header
	Roles map[string]string `json:"roles"`
}

type CurrentRoleSelectingPlayerEvent struct {
	header
	CurrentPlayer string `json:"currentPlayer"`
}

type ShowModalEvent struct {
	header
	Show bool `json:"show"`
}

// LoginResponseEvent confirms the resolved identity right after connecting. Username is null
// when resolution failed, just before the server closes the socket.
type LoginResponseEvent struct {
	header
	Username *string `json:"username"`
}

// SimpleEvent carries no payload (AcceptedGoal, ClearForNewSubRound, RedirectHome, SevenPointFiveUsed).
type SimpleEvent struct {
	header
}

func simple(t EventType) SimpleEvent { return SimpleEvent{header{t}} }

func NewGameCreated(id int) GameCreatedEvent {
	return GameCreatedEvent{header{EvGameCreated}, id}
}

func NewOpenGames(games []GameData) OpenGamesEvent {
	if games == nil {
		games = []GameData{}
	}
	return OpenGamesEvent{header{EvOpenGames}, games}
}

func NewRedirectHome() SimpleEvent { return simple(EvRedirectHome) }

func NewLoginResponse(username *string) LoginResponseEvent {
	return LoginResponseEvent{header{EvLoginResponse}, username}
}

func newGameInfo(players []string) GameInfoEvent {
	return GameInfoEvent{header{EvGameInfo}, append([]string(nil), players...)}
}

func newRuleChange(rules RuleSet) RuleChangeEvent {
	return RuleChangeEvent{header{EvRuleChange}, rules.Clone()}
}

func newCards(hand []Card, newCard *Card) CardsEvent {
	cards := append([]Card{}, hand...)
	return CardsEvent{header{EvCards}, cards, newCard}
}

func newShowModal(t EventType, show bool) ShowModalEvent {
	return ShowModalEvent{header{t}, show}
}
