package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"LayCard","card":{"color":"Spezial","value":7.5},"selectedColor":"Grün"}`))
	require.NoError(t, err)
	assert.Equal(t, MsgLayCard, msg.Type)
	assert.Equal(t, SevenPointFive, *msg.Card)
	require.NotNil(t, msg.SelectedColor)
	assert.Equal(t, Green, *msg.SelectedColor)

	msg, err = DecodeClientMessage([]byte(`{"type":"ChangeStitchPrediction","value":-1}`))
	require.NoError(t, err)
	v, err := msg.IntValue()
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	msg, err = DecodeClientMessage([]byte(`{"type":"RuleChangeRequest","rule":"Punkte","value":"Max. 30"}`))
	require.NoError(t, err)
	s, err := msg.StringValue()
	require.NoError(t, err)
	assert.Equal(t, PointsMax30, s)

	msg, err = DecodeClientMessage([]byte(`{"type":"JoinGame","gameID":0}`))
	require.NoError(t, err)
	assert.Equal(t, 0, *msg.GameID)
}

func TestDecodeClientMessageErrors(t *testing.T) {
	cases := map[string]struct {
		data string
		want error
	}{
		"not json":          {`{"type":`, ErrMalformedMessage},
		"unknown tag":       {`{"type":"Dance"}`, ErrUnknownMessage},
		"missing tag":       {`{}`, ErrUnknownMessage},
		"join without id":   {`{"type":"JoinGame"}`, ErrMalformedMessage},
		"goal without goal": {`{"type":"StitchGoal"}`, ErrMalformedMessage},
		"card without card": {`{"type":"LayCard"}`, ErrMalformedMessage},
		"vote with number":  {`{"type":"VoteForWinner","value":3}`, ErrMalformedMessage},
		"revision as text":  {`{"type":"ChangeStitchPrediction","value":"up"}`, ErrMalformedMessage},
		"role without name": {`{"type":"RequestSelectedRole"}`, ErrMalformedMessage},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClientMessage([]byte(tc.data))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEventEncoding(t *testing.T) {
	cases := []struct {
		ev   Event
		want string
	}{
		{NewGameCreated(3), `{"type":"GameCreated","gameID":3}`},
		{NewRedirectHome(), `{"type":"RedirectHome"}`},
		{WinnerEvent{header{EvWinner}, nil}, `{"type":"Winner","winner":null}`},
		{NewOpenGames(nil), `{"type":"OpenGames","games":[]}`},
		{NewOpenGames([]GameData{{Owner: "alice", ID: 2}}), `{"type":"OpenGames","games":[{"owner":"alice","id":2}]}`},
		{
			PlayerCardEvent{header{EvPlayerCard}, LaidCard{Card: Card{Red, 9.75}, Player: "bob", Original: NinePointSevenFive}},
			`{"type":"PlayerCard","card":{"card":{"color":"Rot","value":9.75},"player":"bob"}}`,
		},
		{newCards([]Card{{Blue, 4}}, nil), `{"type":"Cards","cards":[{"color":"Blau","value":4}],"newCard":null}`},
		{
			EndGameEvent{header{EvEndGame}, []PlayerPoints{{Player: "a", Points: 40, Roles: []string{"Dieb"}}, {Player: "b", Points: 10}}},
			`{"type":"EndGame","players":[{"player":"a","points":40,"roles":["Dieb"]},{"player":"b","points":10}]}`,
		},
		{newShowModal(EvShowWinnerPollModal, true), `{"type":"ShowWinnerPollModal","show":true}`},
	}
	for _, tc := range cases {
		t.Run(string(tc.ev.EventType()), func(t *testing.T) {
			b, err := json.Marshal(tc.ev)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}

func TestRuleSet(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, OptionNormal, rules.Get(RulePoints))
	assert.Equal(t, PredictionSequential, rules.Get(RulePrediction))
	assert.Equal(t, Disabled, rules.Get(RuleSpecialRoles))
	assert.Equal(t, OptionNormal, RuleSet{}.Get(RuleMagician), "unset rules fall back to the default")

	assert.ErrorIs(t, rules.Update(RuleTrump, "Nur Zauberer"), ErrInvalidOption)
	assert.ErrorIs(t, rules.Update("Tempo", "Schnell"), ErrUnknownRule)
	require.NoError(t, rules.Update(RuleTrump, TrumpOnlyColors))
	assert.True(t, rules.Is(RuleTrump, TrumpOnlyColors))

	frozen := rules.Clone()
	require.NoError(t, rules.Update(RuleTrump, OptionNormal))
	assert.Equal(t, TrumpOnlyColors, frozen.Get(RuleTrump))
}

func TestRainbowAndRoles(t *testing.T) {
	for _, c := range []Card{SevenPointFive, NinePointSevenFive, Troll, Stonks, DeezNuts} {
		assert.True(t, c.IsRainbow(), c.String())
	}
	assert.False(t, Bomb.IsRainbow())
	assert.False(t, Card{Red, 7.5}.IsRainbow())

	r, ok := RoleByName("Grünes Schaf")
	require.True(t, ok)
	assert.Equal(t, Green, r.Color)
	assert.NotContains(t, availableRoles(DefaultRules()), Blaster)
	assert.Contains(t, availableRoles(allRules(true, false)), Blaster)
}
