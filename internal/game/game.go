// internal/game/game.go
package game

import (
	"context"
	cryptorand "crypto/rand"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/cache"
)

// Phase is the lifecycle state of a room. It only moves forward.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRoleSelection
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseRoleSelection:
		return "role_selection"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Sender delivers events to connected users. Send must not block.
type Sender interface {
	Send(username string, ev Event)
	Broadcast(ev Event)
}

// Recorder receives the game event feed.
type Recorder interface {
	PublishGameAction(ctx context.Context, record cache.GameActionRecord) error
}

// Observer is notified of game progress, for metrics.
type Observer interface {
	TrickResolved()
	GameFinished()
}

// Delays are the pacing pauses of a running game. Zero runs the continuation immediately.
type Delays struct {
	TrickClear time.Duration
	NextRound  time.Duration
}

// Config carries the collaborators shared by every game of a manager.
type Config struct {
	Sender   Sender
	Recorder Recorder
	Observer Observer
	Logger   *logrus.Logger
	Delays   Delays

	// NewRand returns the RNG of a new game. Nil seeds a ChaCha8 source from crypto/rand.
	NewRand func() *rand.Rand

	// ForcedCards returns cards dealt first in the given round. Used for deterministic setups.
	ForcedCards func(round int) []Card
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingRevision
	pendingExchange
	pendingPoll
)

// effects are manager notifications collected under the game lock and fired after unlocking.
type effects struct {
	remove       bool
	lobbyChanged bool
}

// Game is one room. All state is guarded by mu; every exported method takes the lock.
type Game struct {
	ID       int
	Instance uuid.UUID
	Owner    string

	mu       sync.Mutex
	log      *logrus.Entry
	sender   Sender
	recorder Recorder
	observer Observer
	rng      *rand.Rand
	delays   Delays
	forced   func(round int) []Card

	timers map[*time.Timer]struct{}
	closed bool
	fx     effects
	open   atomic.Bool

	onRemove      func(id int)
	onLobbyChange func()

	players []string
	phase   Phase
	round   int
	rules   RuleSet
	deck    []Card

	trump   Card
	shifted map[string]int
	cards   map[string][]Card
	laid    map[string]LaidCard

	trickOrder    []string
	queue         []string
	currentPlayer string
	firstCard     *Card
	predicting    bool

	stitchGoals map[string]int
	stitchDone  map[string]int
	points      map[string]int

	specialRoles map[Role]string
	roleQueue    []string
	reversed     bool

	pending     pendingKind
	outcome     trickOutcome
	lastWinner  string
	exchange    map[string]Card
	votes       map[string]string
	actionIndex int
}

func newRand() *rand.Rand {
	var seed [32]byte
	_, _ = cryptorand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

func newGame(id int, owner string, cfg Config, onRemove func(int), onLobbyChange func()) *Game {
	g := &Game{
		ID:            id,
		Instance:      uuid.New(),
		Owner:         owner,
		sender:        cfg.Sender,
		recorder:      cfg.Recorder,
		observer:      cfg.Observer,
		delays:        cfg.Delays,
		forced:        cfg.ForcedCards,
		timers:        make(map[*time.Timer]struct{}),
		onRemove:      onRemove,
		onLobbyChange: onLobbyChange,
		players:       []string{owner},
		phase:         PhaseLobby,
		rules:         DefaultRules(),
		cards:         make(map[string][]Card),
		laid:          make(map[string]LaidCard),
		shifted:       make(map[string]int),
		stitchGoals:   make(map[string]int),
		stitchDone:    make(map[string]int),
		points:        make(map[string]int),
		specialRoles:  make(map[Role]string),
		trump:         NothingCard,
	}
	if cfg.NewRand != nil {
		g.rng = cfg.NewRand()
	} else {
		g.rng = newRand()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	g.log = logger.WithFields(logrus.Fields{"game": id, "instance": g.Instance})
	g.open.Store(true)
	return g
}

// Open reports whether the room still accepts players. Safe without the game lock.
func (g *Game) Open() bool { return g.open.Load() }

// Phase returns the current lifecycle state.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Players returns the seating order, which is fixed once the game has started.
func (g *Game) Players() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.players...)
}

// Points returns a copy of the cumulative scores.
func (g *Game) Points() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.points))
	for k, v := range g.points {
		out[k] = v
	}
	return out
}

// with runs fn under the game lock and fires the collected manager callbacks afterwards.
func (g *Game) with(fn func()) {
	fx := g.locked(fn)
	if fx.remove && g.onRemove != nil {
		g.onRemove(g.ID)
		return
	}
	if fx.lobbyChanged && g.onLobbyChange != nil {
		g.onLobbyChange()
	}
}

func (g *Game) locked(fn func()) effects {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
	fx := g.fx
	g.fx = effects{}
	return fx
}

// HandleMessage applies one inbound message from user and reports whether it was accepted.
// Rejected messages change nothing and send nothing.
func (g *Game) HandleMessage(user string, msg ClientMessage) bool {
	var ok bool
	g.with(func() {
		if g.closed {
			return
		}
		ok = g.dispatch(user, msg)
		if !ok {
			g.log.WithFields(logrus.Fields{"user": user, "type": msg.Type, "phase": g.phase}).Debug("message rejected")
		}
	})
	return ok
}

func (g *Game) dispatch(user string, msg ClientMessage) bool {
	if err := msg.validate(); err != nil {
		return false
	}
	switch msg.Type {
	case MsgStartButtonClicked:
		return g.start(user)
	case MsgLeaveGame:
		return g.leave(user)
	case MsgRuleChangeRequest:
		v, _ := msg.StringValue()
		return g.changeRule(user, msg.Rule, v)
	case MsgRequestSelectedRole:
		return g.selectRole(user, msg.RoleName)
	case MsgStitchGoal:
		return g.predict(user, *msg.Goal)
	case MsgLayCard:
		return g.layCard(user, *msg.Card, msg.SelectedColor)
	case MsgChangeStitchPrediction:
		v, _ := msg.IntValue()
		return g.revise(user, v)
	case MsgChangeCard:
		return g.submitExchange(user, *msg.Card)
	case MsgVoteForWinner:
		v, _ := msg.StringValue()
		return g.vote(user, v)
	}
	return false
}

// Join adds user to a lobby, or re-syncs a member of a running game. It reports whether the
// user is now part of the room.
func (g *Game) Join(user string) bool {
	var joined bool
	g.with(func() {
		if g.closed {
			g.sendTo(user, NewRedirectHome())
			return
		}
		member := indexOf(g.players, user) >= 0
		switch {
		case g.phase == PhaseLobby:
			if !member {
				g.players = append(g.players, user)
				g.log.WithField("user", user).Info("player joined")
			}
			g.broadcast(newGameInfo(g.players))
			g.sendTo(user, newRuleChange(g.rules))
			joined = true
		case member:
			g.sendCurrentState(user)
			joined = true
		default:
			g.sendTo(user, NewRedirectHome())
		}
	})
	return joined
}

// Close stops pending timers and sends every player home. It is idempotent.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.open.Store(false)
	g.stopTimers()
	g.broadcast(NewRedirectHome())
	g.log.Info("game closed")
}

func (g *Game) sendTo(user string, ev Event) {
	if g.sender != nil {
		g.sender.Send(user, ev)
	}
}

func (g *Game) broadcast(ev Event) {
	for _, p := range g.players {
		g.sendTo(p, ev)
	}
}

// schedule runs fn after d under the game lock, unless the game is closed first.
// Must be called with the lock held.
func (g *Game) schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		g.with(func() {
			if _, ok := g.timers[t]; !ok || g.closed {
				return
			}
			delete(g.timers, t)
			fn()
		})
	})
	g.timers[t] = struct{}{}
}

func (g *Game) stopTimers() {
	for t := range g.timers {
		t.Stop()
		delete(g.timers, t)
	}
}

// logAction publishes an event record without blocking the game.
func (g *Game) logAction(actor, actionType string, payload map[string]any) {
	g.actionIndex++
	if g.recorder == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		Instance:      g.Instance,
		ActionIndex:   g.actionIndex,
		Actor:         actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := g.recorder.PublishGameAction(ctx, rec); err != nil {
			g.log.WithError(err).WithField("action", rec.ActionType).Warn("failed to publish game action")
		}
	}(record)
}

func (g *Game) changeRule(user string, key RuleKey, value string) bool {
	if user != g.Owner || g.phase != PhaseLobby {
		return false
	}
	if err := g.rules.Update(key, value); err != nil {
		g.log.WithError(err).Debug("rule change rejected")
		return false
	}
	g.broadcast(newRuleChange(g.rules))
	return true
}

func (g *Game) leave(user string) bool {
	if indexOf(g.players, user) < 0 {
		return false
	}
	switch g.phase {
	case PhaseLobby:
		if user == g.Owner {
			g.log.Info("owner left the lobby")
			g.fx.remove = true
			return true
		}
		g.players = removeString(g.players, user)
		g.broadcast(newGameInfo(g.players))
		g.sendTo(user, NewRedirectHome())
	case PhaseRoleSelection, PhaseRunning:
		g.log.WithField("user", user).Info("player left a running game")
		g.endGame()
	case PhaseFinished:
		g.fx.remove = true
	}
	return true
}

func (g *Game) start(user string) bool {
	if user != g.Owner || g.phase != PhaseLobby || len(g.players) < 2 {
		return false
	}
	g.rules = g.rules.Clone()
	g.deck = BuildDeck(g.rules)
	g.rng.Shuffle(len(g.players), func(i, j int) { g.players[i], g.players[j] = g.players[j], g.players[i] })
	for _, p := range g.players {
		g.points[p] = 0
	}
	g.open.Store(false)
	g.fx.lobbyChanged = true

	g.log.WithField("players", g.players).Info("game started")
	g.broadcast(GameStartedEvent{header{EvGameStarted}, append([]string(nil), g.players...)})
	g.logAction(user, "game_start", map[string]any{"players": append([]string(nil), g.players...), "rules": g.rules})

	switch g.rules.Get(RuleSpecialRoles) {
	case RolesFreeChoice:
		g.phase = PhaseRoleSelection
		g.roleQueue = append([]string(nil), g.players...)
		g.rng.Shuffle(len(g.roleQueue), func(i, j int) { g.roleQueue[i], g.roleQueue[j] = g.roleQueue[j], g.roleQueue[i] })
		g.sendSelectedRoles()
		g.broadcast(CurrentRoleSelectingPlayerEvent{header{EvCurrentRoleSelectingPlayer}, g.roleQueue[0]})
	case RolesAssigned, RolesSecret:
		roles := availableRoles(g.rules)
		g.rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
		for i, p := range g.players {
			if i >= len(roles) {
				break
			}
			g.specialRoles[roles[i]] = p
		}
		g.beginRunning()
	default:
		g.beginRunning()
	}
	return true
}

func (g *Game) selectRole(user, name string) bool {
	if g.phase != PhaseRoleSelection || len(g.roleQueue) == 0 || g.roleQueue[0] != user {
		return false
	}
	role, ok := RoleByName(name)
	if !ok || !roleIn(availableRoles(g.rules), role) {
		return false
	}
	if _, claimed := g.specialRoles[role]; claimed {
		return false
	}
	g.specialRoles[role] = user
	g.roleQueue = g.roleQueue[1:]
	g.sendSelectedRoles()
	if len(g.roleQueue) == 0 {
		g.beginRunning()
		return true
	}
	g.broadcast(CurrentRoleSelectingPlayerEvent{header{EvCurrentRoleSelectingPlayer}, g.roleQueue[0]})
	return true
}

func roleIn(roles []Role, r Role) bool {
	for _, v := range roles {
		if v == r {
			return true
		}
	}
	return false
}

// rolesFor is the role map as seen by viewer. Under secret roles only the viewer's own role
// is readable.
func (g *Game) rolesFor(viewer string) map[string]string {
	out := make(map[string]string, len(g.players))
	secret := g.rules.Is(RuleSpecialRoles, RolesSecret)
	if secret {
		for _, p := range g.players {
			if p != viewer {
				out[p] = HiddenRoleName
			}
		}
	}
	for _, r := range AllRoles {
		p, ok := g.specialRoles[r]
		if !ok || (secret && p != viewer) {
			continue
		}
		out[p] = r.Name
	}
	return out
}

func (g *Game) sendSelectedRoles() {
	for _, p := range g.players {
		g.sendTo(p, SelectedRolesEvent{header{EvSelectedRoles}, g.rolesFor(p)})
	}
}

func (g *Game) beginRunning() {
	g.phase = PhaseRunning
	if len(g.specialRoles) > 0 {
		g.sendSelectedRoles()
	}
	g.round = 0
	g.startRound()
}

func (g *Game) startRound() {
	if g.phase != PhaseRunning {
		return
	}
	g.round++
	if g.round*len(g.players) > len(g.deck) {
		g.endGame()
		return
	}

	var forced []Card
	if g.forced != nil {
		forced = g.forced(g.round)
	}
	d := newDealer(g.rng, g.deck, forced, g.players, g.specialRoles, g.rules.Is(RuleTrump, TrumpOnlyColors))
	dealt := d.deal(g.round)
	g.cards = dealt.hands
	g.trump = dealt.trump
	g.shifted = dealt.shifted
	g.laid = make(map[string]LaidCard)
	g.firstCard = nil
	g.predicting = true
	for _, p := range g.players {
		g.stitchDone[p] = 0
	}

	g.log.WithFields(logrus.Fields{"round": g.round, "trump": g.trump.String()}).Debug("round dealt")
	g.broadcast(RoundEvent{header{EvRound}, g.round, g.playOrder()[0]})
	g.broadcast(TrumpEvent{header{EvTrump}, g.trump, g.shifted})
	for _, p := range g.players {
		g.sendTo(p, newCards(g.cards[p], nil))
	}
	g.broadcast(IsPredictEvent{header{EvIsPredict}, true})

	if g.rules.Is(RulePrediction, PredictionBlind) {
		g.currentPlayer = ""
		for _, p := range g.players {
			g.sendTo(p, CurrentPlayerEvent{header{EvCurrentPlayer}, p})
		}
		return
	}
	g.queue = g.stitchOrder()
	g.advance()
}

// advance hands the turn to the next queued player.
func (g *Game) advance() {
	g.currentPlayer = g.queue[0]
	g.queue = g.queue[1:]
	g.broadcast(CurrentPlayerEvent{header{EvCurrentPlayer}, g.currentPlayer})
}

func (g *Game) predict(user string, goal int) bool {
	if g.phase != PhaseRunning || !g.predicting || indexOf(g.players, user) < 0 {
		return false
	}
	if goal < 0 || goal > g.round {
		return false
	}

	if g.rules.Is(RulePrediction, PredictionBlind) {
		if _, done := g.stitchGoals[user]; done {
			return false
		}
		g.stitchGoals[user] = goal
		g.broadcast(HasPredictedEvent{header{EvHasPredicted}, user})
		if len(g.stitchGoals) < len(g.players) {
			g.sendTo(user, simple(EvAcceptedGoal))
			return true
		}
		for _, p := range g.stitchOrder() {
			g.broadcast(StitchGoalEvent{header{EvStitchGoal}, p, g.stitchGoals[p]})
		}
		g.startPlay()
		return true
	}

	if user != g.currentPlayer {
		return false
	}
	g.stitchGoals[user] = goal
	g.broadcast(StitchGoalEvent{header{EvStitchGoal}, user, goal})
	if len(g.queue) == 0 {
		g.startPlay()
		return true
	}
	g.advance()
	return true
}

func (g *Game) startPlay() {
	g.predicting = false
	g.broadcast(IsPredictEvent{header{EvIsPredict}, false})
	g.startTrick(g.playOrder())
}

func (g *Game) startTrick(order []string) {
	g.trickOrder = order
	g.queue = append([]string(nil), order...)
	g.advance()
}

func (g *Game) layCard(user string, card Card, selected *Color) bool {
	if g.phase != PhaseRunning || g.predicting || g.pending != pendingNone || user != g.currentPlayer {
		return false
	}
	hand := g.cards[user]
	if card.Color == Nothing || !containsCard(hand, card) {
		return false
	}

	effective := card
	if card.IsRainbow() && selected != nil && selected.IsNormal() {
		effective.Color = *selected
	}
	if !followsSuit(effective.Color, g.firstCard, hand) {
		return false
	}

	lc := LaidCard{Card: effective, Player: user, Original: card}
	if establishesLead(lc, g.laid) {
		lead := effective
		g.firstCard = &lead
	}
	g.laid[user] = lc
	g.cards[user], _ = removeCard(hand, card)
	g.broadcast(PlayerCardEvent{header{EvPlayerCard}, lc})

	if len(g.laid) < len(g.players) {
		g.advance()
		return true
	}
	g.currentPlayer = ""
	g.resolveTrick()
	return true
}

func (g *Game) resolveTrick() {
	out := evaluateTrick(g.trickOrder, g.laid)
	if out.reverse%2 == 1 {
		g.reversed = !g.reversed
	}
	g.outcome = out
	if g.observer != nil {
		g.observer.TrickResolved()
	}

	var winner string
	switch out.method {
	case resolvePoll:
		g.pending = pendingPoll
		g.votes = make(map[string]string, len(g.players))
		g.broadcast(newShowModal(EvShowWinnerPollModal, true))
		return
	case resolveRandom:
		winner = out.contenders[g.rng.IntN(len(out.contenders))].Player
	default:
		winner = trickWinner(out, g.trump, g.rules.Get(RuleMagician), g.specialRoles[Thief], g.rng)
	}
	g.award(winner, true)
}

// award announces the winner, books the stitches and starts a follow-up protocol if the
// trick calls for one.
func (g *Game) award(winner string, followUps bool) {
	out := g.outcome
	g.lastWinner = winner

	if out.bombUsed {
		g.broadcast(WinnerEvent{header{EvWinner}, nil})
	} else {
		w := winner
		g.broadcast(WinnerEvent{header{EvWinner}, &w})
		if out.everybodyPoints {
			for _, p := range g.players {
				if p == winner {
					continue
				}
				g.stitchDone[p] += out.stitchValue
				g.broadcast(UpdateDoneStitchesEvent{header{EvUpdateDoneStitches}, p, g.stitchDone[p]})
			}
		} else {
			g.stitchDone[winner] += out.stitchValue
			g.broadcast(UpdateDoneStitchesEvent{header{EvUpdateDoneStitches}, winner, g.stitchDone[winner]})
		}
	}

	if followUps {
		switch {
		case out.revision && !out.bombUsed:
			g.pending = pendingRevision
			g.sendTo(winner, newShowModal(EvShowChangeStitchModal, true))
			return
		case out.exchange && len(g.cards[winner]) > 0:
			g.pending = pendingExchange
			g.exchange = make(map[string]Card, len(g.players))
			g.broadcast(simple(EvSevenPointFiveUsed))
			return
		}
	}
	g.finishTrick()
}

func (g *Game) revise(user string, delta int) bool {
	if g.pending != pendingRevision || user != g.lastWinner || (delta != -1 && delta != 1) {
		return false
	}
	goal := min(max(g.stitchGoals[user]+delta, 0), g.round)
	g.stitchGoals[user] = goal
	g.pending = pendingNone
	g.broadcast(StitchGoalEvent{header{EvStitchGoal}, user, goal})
	g.sendTo(user, newShowModal(EvShowChangeStitchModal, false))
	g.finishTrick()
	return true
}

func (g *Game) submitExchange(user string, card Card) bool {
	if g.pending != pendingExchange || indexOf(g.players, user) < 0 {
		return false
	}
	if _, done := g.exchange[user]; done {
		return false
	}
	if card.Color == Nothing || !containsCard(g.cards[user], card) {
		return false
	}
	g.exchange[user] = card
	if len(g.exchange) < len(g.players) {
		return true
	}

	received := rotateCards(g.players, g.cards, g.exchange)
	for _, p := range g.players {
		c := received[p]
		g.sendTo(p, newCards(g.cards[p], &c))
	}
	g.exchange = nil
	g.pending = pendingNone
	g.finishTrick()
	return true
}

func (g *Game) vote(user, target string) bool {
	if g.pending != pendingPoll || indexOf(g.players, user) < 0 {
		return false
	}
	if _, voted := g.votes[user]; voted {
		return false
	}
	if target == user || indexOf(g.trickOrder, target) < 0 {
		return false
	}
	g.votes[user] = target
	if len(g.votes) < len(g.players) {
		return true
	}

	winner := pollWinner(g.trickOrder, g.votes)
	g.votes = nil
	g.pending = pendingNone
	g.broadcast(newShowModal(EvShowWinnerPollModal, false))
	g.award(winner, false)
	return true
}

// finishTrick clears the table after a pause and continues with the next trick or round.
func (g *Game) finishTrick() {
	winner := g.lastWinner
	g.schedule(g.delays.TrickClear, func() {
		g.laid = make(map[string]LaidCard)
		g.firstCard = nil
		g.outcome = trickOutcome{}
		g.broadcast(simple(EvClearForNewSubRound))
		if len(g.cards[winner]) == 0 {
			g.closeRound()
			return
		}
		g.startTrick(g.nextTrickOrder(winner))
	})
}

func (g *Game) closeRound() {
	amounts := scoreRound(g.players, g.stitchGoals, g.stitchDone, g.specialRoles, g.rules)
	for p, a := range amounts {
		g.points[p] += a
	}

	if g.rules.Is(RuleSpecialRoles, RolesSecret) {
		for _, p := range g.players {
			g.sendTo(p, ResultsEvent{header{EvResults}, map[string]int{p: amounts[p]}})
		}
	} else {
		g.broadcast(ResultsEvent{header{EvResults}, amounts})
	}
	g.logAction("", "round_result", map[string]any{
		"round":   g.round,
		"goals":   g.stitchGoals,
		"done":    g.stitchDone,
		"amounts": amounts,
	})
	g.log.WithFields(logrus.Fields{"round": g.round, "amounts": amounts}).Info("round finished")

	g.stitchGoals = make(map[string]int, len(g.players))
	g.stitchDone = make(map[string]int, len(g.players))
	g.schedule(g.delays.NextRound, g.startRound)
}

// scoreboard lists players by descending points, ties keeping seat order.
func (g *Game) scoreboard() []PlayerPoints {
	board := make([]PlayerPoints, 0, len(g.players))
	showRoles := !g.rules.Is(RuleSpecialRoles, RolesSecret)
	for _, p := range g.players {
		entry := PlayerPoints{Player: p, Points: g.points[p]}
		if showRoles {
			for _, r := range AllRoles {
				if g.specialRoles[r] == p {
					entry.Roles = append(entry.Roles, r.Name)
				}
			}
		}
		board = append(board, entry)
	}
	sort.SliceStable(board, func(i, j int) bool { return board[i].Points > board[j].Points })
	return board
}

func (g *Game) endGame() {
	if g.phase == PhaseFinished {
		return
	}
	g.phase = PhaseFinished
	g.stopTimers()
	g.pending = pendingNone
	g.currentPlayer = ""

	board := g.scoreboard()
	g.broadcast(EndGameEvent{header{EvEndGame}, board})
	g.logAction("", "game_end", map[string]any{"round": g.round, "scoreboard": board})
	g.log.WithField("round", g.round).Info("game finished")
	if g.observer != nil {
		g.observer.GameFinished()
	}
}

// sendCurrentState replays everything a reconnecting member needs to render the table.
func (g *Game) sendCurrentState(user string) {
	g.sendTo(user, newGameInfo(g.players))
	g.sendTo(user, GameStartedEvent{header{EvGameStarted}, append([]string(nil), g.players...)})
	if len(g.specialRoles) > 0 || g.phase == PhaseRoleSelection {
		g.sendTo(user, SelectedRolesEvent{header{EvSelectedRoles}, g.rolesFor(user)})
	}

	switch g.phase {
	case PhaseRoleSelection:
		g.sendTo(user, CurrentRoleSelectingPlayerEvent{header{EvCurrentRoleSelectingPlayer}, g.roleQueue[0]})
		return
	case PhaseFinished:
		g.sendTo(user, EndGameEvent{header{EvEndGame}, g.scoreboard()})
		return
	}

	g.sendTo(user, RoundEvent{header{EvRound}, g.round, g.playOrder()[0]})
	g.sendTo(user, TrumpEvent{header{EvTrump}, g.trump, g.shifted})
	g.sendTo(user, newCards(g.cards[user], nil))
	g.sendTo(user, IsPredictEvent{header{EvIsPredict}, g.predicting})

	blind := g.predicting && g.rules.Is(RulePrediction, PredictionBlind)
	for _, p := range g.stitchOrder() {
		goal, ok := g.stitchGoals[p]
		switch {
		case !ok:
		case blind && p != user:
			g.sendTo(user, HasPredictedEvent{header{EvHasPredicted}, p})
		default:
			g.sendTo(user, StitchGoalEvent{header{EvStitchGoal}, p, goal})
		}
	}
	for _, p := range g.players {
		g.sendTo(user, UpdateDoneStitchesEvent{header{EvUpdateDoneStitches}, p, g.stitchDone[p]})
	}
	for _, p := range g.trickOrder {
		if lc, ok := g.laid[p]; ok {
			g.sendTo(user, PlayerCardEvent{header{EvPlayerCard}, lc})
		}
	}

	switch {
	case blind:
		if _, done := g.stitchGoals[user]; !done {
			g.sendTo(user, CurrentPlayerEvent{header{EvCurrentPlayer}, user})
		}
	case g.currentPlayer != "":
		g.sendTo(user, CurrentPlayerEvent{header{EvCurrentPlayer}, g.currentPlayer})
	}

	switch g.pending {
	case pendingRevision:
		if user == g.lastWinner {
			g.sendTo(user, newShowModal(EvShowChangeStitchModal, true))
		}
	case pendingExchange:
		if _, done := g.exchange[user]; !done {
			g.sendTo(user, simple(EvSevenPointFiveUsed))
		}
	case pendingPoll:
		if _, done := g.votes[user]; !done {
			g.sendTo(user, newShowModal(EvShowWinnerPollModal, true))
		}
	}
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
