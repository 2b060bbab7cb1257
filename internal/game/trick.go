// internal/game/trick.go
package game

import "math/rand/v2"

type resolution int

const (
	resolveNormal resolution = iota
	resolveRandom
	resolvePoll
)

// trickOutcome summarizes the effects of a complete trick before a winner is chosen.
type trickOutcome struct {
	// contenders are the laid cards still in play after Blocked cancellation, in trick order.
	contenders  []LaidCard
	stitchValue int
	method      resolution

	bombUsed        bool
	everybodyPoints bool
	reverse         int
	revision        bool
	exchange        bool
}

func (o trickOutcome) has(c Card) bool {
	for _, lc := range o.contenders {
		if lc.Is(c) {
			return true
		}
	}
	return false
}

func (o trickOutcome) playerOf(c Card) (string, bool) {
	for _, lc := range o.contenders {
		if lc.Is(c) {
			return lc.Player, true
		}
	}
	return "", false
}

// evaluateTrick applies Blocked cancellation and collects every effect of the laid cards.
// The cancellation is one left-to-right pass: a Blocked card that is itself cancelled still
// cancels the card after it.
func evaluateTrick(order []string, laid map[string]LaidCard) trickOutcome {
	played := make([]LaidCard, 0, len(order))
	for _, p := range order {
		if lc, ok := laid[p]; ok {
			played = append(played, lc)
		}
	}

	cancelled := make([]bool, len(played))
	for i, lc := range played {
		if lc.Is(Blocked) && i+1 < len(played) {
			cancelled[i+1] = true
		}
	}

	out := trickOutcome{stitchValue: 1}
	for i, lc := range played {
		if !cancelled[i] {
			out.contenders = append(out.contenders, lc)
		}
	}

	for _, lc := range out.contenders {
		switch {
		case lc.Is(Reverse):
			out.reverse++
		case lc.Is(Troll):
			out.stitchValue = -1
		case lc.Is(Stonks):
			out.stitchValue = 3
		case lc.Is(Gambling):
			out.method = resolveRandom
		case lc.Is(Democracy):
			out.method = resolvePoll
		case lc.Is(Bomb):
			out.bombUsed = true
		case lc.Is(EverybodyPoints):
			out.everybodyPoints = true
		case lc.Is(NinePointSevenFive):
			out.revision = true
		case lc.Is(SevenPointFive):
			out.exchange = true
		}
	}
	if (out.has(Troll) || out.has(DeezNuts)) && out.has(Dragon) {
		out.stitchValue = -3
	}
	return out
}

// trickWinner picks the winner of a normally resolved trick.
func trickWinner(out trickOutcome, trump Card, magicianRule string, thief string, rng *rand.Rand) string {
	cards := out.contenders

	if thief != "" {
		for _, lc := range cards {
			if lc.Player == thief && lc.Card.Color.IsNormal() && lc.Card.Value == 1 && rng.IntN(2) == 0 {
				return thief
			}
		}
	}

	fairy, hasFairy := out.playerOf(Fairy)
	dragon, hasDragon := out.playerOf(Dragon)
	if hasFairy && hasDragon {
		return fairy
	}
	if hasDragon {
		return dragon
	}

	allFools := true
	firstFool := ""
	for _, lc := range cards {
		if lc.Is(Fairy) {
			continue
		}
		if lc.Card.Color != Fool {
			allFools = false
			break
		}
		if firstFool == "" {
			firstFool = lc.Player
		}
	}
	if allFools && firstFool != "" {
		return firstFool
	}

	var magicians []string
	for _, lc := range cards {
		if lc.Card.Color == Magician {
			magicians = append(magicians, lc.Player)
		}
	}
	if len(magicians) > 0 {
		switch magicianRule {
		case MagicianLast:
			return magicians[len(magicians)-1]
		case MagicianMiddle:
			return magicians[(len(magicians)-1)/2]
		default:
			return magicians[0]
		}
	}

	highest := cards[0]
	for _, lc := range cards[1:] {
		if beats(lc, highest, trump) {
			highest = lc
		}
	}
	return highest.Player
}

// beats reports whether card takes the lead from the current highest card.
func beats(card, highest LaidCard, trump Card) bool {
	switch {
	case card.Is(Fairy):
		return false
	case card.Is(Dragon):
		return true
	case highest.Is(Fairy):
		return true
	case card.Card.Color == Fool:
		return false
	case highest.Is(Bomb) || highest.Card.Color == Fool:
		return true
	case card.Card.Color != highest.Card.Color && card.Card.Color != trump.Color:
		return false
	case card.Card.Color == highest.Card.Color:
		return card.Card.Value > highest.Card.Value
	}
	return true
}

// pollWinner returns the player with the most votes. Ties go to whoever comes first in order.
func pollWinner(order []string, votes map[string]string) string {
	tally := make(map[string]int, len(order))
	for _, target := range votes {
		tally[target]++
	}
	best, top := "", -1
	for _, p := range order {
		if tally[p] > top {
			best, top = p, tally[p]
		}
	}
	return best
}

// rotateCards moves every submitted card one seat further along players.
func rotateCards(players []string, hands map[string][]Card, submitted map[string]Card) map[string]Card {
	received := make(map[string]Card, len(players))
	for i, p := range players {
		c := submitted[p]
		hands[p], _ = removeCard(hands[p], c)
		received[players[(i+1)%len(players)]] = c
	}
	for p, c := range received {
		hands[p] = append(hands[p], c)
	}
	return received
}

// followsSuit checks the follow-suit rule for a card whose effective color is color.
// A Magician lead frees the suit. A Dragon lead asks for Special cards.
func followsSuit(color Color, lead *Card, hand []Card) bool {
	if lead == nil {
		return true
	}
	if color == Special || color == Fool || color == Magician {
		return true
	}
	if lead.Color == Magician || lead.Color == Fool || lead.Color == Nothing {
		return true
	}
	if color == lead.Color {
		return true
	}
	for _, c := range hand {
		if c.Color == lead.Color {
			return false
		}
	}
	return true
}

// establishesLead reports whether card sets the led color given the cards already laid.
func establishesLead(card LaidCard, laid map[string]LaidCard) bool {
	for _, lc := range laid {
		if lc.Card.Color != Fool && lc.Card.Color != Special {
			return false
		}
	}
	return (card.Card.Color != Fool && card.Card.Color != Special) || card.Is(Dragon)
}
