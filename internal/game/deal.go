// internal/game/deal.go
package game

import "math/rand/v2"

// dealer distributes one round. It only reads game state it is handed.
type dealer struct {
	rng       *rand.Rand
	players   []string
	roles     map[Role]string
	onlyColor bool

	stack []Card
}

// deal is the outcome of dealing one round.
type deal struct {
	hands   map[string][]Card
	trump   Card
	shifted map[string]int
}

// newDealer shuffles the deck and splices the forced cards in front of it. Forced cards are
// removed from the shuffled remainder so no card appears twice.
func newDealer(rng *rand.Rand, deck, forced []Card, players []string, roles map[Role]string, onlyColor bool) *dealer {
	rest := make([]Card, 0, len(deck))
	skip := append([]Card(nil), forced...)
	for _, c := range deck {
		var found bool
		if skip, found = removeCard(skip, c); found {
			continue
		}
		rest = append(rest, c)
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	stack := make([]Card, 0, len(forced)+len(rest))
	stack = append(stack, forced...)
	stack = append(stack, rest...)
	return &dealer{
		rng:       rng,
		players:   players,
		roles:     roles,
		onlyColor: onlyColor,
		stack:     stack,
	}
}

func (d *dealer) draw() Card {
	if len(d.stack) == 0 {
		return NothingCard
	}
	c := d.stack[0]
	d.stack = d.stack[1:]
	return c
}

// take removes the first stack card matching pred, in draw order.
func (d *dealer) take(pred func(Card) bool) (Card, bool) {
	for i, c := range d.stack {
		if pred(c) {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

func (d *dealer) holder(r Role) (string, bool) {
	p, ok := d.roles[r]
	return p, ok
}

// deal gives every player round cards and reveals the trump.
func (d *dealer) deal(round int) deal {
	hands := make(map[string][]Card, len(d.players))
	for _, p := range d.players {
		hands[p] = make([]Card, 0, round)
	}

	if p, ok := d.holder(Headfool); ok && round > 0 {
		if c, found := d.take(func(c Card) bool { return c.Color == Fool }); found {
			hands[p] = append(hands[p], c)
		}
	}
	if p, ok := d.holder(Servant); ok {
		for len(hands[p]) < round {
			c, found := d.take(func(c Card) bool { return c.Color.IsNormal() && c.Value == 2 })
			if !found {
				break
			}
			hands[p] = append(hands[p], c)
		}
	}

	for {
		dealt := false
		for _, p := range d.players {
			if len(hands[p]) >= round {
				continue
			}
			dealt = true
			d.give(hands, p, d.draw(), round)
		}
		if !dealt {
			break
		}
	}

	trump, shifted := d.revealTrump()
	return deal{hands: hands, trump: trump, shifted: shifted}
}

// give hands card to recipient unless an intercepting role takes it. A holder with a full
// hand compensates the recipient with a random card of their own.
func (d *dealer) give(hands map[string][]Card, recipient string, card Card, round int) {
	for _, role := range AllRoles {
		holder, ok := d.holder(role)
		if !ok || holder == recipient {
			continue
		}
		chance, matches := role.intercepts(card)
		if !matches || d.rng.IntN(chance) != 0 {
			continue
		}
		if len(hands[holder]) < round {
			hands[holder] = append(hands[holder], card)
			return
		}
		idx := d.rng.IntN(len(hands[holder]))
		displaced := hands[holder][idx]
		hands[holder][idx] = card
		hands[recipient] = append(hands[recipient], displaced)
		return
	}
	hands[recipient] = append(hands[recipient], card)
}

// revealTrump draws the trump card. Skipped draws are tallied per color name.
func (d *dealer) revealTrump() (Card, map[string]int) {
	var preferred []Color
	for _, role := range AllRoles {
		if _, ok := d.holder(role); ok && role.Kind == ColorPreference && role != Wizardmaster {
			preferred = append(preferred, role.Color)
		}
	}

	shifted := make(map[string]int)
	for {
		trump := d.draw()
		if trump.Color == Nothing {
			return trump, shifted
		}
		if d.onlyColor && (trump.Color == Magician || trump.Color == Fool || trump.Color == Special) {
			shifted[string(trump.Color)]++
			continue
		}
		if len(preferred) > 0 && !colorIn(preferred, trump.Color) && d.rng.IntN(2) == 0 {
			shifted[string(trump.Color)]++
			continue
		}
		return trump, shifted
	}
}

func colorIn(colors []Color, c Color) bool {
	for _, v := range colors {
		if v == c {
			return true
		}
	}
	return false
}
