// internal/game/card.go
package game

import "fmt"

// Color is the suit of a card. The string values are the wire names used by the frontend.
type Color string

const (
	Red      Color = "Rot"
	Yellow   Color = "Gelb"
	Green    Color = "Grün"
	Blue     Color = "Blau"
	Magician Color = "Zauberer"
	Fool     Color = "Narr"
	Special  Color = "Spezial"
	Nothing  Color = "Nichts"
)

// NormalColors are the four trump-eligible suits, in deck order.
var NormalColors = []Color{Red, Yellow, Green, Blue}

// IsNormal reports whether the color is one of the four suits.
func (c Color) IsNormal() bool {
	switch c {
	case Red, Yellow, Green, Blue:
		return true
	}
	return false
}

// Valid reports whether c is a known color.
func (c Color) Valid() bool {
	switch c {
	case Red, Yellow, Green, Blue, Magician, Fool, Special, Nothing:
		return true
	}
	return false
}

// Card is an immutable value type; two cards are the same card iff color and value match.
type Card struct {
	Color Color   `json:"color"`
	Value float64 `json:"value"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s %g", c.Color, c.Value)
}

// Named special cards.
var (
	Bomb               = Card{Special, 0}
	Fairy              = Card{Special, 1}
	Dragon             = Card{Special, 2}
	Democracy          = Card{Special, 3}
	Gambling           = Card{Special, 4}
	Troll              = Card{Special, 0.5}
	DeezNuts           = Card{Special, 6.9}
	SevenPointFive     = Card{Special, 7.5}
	NinePointSevenFive = Card{Special, 9.75}
	Stonks             = Card{Special, 13.5}

	Blocked         = Card{Fool, 5}
	Reverse         = Card{Fool, 6}
	EverybodyPoints = Card{Fool, 7}

	// NothingCard pads hands when the stack runs out. It can never be played.
	NothingCard = Card{Nothing, -1}
)

// IsRainbow reports whether the card may be declared as one of the four normal colors.
func (c Card) IsRainbow() bool {
	switch c {
	case SevenPointFive, NinePointSevenFive, Troll, Stonks, DeezNuts:
		return true
	}
	return false
}

// LaidCard is a card on the table for the current trick. Card is what counts for the trick
// (a rainbow card carries its declared color), Original is what left the player's hand.
type LaidCard struct {
	Card     Card   `json:"card"`
	Player   string `json:"player"`
	Original Card   `json:"-"`
}

// Is reports whether the laid card is the given named card, regardless of a declared color.
func (l LaidCard) Is(c Card) bool {
	return l.Original == c
}

// BuildDeck composes the playable deck from the rule set. Call it once the rules are frozen.
func BuildDeck(rules RuleSet) []Card {
	deck := make([]Card, 0, 73)
	for _, color := range NormalColors {
		for v := 1; v <= 13; v++ {
			deck = append(deck, Card{color, float64(v)})
		}
	}
	for v := 1; v <= 4; v++ {
		deck = append(deck, Card{Magician, float64(v)}, Card{Fool, float64(v)})
	}
	if rules.Enabled(RuleSpecialCards) {
		deck = append(deck, Bomb, SevenPointFive, NinePointSevenFive, Fairy, Dragon)
	}
	if rules.Enabled(RuleMemeCards) {
		deck = append(deck, Troll, Stonks, DeezNuts, Blocked, Reverse, EverybodyPoints, Democracy, Gambling)
	}
	return deck
}

func containsCard(cards []Card, c Card) bool {
	return indexOfCard(cards, c) >= 0
}

func indexOfCard(cards []Card, c Card) int {
	for i, card := range cards {
		if card == c {
			return i
		}
	}
	return -1
}

// removeCard removes the first occurrence of c and reports whether it was present.
func removeCard(cards []Card, c Card) ([]Card, bool) {
	idx := indexOfCard(cards, c)
	if idx < 0 {
		return cards, false
	}
	return append(cards[:idx], cards[idx+1:]...), true
}
