package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allRules(specials, memes bool) RuleSet {
	rules := DefaultRules()
	if specials {
		rules[RuleSpecialCards] = Enabled
	}
	if memes {
		rules[RuleMemeCards] = Enabled
	}
	return rules
}

func TestBuildDeck(t *testing.T) {
	assert.Len(t, BuildDeck(allRules(false, false)), 60)
	assert.Len(t, BuildDeck(allRules(true, false)), 65)
	assert.Len(t, BuildDeck(allRules(false, true)), 68)

	deck := BuildDeck(allRules(true, true))
	assert.Len(t, deck, 73)
	seen := make(map[Card]bool, len(deck))
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	for _, c := range []Card{Bomb, Fairy, Dragon, Troll, Stonks, DeezNuts, Blocked, Reverse, EverybodyPoints, Democracy, Gambling, SevenPointFive, NinePointSevenFive} {
		assert.True(t, seen[c], "missing %s", c)
	}
}

func TestDealHandSizes(t *testing.T) {
	players := []string{"a", "b", "c", "d"}
	deck := BuildDeck(DefaultRules())
	rng := seeded(11)()
	for round := 1; round <= len(deck)/len(players); round++ {
		d := newDealer(rng, deck, nil, players, nil, false)
		dealt := d.deal(round)

		seen := make(map[Card]bool)
		for _, p := range players {
			require.Len(t, dealt.hands[p], round, "round %d player %s", round, p)
			for _, c := range dealt.hands[p] {
				assert.False(t, seen[c])
				assert.NotEqual(t, Nothing, c.Color)
				seen[c] = true
			}
		}
		assert.False(t, seen[dealt.trump])
	}
}

func TestDealPadsWithNothing(t *testing.T) {
	deck := []Card{{Red, 1}, {Red, 2}, {Red, 3}}
	d := newDealer(seeded(1)(), deck, nil, []string{"a", "b"}, nil, false)
	dealt := d.deal(2)

	assert.Len(t, dealt.hands["a"], 2)
	assert.Len(t, dealt.hands["b"], 2)
	assert.Contains(t, dealt.hands["b"], NothingCard)
	assert.Equal(t, NothingCard, dealt.trump)
}

func TestForcedCardsComeFirst(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	forced := []Card{{Green, 7}, {Yellow, 3}, {Green, 8}, {Yellow, 4}, {Magician, 2}}
	d := newDealer(seeded(1)(), deck, forced, []string{"a", "b"}, nil, false)
	dealt := d.deal(2)

	assert.Equal(t, []Card{{Green, 7}, {Green, 8}}, dealt.hands["a"])
	assert.Equal(t, []Card{{Yellow, 3}, {Yellow, 4}}, dealt.hands["b"])
	assert.Equal(t, Card{Magician, 2}, dealt.trump)
	assert.Len(t, d.stack, len(deck)-5)
}

func TestOnlyColorTrump(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	forced := []Card{{Red, 1}, {Red, 2}, {Magician, 1}, {Fool, 1}, {Red, 7}}
	d := newDealer(seeded(1)(), deck, forced, []string{"a", "b"}, nil, true)
	dealt := d.deal(1)

	assert.Equal(t, Card{Red, 7}, dealt.trump)
	assert.Equal(t, map[string]int{string(Magician): 1, string(Fool): 1}, dealt.shifted)
}

func TestHeadfoolGetsAFool(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	for seed := uint64(0); seed < 20; seed++ {
		d := newDealer(seeded(seed)(), deck, nil, []string{"a", "b", "c"}, map[Role]string{Headfool: "b"}, false)
		dealt := d.deal(3)
		require.Len(t, dealt.hands["b"], 3)
		assert.Equal(t, Fool, dealt.hands["b"][0].Color)
	}
}

func TestServantGetsTwos(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	d := newDealer(seeded(5)(), deck, nil, []string{"a", "b"}, map[Role]string{Servant: "a"}, false)
	dealt := d.deal(3)
	require.Len(t, dealt.hands["a"], 3)
	for _, c := range dealt.hands["a"] {
		assert.True(t, c.Color.IsNormal())
		assert.Equal(t, 2.0, c.Value)
	}

	d = newDealer(seeded(5)(), deck, nil, []string{"a", "b"}, map[Role]string{Servant: "a"}, false)
	dealt = d.deal(6)
	twos := 0
	for _, c := range dealt.hands["a"] {
		if c.Color.IsNormal() && c.Value == 2 {
			twos++
		}
	}
	assert.GreaterOrEqual(t, twos, 4, "all four twos go to the servant")
	assert.Len(t, dealt.hands["a"], 6)
}

func TestBlasterInterceptsBomb(t *testing.T) {
	deck := BuildDeck(allRules(true, false))

	d := newDealer(seeded(1)(), deck, []Card{Bomb, {Red, 4}, {Red, 9}}, []string{"b", "a"}, map[Role]string{Blaster: "a"}, false)
	dealt := d.deal(1)
	assert.Equal(t, []Card{Bomb}, dealt.hands["a"])
	assert.Equal(t, []Card{{Red, 4}}, dealt.hands["b"])

	d = newDealer(seeded(1)(), deck, []Card{{Red, 1}, Bomb, {Red, 9}}, []string{"b", "a"}, map[Role]string{Blaster: "b"}, false)
	dealt = d.deal(1)
	assert.Equal(t, []Card{Bomb}, dealt.hands["b"], "full holder swaps the bomb in")
	assert.Equal(t, []Card{{Red, 1}}, dealt.hands["a"])
}

// fixedSource yields the same word forever. lowDraws makes every IntN(n) return 0, highDraws
// makes it return n-1.
type fixedSource uint64

func (s fixedSource) Uint64() uint64 { return uint64(s) }

const (
	lowDraws  = fixedSource(1 << 20)
	highDraws = fixedSource(math.MaxUint64)
)

func fixedRand(src fixedSource) *rand.Rand { return rand.New(src) }

func TestFixedSourceDraws(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 7, 60} {
		assert.Equal(t, 0, fixedRand(lowDraws).IntN(n))
		assert.Equal(t, n-1, fixedRand(highDraws).IntN(n))
	}
}

func TestColorPreferenceInterceptsOnHit(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	forced := []Card{{Green, 5}, {Red, 4}, {Blue, 9}}
	roles := map[Role]string{GreenSheep: "a"}

	d := newDealer(fixedRand(lowDraws), deck, forced, []string{"b", "a"}, roles, false)
	dealt := d.deal(1)
	assert.Equal(t, []Card{{Green, 5}}, dealt.hands["a"], "the sheep takes the green card meant for b")
	assert.Equal(t, []Card{{Red, 4}}, dealt.hands["b"])

	d = newDealer(fixedRand(highDraws), deck, forced, []string{"b", "a"}, roles, false)
	dealt = d.deal(1)
	assert.Equal(t, []Card{{Green, 5}}, dealt.hands["b"], "a missed draw leaves the card with b")
	assert.Equal(t, []Card{{Red, 4}}, dealt.hands["a"])
}

func TestColorPreferenceDisplacesFromFullHand(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	forced := []Card{{Red, 3}, {Green, 5}, {Blue, 9}}
	d := newDealer(fixedRand(lowDraws), deck, forced, []string{"a", "b"}, map[Role]string{GreenSheep: "a"}, false)
	dealt := d.deal(1)

	assert.Equal(t, []Card{{Green, 5}}, dealt.hands["a"])
	assert.Equal(t, []Card{{Red, 3}}, dealt.hands["b"], "the holder hands a card of its own back")
}

func TestColorPreferenceShiftsTrump(t *testing.T) {
	deck := BuildDeck(DefaultRules())
	forced := []Card{{Red, 1}, {Red, 2}, {Blue, 9}}
	roles := map[Role]string{GreenSheep: "a"}

	d := newDealer(fixedRand(lowDraws), deck, forced, []string{"a", "b"}, roles, false)
	dealt := d.deal(1)
	assert.Equal(t, Green, dealt.trump.Color, "non-preferred colors are skipped on every lost coin flip")
	assert.GreaterOrEqual(t, dealt.shifted[string(Blue)], 1)
	assert.Zero(t, dealt.shifted[string(Green)])

	d = newDealer(fixedRand(highDraws), deck, forced, []string{"a", "b"}, roles, false)
	dealt = d.deal(1)
	assert.Equal(t, Card{Blue, 9}, dealt.trump)
	assert.Empty(t, dealt.shifted)

	d = newDealer(fixedRand(lowDraws), deck, forced, []string{"a", "b"}, map[Role]string{Wizardmaster: "a"}, false)
	dealt = d.deal(1)
	assert.Equal(t, Card{Blue, 9}, dealt.trump, "the wizardmaster does not steer the trump")
}
