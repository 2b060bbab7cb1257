// internal/game/scoring.go
package game

// maxCappedPoints is the per-round ceiling under the "Max. 30" points rule.
const maxCappedPoints = 30

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// scoreRound computes every player's point delta for the finished round.
func scoreRound(players []string, goals, done map[string]int, roles map[Role]string, rules RuleSet) map[string]int {
	n := len(players)
	fair := 0
	if n > 0 {
		fair = 12 / n
	}

	roleOf := make(map[string][]Role, len(roles))
	for r, p := range roles {
		roleOf[p] = append(roleOf[p], r)
	}
	hasRole := func(p string, r Role) bool {
		for _, pr := range roleOf[p] {
			if pr == r {
				return true
			}
		}
		return false
	}

	amounts := make(map[string]int, n)
	for _, p := range players {
		d, g := done[p], goals[p]
		diff := abs(g - d)
		correct := d == g

		amount := -10 * diff
		if correct {
			amount = 20 + 10*d
		}

		switch {
		case hasRole(p, Gambler):
			if correct {
				amount = d * 20
			} else {
				amount = -20 * diff
			}
		case hasRole(p, Pessimist):
			if correct && d == 0 {
				amount = 50
			} else {
				amount = min(amount, 20+10*fair)
			}
		case hasRole(p, Optimist):
			switch {
			case correct:
				amount = d * 10
				if d >= fair {
					amount += 20
				}
			case diff == 1:
				amount = 5 * d
			default:
				amount = -10 * diff
			}
		case hasRole(p, Greedy):
			if d >= g {
				amount = 5 * (g + d)
			} else {
				amount = -10 * diff
			}
		}
		amounts[p] = amount
	}

	if gleeful, ok := roles[Gleeful]; ok {
		if _, playing := amounts[gleeful]; playing {
			losers := 0
			for _, p := range players {
				if p != gleeful && amounts[p] < 0 {
					losers++
				}
			}
			amounts[gleeful] += 5 * losers
		}
	}

	if rules.Is(RulePoints, PointsMax30) {
		for p, a := range amounts {
			amounts[p] = min(a, maxCappedPoints)
		}
	}
	return amounts
}
