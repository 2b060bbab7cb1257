// internal/game/order.go
package game

// generateOrder returns the players ordered by (index*direction + offset) mod n over the
// fixed player list. direction is -1 when reversed.
func generateOrder(players []string, offset int, reversed bool) []string {
	n := len(players)
	if n == 0 {
		return nil
	}
	direction := 1
	if reversed {
		direction = -1
	}
	order := make([]string, n)
	for i := range players {
		idx := ((i*direction+offset)%n + n) % n
		order[i] = players[idx]
	}
	return order
}

// stitchOrder is the prediction order of the current round. It never reverses.
func (g *Game) stitchOrder() []string {
	return generateOrder(g.players, g.round-1, false)
}

// playOrder is the order of the first trick of the current round.
func (g *Game) playOrder() []string {
	return generateOrder(g.players, g.round, g.reversed)
}

// nextTrickOrder starts the following trick at the previous trick's winner.
func (g *Game) nextTrickOrder(winner string) []string {
	return generateOrder(g.players, indexOf(g.players, winner), g.reversed)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
