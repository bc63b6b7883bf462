package game

import "github.com/ppiankov/nightfall/internal/model"

// Evaluate is the win condition: a pure function of the living roster.
// The madman counts as human.
func Evaluate(players []*model.Player) (model.Winner, string) {
	wolves, humans := 0, 0
	for _, p := range players {
		if !p.Alive() {
			continue
		}
		if p.IsWolf() {
			wolves++
		} else {
			humans++
		}
	}

	switch {
	case wolves == 0:
		return model.WinnerVillage, "all wolves eliminated"
	case wolves >= humans:
		return model.WinnerWolves, "wolves reached parity"
	default:
		return model.WinnerNone, ""
	}
}
