package game

import "github.com/ppiankov/nightfall/internal/model"

// UpdateTrust converges confirmed-white/black flags from public reveals.
// A verdict converges when at least two claimants agree and none disagree,
// or when the sole claimant of that kind announced it.
func (s *State) UpdateTrust() {
	s.converge(RevealInspection, model.RoleSeer)
	s.converge(RevealMedium, model.RoleMedium)
}

func (s *State) converge(kind RevealKind, role model.Role) {
	sole := len(s.Claimants(role)) == 1

	type tally struct{ white, black map[int]bool }
	verdicts := make(map[int]*tally)
	for _, r := range s.reveals {
		if r.Kind != kind {
			continue
		}
		t, ok := verdicts[r.Record.TargetID]
		if !ok {
			t = &tally{white: make(map[int]bool), black: make(map[int]bool)}
			verdicts[r.Record.TargetID] = t
		}
		if r.Record.IsWolf {
			t.black[r.ClaimantID] = true
		} else {
			t.white[r.ClaimantID] = true
		}
	}

	for target, t := range verdicts {
		p, ok := s.Player(target)
		if !ok {
			continue
		}
		switch {
		case len(t.black) == 0 && (len(t.white) >= 2 || (sole && len(t.white) == 1)):
			p.MarkWhite()
		case len(t.white) == 0 && (len(t.black) >= 2 || (sole && len(t.black) == 1)):
			p.MarkBlack()
		}
	}
}
