package game

import (
	"fmt"
	"math/rand"

	"github.com/ppiankov/nightfall/internal/model"
)

// Formation is the Day-1 claim pattern drawn at game start
type Formation struct {
	Name    string
	Seers   []int // Planned seer claimants, true holder first
	Mediums []int // Planned medium claimants, true holder first

	// AllowInvestigatorAttack lifts the first attack's avoidance of claimants
	AllowInvestigatorAttack bool
}

// Claimants returns every planned claimant with the role it will claim
func (f Formation) Claimants() map[int]model.Role {
	out := make(map[int]model.Role, len(f.Seers)+len(f.Mediums))
	for _, id := range f.Seers {
		out[id] = model.RoleSeer
	}
	for _, id := range f.Mediums {
		out[id] = model.RoleMedium
	}
	return out
}

// DrawFormation picks one of the formations the roster can support.
// The mayor never appears in a formation.
func DrawFormation(players []*model.Player, mayorID int, rng *rand.Rand) Formation {
	var seers, mediums, madmen, wolves []int
	for _, p := range players {
		if p.ID == mayorID {
			continue
		}
		switch p.Role {
		case model.RoleSeer:
			seers = append(seers, p.ID)
		case model.RoleMedium:
			mediums = append(mediums, p.ID)
		case model.RoleMadman:
			madmen = append(madmen, p.ID)
		case model.RoleWolf:
			wolves = append(wolves, p.ID)
		}
	}

	options := []Formation{{Seers: seers, Mediums: mediums}}
	if len(madmen) > 0 {
		options = append(options, Formation{Seers: with(seers, madmen[0]), Mediums: mediums})
		if len(wolves) > 0 {
			wolf := wolves[rng.Intn(len(wolves))]
			options = append(options,
				Formation{Seers: with(with(seers, madmen[0]), wolf), Mediums: mediums},
				Formation{Seers: with(seers, madmen[0]), Mediums: with(mediums, wolf)},
			)
		}
	}

	f := options[rng.Intn(len(options))]
	f.Name = fmt.Sprintf("%d-%d", len(f.Seers), len(f.Mediums))
	f.AllowInvestigatorAttack = len(f.Seers) >= 3 || len(f.Mediums) >= 2
	return f
}

// Plan writes the formation into the claim ledger as planned entries
func (s *State) Plan(f Formation) {
	s.Formation = f
	for _, id := range f.Seers {
		s.AppendClaim(model.ClaimRecord{PlayerID: id, ClaimedRole: model.RoleSeer, Day: 1, Type: model.ClaimGenuine, Origin: model.OriginPlanned})
	}
	for _, id := range f.Mediums {
		s.AppendClaim(model.ClaimRecord{PlayerID: id, ClaimedRole: model.RoleMedium, Day: 1, Type: model.ClaimGenuine, Origin: model.OriginPlanned})
	}
}

func with(ids []int, id int) []int {
	out := make([]int, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}
