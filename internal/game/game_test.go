package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nightfall/internal/model"
)

func TestSelect_FirstNonEmptyPoolWins(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	id, rule, ok := Select(rng,
		Pool{Rule: "empty", Candidates: func() []int { return nil }},
		Pool{Rule: "single", Candidates: func() []int { return []int{7} }},
		Pool{Rule: "never", Candidates: func() []int { t.Fatal("later pool evaluated"); return nil }},
	)
	require.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, "single", rule)

	_, _, ok = Select(rng, Pool{Rule: "empty", Candidates: func() []int { return nil }})
	assert.False(t, ok)
}

func TestMaxBy(t *testing.T) {
	scores := map[int]int{1: 2, 2: 5, 3: 5, 4: 0}
	score := func(id int) int { return scores[id] }

	assert.Equal(t, []int{2, 3}, MaxBy([]int{1, 2, 3, 4}, score, 0))
	assert.Empty(t, MaxBy([]int{4}, score, 0))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		roles  []model.Role
		dead   []int
		winner model.Winner
	}{
		{"ongoing", []model.Role{model.RoleWolf, model.RoleVillager, model.RoleVillager}, nil, model.WinnerNone},
		{"village", []model.Role{model.RoleWolf, model.RoleVillager, model.RoleVillager}, []int{0}, model.WinnerVillage},
		{"parity", []model.Role{model.RoleWolf, model.RoleVillager, model.RoleVillager}, []int{1}, model.WinnerWolves},
		{"madman counts as human", []model.Role{model.RoleWolf, model.RoleMadman, model.RoleVillager, model.RoleVillager}, []int{3}, model.WinnerNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := Seat(tt.roles)
			for _, id := range tt.dead {
				players[id].Status = model.StatusDead
			}
			winner, _ := Evaluate(players)
			assert.Equal(t, tt.winner, winner)
		})
	}
}

func TestDealRoles(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	comp := model.DefaultConfig().Game.Composition

	roles, err := DealRoles(10, comp, rng)
	require.NoError(t, err)
	require.Len(t, roles, 10)

	counts := make(map[model.Role]int)
	for _, r := range roles {
		counts[r]++
	}
	assert.Equal(t, 2, counts[model.RoleWolf])
	assert.Equal(t, 4, counts[model.RoleVillager])

	_, err = DealRoles(4, comp, rng)
	assert.Error(t, err)
	_, err = DealRoles(5, map[model.Role]int{model.RoleSeer: 1}, rng)
	assert.Error(t, err, "no wolves")
}

func TestDrawFormation(t *testing.T) {
	players := Seat([]model.Role{
		model.RoleVillager, model.RoleSeer, model.RoleMedium, model.RoleMadman,
		model.RoleWolf, model.RoleWolf, model.RoleKnight, model.RoleVillager,
	})
	seen := make(map[string]bool)
	for seed := int64(0); seed < 50; seed++ {
		f := DrawFormation(players, 0, rand.New(rand.NewSource(seed)))
		seen[f.Name] = true
		require.Equal(t, 1, f.Seers[0], "true seer claims first")
		assert.Equal(t, len(f.Seers) >= 3 || len(f.Mediums) >= 2, f.AllowInvestigatorAttack)
		assert.NotContains(t, f.Seers, 0)
	}
	assert.Len(t, seen, 4)
}
