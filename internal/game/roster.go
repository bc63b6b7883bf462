package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/ppiankov/nightfall/internal/model"
)

// DefaultNames seats the table. The mayor always sits at 0.
var DefaultNames = []string{
	"Mayor", "Alder", "Briar", "Corin", "Dara", "Ebon", "Fenna", "Garrick",
	"Hollis", "Isolde", "Juniper", "Kestrel", "Linden", "Morrow", "Nell", "Oswin",
}

// DealRoles expands a composition to one role per seat and shuffles it
func DealRoles(players int, composition map[model.Role]int, rng *rand.Rand) ([]model.Role, error) {
	if players < 3 {
		return nil, fmt.Errorf("need at least 3 players, got %d", players)
	}

	// Iterate in a fixed order so a seed reproduces the same deal
	roles := make([]model.Role, 0, len(composition))
	for r := range composition {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	var deck []model.Role
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		for i := 0; i < composition[r]; i++ {
			deck = append(deck, r)
		}
	}
	if composition[model.RoleWolf] < 1 {
		return nil, fmt.Errorf("composition needs at least one wolf")
	}
	if len(deck) > players {
		return nil, fmt.Errorf("composition has %d special roles for %d seats", len(deck), players)
	}
	for len(deck) < players {
		deck = append(deck, model.RoleVillager)
	}

	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck, nil
}

// Seat builds the roster from dealt roles
func Seat(roles []model.Role) []*model.Player {
	players := make([]*model.Player, len(roles))
	for i, r := range roles {
		name := fmt.Sprintf("Player %d", i)
		if i < len(DefaultNames) {
			name = DefaultNames[i]
		}
		players[i] = model.NewPlayer(i, name, r)
	}
	return players
}
