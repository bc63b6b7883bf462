package model

// Role is a hidden role dealt to a player at game start
type Role string

const (
	RoleVillager Role = "villager" // Ordinary villager, no night action
	RoleWolf     Role = "wolf"     // Attacks at night
	RoleSeer     Role = "seer"     // Inspects one player per night
	RoleMedium   Role = "medium"   // Learns whether the executed player was a wolf
	RoleKnight   Role = "knight"   // Protects one player per night
	RoleMadman   Role = "madman"   // Human who wins with the wolves
)

// Team returns the side a role wins with
func (r Role) Team() Team {
	switch r {
	case RoleWolf, RoleMadman:
		return TeamWolf
	default:
		return TeamVillage
	}
}

// Investigative reports whether the role produces memos (seer, medium)
func (r Role) Investigative() bool {
	return r == RoleSeer || r == RoleMedium
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleVillager, RoleWolf, RoleSeer, RoleMedium, RoleKnight, RoleMadman:
		return true
	}
	return false
}

// Team is the winning side a player belongs to
type Team string

const (
	TeamVillage Team = "village"
	TeamWolf    Team = "wolf"
)

// Status is a player's life status
type Status string

const (
	StatusAlive Status = "alive"
	StatusDead  Status = "dead"
)

// NoTarget marks an absent target id (abstention, no attack, no guard)
const NoTarget = -1

// Player is one seat at the table. Dead players stay in the roster.
type Player struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Team   Team   `json:"team"`
	Status Status `json:"status"`
	Mayor  bool   `json:"mayor,omitempty"`

	confirmedWhite bool
	confirmedBlack bool

	// ForcedReaction makes the player speak first in the next discussion round
	ForcedReaction bool `json:"-"`

	// Heard holds claims broadcast to this player while alive
	Heard []ClaimRecord `json:"-"`
}

// NewPlayer creates a living player holding role
func NewPlayer(id int, name string, role Role) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Role:   role,
		Team:   role.Team(),
		Status: StatusAlive,
	}
}

// Alive reports whether the player is still in the game
func (p *Player) Alive() bool {
	return p.Status == StatusAlive
}

// IsWolf reports whether an inspection of this player reads as wolf
func (p *Player) IsWolf() bool {
	return p.Role == RoleWolf
}

// ConfirmedWhite reports whether the player is publicly proven non-wolf
func (p *Player) ConfirmedWhite() bool { return p.confirmedWhite }

// ConfirmedBlack reports whether the player is publicly proven wolf
func (p *Player) ConfirmedBlack() bool { return p.confirmedBlack }

// MarkWhite sets the confirmed-white flag and clears confirmed-black
func (p *Player) MarkWhite() {
	p.confirmedWhite = true
	p.confirmedBlack = false
}

// MarkBlack sets the confirmed-black flag and clears confirmed-white
func (p *Player) MarkBlack() {
	p.confirmedBlack = true
	p.confirmedWhite = false
}
