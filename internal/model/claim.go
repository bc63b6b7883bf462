package model

// ClaimType classifies a role announcement against the speaker's earlier claims
type ClaimType string

const (
	ClaimGenuine       ClaimType = "genuine"       // First claim of a role by this player today
	ClaimContradictory ClaimType = "contradictory" // Follows a genuine claim of a different role the same day
	ClaimNotAClaim     ClaimType = "not_a_claim"   // Negated, questioning, or no role pattern matched
)

// Accepted reports whether the claim is recorded and broadcast
func (t ClaimType) Accepted() bool {
	return t == ClaimGenuine || t == ClaimContradictory
}

// ClaimOrigin separates formation plans from claims actually made in public
type ClaimOrigin string

const (
	OriginPlanned  ClaimOrigin = "planned"  // Drawn from the formation at game start
	OriginRealized ClaimOrigin = "realized" // Announced during play
)

// ClaimRecord is one entry of the append-only claim ledger
type ClaimRecord struct {
	PlayerID    int         `json:"player_id"`
	ClaimedRole Role        `json:"claimed_role"`
	Day         int         `json:"day"`
	Type        ClaimType   `json:"type"`
	Origin      ClaimOrigin `json:"origin"`
	Heuristic   string      `json:"heuristic,omitempty"` // Which rule matched (e.g., "strong:seer", "template:co.seer")
}
