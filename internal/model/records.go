package model

// Statement is one utterance in the append-only discussion log
type Statement struct {
	Day       int    `json:"day"`
	SpeakerID int    `json:"speaker_id"`
	Content   string `json:"content"`
	Key       string `json:"key,omitempty"` // Flavor template key when templated
}

// NightActionResult is the reconciled outcome of one night.
// It is consumed at the following dawn and then discarded.
type NightActionResult struct {
	Day            int `json:"day"`
	AttackTargetID int `json:"attack_target_id"`
	GuardTargetID  int `json:"guard_target_id"`
}

// Saved reports whether the guard negated the attack
func (r NightActionResult) Saved() bool {
	return r.AttackTargetID != NoTarget && r.AttackTargetID == r.GuardTargetID
}

// InspectionRecord is one memo entry. Genuine and decoy memos share this shape.
type InspectionRecord struct {
	Day      int  `json:"day"`
	TargetID int  `json:"target_id"`
	IsWolf   bool `json:"is_wolf"`
}

// DesignationType names a mayor override
type DesignationType string

const (
	DesignateVote    DesignationType = "vote"
	DesignateInspect DesignationType = "inspect"
	DesignateGuard   DesignationType = "guard"
)

// Designation is an active mayor override for the current day
type Designation struct {
	Type        DesignationType `json:"type"`
	TargetID    int             `json:"target_id"`
	Day         int             `json:"day"`
	InspectorID int             `json:"inspector_id,omitempty"` // Only for inspect designations
}

// VoteRecord is one ballot. TargetID == NoTarget is an abstention.
type VoteRecord struct {
	Day      int `json:"day"`
	VoterID  int `json:"voter_id"`
	TargetID int `json:"target_id"`
}

// Abstained reports whether the ballot is excluded from the tally
func (v VoteRecord) Abstained() bool {
	return v.TargetID == NoTarget
}

// Phase is the controller's current state
type Phase string

const (
	PhaseDay   Phase = "day"
	PhaseNight Phase = "night"
	PhaseEnded Phase = "ended"
)

// Winner is the result of the win-condition check
type Winner string

const (
	WinnerNone    Winner = ""
	WinnerVillage Winner = "village"
	WinnerWolves  Winner = "wolves"
)
