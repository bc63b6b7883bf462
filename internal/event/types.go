package event

import (
	"time"

	"github.com/ppiankov/nightfall/internal/model"
)

// Event types, "category.action"
const (
	TypeGameStarted         = "game.started"
	TypePhaseChanged        = "phase.changed"
	TypeStatement           = "statement.emitted"
	TypeVoteCast            = "vote.cast"
	TypeExecution           = "execution.resolved"
	TypeAttack              = "attack.resolved"
	TypeClaimBroadcast      = "claim.broadcast"
	TypeResultRevealed      = "result.revealed"
	TypeDesignationSet      = "designation.set"
	TypeDesignationRejected = "designation.rejected"
	TypeNightActionRequest  = "night.action_requested"
	TypeGameEnded           = "game.ended"
)

// Event is implemented by every notification.
type Event interface {
	EventType() string
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// GameStarted opens a new game.
type GameStarted struct {
	baseEvent
	GameID    string
	Formation string
	Players   []string
	MayorRole model.Role
}

// NewGameStarted creates a GameStarted event.
func NewGameStarted(gameID, formation string, players []string, mayorRole model.Role) GameStarted {
	return GameStarted{newBaseEvent(TypeGameStarted), gameID, formation, players, mayorRole}
}

// PhaseChanged is a phase transition.
type PhaseChanged struct {
	baseEvent
	Day   int
	Phase model.Phase
}

// NewPhaseChanged creates a PhaseChanged event.
func NewPhaseChanged(day int, phase model.Phase) PhaseChanged {
	return PhaseChanged{newBaseEvent(TypePhaseChanged), day, phase}
}

// StatementEmitted is one line of discussion.
type StatementEmitted struct {
	baseEvent
	Statement   model.Statement
	SpeakerName string
}

// NewStatementEmitted creates a StatementEmitted event.
func NewStatementEmitted(st model.Statement, speaker string) StatementEmitted {
	return StatementEmitted{newBaseEvent(TypeStatement), st, speaker}
}

// VoteCast is one ballot.
type VoteCast struct {
	baseEvent
	Vote model.VoteRecord
}

// NewVoteCast creates a VoteCast event.
func NewVoteCast(v model.VoteRecord) VoteCast {
	return VoteCast{newBaseEvent(TypeVoteCast), v}
}

// ExecutionResolved ends a day's vote. TargetID is NoTarget when nobody was executed.
type ExecutionResolved struct {
	baseEvent
	Day      int
	TargetID int
	Tally    map[int]int
	TieBreak bool
}

// NewExecutionResolved creates an ExecutionResolved event.
func NewExecutionResolved(day, target int, tally map[int]int, tieBreak bool) ExecutionResolved {
	return ExecutionResolved{newBaseEvent(TypeExecution), day, target, tally, tieBreak}
}

// AttackResolved is the dawn outcome of a night.
type AttackResolved struct {
	baseEvent
	Day      int
	TargetID int
	Saved    bool
}

// NewAttackResolved creates an AttackResolved event.
func NewAttackResolved(day, target int, saved bool) AttackResolved {
	return AttackResolved{newBaseEvent(TypeAttack), day, target, saved}
}

// ClaimBroadcast delivers an accepted claim to every living player but the speaker.
type ClaimBroadcast struct {
	baseEvent
	Claim      model.ClaimRecord
	Recipients []int
}

// NewClaimBroadcast creates a ClaimBroadcast event.
func NewClaimBroadcast(c model.ClaimRecord, recipients []int) ClaimBroadcast {
	return ClaimBroadcast{newBaseEvent(TypeClaimBroadcast), c, recipients}
}

// ResultRevealed is a claimant announcing a memo.
type ResultRevealed struct {
	baseEvent
	Day        int
	ClaimantID int
	Role       model.Role
	Record     model.InspectionRecord
}

// NewResultRevealed creates a ResultRevealed event.
func NewResultRevealed(day, claimant int, role model.Role, rec model.InspectionRecord) ResultRevealed {
	return ResultRevealed{newBaseEvent(TypeResultRevealed), day, claimant, role, rec}
}

// DesignationSet confirms an accepted mayor override.
type DesignationSet struct {
	baseEvent
	Designation model.Designation
}

// NewDesignationSet creates a DesignationSet event.
func NewDesignationSet(d model.Designation) DesignationSet {
	return DesignationSet{newBaseEvent(TypeDesignationSet), d}
}

// DesignationRejected reports a mayor operation that was not performed.
type DesignationRejected struct {
	baseEvent
	Action   string
	TargetID int
	Reason   string
}

// Rejection reasons
const (
	ReasonQuotaExceeded = "quota_exceeded"
	ReasonInvalidTarget = "invalid_target"
	ReasonNotPermitted  = "not_permitted"
)

// NewDesignationRejected creates a DesignationRejected event.
func NewDesignationRejected(action string, target int, reason string) DesignationRejected {
	return DesignationRejected{newBaseEvent(TypeDesignationRejected), action, target, reason}
}

// NightActionRequested asks the mayor for a night target among Legal.
type NightActionRequested struct {
	baseEvent
	Day   int
	Role  model.Role
	Legal []int
}

// NewNightActionRequested creates a NightActionRequested event.
func NewNightActionRequested(day int, role model.Role, legal []int) NightActionRequested {
	return NightActionRequested{newBaseEvent(TypeNightActionRequest), day, role, legal}
}

// GameEnded carries the role reveal.
type GameEnded struct {
	baseEvent
	Summary model.Summary
}

// NewGameEnded creates a GameEnded event.
func NewGameEnded(s model.Summary) GameEnded {
	return GameEnded{newBaseEvent(TypeGameEnded), s}
}
