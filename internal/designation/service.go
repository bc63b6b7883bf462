// Package designation validates and stores mayor overrides and enforces the
// per-day quotas of mayor questions.
package designation

import (
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// Outcome reports what happened to a designation request
type Outcome string

const (
	Accepted Outcome = "accepted"
	Cleared  Outcome = "cleared"  // Illegal self-inspection: the designation is dropped silently
	Rejected Outcome = "rejected" // Published as DesignationRejected
)

// Service owns designation rules; storage lives in the game state
type Service struct {
	state  *game.State
	bus    *event.Bus
	quotas model.QuotaConfig
}

// NewService creates a designation service
func NewService(state *game.State, bus *event.Bus, quotas model.QuotaConfig) *Service {
	return &Service{state: state, bus: bus, quotas: quotas}
}

// Set validates and stores a designation. actorID names the inspector for
// inspect designations and is ignored otherwise.
func (s *Service) Set(kind model.DesignationType, targetID, actorID int) Outcome {
	d := model.Designation{Type: kind, TargetID: targetID, Day: s.state.Day}

	switch kind {
	case model.DesignateVote, model.DesignateGuard:
		if !s.state.IsAlive(targetID) {
			return s.reject(string(kind), targetID, event.ReasonInvalidTarget)
		}
	case model.DesignateInspect:
		if !s.canInspect(actorID) {
			return s.reject(string(kind), targetID, event.ReasonNotPermitted)
		}
		if targetID == actorID {
			s.state.ClearDesignation(kind, actorID)
			return Cleared
		}
		if !s.state.IsAlive(targetID) {
			return s.reject(string(kind), targetID, event.ReasonInvalidTarget)
		}
		d.InspectorID = actorID
	default:
		return s.reject(string(kind), targetID, event.ReasonNotPermitted)
	}

	s.state.StoreDesignation(d)
	s.bus.Publish(event.NewDesignationSet(d))
	return Accepted
}

// canInspect accepts living true seers and living public seer claimants
func (s *Service) canInspect(id int) bool {
	p, ok := s.state.Player(id)
	if !ok || !p.Alive() {
		return false
	}
	return p.Role == model.RoleSeer || s.state.HasClaimed(id, model.RoleSeer)
}

func (s *Service) reject(action string, target int, reason string) Outcome {
	s.bus.Publish(event.NewDesignationRejected(action, target, reason))
	return Rejected
}

// Vote returns today's vote designation
func (s *Service) Vote() (model.Designation, bool) {
	return s.current(model.DesignateVote)
}

// Guard returns today's guard designation
func (s *Service) Guard() (model.Designation, bool) {
	return s.current(model.DesignateGuard)
}

func (s *Service) current(kind model.DesignationType) (model.Designation, bool) {
	d, ok := s.state.Designation(kind)
	if !ok || d.Day != s.state.Day {
		return model.Designation{}, false
	}
	return d, true
}

// ConsumeInspect returns and clears the inspect designation for inspector
func (s *Service) ConsumeInspect(inspector int) (model.Designation, bool) {
	d, ok := s.state.InspectDesignation(inspector)
	if !ok {
		return model.Designation{}, false
	}
	s.state.ClearDesignation(model.DesignateInspect, inspector)
	return d, d.Day == s.state.Day
}

// TryAskEveryone spends the "ask everyone's suspicion" quota
func (s *Service) TryAskEveryone() bool {
	return s.try(game.QuotaAskEveryone, s.quotas.AskEveryone)
}

// TryQuestion spends one individual-question quota
func (s *Service) TryQuestion(targetID int) bool {
	if !s.state.IsAlive(targetID) || targetID == s.state.MayorID {
		s.reject(string(game.QuotaQuestion), targetID, event.ReasonInvalidTarget)
		return false
	}
	return s.try(game.QuotaQuestion, s.quotas.IndividualQuestions)
}

func (s *Service) try(action game.QuotaAction, limit int) bool {
	if s.state.QuotaUsed(action) >= limit {
		s.reject(string(action), model.NoTarget, event.ReasonQuotaExceeded)
		return false
	}
	s.state.UseQuota(action)
	return true
}

// ResetDay clears every designation and quota. Calling it twice is the same as once.
func (s *Service) ResetDay() {
	s.state.ResetDaily()
}
