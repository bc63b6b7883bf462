package designation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

func newService(t *testing.T) (*Service, *game.State, *[]event.DesignationRejected) {
	t.Helper()
	roles := []model.Role{
		model.RoleVillager, model.RoleSeer, model.RoleWolf, model.RoleKnight,
		model.RoleVillager, model.RoleMadman,
	}
	s := game.New("test", game.Seat(roles), 0, rand.New(rand.NewSource(1)))
	bus := event.NewBus()
	var rejected []event.DesignationRejected
	bus.Subscribe(event.TypeDesignationRejected, func(e event.Event) {
		rejected = append(rejected, e.(event.DesignationRejected))
	})
	return NewService(s, bus, model.DefaultConfig().Quotas), s, &rejected
}

func TestService_SelfInspectionAlwaysCleared(t *testing.T) {
	svc, s, rejected := newService(t)

	require.Equal(t, Accepted, svc.Set(model.DesignateInspect, 4, 1))
	assert.Equal(t, Cleared, svc.Set(model.DesignateInspect, 1, 1))

	_, ok := s.InspectDesignation(1)
	assert.False(t, ok, "self-target clears the previous designation")
	assert.Empty(t, *rejected, "clearing is silent")
}

func TestService_InspectRequiresSeerOrClaimant(t *testing.T) {
	svc, s, rejected := newService(t)

	assert.Equal(t, Rejected, svc.Set(model.DesignateInspect, 2, 4))
	require.Len(t, *rejected, 1)
	assert.Equal(t, event.ReasonNotPermitted, (*rejected)[0].Reason)

	s.AppendClaim(model.ClaimRecord{PlayerID: 5, ClaimedRole: model.RoleSeer, Day: 1, Type: model.ClaimGenuine, Origin: model.OriginRealized})
	assert.Equal(t, Accepted, svc.Set(model.DesignateInspect, 2, 5), "decoy claimants take designations too")
}

func TestService_DeadTargetRejected(t *testing.T) {
	svc, s, rejected := newService(t)
	s.Kill(4)

	for _, kind := range []model.DesignationType{model.DesignateVote, model.DesignateGuard} {
		assert.Equal(t, Rejected, svc.Set(kind, 4, 0), string(kind))
	}
	assert.Equal(t, Rejected, svc.Set(model.DesignateInspect, 4, 1))
	assert.Equal(t, Rejected, svc.Set(model.DesignateVote, 99, 0))
	assert.Len(t, *rejected, 4)
	for _, r := range *rejected {
		assert.Equal(t, event.ReasonInvalidTarget, r.Reason)
	}
}

func TestService_OverwriteSameType(t *testing.T) {
	svc, _, _ := newService(t)

	svc.Set(model.DesignateVote, 2, 0)
	svc.Set(model.DesignateVote, 4, 0)

	d, ok := svc.Vote()
	require.True(t, ok)
	assert.Equal(t, 4, d.TargetID)
}

func TestService_ConsumeInspectOnce(t *testing.T) {
	svc, _, _ := newService(t)
	svc.Set(model.DesignateInspect, 2, 1)

	d, ok := svc.ConsumeInspect(1)
	require.True(t, ok)
	assert.Equal(t, 2, d.TargetID)

	_, ok = svc.ConsumeInspect(1)
	assert.False(t, ok)
}

func TestService_Quotas(t *testing.T) {
	svc, _, rejected := newService(t)

	assert.True(t, svc.TryAskEveryone())
	assert.False(t, svc.TryAskEveryone())

	for i := 0; i < 3; i++ {
		assert.True(t, svc.TryQuestion(2))
	}
	assert.False(t, svc.TryQuestion(2))

	require.Len(t, *rejected, 2)
	for _, r := range *rejected {
		assert.Equal(t, event.ReasonQuotaExceeded, r.Reason)
	}

	svc.ResetDay()
	assert.True(t, svc.TryAskEveryone(), "quotas reset with the day")
}

func TestService_QuestionToMayorOrDeadRejected(t *testing.T) {
	svc, s, _ := newService(t)
	s.Kill(3)

	assert.False(t, svc.TryQuestion(0))
	assert.False(t, svc.TryQuestion(3))
	assert.Zero(t, s.QuotaUsed(game.QuotaQuestion), "invalid targets spend no quota")
}

func TestService_ResetDayIdempotent(t *testing.T) {
	svc, s, _ := newService(t)
	svc.Set(model.DesignateVote, 2, 0)
	svc.Set(model.DesignateGuard, 4, 0)
	svc.Set(model.DesignateInspect, 2, 1)

	svc.ResetDay()
	svc.ResetDay()

	_, v := svc.Vote()
	_, g := svc.Guard()
	_, i := s.InspectDesignation(1)
	assert.False(t, v || g || i)
}

func TestService_StaleDesignationIgnored(t *testing.T) {
	svc, s, _ := newService(t)
	svc.Set(model.DesignateVote, 2, 0)

	s.Day = 2

	_, ok := svc.Vote()
	assert.False(t, ok, "designations only hold for the day they were set")
}
