// Package claim tracks role announcements: it classifies free text, records
// templated claims, detects same-day contradictions, and broadcasts accepted
// claims to the living table.
package claim

import (
	"strings"

	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// TemplatePrefix marks flavor keys that carry a role claim ("co.seer")
const TemplatePrefix = "co."

// reactionWidth is how many living players a contradiction puts under pressure
const reactionWidth = 3

// Tracker records claims into the state's ledger
type Tracker struct {
	state      *game.State
	bus        *event.Bus
	classifier *Classifier
}

// NewTracker creates a tracker bound to a game
func NewTracker(state *game.State, bus *event.Bus) *Tracker {
	return &Tracker{
		state:      state,
		bus:        bus,
		classifier: NewClassifier(),
	}
}

// TemplateKey returns the flavor key of a templated claim of role
func TemplateKey(role model.Role) string {
	return TemplatePrefix + string(role)
}

// Observe inspects a statement. Templated claim keys bypass text parsing;
// everything else goes through the classifier. NotAClaim results are
// returned but never recorded or broadcast.
func (t *Tracker) Observe(st model.Statement) (model.ClaimRecord, bool) {
	if role, ok := strings.CutPrefix(st.Key, TemplatePrefix); ok {
		return t.Record(st.SpeakerID, model.Role(role), "template:"+st.Key)
	}

	m, ok := t.classifier.Classify(st.Content)
	if !ok {
		return model.ClaimRecord{PlayerID: st.SpeakerID, Day: st.Day, Type: model.ClaimNotAClaim, Origin: model.OriginRealized}, false
	}
	return t.Record(st.SpeakerID, m.Role, m.Heuristic)
}

// Record classifies and stores a claim of role by player on the current day.
// It reports false when nothing was recorded: unknown or dead speaker, or a
// repeat of the same role already claimed today.
func (t *Tracker) Record(playerID int, role model.Role, heuristic string) (model.ClaimRecord, bool) {
	day := t.state.Day
	rec := model.ClaimRecord{
		PlayerID:    playerID,
		ClaimedRole: role,
		Day:         day,
		Type:        model.ClaimGenuine,
		Origin:      model.OriginRealized,
		Heuristic:   heuristic,
	}
	if !role.Valid() || !t.state.IsAlive(playerID) {
		rec.Type = model.ClaimNotAClaim
		return rec, false
	}

	prior := t.state.RealizedClaimsOn(playerID, day)
	flipped := false
	for _, c := range prior {
		if c.Type == model.ClaimContradictory {
			flipped = true
		}
	}
	if !flipped {
		for _, c := range prior {
			if c.Type != model.ClaimGenuine {
				continue
			}
			if c.ClaimedRole == role {
				return c, false
			}
			flipped = true
		}
	}
	if flipped {
		rec.Type = model.ClaimContradictory
		t.pressure(playerID)
	}

	t.state.AppendClaim(rec)
	if role == model.RoleKnight {
		t.state.SetLikelyAttackTarget(playerID)
	}
	t.broadcast(rec)
	return rec, true
}

// pressure widens the forced-reaction flag over several living players
func (t *Tracker) pressure(speaker int) {
	ids := t.state.LivingIDs(func(p *model.Player) bool { return p.ID != speaker && !p.Mayor })
	t.state.Rand().Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > reactionWidth {
		ids = ids[:reactionWidth]
	}
	for _, id := range ids {
		p, _ := t.state.Player(id)
		p.ForcedReaction = true
	}
}

func (t *Tracker) broadcast(rec model.ClaimRecord) {
	var recipients []int
	for _, p := range t.state.Living() {
		if p.ID == rec.PlayerID {
			continue
		}
		p.Heard = append(p.Heard, rec)
		recipients = append(recipients, p.ID)
	}
	t.bus.Publish(event.NewClaimBroadcast(rec, recipients))
}
