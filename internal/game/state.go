// Package game holds the GameState aggregate shared by every engine component.
// The phase controller owns the State; trackers and resolvers receive it as
// an injected dependency and mutate it only from the control goroutine.
package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/ppiankov/nightfall/internal/model"
)

// QuotaAction names a mayor action limited per day
type QuotaAction string

const (
	QuotaAskEveryone QuotaAction = "ask_everyone"
	QuotaQuestion    QuotaAction = "individual_question"
)

// RevealKind separates seer and medium announcements
type RevealKind string

const (
	RevealInspection RevealKind = "inspection"
	RevealMedium     RevealKind = "medium"
)

// Reveal is a memo announced in public by a claimant
type Reveal struct {
	Day        int
	ClaimantID int
	Kind       RevealKind
	Record     model.InspectionRecord
}

// State is the complete mutable game state
type State struct {
	ID        string
	Day       int
	Phase     model.Phase
	MayorID   int
	Formation Formation
	StartedAt time.Time

	rng *rand.Rand

	players     []*model.Player
	statements  []model.Statement
	claims      []model.ClaimRecord
	votes       []model.VoteRecord
	reveals     []Reveal
	memos       map[int][]model.InspectionRecord
	mediumMemos map[int][]model.InspectionRecord
	executions  map[int]int
	attacks     map[int]int
	lastGuard   map[int]int
	pending     *model.NightActionResult

	likelyAttackTarget int

	voteDesignation    *model.Designation
	guardDesignation   *model.Designation
	inspectDesignation map[int]model.Designation
	quotaUsed          map[QuotaAction]int
}

// New creates the state for a fresh game. players[i].ID must equal i.
func New(id string, players []*model.Player, mayorID int, rng *rand.Rand) *State {
	s := &State{
		ID:                 id,
		Day:                1,
		Phase:              model.PhaseDay,
		MayorID:            mayorID,
		StartedAt:          time.Now(),
		rng:                rng,
		players:            players,
		memos:              make(map[int][]model.InspectionRecord),
		mediumMemos:        make(map[int][]model.InspectionRecord),
		executions:         make(map[int]int),
		attacks:            make(map[int]int),
		lastGuard:          make(map[int]int),
		likelyAttackTarget: model.NoTarget,
		inspectDesignation: make(map[int]model.Designation),
		quotaUsed:          make(map[QuotaAction]int),
	}
	if p, ok := s.Player(mayorID); ok {
		p.Mayor = true
	}
	return s
}

// Rand returns the game's random source
func (s *State) Rand() *rand.Rand {
	return s.rng
}

// Player returns the player with id
func (s *State) Player(id int) (*model.Player, bool) {
	if id < 0 || id >= len(s.players) {
		return nil, false
	}
	return s.players[id], true
}

// Players returns the full roster including dead players
func (s *State) Players() []*model.Player {
	return s.players
}

// Living returns living players in seat order
func (s *State) Living() []*model.Player {
	var out []*model.Player
	for _, p := range s.players {
		if p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

// LivingIDs returns ids of living players accepted by keep (nil keeps all)
func (s *State) LivingIDs(keep func(*model.Player) bool) []int {
	var ids []int
	for _, p := range s.players {
		if p.Alive() && (keep == nil || keep(p)) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// IsAlive reports whether id names a living player
func (s *State) IsAlive(id int) bool {
	p, ok := s.Player(id)
	return ok && p.Alive()
}

// Kill marks the player dead. Dead players stay addressable.
func (s *State) Kill(id int) {
	if p, ok := s.Player(id); ok {
		p.Status = model.StatusDead
	}
}

// Mayor returns the human participant
func (s *State) Mayor() *model.Player {
	p, _ := s.Player(s.MayorID)
	return p
}

// AddStatement appends to the discussion log
func (s *State) AddStatement(st model.Statement) {
	s.statements = append(s.statements, st)
}

// Statements returns the discussion log
func (s *State) Statements() []model.Statement {
	return s.statements
}

// SpeechCount counts statements made by id on day
func (s *State) SpeechCount(day, id int) int {
	n := 0
	for _, st := range s.statements {
		if st.Day == day && st.SpeakerID == id {
			n++
		}
	}
	return n
}

// AppendClaim adds an entry to the claim ledger
func (s *State) AppendClaim(rec model.ClaimRecord) {
	s.claims = append(s.claims, rec)
}

// Claims returns the full ledger, planned and realized
func (s *State) Claims() []model.ClaimRecord {
	return s.claims
}

// RealizedClaimsOn returns realized claims made by id on day
func (s *State) RealizedClaimsOn(id, day int) []model.ClaimRecord {
	var out []model.ClaimRecord
	for _, c := range s.claims {
		if c.Origin == model.OriginRealized && c.PlayerID == id && c.Day == day {
			out = append(out, c)
		}
	}
	return out
}

// Claimants returns distinct players with a realized claim of any of roles
func (s *State) Claimants(roles ...model.Role) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, c := range s.claims {
		if c.Origin != model.OriginRealized || !c.Type.Accepted() || seen[c.PlayerID] {
			continue
		}
		for _, r := range roles {
			if c.ClaimedRole == r {
				seen[c.PlayerID] = true
				ids = append(ids, c.PlayerID)
				break
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// HasClaimed reports whether id publicly claimed any of roles
func (s *State) HasClaimed(id int, roles ...model.Role) bool {
	for _, c := range s.claims {
		if c.Origin != model.OriginRealized || c.PlayerID != id || !c.Type.Accepted() {
			continue
		}
		for _, r := range roles {
			if c.ClaimedRole == r {
				return true
			}
		}
	}
	return false
}

// HasContradiction reports whether id ever made a contradictory claim
func (s *State) HasContradiction(id int) bool {
	for _, c := range s.claims {
		if c.Origin == model.OriginRealized && c.PlayerID == id && c.Type == model.ClaimContradictory {
			return true
		}
	}
	return false
}

// PlannedClaim returns the formation's planned role for id
func (s *State) PlannedClaim(id int) (model.Role, bool) {
	for _, c := range s.claims {
		if c.Origin == model.OriginPlanned && c.PlayerID == id {
			return c.ClaimedRole, true
		}
	}
	return "", false
}

// IsTrueClaim reports whether id holds the role it claims. This is the only
// lookup that tells decoy memos apart from genuine ones.
func (s *State) IsTrueClaim(id int, role model.Role) bool {
	p, ok := s.Player(id)
	return ok && p.Role == role && s.HasClaimed(id, role)
}

// LikelyAttackTarget returns the protector-claim hint, or NoTarget
func (s *State) LikelyAttackTarget() int {
	return s.likelyAttackTarget
}

// SetLikelyAttackTarget records the hint consumed by the night resolver
func (s *State) SetLikelyAttackTarget(id int) {
	s.likelyAttackTarget = id
}

// AddVote appends a ballot
func (s *State) AddVote(v model.VoteRecord) {
	s.votes = append(s.votes, v)
}

// VotesOn returns ballots cast on day
func (s *State) VotesOn(day int) []model.VoteRecord {
	var out []model.VoteRecord
	for _, v := range s.votes {
		if v.Day == day {
			out = append(out, v)
		}
	}
	return out
}

// AddMemo appends an inspection memo for inspector
func (s *State) AddMemo(inspector int, rec model.InspectionRecord) {
	s.memos[inspector] = append(s.memos[inspector], rec)
}

// Memos returns a copy of inspector's memos
func (s *State) Memos(inspector int) []model.InspectionRecord {
	return append([]model.InspectionRecord(nil), s.memos[inspector]...)
}

// LatestMemo returns inspector's memo for day, falling back to the previous
// day's record. Stored history is never changed by the fallback.
func (s *State) LatestMemo(inspector, day int) (model.InspectionRecord, bool) {
	return latest(s.memos[inspector], day)
}

// AddMediumMemo appends a medium memo
func (s *State) AddMediumMemo(medium int, rec model.InspectionRecord) {
	s.mediumMemos[medium] = append(s.mediumMemos[medium], rec)
}

// MediumMemos returns a copy of medium's memos
func (s *State) MediumMemos(medium int) []model.InspectionRecord {
	return append([]model.InspectionRecord(nil), s.mediumMemos[medium]...)
}

// LatestMediumMemo is LatestMemo for medium memos
func (s *State) LatestMediumMemo(medium, day int) (model.InspectionRecord, bool) {
	return latest(s.mediumMemos[medium], day)
}

func latest(recs []model.InspectionRecord, day int) (model.InspectionRecord, bool) {
	var prev *model.InspectionRecord
	for i := range recs {
		if recs[i].Day == day {
			return recs[i], true
		}
		if recs[i].Day == day-1 {
			prev = &recs[i]
		}
	}
	if prev != nil {
		return *prev, true
	}
	return model.InspectionRecord{}, false
}

// InspectedBy returns targets in inspector's memos
func (s *State) InspectedBy(inspector int) map[int]bool {
	out := make(map[int]bool)
	for _, m := range s.memos[inspector] {
		out[m.TargetID] = true
	}
	return out
}

// AnnouncedByOthers returns targets that other claimants have publicly
// announced inspection results on. Unannounced memos stay private.
func (s *State) AnnouncedByOthers(inspector int) map[int]bool {
	out := make(map[int]bool)
	for _, r := range s.reveals {
		if r.Kind == RevealInspection && r.ClaimantID != inspector {
			out[r.Record.TargetID] = true
		}
	}
	return out
}

// AddReveal records a publicly announced memo
func (s *State) AddReveal(r Reveal) {
	s.reveals = append(s.reveals, r)
}

// Reveals returns all public announcements
func (s *State) Reveals() []Reveal {
	return s.reveals
}

// RecordExecution stores who was executed on day (NoTarget for nobody)
func (s *State) RecordExecution(day, id int) {
	s.executions[day] = id
}

// ExecutionOn returns the player executed on day
func (s *State) ExecutionOn(day int) (int, bool) {
	id, ok := s.executions[day]
	if !ok || id == model.NoTarget {
		return model.NoTarget, false
	}
	return id, true
}

// RecordAttack stores who died to the attack of the night after day
func (s *State) RecordAttack(day, id int) {
	s.attacks[day] = id
}

// AttackCount returns the number of nights on which wolves chose a target
func (s *State) AttackCount() int {
	return len(s.attacks)
}

// SetPendingNight stores the outcome to apply at dawn
func (s *State) SetPendingNight(r model.NightActionResult) {
	s.pending = &r
}

// TakePendingNight returns and discards the pending night outcome
func (s *State) TakePendingNight() (model.NightActionResult, bool) {
	if s.pending == nil {
		return model.NightActionResult{}, false
	}
	r := *s.pending
	s.pending = nil
	return r, true
}

// LastGuard returns the knight's previous target, or NoTarget
func (s *State) LastGuard(knight int) int {
	if id, ok := s.lastGuard[knight]; ok {
		return id
	}
	return model.NoTarget
}

// SetLastGuard records the knight's target for tonight
func (s *State) SetLastGuard(knight, target int) {
	s.lastGuard[knight] = target
}

// Designation returns the active vote or guard designation
func (s *State) Designation(kind model.DesignationType) (model.Designation, bool) {
	var d *model.Designation
	switch kind {
	case model.DesignateVote:
		d = s.voteDesignation
	case model.DesignateGuard:
		d = s.guardDesignation
	}
	if d == nil {
		return model.Designation{}, false
	}
	return *d, true
}

// InspectDesignation returns the active inspect designation for inspector
func (s *State) InspectDesignation(inspector int) (model.Designation, bool) {
	d, ok := s.inspectDesignation[inspector]
	return d, ok
}

// StoreDesignation overwrites the active designation of the same type
func (s *State) StoreDesignation(d model.Designation) {
	switch d.Type {
	case model.DesignateVote:
		s.voteDesignation = &d
	case model.DesignateGuard:
		s.guardDesignation = &d
	case model.DesignateInspect:
		s.inspectDesignation[d.InspectorID] = d
	}
}

// ClearDesignation removes the designation of kind (inspector only for inspect)
func (s *State) ClearDesignation(kind model.DesignationType, inspector int) {
	switch kind {
	case model.DesignateVote:
		s.voteDesignation = nil
	case model.DesignateGuard:
		s.guardDesignation = nil
	case model.DesignateInspect:
		delete(s.inspectDesignation, inspector)
	}
}

// QuotaUsed returns how often action ran today
func (s *State) QuotaUsed(action QuotaAction) int {
	return s.quotaUsed[action]
}

// UseQuota counts one use of action
func (s *State) UseQuota(action QuotaAction) {
	s.quotaUsed[action]++
}

// ResetDaily clears designations and quotas
func (s *State) ResetDaily() {
	s.voteDesignation = nil
	s.guardDesignation = nil
	s.inspectDesignation = make(map[int]model.Designation)
	s.quotaUsed = make(map[QuotaAction]int)
}

// Summary builds the role reveal
func (s *State) Summary(winner model.Winner, reason string) model.Summary {
	sum := model.Summary{
		GameID:     s.ID,
		Winner:     winner,
		Reason:     reason,
		Days:       s.Day,
		Formation:  s.Formation.Name,
		StartedAt:  s.StartedAt,
		FinishedAt: time.Now(),
	}
	for _, p := range s.players {
		sum.Players = append(sum.Players, model.PlayerFinal{
			ID: p.ID, Name: p.Name, Role: p.Role, Team: p.Team, Status: p.Status, Mayor: p.Mayor,
		})
	}
	for day := 1; day <= s.Day; day++ {
		if id, ok := s.executions[day]; ok {
			sum.Executions = append(sum.Executions, id)
		}
		if id, ok := s.attacks[day]; ok {
			sum.Attacks = append(sum.Attacks, id)
		}
	}
	return sum
}
