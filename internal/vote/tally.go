// Package vote collects one ballot per living player, applies a vote
// designation, and resolves the day's execution.
package vote

import (
	"math/rand"
	"sort"

	"github.com/ppiankov/nightfall/internal/designation"
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// Result is the outcome of a day's vote
type Result struct {
	Day      int
	Ballots  []model.VoteRecord
	Count    map[int]int
	TargetID int // NoTarget when nobody was executed
	TieBreak bool
}

// Executed reports whether the vote killed someone
func (r Result) Executed() bool {
	return r.TargetID != model.NoTarget
}

// Tally runs the vote against the game state
type Tally struct {
	state        *game.State
	designations *designation.Service
	bus          *event.Bus
}

// NewTally creates a vote tally
func NewTally(state *game.State, designations *designation.Service, bus *event.Bus) *Tally {
	return &Tally{state: state, designations: designations, bus: bus}
}

// Run collects ballots, counts them and executes the winner.
// mayorBallot is the mayor's choice; NoTarget or an illegal target abstains.
func (t *Tally) Run(mayorBallot int) Result {
	ballots := t.Collect(mayorBallot)
	for _, b := range ballots {
		t.state.AddVote(b)
		t.bus.Publish(event.NewVoteCast(b))
	}

	target, count, tie := Count(t.state.Rand(), ballots)
	res := Result{
		Day:      t.state.Day,
		Ballots:  ballots,
		Count:    count,
		TargetID: target,
		TieBreak: tie,
	}
	t.execute(res)
	return res
}

// Collect builds one ballot per living player in seat order without
// recording them.
func (t *Tally) Collect(mayorBallot int) []model.VoteRecord {
	day := t.state.Day
	forced, isForced := t.designations.Vote()
	if isForced && !t.state.IsAlive(forced.TargetID) {
		isForced = false
	}

	var ballots []model.VoteRecord
	for _, p := range t.state.Living() {
		target := model.NoTarget
		switch {
		case p.Mayor:
			if t.legal(p.ID, mayorBallot) {
				target = mayorBallot
			}
		case isForced && p.ID == forced.TargetID:
			target = t.deflect(p.ID)
		case isForced:
			target = forced.TargetID
		default:
			target = t.Preference(p.ID)
		}
		ballots = append(ballots, model.VoteRecord{Day: day, VoterID: p.ID, TargetID: target})
	}
	return ballots
}

// deflect is the designated target's ballot: anyone not proven non-wolf
func (t *Tally) deflect(id int) int {
	others := t.state.LivingIDs(func(p *model.Player) bool { return p.ID != id })
	target, _, ok := game.Select(t.state.Rand(),
		game.Pool{Rule: "not-white", Candidates: func() []int {
			return game.Filter(others, func(c int) bool {
				p, _ := t.state.Player(c)
				return !p.ConfirmedWhite()
			})
		}},
		game.Pool{Rule: "any", Candidates: func() []int { return others }},
	)
	if !ok {
		return model.NoTarget
	}
	return target
}

// Preference is the agent's current vote choice. Wolves never vote for
// wolves. Otherwise the first non-empty pool wins: proven wolves, players
// reported black today, the voter's own black memos, contradictory
// claimants, players not proven white, anyone.
func (t *Tally) Preference(voter int) int {
	self, ok := t.state.Player(voter)
	if !ok || !self.Alive() {
		return model.NoTarget
	}
	day := t.state.Day
	legal := t.state.LivingIDs(func(p *model.Player) bool {
		return p.ID != voter && !(self.IsWolf() && p.IsWolf())
	})

	reportedBlack := make(map[int]bool)
	for _, r := range t.state.Reveals() {
		if r.Day == day && r.Record.IsWolf {
			reportedBlack[r.Record.TargetID] = true
		}
	}
	ownBlack := make(map[int]bool)
	for _, m := range t.state.Memos(voter) {
		if m.IsWolf {
			ownBlack[m.TargetID] = true
		}
	}
	player := func(c int) *model.Player {
		p, _ := t.state.Player(c)
		return p
	}

	target, _, ok := game.Select(t.state.Rand(),
		game.Pool{Rule: "black", Candidates: func() []int {
			return game.Filter(legal, func(c int) bool { return player(c).ConfirmedBlack() })
		}},
		game.Pool{Rule: "reported-black", Candidates: func() []int {
			return game.Filter(legal, func(c int) bool { return reportedBlack[c] })
		}},
		game.Pool{Rule: "own-black", Candidates: func() []int {
			return game.Filter(legal, func(c int) bool { return ownBlack[c] })
		}},
		game.Pool{Rule: "contradictory", Candidates: func() []int {
			return game.Filter(legal, t.state.HasContradiction)
		}},
		game.Pool{Rule: "not-white", Candidates: func() []int {
			return game.Filter(legal, func(c int) bool { return !player(c).ConfirmedWhite() })
		}},
		game.Pool{Rule: "any", Candidates: func() []int { return legal }},
	)
	if !ok {
		return model.NoTarget
	}
	return target
}

// DesignatedKnight returns the vote-designated player when it is a living
// agent knight that has not claimed knight yet. Such a knight comes out
// before the ballots are cast.
func (t *Tally) DesignatedKnight() (int, bool) {
	d, ok := t.designations.Vote()
	if !ok {
		return model.NoTarget, false
	}
	p, ok := t.state.Player(d.TargetID)
	if !ok || !p.Alive() || p.Mayor || p.Role != model.RoleKnight {
		return model.NoTarget, false
	}
	if t.state.HasClaimed(p.ID, model.RoleKnight) {
		return model.NoTarget, false
	}
	return p.ID, true
}

func (t *Tally) legal(voter, target int) bool {
	return target != voter && t.state.IsAlive(target)
}

func (t *Tally) execute(res Result) {
	t.state.RecordExecution(res.Day, res.TargetID)
	if res.Executed() {
		t.state.Kill(res.TargetID)
	}
	t.bus.Publish(event.NewExecutionResolved(res.Day, res.TargetID, res.Count, res.TieBreak))
}

// Count tallies non-abstaining ballots. The highest count wins; a tie is
// broken uniformly at random among the tied players. No ballots, no execution.
func Count(rng *rand.Rand, ballots []model.VoteRecord) (target int, count map[int]int, tie bool) {
	count = make(map[int]int)
	for _, b := range ballots {
		if b.Abstained() {
			continue
		}
		count[b.TargetID]++
	}

	ids := make([]int, 0, len(count))
	for id := range count {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	top := game.MaxBy(ids, func(id int) int { return count[id] }, 0)
	switch len(top) {
	case 0:
		return model.NoTarget, count, false
	case 1:
		return top[0], count, false
	default:
		return game.Pick(rng, top), count, true
	}
}
