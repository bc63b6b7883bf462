// Package render prints the game as a styled transcript by subscribing to
// the engine's event bus.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	nightStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7E57C2"))
	speakerStyle = lipgloss.NewStyle().Bold(true)
	mayorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	deathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	winStyle     = lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
)

// Transcript writes one line per event worth showing the mayor
type Transcript struct {
	w       io.Writer
	verbose bool

	mu    sync.Mutex
	names []string
	subs  []string
}

// NewTranscript creates a transcript writer. Verbose adds ballots and
// claim bookkeeping.
func NewTranscript(w io.Writer, verbose bool) *Transcript {
	return &Transcript{w: w, verbose: verbose}
}

// Attach subscribes the transcript to every event on bus
func (t *Transcript) Attach(bus *event.Bus) {
	t.subs = append(t.subs, bus.SubscribeAll(t.Handle))
}

// Detach removes the transcript's subscriptions from bus
func (t *Transcript) Detach(bus *event.Bus) {
	for _, id := range t.subs {
		bus.Unsubscribe(id)
	}
	t.subs = nil
}

// Handle renders a single event
func (t *Transcript) Handle(e event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := e.(type) {
	case event.GameStarted:
		t.names = ev.Players
		t.printf("%s\n", headerStyle.Render(fmt.Sprintf("Game %s", shortID(ev.GameID))))
		t.printf("%s\n", noteStyle.Render(fmt.Sprintf("%d at the table: %s", len(ev.Players), strings.Join(ev.Players, ", "))))
		t.printf("You are the mayor, and secretly the %s.\n", ev.MayorRole)

	case event.PhaseChanged:
		if ev.Phase == model.PhaseNight {
			t.printf("\n%s\n", nightStyle.Render(fmt.Sprintf("Night %d", ev.Day)))
		} else {
			t.printf("\n%s\n", dayStyle.Render(fmt.Sprintf("Day %d", ev.Day)))
		}

	case event.StatementEmitted:
		style := speakerStyle
		if ev.Statement.SpeakerID == 0 {
			style = mayorStyle
		}
		t.printf("%s %s\n", style.Render(ev.SpeakerName+":"), ev.Statement.Content)

	case event.AttackResolved:
		if ev.TargetID == model.NoTarget || ev.Saved {
			t.printf("%s\n", noteStyle.Render("A quiet morning. Nobody was taken in the night."))
			return
		}
		t.printf("%s\n", deathStyle.Render(fmt.Sprintf("%s was found dead at dawn.", t.name(ev.TargetID))))

	case event.VoteCast:
		if !t.verbose {
			return
		}
		target := "abstains"
		if !ev.Vote.Abstained() {
			target = "votes for " + t.name(ev.Vote.TargetID)
		}
		t.printf("%s\n", noteStyle.Render(fmt.Sprintf("  %s %s", t.name(ev.Vote.VoterID), target)))

	case event.ExecutionResolved:
		t.printf("%s\n", noteStyle.Render("Tally: "+t.tally(ev.Tally)))
		if ev.TargetID == model.NoTarget {
			t.printf("%s\n", noteStyle.Render("Nobody was executed."))
			return
		}
		msg := fmt.Sprintf("%s was executed.", t.name(ev.TargetID))
		if ev.TieBreak {
			msg += " (tie broken at random)"
		}
		t.printf("%s\n", deathStyle.Render(msg))

	case event.ClaimBroadcast:
		if !t.verbose {
			return
		}
		t.printf("%s\n", noteStyle.Render(fmt.Sprintf("  [%s claim: %s as %s]", ev.Claim.Type, t.name(ev.Claim.PlayerID), ev.Claim.ClaimedRole)))

	case event.DesignationSet:
		d := ev.Designation
		t.printf("%s\n", noteStyle.Render(fmt.Sprintf("Designated %s: %s", d.Type, t.name(d.TargetID))))

	case event.DesignationRejected:
		t.printf("%s\n", noteStyle.Render(fmt.Sprintf("Not done (%s): %s", ev.Action, ev.Reason)))

	case event.NightActionRequested:
		choices := make([]string, 0, len(ev.Legal))
		for _, id := range ev.Legal {
			choices = append(choices, fmt.Sprintf("%d=%s", id, t.name(id)))
		}
		t.printf("%s %s\n", promptStyle.Render(fmt.Sprintf("Your %s action:", ev.Role)), strings.Join(choices, ", "))

	case event.GameEnded:
		t.printf("\n")
		Summary(t.w, ev.Summary)
	}
}

// Summary prints the winner and the full role reveal
func Summary(w io.Writer, s model.Summary) {
	result := "No winner: " + s.Reason
	switch s.Winner {
	case model.WinnerVillage:
		result = "The village wins"
	case model.WinnerWolves:
		result = "The wolves win"
	}
	fmt.Fprintln(w, winStyle.Render(fmt.Sprintf("%s after %d days", result, s.Days)))

	for _, p := range s.Players {
		status := string(p.Status)
		if p.Status == model.StatusDead {
			status = deathStyle.Render(status)
		}
		name := p.Name
		if p.Mayor {
			name = mayorStyle.Render(name + " (you)")
		}
		fmt.Fprintf(w, "  %-16s %-9s %s\n", name, p.Role, status)
	}
}

func (t *Transcript) printf(format string, args ...any) {
	fmt.Fprintf(t.w, format, args...)
}

func (t *Transcript) name(id int) string {
	if id >= 0 && id < len(t.names) {
		return t.names[id]
	}
	return fmt.Sprintf("#%d", id)
}

func (t *Transcript) tally(count map[int]int) string {
	if len(count) == 0 {
		return "no votes"
	}
	ids := make([]int, 0, len(count))
	for id := range count {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if count[ids[i]] != count[ids[j]] {
			return count[ids[i]] > count[ids[j]]
		}
		return ids[i] < ids[j]
	})

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s %d", t.name(id), count[id]))
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
