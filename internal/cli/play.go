package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/nightfall/internal/designation"
	"github.com/ppiankov/nightfall/internal/engine"
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/model"
	"github.com/ppiankov/nightfall/internal/render"
)

// playHelp lists the table commands; 'help' prints it mid-game
const playHelp = `Play one game at an interactive table. Type commands while the
discussion runs:

  vote <id|none>                 cast your ballot for today
  target <id>                    answer a night-action prompt
  claim <role>                   publicly claim a role
  designate vote|guard <id>      force today's vote or tonight's guard
  designate inspect <seer> <id>  pick tonight's inspection for a seer
  ask <id> <role|suspect|alibi>  question one player
  suspects                       ask everyone whom they suspect
  say <text>                     speak freely
  proceed                        close the discussion and vote
  stop | resume | skip | reset   control the pace
  status                         show the table
  quit                           leave the game

Example:
  nightfall play
  nightfall play --autopilot=false --players 12
  nightfall play --seed 42 --log-dir ~/.nightfall/logs`

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game as the mayor",
	Long:  playHelp,
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("autopilot", true, "proceed to the vote without waiting for you")
	playCmd.Flags().Int("players", 10, "seats at the table, including you")
	playCmd.Flags().Int("rounds", 2, "discussion rounds per day")

	_ = viper.BindPFlag("pacing.autopilot", playCmd.Flags().Lookup("autopilot"))
	_ = viper.BindPFlag("game.players", playCmd.Flags().Lookup("players"))
	_ = viper.BindPFlag("pacing.discussion_rounds", playCmd.Flags().Lookup("rounds"))
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	narrator, err := newNarrator(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	transcript := render.NewTranscript(cmd.OutOrStdout(), verbose)
	transcript.Attach(bus)
	defer transcript.Detach(bus)

	e, err := engine.New(cfg, bus, narrator, log)
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		if readCommands(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), e) {
			cancel()
		}
	}()

	if _, err := e.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Game abandoned.")
			return nil
		}
		return err
	}
	return nil
}

// readCommands feeds stdin lines to the engine. It reports true when the
// player asked to quit.
func readCommands(ctx context.Context, in io.Reader, out io.Writer, e *engine.Engine) bool {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return false
		}
		c, err := parseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		if c.name == "quit" {
			return true
		}
		dispatch(e, c, out)
	}
	return false
}

// command is one parsed line of player input
type command struct {
	name      string
	target    int
	inspector int
	kind      model.DesignationType
	role      model.Role
	key       string
	text      string
}

var questionKeys = map[string]bool{"role": true, "suspect": true, "alibi": true}

// parseCommand turns a line of input into a command
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, errors.New("type 'help' for commands")
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]
	c := command{name: name, target: model.NoTarget, inspector: model.NoTarget}

	switch name {
	case "vote":
		if len(args) != 1 {
			return c, errors.New("usage: vote <id|none>")
		}
		if strings.EqualFold(args[0], "none") {
			return c, nil
		}
		return c, parseID(args[0], &c.target)

	case "target":
		if len(args) != 1 {
			return c, errors.New("usage: target <id>")
		}
		return c, parseID(args[0], &c.target)

	case "claim":
		if len(args) != 1 {
			return c, errors.New("usage: claim <role>")
		}
		c.role = model.Role(strings.ToLower(args[0]))
		if !c.role.Valid() {
			return c, fmt.Errorf("unknown role %q", args[0])
		}
		return c, nil

	case "designate":
		if len(args) < 2 {
			return c, errors.New("usage: designate vote|guard <id> or designate inspect <seer> <id>")
		}
		c.kind = model.DesignationType(strings.ToLower(args[0]))
		switch c.kind {
		case model.DesignateVote, model.DesignateGuard:
			if len(args) != 2 {
				return c, fmt.Errorf("usage: designate %s <id>", c.kind)
			}
			return c, parseID(args[1], &c.target)
		case model.DesignateInspect:
			if len(args) != 3 {
				return c, errors.New("usage: designate inspect <seer> <id>")
			}
			if err := parseID(args[1], &c.inspector); err != nil {
				return c, err
			}
			return c, parseID(args[2], &c.target)
		default:
			return c, fmt.Errorf("unknown designation %q", args[0])
		}

	case "ask":
		if len(args) != 2 {
			return c, errors.New("usage: ask <id> <role|suspect|alibi>")
		}
		c.key = strings.ToLower(args[1])
		if !questionKeys[c.key] {
			return c, fmt.Errorf("unknown question %q", args[1])
		}
		return c, parseID(args[0], &c.target)

	case "say":
		c.text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if c.text == "" {
			return c, errors.New("usage: say <text>")
		}
		return c, nil

	case "suspects", "proceed", "stop", "resume", "skip", "reset", "status", "help", "quit":
		return c, nil
	}
	return c, fmt.Errorf("unknown command %q, type 'help'", fields[0])
}

func parseID(s string, dst *int) error {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return fmt.Errorf("not a player id: %q", s)
	}
	*dst = id
	return nil
}

// dispatch applies a command. Rejections reach the player through the
// transcript, so most outcomes need no reply here.
func dispatch(e *engine.Engine, c command, out io.Writer) {
	mayor := e.View().Mayor.ID

	switch c.name {
	case "vote":
		if e.CastVote(mayor, c.target) == designation.Accepted {
			fmt.Fprintln(out, "Ballot recorded.")
		}
	case "target":
		e.SubmitNightAction(mayor, c.target)
	case "claim":
		e.ForceClaim(c.role)
	case "designate":
		if e.SetDesignation(c.kind, c.target, c.inspector) == designation.Cleared {
			fmt.Fprintln(out, "Inspection designation cleared.")
		}
	case "ask":
		e.AskIndividualQuestion(c.target, c.key)
	case "suspects":
		e.AskEveryoneSuspicious()
	case "say":
		e.Say(c.text)
	case "proceed":
		e.ProceedToVote()
	case "stop":
		e.Stop()
		fmt.Fprintln(out, "Paused. Type 'resume' to continue.")
	case "resume":
		e.Resume()
	case "skip":
		e.Skip()
	case "reset":
		if err := e.Reset(); err != nil {
			fmt.Fprintf(out, "reset failed: %v\n", err)
		}
	case "status":
		printStatus(out, e.View())
	case "help":
		fmt.Fprintln(out, playHelp)
	}
}

func printStatus(out io.Writer, v engine.View) {
	fmt.Fprintf(out, "Day %d, %s (next: %s)\n", v.Day, v.Phase, v.Pending)
	fmt.Fprintf(out, "You are the %s.\n", v.Mayor.Role)
	for _, p := range v.Players {
		fmt.Fprintf(out, "  %2d %-10s %s\n", p.ID, p.Name, p.Status)
	}
}
