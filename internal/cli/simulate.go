package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/nightfall/internal/engine"
	"github.com/ppiankov/nightfall/internal/worker"
)

var simulateJSON bool

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play many headless games and report win rates",
	Long: `Simulate runs games with no human at the table: every mayor decision
defaults, pacing is off, and games run in parallel on a worker pool.
Game i uses seed+i, so a run is reproducible from --seed.

Example:
  nightfall simulate
  nightfall simulate --games 1000 --concurrency 8
  nightfall simulate --seed 7 --json`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Int("games", 100, "number of games")
	simulateCmd.Flags().Int("concurrency", 4, "number of concurrent games")
	simulateCmd.Flags().Duration("timeout", 5*time.Minute, "timeout for each game")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "print statistics as JSON")

	_ = viper.BindPFlag("simulate.games", simulateCmd.Flags().Lookup("games"))
	_ = viper.BindPFlag("simulate.concurrency", simulateCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("simulate.timeout", simulateCmd.Flags().Lookup("timeout"))
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Game.Seed == 0 {
		cfg.Game.Seed = time.Now().UnixNano()
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	// Nobody reads the lines, so never pay for embellishment
	cfg.LLM.Provider = ""
	narrator, err := newNarrator(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "  Nightfall Simulation\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Games:        %d\n", cfg.Simulate.Games)
		fmt.Fprintf(os.Stderr, "  Players:      %d\n", cfg.Game.Players)
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Simulate.Concurrency)
		fmt.Fprintf(os.Stderr, "  Seed:         %d\n", cfg.Game.Seed)
		fmt.Fprintf(os.Stderr, "\n")
	}

	runner := engine.NewHeadless(cfg, narrator, log)
	processor := worker.NewBatchProcessor(runner, cfg.Simulate.Concurrency, cfg.Simulate.Timeout)

	start := time.Now()
	results := processor.ProcessGames(context.Background(), cfg.Simulate.Games)
	stats := worker.Aggregate(results)

	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", r.Error)
		}
	}

	if simulateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	printStats(cmd.OutOrStdout(), stats, time.Since(start))
	return nil
}

func printStats(w io.Writer, s worker.Stats, elapsed time.Duration) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Simulation Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Games:         %d (%d failed)\n", s.Games, s.Failed)
	fmt.Fprintf(w, "  Village wins:  %d (%.1f%%)\n", s.VillageWins, 100*s.VillageRate)
	fmt.Fprintf(w, "  Wolf wins:     %d\n", s.WolfWins)
	fmt.Fprintf(w, "  Undecided:     %d\n", s.Undecided)
	fmt.Fprintf(w, "  Average days:  %.2f\n", s.AverageDays)
	fmt.Fprintf(w, "  Wall time:     %v\n", elapsed.Round(time.Millisecond))

	if len(s.ByFormation) > 0 {
		names := make([]string, 0, len(s.ByFormation))
		for name := range s.ByFormation {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "\n  Formations:\n")
		for _, name := range names {
			fmt.Fprintf(w, "    %-20s %d\n", name, s.ByFormation[name])
		}
	}
	fmt.Fprintf(w, "\n")
}
