package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/nightfall/internal/cache"
	"github.com/ppiankov/nightfall/internal/flavor"
	"github.com/ppiankov/nightfall/internal/llm"
	"github.com/ppiankov/nightfall/internal/logging"
	"github.com/ppiankov/nightfall/internal/model"
	"github.com/ppiankov/nightfall/internal/worker"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	logDir   string
	seed     int64
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nightfall",
	Short: "Nightfall - a werewolf table where you are the mayor",
	Long: `Nightfall runs a game of social deduction in your terminal.

You are the mayor. Everyone else at the table is an agent: villagers,
a seer, a medium, a knight, a madman and the wolves hiding among them.
Days alternate with nights. Talk, question, designate and vote; the
wolves attack while the village sleeps.

The village wins when every wolf is dead. The wolves win when they
match the rest of the living.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Nightfall.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nightfall v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.nightfall/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level ("+strings.Join(logging.ValidLevels(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "write logs to <dir>/"+logging.FileName+" instead of stderr")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	_ = viper.BindPFlag("game.seed", rootCmd.PersistentFlags().Lookup("seed"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.nightfall")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// A .env in the working directory may carry keys; real env vars win
	if err := godotenv.Load(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Loaded environment from .env\n")
	}

	// Read in environment variables that match NIGHTFALL_*, nested keys
	// as NIGHTFALL_PACING_AUTOPILOT
	viper.SetEnvPrefix("NIGHTFALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "NIGHTFALL_LLM_API_KEY", "OPENAI_API_KEY")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, env vars and flags over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	setDefaults(cfg)
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Game.Players < 3 {
		return nil, fmt.Errorf("game.players must be at least 3, got %d", cfg.Game.Players)
	}
	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("game.players", cfg.Game.Players)
	viper.SetDefault("game.seed", cfg.Game.Seed)
	viper.SetDefault("game.max_days", cfg.Game.MaxDays)
	viper.SetDefault("pacing.statement_interval", cfg.Pacing.StatementInterval)
	viper.SetDefault("pacing.jitter", cfg.Pacing.Jitter)
	viper.SetDefault("pacing.statements_per_second", cfg.Pacing.StatementsPerSecond)
	viper.SetDefault("pacing.night_action_timeout", cfg.Pacing.NightActionTimeout)
	viper.SetDefault("pacing.discussion_rounds", cfg.Pacing.DiscussionRounds)
	viper.SetDefault("pacing.autopilot", cfg.Pacing.Autopilot)
	viper.SetDefault("quotas.ask_everyone", cfg.Quotas.AskEveryone)
	viper.SetDefault("quotas.individual_questions", cfg.Quotas.IndividualQuestions)
	viper.SetDefault("flavor.path", cfg.Flavor.Path)
	viper.SetDefault("flavor.cache_ttl", cfg.Flavor.CacheTTL)
	viper.SetDefault("flavor.fetch_timeout", cfg.Flavor.FetchTimeout)
	viper.SetDefault("flavor.http_proxy", cfg.Flavor.HTTPProxy)
	viper.SetDefault("flavor.https_proxy", cfg.Flavor.HTTPSProxy)
	viper.SetDefault("llm.provider", cfg.LLM.Provider)
	viper.SetDefault("llm.model", cfg.LLM.Model)
	viper.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	viper.SetDefault("llm.timeout", cfg.LLM.Timeout)
	viper.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	viper.SetDefault("llm.requests_per_second", cfg.LLM.RequestsPerSecond)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.dir", cfg.Log.Dir)
	viper.SetDefault("simulate.games", cfg.Simulate.Games)
	viper.SetDefault("simulate.concurrency", cfg.Simulate.Concurrency)
	viper.SetDefault("simulate.timeout", cfg.Simulate.Timeout)
}

// newLogger opens the configured log. Without a log dir the logs share the
// terminal with the game, so only warnings get through unless --verbose.
func newLogger(cfg *model.Config) (*logging.Logger, error) {
	level := cfg.Log.Level
	if cfg.Log.Dir == "" && !verbose {
		level = "WARN"
	}
	log, err := logging.NewLogger(cfg.Log.Dir, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// newNarrator builds the flavor collaborator: template library (local or
// remote), line cache and the optional LLM embellisher behind a rate limiter.
func newNarrator(ctx context.Context, cfg *model.Config, log *logging.Logger) (*flavor.Narrator, error) {
	fetcher := flavor.NewFetcher(flavor.FetchOptions{
		Timeout:    cfg.Flavor.FetchTimeout,
		HTTPProxy:  cfg.Flavor.HTTPProxy,
		HTTPSProxy: cfg.Flavor.HTTPSProxy,
	})
	if flavor.IsRemote(cfg.Flavor.Path) && verbose {
		fmt.Fprintf(os.Stderr, "Fetching flavor pack: %s\n", cfg.Flavor.Path)
	}
	lib, err := flavor.Open(ctx, cfg.Flavor.Path, fetcher)
	if err != nil {
		return nil, fmt.Errorf("load flavor: %w", err)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	opts := flavor.Options{
		Cache:   cache.NewMemoryCache(cfg.Flavor.CacheTTL, 10*time.Minute),
		TTL:     cfg.Flavor.CacheTTL,
		Limiter: worker.NewLimiter(cfg.LLM.RequestsPerSecond, 1),
		Logger:  log,
		Seed:    cfg.Game.Seed,
	}
	if provider != nil {
		opts.Provider = provider
		if verbose {
			fmt.Fprintf(os.Stderr, "Embellishing lines with %s\n", provider.Name())
		}
	}
	return flavor.NewNarrator(lib, opts), nil
}
