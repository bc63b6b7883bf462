package model

import "time"

// Config is the complete nightfall configuration
type Config struct {
	Game     GameConfig     `yaml:"game" mapstructure:"game"`
	Pacing   PacingConfig   `yaml:"pacing" mapstructure:"pacing"`
	Quotas   QuotaConfig    `yaml:"quotas" mapstructure:"quotas"`
	Flavor   FlavorConfig   `yaml:"flavor" mapstructure:"flavor"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Simulate SimulateConfig `yaml:"simulate" mapstructure:"simulate"`
}

// GameConfig controls the roster and game length
type GameConfig struct {
	Players     int          `yaml:"players" mapstructure:"players"`
	Seed        int64        `yaml:"seed" mapstructure:"seed"` // 0 picks a time-based seed
	MaxDays     int          `yaml:"max_days" mapstructure:"max_days"`
	Composition map[Role]int `yaml:"composition" mapstructure:"composition"` // Special roles; the rest are villagers
}

// PacingConfig controls suspension points of scripted sequences
type PacingConfig struct {
	StatementInterval   time.Duration `yaml:"statement_interval" mapstructure:"statement_interval"`
	Jitter              time.Duration `yaml:"jitter" mapstructure:"jitter"`
	StatementsPerSecond float64       `yaml:"statements_per_second" mapstructure:"statements_per_second"`
	NightActionTimeout  time.Duration `yaml:"night_action_timeout" mapstructure:"night_action_timeout"`
	DiscussionRounds    int           `yaml:"discussion_rounds" mapstructure:"discussion_rounds"`
	Autopilot           bool          `yaml:"autopilot" mapstructure:"autopilot"` // Proceed to vote without waiting for the mayor
}

// QuotaConfig holds per-day limits of mayor questions
type QuotaConfig struct {
	AskEveryone         int `yaml:"ask_everyone" mapstructure:"ask_everyone"`
	IndividualQuestions int `yaml:"individual_questions" mapstructure:"individual_questions"`
}

// FlavorConfig points at the template library
type FlavorConfig struct {
	Path         string        `yaml:"path" mapstructure:"path"` // File or http(s) URL; empty uses the built-in library
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// LLMConfig configures optional line embellishment
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // "" disables, "openai"
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	Dir   string `yaml:"dir" mapstructure:"dir"` // Empty logs to stderr
}

// SimulateConfig configures headless batch runs
type SimulateConfig struct {
	Games       int           `yaml:"games" mapstructure:"games"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the standard ten-seat game
func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			Players: 10,
			MaxDays: 10,
			Composition: map[Role]int{
				RoleWolf:   2,
				RoleSeer:   1,
				RoleMedium: 1,
				RoleKnight: 1,
				RoleMadman: 1,
			},
		},
		Pacing: PacingConfig{
			StatementInterval:   1200 * time.Millisecond,
			Jitter:              600 * time.Millisecond,
			StatementsPerSecond: 2,
			NightActionTimeout:  30 * time.Second,
			DiscussionRounds:    2,
			Autopilot:           true,
		},
		Quotas: QuotaConfig{
			AskEveryone:         1,
			IndividualQuestions: 3,
		},
		Flavor: FlavorConfig{
			CacheTTL:     time.Hour,
			FetchTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Timeout:           30,
			MaxTokens:         120,
			RequestsPerSecond: 1,
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Simulate: SimulateConfig{
			Games:       100,
			Concurrency: 4,
			Timeout:     5 * time.Minute,
		},
	}
}

// HeadlessConfig returns DefaultConfig with every pacing wait disabled
func HeadlessConfig() *Config {
	cfg := DefaultConfig()
	cfg.Pacing.StatementInterval = 0
	cfg.Pacing.Jitter = 0
	cfg.Pacing.StatementsPerSecond = 0
	cfg.Pacing.NightActionTimeout = 0
	cfg.Pacing.Autopilot = true
	return cfg
}
