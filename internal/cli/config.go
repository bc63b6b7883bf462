package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/nightfall/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Nightfall configuration",
	Long: `Manage Nightfall configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (NIGHTFALL_*)
3. Config file (~/.nightfall/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults, config file, env vars and flags are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		// Never echo a secret
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = "********"
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println(string(yamlData))
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (NIGHTFALL_*, OPENAI_API_KEY)")
		fmt.Println("  3. Config file (~/.nightfall/config.yaml)")
		fmt.Println("  4. Defaults")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.nightfall/config.yaml with every available option.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".nightfall", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  nightfall config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")
		return nil
	},
}

// writeDefaultConfig writes the commented default config. It refuses to
// overwrite an existing file.
func writeDefaultConfig(configPath string) (err error) {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'nightfall config show' to view it, or delete it first to recreate", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Nightfall Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (NIGHTFALL_*, also read from ./.env)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")

	yamlData, mErr := yaml.Marshal(model.DefaultConfig())
	if mErr != nil {
		return fmt.Errorf("error marshaling config: %w", mErr)
	}
	if err == nil {
		if _, wErr := f.Write(yamlData); wErr != nil {
			return fmt.Errorf("error writing config: %w", wErr)
		}
	}

	printf("\n# flavor.path may be a local YAML file or an http(s) URL.\n")
	printf("# LLM embellishment is off unless llm.provider is set.\n")
	printf("# Keep the key out of this file:\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
