package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MatiasV55/eligibility-chatbot/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "eligibility",
	Short: "KoolKars driver eligibility assistant",
	Long: `Eligibility asks for the driver's age, the vehicle year and its mileage,
then tells you whether the vehicle can join the KoolKars fleet.

Configuration comes from the environment (and an optional .env file named by
CHATBOT_ENV); flags override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("backend", "", "Transcript store: sqlite, file, redis or memory (env STORE_BACKEND)")
	rootCmd.PersistentFlags().String("db-path", "", "Database file or transcript directory (env DB_PATH)")
	rootCmd.PersistentFlags().String("key-path", "", "Encryption key file (env KEY_PATH)")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the redis backend (env REDIS_ADDR)")
}

// loadConfig reads the environment and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Store.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("db-path") {
		cfg.Store.Path, _ = flags.GetString("db-path")
		if !flags.Changed("key-path") && os.Getenv("KEY_PATH") == "" {
			cfg.Store.KeyPath = config.DefaultKeyPath(cfg.Store.Path)
		}
	}
	if flags.Changed("key-path") {
		cfg.Store.KeyPath, _ = flags.GetString("key-path")
	}
	if flags.Changed("redis-addr") {
		cfg.Store.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if f := flags.Lookup("llm"); f != nil && f.Changed {
		cfg.UseLLM, _ = flags.GetBool("llm")
	}
	if f := flags.Lookup("model"); f != nil && f.Changed {
		cfg.Ollama.Model, _ = flags.GetString("model")
	}
	if f := flags.Lookup("metrics-addr"); f != nil && f.Changed {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
