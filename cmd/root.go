package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tutorleap/qgen/internal/config"
	"github.com/tutorleap/qgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "qgen",
	Short: "Question paper generation engine",
	Long: "TutorLeap qgen generates board-aligned question papers: an LLM drafts\n" +
		"questions against a strict schema and a deterministic fallback tops up\n" +
		"whatever the model fails to deliver, so callers always get the exact\n" +
		"count they asked for.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./qgen.yaml or ~/.config/tutorleap/qgen.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TUTORLEAP_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the application config honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(cfgFile)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then the config file, then TUTORLEAP_DB, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}
