package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/app"
	"github.com/abhisek/coursekit/internal/logger"
	"github.com/abhisek/coursekit/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "coursekit",
	Short: "LLM-assisted course authoring",
	Long: "coursekit drafts syllabi and course content with an LLM, packages courses as SCORM 2004\n" +
		"bundles with an optional self-grading quiz, and answers learner progress questions.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides COURSEKIT_DB env var)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: dev or prod (overrides COURSEKIT_LOG_MODE)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syllabusCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then COURSEKIT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	mode, _ := cmd.Flags().GetString("log-mode")
	if mode == "" {
		mode = os.Getenv("COURSEKIT_LOG_MODE")
	}
	return logger.New(mode)
}

// openApp wires the application for a command. The caller must Close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	a, err := app.New(cmd.Context(), app.ConfigFromEnv(), dbPath, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Log.Warn("close failed", "error", err)
	}
	a.Log.Sync()
}
