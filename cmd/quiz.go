package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/assessment"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Build and check self-grading quiz packages",
}

var quizBuildCmd = &cobra.Command{
	Use:   "build <course-text-file>",
	Short: "Assemble a SCORM package from a plain-text course without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		settings := assessment.Settings{}
		if kindFlag, _ := cmd.Flags().GetString("kind"); kindFlag != "" {
			kind, ok := assessment.ParseKind(kindFlag)
			if !ok {
				return fmt.Errorf("unknown assessment kind %q (want MCQ or True/False)", kindFlag)
			}
			settings.Kind = kind
		}
		settings.MaxAttempts, _ = cmd.Flags().GetInt("attempts")

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			base := filepath.Base(args[0])
			outDir = base[:len(base)-len(filepath.Ext(base))]
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		zipPath, err := a.Assembler.Assemble(cmd.Context(), string(text), outDir, settings)
		if err != nil {
			return err
		}
		fmt.Println(zipPath)
		return nil
	},
}

var quizGradeCmd = &cobra.Command{
	Use:   "grade <assessment.html>",
	Short: "Check a rendered quiz page by grading its own answer key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		key, err := assessment.ReadAnswerKey(f)
		if err != nil {
			return fmt.Errorf("read answer key: %w", err)
		}

		attempts := "unlimited"
		if key.MaxAttempts > 0 {
			attempts = fmt.Sprintf("%d", key.MaxAttempts)
		}
		fmt.Printf("Course:    %s\n", key.CourseID)
		fmt.Printf("Questions: %d\n", len(key.Questions))
		fmt.Printf("Attempts:  %s\n\n", attempts)

		for _, run := range []struct {
			label      string
			selections map[string]string
		}{
			{"all correct", key.CorrectSelections()},
			{"all incorrect", key.IncorrectSelections()},
		} {
			s := assessment.Grade(key, run.selections)
			verdict := "fail"
			if s.Passed {
				verdict = "pass"
			}
			fmt.Printf("%-14s  %d/%d  %3d%%  %s\n", run.label, s.Correct, s.Total, s.Percent, verdict)
		}
		return nil
	},
}

func init() {
	quizBuildCmd.Flags().StringP("kind", "k", "", "Assessment type: MCQ or True/False (empty for none)")
	quizBuildCmd.Flags().IntP("attempts", "a", 0, "Attempts allowed (0 for unlimited)")
	quizBuildCmd.Flags().StringP("out", "o", "", "Output directory (defaults to the file name)")

	quizCmd.AddCommand(quizBuildCmd)
	quizCmd.AddCommand(quizGradeCmd)
}
