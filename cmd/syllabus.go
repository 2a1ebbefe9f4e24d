package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/syllabus"
)

var syllabusCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "Draft, list, edit and verify syllabi",
}

var syllabusGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a syllabus with the LLM and store it for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := syllabus.Request{}
		req.Topic, _ = cmd.Flags().GetString("topic")
		req.Audience, _ = cmd.Flags().GetString("audience")
		req.Duration, _ = cmd.Flags().GetString("duration")
		req.Modules, _ = cmd.Flags().GetInt("modules")
		req.ContentTypes, _ = cmd.Flags().GetString("content-types")
		req.AssessmentType, _ = cmd.Flags().GetString("assessment")
		req.Attempts, _ = cmd.Flags().GetInt("attempts")
		req.AITone, _ = cmd.Flags().GetString("tone")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		s, err := a.Syllabi.GenerateSyllabus(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Syllabus: %s\n\n%s\n", s.Name, s.Text)
		return nil
	},
}

var syllabusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored syllabi",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		items, err := a.Syllabi.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No syllabi stored.")
			return nil
		}

		fmt.Printf("%-40s  %-8s  %s\n", "Name", "Verified", "Updated")
		fmt.Println(strings.Repeat("─", 72))
		for _, s := range items {
			verified := "no"
			if s.Verified {
				verified = "yes"
			}
			fmt.Printf("%-40s  %-8s  %s\n", truncate(s.Name, 40), verified, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var syllabusEditCmd = &cobra.Command{
	Use:   "edit <name> <file>",
	Short: "Replace a syllabus with edited text from a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.Syllabi.UpdateText(cmd.Context(), args[0], string(text)); err != nil {
			return err
		}
		fmt.Printf("Updated %s. Verify it again before publishing.\n", args[0])
		return nil
	},
}

var syllabusVerifyCmd = &cobra.Command{
	Use:   "verify <name>",
	Short: "Mark a syllabus as reviewed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.Syllabi.Verify(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Verified %s.\n", args[0])
		return nil
	},
}

func init() {
	f := syllabusGenerateCmd.Flags()
	f.String("topic", "", "Course topic")
	f.String("audience", "", "Target audience, e.g. Beginner")
	f.String("duration", "", "Total duration as HH:MM")
	f.Int("modules", 1, "Number of modules")
	f.String("content-types", "", "Preferred content types")
	f.String("assessment", "", "Assessment type: MCQ or True/False")
	f.Int("attempts", 0, "Quiz attempts allowed (1-3, 0 for unlimited)")
	f.String("tone", syllabus.DefaultTone, "Writing tone")
	_ = syllabusGenerateCmd.MarkFlagRequired("topic")
	_ = syllabusGenerateCmd.MarkFlagRequired("audience")
	_ = syllabusGenerateCmd.MarkFlagRequired("duration")

	syllabusCmd.AddCommand(syllabusGenerateCmd)
	syllabusCmd.AddCommand(syllabusListCmd)
	syllabusCmd.AddCommand(syllabusEditCmd)
	syllabusCmd.AddCommand(syllabusVerifyCmd)
}
