package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "List learner progress rows",
	Long:  "Lists user_detail rows. With no filter flags every row is shown.",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := progress.Filter{}
		f.Username, _ = cmd.Flags().GetString("username")
		f.Course, _ = cmd.Flags().GetString("course")
		if raw, _ := cmd.Flags().GetString("status"); raw != "" {
			f.Status = progress.NormalizeStatus(raw)
			if f.Status == "" {
				return fmt.Errorf("unknown status %q", raw)
			}
		}
		for _, d := range []struct {
			flag string
			dst  *time.Time
		}{{"start", &f.StartDate}, {"end", &f.EndDate}} {
			raw, _ := cmd.Flags().GetString(d.flag)
			if raw == "" {
				continue
			}
			t, err := time.Parse(progress.DateLayout, raw)
			if err != nil {
				return fmt.Errorf("--%s must be YYYY-MM-DD: %w", d.flag, err)
			}
			*d.dst = t
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		recs, err := a.Progress.Find(cmd.Context(), f, progress.ModeListAll)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No progress rows found.")
			return nil
		}
		printProgress(cmd.OutOrStdout(), recs)
		return nil
	},
}

func init() {
	f := progressCmd.Flags()
	f.StringP("username", "u", "", "Username contains")
	f.StringP("course", "c", "", "Course contains")
	f.StringP("status", "s", "", "Completion status, e.g. completed, in progress")
	f.String("start", "", "Range start (YYYY-MM-DD), used with --end")
	f.String("end", "", "Range end (YYYY-MM-DD), used with --start")
}
