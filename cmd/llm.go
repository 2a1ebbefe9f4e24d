package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/store"
)

// failureEffect describes what a user sees when a call for the purpose fails.
var failureEffect = map[string]string{
	llm.PurposeSyllabus:      "syllabus not drafted",
	llm.PurposeCourseContent: "course build aborted",
	llm.PurposeQuestions:     "quiz ships fallback questions",
	llm.PurposeFilter:        "progress lookup fails",
	llm.PurposeIntent:        "chat answers \"could not understand\"",
	llm.PurposeConversation:  "chat turn fails",
	llm.PurposeCareerPath:    "no career path suggested",
}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Audit the model calls made while authoring courses and answering chat",
}

var llmHealthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"stats"},
	Short:   "Show failure rate and latency per call purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		warnAt, _ := cmd.Flags().GetFloat64("warn-at")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		usage, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		models, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		writeHealth(cmd.OutOrStdout(), usage, models, warnAt)
		return nil
	},
}

var llmCallsCmd = &cobra.Command{
	Use:     "calls",
	Aliases: []string{"list"},
	Short:   "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.FailedOnly, _ = cmd.Flags().GetBool("failed")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		writeCalls(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmCallCmd = &cobra.Command{
	Use:     "call <id>",
	Aliases: []string{"view"},
	Short:   "Show the prompt and completion of one model call",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid call id %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("call %d not found", id)
		}
		writeCall(cmd.OutOrStdout(), e)
		return nil
	},
}

func writeHealth(w io.Writer, usage []store.PurposeUsage, models []store.ModelUsage, warnAt float64) {
	if len(usage) == 0 {
		fmt.Fprintln(w, "No model calls recorded yet.")
		return
	}

	// Worst purposes first so degraded features are at the top.
	sort.SliceStable(usage, func(i, j int) bool {
		return usage[i].FailureRate() > usage[j].FailureRate()
	})

	fmt.Fprintf(w, "  %-22s %6s %6s %7s %8s  %s\n", "Purpose", "Calls", "Failed", "Fail%", "Avg ms", "On failure")
	var calls, failed, tokens int
	for _, u := range usage {
		mark := " "
		if u.Failures > 0 && u.FailureRate() >= warnAt {
			mark = "!"
		}
		effect := failureEffect[u.Purpose]
		if effect == "" {
			effect = "-"
		}
		fmt.Fprintf(w, "%s %-22s %6d %6d %6.1f%% %8d  %s\n",
			mark, truncate(u.Purpose, 22), u.Calls, u.Failures, 100*u.FailureRate(), u.AvgLatencyMs, effect)
		calls += u.Calls
		failed += u.Failures
		tokens += u.InputTokens + u.OutputTokens
	}
	fmt.Fprintf(w, "\n%d calls, %d failed, %d tokens", calls, failed, tokens)

	var cost float64
	var unpriced []string
	for _, m := range models {
		c := llm.LookupCost(m.Model)
		if c == nil {
			unpriced = append(unpriced, m.Model)
			continue
		}
		cost += c.Cost(m.InputTokens, m.OutputTokens)
	}
	fmt.Fprintf(w, ", estimated cost %s", formatCost(cost))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, " (no pricing for %s)", strings.Join(unpriced, ", "))
	}
	fmt.Fprintln(w)
}

func writeCalls(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No model calls found.")
		return
	}
	fmt.Fprintf(w, "%-6s %-16s %-22s %-24s %7s  %s\n", "ID", "Time", "Purpose", "Model", "Ms", "Result")
	for _, e := range events {
		result := "ok"
		if !e.Success {
			result = "failed: " + truncate(e.ErrorMessage, 60)
		}
		fmt.Fprintf(w, "%-6d %-16s %-22s %-24s %7d  %s\n",
			e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), truncate(e.Purpose, 22),
			truncate(e.Model, 24), e.LatencyMs, result)
	}
}

func writeCall(w io.Writer, e *store.LLMEvent) {
	fmt.Fprintf(w, "Call %d  %s  %s/%s  purpose=%s\n",
		e.ID, e.Timestamp.Local().Format(time.RFC3339), e.Provider, e.Model, e.Purpose)
	fmt.Fprintf(w, "%d in / %d out tokens, %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
	if !e.Success {
		fmt.Fprintf(w, "Failed: %s\n", e.ErrorMessage)
		if effect, ok := failureEffect[e.Purpose]; ok {
			fmt.Fprintf(w, "Effect: %s\n", effect)
		}
	}
	for _, part := range []struct{ title, body string }{
		{"Prompt", e.RequestBody},
		{"Completion", e.ResponseBody},
	} {
		fmt.Fprintf(w, "\n== %s ==\n", part.title)
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

// openStore opens only the event database, without wiring an LLM provider.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmHealthCmd.Flags().Float64("warn-at", 0.2, "Mark purposes whose failure rate is at or above this fraction")

	llmCallsCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmCallsCmd.Flags().StringP("purpose", "p", "", "Only calls for this purpose (e.g. assessment-questions, progress-filter, intent)")
	llmCallsCmd.Flags().Bool("failed", false, "Only failed calls")
	llmCallsCmd.Flags().Duration("since", 0, "Only calls newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmHealthCmd, llmCallsCmd, llmCallCmd)
}
