package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/chat"
	"github.com/abhisek/coursekit/internal/progress"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask about learner progress or chat with the assistant",
	Long: "With a question argument, answers once and exits. Without one, reads\n" +
		"questions from stdin line by line until EOF.",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			resp, err := a.Chat.Route(cmd.Context(), session, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printChatResponse(out, resp)
			return nil
		}

		sc := bufio.NewScanner(os.Stdin)
		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				break
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			resp, err := a.Chat.Route(cmd.Context(), session, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printChatResponse(out, resp)
		}
		fmt.Fprintln(out)
		return sc.Err()
	},
}

func printChatResponse(w io.Writer, resp *chat.Response) {
	if resp.Type == chat.TypeConversation {
		fmt.Fprintln(w, resp.Reply)
		return
	}
	if resp.NoData() {
		fmt.Fprintln(w, resp.Message)
		return
	}
	printProgress(w, resp.Results)
}

func printProgress(w io.Writer, recs []progress.Record) {
	fmt.Fprintf(w, "%-20s  %-28s  %-12s  %-10s  %-10s\n", "User", "Course", "Status", "Started", "Completed")
	fmt.Fprintln(w, strings.Repeat("─", 88))
	for _, r := range recs {
		fmt.Fprintf(w, "%-20s  %-28s  %-12s  %-10s  %-10s\n",
			truncate(r.Username, 20), truncate(r.Course, 28), truncate(r.Status, 12),
			dateOrDash(r.InitiatedOn), dateOrDash(r.CompletedOn))
	}
}

func dateOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func init() {
	chatCmd.Flags().String("session", chat.DefaultSessionID, "Conversation session ID")
}
