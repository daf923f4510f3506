package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aish-cli/aish/pkg/models"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		namespace string
		since     string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously resolved commands and their exit codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			h, closeHistory, err := a.openHistory()
			if err != nil {
				return err
			}
			defer closeHistory()

			q := models.HistoryQueryOpts{
				Namespace: namespace,
				Limit:     limit,
			}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				q.Since = t
			}

			entries, err := h.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHistoryEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "filter by cache namespace")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "max entries to return")
	return cmd
}

func formatHistoryEntries(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No history entries found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-7s %-6s %-30s %s\n", "TIME", "SOURCE", "EXIT", "QUERY", "ANSWER")
	b.WriteString(strings.Repeat("-", 90) + "\n")
	for _, e := range entries {
		exit := "-"
		if e.Executed {
			exit = fmt.Sprintf("%d", e.ExitCode)
		}
		fmt.Fprintf(&b, "%-20s %-7s %-6s %-30s %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Source, exit, e.Query, e.Answer)
	}
	return b.String()
}
