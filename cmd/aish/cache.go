package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aish-cli/aish/pkg/models"
	"github.com/aish-cli/aish/pkg/prompts"
)

func newCacheCmd(opts *rootOptions) *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect cached answers",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached queries and answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := a.openCache()
			if err != nil {
				return err
			}
			doc, err := c.Load(namespace)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatCacheEntries(doc.Entries))
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show QUERY...",
		Short: "Print the cached answer for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := a.openCache()
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")
			answer, ok, err := c.Lookup(namespace, q)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no cached answer for %q in %s", q, c.Path(namespace))
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	showCmd.Flags().SetInterspersed(false)

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := a.openCache()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Path(namespace))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&namespace, "namespace", prompts.K8s.Namespace, "cache file name under the cache directory")
	cmd.AddCommand(listCmd, showCmd, pathCmd)
	return cmd
}

func formatCacheEntries(entries []models.CacheEntry) string {
	if len(entries) == 0 {
		return "No cached answers.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s  %-30s  %s\n", "TIME", "QUERY", "ANSWER")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-20s  %-30s  %s\n", e.Timestamp, e.Query, e.Answer)
	}
	return b.String()
}
