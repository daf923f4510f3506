package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aish-cli/aish/pkg/credential"
	"github.com/aish-cli/aish/pkg/driver"
	"github.com/aish-cli/aish/pkg/logging"
	"github.com/aish-cli/aish/pkg/prompts"
	"github.com/aish-cli/aish/pkg/query"
	"github.com/aish-cli/aish/pkg/shell"
)

func newK8sCmd(opts *rootOptions) *cobra.Command {
	var noRun, overwrite bool

	cmd := &cobra.Command{
		Use:   "k8s [flags] QUERY...",
		Short: "Turn a request into a kubectl/ssh command and run it",
		Long: `Sends the request to the model and runs the returned command with sh -c.

Answers are cached per query in ` + prompts.K8s.Namespace + ` under the cache
directory (cache_dir, the home directory by default); use --overwrite when the
cached answer is not good enough and the model should try again.`,
		Example: "  aish k8s pods in namespace foobar\n  aish k8s -n restart deployment api in staging",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, opts, prompts.K8s, driver.Request{
				Query:        strings.Join(args, " "),
				ForceRefresh: overwrite,
				NoRun:        noRun,
			})
		},
	}

	// Everything after the first query word belongs to the query.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&noRun, "no-run", "n", false, "print the command instead of running it")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "ignore the cached answer and ask the model again")
	return cmd
}

// runTool resolves and runs req for tool.
func runTool(cmd *cobra.Command, opts *rootOptions, tool prompts.Tool, req driver.Request) error {
	a, err := loadApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg := a.cfg

	cache, err := a.openCache()
	if err != nil {
		return err
	}

	client := query.New(cfg.Endpoint, cfg.Model,
		func() (string, error) { return credential.Resolve(cfg.APIKeyEnv) },
		query.WithDiagnostics(cmd.ErrOrStderr()),
		query.WithLogger(logging.Component(a.logger, "query")),
	)

	runner := shell.NewExec(cfg.Shell)
	runner.Stdin = cmd.InOrStdin()
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()

	d := driver.New(cache, client, runner, cmd.ErrOrStderr(), logging.Component(a.logger, "driver"))
	if cfg.History.Enabled {
		h, closeHistory, err := a.openHistory()
		if err != nil {
			return err
		}
		defer closeHistory()
		d.WithHistory(h)
	}

	req.Namespace = tool.Namespace
	req.SystemPrompt = tool.Prompt
	return d.Run(cmd.Context(), req)
}
