package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aish-cli/aish/pkg/config"
	"github.com/aish-cli/aish/pkg/driver"
)

var version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "aish",
		Short:         "Ask a model for a shell command and run it",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log debug output to stderr")

	root.AddCommand(
		newK8sCmd(opts),
		newCacheCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

// exitCode forwards the status of an executed command silently; any other
// error is reported on w and exits with 1.
func exitCode(err error, w io.Writer) int {
	var exitErr *driver.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(w, "Error:", err)
	return 1
}
