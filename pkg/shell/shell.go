// Package shell runs a command line through the system shell with the
// caller's terminal attached.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// DefaultShell interprets command lines.
const DefaultShell = "sh"

// Runner executes a command line and reports its exit code.
type Runner interface {
	Run(ctx context.Context, commandLine string) (int, error)
}

// Exec runs command lines as `<Shell> -c <line>`.
type Exec struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec wired to the process's own standard streams.
func NewExec(shell string) *Exec {
	if shell == "" {
		shell = DefaultShell
	}
	return &Exec{
		Shell:  shell,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run blocks until the command exits. The exit code is 0 on success, the
// child's code on failure and -1 when the child was killed by a signal.
// An error is returned only when the shell could not be started.
func (e *Exec) Run(ctx context.Context, commandLine string) (int, error) {
	cmd := exec.CommandContext(ctx, e.Shell, "-c", commandLine)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("start %s: %w", e.Shell, err)
}
