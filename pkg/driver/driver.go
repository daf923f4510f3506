// Package driver resolves a query to a shell command, from the cache or
// the model, and then prints or runs it.
package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/aish-cli/aish/pkg/history"
	"github.com/aish-cli/aish/pkg/models"
	"github.com/aish-cli/aish/pkg/shell"
)

// Cache is the answer store the driver reads and fills.
type Cache interface {
	Lookup(namespace, query string) (string, bool, error)
	Store(namespace, query, answer string) error
}

// Asker obtains a fresh answer from the model.
type Asker interface {
	Send(ctx context.Context, systemPrompt, userQuery string) (string, error)
}

// Request is one invocation.
type Request struct {
	Query        string
	Namespace    string
	SystemPrompt string
	// ForceRefresh skips the cache lookup but still stores the new answer.
	ForceRefresh bool
	// NoRun prints the answer instead of executing it.
	NoRun bool
}

// ExitError reports that the executed command exited unsuccessfully.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d: %s", e.Code, e.Command)
}

// Driver wires the cache, the model and the shell together.
type Driver struct {
	cache   Cache
	asker   Asker
	runner  shell.Runner
	history history.Recorder
	diag    io.Writer
	logger  zerolog.Logger
}

// New creates a Driver. Notices and printed answers go to diag.
func New(cache Cache, asker Asker, runner shell.Runner, diag io.Writer, logger zerolog.Logger) *Driver {
	return &Driver{
		cache:  cache,
		asker:  asker,
		runner: runner,
		diag:   diag,
		logger: logger,
	}
}

// WithHistory records every resolved answer to rec.
func (d *Driver) WithHistory(rec history.Recorder) *Driver {
	d.history = rec
	return d
}

// Run resolves req to an answer and prints or executes it. A command
// that exits non-zero yields an *ExitError; any other error means the
// answer could not be obtained or the shell could not be started.
func (d *Driver) Run(ctx context.Context, req Request) error {
	answer, source, err := d.resolve(ctx, req)
	if err != nil {
		return err
	}

	if req.NoRun {
		fmt.Fprintln(d.diag, answer)
		d.record(ctx, req, answer, source, false, 0)
		return nil
	}

	fmt.Fprintf(d.diag, "Invoking: %s\n", answer)
	code, err := d.runner.Run(ctx, answer)
	if err != nil {
		return fmt.Errorf("run %q: %w", answer, err)
	}
	d.record(ctx, req, answer, source, true, code)

	if code != 0 {
		if code < 0 {
			code = 1
		}
		return &ExitError{Command: answer, Code: code}
	}
	return nil
}

func (d *Driver) resolve(ctx context.Context, req Request) (string, string, error) {
	log := d.logger.With().Str("namespace", req.Namespace).Logger()

	if !req.ForceRefresh {
		answer, ok, err := d.cache.Lookup(req.Namespace, req.Query)
		if err != nil {
			return "", "", fmt.Errorf("read cache for %q: %w", req.Query, err)
		}
		if ok {
			log.Debug().Str("query", req.Query).Msg("cache hit")
			return answer, models.SourceCache, nil
		}
		log.Debug().Str("query", req.Query).Msg("cache miss")
	}

	answer, err := d.asker.Send(ctx, req.SystemPrompt, req.Query)
	if err != nil {
		return "", "", fmt.Errorf("query %q: %w", req.Query, err)
	}
	if err := d.cache.Store(req.Namespace, req.Query, answer); err != nil {
		return "", "", fmt.Errorf("write cache for %q: %w", req.Query, err)
	}
	log.Debug().Str("query", req.Query).Bool("forced", req.ForceRefresh).Msg("cached new answer")
	return answer, models.SourceRemote, nil
}

func (d *Driver) record(ctx context.Context, req Request, answer, source string, executed bool, code int) {
	if d.history == nil {
		return
	}
	err := d.history.Record(ctx, models.HistoryEntry{
		Namespace: req.Namespace,
		Query:     req.Query,
		Answer:    answer,
		Source:    source,
		Executed:  executed,
		ExitCode:  code,
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("could not record history")
	}
}
