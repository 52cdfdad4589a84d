// Package toolexec is the boundary to external compositor tooling. Every
// subprocess invocation goes through a Runner and comes back as a typed
// Result, so callers decide per call site whether a non-zero exit is fatal.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/wallkit/wallkit/internal/logger"
)

// Result captures one finished tool invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Err is set when the tool could not run at all (missing binary,
	// timeout) as opposed to running and exiting non-zero.
	Err error
}

// Ok reports whether the tool ran and exited zero.
func (r Result) Ok() bool {
	return r.Err == nil && r.ExitCode == 0
}

// TimedOut reports whether the invocation was killed by its deadline.
func (r Result) TimedOut() bool {
	return errors.Is(r.Err, context.DeadlineExceeded)
}

// ErrorText returns the most useful diagnostic for a failed run: stderr if
// the tool produced any, the execution error otherwise.
func (r Result) ErrorText() string {
	if s := bytes.TrimSpace(r.Stderr); len(s) > 0 {
		return string(s)
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Runner abstracts subprocess execution so backends and the pipeline can be
// exercised in tests without the compositor tools installed.
type Runner interface {
	// Run executes name with args and waits for it to finish.
	Run(ctx context.Context, name string, args ...string) Result

	// Start launches name detached and does not wait (daemons such as
	// swaybg or swww-daemon).
	Start(name string, args ...string) error

	// LookPath reports whether name resolves on PATH.
	LookPath(name string) bool
}

// ExecRunner is the os/exec backed Runner used outside of tests.
type ExecRunner struct{}

// New returns the default Runner.
func New() Runner {
	return ExecRunner{}
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	switch {
	case err == nil:
	case ctx.Err() != nil:
		res.Err = ctx.Err()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Err = err
		}
	}

	logger.WithComponent("toolexec").Debug().
		Str("tool", name).
		Strs("args", args).
		Int("exit", res.ExitCode).
		Dur("took", time.Since(start)).
		Msg("Tool finished")
	return res
}

func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child when it eventually exits.
	go func() { _ = cmd.Wait() }()
	return nil
}

func (ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
