package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ProcessResult is the outcome of a finished subprocess.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner runs a command synchronously. A non-zero exit is reported
// through ProcessResult.ExitCode, not as an error; the error return is
// reserved for processes that could not be started.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (ProcessResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (ProcessResult, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("%w: %w", ErrRendererNotFound, err)
	}

	// #nosec G204 -- binary comes from configuration and is resolved via LookPath
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res := ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}
