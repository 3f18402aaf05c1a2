// SPDX-License-Identifier: MIT

package job

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Spec describes one external program invocation.
type Spec struct {
	Name    string   // label for logs and metrics; defaults to Command
	Command string   `validate:"required"`
	Args    []string
	Dir     string   // working directory; outputs are resolved against it
	Env     []string // appended to the current environment
	Outputs []string // glob patterns that must match at least one file after success
}

// Process is a started program.
type Process interface {
	// Wait blocks until the program exits. A non-nil error reports an
	// unsuccessful exit; errors implementing ExitCode() int expose the code.
	Wait() error
	// Kill terminates the program.
	Kill() error
	Pid() int
}

// Runner starts processes. All process creation goes through a Runner so
// tests can substitute a fake.
type Runner interface {
	Start(ctx context.Context, spec Spec, stdout, stderr io.Writer) (Process, error)
}

// ExecRunner starts programs with os/exec.
type ExecRunner struct{}

// Start implements Runner. Cancellation is handled by the Job, not by ctx here.
func (ExecRunner) Start(_ context.Context, spec Spec, stdout, stderr io.Writer) (Process, error) {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("job: start %s: %w", spec.Command, err)
	}

	return &execProcess{cmd: cmd}, nil
}

type execProcess struct{ cmd *exec.Cmd }

func (p *execProcess) Wait() error { return p.cmd.Wait() }
func (p *execProcess) Kill() error { return p.cmd.Process.Kill() }
func (p *execProcess) Pid() int    { return p.cmd.Process.Pid }
