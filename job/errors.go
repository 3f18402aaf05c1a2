// SPDX-License-Identifier: MIT

package job

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for job execution.
var (
	// ErrInvalidSpec indicates a Spec without a command.
	ErrInvalidSpec = errors.New("job: invalid spec")

	// ErrJobFailed indicates the process exited unsuccessfully.
	ErrJobFailed = errors.New("job: process failed")

	// ErrMissingOutput indicates a declared output file was not produced.
	ErrMissingOutput = errors.New("job: missing output")

	// ErrCanceled indicates the job was terminated before it finished.
	ErrCanceled = errors.New("job: canceled")
)

// Error carries the exit status of a failed job.
type Error struct {
	Name     string
	ID       uuid.UUID
	ExitCode int // -1 if the process did not report one
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("job: %s (%s) exited with code %d: %v", e.Name, e.ID, e.ExitCode, e.Err)
}

// Unwrap lets errors.Is match ErrJobFailed.
func (e *Error) Unwrap() []error { return []error{ErrJobFailed, e.Err} }
