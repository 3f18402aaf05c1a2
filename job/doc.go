// SPDX-License-Identifier: MIT

// Package job runs the long-running external programs dcgrid hands work to
// (the market solver and the constraint-reduction tool) behind an explicit
// handle:
//
//	j, err := job.Submit(ctx, job.ExecRunner{}, spec)
//	defer j.Close()
//	if err := j.Wait(ctx); err != nil { ... }
//	// outputs declared in spec.Outputs exist here
//
// Lifecycle: Running -> Succeeded | Failed | Canceled. A job fails when the
// process exits non-zero (ErrJobFailed, with the exit code in *Error) or when
// a declared output is missing afterwards (ErrMissingOutput). Close
// terminates a still-running process and waits for it; it is safe to call
// more than once and after completion.
//
// Process output is forwarded line by line to the job's logger.
//
// A Job is safe for concurrent use.
package job
