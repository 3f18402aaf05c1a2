// SPDX-License-Identifier: MIT

package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/katalvlaran/dcgrid/metrics"
)

// State is the lifecycle position of a Job.
type State int

// Job states.
const (
	Running State = iota
	Succeeded
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Option configures Submit.
type Option func(*Job)

// WithLogger sets the logger receiving lifecycle events and process output.
func WithLogger(l *slog.Logger) Option {
	return func(j *Job) {
		if l != nil {
			j.log = l
		}
	}
}

// Job is the handle of one submitted process.
type Job struct {
	ID   uuid.UUID
	Spec Spec

	log     *slog.Logger
	proc    Process
	started time.Time
	done    chan struct{}
	stop    func() bool // detaches the context watcher

	mu       sync.Mutex
	state    State
	err      error
	canceled bool // a kill was requested
	exited   bool

	closeOnce sync.Once
}

// Submit starts spec through r and returns its handle. If ctx is canceled
// while the process runs, the process is killed and the job ends Canceled.
func Submit(ctx context.Context, r Runner, spec Spec, opts ...Option) (*Job, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if spec.Name == "" {
		spec.Name = filepath.Base(spec.Command)
	}
	j := &Job{
		ID:   uuid.New(),
		Spec: spec,
		log:  slog.Default(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.log = j.log.With("component", "job", "job", spec.Name, "id", j.ID.String())

	stdout := newLineLogger(j.log, "stdout")
	stderr := newLineLogger(j.log, "stderr")
	p, err := r.Start(ctx, spec, stdout, stderr)
	if err != nil {
		return nil, err
	}
	j.proc = p
	j.started = time.Now()
	j.log.Info("job started", "command", spec.Command, "args", spec.Args, "pid", p.Pid())

	j.stop = context.AfterFunc(ctx, func() { j.terminate() })
	go j.wait(stdout, stderr)

	return j, nil
}

func (j *Job) wait(stdout, stderr *lineLogger) {
	werr := j.proc.Wait()
	j.stop()
	stdout.flush()
	stderr.flush()

	j.mu.Lock()
	j.exited = true
	switch {
	case j.canceled && werr != nil:
		j.state, j.err = Canceled, ErrCanceled
	case werr != nil:
		code := -1
		var ec interface{ ExitCode() int }
		if errors.As(werr, &ec) {
			code = ec.ExitCode()
		}
		j.state = Failed
		j.err = &Error{Name: j.Spec.Name, ID: j.ID, ExitCode: code, Err: werr}
	default:
		if err := j.checkOutputs(); err != nil {
			j.state, j.err = Failed, err
		} else {
			j.state = Succeeded
		}
	}
	state, err := j.state, j.err
	j.mu.Unlock()

	elapsed := time.Since(j.started)
	metrics.JobSeconds.WithLabelValues(j.Spec.Name, state.String()).Observe(elapsed.Seconds())
	if err != nil {
		j.log.Warn("job finished", "state", state.String(), "elapsed", elapsed, "err", err)
	} else {
		j.log.Info("job finished", "state", state.String(), "elapsed", elapsed)
	}
	close(j.done)
}

func (j *Job) checkOutputs() error {
	for _, pattern := range j.Spec.Outputs {
		matches, err := filepath.Glob(filepath.Join(j.Spec.Dir, pattern))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMissingOutput, pattern, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingOutput, pattern)
		}
	}

	return nil
}

// terminate kills a running process; it is a no-op once the process has
// exited. A process that exits cleanly while the kill is in flight still
// ends Succeeded.
func (j *Job) terminate() {
	j.mu.Lock()
	if j.exited || j.state != Running || j.canceled {
		j.mu.Unlock()
		return
	}
	j.canceled = true
	j.mu.Unlock()
	if err := j.proc.Kill(); err != nil {
		j.log.Debug("kill", "err", err)
	}
}

// Wait blocks until the job finishes or ctx is done. It returns the job's
// error, or ctx.Err() if ctx ends first (the process keeps running).
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the job has finished and its outputs were checked.
func (j *Job) Done() <-chan struct{} { return j.done }

// State returns the current state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.state
}

// Err returns the final error; nil while running or after success.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.err
}

// Close terminates the process if it is still running and waits for it to
// exit. It returns nil; the outcome is available from Err.
func (j *Job) Close() error {
	j.closeOnce.Do(func() {
		j.terminate()
		<-j.done
	})

	return nil
}

// Newest returns the most recently modified file in dir matching pattern.
func Newest(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingOutput, pattern, err)
	}
	var (
		best    string
		bestMod time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) || (info.ModTime().Equal(bestMod) && m > best) {
			best, bestMod = m, info.ModTime()
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrMissingOutput, pattern, dir)
	}

	return best, nil
}

// lineLogger forwards complete lines written to it as log records.
type lineLogger struct {
	log    *slog.Logger
	stream string

	mu  sync.Mutex
	buf bytes.Buffer
}

func newLineLogger(l *slog.Logger, stream string) *lineLogger {
	return &lineLogger{log: l, stream: stream}
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			// keep the partial line for the next write
			rest := append([]byte(nil), line...)
			w.buf.Reset()
			w.buf.Write(rest)
			return len(p), nil
		}
		w.emit(line[:len(line)-1])
	}
}

func (w *lineLogger) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.Bytes())
		w.buf.Reset()
	}
}

func (w *lineLogger) emit(line []byte) {
	w.log.Info(string(bytes.TrimRight(line, "\r")), "stream", w.stream)
}
