package domain

import (
	"errors"
	"fmt"
)

// ExitCodeInternal is the process exit code for fatal errors that are not
// command failures: configuration errors, timeouts, unresponsive sessions.
const ExitCodeInternal = 1

// ExitError reports that a task terminated the run because a command
// returned a non-zero code.
type ExitError struct {
	Task InternedString
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("task %s failed, last exit code: %d", e.Task.String(), e.Code)
}

// Unwrap allows errors.Is(err, ErrCommandFailed).
func (e *ExitError) Unwrap() error {
	return ErrCommandFailed
}

// ExitCodeOf maps the outcome of a run to a process exit code.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return ExitCodeInternal
}

// TaskResult records the per-command codes of one evaluated task.
type TaskResult struct {
	Name   InternedString
	Status VertexStatus
	Codes  []int
	// Err is the fatal error that stopped the task, if any.
	Err error
}

// LastFailure returns the last non-zero code recorded for the task, or zero.
func (r *TaskResult) LastFailure() int {
	for i := len(r.Codes) - 1; i >= 0; i-- {
		if r.Codes[i] != 0 {
			return r.Codes[i]
		}
	}
	return 0
}

// Report collects the results of a run in execution order.
type Report struct {
	Order []InternedString
	Tasks []TaskResult
}

// Result returns the recorded result for the named task.
func (r *Report) Result(name string) (TaskResult, bool) {
	key := NewInternedString(name)
	for _, res := range r.Tasks {
		if res.Name == key {
			return res, true
		}
	}
	return TaskResult{}, false
}
