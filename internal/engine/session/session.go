// Package session replays resolved steps against a persistent interactive
// process, capturing the exit code of each command from the remote shell.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/rig/internal/core/ports"
	"go.trai.ch/zerr"
)

const resultCommand = "echo RESULT:${?}"

var resultPattern = regexp.MustCompile(`RESULT:(\d+)`)

// Option configures a Session.
type Option func(*Session)

// WithBackOff sets the policy used between spawn and respawn attempts.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(s *Session) {
		s.newBackOff = newBackOff
	}
}

// Session is a long-lived interactive process with a FIFO queue of steps.
// It is not safe for concurrent use.
type Session struct {
	cfg        domain.SessionConfig
	spawner    ports.Spawner
	logger     ports.Logger
	newBackOff func() backoff.BackOff

	queue []domain.Step
	// lastMatch is the index of the pattern matched by the latest expect.
	// It selects the send string of the next step.
	lastMatch int

	proc     ports.Process
	out      *stream
	patterns map[string]*regexp.Regexp
}

var _ ports.Session = (*Session)(nil)

// New creates a session. The process is not started until the first Drain.
func New(cfg domain.SessionConfig, spawner ports.Spawner, logger ports.Logger, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg.WithDefaults(),
		spawner: spawner,
		logger:  logger,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the session configuration with defaults applied.
func (s *Session) Config() *domain.SessionConfig {
	return &s.cfg
}

// LastMatch returns the index of the pattern matched by the latest expect.
func (s *Session) LastMatch() int {
	return s.lastMatch
}

// Enqueue appends steps to the queue.
func (s *Session) Enqueue(steps ...domain.Step) {
	s.queue = append(s.queue, steps...)
}

// Drain executes queued steps in order and yields the recorded code of each.
// Output of steps with echo enabled is written to sink as it is read, with carriage
// returns removed.
// The queue is emptied when the sequence stops early, on error or on break.
func (s *Session) Drain(ctx context.Context, sink io.Writer) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		transcript := NewTranscript(sink)
		for len(s.queue) > 0 {
			step := s.queue[0]
			s.queue = s.queue[1:]

			code, err := s.run(ctx, step, transcript)
			if err != nil {
				s.queue = nil
				yield(0, err)
				return
			}
			if !yield(code, nil) {
				s.queue = nil
				return
			}
		}
	}
}

// Close terminates the session process, if one is running.
func (s *Session) Close() error {
	if s.proc == nil {
		return nil
	}
	err := s.proc.Close()
	s.proc, s.out = nil, nil
	s.lastMatch = 0
	return err
}

// run executes one step, respawning the process when it exits mid-step.
func (s *Session) run(ctx context.Context, step domain.Step, transcript io.Writer) (int, error) {
	respawns := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.cfg.RespawnLimit)), ctx)

	for {
		if s.proc == nil {
			if err := s.spawn(ctx); err != nil {
				return 0, err
			}
		}

		code, err := s.execute(ctx, step, transcript)
		if !errors.Is(err, errProcessExited) {
			return code, err
		}

		s.logger.Warn(fmt.Sprintf("session %s exited during task %s, respawning", s.cfg.Name, step.Task.String()))
		_ = s.Close()

		wait := respawns.NextBackOff()
		if wait == backoff.Stop {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, zerr.With(zerr.With(domain.ErrSessionUnresponsive, "session", s.cfg.Name), "task", step.Task.String())
		}
		if err := sleep(ctx, wait); err != nil {
			return 0, err
		}
	}
}

func (s *Session) spawn(ctx context.Context) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.cfg.RespawnLimit-1)), ctx)

	err := backoff.Retry(func() error {
		proc, err := s.spawner.Spawn(ctx, s.cfg.Spawn)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("failed to start session %s: %v", s.cfg.Name, err))
			return err
		}
		s.proc = proc
		return nil
	}, policy)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return zerr.With(zerr.With(domain.ErrSessionUnresponsive, "session", s.cfg.Name), "cause", err.Error())
	}

	s.logger.Info(fmt.Sprintf("started session %s: %s", s.cfg.Name, strings.Join(s.cfg.Spawn, " ")))
	s.out = newStream()
	go s.out.pump(s.proc)
	return nil
}

func (s *Session) execute(ctx context.Context, step domain.Step, transcript io.Writer) (int, error) {
	patterns, err := s.compile(step.Expect)
	if err != nil {
		return 0, zerr.With(err, "task", step.Task.String())
	}

	m, err := s.converse(ctx, step, patterns, transcript)
	if err != nil {
		return 0, err
	}
	s.lastMatch = m.index

	if !step.CheckExitCode || !s.cfg.ChecksExitCodes() {
		return 0, nil
	}

	code, err := s.exitCode(ctx, step)
	if err != nil {
		return 0, err
	}
	if step.ShouldFail {
		if code == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return code, nil
}

// converse sends the step and waits for one of its patterns. Output of an
// echoing step is written to transcript as it arrives.
func (s *Session) converse(ctx context.Context, step domain.Step, patterns []*regexp.Regexp, transcript io.Writer) (match, error) {
	if step.Echo {
		s.out.tee(transcript)
		defer s.out.tee(nil)
	}

	if err := s.sendline(step); err != nil {
		return match{}, err
	}

	m, err := s.out.expect(ctx, patterns, step.Timeout)
	if err != nil {
		return match{}, s.expectFailure(err, step, step.Expect)
	}
	return m, nil
}

// sendline transmits the send string selected by the last match.
func (s *Session) sendline(step domain.Step) error {
	if len(step.Send) == 0 {
		return nil
	}
	if s.lastMatch >= len(step.Send) {
		return zerr.With(zerr.With(zerr.With(domain.ErrInvalidBranch,
			"task", step.Task.String()),
			"command", step.Index),
			"last_match", s.lastMatch)
	}
	return s.writeLine(step.Send[s.lastMatch])
}

func (s *Session) writeLine(line string) error {
	if _, err := io.WriteString(s.proc, line+"\n"); err != nil {
		return errProcessExited
	}
	return nil
}

// exitCode queries the remote shell for the status of the last command.
// Output of the query is never echoed.
func (s *Session) exitCode(ctx context.Context, step domain.Step) (int, error) {
	if err := s.writeLine(resultCommand); err != nil {
		return 0, err
	}

	m, err := s.out.expect(ctx, []*regexp.Regexp{resultPattern}, s.cfg.ResultTimeout)
	if err != nil {
		return 0, s.expectFailure(err, step, []string{resultPattern.String()})
	}
	code, err := strconv.Atoi(m.groups[1])
	if err != nil {
		return 0, zerr.With(zerr.With(domain.ErrExitCodeUnreadable, "task", step.Task.String()), "output", m.groups[1])
	}

	prompt, err := s.compile([]string{s.cfg.Prompt})
	if err != nil {
		return 0, err
	}
	if _, err := s.out.expect(ctx, prompt, s.cfg.ResultTimeout); err != nil {
		return 0, s.expectFailure(err, step, []string{s.cfg.Prompt})
	}

	return code, nil
}

func (s *Session) expectFailure(err error, step domain.Step, patterns []string) error {
	if !errors.Is(err, errDeadline) {
		return err
	}
	return zerr.With(zerr.With(zerr.With(zerr.With(domain.ErrTimeout,
		"session", s.cfg.Name),
		"task", step.Task.String()),
		"command", step.Index),
		"patterns", strings.Join(patterns, " | "))
}

func (s *Session) compile(exprs []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, ok := s.patterns[expr]
		if !ok {
			var err error
			if re, err = regexp.Compile(expr); err != nil {
				return nil, zerr.With(zerr.With(domain.ErrInvalidPattern, "pattern", expr), "cause", err.Error())
			}
			s.patterns[expr] = re
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
