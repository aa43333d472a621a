package domain

import "go.trai.ch/zerr"

var (
	// ErrMalformedTask is returned when a task definition is structurally invalid (e.g. it has no name).
	ErrMalformedTask = zerr.New("malformed task")

	// ErrUnsatisfiedDependency is returned when a task requires a task that is not registered.
	ErrUnsatisfiedDependency = zerr.New("dependency not satisfied, no such task")

	// ErrCyclicDependency is returned when the task dependency graph contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependencies detected")

	// ErrUnresolvedVariable is returned when a send string references a variable that is not defined.
	ErrUnresolvedVariable = zerr.New("variable not found")

	// ErrMalformedSession is returned when a session definition is structurally invalid.
	ErrMalformedSession = zerr.New("malformed session")

	// ErrUnknownSession is returned when a task targets a session that is not registered.
	ErrUnknownSession = zerr.New("unknown session")

	// ErrDuplicateSession is returned when two sessions share the same name.
	ErrDuplicateSession = zerr.New("session already registered")

	// ErrEmptySpawnCommand is returned when a session has no command to spawn.
	ErrEmptySpawnCommand = zerr.New("session spawn command is empty")

	// ErrTaskNotFound is returned when a requested task is not registered.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrTimeout is returned when an expected pattern does not appear before the deadline.
	ErrTimeout = zerr.New("timeout waiting for expected output")

	// ErrSessionUnresponsive is returned when a session process cannot be (re)spawned within its retry budget.
	ErrSessionUnresponsive = zerr.New("session unresponsive")

	// ErrInvalidBranch is returned when the last matched pattern index has no corresponding send string.
	ErrInvalidBranch = zerr.New("not enough options for last expect")

	// ErrInvalidPattern is returned when an expect pattern is not a valid regular expression.
	ErrInvalidPattern = zerr.New("invalid expect pattern")

	// ErrExitCodeUnreadable is returned when the exit code echoed by the remote shell cannot be parsed.
	ErrExitCodeUnreadable = zerr.New("failed to read remote exit code")

	// ErrCommandFailed is returned when a command exits with a non-zero code.
	ErrCommandFailed = zerr.New("command failed")

	// ErrConfigReadFailed is returned when a task or session file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a task or session file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidAssignment is returned when a KEY=VALUE argument is malformed.
	ErrInvalidAssignment = zerr.New("invalid assignment, expected KEY=VALUE")
)
