package domain

// VertexStatus represents the outcome of a task within a run.
type VertexStatus string

const (
	// VertexStatusRunning indicates the task's commands are being replayed.
	VertexStatusRunning VertexStatus = "running"
	// VertexStatusCompleted indicates every command of the task returned zero.
	VertexStatusCompleted VertexStatus = "completed"
	// VertexStatusFailed indicates a command returned non-zero, or the task hit a fatal error.
	VertexStatusFailed VertexStatus = "failed"
	// VertexStatusSkipped indicates the task was disabled.
	VertexStatusSkipped VertexStatus = "skipped"
)

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
