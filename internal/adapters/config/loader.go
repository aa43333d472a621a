// Package config loads task and session definitions from YAML files.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/rig/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// TestTaskName is the default name of a task read from a test body.
const TestTaskName = "test"

// Loader implements ports.TaskLoader using YAML files.
type Loader struct {
	Logger ports.Logger
}

var _ ports.TaskLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// LoadTasks reads every *.yml and *.yaml file under dirs. Files are parsed
// concurrently; a task from a later file replaces an earlier one of the same name
// in place.
func (l *Loader) LoadTasks(dirs []string) ([]*domain.Task, error) {
	var files []string
	for _, dir := range dirs {
		found, err := findTaskFiles(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	tasks := make([]*domain.Task, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			task, err := loadTaskFile(path)
			if err != nil {
				return err
			}
			tasks[i] = task
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]*domain.Task, 0, len(tasks))
	index := make(map[domain.InternedString]int, len(tasks))
	origin := make(map[domain.InternedString]string, len(tasks))
	for i, task := range tasks {
		if j, ok := index[task.Name]; ok {
			l.Logger.Warn(fmt.Sprintf("task %s from %s overrides %s", task.Name.String(), files[i], origin[task.Name]))
			merged[j] = task
			origin[task.Name] = files[i]
			continue
		}
		index[task.Name] = len(merged)
		origin[task.Name] = files[i]
		merged = append(merged, task)
	}

	return merged, nil
}

// LoadSessions reads the session definitions in path. An entry may leave out
// fields, spawn included, that a default session of the same name provides.
func (l *Loader) LoadSessions(path string) ([]domain.SessionConfig, error) {
	var file SessionsFile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "file", path)
	}

	sessions := make([]domain.SessionConfig, 0, len(file.Sessions))
	for i := range file.Sessions {
		cfg, err := buildSession(&file.Sessions[i])
		if err != nil {
			return nil, zerr.With(err, "file", path)
		}
		sessions = append(sessions, cfg)
	}
	return sessions, nil
}

// LoadTestTask reads the test body in path.
func (l *Loader) LoadTestTask(path string) (*domain.Task, error) {
	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", path)
	}

	task, err := ParseTestTask(data)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return task, nil
}

// ParseTask builds a task from a YAML task definition.
func ParseTask(data []byte) (*domain.Task, error) {
	var file TaskFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return buildTask(&file)
}

// ParseTestTask builds a task from a test body. A YAML mapping is read as a
// task named TestTaskName unless it names itself; anything else is read by
// TaskFromMultiline. The resulting task always echoes its output.
func ParseTestTask(data []byte) (*domain.Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || !isMapping(&doc) {
		return TaskFromMultiline(TestTaskName, string(data)), nil
	}

	var file TaskFile
	if err := doc.Decode(&file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if file.Name == "" {
		file.Name = TestTaskName
	}

	task, err := buildTask(&file)
	if err != nil {
		return nil, err
	}
	task.Echo = true
	return task, nil
}

// TaskFromMultiline builds an echoing task in the default session with one
// command per non-blank line of body.
func TaskFromMultiline(name, body string) *domain.Task {
	task := domain.NewTask(name, domain.DefaultSession)
	task.Echo = true
	for line := range strings.Lines(body) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		task.Commands = append(task.Commands, domain.Line(line))
	}
	return task
}

func isMapping(doc *yaml.Node) bool {
	return doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode
}

func findTaskFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yml", ".yaml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "directory", dir)
	}
	return files, nil
}

func loadTaskFile(path string) (*domain.Task, error) {
	var file TaskFile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "file", path)
	}

	task, err := buildTask(&file)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return task, nil
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](path string, target *T) error {
	// #nosec G304 -- path is found under a user-provided directory
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

// buildTask creates a domain.Task from a TaskFile, applying the defaults:
// session target, fail fast, check exit codes.
func buildTask(file *TaskFile) (*domain.Task, error) {
	if file.Name == "" {
		return nil, zerr.With(domain.ErrMalformedTask, "reason", "task has no name")
	}

	shell := file.Shell
	if shell == "" {
		shell = domain.DefaultSession
	}

	task := domain.NewTask(file.Name, shell, buildCommands(file.Commands)...)
	task.Requires = domain.NewInternedStrings(file.Requires)
	task.Before = domain.NewInternedStrings(file.Before)
	task.Echo = file.Echo
	task.ShouldFail = file.ShouldFail
	task.Disabled = file.Disabled
	task.Sleep = seconds(file.Sleep)
	task.Vars = file.Vars

	if file.FailFast != nil {
		task.FailFast = *file.FailFast
	}
	if file.CheckExitCode != nil {
		task.CheckExitCode = *file.CheckExitCode
	}
	if file.Timeout != nil {
		task.Timeout = domain.Ptr(seconds(*file.Timeout))
	}

	return task, nil
}

func buildCommands(dtos []CommandDTO) []domain.Command {
	if len(dtos) == 0 {
		return nil
	}

	commands := make([]domain.Command, len(dtos))
	for i, dto := range dtos {
		commands[i] = domain.Command{
			Send:          dto.Command,
			Expect:        dto.Expect,
			Echo:          dto.Echo,
			CheckExitCode: dto.CheckExitCode,
			ShouldFail:    dto.ShouldFail,
		}
		if dto.Timeout != nil {
			commands[i].Timeout = domain.Ptr(seconds(*dto.Timeout))
		}
	}
	return commands
}

func buildSession(dto *SessionDTO) (domain.SessionConfig, error) {
	if dto.Name == "" {
		return domain.SessionConfig{}, zerr.With(domain.ErrMalformedSession, "reason", "session has no name")
	}

	kind := domain.SessionKind(dto.Kind)
	switch kind {
	case "", domain.SessionKindShell, domain.SessionKindMonitor:
	default:
		err := zerr.With(domain.ErrMalformedSession, "session", dto.Name)
		return domain.SessionConfig{}, zerr.With(err, "kind", dto.Kind)
	}

	return domain.SessionConfig{
		Name:          dto.Name,
		Spawn:         dto.Spawn,
		Kind:          kind,
		Prompt:        dto.Prompt,
		Init:          buildCommands(dto.Init),
		InitSleep:     seconds(dto.InitSleep),
		Timeout:       seconds(dto.Timeout),
		ResultTimeout: seconds(dto.ResultTimeout),
		RespawnLimit:  dto.RespawnLimit,
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
