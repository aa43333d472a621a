package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/rig/internal/core/domain"
)

func TestNewTask_Defaults(t *testing.T) {
	task := domain.NewTask("boot", "target")

	assert.True(t, task.FailFast)
	assert.True(t, task.CheckExitCode)
	assert.False(t, task.ShouldFail)
	assert.False(t, task.Echo)
	assert.Nil(t, task.Timeout)
}

func TestTask_Requirements(t *testing.T) {
	t.Run("adds the session bootstrap task", func(t *testing.T) {
		task := domain.NewTask("boot", "target")
		task.Requires = []domain.InternedString{domain.NewInternedString("host")}

		assert.Equal(t, []string{"host", "target"}, names(task.Requirements()))
	})

	t.Run("does not duplicate an explicit session requirement", func(t *testing.T) {
		task := domain.NewTask("boot", "target")
		task.Requires = []domain.InternedString{domain.NewInternedString("target")}

		assert.Equal(t, []string{"target"}, names(task.Requirements()))
	})

	t.Run("bootstrap task does not require itself", func(t *testing.T) {
		task := domain.NewTask("renode", "renode")
		task.Requires = []domain.InternedString{domain.NewInternedString("host")}

		assert.True(t, task.IsBootstrap())
		assert.Equal(t, []string{"host"}, names(task.Requirements()))
	})
}

func TestCommand_Resolve(t *testing.T) {
	session := &domain.SessionConfig{Name: "target", Prompt: "#", Timeout: 30 * time.Second}

	task := domain.NewTask("t", "target")
	task.Echo = true
	task.ShouldFail = true
	task.Timeout = domain.Ptr(5 * time.Second)

	tests := []struct {
		name    string
		command domain.Command
		want    domain.Step
	}{
		{
			name:    "inherits from task and session",
			command: domain.Line("ls"),
			want: domain.Step{
				Task: task.Name, Index: 2, Send: []string{"ls"}, Expect: []string{"#"},
				Timeout: 5 * time.Second, Echo: true, CheckExitCode: true, ShouldFail: true,
			},
		},
		{
			name: "explicit false overrides task true",
			command: domain.Command{
				Send:          []string{"ls"},
				Expect:        []string{"login:"},
				Timeout:       domain.Ptr(time.Duration(0)),
				Echo:          domain.Ptr(false),
				CheckExitCode: domain.Ptr(false),
				ShouldFail:    domain.Ptr(false),
			},
			want: domain.Step{
				Task: task.Name, Index: 2, Send: []string{"ls"}, Expect: []string{"login:"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.command.Resolve(task, session, 2))
		})
	}
}

func TestCommand_Resolve_SessionTimeout(t *testing.T) {
	session := &domain.SessionConfig{Name: "host", Prompt: `\$`, Timeout: 30 * time.Second}
	task := domain.NewTask("t", "host")
	cmd := domain.Line("make")

	step := cmd.Resolve(task, session, 0)

	assert.Equal(t, 30*time.Second, step.Timeout)
	assert.Equal(t, []string{`\$`}, step.Expect)
	assert.True(t, step.CheckExitCode)
}
