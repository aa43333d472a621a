package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/rig/internal/core/domain"
)

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"command failure", &domain.ExitError{Task: domain.NewInternedString("t"), Code: 5}, 5},
		{"wrapped command failure", fmt.Errorf("run failed: %w", &domain.ExitError{Code: 42}), 42},
		{"configuration error", domain.ErrCyclicDependency, domain.ExitCodeInternal},
		{"plain error", errors.New("boom"), domain.ExitCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ExitCodeOf(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	err := &domain.ExitError{Task: domain.NewInternedString("mount"), Code: 3}

	assert.EqualError(t, err, "task mount failed, last exit code: 3")
	assert.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestReport_Result(t *testing.T) {
	report := &domain.Report{Tasks: []domain.TaskResult{
		{Name: domain.NewInternedString("a"), Status: domain.VertexStatusCompleted, Codes: []int{0, 0}},
		{Name: domain.NewInternedString("b"), Status: domain.VertexStatusFailed, Codes: []int{2, 0, 0}},
	}}

	res, ok := report.Result("b")
	assert.True(t, ok)
	assert.Equal(t, 2, res.LastFailure())

	_, ok = report.Result("c")
	assert.False(t, ok)
}
