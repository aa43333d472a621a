package domain_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/zerr"
)

func names(ids []domain.InternedString) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func table(tasks ...*domain.Task) map[domain.InternedString]*domain.Task {
	m := make(map[domain.InternedString]*domain.Task, len(tasks))
	for _, t := range tasks {
		m[t.Name] = t
	}
	return m
}

func requires(t *domain.Task, deps ...string) *domain.Task {
	for _, d := range deps {
		t.Requires = append(t.Requires, domain.NewInternedString(d))
	}
	return t
}

func before(t *domain.Task, succ ...string) *domain.Task {
	for _, s := range succ {
		t.Before = append(t.Before, domain.NewInternedString(s))
	}
	return t
}

func TestSort_RequiredBeforeDependent(t *testing.T) {
	tasks := table(
		domain.NewTask("target", "target"),
		requires(domain.NewTask("B", "target"), "A"),
		domain.NewTask("A", "target"),
	)

	order, err := domain.Sort(tasks)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"target", "A", "B"}, names(order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_RunBeforeHints(t *testing.T) {
	tasks := table(
		domain.NewTask("target", "target"),
		domain.NewTask("action_test", "target"),
		before(domain.NewTask("mount", "target"), "action_test", "not_registered"),
	)

	order, err := domain.Sort(tasks)
	require.NoError(t, err)

	got := names(order)
	assert.Less(t, slices.Index(got, "mount"), slices.Index(got, "action_test"))
	assert.NotContains(t, got, "not_registered")
}

func TestSort_ImplicitSessionRequirement(t *testing.T) {
	tasks := table(
		domain.NewTask("host", "host"),
		requires(domain.NewTask("renode", "renode"), "host"),
		requires(domain.NewTask("target", "target"), "renode"),
		domain.NewTask("boot", "target"),
		domain.NewTask("monitor_cmd", "renode"),
	)

	order, err := domain.Sort(tasks)
	require.NoError(t, err)

	got := names(order)
	assert.Equal(t, "host", got[0])
	assert.Less(t, slices.Index(got, "renode"), slices.Index(got, "monitor_cmd"))
	assert.Less(t, slices.Index(got, "target"), slices.Index(got, "boot"))
}

func TestSort_DisabledTasksKeepOrder(t *testing.T) {
	middle := requires(domain.NewTask("B", "target"), "A")
	middle.Disabled = true

	tasks := table(
		domain.NewTask("target", "target"),
		domain.NewTask("A", "target"),
		middle,
		requires(domain.NewTask("C", "target"), "B"),
	)

	order, err := domain.Sort(tasks)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"target", "A", "B", "C"}, names(order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_Cycle(t *testing.T) {
	tasks := table(
		domain.NewTask("target", "target"),
		requires(domain.NewTask("A", "target"), "C"),
		requires(domain.NewTask("B", "target"), "A"),
		requires(domain.NewTask("C", "target"), "B"),
		domain.NewTask("free", "target"),
	)

	_, err := domain.Sort(tasks)
	require.ErrorContains(t, err, "cyclic dependencies detected")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "A, B, C", zErr.Metadata()["tasks"])
}

func TestSort_CycleThroughRunBefore(t *testing.T) {
	tasks := table(
		domain.NewTask("target", "target"),
		requires(domain.NewTask("A", "target"), "B"),
		before(domain.NewTask("B", "target"), "C"),
		before(domain.NewTask("C", "target"), "B"),
	)

	_, err := domain.Sort(tasks)
	require.ErrorContains(t, err, "cyclic dependencies detected")
}

func TestSort_UnsatisfiedDependency(t *testing.T) {
	tasks := table(
		domain.NewTask("target", "target"),
		requires(domain.NewTask("A", "target"), "ghost"),
	)

	_, err := domain.Sort(tasks)
	require.ErrorContains(t, err, "dependency not satisfied")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	meta := zErr.Metadata()
	assert.Equal(t, "A", meta["task"])
	assert.Equal(t, "ghost", meta["dependency"])
}

func TestSort_MissingSession(t *testing.T) {
	tasks := table(domain.NewTask("A", "target"))

	_, err := domain.Sort(tasks)
	require.ErrorContains(t, err, "dependency not satisfied")
}

func TestSort_Empty(t *testing.T) {
	order, err := domain.Sort(nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}
