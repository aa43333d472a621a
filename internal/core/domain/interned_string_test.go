package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rig/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("target")
	b := domain.NewInternedString("target")

	assert.True(t, a == b, "identical strings share a handle")
	assert.NotEqual(t, a, domain.NewInternedString("host"))
	assert.Equal(t, "target", a.String())
}

func TestInternedString_ZeroValue(t *testing.T) {
	var zero domain.InternedString

	assert.Empty(t, zero.String())
	assert.NotEqual(t, zero, domain.NewInternedString("target"))
}

func TestInternedString_MapKey(t *testing.T) {
	tasks := map[domain.InternedString]int{
		domain.NewInternedString("mount"): 1,
	}

	n, ok := tasks[domain.NewInternedString("mount")]
	require.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestNewInternedStrings(t *testing.T) {
	t.Run("preserves order and values", func(t *testing.T) {
		names := domain.NewInternedStrings([]string{"host", "renode", "target"})

		require.Len(t, names, 3)
		for i, want := range []string{"host", "renode", "target"} {
			assert.Equal(t, want, names[i].String())
		}
	})

	t.Run("nil and empty yield nil", func(t *testing.T) {
		assert.Nil(t, domain.NewInternedStrings(nil))
		assert.Nil(t, domain.NewInternedStrings([]string{}))
	})

	t.Run("duplicates share a handle", func(t *testing.T) {
		names := domain.NewInternedStrings([]string{"task", "task"})

		assert.True(t, names[0] == names[1])
	})
}
