package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Single stage", func(t *testing.T) {
		pl, err := Parse([]string{"ls", "-la"})
		require.NoError(t, err)
		require.Len(t, pl.Stages, 1)
		assert.Equal(t, []string{"ls", "-la"}, pl.Stages[0].Args)
		assert.Nil(t, pl.Redirect)
	})

	t.Run("Two stages", func(t *testing.T) {
		pl, err := Parse([]string{"a", "|", "b"})
		require.NoError(t, err)
		require.Len(t, pl.Stages, 2)
		assert.Equal(t, []string{"a"}, pl.Stages[0].Args)
		assert.Equal(t, []string{"b"}, pl.Stages[1].Args)
	})

	t.Run("Three stages with arguments", func(t *testing.T) {
		pl, err := Parse([]string{"gen", "--fast", "|", "transform", "|", "sink", "-o"})
		require.NoError(t, err)
		require.Len(t, pl.Stages, 3)
		assert.Equal(t, []string{"gen", "--fast"}, pl.Stages[0].Args)
		assert.Equal(t, []string{"transform"}, pl.Stages[1].Args)
		assert.Equal(t, []string{"sink", "-o"}, pl.Stages[2].Args)
	})

	t.Run("Truncate redirect", func(t *testing.T) {
		pl, err := Parse([]string{"cat", "f", ">", "out.txt"})
		require.NoError(t, err)
		require.Len(t, pl.Stages, 1)
		assert.Equal(t, []string{"cat", "f"}, pl.Stages[0].Args)
		require.NotNil(t, pl.Redirect)
		assert.Equal(t, RedirectTruncate, pl.Redirect.Mode)
		assert.Equal(t, "out.txt", pl.Redirect.Path)
	})

	t.Run("Append redirect", func(t *testing.T) {
		pl, err := Parse([]string{"cat", "f", ">>", "out.txt"})
		require.NoError(t, err)
		require.NotNil(t, pl.Redirect)
		assert.Equal(t, RedirectAppend, pl.Redirect.Mode)
		assert.Equal(t, "out.txt", pl.Redirect.Path)
	})

	t.Run("Redirect only on the last stage", func(t *testing.T) {
		pl, err := Parse([]string{"grep", "x", "|", "sort", ">", "sorted.txt"})
		require.NoError(t, err)
		require.Len(t, pl.Stages, 2)
		assert.Equal(t, []string{"sort"}, pl.Stages[1].Args)
		require.NotNil(t, pl.Redirect)
		assert.Equal(t, "sorted.txt", pl.Redirect.Path)
	})

	t.Run("Mid-stage redirect tokens stay arguments", func(t *testing.T) {
		// Only the final two tokens form a redirect.
		pl, err := Parse([]string{"prog", ">", "x", "arg"})
		require.NoError(t, err)
		assert.Nil(t, pl.Redirect)
		assert.Equal(t, []string{"prog", ">", "x", "arg"}, pl.Stages[0].Args)
	})

	structuralCases := []struct {
		name   string
		tokens []string
	}{
		{"trailing pipe", []string{"a", "|"}},
		{"lone pipe", []string{"|"}},
		{"empty leading segment", []string{"|", "a"}},
		{"empty middle segment", []string{"a", "|", "|", "b"}},
		{"empty token list", nil},
		{"redirect without destination", []string{"cat", "f", ">"}},
		{"append without destination", []string{"cat", "f", ">>"}},
		{"redirect consumes whole segment", []string{">", "out.txt"}},
	}
	for _, tc := range structuralCases {
		t.Run("Structural error: "+tc.name, func(t *testing.T) {
			_, err := Parse(tc.tokens)
			require.Error(t, err)
			var serr *StructuralError
			assert.True(t, errors.As(err, &serr), "want StructuralError, got %T", err)
		})
	}
}
