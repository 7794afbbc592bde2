package redirect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipeline"
)

func TestFileResolver(t *testing.T) {
	ctx := context.Background()
	resolver := NewFileResolver()

	t.Run("Truncate replaces contents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

		sink, err := resolver.Resolve(path, pipeline.RedirectTruncate)
		require.NoError(t, err)
		require.NoError(t, sink.Write(ctx, []byte("new")))
		require.NoError(t, sink.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("Append positions at end of data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.txt")
		require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

		sink, err := resolver.Resolve(path, pipeline.RedirectAppend)
		require.NoError(t, err)
		require.NoError(t, sink.Write(ctx, []byte("second\n")))
		require.NoError(t, sink.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\n", string(data))
	})

	t.Run("Creates missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fresh.txt")
		sink, err := resolver.Resolve(path, pipeline.RedirectAppend)
		require.NoError(t, err)
		require.NoError(t, sink.Write(ctx, []byte("data")))
		require.NoError(t, sink.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	})

	t.Run("Close is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.txt")
		sink, err := resolver.Resolve(path, pipeline.RedirectTruncate)
		require.NoError(t, err)
		require.NoError(t, sink.Close())
		require.NoError(t, sink.Close())
	})

	t.Run("Unknown mode rejected", func(t *testing.T) {
		_, err := resolver.Resolve("x", pipeline.RedirectMode("sideways"))
		assert.Error(t, err)
	})

	t.Run("Unwritable destination", func(t *testing.T) {
		_, err := resolver.Resolve(filepath.Join(t.TempDir(), "no", "such", "dir.txt"), pipeline.RedirectTruncate)
		assert.Error(t, err)
	})
}
