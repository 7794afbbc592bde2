package stream

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSource(t *testing.T) {
	ctx := context.Background()

	t.Run("Reads in chunks then signals end-of-stream", func(t *testing.T) {
		src := NewReaderSource(strings.NewReader("abcdef"))

		b, err := src.Read(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "abcd", string(b))

		b, err = src.Read(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "ef", string(b))

		b, err = src.Read(ctx, 4)
		require.NoError(t, err)
		assert.Empty(t, b)
	})

	t.Run("Cancelled context stops reads", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewReaderSource(strings.NewReader("x")).Read(cctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBytesSource(t *testing.T) {
	ctx := context.Background()
	src := NewBytesSource([]byte("hello"))

	b, err := src.Read(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "hel", string(b))

	b, err = src.Read(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "lo", string(b))

	b, err = src.Read(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = Empty().Read(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestWriterSink(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes pass through", func(t *testing.T) {
		var buf bytes.Buffer
		sink := NewWriterSink(&buf)
		require.NoError(t, sink.Write(ctx, []byte("one ")))
		require.NoError(t, sink.Write(ctx, []byte("two")))
		assert.Equal(t, "one two", buf.String())
	})

	t.Run("Close without closer is a no-op", func(t *testing.T) {
		sink := NewWriterSink(&bytes.Buffer{})
		require.NoError(t, sink.Close())
		require.NoError(t, sink.Close())
	})
}

func TestBuffer(t *testing.T) {
	ctx := context.Background()
	buf := NewBuffer()

	require.NoError(t, buf.Write(ctx, []byte("captured ")))
	require.NoError(t, buf.Write(ctx, []byte("output")))
	assert.Equal(t, "captured output", buf.String())

	assert.False(t, buf.Closed())
	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close())
	assert.True(t, buf.Closed())
	assert.Equal(t, "captured output", buf.String(), "data readable after close")
}
