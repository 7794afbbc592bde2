// Package redirect resolves redirect destinations to file-backed sinks.
package redirect

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipeline"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/stream"
)

// FileResolver opens redirect destinations on the local filesystem.
// Truncate mode replaces the file's contents; append mode positions the
// write cursor at current end-of-data.
type FileResolver struct {
	// Perm is the mode bits for newly created files. Zero means 0644.
	Perm os.FileMode
}

// NewFileResolver creates a resolver with default permissions.
func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

// Resolve opens path according to mode and returns it as a Sink.
func (r *FileResolver) Resolve(path string, mode pipeline.RedirectMode) (stream.Sink, error) {
	perm := r.Perm
	if perm == 0 {
		perm = 0o644
	}

	flags := os.O_WRONLY | os.O_CREATE
	switch mode {
	case pipeline.RedirectTruncate:
		flags |= os.O_TRUNC
	case pipeline.RedirectAppend:
		flags |= os.O_APPEND
	default:
		return nil, fmt.Errorf("unknown redirect mode %q", mode)
	}

	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &fileSink{f: f}, nil
}

// fileSink adapts an *os.File to the Sink contract with idempotent Close.
type fileSink struct {
	f         *os.File
	closeOnce sync.Once
	closeErr  error
}

func (s *fileSink) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.f.Write(p)
	return err
}

func (s *fileSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.f.Close()
	})
	return s.closeErr
}
