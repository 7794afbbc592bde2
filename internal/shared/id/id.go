// Package id provides typed, prefixed ULID generation for the engine.
//
// ULIDs are lexicographically sortable, so pipeline and stage IDs order by
// creation time in logs without extra timestamps. Prefixes (pipe_*, stage_*,
// sess_*) make log lines readable and prevent IDs being handed to the wrong
// consumer.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PipelineID identifies one pipeline invocation.
type PipelineID string

// StageID identifies one stage execution within a pipeline.
type StageID string

// SessionID identifies an interactive shell session.
type SessionID string

const (
	PipelinePrefix = "pipe"
	StagePrefix    = "stage"
	SessionPrefix  = "sess"
)

// Generator generates prefixed ULIDs.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator over the given entropy source. Tests
// can pass a deterministic reader.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// WithPrefix creates a prefixed ULID string.
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate())
}

// NewPipelineID generates a pipeline invocation ID.
func NewPipelineID() PipelineID {
	return PipelineID(Default().WithPrefix(PipelinePrefix))
}

// NewStageID generates a stage execution ID.
func NewStageID() StageID {
	return StageID(Default().WithPrefix(StagePrefix))
}

// NewSessionID generates a shell session ID.
func NewSessionID() SessionID {
	return SessionID(Default().WithPrefix(SessionPrefix))
}

func (id PipelineID) String() string { return string(id) }
func (id StageID) String() string    { return string(id) }
func (id SessionID) String() string  { return string(id) }

// Timestamp extracts the creation time from a prefixed ID.
func Timestamp(id string) (time.Time, error) {
	if i := strings.IndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
