package pipeline

import (
	"context"

	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/stream"
)

// RedirectMode selects how a redirect destination is opened.
type RedirectMode string

const (
	RedirectTruncate RedirectMode = "truncate" // ">"
	RedirectAppend   RedirectMode = "append"   // ">>"
)

// Redirect replaces the final stage's output with a destination-backed sink.
type Redirect struct {
	Mode RedirectMode `json:"mode"`
	Path string       `json:"path"`
}

// Stage is one command invocation within a pipeline.
type Stage struct {
	Args []string `json:"args"`
}

// Pipeline is an ordered list of stages plus the optional final-stage
// output redirect extracted by Parse.
type Pipeline struct {
	Stages   []Stage   `json:"stages"`
	Redirect *Redirect `json:"redirect,omitempty"`
}

// StageState tracks a stage through its lifecycle.
type StageState string

const (
	StatePending   StageState = "pending"
	StateRunning   StageState = "running"
	StateCompleted StageState = "completed"
	StateFailed    StageState = "failed"
	StateAborted   StageState = "aborted"
)

// StageResult reports one stage's outcome. ExitCode is meaningful only in
// StateCompleted; Err only in StateFailed.
type StageResult struct {
	Index    int        `json:"index"`
	Args     []string   `json:"args"`
	State    StageState `json:"state"`
	ExitCode int        `json:"exit_code"`
	Err      error      `json:"-"`
}

// RunSpec describes one stage execution for the execution substrate.
type RunSpec struct {
	Args   []string
	Env    []string
	Stdin  stream.Source
	Stdout stream.Sink
	Stderr stream.Sink
}

// Runner is the execution substrate: it runs one stage to completion and
// reports its exit code. Cancellation arrives through ctx; a runner that
// ignores it may run to completion regardless.
type Runner interface {
	Run(ctx context.Context, spec RunSpec) (int, error)
}

// Resolver turns a redirect destination into a writable sink. Append mode
// positions the write cursor at current end-of-data.
type Resolver interface {
	Resolve(path string, mode RedirectMode) (stream.Sink, error)
}
