// Package spawn is the execution substrate: it runs one pipeline stage as
// an OS process and reports its exit code.
//
// Stage endpoints that wrap plain readers and writers (the CLI's stdio)
// are handed to the child directly; pipe-backed endpoints are pumped
// through goroutines. An interactive runner allocates a PTY for the
// child instead, merging stderr into the terminal stream as PTY
// semantics dictate.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ShellOS/backend/internal/logging"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipeline"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/stream"
)

const pumpChunk = 32 * 1024

// Runner executes stages via os/exec.
type Runner struct {
	log         *logging.Logger
	interactive bool
}

// New creates a pipe-wired runner.
func New(log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Nop()
	}
	return &Runner{log: log}
}

// NewInteractive creates a runner that gives each child a PTY. Stderr is
// merged into the terminal stream, as PTY semantics dictate.
func NewInteractive(log *logging.Logger) *Runner {
	r := New(log)
	r.interactive = true
	return r
}

// Run starts the stage's program, wires its stdio to the spec's endpoints
// and waits for it to exit. A non-zero exit status is not an error; it is
// reported through the returned code. Cancelling ctx kills the child and
// returns ctx.Err().
func (r *Runner) Run(ctx context.Context, spec pipeline.RunSpec) (int, error) {
	if len(spec.Args) == 0 {
		return 0, errors.New("spawn: empty argument list")
	}

	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Env = spec.Env
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}

	if r.interactive {
		return r.runPTY(ctx, cmd, spec)
	}
	return r.runPipes(ctx, cmd, spec)
}

func (r *Runner) runPipes(ctx context.Context, cmd *exec.Cmd, spec pipeline.RunSpec) (int, error) {
	var stdinPipe io.WriteCloser
	if rs, ok := spec.Stdin.(*stream.ReaderSource); ok {
		cmd.Stdin = rs.Reader()
	} else {
		p, err := cmd.StdinPipe()
		if err != nil {
			return 0, err
		}
		stdinPipe = p
	}

	var stdoutPipe, stderrPipe io.ReadCloser
	if ws, ok := spec.Stdout.(*stream.WriterSink); ok {
		cmd.Stdout = ws.Writer()
	} else {
		p, err := cmd.StdoutPipe()
		if err != nil {
			return 0, err
		}
		stdoutPipe = p
	}
	if ws, ok := spec.Stderr.(*stream.WriterSink); ok {
		cmd.Stderr = ws.Writer()
	} else {
		p, err := cmd.StderrPipe()
		if err != nil {
			return 0, err
		}
		stderrPipe = p
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", spec.Args[0], err)
	}
	r.log.Debug("stage process started",
		zap.String("program", spec.Args[0]),
		zap.Int("pid", cmd.Process.Pid),
	)

	if stdinPipe != nil {
		go func() {
			pumpIn(ctx, spec.Stdin, stdinPipe)
			stdinPipe.Close()
		}()
	}

	// Drain stdout/stderr before Wait; Wait closes the pipes.
	var wg sync.WaitGroup
	if stdoutPipe != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pumpOut(ctx, stdoutPipe, spec.Stdout)
		}()
	}
	if stderrPipe != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pumpOut(ctx, stderrPipe, spec.Stderr)
		}()
	}
	wg.Wait()

	return r.finish(ctx, cmd, spec.Args[0])
}

func (r *Runner) runPTY(ctx context.Context, cmd *exec.Cmd, spec pipeline.RunSpec) (int, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return 0, fmt.Errorf("start %s under pty: %w", spec.Args[0], err)
	}
	r.log.Debug("stage process started under pty",
		zap.String("program", spec.Args[0]),
		zap.Int("pid", cmd.Process.Pid),
	)

	go pumpIn(ctx, spec.Stdin, ptmx)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		pumpOut(ctx, ptmx, spec.Stdout)
	}()

	code, err := r.finish(ctx, cmd, spec.Args[0])
	ptmx.Close() // unblocks the output pump with EIO
	<-drained
	return code, err
}

// finish waits for the child and classifies the result. Cancellation wins
// over the exit status so the executor can mark the stage aborted.
func (r *Runner) finish(ctx context.Context, cmd *exec.Cmd, program string) (int, error) {
	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("wait %s: %w", program, err)
	}
	return 0, nil
}

// pumpIn copies the source into the child's input until end-of-stream, a
// cancelled context, or the child closing its end.
func pumpIn(ctx context.Context, src stream.Source, w io.Writer) {
	for {
		chunk, err := src.Read(ctx, pumpChunk)
		if err != nil || len(chunk) == 0 {
			return
		}
		if _, err := w.Write(chunk); err != nil {
			return
		}
	}
}

// pumpOut copies the child's output into the sink until EOF. PTY masters
// report the child's exit as a read error, which also ends the pump.
func pumpOut(ctx context.Context, rd io.Reader, dst stream.Sink) {
	buf := make([]byte, pumpChunk)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			if werr := dst.Write(ctx, buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
