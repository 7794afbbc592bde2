package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ShellOS/backend/internal/logging"
	"github.com/GriffinCanCode/ShellOS/backend/internal/monitoring"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipe"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/stream"
)

// Config wires an Executor's collaborators.
type Config struct {
	Runner   Runner              // execution substrate, required
	Resolver Resolver            // redirect resolution, required when pipelines redirect
	Env      []string            // environment passed to every stage
	Logger   *logging.Logger     // optional, defaults to a no-op logger
	Metrics  *monitoring.Metrics // optional
}

// Executor runs pipelines: it allocates the connecting pipes, resolves
// each stage's endpoints, launches all stages concurrently and waits for
// them to settle.
type Executor struct {
	runner   Runner
	resolver Resolver
	env      []string
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewExecutor creates an executor from cfg.
func NewExecutor(cfg Config) (*Executor, error) {
	if cfg.Runner == nil {
		return nil, errors.New("pipeline: runner is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Executor{
		runner:   cfg.Runner,
		resolver: cfg.Resolver,
		env:      cfg.Env,
		log:      log,
		metrics:  cfg.Metrics,
	}, nil
}

// Run executes pl. Stage 0 reads from in; the last stage writes to out
// unless pl carries a redirect, in which case the destination is resolved
// through the configured Resolver. Every stage's error output is errOut.
//
// Run waits for all stages to settle and reports each stage's outcome.
// A stage failing or exiting non-zero never cancels its siblings;
// cancelling ctx is advisory and reaches stages through the runner.
// Aborted stages still close their owned pipe or redirect sink, so a
// downstream consumer always observes end-of-stream.
func (e *Executor) Run(ctx context.Context, pl *Pipeline, in stream.Source, out, errOut stream.Sink) ([]StageResult, error) {
	if pl == nil || len(pl.Stages) == 0 {
		return nil, errors.New("pipeline: no stages")
	}

	pipelineID := id.NewPipelineID()
	last := len(pl.Stages) - 1

	var redirectSink stream.Sink
	if pl.Redirect != nil {
		if e.resolver == nil {
			return nil, errors.New("pipeline: redirect requires a resolver")
		}
		sink, err := e.resolver.Resolve(pl.Redirect.Path, pl.Redirect.Mode)
		if err != nil {
			return nil, fmt.Errorf("resolve redirect %q: %w", pl.Redirect.Path, err)
		}
		redirectSink = sink
	}

	// One pipe per adjacent stage pair.
	pipes := make([]*pipe.Pipe, last)
	for i := range pipes {
		pipes[i] = pipe.New()
	}

	results := make([]StageResult, len(pl.Stages))
	for i, st := range pl.Stages {
		results[i] = StageResult{Index: i, Args: st.Args, State: StatePending}
	}

	e.log.Debug("pipeline starting",
		zap.String("pipeline_id", pipelineID.String()),
		zap.Int("stages", len(pl.Stages)),
		zap.Bool("redirect", pl.Redirect != nil),
	)
	start := time.Now()

	var wg sync.WaitGroup
	for i := range pl.Stages {
		stdin := in
		if i > 0 {
			stdin = pipes[i-1]
		}

		// The closing obligation pairs each stage with the output it
		// owns: its connecting pipe, or the redirect sink on the last
		// stage. The external out/err sinks belong to the caller.
		var stdout stream.Sink
		var owned interface{ Close() error }
		switch {
		case i < last:
			stdout = pipes[i]
			owned = pipes[i]
		case redirectSink != nil:
			stdout = redirectSink
			owned = redirectSink
		default:
			stdout = out
		}

		wg.Add(1)
		go func(i int, stdin stream.Source, stdout stream.Sink, owned interface{ Close() error }) {
			defer wg.Done()
			if owned != nil {
				defer func() {
					if err := owned.Close(); err != nil {
						e.log.Warn("closing stage output failed",
							zap.String("pipeline_id", pipelineID.String()),
							zap.Int("stage", i),
							zap.Error(err),
						)
					}
				}()
			}

			results[i].State = StateRunning
			exit, err := e.runner.Run(ctx, RunSpec{
				Args:   pl.Stages[i].Args,
				Env:    e.env,
				Stdin:  stdin,
				Stdout: stdout,
				Stderr: errOut,
			})

			switch {
			case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
				results[i].State = StateAborted
			case err != nil:
				results[i].State = StateFailed
				results[i].Err = err
			default:
				results[i].State = StateCompleted
				results[i].ExitCode = exit
			}
			e.observeStage(&results[i])
		}(i, stdin, stdout, owned)
	}
	wg.Wait()

	if e.metrics != nil {
		e.metrics.PipelinesTotal.Inc()
		e.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}
	e.log.Debug("pipeline settled",
		zap.String("pipeline_id", pipelineID.String()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return results, nil
}

func (e *Executor) observeStage(res *StageResult) {
	if e.metrics != nil {
		e.metrics.StagesTotal.WithLabelValues(string(res.State)).Inc()
	}
	switch res.State {
	case StateFailed:
		e.log.Warn("stage failed", zap.Int("stage", res.Index), zap.Error(res.Err))
	case StateAborted:
		e.log.Debug("stage aborted", zap.Int("stage", res.Index))
	default:
		e.log.Debug("stage completed", zap.Int("stage", res.Index), zap.Int("exit_code", res.ExitCode))
	}
}
