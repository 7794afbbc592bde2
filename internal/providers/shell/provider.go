package shell

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/ShellOS/backend/internal/logging"
	"github.com/GriffinCanCode/ShellOS/backend/internal/monitoring"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shared/types"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipeline"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/stream"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/token"
)

// Provider exposes the pipeline engine as a mountable service
type Provider struct {
	executor *pipeline.Executor
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewProvider creates a new shell provider
func NewProvider(executor *pipeline.Executor, log *logging.Logger, metrics *monitoring.Metrics) *Provider {
	if log == nil {
		log = logging.Nop()
	}
	return &Provider{
		executor: executor,
		log:      log,
		metrics:  metrics,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "shell",
		Name:        "Shell Pipeline Service",
		Description: "Executes command pipelines with stage-to-stage byte streaming and output redirection",
		Category:    types.CategoryShell,
		Capabilities: []string{
			"pipelines",
			"redirection",
			"tokenization",
			"cancellation",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "shell.tokenize":
		return p.tokenize(params)
	case "shell.parse":
		return p.parse(params)
	case "shell.run":
		return p.run(ctx, params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "shell.tokenize",
			Name:        "Tokenize Command Line",
			Description: "Split a command line into words with quote grouping",
			Parameters: []types.Parameter{
				{
					Name:        "command",
					Type:        "string",
					Description: "Command line to tokenize",
					Required:    true,
				},
			},
			Returns: "tokens",
		},
		{
			ID:          "shell.parse",
			Name:        "Parse Pipeline",
			Description: "Parse a command line into pipeline stages and an optional redirect",
			Parameters: []types.Parameter{
				{
					Name:        "command",
					Type:        "string",
					Description: "Command line to parse",
					Required:    true,
				},
			},
			Returns: "pipeline_structure",
		},
		{
			ID:          "shell.run",
			Name:        "Run Pipeline",
			Description: "Execute a command pipeline and return per-stage outcomes with captured output",
			Parameters: []types.Parameter{
				{
					Name:        "command",
					Type:        "string",
					Description: "Command line to execute",
					Required:    true,
				},
				{
					Name:        "stdin",
					Type:        "string",
					Description: "Input fed to the first stage. Defaults to empty",
					Required:    false,
				},
			},
			Returns: "run_report",
		},
	}
}

func (p *Provider) tokenize(params map[string]interface{}) (*types.Result, error) {
	command, ok := params["command"].(string)
	if !ok {
		return nil, fmt.Errorf("command is required")
	}

	tokens, err := token.Split(command)
	if err != nil {
		return failure(err.Error()), nil
	}

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"tokens": tokens,
			"count":  len(tokens),
		},
	}, nil
}

func (p *Provider) parse(params map[string]interface{}) (*types.Result, error) {
	command, ok := params["command"].(string)
	if !ok {
		return nil, fmt.Errorf("command is required")
	}

	pl, err := p.buildPipeline(command)
	if err != nil {
		return failure(err.Error()), nil
	}

	stages := make([]interface{}, len(pl.Stages))
	for i, st := range pl.Stages {
		stages[i] = map[string]interface{}{"args": st.Args}
	}

	data := map[string]interface{}{
		"stages": stages,
		"count":  len(pl.Stages),
	}
	if pl.Redirect != nil {
		data["redirect"] = map[string]interface{}{
			"mode": string(pl.Redirect.Mode),
			"path": pl.Redirect.Path,
		}
	}

	return &types.Result{Success: true, Data: data}, nil
}

func (p *Provider) run(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	command, ok := params["command"].(string)
	if !ok {
		return nil, fmt.Errorf("command is required")
	}
	stdin, _ := params["stdin"].(string)

	pl, err := p.buildPipeline(command)
	if err != nil {
		return failure(err.Error()), nil
	}

	runID := uuid.NewString()
	stdout := stream.NewBuffer()
	stderr := stream.NewBuffer()

	results, err := p.executor.Run(ctx, pl, stream.NewBytesSource([]byte(stdin)), stdout, stderr)
	if err != nil {
		return failure(err.Error()), nil
	}

	stages := make([]interface{}, len(results))
	for i, res := range results {
		entry := map[string]interface{}{
			"index":     res.Index,
			"args":      res.Args,
			"state":     string(res.State),
			"exit_code": res.ExitCode,
		}
		if res.Err != nil {
			entry["error"] = res.Err.Error()
		}
		stages[i] = entry
	}

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"run_id": runID,
			"stages": stages,
			"stdout": stdout.String(),
			"stderr": stderr.String(),
		},
	}, nil
}

// buildPipeline tokenizes and parses a command line, counting rejects.
func (p *Provider) buildPipeline(command string) (*pipeline.Pipeline, error) {
	tokens, err := token.Split(command)
	if err != nil {
		p.countParseError()
		return nil, err
	}
	pl, err := pipeline.Parse(tokens)
	if err != nil {
		p.countParseError()
		return nil, err
	}
	return pl, nil
}

func (p *Provider) countParseError() {
	if p.metrics != nil {
		p.metrics.ParseErrors.Inc()
	}
}

func failure(msg string) *types.Result {
	return &types.Result{Success: false, Error: &msg}
}
