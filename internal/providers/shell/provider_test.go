package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipeline"
)

// echoRunner writes its own arguments to stdout after draining stdin.
type echoRunner struct{}

func (echoRunner) Run(ctx context.Context, spec pipeline.RunSpec) (int, error) {
	for {
		b, err := spec.Stdin.Read(ctx, 1024)
		if err != nil || len(b) == 0 {
			break
		}
		if err := spec.Stdout.Write(ctx, b); err != nil {
			return 0, err
		}
	}
	for _, arg := range spec.Args {
		if err := spec.Stdout.Write(ctx, []byte(arg+" ")); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	exec, err := pipeline.NewExecutor(pipeline.Config{Runner: echoRunner{}})
	require.NoError(t, err)
	return NewProvider(exec, nil, nil)
}

func TestShellProvider(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)

	t.Run("Definition lists tools", func(t *testing.T) {
		def := provider.Definition()
		assert.Equal(t, "shell", def.ID)
		assert.Len(t, def.Tools, 3)
	})

	t.Run("Tokenize", func(t *testing.T) {
		result, err := provider.Execute(ctx, "shell.tokenize", map[string]interface{}{
			"command": `echo "hello world" | wc`,
		}, nil)
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Equal(t, []string{"echo", "hello world", "|", "wc"}, result.Data["tokens"])
	})

	t.Run("Tokenize rejects unterminated quote", func(t *testing.T) {
		result, err := provider.Execute(ctx, "shell.tokenize", map[string]interface{}{
			"command": `echo "oops`,
		}, nil)
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.NotNil(t, result.Error)
	})

	t.Run("Parse reports stages and redirect", func(t *testing.T) {
		result, err := provider.Execute(ctx, "shell.parse", map[string]interface{}{
			"command": "cat f | sort >> out.txt",
		}, nil)
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Equal(t, 2, result.Data["count"])
		redirect := result.Data["redirect"].(map[string]interface{})
		assert.Equal(t, "append", redirect["mode"])
		assert.Equal(t, "out.txt", redirect["path"])
	})

	t.Run("Parse surfaces structural errors", func(t *testing.T) {
		result, err := provider.Execute(ctx, "shell.parse", map[string]interface{}{
			"command": "a |",
		}, nil)
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.NotNil(t, result.Error)
		assert.Contains(t, *result.Error, "trailing pipe")
	})

	t.Run("Run returns per-stage report and captured output", func(t *testing.T) {
		result, err := provider.Execute(ctx, "shell.run", map[string]interface{}{
			"command": "first | second",
			"stdin":   "seed ",
		}, nil)
		require.NoError(t, err)
		require.True(t, result.Success)

		assert.NotEmpty(t, result.Data["run_id"])
		assert.Equal(t, "seed first second ", result.Data["stdout"])

		stages := result.Data["stages"].([]interface{})
		require.Len(t, stages, 2)
		for _, raw := range stages {
			stage := raw.(map[string]interface{})
			assert.Equal(t, "completed", stage["state"])
			assert.Equal(t, 0, stage["exit_code"])
		}
	})

	t.Run("Missing command parameter", func(t *testing.T) {
		_, err := provider.Execute(ctx, "shell.run", map[string]interface{}{}, nil)
		assert.Error(t, err)
	})

	t.Run("Unknown tool", func(t *testing.T) {
		_, err := provider.Execute(ctx, "shell.selfdestruct", nil, nil)
		assert.Error(t, err)
	})
}
