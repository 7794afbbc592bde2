package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ShellOS/backend/internal/config"
	"github.com/GriffinCanCode/ShellOS/backend/internal/logging"
	"github.com/GriffinCanCode/ShellOS/backend/internal/monitoring"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/pipeline"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/redirect"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/spawn"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/stream"
	"github.com/GriffinCanCode/ShellOS/backend/internal/shell/token"
)

func main() {
	configPath := flag.String("config", defaultRcPath(), "Path to shellrc TOML file")
	command := flag.String("c", "", "Run a single command line and exit")
	interactive := flag.Bool("pty", false, "Run stages under a PTY")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shell: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "shell: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var metrics *monitoring.Metrics
	if cfg.Metrics.Enabled {
		metrics = monitoring.NewMetrics(prometheus.DefaultRegisterer)
		go serveMetrics(cfg.Metrics.Addr, log)
	}

	runner := spawn.New(log)
	if *interactive || cfg.Shell.Interactive {
		runner = spawn.NewInteractive(log)
	}

	executor, err := pipeline.NewExecutor(pipeline.Config{
		Runner:   runner,
		Resolver: redirect.NewFileResolver(),
		Logger:   log,
		Metrics:  metrics,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "shell: %v\n", err)
		os.Exit(1)
	}

	sh := &shell{
		executor: executor,
		metrics:  metrics,
		log:      log,
		prompt:   cfg.Shell.Prompt,
	}

	if *command != "" {
		os.Exit(sh.runLine(*command))
	}
	sh.repl()
}

type shell struct {
	executor *pipeline.Executor
	metrics  *monitoring.Metrics
	log      *logging.Logger
	prompt   string
}

// repl reads command lines until end of input. The current foreground
// pipeline can be interrupted with SIGINT; the shell itself survives it.
func (s *shell) repl() {
	sessionID := id.NewSessionID()
	s.log.Debug("session started", zap.String("session_id", sessionID.String()))

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, s.prompt)
		line, err := reader.ReadString('\n')
		if line != "" {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				s.runLine(trimmed)
			}
		}
		if err != nil {
			s.log.Debug("session ended", zap.String("session_id", sessionID.String()))
			return
		}
	}
}

// runLine executes one command line and returns the last stage's exit
// code, or 2 when the line never launched.
func (s *shell) runLine(line string) int {
	tokens, err := token.Split(line)
	if err != nil {
		s.reject(err)
		return 2
	}
	pl, err := pipeline.Parse(tokens)
	if err != nil {
		s.reject(err)
		return 2
	}

	// One shared cancellation signal per pipeline invocation: SIGINT
	// requests termination of all stages, cooperatively.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := s.executor.Run(ctx, pl,
		stream.NewReaderSource(os.Stdin),
		stream.NewWriterSink(os.Stdout),
		stream.NewWriterSink(os.Stderr),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shell: %v\n", err)
		return 2
	}

	exit := 0
	for _, res := range results {
		switch res.State {
		case pipeline.StateFailed:
			fmt.Fprintf(os.Stderr, "shell: %s: %v\n", res.Args[0], res.Err)
		case pipeline.StateAborted:
			fmt.Fprintf(os.Stderr, "shell: %s: interrupted\n", res.Args[0])
		case pipeline.StateCompleted:
			if res.ExitCode != 0 {
				// Informational only; never treated as a shell error.
				fmt.Fprintf(os.Stderr, "shell: %s exited with status %d\n", res.Args[0], res.ExitCode)
			}
		}
	}
	if last := results[len(results)-1]; last.State == pipeline.StateCompleted {
		exit = last.ExitCode
	} else {
		exit = 1
	}
	return exit
}

func (s *shell) reject(err error) {
	if s.metrics != nil {
		s.metrics.ParseErrors.Inc()
	}
	fmt.Fprintf(os.Stderr, "shell: %v\n", err)
}

func serveMetrics(addr string, log *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics endpoint stopped", zap.Error(err))
	}
}

func defaultRcPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shellrc.toml"
	}
	return filepath.Join(home, ".shellrc.toml")
}
