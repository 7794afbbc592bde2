// Package shell exposes the pipeline engine as a mountable service.
//
// The provider wraps tokenization, pipeline parsing and pipeline execution
// behind the standard tool surface, so a host can run shell pipelines
// without touching the engine packages directly.
//
// Tools:
//   - shell.tokenize: split a command line into words with quote grouping
//   - shell.parse: parse a line into stages plus an optional redirect
//   - shell.run: execute a pipeline, capture stdout/stderr, and report
//     each stage's terminal state and exit code
//
// Structural errors (empty segment, trailing pipe, malformed redirect) are
// reported as unsuccessful results with a single user-visible message;
// nothing launches. Per-stage failures and non-zero exits appear in the
// run report and never make the run itself unsuccessful.
package shell
