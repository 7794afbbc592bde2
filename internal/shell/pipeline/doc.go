// Package pipeline builds and executes command pipelines.
//
// A pipeline chains independent command invocations the way a shell does:
// each stage's output byte stream feeds the next stage's input, and the
// final stage's output may instead be redirected to a destination path.
//
// Construction: Parse turns a flat token list into an ordered stage list,
// validating pipe placement and extracting an optional trailing redirect.
// Malformed syntax surfaces as a StructuralError before anything runs.
//
// Execution: Executor.Run allocates one connecting pipe per adjacent stage
// pair, resolves each stage's input/output endpoints, launches every stage
// concurrently under one shared context, and waits for all of them to
// settle. Each stage closes the output it owns on every exit path, so a
// downstream read always observes end-of-stream instead of hanging.
//
// Outcomes are per stage: Completed(exit code), Failed(error) or Aborted.
// A non-zero exit is informational, never pipeline-fatal, and cancellation
// is cooperative: stages that ignore it run to completion.
package pipeline
