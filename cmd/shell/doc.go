// Command shell is an interactive pipeline shell.
//
// It reads command lines, splits them into pipeline stages on "|", runs
// all stages concurrently with each stage's output streamed into the next
// stage's input, and optionally redirects the final stage's output with
// ">" (truncate) or ">>" (append).
//
// Usage:
//
//	shell                 # interactive prompt
//	shell -c "a | b"      # run one pipeline and exit
//	shell -pty            # give each stage a pseudo-terminal
//
// SIGINT interrupts the foreground pipeline, not the shell. Configuration
// comes from the environment and an optional ~/.shellrc.toml file.
package main
