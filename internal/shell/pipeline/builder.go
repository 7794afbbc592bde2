package pipeline

import "fmt"

// StructuralError reports malformed pipeline syntax. It is detected before
// any stage starts; nothing launches when Parse fails.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("invalid pipeline: %s", e.Reason)
}

func structural(format string, args ...interface{}) error {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// Parse splits a flat token list on "|" separators into an ordered stage
// list, extracting an optional output redirect from the final stage. The
// redirect operator and its destination must be the last two tokens.
func Parse(tokens []string) (*Pipeline, error) {
	if len(tokens) == 0 {
		return nil, structural("empty command")
	}
	if tokens[len(tokens)-1] == "|" {
		return nil, structural("trailing pipe")
	}

	var (
		stages  []Stage
		current []string
	)
	flush := func() error {
		if len(current) == 0 {
			return structural("empty pipe segment")
		}
		stages = append(stages, Stage{Args: current})
		current = nil
		return nil
	}

	for _, tok := range tokens {
		if tok == "|" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	redirect, err := extractRedirect(&stages[len(stages)-1])
	if err != nil {
		return nil, err
	}

	return &Pipeline{Stages: stages, Redirect: redirect}, nil
}

// extractRedirect strips a trailing ">" or ">>" + destination from the
// final stage's arguments.
func extractRedirect(last *Stage) (*Redirect, error) {
	args := last.Args
	if n := len(args); n >= 2 {
		if mode, ok := redirectMode(args[n-2]); ok {
			last.Args = args[:n-2]
			if len(last.Args) == 0 {
				return nil, structural("empty pipe segment")
			}
			return &Redirect{Mode: mode, Path: args[n-1]}, nil
		}
	}
	// A bare operator in final position has no destination to bind.
	if n := len(args); n >= 1 {
		if _, ok := redirectMode(args[n-1]); ok {
			return nil, structural("redirect %q missing destination", args[n-1])
		}
	}
	return nil, nil
}

func redirectMode(tok string) (RedirectMode, bool) {
	switch tok {
	case ">":
		return RedirectTruncate, true
	case ">>":
		return RedirectAppend, true
	default:
		return "", false
	}
}
