package cli

import (
	"fmt"

	"taskdeck/internal/workbench"
)

type notTerminalError struct{}

func (notTerminalError) Error() string {
	return "the TUI needs an interactive terminal; use a subcommand (see taskdeck --help) for scripts"
}

type invalidFlagError struct {
	flag  string
	value string
	want  string
}

func (e invalidFlagError) Error() string {
	return fmt.Sprintf("invalid --%s %q (want %s)", e.flag, e.value, e.want)
}

// userError shows the same message the TUI would, keeping the cause for errors.Is.
type userError struct {
	err error
}

func (e userError) Error() string { return workbench.UserMessage(e.err) }
func (e userError) Unwrap() error { return e.err }
