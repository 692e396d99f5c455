package cli

import (
	"errors"

	"github.com/temirov/repo-mirror/internal/execshell"
)

const (
	// ExitCodeSuccess reports a completed run, including one with nothing configured.
	ExitCodeSuccess = 0
	// ExitCodeCommandNotExecuted reports a subprocess that could not be started.
	ExitCodeCommandNotExecuted = -1
	// ExitCodeGeneralFailure reports configuration, logging, or argument errors.
	ExitCodeGeneralFailure = 1
)

// ExitCode maps an execution error to the process exit status. A failing
// subprocess propagates its own exit code.
func ExitCode(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}

	var executionFailure execshell.CommandExecutionError
	if errors.As(executionError, &executionFailure) {
		return ExitCodeCommandNotExecuted
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		return commandFailure.ExitCode()
	}

	return ExitCodeGeneralFailure
}
