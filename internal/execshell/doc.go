// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and converts outcomes
// into CommandFailedError and CommandExecutionError values. Commands are
// described as a program plus an argument list; arguments flagged secret are
// redacted from every log line and error message. OSCommandRunner executes
// commands and two-stage pipelines through os/exec.
package execshell
