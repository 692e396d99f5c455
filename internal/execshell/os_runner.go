package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	passthroughWriter io.Writer
}

// NewOSCommandRunner constructs a runner backed by os/exec that streams uncaptured output to stderr.
func NewOSCommandRunner() *OSCommandRunner {
	return NewOSCommandRunnerWithPassthrough(os.Stderr)
}

// NewOSCommandRunnerWithPassthrough constructs a runner streaming uncaptured output to the provided writer.
func NewOSCommandRunnerWithPassthrough(passthroughWriter io.Writer) *OSCommandRunner {
	if passthroughWriter == nil {
		passthroughWriter = io.Discard
	}
	return &OSCommandRunner{passthroughWriter: passthroughWriter}
}

// Run executes the supplied command using os/exec.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := runner.buildExecutable(executionContext, command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	runner.attachOutputs(executable, command, &standardOutputBuffer, &standardErrorBuffer)

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	return runner.interpretCompletion(command, runError, &standardOutputBuffer, &standardErrorBuffer)
}

// RunPipeline starts the consumer, runs the producer with its stdout connected to the consumer's stdin, and waits for both.
func (runner *OSCommandRunner) RunPipeline(executionContext context.Context, producer ShellCommand, consumer ShellCommand) (PipelineResult, error) {
	producerExecutable := runner.buildExecutable(executionContext, producer)
	consumerExecutable := runner.buildExecutable(executionContext, consumer)

	pipeReader, pipeWriter, pipeError := os.Pipe()
	if pipeError != nil {
		return PipelineResult{}, CommandExecutionError{Command: producer, Cause: pipeError}
	}
	producerExecutable.Stdout = pipeWriter
	consumerExecutable.Stdin = pipeReader

	var producerStandardErrorBuffer bytes.Buffer
	producerExecutable.Stderr = &producerStandardErrorBuffer

	var consumerStandardOutputBuffer bytes.Buffer
	var consumerStandardErrorBuffer bytes.Buffer
	runner.attachOutputs(consumerExecutable, consumer, &consumerStandardOutputBuffer, &consumerStandardErrorBuffer)

	if startError := consumerExecutable.Start(); startError != nil {
		_ = pipeReader.Close()
		_ = pipeWriter.Close()
		return PipelineResult{}, CommandExecutionError{Command: consumer, Cause: startError}
	}
	_ = pipeReader.Close()

	producerRunError := producerExecutable.Run()
	// The consumer sees end of input only once the last write end is closed.
	_ = pipeWriter.Close()
	consumerWaitError := consumerExecutable.Wait()

	producerResult, producerError := runner.interpretCompletion(producer, producerRunError, &bytes.Buffer{}, &producerStandardErrorBuffer)
	if producerError != nil {
		return PipelineResult{}, producerError
	}
	consumerResult, consumerError := runner.interpretCompletion(consumer, consumerWaitError, &consumerStandardOutputBuffer, &consumerStandardErrorBuffer)
	if consumerError != nil {
		return PipelineResult{}, consumerError
	}

	return PipelineResult{Producer: producerResult, Consumer: consumerResult}, nil
}

func (runner *OSCommandRunner) buildExecutable(executionContext context.Context, command ShellCommand) *exec.Cmd {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	return executable
}

func (runner *OSCommandRunner) attachOutputs(executable *exec.Cmd, command ShellCommand, standardOutputBuffer *bytes.Buffer, standardErrorBuffer *bytes.Buffer) {
	if command.Details.CaptureStandardOutput {
		executable.Stdout = standardOutputBuffer
		executable.Stderr = standardErrorBuffer
		return
	}
	executable.Stdout = runner.resolvePassthroughWriter()
	executable.Stderr = io.MultiWriter(runner.resolvePassthroughWriter(), standardErrorBuffer)
}

func (runner *OSCommandRunner) resolvePassthroughWriter() io.Writer {
	if runner == nil || runner.passthroughWriter == nil {
		return io.Discard
	}
	return runner.passthroughWriter
}

func (runner *OSCommandRunner) interpretCompletion(command ShellCommand, runError error, standardOutputBuffer *bytes.Buffer, standardErrorBuffer *bytes.Buffer) (ExecutionResult, error) {
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}
