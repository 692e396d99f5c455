package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant          = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant   = "shell executor command runner not configured"
	pipelineNotSupportedMessageConstant         = "command runner does not support pipelines"
	commandFailedErrorTemplateConstant          = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant       = "%s could not be executed: %v"
	commandFailureStandardErrorTemplateConstant = ": %s"
	redactedArgumentPlaceholderConstant         = "******"
	commandTextSeparatorConstant                = " "
	pipelineTextSeparatorConstant               = " | "
	logFieldCommandConstant                     = "command"
	logFieldWorkingDirectoryConstant            = "working_directory"
	logFieldExitCodeConstant                    = "exit_code"
	logFieldStandardErrorConstant               = "stderr"
	logFieldErrorConstant                       = "error"
	commandNameGitStringConstant                = "git"
	commandNameTarStringConstant                = "tar"
	commandNameOpenSSLStringConstant            = "openssl"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// CommandName identifies an executable invoked by the executor.
type CommandName string

// Supported command names.
const (
	CommandGit     CommandName = CommandName(commandNameGitStringConstant)
	CommandTar     CommandName = CommandName(commandNameTarStringConstant)
	CommandOpenSSL CommandName = CommandName(commandNameOpenSSLStringConstant)
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// ErrPipelineNotSupported indicates the configured runner cannot connect two commands.
var ErrPipelineNotSupported = errors.New(pipelineNotSupportedMessageConstant)

// CommandDetails describes the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// CaptureStandardOutput collects stdout into the result instead of streaming it to the runner's passthrough writer.
	CaptureStandardOutput bool
	// SecretArgumentIndexes marks arguments that must never appear in logs or errors.
	SecretArgumentIndexes []int
}

// RedactedArguments returns the arguments with every secret argument replaced by a placeholder.
func (details CommandDetails) RedactedArguments() []string {
	redactedArguments := append([]string{}, details.Arguments...)
	for _, secretIndex := range details.SecretArgumentIndexes {
		if secretIndex >= 0 && secretIndex < len(redactedArguments) {
			redactedArguments[secretIndex] = redactedArgumentPlaceholderConstant
		}
	}
	return redactedArguments
}

// ShellCommand couples a command name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command for logs with secret arguments redacted.
func (command ShellCommand) String() string {
	redactedArguments := command.Details.RedactedArguments()
	if len(redactedArguments) == 0 {
		return string(command.Name)
	}
	return string(command.Name) + commandTextSeparatorConstant + strings.Join(redactedArguments, commandTextSeparatorConstant)
}

// ExecutionResult captures the observable outcome of a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// PipelineResult captures the outcomes of both stages of a two-command pipeline.
type PipelineResult struct {
	Producer ExecutionResult
	Consumer ExecutionResult
}

// CommandRunner executes a single command.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// PipelineRunner streams the standard output of one command into the standard input of another.
type PipelineRunner interface {
	RunPipeline(executionContext context.Context, producer ShellCommand, consumer ShellCommand) (PipelineResult, error)
}

// CommandFailedError reports a command that ran and returned a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failure with the redacted command text.
func (failure CommandFailedError) Error() string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(commandFailureStandardErrorTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.String(), failure.Result.ExitCode, standardErrorSuffix)
}

// ExitCode returns the exit code of the failed command.
func (failure CommandFailedError) ExitCode() int {
	return failure.Result.ExitCode
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the failure with the redacted command text.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.String(), failure.Cause)
}

// Unwrap exposes the underlying execution failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs commands through a CommandRunner and logs every outcome.
type ShellExecutor struct {
	logger           *zap.Logger
	runner           CommandRunner
	messageFormatter CommandMessageFormatter
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, runner: runner, messageFormatter: CommandMessageFormatter{}}, nil
}

// Execute runs the command and converts non-zero exits and launch failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(executor.messageFormatter.BuildStartedMessage(command), executor.commandFields(command)...)

	executionResult, runError := executor.runner.Run(executionContext, command)
	return executor.evaluate(command, executionResult, runError)
}

// ExecuteGit runs git with prompts disabled.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	environmentVariables := make(map[string]string, len(details.EnvironmentVariables)+1)
	for environmentKey, environmentValue := range details.EnvironmentVariables {
		environmentVariables[environmentKey] = environmentValue
	}
	environmentVariables[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptEnvironmentDisableConstant
	details.EnvironmentVariables = environmentVariables
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteTar runs tar with the provided details.
func (executor *ShellExecutor) ExecuteTar(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandTar, Details: details})
}

// ExecutePipeline streams the producer's output into the consumer and logs the combined outcome.
// A consumer failure is reported before a producer failure.
func (executor *ShellExecutor) ExecutePipeline(executionContext context.Context, producer ShellCommand, consumer ShellCommand) (PipelineResult, error) {
	pipelineRunner, supportsPipelines := executor.runner.(PipelineRunner)
	if !supportsPipelines {
		return PipelineResult{}, ErrPipelineNotSupported
	}

	pipelineText := producer.String() + pipelineTextSeparatorConstant + consumer.String()
	executor.logger.Debug(executor.messageFormatter.BuildPipelineStartedMessage(producer, consumer), zap.String(logFieldCommandConstant, pipelineText))

	pipelineResult, runError := pipelineRunner.RunPipeline(executionContext, producer, consumer)
	if runError != nil {
		failedCommand := consumer
		var executionError CommandExecutionError
		if errors.As(runError, &executionError) {
			failedCommand = executionError.Command
		}
		return PipelineResult{}, executor.reportExecutionFailure(failedCommand, runError)
	}

	if pipelineResult.Consumer.ExitCode != 0 {
		return PipelineResult{}, executor.reportNonZeroExit(consumer, pipelineResult.Consumer)
	}
	if pipelineResult.Producer.ExitCode != 0 {
		return PipelineResult{}, executor.reportNonZeroExit(producer, pipelineResult.Producer)
	}

	executor.logger.Info(
		executor.messageFormatter.BuildPipelineSuccessMessage(producer, consumer),
		zap.String(logFieldCommandConstant, pipelineText),
		zap.Int(logFieldExitCodeConstant, pipelineResult.Consumer.ExitCode),
	)
	return pipelineResult, nil
}

func (executor *ShellExecutor) evaluate(command ShellCommand, executionResult ExecutionResult, runError error) (ExecutionResult, error) {
	if runError != nil {
		return ExecutionResult{}, executor.reportExecutionFailure(command, runError)
	}

	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, executor.reportNonZeroExit(command, executionResult)
	}

	successFields := append(executor.commandFields(command), zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))
	executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command), successFields...)
	return executionResult, nil
}

func (executor *ShellExecutor) reportExecutionFailure(command ShellCommand, cause error) error {
	executionError := CommandExecutionError{Command: command, Cause: cause}
	var existingExecutionError CommandExecutionError
	if errors.As(cause, &existingExecutionError) {
		executionError = existingExecutionError
	}
	failureFields := append(executor.commandFields(executionError.Command), zap.String(logFieldErrorConstant, executionError.Cause.Error()))
	executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(executionError.Command, executionError.Cause), failureFields...)
	return executionError
}

func (executor *ShellExecutor) reportNonZeroExit(command ShellCommand, executionResult ExecutionResult) error {
	failureFields := append(
		executor.commandFields(command),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
	)
	executor.logger.Error(executor.messageFormatter.BuildFailureMessage(command, executionResult), failureFields...)
	return CommandFailedError{Command: command, Result: executionResult}
}

func (executor *ShellExecutor) commandFields(command ShellCommand) []zap.Field {
	fields := []zap.Field{zap.String(logFieldCommandConstant, command.String())}
	if len(command.Details.WorkingDirectory) > 0 {
		fields = append(fields, zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory))
	}
	return fields
}
