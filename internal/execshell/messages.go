package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	pipelineStartTemplateConstant           = "Streaming %s into %s"
	pipelineSuccessTemplateConstant         = "Streamed %s into %s"
)

const (
	gitCloneSubcommandNameConstant     = "clone"
	gitRemoteSubcommandNameConstant    = "remote"
	gitRemoteUpdateSubcommandConstant  = "update"
	gitBranchSubcommandNameConstant    = "branch"
	gitCheckoutSubcommandNameConstant  = "checkout"
	gitPullSubcommandNameConstant      = "pull"
	gitFetchSubcommandNameConstant     = "fetch"
	gitRecursiveFlagConstant           = "--recursive"
	gitRemotesListFlagConstant         = "-r"
	gitTrackFlagConstant               = "--track"
	gitSafeDeleteFlagConstant          = "-d"
	gitTagsFlagConstant                = "--tags"
	tarCreateGzipFlagConstant          = "-czf"
	tarStandardOutputTargetConstant    = "-"
	openSSLOutputFlagConstant          = "-out"
	openSSLStandardOutputLabelConstant = "standard output"
)

const (
	gitCloneStartTemplateConstant                       = "Cloning %s into %s"
	gitCloneRecursiveStartTemplateConstant              = "Cloning %s with submodules into %s"
	gitCloneSuccessTemplateConstant                     = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                     = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant            = "Unable to clone %s into %s: %s"
	gitRemoteUpdateStartTemplateConstant                = "Updating %s remote references in %s"
	gitRemoteUpdateSuccessTemplateConstant              = "Updated %s remote references in %s"
	gitRemoteUpdateFailureTemplateConstant              = "Failed to update %s remote references in %s (exit code %d%s)"
	gitRemoteUpdateExecutionFailureTemplateConstant     = "Unable to update %s remote references in %s: %s"
	gitRemoteBranchListStartTemplateConstant            = "Listing remote-tracking branches in %s"
	gitRemoteBranchListSuccessTemplateConstant          = "Listed remote-tracking branches in %s"
	gitRemoteBranchListFailureTemplateConstant          = "Failed to list remote-tracking branches in %s (exit code %d%s)"
	gitRemoteBranchListExecutionFailureTemplateConstant = "Unable to list remote-tracking branches in %s: %s"
	gitLocalBranchListStartTemplateConstant             = "Listing local branches in %s"
	gitLocalBranchListSuccessTemplateConstant           = "Listed local branches in %s"
	gitLocalBranchListFailureTemplateConstant           = "Failed to list local branches in %s (exit code %d%s)"
	gitLocalBranchListExecutionFailureTemplateConstant  = "Unable to list local branches in %s: %s"
	gitBranchTrackStartTemplateConstant                 = "Creating branch %s tracking %s in %s"
	gitBranchTrackSuccessTemplateConstant               = "Created branch %s tracking %s in %s"
	gitBranchTrackFailureTemplateConstant               = "Failed to create branch %s tracking %s in %s (exit code %d%s)"
	gitBranchTrackExecutionFailureTemplateConstant      = "Unable to create branch %s tracking %s in %s: %s"
	gitBranchDeletionStartTemplateConstant              = "Removing local branch %s in %s"
	gitBranchDeletionSuccessTemplateConstant            = "Removed local branch %s in %s"
	gitBranchDeletionFailureTemplateConstant            = "Failed to remove local branch %s in %s (exit code %d%s)"
	gitBranchDeletionExecutionFailureTemplateConstant   = "Unable to remove local branch %s in %s: %s"
	gitCheckoutStartTemplateConstant                    = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant                  = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant                  = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant         = "Unable to switch %s to branch %s: %s"
	gitPullStartTemplateConstant                        = "Pulling %s from %s in %s"
	gitPullSuccessTemplateConstant                      = "Pulled %s from %s in %s"
	gitPullFailureTemplateConstant                      = "Failed to pull %s from %s in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant             = "Unable to pull %s from %s in %s: %s"
	gitFetchTagsStartTemplateConstant                   = "Fetching tags from %s in %s"
	gitFetchTagsSuccessTemplateConstant                 = "Fetched tags from %s in %s"
	gitFetchTagsFailureTemplateConstant                 = "Failed to fetch tags from %s in %s (exit code %d%s)"
	gitFetchTagsExecutionFailureTemplateConstant        = "Unable to fetch tags from %s in %s: %s"
	tarCreateStartTemplateConstant                      = "Archiving %s into %s"
	tarCreateSuccessTemplateConstant                    = "Archived %s into %s"
	tarCreateFailureTemplateConstant                    = "Failed to archive %s into %s (exit code %d%s)"
	tarCreateExecutionFailureTemplateConstant           = "Unable to archive %s into %s: %s"
	openSSLEncryptStartTemplateConstant                 = "Encrypting archive stream into %s"
	openSSLEncryptSuccessTemplateConstant               = "Encrypted archive stream into %s"
	openSSLEncryptFailureTemplateConstant               = "Failed to encrypt archive stream into %s (exit code %d%s)"
	openSSLEncryptExecutionFailureTemplateConstant      = "Unable to encrypt archive stream into %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
// Every message is rendered from redacted arguments.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// BuildPipelineStartedMessage formats the message describing a pipeline about to run.
func (formatter CommandMessageFormatter) BuildPipelineStartedMessage(producer ShellCommand, consumer ShellCommand) string {
	return fmt.Sprintf(pipelineStartTemplateConstant, formatter.formatCommandLabel(producer), formatter.formatCommandLabel(consumer))
}

// BuildPipelineSuccessMessage formats the message describing a pipeline whose stages both succeeded.
func (formatter CommandMessageFormatter) BuildPipelineSuccessMessage(producer ShellCommand, consumer ShellCommand) string {
	return fmt.Sprintf(pipelineSuccessTemplateConstant, formatter.formatCommandLabel(producer), formatter.formatCommandLabel(consumer))
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandTar:
		return formatter.describeTarMessage(command, result, failure, stage)
	case CommandOpenSSL:
		return formatter.describeOpenSSLMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		return formatter.describeGitBranchMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.describeGitPullMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeGitFetchMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.extractPositionalArguments(command.Details.RedactedArguments()[1:])
	repositoryURI := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	destination := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))

	switch stage {
	case messageStageStart:
		if containsArgument(command.Details.Arguments, gitRecursiveFlagConstant) {
			return fmt.Sprintf(gitCloneRecursiveStartTemplateConstant, repositoryURI, destination)
		}
		return fmt.Sprintf(gitCloneStartTemplateConstant, repositoryURI, destination)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, repositoryURI, destination)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, repositoryURI, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, repositoryURI, destination, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.RedactedArguments()
	if strings.TrimSpace(formatter.argumentAtIndex(arguments, 1)) != gitRemoteUpdateSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(formatter.extractPositionalArguments(arguments[2:]), 0))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRemoteUpdateStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRemoteUpdateSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitRemoteUpdateFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRemoteUpdateExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.RedactedArguments()
	workingDirectory := formatter.describeWorkingDirectory(command)
	positionalArguments := formatter.extractPositionalArguments(arguments[1:])

	if containsArgument(arguments, gitTrackFlagConstant) {
		branchName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		upstreamName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitBranchTrackStartTemplateConstant, branchName, upstreamName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchTrackSuccessTemplateConstant, branchName, upstreamName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchTrackFailureTemplateConstant, branchName, upstreamName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitBranchTrackExecutionFailureTemplateConstant, branchName, upstreamName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitSafeDeleteFlagConstant) {
		branchName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitBranchDeletionStartTemplateConstant, branchName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchDeletionSuccessTemplateConstant, branchName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchDeletionFailureTemplateConstant, branchName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitBranchDeletionExecutionFailureTemplateConstant, branchName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitRemotesListFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteBranchListStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteBranchListSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteBranchListFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRemoteBranchListExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if len(positionalArguments) == 0 {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitLocalBranchListStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitLocalBranchListSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitLocalBranchListFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitLocalBranchListExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	branchName := formatter.argumentAtIndex(command.Details.RedactedArguments(), 1)
	workingDirectory := formatter.describeWorkingDirectory(command)
	trimmedBranch := formatter.ensureValue(branchName)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, trimmedBranch)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, trimmedBranch)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, trimmedBranch, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, workingDirectory, trimmedBranch, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPullMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positionalArguments := formatter.extractPositionalArguments(command.Details.RedactedArguments()[1:])
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	branchName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPullStartTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPullSuccessTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPullFailureTemplateConstant, branchName, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPullExecutionFailureTemplateConstant, branchName, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.RedactedArguments()
	if !containsArgument(arguments, gitTagsFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(formatter.extractPositionalArguments(arguments[1:]), 0))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitFetchTagsStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitFetchTagsSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitFetchTagsFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitFetchTagsExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeTarMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.RedactedArguments()
	archiveTarget := findFlagValue(arguments, tarCreateGzipFlagConstant)
	if len(archiveTarget) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	if archiveTarget == tarStandardOutputTargetConstant {
		archiveTarget = openSSLStandardOutputLabelConstant
	}

	sourceDirectory := formatter.ensureValue(formatter.argumentAtIndex(arguments, len(arguments)-1))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(tarCreateStartTemplateConstant, sourceDirectory, archiveTarget)
	case messageStageSuccess:
		return fmt.Sprintf(tarCreateSuccessTemplateConstant, sourceDirectory, archiveTarget)
	case messageStageFailure:
		return fmt.Sprintf(tarCreateFailureTemplateConstant, sourceDirectory, archiveTarget, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(tarCreateExecutionFailureTemplateConstant, sourceDirectory, archiveTarget, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeOpenSSLMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	outputPath := findFlagValue(command.Details.RedactedArguments(), openSSLOutputFlagConstant)
	if len(outputPath) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(openSSLEncryptStartTemplateConstant, outputPath)
	case messageStageSuccess:
		return fmt.Sprintf(openSSLEncryptSuccessTemplateConstant, outputPath)
	case messageStageFailure:
		return fmt.Sprintf(openSSLEncryptFailureTemplateConstant, outputPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(openSSLEncryptExecutionFailureTemplateConstant, outputPath, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	redactedArguments := command.Details.RedactedArguments()
	if len(redactedArguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(redactedArguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractPositionalArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		positionalArguments = append(positionalArguments, trimmed)
	}
	return positionalArguments
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
