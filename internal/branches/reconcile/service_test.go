package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repo-mirror/internal/execshell"
)

const (
	testRepositoryPathConstant = "/srv/mirrors/project"
	testRemoteNameConstant     = "origin"
	testDefaultBranchConstant  = "main"
)

type scriptedGitExecutor struct {
	remoteListing    string
	localListing     string
	failingCommand   string
	failure          error
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	joinedArguments := strings.Join(details.Arguments, " ")
	if len(executor.failingCommand) > 0 && joinedArguments == executor.failingCommand {
		return execshell.ExecutionResult{}, executor.failure
	}
	switch joinedArguments {
	case "branch -r":
		return execshell.ExecutionResult{StandardOutput: executor.remoteListing}, nil
	case "branch":
		return execshell.ExecutionResult{StandardOutput: executor.localListing}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

func (executor *scriptedGitExecutor) commandLines() []string {
	commandLines := make([]string, 0, len(executor.recordedCommands))
	for _, details := range executor.recordedCommands {
		commandLines = append(commandLines, strings.Join(details.Arguments, " "))
	}
	return commandLines
}

func defaultOptions() Options {
	return Options{RepositoryPath: testRepositoryPathConstant, RemoteName: testRemoteNameConstant, DefaultBranch: testDefaultBranchConstant}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	service, creationError := NewService(Dependencies{})
	require.ErrorIs(t, creationError, ErrGitExecutorNotConfigured)
	require.Nil(t, service)

	service, creationError = NewService(Dependencies{GitExecutor: &scriptedGitExecutor{}})
	require.NoError(t, creationError)
	require.NotNil(t, service)
}

func TestReconcileValidatesInputs(t *testing.T) {
	testCases := []struct {
		name        string
		options     Options
		expectedErr error
	}{
		{name: "MissingRepositoryPath", options: Options{RemoteName: "origin", DefaultBranch: "main"}, expectedErr: ErrRepositoryPathRequired},
		{name: "MissingRemote", options: Options{RepositoryPath: "/tmp/repo", DefaultBranch: "main"}, expectedErr: ErrRemoteNameRequired},
		{name: "MissingDefaultBranch", options: Options{RepositoryPath: "/tmp/repo", RemoteName: "origin"}, expectedErr: ErrDefaultBranchRequired},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &scriptedGitExecutor{}
			service, creationError := NewService(Dependencies{GitExecutor: executor})
			require.NoError(t, creationError)

			_, reconcileError := service.Reconcile(context.Background(), testCase.options)
			require.ErrorIs(t, reconcileError, testCase.expectedErr)
			require.Empty(t, executor.recordedCommands)
		})
	}
}

func TestReconcileTracksBeforePullAndDeletesAfterDefaultCheckout(t *testing.T) {
	executor := &scriptedGitExecutor{
		remoteListing: "  origin/HEAD -> origin/main\n  origin/dev\n  origin/main\n",
		localListing:  "* main\n  old\n",
	}
	service, creationError := NewService(Dependencies{GitExecutor: executor})
	require.NoError(t, creationError)

	result, reconcileError := service.Reconcile(context.Background(), defaultOptions())
	require.NoError(t, reconcileError)

	require.Equal(t, []string{
		"remote update origin --prune",
		"branch -r",
		"branch",
		"branch --track dev origin/dev",
		"checkout dev",
		"pull origin dev",
		"checkout main",
		"pull origin main",
		"checkout main",
		"branch -d old",
		"fetch origin --tags",
	}, executor.commandLines())
	require.Equal(t, Result{Created: []string{"dev"}, Updated: []string{"dev", "main"}, Deleted: []string{"old"}}, result)

	for _, details := range executor.recordedCommands {
		require.Equal(t, testRepositoryPathConstant, details.WorkingDirectory)
	}
	require.True(t, executor.recordedCommands[1].CaptureStandardOutput)
	require.True(t, executor.recordedCommands[2].CaptureStandardOutput)
	require.False(t, executor.recordedCommands[0].CaptureStandardOutput)
}

func TestReconcileLeavesLocalSetEqualToRemoteSet(t *testing.T) {
	executor := &scriptedGitExecutor{
		remoteListing: "  upstream/feature/login/v2\n  upstream/develop\n  upstream/main\n",
		localListing:  "* develop\n  hotfix/legacy\n",
	}
	service, creationError := NewService(Dependencies{GitExecutor: executor})
	require.NoError(t, creationError)

	result, reconcileError := service.Reconcile(context.Background(), Options{RepositoryPath: testRepositoryPathConstant, RemoteName: "upstream", DefaultBranch: "develop"})
	require.NoError(t, reconcileError)

	localBranches := map[string]struct{}{"develop": {}, "hotfix/legacy": {}}
	for _, branchName := range result.Created {
		localBranches[branchName] = struct{}{}
	}
	for _, branchName := range result.Deleted {
		delete(localBranches, branchName)
	}
	require.Len(t, localBranches, 3)
	require.Contains(t, localBranches, "feature/login/v2")
	require.Contains(t, localBranches, "main")
	require.Contains(t, localBranches, "develop")

	commandLines := executor.commandLines()
	require.Contains(t, commandLines, "branch --track feature/login/v2 upstream/feature/login/v2")
	require.Contains(t, commandLines, "pull upstream feature/login/v2")
	require.Equal(t, "checkout develop", commandLines[len(commandLines)-3])
	require.Equal(t, "branch -d hotfix/legacy", commandLines[len(commandLines)-2])
}

func TestReconcileWithEmptyRemoteListing(t *testing.T) {
	executor := &scriptedGitExecutor{}
	service, creationError := NewService(Dependencies{GitExecutor: executor})
	require.NoError(t, creationError)

	result, reconcileError := service.Reconcile(context.Background(), defaultOptions())
	require.NoError(t, reconcileError)
	require.Empty(t, result.Created)
	require.Empty(t, result.Updated)
	require.Empty(t, result.Deleted)
	require.Equal(t, []string{
		"remote update origin --prune",
		"branch -r",
		"branch",
		"checkout main",
		"fetch origin --tags",
	}, executor.commandLines())
}

func TestReconcileStopsAtFirstFailure(t *testing.T) {
	testFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1}}

	testCases := []struct {
		name             string
		failingCommand   string
		expectedMessage  string
		expectedLastLine string
	}{
		{name: "RemoteUpdate", failingCommand: "remote update origin --prune", expectedMessage: "failed to update remote \"origin\"", expectedLastLine: "remote update origin --prune"},
		{name: "Track", failingCommand: "branch --track dev origin/dev", expectedMessage: "failed to create tracking branch \"dev\"", expectedLastLine: "branch --track dev origin/dev"},
		{name: "Pull", failingCommand: "pull origin dev", expectedMessage: "failed to pull branch \"dev\"", expectedLastLine: "pull origin dev"},
		{name: "StaleDeletion", failingCommand: "branch -d old", expectedMessage: "failed to delete stale branch \"old\"", expectedLastLine: "branch -d old"},
		{name: "Tags", failingCommand: "fetch origin --tags", expectedMessage: "failed to fetch tags from \"origin\"", expectedLastLine: "fetch origin --tags"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &scriptedGitExecutor{
				remoteListing:  "  origin/dev\n  origin/main\n",
				localListing:   "* main\n  old\n",
				failingCommand: testCase.failingCommand,
				failure:        testFailure,
			}
			service, creationError := NewService(Dependencies{GitExecutor: executor})
			require.NoError(t, creationError)

			_, reconcileError := service.Reconcile(context.Background(), defaultOptions())
			require.ErrorContains(t, reconcileError, testCase.expectedMessage)

			var failedError execshell.CommandFailedError
			require.True(t, errors.As(reconcileError, &failedError))

			commandLines := executor.commandLines()
			require.Equal(t, testCase.expectedLastLine, commandLines[len(commandLines)-1])
		})
	}
}

func TestReconcileFailsWhenDefaultBranchIsMissing(t *testing.T) {
	executor := &scriptedGitExecutor{
		remoteListing:  "  origin/trunk\n",
		localListing:   "* trunk\n",
		failingCommand: "checkout main",
		failure:        execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1}},
	}
	service, creationError := NewService(Dependencies{GitExecutor: executor})
	require.NoError(t, creationError)

	_, reconcileError := service.Reconcile(context.Background(), defaultOptions())
	require.ErrorContains(t, reconcileError, "failed to checkout default branch \"main\"")
	require.NotContains(t, executor.commandLines(), "fetch origin --tags")
}

func TestReconcileLogsCapturedListingsAtDebugLevel(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	executor := &scriptedGitExecutor{remoteListing: "  origin/main\n", localListing: "* main\n"}
	service, creationError := NewService(Dependencies{GitExecutor: executor, Logger: zap.New(observedCore)})
	require.NoError(t, creationError)

	_, reconcileError := service.Reconcile(context.Background(), defaultOptions())
	require.NoError(t, reconcileError)

	listingEntries := observedLogs.FilterMessage(capturedListingMessageConstant).All()
	require.Len(t, listingEntries, 2)
	require.Equal(t, zapcore.DebugLevel, listingEntries[0].Level)
	require.Equal(t, "  origin/main\n", listingEntries[0].ContextMap()[logFieldListingConstant])
	require.Equal(t, 1, observedLogs.FilterMessage(reconciledMessageConstant).Len())
}
