package mirror_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repo-mirror/internal/execshell"
	"github.com/temirov/repo-mirror/internal/filesystem"
	"github.com/temirov/repo-mirror/internal/mirror"
)

type recordingGitExecutor struct {
	recordedCommands []execshell.CommandDetails
	failure          error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return execshell.ExecutionResult{}, executor.failure
}

func TestRepositoryEnsurerClonesMissingDirectories(testInstance *testing.T) {
	testCases := []struct {
		name              string
		existingDirectory bool
		isSubmodule       bool
		expectedArguments []string
	}{
		{name: "existing_directory", existingDirectory: true},
		{name: "plain_clone", expectedArguments: []string{"clone", "https://example.com/alpha.git", "/srv/mirrors/alpha"}},
		{name: "recursive_clone", isSubmodule: true, expectedArguments: []string{"clone", "--recursive", "https://example.com/alpha.git", "/srv/mirrors/alpha"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := filesystem.NewMemoryFileSystem()
			if testCase.existingDirectory {
				require.NoError(testInstance, fileSystem.MkdirAll("/srv/mirrors/alpha", 0o755))
			}
			executor := &recordingGitExecutor{}
			ensurer, creationError := mirror.NewRepositoryEnsurer(executor, fileSystem)
			require.NoError(testInstance, creationError)

			cloned, ensureError := ensurer.Ensure(context.Background(), "/srv/mirrors", mirror.RepositorySpecification{
				URI:         "https://example.com/alpha.git",
				Directory:   "alpha",
				IsSubmodule: testCase.isSubmodule,
			}, "/srv/mirrors/alpha")
			require.NoError(testInstance, ensureError)

			if testCase.expectedArguments == nil {
				require.False(testInstance, cloned)
				require.Empty(testInstance, executor.recordedCommands)
				return
			}
			require.True(testInstance, cloned)
			require.Len(testInstance, executor.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedCommands[0].Arguments)
			require.Equal(testInstance, "/srv/mirrors", executor.recordedCommands[0].WorkingDirectory)
		})
	}
}

func TestRepositoryEnsurerWrapsCloneFailure(testInstance *testing.T) {
	cloneFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}}
	ensurer, creationError := mirror.NewRepositoryEnsurer(&recordingGitExecutor{failure: cloneFailure}, filesystem.NewMemoryFileSystem())
	require.NoError(testInstance, creationError)

	_, ensureError := ensurer.Ensure(context.Background(), "/srv", mirror.RepositorySpecification{URI: "https://example.com/x.git", Directory: "x"}, "/srv/x")
	require.ErrorContains(testInstance, ensureError, "failed to clone https://example.com/x.git into /srv/x")

	var failedError execshell.CommandFailedError
	require.True(testInstance, errors.As(ensureError, &failedError))
	require.Equal(testInstance, 128, failedError.ExitCode())
}

func TestNewRepositoryEnsurerValidatesDependencies(testInstance *testing.T) {
	_, creationError := mirror.NewRepositoryEnsurer(nil, filesystem.NewMemoryFileSystem())
	require.ErrorIs(testInstance, creationError, mirror.ErrGitExecutorNotConfigured)

	_, creationError = mirror.NewRepositoryEnsurer(&recordingGitExecutor{}, nil)
	require.ErrorIs(testInstance, creationError, mirror.ErrFileSystemNotConfigured)
}
