package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/repo-mirror/internal/execshell"
	"github.com/temirov/repo-mirror/internal/filesystem"
)

const (
	gitCloneSubcommandConstant            = "clone"
	gitRecursiveFlagConstant              = "--recursive"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	fileSystemMissingMessageConstant      = "filesystem not configured"
	directoryCheckFailureTemplateConstant = "failed to inspect %s: %w"
	cloneFailureTemplateConstant          = "failed to clone %s into %s: %w"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// GitExecutor runs git subprocesses.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryEnsurer clones repositories whose directory is missing.
type RepositoryEnsurer struct {
	executor   GitExecutor
	fileSystem filesystem.FileSystem
}

// NewRepositoryEnsurer validates dependencies and constructs a RepositoryEnsurer.
func NewRepositoryEnsurer(executor GitExecutor, fileSystem filesystem.FileSystem) (*RepositoryEnsurer, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &RepositoryEnsurer{executor: executor, fileSystem: fileSystem}, nil
}

// Ensure clones uri into repositoryPath unless repositoryPath is already a directory.
// It reports whether a clone ran. Submodules are cloned recursively only when requested.
func (ensurer *RepositoryEnsurer) Ensure(executionContext context.Context, baseDirectory string, repository RepositorySpecification, repositoryPath string) (bool, error) {
	isDirectory, inspectionError := ensurer.fileSystem.IsDirectory(repositoryPath)
	if inspectionError != nil {
		return false, fmt.Errorf(directoryCheckFailureTemplateConstant, repositoryPath, inspectionError)
	}
	if isDirectory {
		return false, nil
	}

	arguments := []string{gitCloneSubcommandConstant}
	if repository.IsSubmodule {
		arguments = append(arguments, gitRecursiveFlagConstant)
	}
	arguments = append(arguments, repository.URI, repositoryPath)

	if _, cloneError := ensurer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: baseDirectory,
	}); cloneError != nil {
		return false, fmt.Errorf(cloneFailureTemplateConstant, repository.URI, repositoryPath, cloneError)
	}
	return true, nil
}
