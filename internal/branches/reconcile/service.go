package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repo-mirror/internal/execshell"
)

const (
	repositoryPathRequiredMessageConstant  = "repository path must be provided"
	remoteNameRequiredMessageConstant      = "remote name must be provided"
	defaultBranchRequiredMessageConstant   = "default branch must be provided"
	gitExecutorMissingMessageConstant      = "git executor not configured"
	remoteUpdateFailureTemplateConstant    = "failed to update remote %q: %w"
	remoteListingFailureTemplateConstant   = "failed to list remote branches: %w"
	localListingFailureTemplateConstant    = "failed to list local branches: %w"
	trackFailureTemplateConstant           = "failed to create tracking branch %q: %w"
	checkoutFailureTemplateConstant        = "failed to checkout branch %q: %w"
	pullFailureTemplateConstant            = "failed to pull branch %q: %w"
	defaultCheckoutFailureTemplateConstant = "failed to checkout default branch %q: %w"
	deleteFailureTemplateConstant          = "failed to delete stale branch %q: %w"
	tagsFetchFailureTemplateConstant       = "failed to fetch tags from %q: %w"
	capturedListingMessageConstant         = "Captured branch listing"
	reconciledMessageConstant              = "Reconciled branches"
	logFieldRepositoryConstant             = "repository"
	logFieldListingConstant                = "listing"
	logFieldKindConstant                   = "kind"
	logFieldCreatedConstant                = "created"
	logFieldDeletedConstant                = "deleted"
	logFieldUpdatedCountConstant           = "updated_count"
	remoteListingKindConstant              = "remote"
	localListingKindConstant               = "local"
	gitRemoteSubcommandConstant            = "remote"
	gitUpdateSubcommandConstant            = "update"
	gitPruneFlagConstant                   = "--prune"
	gitBranchSubcommandConstant            = "branch"
	gitRemoteBranchesFlagConstant          = "-r"
	gitTrackFlagConstant                   = "--track"
	gitSafeDeleteFlagConstant              = "-d"
	gitCheckoutSubcommandConstant          = "checkout"
	gitPullSubcommandConstant              = "pull"
	gitFetchSubcommandConstant             = "fetch"
	gitTagsFlagConstant                    = "--tags"
	remoteBranchReferenceTemplateConstant  = "%s/%s"
)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrRemoteNameRequired indicates the remote name option was empty.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// ErrDefaultBranchRequired indicates the default branch option was empty.
var ErrDefaultBranchRequired = errors.New(defaultBranchRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git subprocesses.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies enumerates external collaborators required for reconciliation.
type Dependencies struct {
	GitExecutor GitExecutor
	Logger      *zap.Logger
}

// Options configures a reconciliation of one repository.
type Options struct {
	RepositoryPath string
	RemoteName     string
	DefaultBranch  string
}

// Result captures the branches touched by a reconciliation.
type Result struct {
	Created []string
	Updated []string
	Deleted []string
}

// Service makes the local branch set of a repository match its remote.
type Service struct {
	executor GitExecutor
	logger   *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{executor: dependencies.GitExecutor, logger: logger}, nil
}

// Reconcile updates the remote, tracks new remote branches, fast-forwards every
// remote branch, checks out the default branch, removes local branches the
// remote no longer has, and fetches tags. The first failing step aborts.
func (service *Service) Reconcile(executionContext context.Context, options Options) (Result, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		return Result{}, ErrRemoteNameRequired
	}
	defaultBranch := strings.TrimSpace(options.DefaultBranch)
	if len(defaultBranch) == 0 {
		return Result{}, ErrDefaultBranchRequired
	}

	if _, updateError := service.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitUpdateSubcommandConstant, remoteName, gitPruneFlagConstant); updateError != nil {
		return Result{}, fmt.Errorf(remoteUpdateFailureTemplateConstant, remoteName, updateError)
	}

	remoteListing, remoteListingError := service.captureGit(executionContext, repositoryPath, remoteListingKindConstant, gitBranchSubcommandConstant, gitRemoteBranchesFlagConstant)
	if remoteListingError != nil {
		return Result{}, fmt.Errorf(remoteListingFailureTemplateConstant, remoteListingError)
	}
	remoteBranches := ParseRemoteBranches(remoteListing, remoteName)

	localListing, localListingError := service.captureGit(executionContext, repositoryPath, localListingKindConstant, gitBranchSubcommandConstant)
	if localListingError != nil {
		return Result{}, fmt.Errorf(localListingFailureTemplateConstant, localListingError)
	}
	localBranches := ParseLocalBranches(localListing)

	result := Result{
		Created: subtractBranches(remoteBranches, localBranches),
		Updated: make([]string, 0, len(remoteBranches)),
		Deleted: make([]string, 0),
	}

	for _, branchName := range result.Created {
		remoteReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, remoteName, branchName)
		if _, trackError := service.runGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitTrackFlagConstant, branchName, remoteReference); trackError != nil {
			return result, fmt.Errorf(trackFailureTemplateConstant, branchName, trackError)
		}
	}

	for _, branchName := range remoteBranches {
		if _, checkoutError := service.runGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, branchName); checkoutError != nil {
			return result, fmt.Errorf(checkoutFailureTemplateConstant, branchName, checkoutError)
		}
		if _, pullError := service.runGit(executionContext, repositoryPath, gitPullSubcommandConstant, remoteName, branchName); pullError != nil {
			return result, fmt.Errorf(pullFailureTemplateConstant, branchName, pullError)
		}
		result.Updated = append(result.Updated, branchName)
	}

	if _, checkoutError := service.runGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, defaultBranch); checkoutError != nil {
		return result, fmt.Errorf(defaultCheckoutFailureTemplateConstant, defaultBranch, checkoutError)
	}

	for _, branchName := range subtractBranches(localBranches, remoteBranches) {
		if _, deleteError := service.runGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitSafeDeleteFlagConstant, branchName); deleteError != nil {
			return result, fmt.Errorf(deleteFailureTemplateConstant, branchName, deleteError)
		}
		result.Deleted = append(result.Deleted, branchName)
	}

	if _, tagsError := service.runGit(executionContext, repositoryPath, gitFetchSubcommandConstant, remoteName, gitTagsFlagConstant); tagsError != nil {
		return result, fmt.Errorf(tagsFetchFailureTemplateConstant, remoteName, tagsError)
	}

	service.logger.Info(
		reconciledMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.Strings(logFieldCreatedConstant, result.Created),
		zap.Int(logFieldUpdatedCountConstant, len(result.Updated)),
		zap.Strings(logFieldDeletedConstant, result.Deleted),
	)

	return result, nil
}

func (service *Service) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
}

func (service *Service) captureGit(executionContext context.Context, repositoryPath string, listingKind string, arguments ...string) (string, error) {
	executionResult, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:             arguments,
		WorkingDirectory:      repositoryPath,
		CaptureStandardOutput: true,
	})
	if executionError != nil {
		return "", executionError
	}
	service.logger.Debug(
		capturedListingMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.String(logFieldKindConstant, listingKind),
		zap.String(logFieldListingConstant, executionResult.StandardOutput),
	)
	return executionResult.StandardOutput, nil
}
