package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repo-mirror/internal/archive"
	"github.com/temirov/repo-mirror/internal/branches/reconcile"
	pathutils "github.com/temirov/repo-mirror/internal/utils/path"
)

const (
	reconcilerMissingMessageConstant        = "branch reconciler not configured"
	archiverMissingMessageConstant          = "archiver not configured"
	ensurerMissingMessageConstant           = "repository ensurer not configured"
	baseDirectoryRequiredMessageConstant    = "base directory must be provided"
	unknownSelectionMessageConstant         = "unknown repositories selected"
	unknownSelectionTemplateConstant        = "%w: %s"
	syncErrorTemplateConstant               = "repository %s: %s failed: %v"
	baseDirectoryResolutionTemplateConstant = "failed to resolve base directory %s: %w"
	selectionSeparatorConstant              = ", "
	parentDirectoryPrefixConstant           = ".."
	stageCloneConstant                      = "clone"
	stageReconcileConstant                  = "reconcile"
	stageArchiveConstant                    = "archive"
	syncStartedMessageConstant              = "Synchronizing repositories"
	repositoryStartedMessageConstant        = "Synchronizing repository"
	repositoryClonedMessageConstant         = "Repository cloned"
	repositorySynchronizedMessageConstant   = "Repository synchronized"
	syncCompletedMessageConstant            = "Synchronization completed"
	logFieldRepositoryCountConstant         = "repository_count"
	logFieldRepositoryConstant              = "repository"
	logFieldURIConstant                     = "uri"
	logFieldRemoteConstant                  = "remote"
	logFieldBranchConstant                  = "branch"
	logFieldArchiveConstant                 = "archive"
)

// ErrBranchReconcilerNotConfigured indicates the reconciler dependency was missing.
var ErrBranchReconcilerNotConfigured = errors.New(reconcilerMissingMessageConstant)

// ErrArchiverNotConfigured indicates the archiver dependency was missing.
var ErrArchiverNotConfigured = errors.New(archiverMissingMessageConstant)

// ErrRepositoryEnsurerNotConfigured indicates the ensurer dependency was missing.
var ErrRepositoryEnsurerNotConfigured = errors.New(ensurerMissingMessageConstant)

// ErrBaseDirectoryRequired indicates the base directory option was empty.
var ErrBaseDirectoryRequired = errors.New(baseDirectoryRequiredMessageConstant)

// ErrUnknownRepositorySelection indicates a selected directory is absent from the configuration.
var ErrUnknownRepositorySelection = errors.New(unknownSelectionMessageConstant)

// BranchReconciler aligns local branches with the remote.
type BranchReconciler interface {
	Reconcile(executionContext context.Context, options reconcile.Options) (reconcile.Result, error)
}

// RepositoryArchiver packs a synchronized repository.
type RepositoryArchiver interface {
	Archive(executionContext context.Context, options archive.Options) (archive.Result, error)
}

// Dependencies enumerates collaborators required by the Syncer.
type Dependencies struct {
	Ensurer      *RepositoryEnsurer
	Reconciler   BranchReconciler
	Archiver     RepositoryArchiver
	PathResolver *pathutils.Resolver
	Logger       *zap.Logger
}

// Options configures one synchronization run.
type Options struct {
	Configuration Configuration
	// BaseDirectory anchors relative dir and target values.
	BaseDirectory string
	// SelectedDirectories restricts the run to these dir values. Empty selects all.
	SelectedDirectories []string
}

// Outcome summarizes a synchronization run.
type Outcome struct {
	SucceededRepositories []string
	FailedRepository      string
	Failure               error
}

// SyncError names the repository and stage that stopped a run.
type SyncError struct {
	Repository string
	Stage      string
	Cause      error
}

// Error describes the failing repository and stage.
func (syncError SyncError) Error() string {
	return fmt.Sprintf(syncErrorTemplateConstant, syncError.Repository, syncError.Stage, syncError.Cause)
}

// Unwrap exposes the underlying cause.
func (syncError SyncError) Unwrap() error {
	return syncError.Cause
}

// Syncer processes configured repositories one after another and stops at the first failure.
type Syncer struct {
	ensurer      *RepositoryEnsurer
	reconciler   BranchReconciler
	archiver     RepositoryArchiver
	pathResolver *pathutils.Resolver
	logger       *zap.Logger
}

// NewSyncer validates dependencies and constructs a Syncer.
func NewSyncer(dependencies Dependencies) (*Syncer, error) {
	if dependencies.Ensurer == nil {
		return nil, ErrRepositoryEnsurerNotConfigured
	}
	if dependencies.Reconciler == nil {
		return nil, ErrBranchReconcilerNotConfigured
	}
	if dependencies.Archiver == nil {
		return nil, ErrArchiverNotConfigured
	}
	pathResolver := dependencies.PathResolver
	if pathResolver == nil {
		pathResolver = pathutils.NewResolver()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		ensurer:      dependencies.Ensurer,
		reconciler:   dependencies.Reconciler,
		archiver:     dependencies.Archiver,
		pathResolver: pathResolver,
		logger:       logger,
	}, nil
}

// Sync clones, reconciles, and optionally archives every selected repository in order.
// The returned error is a SyncError when a repository step failed.
func (syncer *Syncer) Sync(executionContext context.Context, options Options) (Outcome, error) {
	baseDirectory := strings.TrimSpace(options.BaseDirectory)
	if len(baseDirectory) == 0 {
		return Outcome{}, ErrBaseDirectoryRequired
	}
	absoluteBaseDirectory, absoluteError := filepath.Abs(syncer.pathResolver.Resolve("", baseDirectory))
	if absoluteError != nil {
		return Outcome{}, fmt.Errorf(baseDirectoryResolutionTemplateConstant, baseDirectory, absoluteError)
	}
	baseDirectory = absoluteBaseDirectory

	configuration := options.Configuration.Sanitize()
	repositories, selectionError := selectRepositories(configuration.Repositories, options.SelectedDirectories)
	if selectionError != nil {
		return Outcome{}, selectionError
	}

	outcome := Outcome{SucceededRepositories: make([]string, 0, len(repositories))}
	syncer.logger.Info(syncStartedMessageConstant, zap.Int(logFieldRepositoryCountConstant, len(repositories)))

	targetDirectory := syncer.pathResolver.Resolve(baseDirectory, configuration.Pack.Target)

	for _, repository := range repositories {
		if contextError := executionContext.Err(); contextError != nil {
			return syncer.fail(outcome, repository, stageCloneConstant, contextError)
		}

		repositoryPath := syncer.pathResolver.Resolve(baseDirectory, repository.Directory)
		syncer.logger.Info(
			repositoryStartedMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.Directory),
			zap.String(logFieldURIConstant, repository.URI),
			zap.String(logFieldRemoteConstant, repository.Remote),
			zap.String(logFieldBranchConstant, repository.Branch),
		)

		cloned, ensureError := syncer.ensurer.Ensure(executionContext, baseDirectory, repository, repositoryPath)
		if ensureError != nil {
			return syncer.fail(outcome, repository, stageCloneConstant, ensureError)
		}
		if cloned {
			syncer.logger.Info(repositoryClonedMessageConstant, zap.String(logFieldRepositoryConstant, repository.Directory))
		}

		if _, reconcileError := syncer.reconciler.Reconcile(executionContext, reconcile.Options{
			RepositoryPath: repositoryPath,
			RemoteName:     repository.Remote,
			DefaultBranch:  repository.Branch,
		}); reconcileError != nil {
			return syncer.fail(outcome, repository, stageReconcileConstant, reconcileError)
		}

		archiveResult, archiveError := syncer.archiver.Archive(executionContext, archive.Options{
			Enabled:             configuration.Pack.Enable,
			BaseDirectory:       baseDirectory,
			RepositoryDirectory: archiveEntryName(baseDirectory, repositoryPath),
			TargetDirectory:     targetDirectory,
			Password:            configuration.Pack.Password,
		})
		if archiveError != nil {
			return syncer.fail(outcome, repository, stageArchiveConstant, archiveError)
		}

		syncer.logger.Info(
			repositorySynchronizedMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.Directory),
			zap.String(logFieldArchiveConstant, archiveResult.OutputPath),
		)
		outcome.SucceededRepositories = append(outcome.SucceededRepositories, repository.Directory)
	}

	syncer.logger.Info(syncCompletedMessageConstant, zap.Int(logFieldRepositoryCountConstant, len(outcome.SucceededRepositories)))
	return outcome, nil
}

func (syncer *Syncer) fail(outcome Outcome, repository RepositorySpecification, stage string, cause error) (Outcome, error) {
	failure := SyncError{Repository: repository.Directory, Stage: stage, Cause: cause}
	outcome.FailedRepository = repository.Directory
	outcome.Failure = failure
	return outcome, failure
}

// archiveEntryName keeps the entry name relative to the base directory when the
// repository lives beneath it, so archives contain exactly the configured dir.
func archiveEntryName(baseDirectory string, repositoryPath string) string {
	relativePath, relativeError := filepath.Rel(baseDirectory, repositoryPath)
	if relativeError != nil || relativePath == parentDirectoryPrefixConstant || strings.HasPrefix(relativePath, parentDirectoryPrefixConstant+string(filepath.Separator)) {
		return repositoryPath
	}
	return relativePath
}

func selectRepositories(repositories []RepositorySpecification, selectedDirectories []string) ([]RepositorySpecification, error) {
	if len(selectedDirectories) == 0 {
		return repositories, nil
	}

	remainingSelections := make(map[string]struct{}, len(selectedDirectories))
	orderedSelections := make([]string, 0, len(selectedDirectories))
	for _, selectedDirectory := range selectedDirectories {
		normalizedDirectory := filepath.Clean(strings.TrimSpace(selectedDirectory))
		if _, duplicate := remainingSelections[normalizedDirectory]; duplicate {
			continue
		}
		remainingSelections[normalizedDirectory] = struct{}{}
		orderedSelections = append(orderedSelections, normalizedDirectory)
	}

	selected := make([]RepositorySpecification, 0, len(remainingSelections))
	for _, repository := range repositories {
		normalizedDirectory := filepath.Clean(repository.Directory)
		if _, isSelected := remainingSelections[normalizedDirectory]; !isSelected {
			continue
		}
		delete(remainingSelections, normalizedDirectory)
		selected = append(selected, repository)
	}

	if len(remainingSelections) > 0 {
		unknownSelections := make([]string, 0, len(remainingSelections))
		for _, selection := range orderedSelections {
			if _, unknown := remainingSelections[selection]; unknown {
				unknownSelections = append(unknownSelections, selection)
			}
		}
		return nil, fmt.Errorf(unknownSelectionTemplateConstant, ErrUnknownRepositorySelection, strings.Join(unknownSelections, selectionSeparatorConstant))
	}

	return selected, nil
}
