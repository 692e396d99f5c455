package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repo-mirror/internal/execshell"
	"github.com/temirov/repo-mirror/internal/filesystem"
)

const (
	archiveExtensionConstant                = ".tar.gz"
	tarCreateCompressedFlagConstant         = "-czf"
	tarStandardOutputTargetConstant         = "-"
	openSSLCipherConstant                   = "aes-128-ecb"
	openSSLSaltFlagConstant                 = "-salt"
	openSSLPasswordFlagConstant             = "-k"
	openSSLKeyDerivationFlagConstant        = "-pbkdf2"
	openSSLIterationFlagConstant            = "-iter"
	openSSLIterationCountConstant           = "10000"
	openSSLOutputFlagConstant               = "-out"
	openSSLPasswordArgumentIndexConstant    = 3
	directoryPermissionsConstant            = 0o755
	executorMissingMessageConstant          = "archive executor not configured"
	fileSystemMissingMessageConstant        = "filesystem not configured"
	repositoryDirectoryMissingConstant      = "repository directory must be provided"
	baseDirectoryMissingConstant            = "base directory must be provided"
	archiveExistsMessageConstant            = "output archive already exists, skipping"
	archiveCreatedMessageConstant           = "Archive created"
	partialArchiveRemovalFailureConstant    = "failed to remove partial archive"
	targetCreationFailureTemplateConstant   = "failed to create archive directory %s: %w"
	existenceCheckFailureTemplateConstant   = "failed to check archive %s: %w"
	plainArchiveFailureTemplateConstant     = "failed to archive %s: %w"
	encryptedArchiveFailureTemplateConstant = "failed to archive and encrypt %s: %w"
	logFieldOutputConstant                  = "output"
	logFieldRepositoryConstant              = "repository"
	logFieldEncryptedConstant               = "encrypted"
	logFieldErrorConstant                   = "error"
)

// ErrExecutorNotConfigured indicates the command executor dependency was missing.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrRepositoryDirectoryRequired indicates the repository directory option was empty.
var ErrRepositoryDirectoryRequired = errors.New(repositoryDirectoryMissingConstant)

// ErrBaseDirectoryRequired indicates the base directory option was empty.
var ErrBaseDirectoryRequired = errors.New(baseDirectoryMissingConstant)

// CommandExecutor runs tar directly or as the producer of a pipeline.
type CommandExecutor interface {
	ExecuteTar(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePipeline(executionContext context.Context, producer execshell.ShellCommand, consumer execshell.ShellCommand) (execshell.PipelineResult, error)
}

// Dependencies enumerates external collaborators required for archiving.
type Dependencies struct {
	Executor   CommandExecutor
	FileSystem filesystem.FileSystem
	Logger     *zap.Logger
}

// Options describes one archive request.
type Options struct {
	Enabled bool
	// BaseDirectory is where tar runs; RepositoryDirectory is relative to it and becomes the entry name.
	BaseDirectory       string
	RepositoryDirectory string
	// TargetDirectory receives the archive. Empty means BaseDirectory.
	TargetDirectory string
	Password        string
}

// Result reports what the archiver did.
type Result struct {
	OutputPath string
	Created    bool
	Encrypted  bool
}

// Service produces compressed, optionally encrypted, snapshots of repository directories.
type Service struct {
	executor   CommandExecutor
	fileSystem filesystem.FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{executor: dependencies.Executor, fileSystem: dependencies.FileSystem, logger: logger}, nil
}

// OutputPath returns the archive path for a repository directory.
func OutputPath(targetDirectory string, repositoryDirectory string) string {
	return filepath.Join(targetDirectory, filepath.Clean(repositoryDirectory)+archiveExtensionConstant)
}

// Archive writes <target>/<dir>.tar.gz unless it already exists. With a password
// the tar stream is encrypted through openssl before it reaches disk.
func (service *Service) Archive(executionContext context.Context, options Options) (Result, error) {
	if !options.Enabled {
		return Result{}, nil
	}

	repositoryDirectory := strings.TrimSpace(options.RepositoryDirectory)
	if len(repositoryDirectory) == 0 {
		return Result{}, ErrRepositoryDirectoryRequired
	}
	baseDirectory := strings.TrimSpace(options.BaseDirectory)
	if len(baseDirectory) == 0 {
		return Result{}, ErrBaseDirectoryRequired
	}

	targetDirectory := strings.TrimSpace(options.TargetDirectory)
	if len(targetDirectory) == 0 {
		targetDirectory = baseDirectory
	}

	outputPath := OutputPath(targetDirectory, repositoryDirectory)
	encrypted := len(options.Password) > 0
	result := Result{OutputPath: outputPath, Encrypted: encrypted}

	for _, requiredDirectory := range []string{targetDirectory, filepath.Dir(outputPath)} {
		if mkdirError := service.fileSystem.MkdirAll(requiredDirectory, directoryPermissionsConstant); mkdirError != nil {
			return result, fmt.Errorf(targetCreationFailureTemplateConstant, requiredDirectory, mkdirError)
		}
	}

	outputExists, existsError := service.fileSystem.Exists(outputPath)
	if existsError != nil {
		return result, fmt.Errorf(existenceCheckFailureTemplateConstant, outputPath, existsError)
	}
	if outputExists {
		service.logger.Info(archiveExistsMessageConstant, zap.String(logFieldOutputConstant, outputPath))
		return result, nil
	}

	if encrypted {
		if archiveError := service.archiveEncrypted(executionContext, baseDirectory, repositoryDirectory, outputPath, options.Password); archiveError != nil {
			service.removePartialArchive(outputPath)
			return result, fmt.Errorf(encryptedArchiveFailureTemplateConstant, repositoryDirectory, archiveError)
		}
	} else {
		if archiveError := service.archivePlain(executionContext, baseDirectory, repositoryDirectory, outputPath); archiveError != nil {
			service.removePartialArchive(outputPath)
			return result, fmt.Errorf(plainArchiveFailureTemplateConstant, repositoryDirectory, archiveError)
		}
	}

	result.Created = true
	service.logger.Info(
		archiveCreatedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryDirectory),
		zap.String(logFieldOutputConstant, outputPath),
		zap.Bool(logFieldEncryptedConstant, encrypted),
	)
	return result, nil
}

// removePartialArchive deletes output left behind by a failed tar or openssl run.
func (service *Service) removePartialArchive(outputPath string) {
	if removeError := service.fileSystem.Remove(outputPath); removeError != nil {
		service.logger.Warn(
			partialArchiveRemovalFailureConstant,
			zap.String(logFieldOutputConstant, outputPath),
			zap.String(logFieldErrorConstant, removeError.Error()),
		)
	}
}

func (service *Service) archivePlain(executionContext context.Context, baseDirectory string, repositoryDirectory string, outputPath string) error {
	_, executionError := service.executor.ExecuteTar(executionContext, execshell.CommandDetails{
		Arguments:        []string{tarCreateCompressedFlagConstant, outputPath, repositoryDirectory},
		WorkingDirectory: baseDirectory,
	})
	return executionError
}

func (service *Service) archiveEncrypted(executionContext context.Context, baseDirectory string, repositoryDirectory string, outputPath string, password string) error {
	producer := execshell.ShellCommand{
		Name: execshell.CommandTar,
		Details: execshell.CommandDetails{
			Arguments:        []string{tarCreateCompressedFlagConstant, tarStandardOutputTargetConstant, repositoryDirectory},
			WorkingDirectory: baseDirectory,
		},
	}
	consumer := execshell.ShellCommand{
		Name: execshell.CommandOpenSSL,
		Details: execshell.CommandDetails{
			Arguments: []string{
				openSSLCipherConstant,
				openSSLSaltFlagConstant,
				openSSLPasswordFlagConstant,
				password,
				openSSLKeyDerivationFlagConstant,
				openSSLIterationFlagConstant,
				openSSLIterationCountConstant,
				openSSLOutputFlagConstant,
				outputPath,
			},
			WorkingDirectory:      baseDirectory,
			SecretArgumentIndexes: []int{openSSLPasswordArgumentIndexConstant},
		},
	}
	_, executionError := service.executor.ExecutePipeline(executionContext, producer, consumer)
	return executionError
}
