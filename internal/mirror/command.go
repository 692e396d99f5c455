package mirror

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repo-mirror/internal/archive"
	"github.com/temirov/repo-mirror/internal/branches/reconcile"
	"github.com/temirov/repo-mirror/internal/execshell"
	"github.com/temirov/repo-mirror/internal/filesystem"
	pathutils "github.com/temirov/repo-mirror/internal/utils/path"
)

const (
	commandUseConstant               = "sync"
	commandShortDescriptionConstant  = "Mirror configured repositories and pack them"
	commandLongDescriptionConstant   = "sync clones missing repositories, aligns local branches with the remote, checks out the default branch, fetches tags, and optionally archives each repository."
	printConfigFlagNameConstant      = "print-config"
	printConfigFlagUsageConstant     = "Print the effective configuration with secrets redacted and exit"
	repositoryFlagNameConstant       = "repo"
	repositoryFlagUsageConstant      = "Restrict the run to the repository with this dir (repeatable)"
	yamlIndentConstant               = 2
	nothingConfiguredMessageConstant = "No repositories configured"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() Configuration
	BaseDirectoryProvider func() string
	CommandRunner         execshell.CommandRunner
	FileSystem            filesystem.FileSystem
	PathResolver          *pathutils.Resolver
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.Run,
	}

	command.Flags().Bool(printConfigFlagNameConstant, false, printConfigFlagUsageConstant)
	command.Flags().StringArray(repositoryFlagNameConstant, nil, repositoryFlagUsageConstant)

	return command, nil
}

// Run executes a synchronization. Commands without the sync flags run every repository.
func (builder *CommandBuilder) Run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	printConfiguration, printFlagError := builder.printConfigurationRequested(command)
	if printFlagError != nil {
		return printFlagError
	}
	if printConfiguration {
		return builder.printConfiguration(command, configuration)
	}

	selectedDirectories, selectionFlagError := builder.selectedDirectories(command)
	if selectionFlagError != nil {
		return selectionFlagError
	}

	logger := builder.resolveLogger()
	if len(configuration.Repositories) == 0 {
		logger.Info(nothingConfiguredMessageConstant)
		return nil
	}

	syncer, syncerError := builder.buildSyncer(logger)
	if syncerError != nil {
		return syncerError
	}

	_, syncError := syncer.Sync(command.Context(), Options{
		Configuration:       configuration,
		BaseDirectory:       builder.resolveBaseDirectory(),
		SelectedDirectories: selectedDirectories,
	})
	return syncError
}

func (builder *CommandBuilder) buildSyncer(logger *zap.Logger) (*Syncer, error) {
	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.NewOSFileSystem()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}

	ensurer, ensurerError := NewRepositoryEnsurer(shellExecutor, fileSystem)
	if ensurerError != nil {
		return nil, ensurerError
	}

	reconciler, reconcilerError := reconcile.NewService(reconcile.Dependencies{GitExecutor: shellExecutor, Logger: logger})
	if reconcilerError != nil {
		return nil, reconcilerError
	}

	archiver, archiverError := archive.NewService(archive.Dependencies{Executor: shellExecutor, FileSystem: fileSystem, Logger: logger})
	if archiverError != nil {
		return nil, archiverError
	}

	return NewSyncer(Dependencies{
		Ensurer:      ensurer,
		Reconciler:   reconciler,
		Archiver:     archiver,
		PathResolver: builder.PathResolver,
		Logger:       logger,
	})
}

func (builder *CommandBuilder) printConfiguration(command *cobra.Command, configuration Configuration) error {
	encoder := yaml.NewEncoder(command.OutOrStdout())
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(configuration.Redacted()); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

func (builder *CommandBuilder) printConfigurationRequested(command *cobra.Command) (bool, error) {
	if command == nil || command.Flags().Lookup(printConfigFlagNameConstant) == nil {
		return false, nil
	}
	return command.Flags().GetBool(printConfigFlagNameConstant)
}

func (builder *CommandBuilder) selectedDirectories(command *cobra.Command) ([]string, error) {
	if command == nil || command.Flags().Lookup(repositoryFlagNameConstant) == nil {
		return nil, nil
	}
	return command.Flags().GetStringArray(repositoryFlagNameConstant)
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return Configuration{}.Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveBaseDirectory() string {
	if builder.BaseDirectoryProvider == nil {
		return "."
	}
	return builder.BaseDirectoryProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
