package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repo-mirror/internal/execshell"
	"github.com/temirov/repo-mirror/internal/filesystem"
	"github.com/temirov/repo-mirror/internal/mirror"
	"github.com/temirov/repo-mirror/internal/utils"
	pathutils "github.com/temirov/repo-mirror/internal/utils/path"
)

const (
	applicationNameConstant                 = "repo-mirror"
	applicationShortDescriptionConstant     = "Mirror git repositories and archive them"
	applicationLongDescriptionConstant      = "repo-mirror keeps local mirrors of configured git repositories in step with their remotes and optionally packs each mirror into an encrypted archive. Running it without a subcommand runs sync."
	versionTemplateConstant                 = "repo-mirror version: {{.Version}}\n"
	unknownVersionConstant                  = "(devel)"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "REPOMIRROR"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	baseDirectoryFieldConstant              = "base_directory"
	repositoryCountFieldConstant            = "repository_count"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant   = "unable to determine working directory: %w"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Mirror mirror.Configuration           `mapstructure:",squash"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand              *cobra.Command
	configurationLoader      *utils.ConfigurationLoader
	loggerFactory            *utils.LoggerFactory
	logger                   *zap.Logger
	configuration            ApplicationConfiguration
	configurationMetadata    utils.LoadedConfiguration
	configurationFilePath    string
	logLevelFlagValue        string
	logFormatFlagValue       string
	baseDirectory            string
	pathResolver             *pathutils.Resolver
	workingDirectoryProvider func() (string, error)
}

// ApplicationOption customizes an Application before its commands are built.
type ApplicationOption func(*applicationSettings)

type applicationSettings struct {
	commandRunner execshell.CommandRunner
	fileSystem    filesystem.FileSystem
	searchPaths   []string
}

// WithCommandRunner replaces the operating system command runner.
func WithCommandRunner(commandRunner execshell.CommandRunner) ApplicationOption {
	return func(settings *applicationSettings) {
		settings.commandRunner = commandRunner
	}
}

// WithFileSystem replaces the operating system filesystem.
func WithFileSystem(fileSystem filesystem.FileSystem) ApplicationOption {
	return func(settings *applicationSettings) {
		settings.fileSystem = fileSystem
	}
}

// WithConfigurationSearchPaths replaces the directories searched for config.yaml.
func WithConfigurationSearchPaths(searchPaths ...string) ApplicationOption {
	return func(settings *applicationSettings) {
		settings.searchPaths = append([]string(nil), searchPaths...)
	}
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	settings := applicationSettings{searchPaths: defaultConfigurationSearchPaths()}
	for _, option := range options {
		if option != nil {
			option(&settings)
		}
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		settings.searchPaths,
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:      configurationLoader,
		loggerFactory:            utils.NewLoggerFactory(applicationNameConstant),
		logger:                   zap.NewNop(),
		pathResolver:             pathutils.NewResolver(),
		workingDirectoryProvider: os.Getwd,
	}

	syncBuilder := mirror.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() mirror.Configuration {
			return application.configuration.Mirror
		},
		BaseDirectoryProvider: func() string {
			return application.baseDirectory
		},
		CommandRunner: settings.commandRunner,
		FileSystem:    settings.fileSystem,
		PathResolver:  application.pathResolver,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: syncBuilder.Run,
	}

	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	syncCommand, syncBuildError := syncBuilder.Build()
	if syncBuildError == nil {
		cobraCommand.AddCommand(syncCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute(executionContext context.Context, arguments []string) error {
	if arguments == nil {
		arguments = []string{}
	}
	application.rootCommand.SetArgs(arguments)
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// RootCommand exposes the root cobra command.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute builds a fresh application instance and runs it until completion or an interrupt.
func Execute() error {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	return NewApplication().Execute(signalContext, os.Args[1:])
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range mirror.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}

	configurationFilePath := application.pathResolver.ExpandHome(strings.TrimSpace(application.configurationFilePath))
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	baseDirectory, baseDirectoryError := application.resolveBaseDirectory()
	if baseDirectoryError != nil {
		return baseDirectoryError
	}
	application.baseDirectory = baseDirectory

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(baseDirectoryFieldConstant, application.baseDirectory),
		zap.Int(repositoryCountFieldConstant, len(application.configuration.Mirror.Repositories)),
	)

	return nil
}

// resolveBaseDirectory anchors relative repository paths at the configuration file's directory,
// falling back to the working directory when no file was read.
func (application *Application) resolveBaseDirectory() (string, error) {
	configurationFileUsed := strings.TrimSpace(application.configurationMetadata.ConfigFileUsed)
	if len(configurationFileUsed) > 0 {
		absoluteConfigurationPath, absoluteError := filepath.Abs(configurationFileUsed)
		if absoluteError == nil {
			return filepath.Dir(absoluteConfigurationPath), nil
		}
	}

	workingDirectory, workingDirectoryError := application.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func defaultConfigurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, userConfigurationError := os.UserConfigDir(); userConfigurationError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}

func resolveVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(buildInformation.Main.Version) == 0 {
		return unknownVersionConstant
	}
	return buildInformation.Main.Version
}
