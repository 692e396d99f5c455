package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repo-mirror/cmd/cli"
	"github.com/temirov/repo-mirror/internal/execshell"
	"github.com/temirov/repo-mirror/internal/filesystem"
	"github.com/temirov/repo-mirror/internal/mirror"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testPackPasswordEnvironmentName   = "REPOMIRROR_PACK_PASSWORD"
	testEnvironmentPasswordConstant   = "from-environment"
)

type configurationFixture struct {
	Common map[string]string               `yaml:"common,omitempty"`
	Repos  []mirror.RepositorySpecification `yaml:"repos"`
	Pack   mirror.PackingSpecification      `yaml:"pack"`
}

type recordingCommandRunner struct {
	fileSystem *filesystem.BillyFileSystem
	commands   []execshell.ShellCommand
	pipelines  [][2]execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command)
	arguments := command.Details.Arguments
	if command.Name == execshell.CommandGit && len(arguments) > 0 && arguments[0] == "clone" {
		return execshell.ExecutionResult{}, runner.fileSystem.MkdirAll(arguments[len(arguments)-1], 0o755)
	}
	if command.Name == execshell.CommandGit && strings.Join(arguments, " ") == "branch -r" {
		return execshell.ExecutionResult{StandardOutput: "  origin/main\n"}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (runner *recordingCommandRunner) RunPipeline(_ context.Context, producer execshell.ShellCommand, consumer execshell.ShellCommand) (execshell.PipelineResult, error) {
	runner.pipelines = append(runner.pipelines, [2]execshell.ShellCommand{producer, consumer})
	consumerArguments := consumer.Details.Arguments
	return execshell.PipelineResult{}, util.WriteFile(runner.fileSystem.Backing(), consumerArguments[len(consumerArguments)-1], []byte("enc"), 0o644)
}

func writeConfiguration(testInstance *testing.T, directory string, fixture configurationFixture) string {
	testInstance.Helper()
	content, marshalError := yaml.Marshal(fixture)
	require.NoError(testInstance, marshalError)
	configurationPath := filepath.Join(directory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, content, 0o600))
	return configurationPath
}

func newTestApplication(testInstance *testing.T, searchPaths ...string) (*cli.Application, *recordingCommandRunner) {
	testInstance.Helper()
	runner := &recordingCommandRunner{fileSystem: filesystem.NewMemoryFileSystem()}
	if len(searchPaths) == 0 {
		searchPaths = []string{testInstance.TempDir()}
	}
	application := cli.NewApplication(
		cli.WithCommandRunner(runner),
		cli.WithFileSystem(runner.fileSystem),
		cli.WithConfigurationSearchPaths(searchPaths...),
	)
	return application, runner
}

func TestApplicationWithoutConfigurationDoesNothing(testInstance *testing.T) {
	application, runner := newTestApplication(testInstance)

	executionError := application.Execute(context.Background(), []string{"--log-level", "error"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, cli.ExitCodeSuccess, cli.ExitCode(executionError))
	require.Empty(testInstance, runner.commands)
	require.Empty(testInstance, runner.pipelines)
}

func TestApplicationRejectsMissingExplicitConfiguration(testInstance *testing.T) {
	application, runner := newTestApplication(testInstance)

	executionError := application.Execute(context.Background(), []string{"--config", filepath.Join(testInstance.TempDir(), "absent.yaml")})
	require.ErrorContains(testInstance, executionError, "unable to load configuration")
	require.Equal(testInstance, cli.ExitCodeGeneralFailure, cli.ExitCode(executionError))
	require.Empty(testInstance, runner.commands)
}

func TestApplicationRejectsUnsupportedLogLevel(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)

	executionError := application.Execute(context.Background(), []string{"sync", "--log-level", "verbose"})
	require.ErrorContains(testInstance, executionError, "unsupported log level")
	require.Equal(testInstance, cli.ExitCodeGeneralFailure, cli.ExitCode(executionError))
}

func TestApplicationResolvesRepositoriesAgainstConfigurationDirectory(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments func(configurationPath string) []string
	}{
		{name: "root_command_runs_sync", arguments: func(configurationPath string) []string {
			return []string{"--config", configurationPath, "--log-level", "error"}
		}},
		{name: "explicit_sync_subcommand", arguments: func(configurationPath string) []string {
			return []string{"sync", "--config", configurationPath, "--log-format", "structured", "--log-level", "error"}
		}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationDirectory := testInstance.TempDir()
			configurationPath := writeConfiguration(testInstance, configurationDirectory, configurationFixture{
				Repos: []mirror.RepositorySpecification{{URI: "https://example.com/alpha.git", Directory: "alpha"}},
			})
			application, runner := newTestApplication(testInstance)

			executionError := application.Execute(context.Background(), testCase.arguments(configurationPath))
			require.NoError(testInstance, executionError)

			require.NotEmpty(testInstance, runner.commands)
			cloneCommand := runner.commands[0]
			require.Equal(testInstance, []string{"clone", "https://example.com/alpha.git", filepath.Join(configurationDirectory, "alpha")}, cloneCommand.Details.Arguments)
			require.Equal(testInstance, "0", cloneCommand.Details.EnvironmentVariables["GIT_TERMINAL_PROMPT"])

			lastCommand := runner.commands[len(runner.commands)-1]
			require.Equal(testInstance, []string{"fetch", "origin", "--tags"}, lastCommand.Details.Arguments)
			require.Empty(testInstance, runner.pipelines)
		})
	}
}

func TestApplicationReadsPasswordFromEnvironment(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	writeConfiguration(testInstance, configurationDirectory, configurationFixture{
		Common: map[string]string{"log_level": "error"},
		Repos:  []mirror.RepositorySpecification{{URI: "https://example.com/alpha.git", Directory: "alpha"}},
		Pack:   mirror.PackingSpecification{Enable: true, Target: "archives"},
	})
	testInstance.Setenv(testPackPasswordEnvironmentName, testEnvironmentPasswordConstant)
	application, runner := newTestApplication(testInstance, configurationDirectory)

	executionError := application.Execute(context.Background(), nil)
	require.NoError(testInstance, executionError)

	require.Len(testInstance, runner.pipelines, 1)
	producer, consumer := runner.pipelines[0][0], runner.pipelines[0][1]
	require.Equal(testInstance, []string{"-czf", "-", "alpha"}, producer.Details.Arguments)
	require.Equal(testInstance, configurationDirectory, producer.Details.WorkingDirectory)
	require.Equal(testInstance, testEnvironmentPasswordConstant, consumer.Details.Arguments[3])
	require.Equal(testInstance, filepath.Join(configurationDirectory, "archives", "alpha.tar.gz"), consumer.Details.Arguments[len(consumer.Details.Arguments)-1])
}

func TestApplicationPassesConfiguredPasswordVerbatim(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	writeConfiguration(testInstance, configurationDirectory, configurationFixture{
		Common: map[string]string{"log_level": "error"},
		Repos:  []mirror.RepositorySpecification{{URI: "https://example.com/alpha.git", Directory: "alpha"}},
		Pack:   mirror.PackingSpecification{Enable: true, Password: " pw "},
	})
	application, runner := newTestApplication(testInstance, configurationDirectory)

	executionError := application.Execute(context.Background(), nil)
	require.NoError(testInstance, executionError)

	require.Len(testInstance, runner.pipelines, 1)
	consumer := runner.pipelines[0][1]
	require.Equal(testInstance, execshell.CommandOpenSSL, consumer.Name)
	require.Equal(testInstance, " pw ", consumer.Details.Arguments[3])
}

func TestApplicationPrintsRedactedConfiguration(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	writeConfiguration(testInstance, configurationDirectory, configurationFixture{
		Common: map[string]string{"log_level": "error"},
		Repos:  []mirror.RepositorySpecification{{URI: "https://example.com/alpha.git", Directory: "alpha", Branch: "trunk"}},
		Pack:   mirror.PackingSpecification{Enable: true, Password: "file-secret"},
	})
	application, runner := newTestApplication(testInstance, configurationDirectory)

	var outputBuffer bytes.Buffer
	rootCommand := application.RootCommand()
	rootCommand.SetOut(&outputBuffer)

	executionError := application.Execute(context.Background(), []string{"sync", "--print-config"})
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, runner.commands)
	require.NotContains(testInstance, outputBuffer.String(), "file-secret")

	printed := configurationFixture{}
	require.NoError(testInstance, yaml.Unmarshal(outputBuffer.Bytes(), &printed))
	require.Equal(testInstance, "******", printed.Pack.Password)
	require.Equal(testInstance, "trunk", printed.Repos[0].Branch)
	require.Equal(testInstance, "origin", printed.Repos[0].Remote)
}

func TestApplicationPrintsVersion(testInstance *testing.T) {
	application, runner := newTestApplication(testInstance)

	var outputBuffer bytes.Buffer
	application.RootCommand().SetOut(&outputBuffer)

	executionError := application.Execute(context.Background(), []string{"--version"})
	require.NoError(testInstance, executionError)
	require.True(testInstance, strings.HasPrefix(outputBuffer.String(), "repo-mirror version: "))
	require.Empty(testInstance, runner.commands)
}

func TestExitCode(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "success", executionError: nil, expectedExitCode: 0},
		{name: "general_failure", executionError: errors.New("bad configuration"), expectedExitCode: 1},
		{
			name:             "command_not_executed",
			executionError:   fmt.Errorf("wrapped: %w", mirror.SyncError{Repository: "alpha", Stage: "clone", Cause: execshell.CommandExecutionError{Cause: errors.New("git missing")}}),
			expectedExitCode: -1,
		},
		{
			name:             "subprocess_exit_code",
			executionError:   mirror.SyncError{Repository: "alpha", Stage: "reconcile", Cause: fmt.Errorf("pull: %w", execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}})},
			expectedExitCode: 128,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCode(testCase.executionError))
		})
	}
}
