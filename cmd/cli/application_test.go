package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/submodule-commitmsg/cmd/cli"
	"github.com/temirov/submodule-commitmsg/internal/execshell"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo/testsupport"
)

const (
	testProgramPathConstant          = "/usr/local/bin/submodule-commitmsg"
	testProgramNameConstant          = "submodule-commitmsg"
	testSubmodulePathConstant        = "lib"
	testSubmoduleCommitConstant      = "Add parser"
	testEnumerationFailureConstant   = "gitmodules unreadable"
	testConfigurationFileConstant    = "config.yaml"
	testYAMLConfigurationConstant    = "report:\n  output_format: yaml\n"
	testXDGConfigurationHomeKey      = "XDG_CONFIG_HOME"
	testEnvironmentOutputFormatKey   = "SUBMODULE_COMMITMSG_REPORT_OUTPUT_FORMAT"
	testEnvironmentSubmodulesKey     = "SUBMODULE_COMMITMSG_REPORT_SUBMODULES"
	testUnknownSubmoduleNameConstant = "unknown"
)

type stubDiscoverer struct {
	repository    gitrepo.Repository
	discoverError error
}

func (discoverer stubDiscoverer) Discover(context.Context, string) (gitrepo.Repository, error) {
	return discoverer.repository, discoverer.discoverError
}

type failingRepository struct {
	gitrepo.Repository
	enumerationError error
}

func (repository failingRepository) Root() string { return "/work/superproject" }

func (repository failingRepository) Submodules(context.Context) ([]gitrepo.Submodule, error) {
	return nil, repository.enumerationError
}

func (repository failingRepository) Close() error { return nil }

type superprojectFixture struct {
	directory string
	fromShort string
	toShort   string
}

func isolateConfiguration(testInstance *testing.T) {
	testInstance.Helper()
	testInstance.Setenv(testXDGConfigurationHomeKey, testInstance.TempDir())
	for _, environmentEntry := range os.Environ() {
		if strings.HasPrefix(environmentEntry, "SUBMODULE_COMMITMSG_") {
			environmentKey := strings.SplitN(environmentEntry, "=", 2)[0]
			testInstance.Setenv(environmentKey, "")
			require.NoError(testInstance, os.Unsetenv(environmentKey))
		}
	}
}

func newSuperprojectWithAdvancedSubmodule(testInstance *testing.T) superprojectFixture {
	testInstance.Helper()
	library := testsupport.NewRepository(testInstance)
	recorded := library.Commit("Initial library")

	superproject := testsupport.NewRepository(testInstance)
	superproject.Commit("Initial superproject")
	checkout := superproject.AddSubmodule(library, testSubmodulePathConstant)
	advanced := checkout.Commit(testSubmoduleCommitConstant)

	return superprojectFixture{
		directory: superproject.Directory,
		fromShort: checkout.Run("rev-parse", "--short", recorded),
		toShort:   checkout.Run("rev-parse", "--short", advanced),
	}
}

func runApplication(testInstance *testing.T, arguments []string, options ...cli.ApplicationOption) (int, string, string) {
	testInstance.Helper()
	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	allOptions := append([]cli.ApplicationOption{cli.WithStandardStreams(&standardOutput, &standardError)}, options...)
	exitCode := cli.RunWithOptions(context.Background(), append([]string{testProgramPathConstant}, arguments...), allOptions...)
	return exitCode, standardOutput.String(), standardError.String()
}

func TestRunReportsFatalErrors(testInstance *testing.T) {
	isolateConfiguration(testInstance)

	testCases := []struct {
		name           string
		discoverer     stubDiscoverer
		expectedStderr string
	}{
		{
			name:           "repository_not_found",
			discoverer:     stubDiscoverer{discoverError: gitrepo.ErrRepositoryNotFound},
			expectedStderr: testProgramNameConstant + ": no repository found: repository not found\n",
		},
		{
			name:           "enumeration_failure",
			discoverer:     stubDiscoverer{repository: failingRepository{enumerationError: errors.New(testEnumerationFailureConstant)}},
			expectedStderr: testProgramNameConstant + ": failed to enumerate submodules: " + testEnumerationFailureConstant + "\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := func(string, *zap.Logger, ...execshell.ShellExecutorOption) (gitrepo.Discoverer, error) {
				return testCase.discoverer, nil
			}
			exitCode, standardOutput, standardError := runApplication(testInstance, nil, cli.WithDiscovererFactory(factory))

			require.Equal(testInstance, 1, exitCode)
			require.Empty(testInstance, standardOutput)
			require.Equal(testInstance, testCase.expectedStderr, standardError)
		})
	}
}

func TestRunRejectsInvalidSettings(testInstance *testing.T) {
	isolateConfiguration(testInstance)

	testCases := []struct {
		name             string
		arguments        []string
		expectedFragment string
	}{
		{name: "unknown_backend", arguments: []string{"--backend", "libgit2"}, expectedFragment: "invalid value \"libgit2\""},
		{name: "unknown_output", arguments: []string{"--output", "json"}, expectedFragment: "invalid value \"json\""},
		{name: "non_positive_concurrency", arguments: []string{"--concurrency", "0"}, expectedFragment: "concurrency must be positive: 0"},
		{name: "missing_configuration_file", arguments: []string{"--config", filepath.Join(testInstance.TempDir(), "absent.yaml")}, expectedFragment: "unable to load configuration"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			exitCode, standardOutput, standardError := runApplication(testInstance, testCase.arguments)

			require.Equal(testInstance, 1, exitCode)
			require.Empty(testInstance, standardOutput)
			require.True(testInstance, strings.HasPrefix(standardError, testProgramNameConstant+": "))
			require.Contains(testInstance, standardError, testCase.expectedFragment)
		})
	}
}

func TestRunPrintsCommitMessage(testInstance *testing.T) {
	testsupport.RequireGit(testInstance)
	isolateConfiguration(testInstance)

	for _, backend := range []string{cli.BackendNative, cli.BackendCLI} {
		testInstance.Run(backend, func(testInstance *testing.T) {
			fixture := newSuperprojectWithAdvancedSubmodule(testInstance)

			exitCode, standardOutput, standardError := runApplication(testInstance, []string{"--backend", backend, "--repository", fixture.directory})

			expectedOutput := "Update " + testSubmodulePathConstant + " (" + fixture.fromShort + ".." + fixture.toShort + ")\n\n+" + fixture.toShort + " " + testSubmoduleCommitConstant + "\n"
			require.Equal(testInstance, 0, exitCode, standardError)
			require.Equal(testInstance, expectedOutput, standardOutput)
		})
	}
}

func TestRunFiltersAndFormats(testInstance *testing.T) {
	testsupport.RequireGit(testInstance)
	isolateConfiguration(testInstance)
	fixture := newSuperprojectWithAdvancedSubmodule(testInstance)

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testYAMLConfigurationConstant), 0o600))

	testCases := []struct {
		name             string
		arguments        []string
		environment      map[string]string
		expectEmpty      bool
		expectedFragment string
	}{
		{name: "matching_filter", arguments: []string{testSubmodulePathConstant}, expectedFragment: "Update " + testSubmodulePathConstant},
		{name: "non_matching_filter", arguments: []string{testUnknownSubmoduleNameConstant}, expectEmpty: true},
		{name: "configured_filter", environment: map[string]string{testEnvironmentSubmodulesKey: testUnknownSubmoduleNameConstant}, expectEmpty: true},
		{name: "positional_filter_wins", arguments: []string{testSubmodulePathConstant}, environment: map[string]string{testEnvironmentSubmodulesKey: testUnknownSubmoduleNameConstant}, expectedFragment: "Update " + testSubmodulePathConstant},
		{name: "yaml_from_file", arguments: []string{"--config", configurationPath}, expectedFragment: "subject: Update " + testSubmodulePathConstant},
		{name: "yaml_from_environment", environment: map[string]string{testEnvironmentOutputFormatKey: "yaml"}, expectedFragment: "submodules:\n"},
		{name: "flag_overrides_file", arguments: []string{"--config", configurationPath, "--output", "text"}, expectedFragment: "\n\n+" + fixture.toShort},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			for environmentKey, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentKey, environmentValue)
			}
			arguments := append([]string{"--repository", fixture.directory}, testCase.arguments...)
			exitCode, standardOutput, standardError := runApplication(testInstance, arguments)

			require.Equal(testInstance, 0, exitCode, standardError)
			if testCase.expectEmpty {
				require.Empty(testInstance, standardOutput)
				return
			}
			require.Contains(testInstance, standardOutput, testCase.expectedFragment)
		})
	}
}

func TestRunPrintsNothingWithoutChanges(testInstance *testing.T) {
	testsupport.RequireGit(testInstance)
	isolateConfiguration(testInstance)

	library := testsupport.NewRepository(testInstance)
	library.Commit("Initial library")
	superproject := testsupport.NewRepository(testInstance)
	superproject.Commit("Initial superproject")
	superproject.AddSubmodule(library, testSubmodulePathConstant)

	exitCode, standardOutput, standardError := runApplication(testInstance, []string{"--repository", superproject.Directory})

	require.Equal(testInstance, 0, exitCode)
	require.Empty(testInstance, standardOutput)
	require.Empty(testInstance, standardError)
}

func TestEmbeddedDefaultConfigurationIsCopied(testInstance *testing.T) {
	first, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)
	require.Contains(testInstance, string(first), "backend: native")

	first[0] = '!'
	second, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, first[0], second[0])
}

func TestNewDiscovererRejectsUnknownBackend(testInstance *testing.T) {
	_, discovererError := cli.NewDiscoverer("libgit2", zap.NewNop())
	require.EqualError(testInstance, discovererError, "unsupported backend: libgit2")

	for _, backend := range []string{cli.BackendNative, cli.BackendCLI} {
		discoverer, creationError := cli.NewDiscoverer(backend, zap.NewNop())
		require.NoError(testInstance, creationError)
		require.NotNil(testInstance, discoverer)
	}
}
