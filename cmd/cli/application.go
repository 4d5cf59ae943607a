package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/submodule-commitmsg/internal/execshell"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo/gitcli"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo/native"
	"github.com/temirov/submodule-commitmsg/internal/submodules"
	"github.com/temirov/submodule-commitmsg/internal/utils"
	"github.com/temirov/submodule-commitmsg/internal/utils/flags"
	pathutils "github.com/temirov/submodule-commitmsg/internal/utils/path"
)

const (
	applicationNameConstant                 = "submodule-commitmsg"
	applicationUseConstant                  = applicationNameConstant + " [path-or-name ...]"
	applicationShortDescriptionConstant     = "Draft a commit message for submodule pointer updates"
	applicationLongDescriptionConstant      = "submodule-commitmsg compares every submodule's recorded commit with the commit checked out in its working tree and prints a commit message listing the commits added and dropped. Positional arguments restrict the report to submodules with those names."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Diagnostic log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Diagnostic log encoding."
	backendFlagNameConstant                 = "backend"
	backendFlagUsageConstant                = "Repository access backend."
	concurrencyFlagNameConstant             = "concurrency"
	concurrencyFlagUsageConstant            = "Number of submodules inspected in parallel."
	outputFlagNameConstant                  = "output"
	outputFlagUsageConstant                 = "Report format."
	repositoryFlagNameConstant              = "repository"
	repositoryFlagUsageConstant             = "Directory where the repository search starts."
	commonLogLevelConfigKeyConstant         = "common.log_level"
	commonLogFormatConfigKeyConstant        = "common.log_format"
	reportBackendConfigKeyConstant          = "report.backend"
	reportConcurrencyConfigKeyConstant      = "report.concurrency"
	reportOutputFormatConfigKeyConstant     = "report.output_format"
	reportRepositoryConfigKeyConstant       = "report.repository"
	reportSubmodulesConfigKeyConstant       = "report.submodules"
	environmentPrefixConstant               = "SUBMODULE_COMMITMSG"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	defaultRepositoryPathConstant           = "."
	defaultConcurrencyConstant              = 1
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationBackendFieldConstant       = "backend"
	configurationFileFieldConstant          = "config_file"
	commandsExecutedMessageConstant         = "external commands executed"
	commandsStartedFieldConstant            = "commands"
	commandsFailedFieldConstant             = "failed_commands"
	noUpdatesMessageConstant                = "no submodule updates"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	unsupportedBackendTemplateConstant      = "unsupported backend: %s"
	unsupportedOutputTemplateConstant       = "unsupported output format: %s"
	invalidConcurrencyTemplateConstant      = "concurrency must be positive: %d"
	executorCreationErrorTemplateConstant   = "unable to create git executor: %w"
	reportRenderErrorTemplateConstant       = "unable to render report: %w"
	reportWriteErrorTemplateConstant        = "unable to write report: %w"
	fatalDiagnosticTemplateConstant         = "%s: %v\n"
	developmentVersionConstant              = "(devel)"
	failureExitCodeConstant                 = 1
	successExitCodeConstant                 = 0
)

// Backend and output format names accepted by the configuration and flags.
const (
	BackendNative    = "native"
	BackendCLI       = "cli"
	OutputFormatText = "text"
	OutputFormatYAML = "yaml"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Report ReportConfiguration            `mapstructure:"report"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ReportConfiguration controls how submodule updates are collected and printed.
type ReportConfiguration struct {
	Backend      string   `mapstructure:"backend"`
	Concurrency  int      `mapstructure:"concurrency"`
	OutputFormat string   `mapstructure:"output_format"`
	Repository   string   `mapstructure:"repository"`
	Submodules   []string `mapstructure:"submodules"`
}

// DiscovererFactory builds the repository discoverer for a backend name.
// Backends that run external commands apply executorOptions to their executor.
type DiscovererFactory func(backend string, logger *zap.Logger, executorOptions ...execshell.ShellExecutorOption) (gitrepo.Discoverer, error)

// ApplicationOption customizes an Application.
type ApplicationOption func(*Application)

// WithStandardStreams redirects report output and diagnostics.
func WithStandardStreams(standardOutput io.Writer, standardError io.Writer) ApplicationOption {
	return func(application *Application) {
		application.standardOutput = standardOutput
		application.standardError = standardError
	}
}

// WithDiscovererFactory replaces the backend selection.
func WithDiscovererFactory(factory DiscovererFactory) ApplicationOption {
	return func(application *Application) {
		if factory != nil {
			application.discovererFactory = factory
		}
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	homeExpander          *pathutils.HomeExpander
	discovererFactory     DiscovererFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     *flags.ChoiceValue
	logFormatFlagValue    *flags.ChoiceValue
	backendFlagValue      *flags.ChoiceValue
	outputFlagValue       *flags.ChoiceValue
	concurrencyFlagValue  int
	repositoryFlagValue   string
	standardOutput        io.Writer
	standardError         io.Writer
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	application := &Application{
		homeExpander:      pathutils.NewHomeExpander(),
		discovererFactory: NewDiscoverer,
		logger:            zap.NewNop(),
		standardOutput:    os.Stdout,
		standardError:     os.Stderr,
	}
	for _, option := range options {
		option(application)
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)
	application.loggerFactory = utils.NewLoggerFactoryWithOutput(application.standardError)

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}
	cobraCommand.SetOut(application.standardOutput)
	cobraCommand.SetErr(application.standardError)

	flagSet := cobraCommand.PersistentFlags()
	flagSet.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	application.logLevelFlagValue = flags.AddChoiceFlag(flagSet, logLevelFlagNameConstant, string(utils.LogLevelError), utils.SupportedLogLevels(), logLevelFlagUsageConstant)
	application.logFormatFlagValue = flags.AddChoiceFlag(flagSet, logFormatFlagNameConstant, string(utils.LogFormatConsole), utils.SupportedLogFormats(), logFormatFlagUsageConstant)
	application.backendFlagValue = flags.AddChoiceFlag(flagSet, backendFlagNameConstant, BackendNative, []string{BackendNative, BackendCLI}, backendFlagUsageConstant)
	application.outputFlagValue = flags.AddChoiceFlag(flagSet, outputFlagNameConstant, OutputFormatText, []string{OutputFormatText, OutputFormatYAML}, outputFlagUsageConstant)
	flagSet.IntVar(&application.concurrencyFlagValue, concurrencyFlagNameConstant, defaultConcurrencyConstant, concurrencyFlagUsageConstant)
	flagSet.StringVar(&application.repositoryFlagValue, repositoryFlagNameConstant, defaultRepositoryPathConstant, repositoryFlagUsageConstant)

	application.rootCommand = cobraCommand
	return application
}

// Execute runs the root command with the provided arguments and flushes the logger.
func (application *Application) Execute(executionContext context.Context, arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := utils.SyncLogger(application.logger); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Run executes the command line in processArguments (program name first) and
// returns the process exit status. Fatal errors are reported on standard error
// as "<program>: <reason>".
func Run(processArguments []string) int {
	return RunWithOptions(context.Background(), processArguments)
}

// RunWithOptions is Run with application options applied.
func RunWithOptions(executionContext context.Context, processArguments []string, options ...ApplicationOption) int {
	programName := applicationNameConstant
	var arguments []string
	if len(processArguments) > 0 {
		programName = filepath.Base(processArguments[0])
		arguments = processArguments[1:]
	}

	application := NewApplication(options...)
	if executionError := application.Execute(executionContext, arguments); executionError != nil {
		diagnosticColor := color.New(color.FgRed)
		if !isTerminal(application.standardError) {
			diagnosticColor.DisableColor()
		}
		_, _ = diagnosticColor.Fprintf(application.standardError, fatalDiagnosticTemplateConstant, programName, executionError)
		return failureExitCodeConstant
	}
	return successExitCodeConstant
}

// NewDiscoverer returns the repository discoverer for backend.
func NewDiscoverer(backend string, logger *zap.Logger, executorOptions ...execshell.ShellExecutorOption) (gitrepo.Discoverer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendNative:
		return native.NewDiscoverer(), nil
	case BackendCLI:
		executor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
		if executorError != nil {
			return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
		}
		discoverer, discovererError := gitcli.NewDiscoverer(executor)
		if discovererError != nil {
			return nil, discovererError
		}
		return discoverer, nil
	default:
		return nil, fmt.Errorf(unsupportedBackendTemplateConstant, backend)
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:     string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:    string(utils.LogFormatConsole),
		reportBackendConfigKeyConstant:      BackendNative,
		reportConcurrencyConfigKeyConstant:  defaultConcurrencyConstant,
		reportOutputFormatConfigKeyConstant: OutputFormatText,
		reportRepositoryConfigKeyConstant:   defaultRepositoryPathConstant,
		reportSubmodulesConfigKeyConstant:   []string{},
	}

	configurationFilePath := application.homeExpander.Expand(application.configurationFilePath)
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationBackendFieldConstant, application.configuration.Report.Backend),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue.String()
	}
	if persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue.String()
	}
	if persistentFlagChanged(command, backendFlagNameConstant) {
		application.configuration.Report.Backend = application.backendFlagValue.String()
	}
	if persistentFlagChanged(command, outputFlagNameConstant) {
		application.configuration.Report.OutputFormat = application.outputFlagValue.String()
	}
	if persistentFlagChanged(command, concurrencyFlagNameConstant) {
		application.configuration.Report.Concurrency = application.concurrencyFlagValue
	}
	if persistentFlagChanged(command, repositoryFlagNameConstant) {
		application.configuration.Report.Repository = application.repositoryFlagValue
	}
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	reportConfiguration := application.configuration.Report
	if reportConfiguration.Concurrency < 1 {
		return fmt.Errorf(invalidConcurrencyTemplateConstant, reportConfiguration.Concurrency)
	}
	outputFormat := strings.ToLower(strings.TrimSpace(reportConfiguration.OutputFormat))
	if outputFormat != OutputFormatText && outputFormat != OutputFormatYAML {
		return fmt.Errorf(unsupportedOutputTemplateConstant, reportConfiguration.OutputFormat)
	}

	commandCounter := execshell.NewCommandCounter()
	discoverer, discovererError := application.discovererFactory(reportConfiguration.Backend, application.logger, execshell.WithCommandEventObserver(commandCounter))
	if discovererError != nil {
		return discovererError
	}
	service, serviceError := submodules.NewService(submodules.ServiceDependencies{Discoverer: discoverer, Logger: application.logger})
	if serviceError != nil {
		return serviceError
	}

	filters := arguments
	if len(filters) == 0 {
		filters = reportConfiguration.Submodules
	}

	updates, collectError := service.Collect(command.Context(), submodules.Options{
		RepositoryPath: application.homeExpander.Expand(reportConfiguration.Repository),
		Filters:        filters,
		Concurrency:    reportConfiguration.Concurrency,
	})
	application.logger.Debug(
		commandsExecutedMessageConstant,
		zap.Int64(commandsStartedFieldConstant, commandCounter.Started()),
		zap.Int64(commandsFailedFieldConstant, commandCounter.Failed()),
	)
	if collectError != nil {
		return collectError
	}
	if len(updates) == 0 {
		application.logger.Debug(noUpdatesMessageConstant)
		return nil
	}

	return application.writeReport(submodules.Render(updates), outputFormat)
}

func (application *Application) writeReport(report submodules.Report, outputFormat string) error {
	renderedReport := report.Text()
	if outputFormat == OutputFormatYAML {
		yamlReport, renderError := report.YAML()
		if renderError != nil {
			return fmt.Errorf(reportRenderErrorTemplateConstant, renderError)
		}
		renderedReport = yamlReport
	}
	if _, writeError := io.WriteString(application.standardOutput, renderedReport); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	flagSetsToInspect := []*pflag.FlagSet{command.PersistentFlags(), command.InheritedFlags()}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}
	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

// configurationSearchPaths lists the working directory, then the per-user
// configuration directory.
func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}

func resolveVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(buildInformation.Main.Version) == 0 {
		return developmentVersionConstant
	}
	return buildInformation.Main.Version
}

func isTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
