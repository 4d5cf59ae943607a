package execshell

import (
	"fmt"
	"slices"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	gitRevParseSubcommandNameConstant       = "rev-parse"
	gitShowToplevelFlagConstant             = "--show-toplevel"
	gitShortFlagConstant                    = "--short"
	gitConfigSubcommandNameConstant         = "config"
	gitLSTreeSubcommandNameConstant         = "ls-tree"
	gitCatFileSubcommandNameConstant        = "cat-file"
	gitRevListSubcommandNameConstant        = "rev-list"
)

// gitMessageTemplates hold lifecycle messages for one kind of git command.
// Arguments are indexed: 1 the last command argument, 2 the working
// directory, 3 the exit code, 4 the standard error suffix. An empty template
// falls back to the generic message.
type gitMessageTemplates struct {
	start   string
	success string
	failure string
}

var (
	toplevelMessages = gitMessageTemplates{
		start:   "Locating repository enclosing %[2]s",
		success: "Located repository enclosing %[2]s",
	}
	abbreviateMessages = gitMessageTemplates{
		start:   "Abbreviating %[1]s in %[2]s",
		failure: "Unable to abbreviate %[1]s in %[2]s (exit code %[3]d%[4]s)",
	}
	resolveMessages = gitMessageTemplates{
		start:   "Resolving %[1]s in %[2]s",
		failure: "Unable to resolve %[1]s in %[2]s (exit code %[3]d%[4]s)",
	}
	submoduleDeclarationMessages = gitMessageTemplates{
		start:   "Reading submodule declarations in %[2]s",
		success: "Read submodule declarations in %[2]s",
	}
	recordedCommitMessages = gitMessageTemplates{
		start: "Reading recorded commit of %[1]s in %[2]s",
	}
	loadCommitMessages = gitMessageTemplates{
		start:   "Loading commit %[1]s in %[2]s",
		failure: "Unable to load commit %[1]s in %[2]s (exit code %[3]d%[4]s)",
	}
	revisionListMessages = gitMessageTemplates{
		start:   "Listing commits in %[2]s",
		success: "Listed commits in %[2]s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if templates, known := gitMessageTemplatesFor(command); known && len(templates.start) > 0 {
		return formatGitMessage(templates.start, command, ExecutionResult{})
	}
	return fmt.Sprintf(genericStartTemplateConstant, commandLabel(command))
}

// BuildSuccessMessage describes a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if templates, known := gitMessageTemplatesFor(command); known && len(templates.success) > 0 {
		return formatGitMessage(templates.success, command, ExecutionResult{})
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel(command))
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	if templates, known := gitMessageTemplatesFor(command); known && len(templates.failure) > 0 {
		return formatGitMessage(templates.failure, command, result)
	}
	return fmt.Sprintf(genericFailureTemplateConstant, commandLabel(command), result.ExitCode, standardErrorSuffix(result.StandardError))
}

// BuildExecutionFailureMessage describes a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureDescription := unknownFailureMessageConstant
	if failure != nil {
		failureDescription = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel(command), failureDescription)
}

func gitMessageTemplatesFor(command ShellCommand) (gitMessageTemplates, bool) {
	arguments := command.Details.Arguments
	if command.Name != CommandGit || len(arguments) == 0 {
		return gitMessageTemplates{}, false
	}
	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		switch {
		case slices.Contains(arguments, gitShowToplevelFlagConstant):
			return toplevelMessages, true
		case slices.Contains(arguments, gitShortFlagConstant):
			return abbreviateMessages, true
		default:
			return resolveMessages, true
		}
	case gitConfigSubcommandNameConstant:
		return submoduleDeclarationMessages, true
	case gitLSTreeSubcommandNameConstant:
		return recordedCommitMessages, true
	case gitCatFileSubcommandNameConstant:
		return loadCommitMessages, true
	case gitRevListSubcommandNameConstant:
		return revisionListMessages, true
	default:
		return gitMessageTemplates{}, false
	}
}

func formatGitMessage(template string, command ShellCommand, result ExecutionResult) string {
	subject := fallbackUnknownValueLabelConstant
	if arguments := command.Details.Arguments; len(arguments) > 0 {
		if lastArgument := strings.TrimSpace(arguments[len(arguments)-1]); len(lastArgument) > 0 {
			subject = lastArgument
		}
	}
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = defaultWorkingDirectoryLabelConstant
	}
	return fmt.Sprintf(template, subject, workingDirectory, result.ExitCode, standardErrorSuffix(result.StandardError))
}

func commandLabel(command ShellCommand) string {
	label := displayCommand(command)
	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplateConstant, workingDirectory)
	}
	return label
}

func standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
