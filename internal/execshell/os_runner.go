package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

const (
	environmentAssignmentSeparatorConstant = "="
	localeEnvironmentVariableConstant      = "LC_ALL"
	localeEnvironmentValueConstant         = "C"
	promptEnvironmentVariableConstant      = "GIT_TERMINAL_PROMPT"
	promptEnvironmentValueConstant         = "0"
)

// OSCommandRunner executes commands using the operating system facilities.
//
// Every command runs with the C locale and terminal prompts disabled so that
// parsed output is stable and a missing credential never blocks the run.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command. A non-zero exit is reported through
// ExecutionResult.ExitCode; only failures to start return an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = commandEnvironment(command.Details.EnvironmentVariables)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	exitCode := 0
	if runError := executable.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		exitCode = exitError.ExitCode()
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       exitCode,
	}, nil
}

// commandEnvironment appends overrides after the inherited environment; later
// assignments win in os/exec.
func commandEnvironment(overrides map[string]string) []string {
	environment := append([]string{}, os.Environ()...)
	environment = append(environment,
		localeEnvironmentVariableConstant+environmentAssignmentSeparatorConstant+localeEnvironmentValueConstant,
		promptEnvironmentVariableConstant+environmentAssignmentSeparatorConstant+promptEnvironmentValueConstant,
	)
	for environmentKey, environmentValue := range overrides {
		environment = append(environment, environmentKey+environmentAssignmentSeparatorConstant+environmentValue)
	}
	return environment
}
