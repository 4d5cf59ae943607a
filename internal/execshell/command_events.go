package execshell

import "sync/atomic"

// CommandEventObserver receives lifecycle notifications for shell commands.
// Observers may be called from several goroutines at once.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// CommandCounter tallies executed commands. Commands that exit non-zero count
// as completed and as failed; commands that could not start count only as failed.
type CommandCounter struct {
	started   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewCommandCounter constructs a zeroed CommandCounter.
func NewCommandCounter() *CommandCounter {
	return &CommandCounter{}
}

// CommandStarted implements CommandEventObserver.
func (counter *CommandCounter) CommandStarted(ShellCommand) {
	counter.started.Add(1)
}

// CommandCompleted implements CommandEventObserver.
func (counter *CommandCounter) CommandCompleted(_ ShellCommand, result ExecutionResult) {
	counter.completed.Add(1)
	if result.ExitCode != 0 {
		counter.failed.Add(1)
	}
}

// CommandExecutionFailed implements CommandEventObserver.
func (counter *CommandCounter) CommandExecutionFailed(ShellCommand, error) {
	counter.failed.Add(1)
}

// Started reports how many commands were launched.
func (counter *CommandCounter) Started() int64 {
	return counter.started.Load()
}

// Completed reports how many commands ran to an exit status.
func (counter *CommandCounter) Completed() int64 {
	return counter.completed.Load()
}

// Failed reports how many commands exited non-zero or could not start.
func (counter *CommandCounter) Failed() int64 {
	return counter.failed.Load()
}
