package execshell

// CommandEventObserver receives lifecycle notifications for every git, gh,
// toolchain, and curl invocation the executor performs. Observers must not
// mutate the command they are handed.
type CommandEventObserver interface {
	// CommandStarted fires before the tool process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the tool exits, with its captured result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the tool could not be run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
