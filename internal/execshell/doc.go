// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and typed errors,
// and OSCommandRunner is the default runner backed by os/exec. The git
// command-line backend of the submodule report runs every git invocation
// through this package so it can be replaced with a recording runner in tests.
package execshell
