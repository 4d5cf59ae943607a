// Package cli builds the submodule-commitmsg command: it loads configuration,
// constructs the logger and repository backend, collects submodule updates and
// prints the drafted commit message. Run is the only place that decides the
// process exit status.
package cli
