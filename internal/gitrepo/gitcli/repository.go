package gitcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/submodule-commitmsg/internal/execshell"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	gitRevParseSubcommandConstant    = "rev-parse"
	gitShowToplevelFlagConstant      = "--show-toplevel"
	gitAbsoluteGitDirFlagConstant    = "--absolute-git-dir"
	gitVerifyFlagConstant            = "--verify"
	gitQuietFlagConstant             = "--quiet"
	gitShortFlagConstant             = "--short"
	gitCatFileSubcommandConstant     = "cat-file"
	gitCommitObjectTypeConstant      = "commit"
	gitCommitPeelSuffixConstant      = "^{commit}"
	gitHeadReferenceConstant         = "HEAD"
	commitHeaderTerminatorConstant   = "\n\n"
	executorMissingMessageConstant   = "git executor not configured"
	resolvePathErrorTemplateConstant = "resolve %s: %w"
	discoverErrorTemplateConstant    = "discover repository at %s: %w"
	shortIDErrorTemplateConstant     = "short id for %s: %w"
	loadCommitErrorTemplateConstant  = "load commit %s: %w"
	sentinelWrapTemplateConstant     = "%w: %w"
)

// ErrExecutorNotConfigured indicates the backend was created without a git executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Discoverer locates repositories with git rev-parse.
type Discoverer struct {
	executor GitExecutor
}

// NewDiscoverer validates the executor and constructs a Discoverer.
func NewDiscoverer(executor GitExecutor) (*Discoverer, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Discoverer{executor: executor}, nil
}

// Discover resolves the repository that contains the provided path.
func (discoverer *Discoverer) Discover(executionContext context.Context, path string) (gitrepo.Repository, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return nil, fmt.Errorf(resolvePathErrorTemplateConstant, path, absoluteError)
	}
	workingDirectory := absolutePath
	if pathInfo, statError := os.Stat(absolutePath); statError != nil {
		return nil, fmt.Errorf(discoverErrorTemplateConstant, absolutePath, gitrepo.ErrRepositoryNotFound)
	} else if !pathInfo.IsDir() {
		workingDirectory = filepath.Dir(absolutePath)
	}

	gitDirectory, gitDirectoryError := runTrimmed(executionContext, discoverer.executor, workingDirectory, gitRevParseSubcommandConstant, gitAbsoluteGitDirFlagConstant)
	if gitDirectoryError != nil {
		return nil, fmt.Errorf(discoverErrorTemplateConstant, absolutePath, translateCommandError(gitDirectoryError, gitrepo.ErrRepositoryNotFound))
	}

	toplevel, toplevelError := runTrimmed(executionContext, discoverer.executor, workingDirectory, gitRevParseSubcommandConstant, gitShowToplevelFlagConstant)
	if toplevelError != nil || len(toplevel) == 0 {
		return &Repository{executor: discoverer.executor, root: gitDirectory, bare: true}, nil
	}
	return &Repository{executor: discoverer.executor, root: toplevel}, nil
}

// Repository runs git commands against a single working tree.
type Repository struct {
	executor GitExecutor
	root     string
	bare     bool
}

// Root returns the working tree root.
func (repository *Repository) Root() string {
	return repository.root
}

// ShortID abbreviates the commit identifier with git rev-parse --short.
func (repository *Repository) ShortID(executionContext context.Context, commitID string) (string, error) {
	shortID, revParseError := runTrimmed(executionContext, repository.executor, repository.root, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, gitShortFlagConstant, commitID+gitCommitPeelSuffixConstant)
	if revParseError != nil {
		return "", fmt.Errorf(shortIDErrorTemplateConstant, commitID, translateCommandError(revParseError, gitrepo.ErrObjectNotFound))
	}
	if len(shortID) == 0 {
		return "", fmt.Errorf(shortIDErrorTemplateConstant, commitID, gitrepo.ErrShortIDUnavailable)
	}
	return shortID, nil
}

// Commit reads the raw commit object and extracts its message.
func (repository *Repository) Commit(executionContext context.Context, commitID string) (gitrepo.Commit, error) {
	executionResult, catFileError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCatFileSubcommandConstant, gitCommitObjectTypeConstant, commitID},
		WorkingDirectory: repository.root,
	})
	if catFileError != nil {
		return gitrepo.Commit{}, fmt.Errorf(loadCommitErrorTemplateConstant, commitID, translateCommandError(catFileError, gitrepo.ErrObjectNotFound))
	}
	// A commit object without a header terminator carries no message.
	_, message, _ := strings.Cut(executionResult.StandardOutput, commitHeaderTerminatorConstant)
	return gitrepo.Commit{ID: commitID, Message: message}, nil
}

// NewRevisionWalk returns a walk backed by git rev-list.
func (repository *Repository) NewRevisionWalk(executionContext context.Context) (gitrepo.RevisionWalk, error) {
	return &revisionWalk{executionContext: executionContext, repository: repository}, nil
}

// Close is a no-op; the executable holds no state between invocations.
func (repository *Repository) Close() error {
	return nil
}

func (repository *Repository) verifyCommit(executionContext context.Context, commitID string) error {
	_, verifyError := runTrimmed(executionContext, repository.executor, repository.root, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, commitID+gitCommitPeelSuffixConstant)
	if verifyError != nil {
		return translateCommandError(verifyError, gitrepo.ErrObjectNotFound)
	}
	return nil
}

func runTrimmed(executionContext context.Context, executor GitExecutor, workingDirectory string, arguments ...string) (string, error) {
	executionResult, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// translateCommandError maps a non-zero git exit onto the provided sentinel and
// keeps the command failure in the chain.
func translateCommandError(commandError error, sentinel error) error {
	var failedError execshell.CommandFailedError
	if errors.As(commandError, &failedError) {
		return fmt.Errorf(sentinelWrapTemplateConstant, sentinel, commandError)
	}
	return commandError
}
