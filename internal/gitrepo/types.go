package gitrepo

import (
	"context"
	"errors"
	"strings"
)

const (
	repositoryNotFoundMessageConstant  = "repository not found"
	objectNotFoundMessageConstant      = "object not found"
	shortIDUnavailableMessageConstant  = "unable to compute short identifier"
	commitMessageLineSeparatorConstant = "\n"
	// MinimumShortIDLengthConstant mirrors git's default core.abbrev.
	MinimumShortIDLengthConstant = 7
)

// ErrRepositoryNotFound indicates no repository exists at or above the requested path.
var ErrRepositoryNotFound = errors.New(repositoryNotFoundMessageConstant)

// ErrObjectNotFound indicates the requested commit object does not exist in the repository.
var ErrObjectNotFound = errors.New(objectNotFoundMessageConstant)

// ErrShortIDUnavailable indicates the object store could not produce an abbreviated identifier.
var ErrShortIDUnavailable = errors.New(shortIDUnavailableMessageConstant)

// Commit captures the fields of a commit object used for reporting.
type Commit struct {
	ID      string
	Message string
}

// Title returns the first line of the commit message and whether one exists.
func (commit Commit) Title() (string, bool) {
	if len(commit.Message) == 0 {
		return "", false
	}
	firstLine, _, _ := strings.Cut(commit.Message, commitMessageLineSeparatorConstant)
	if len(firstLine) == 0 {
		return "", false
	}
	return firstLine, true
}

// Discoverer locates the repository enclosing a filesystem path.
type Discoverer interface {
	Discover(executionContext context.Context, path string) (Repository, error)
}

// Repository exposes the object-level operations of a single repository.
type Repository interface {
	// Root returns the absolute path of the repository working tree.
	Root() string
	// Submodules enumerates the submodules declared by the repository, sorted by path.
	Submodules(executionContext context.Context) ([]Submodule, error)
	// ShortID returns the shortest unambiguous prefix of the commit identifier.
	ShortID(executionContext context.Context, commitID string) (string, error)
	// Commit loads the commit object with the provided identifier.
	Commit(executionContext context.Context, commitID string) (Commit, error)
	// NewRevisionWalk prepares a topological history traversal.
	NewRevisionWalk(executionContext context.Context) (RevisionWalk, error)
	// Close releases resources held by the repository handle.
	Close() error
}

// Submodule describes a submodule entry of a superproject.
type Submodule interface {
	Name() string
	Path() string
	// HeadID returns the commit recorded for the submodule in the superproject HEAD.
	HeadID() (string, bool)
	// WorkdirID returns the commit currently checked out in the submodule working tree.
	WorkdirID() (string, bool)
	// Open opens the submodule's own repository.
	Open(executionContext context.Context) (Repository, error)
}

// RevisionWalk visits commits reachable from pushed tips but not from hidden tips.
//
// Next yields full commit identifiers in topological order (children before
// parents) and returns io.EOF once the walk is exhausted.
type RevisionWalk interface {
	Push(commitID string) error
	Hide(commitID string) error
	Next() (string, error)
	Close() error
}
