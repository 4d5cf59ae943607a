package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
	"github.com/temirov/submodule-commitmsg/internal/revwalk"
)

const (
	resolvePathErrorTemplateConstant    = "resolve %s: %w"
	openRepositoryErrorTemplateConstant = "open repository at %s: %w"
	invalidCommitIDTemplateConstant     = "invalid commit identifier %q: %w"
	loadCommitErrorTemplateConstant     = "load commit %s: %w"
	worktreeErrorTemplateConstant       = "open worktree: %w"
)

// Discoverer opens repositories with go-git, searching parent directories for
// the enclosing working tree.
type Discoverer struct{}

// NewDiscoverer constructs a Discoverer.
func NewDiscoverer() Discoverer {
	return Discoverer{}
}

// Discover opens the repository that contains the provided path.
func (Discoverer) Discover(executionContext context.Context, path string) (gitrepo.Repository, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return nil, fmt.Errorf(resolvePathErrorTemplateConstant, path, absoluteError)
	}
	return openRepository(absolutePath, true)
}

// Repository adapts a go-git repository to gitrepo.Repository.
type Repository struct {
	repository *gitlib.Repository
	root       string
}

func openRepository(path string, detectDotGit bool) (*Repository, error) {
	repository, openError := gitlib.PlainOpenWithOptions(path, &gitlib.PlainOpenOptions{DetectDotGit: detectDotGit})
	if openError != nil {
		if errors.Is(openError, gitlib.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, path, gitrepo.ErrRepositoryNotFound)
		}
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, path, openError)
	}

	root := path
	worktree, worktreeError := repository.Worktree()
	if worktreeError == nil {
		root = worktree.Filesystem.Root()
	}
	return &Repository{repository: repository, root: root}, nil
}

// Root returns the working tree root, or the opened path for bare repositories.
func (repository *Repository) Root() string {
	return repository.root
}

// Commit loads a commit object.
func (repository *Repository) Commit(executionContext context.Context, commitID string) (gitrepo.Commit, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return gitrepo.Commit{}, contextError
	}
	hash, parseError := parseCommitID(commitID)
	if parseError != nil {
		return gitrepo.Commit{}, parseError
	}
	commitObject, lookupError := repository.repository.CommitObject(hash)
	if lookupError != nil {
		return gitrepo.Commit{}, fmt.Errorf(loadCommitErrorTemplateConstant, commitID, translateObjectError(lookupError))
	}
	return gitrepo.Commit{ID: commitObject.Hash.String(), Message: commitObject.Message}, nil
}

// NewRevisionWalk returns a walker over this repository's commit graph.
func (repository *Repository) NewRevisionWalk(executionContext context.Context) (gitrepo.RevisionWalk, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	return revwalk.NewWalker(revwalk.GraphFunc(repository.parents))
}

// Close releases descriptors held by the object storage.
func (repository *Repository) Close() error {
	if closer, closable := repository.repository.Storer.(io.Closer); closable {
		return closer.Close()
	}
	return nil
}

func (repository *Repository) parents(commitID string) ([]string, error) {
	if !plumbing.IsHash(commitID) {
		return nil, revwalk.ErrCommitNotFound
	}
	commitObject, lookupError := repository.repository.CommitObject(plumbing.NewHash(commitID))
	if lookupError != nil {
		if errors.Is(lookupError, plumbing.ErrObjectNotFound) {
			return nil, revwalk.ErrCommitNotFound
		}
		return nil, lookupError
	}
	parentIDs := make([]string, 0, len(commitObject.ParentHashes))
	for _, parentHash := range commitObject.ParentHashes {
		parentIDs = append(parentIDs, parentHash.String())
	}
	return parentIDs, nil
}

func parseCommitID(commitID string) (plumbing.Hash, error) {
	if !plumbing.IsHash(commitID) {
		return plumbing.ZeroHash, fmt.Errorf(invalidCommitIDTemplateConstant, commitID, gitrepo.ErrObjectNotFound)
	}
	return plumbing.NewHash(commitID), nil
}

func translateObjectError(lookupError error) error {
	if errors.Is(lookupError, plumbing.ErrObjectNotFound) {
		return gitrepo.ErrObjectNotFound
	}
	return lookupError
}
