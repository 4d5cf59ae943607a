package native

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	dotGitEntryNameConstant             = ".git"
	listSubmodulesErrorTemplateConstant = "list submodules: %w"
)

// Submodules enumerates the submodules declared in .gitmodules, sorted by path.
func (repository *Repository) Submodules(executionContext context.Context) ([]gitrepo.Submodule, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		if errors.Is(worktreeError, gitlib.ErrIsBareRepository) {
			return nil, nil
		}
		return nil, fmt.Errorf(worktreeErrorTemplateConstant, worktreeError)
	}

	declaredSubmodules, listError := worktree.Submodules()
	if listError != nil {
		return nil, fmt.Errorf(listSubmodulesErrorTemplateConstant, listError)
	}

	headTree := repository.headTree()
	submodules := make([]gitrepo.Submodule, 0, len(declaredSubmodules))
	for _, declaredSubmodule := range declaredSubmodules {
		configuration := declaredSubmodule.Config()
		entry := &Submodule{
			name:          configuration.Name,
			path:          configuration.Path,
			directoryPath: filepath.Join(repository.root, filepath.FromSlash(configuration.Path)),
		}
		entry.headID, entry.hasHeadID = gitlinkID(headTree, configuration.Path)
		entry.workdirID, entry.hasWorkdirID = checkedOutID(entry.directoryPath)
		submodules = append(submodules, entry)
	}

	slices.SortFunc(submodules, func(left, right gitrepo.Submodule) int {
		return strings.Compare(left.Path(), right.Path())
	})
	return submodules, nil
}

func (repository *Repository) headTree() *object.Tree {
	headReference, headError := repository.repository.Head()
	if headError != nil {
		return nil
	}
	headCommit, commitError := repository.repository.CommitObject(headReference.Hash())
	if commitError != nil {
		return nil
	}
	tree, treeError := headCommit.Tree()
	if treeError != nil {
		return nil
	}
	return tree
}

func gitlinkID(tree *object.Tree, path string) (string, bool) {
	if tree == nil {
		return "", false
	}
	entry, findError := tree.FindEntry(path)
	if findError != nil || entry.Mode != filemode.Submodule {
		return "", false
	}
	return entry.Hash.String(), true
}

func checkedOutID(directoryPath string) (string, bool) {
	if _, statError := os.Stat(filepath.Join(directoryPath, dotGitEntryNameConstant)); statError != nil {
		return "", false
	}
	repository, openError := openRepository(directoryPath, false)
	if openError != nil {
		return "", false
	}
	defer releaseRepository(repository)
	headReference, headError := repository.repository.Head()
	if headError != nil {
		return "", false
	}
	return headReference.Hash().String(), true
}

// releaseRepository closes repositories opened only to read a checked-out HEAD.
var releaseRepository = func(repository *Repository) {
	_ = repository.Close()
}

// Submodule is a snapshot of one submodule's recorded and checked-out commits.
type Submodule struct {
	name          string
	path          string
	directoryPath string
	headID        string
	hasHeadID     bool
	workdirID     string
	hasWorkdirID  bool
}

// Name returns the logical submodule name from .gitmodules.
func (submodule *Submodule) Name() string {
	return submodule.name
}

// Path returns the submodule path relative to the superproject root.
func (submodule *Submodule) Path() string {
	return submodule.path
}

// HeadID returns the gitlink recorded in the superproject HEAD tree.
func (submodule *Submodule) HeadID() (string, bool) {
	return submodule.headID, submodule.hasHeadID
}

// WorkdirID returns the HEAD of the checked-out submodule repository.
func (submodule *Submodule) WorkdirID() (string, bool) {
	return submodule.workdirID, submodule.hasWorkdirID
}

// Open opens the submodule's repository without searching parent directories.
func (submodule *Submodule) Open(executionContext context.Context) (gitrepo.Repository, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	if _, statError := os.Stat(filepath.Join(submodule.directoryPath, dotGitEntryNameConstant)); statError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, submodule.directoryPath, gitrepo.ErrRepositoryNotFound)
	}
	return openRepository(submodule.directoryPath, false)
}
