package submodules_test

import (
	"context"
	"sync"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
	"github.com/temirov/submodule-commitmsg/internal/revwalk"
)

type fakeRepository struct {
	root            string
	shortIDs        map[string]string
	messages        map[string]string
	parents         map[string][]string
	submodules      []gitrepo.Submodule
	submodulesError error
	walkError       error

	mutex       sync.Mutex
	closedCount int
}

func (repository *fakeRepository) Root() string {
	return repository.root
}

func (repository *fakeRepository) Submodules(context.Context) ([]gitrepo.Submodule, error) {
	return repository.submodules, repository.submodulesError
}

func (repository *fakeRepository) ShortID(_ context.Context, commitID string) (string, error) {
	shortID, exists := repository.shortIDs[commitID]
	if !exists {
		return "", gitrepo.ErrObjectNotFound
	}
	return shortID, nil
}

func (repository *fakeRepository) Commit(_ context.Context, commitID string) (gitrepo.Commit, error) {
	message, exists := repository.messages[commitID]
	if !exists {
		return gitrepo.Commit{}, gitrepo.ErrObjectNotFound
	}
	return gitrepo.Commit{ID: commitID, Message: message}, nil
}

func (repository *fakeRepository) NewRevisionWalk(context.Context) (gitrepo.RevisionWalk, error) {
	if repository.walkError != nil {
		return nil, repository.walkError
	}
	return revwalk.NewWalker(revwalk.GraphFunc(func(commitID string) ([]string, error) {
		parentIDs, exists := repository.parents[commitID]
		if !exists {
			return nil, revwalk.ErrCommitNotFound
		}
		return parentIDs, nil
	}))
}

func (repository *fakeRepository) Close() error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.closedCount++
	return nil
}

type fakeSubmodule struct {
	name         string
	path         string
	headID       string
	hasHeadID    bool
	workdirID    string
	hasWorkdirID bool
	repository   *fakeRepository
	openError    error
}

func (submodule *fakeSubmodule) Name() string {
	return submodule.name
}

func (submodule *fakeSubmodule) Path() string {
	return submodule.path
}

func (submodule *fakeSubmodule) HeadID() (string, bool) {
	return submodule.headID, submodule.hasHeadID
}

func (submodule *fakeSubmodule) WorkdirID() (string, bool) {
	return submodule.workdirID, submodule.hasWorkdirID
}

func (submodule *fakeSubmodule) Open(context.Context) (gitrepo.Repository, error) {
	if submodule.openError != nil {
		return nil, submodule.openError
	}
	return submodule.repository, nil
}

type fakeDiscoverer struct {
	repository     *fakeRepository
	discoverError  error
	requestedPaths []string
}

func (discoverer *fakeDiscoverer) Discover(_ context.Context, path string) (gitrepo.Repository, error) {
	discoverer.requestedPaths = append(discoverer.requestedPaths, path)
	if discoverer.discoverError != nil {
		return nil, discoverer.discoverError
	}
	return discoverer.repository, nil
}

const (
	testRootCommitConstant   = "c0"
	testBaseCommitConstant   = "c1"
	testMainCommitConstant   = "c2"
	testSideCommitConstant   = "s2"
	testBrokenCommitConstant = "x3"
)

// newHistoryRepository models c0 <- c1 <- c2 with a side branch c1 <- s2 and
// a commit x3 on top of c2 whose object cannot be read.
func newHistoryRepository() *fakeRepository {
	return &fakeRepository{
		root: "/workspace/super/lib",
		shortIDs: map[string]string{
			testRootCommitConstant: "0000000",
			testBaseCommitConstant: "1111111",
			testMainCommitConstant: "2222222",
			testSideCommitConstant: "5555555",
		},
		messages: map[string]string{
			testRootCommitConstant: "Root\n",
			testBaseCommitConstant: "Base change\n\nLonger description.\n",
			testMainCommitConstant: "Main change\n",
			testSideCommitConstant: "",
		},
		parents: map[string][]string{
			testRootCommitConstant:   nil,
			testBaseCommitConstant:   {testRootCommitConstant},
			testMainCommitConstant:   {testBaseCommitConstant},
			testSideCommitConstant:   {testBaseCommitConstant},
			testBrokenCommitConstant: {testMainCommitConstant},
		},
	}
}

func movedSubmodule(path string, fromID string, toID string, repository *fakeRepository) *fakeSubmodule {
	return &fakeSubmodule{
		name:         path,
		path:         path,
		headID:       fromID,
		hasHeadID:    true,
		workdirID:    toID,
		hasWorkdirID: true,
		repository:   repository,
	}
}
