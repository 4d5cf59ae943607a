package revwalk

import (
	"errors"
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	commitNotFoundMessageConstant     = "commit not found"
	graphMissingMessageConstant       = "commit graph not configured"
	pushFailureTemplateConstant       = "push %s: %w"
	hideFailureTemplateConstant       = "hide %s: %w"
	hiddenMarkFailureTemplateConstant = "mark commits reachable from %s: %w"
	collectFailureTemplateConstant    = "collect commits reachable from %s: %w"
)

// ErrCommitNotFound is returned by a Graph when the commit object is unavailable.
var ErrCommitNotFound = errors.New(commitNotFoundMessageConstant)

// ErrGraphNotConfigured indicates the walker was created without a graph.
var ErrGraphNotConfigured = errors.New(graphMissingMessageConstant)

// Graph reports the parent identifiers of a commit.
type Graph interface {
	Parents(commitID string) ([]string, error)
}

// GraphFunc adapts a function to the Graph interface.
type GraphFunc func(commitID string) ([]string, error)

// Parents calls the wrapped function.
func (graphFunc GraphFunc) Parents(commitID string) ([]string, error) {
	return graphFunc(commitID)
}

// Walker yields commits reachable from pushed tips and not from hidden tips.
//
// The order is computed on the first call to Next. A commit is produced only
// after every commit in the walk that lists it as a parent.
type Walker struct {
	graph       Graph
	parentCache map[string][]string
	pushedTips  []string
	hiddenTips  []string
	ordered     []string
	position    int
	prepared    bool
	prepareErr  error
}

// NewWalker constructs a Walker over the provided graph.
func NewWalker(graph Graph) (*Walker, error) {
	if graph == nil {
		return nil, ErrGraphNotConfigured
	}
	return &Walker{graph: graph, parentCache: make(map[string][]string)}, nil
}

// Push adds a starting point for the walk.
func (walker *Walker) Push(commitID string) error {
	if _, lookupError := walker.parents(commitID); lookupError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, commitID, lookupError)
	}
	walker.pushedTips = append(walker.pushedTips, commitID)
	walker.prepared = false
	return nil
}

// Hide excludes the commit and all of its ancestors from the walk.
func (walker *Walker) Hide(commitID string) error {
	if _, lookupError := walker.parents(commitID); lookupError != nil {
		return fmt.Errorf(hideFailureTemplateConstant, commitID, lookupError)
	}
	walker.hiddenTips = append(walker.hiddenTips, commitID)
	walker.prepared = false
	return nil
}

// Next returns the next commit identifier or io.EOF when the walk is exhausted.
func (walker *Walker) Next() (string, error) {
	if !walker.prepared {
		walker.prepareErr = walker.prepare()
		walker.prepared = true
	}
	if walker.prepareErr != nil {
		return "", walker.prepareErr
	}
	if walker.position >= len(walker.ordered) {
		return "", io.EOF
	}
	commitID := walker.ordered[walker.position]
	walker.position++
	return commitID, nil
}

// Close releases the cached traversal state.
func (walker *Walker) Close() error {
	walker.parentCache = nil
	walker.ordered = nil
	walker.pushedTips = nil
	walker.hiddenTips = nil
	return nil
}

func (walker *Walker) parents(commitID string) ([]string, error) {
	if cachedParents, cached := walker.parentCache[commitID]; cached {
		return cachedParents, nil
	}
	parentIDs, lookupError := walker.graph.Parents(commitID)
	if lookupError != nil {
		return nil, lookupError
	}
	if walker.parentCache == nil {
		walker.parentCache = make(map[string][]string)
	}
	walker.parentCache[commitID] = parentIDs
	return parentIDs, nil
}

func (walker *Walker) prepare() error {
	walker.ordered = nil
	walker.position = 0

	hiddenCommits := mapset.NewThreadUnsafeSet[string]()
	for _, hiddenTip := range walker.hiddenTips {
		if markError := walker.markReachable(hiddenTip, hiddenCommits, nil); markError != nil {
			return fmt.Errorf(hiddenMarkFailureTemplateConstant, hiddenTip, markError)
		}
	}

	memberCommits := mapset.NewThreadUnsafeSet[string]()
	for _, pushedTip := range walker.pushedTips {
		if collectError := walker.markReachable(pushedTip, memberCommits, hiddenCommits); collectError != nil {
			return fmt.Errorf(collectFailureTemplateConstant, pushedTip, collectError)
		}
	}
	if memberCommits.IsEmpty() {
		return nil
	}

	pendingChildren := make(map[string]int, memberCommits.Cardinality())
	memberCommits.Each(func(commitID string) bool {
		for _, parentID := range walker.parentCache[commitID] {
			if memberCommits.ContainsOne(parentID) {
				pendingChildren[parentID]++
			}
		}
		return false
	})

	var pending []string
	for tipIndex := len(walker.pushedTips) - 1; tipIndex >= 0; tipIndex-- {
		pushedTip := walker.pushedTips[tipIndex]
		if memberCommits.ContainsOne(pushedTip) && pendingChildren[pushedTip] == 0 {
			pending = append(pending, pushedTip)
		}
	}

	emitted := mapset.NewThreadUnsafeSetWithSize[string](memberCommits.Cardinality())
	ordered := make([]string, 0, memberCommits.Cardinality())
	for len(pending) > 0 {
		commitID := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if !emitted.Add(commitID) {
			continue
		}
		ordered = append(ordered, commitID)

		parentIDs := walker.parentCache[commitID]
		for parentIndex := len(parentIDs) - 1; parentIndex >= 0; parentIndex-- {
			parentID := parentIDs[parentIndex]
			if !memberCommits.ContainsOne(parentID) {
				continue
			}
			pendingChildren[parentID]--
			if pendingChildren[parentID] == 0 {
				pending = append(pending, parentID)
			}
		}
	}

	walker.ordered = ordered
	return nil
}

// markReachable adds every commit reachable from startID to reached, stopping at
// commits contained in boundary. Unavailable commits end their branch.
func (walker *Walker) markReachable(startID string, reached mapset.Set[string], boundary mapset.Set[string]) error {
	stack := []string{startID}
	for len(stack) > 0 {
		commitID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached.ContainsOne(commitID) {
			continue
		}
		if boundary != nil && boundary.ContainsOne(commitID) {
			continue
		}
		parentIDs, lookupError := walker.parents(commitID)
		if lookupError != nil {
			if errors.Is(lookupError, ErrCommitNotFound) {
				continue
			}
			return lookupError
		}
		reached.Add(commitID)
		stack = append(stack, parentIDs...)
	}
	return nil
}
