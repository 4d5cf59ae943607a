package gitcli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/submodule-commitmsg/internal/execshell"
)

const (
	gitRevListSubcommandConstant   = "rev-list"
	gitTopoOrderFlagConstant       = "--topo-order"
	gitNotFlagConstant             = "--not"
	pushFailureTemplateConstant    = "push %s: %w"
	hideFailureTemplateConstant    = "hide %s: %w"
	revListFailureTemplateConstant = "list commits: %w"
)

// revisionWalk collects tips and runs a single rev-list on the first Next.
type revisionWalk struct {
	executionContext context.Context
	repository       *Repository
	pushedTips       []string
	hiddenTips       []string
	ordered          []string
	position         int
	loaded           bool
}

func (walk *revisionWalk) Push(commitID string) error {
	if verifyError := walk.repository.verifyCommit(walk.executionContext, commitID); verifyError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, commitID, verifyError)
	}
	walk.pushedTips = append(walk.pushedTips, commitID)
	return nil
}

func (walk *revisionWalk) Hide(commitID string) error {
	if verifyError := walk.repository.verifyCommit(walk.executionContext, commitID); verifyError != nil {
		return fmt.Errorf(hideFailureTemplateConstant, commitID, verifyError)
	}
	walk.hiddenTips = append(walk.hiddenTips, commitID)
	return nil
}

func (walk *revisionWalk) Next() (string, error) {
	if !walk.loaded {
		if loadError := walk.load(); loadError != nil {
			return "", loadError
		}
	}
	if walk.position >= len(walk.ordered) {
		return "", io.EOF
	}
	commitID := walk.ordered[walk.position]
	walk.position++
	return commitID, nil
}

func (walk *revisionWalk) Close() error {
	walk.ordered = nil
	walk.pushedTips = nil
	walk.hiddenTips = nil
	return nil
}

func (walk *revisionWalk) load() error {
	walk.loaded = true
	if len(walk.pushedTips) == 0 {
		return nil
	}
	arguments := append([]string{gitRevListSubcommandConstant, gitTopoOrderFlagConstant}, walk.pushedTips...)
	if len(walk.hiddenTips) > 0 {
		arguments = append(arguments, gitNotFlagConstant)
		arguments = append(arguments, walk.hiddenTips...)
	}
	executionResult, revListError := walk.repository.executor.ExecuteGit(walk.executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: walk.repository.root,
	})
	if revListError != nil {
		return fmt.Errorf(revListFailureTemplateConstant, revListError)
	}
	walk.ordered = strings.Fields(executionResult.StandardOutput)
	return nil
}
