package submodules

import (
	"context"
	"fmt"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	// ShortIDPlaceholderConstant replaces an endpoint identifier that could not be abbreviated.
	ShortIDPlaceholderConstant       = "???????"
	summarizeFailureTemplateConstant = "summarize %s: %w"
)

// CommitSummary is the display form of a commit: its short identifier and the
// first line of its message. An empty Title means the commit has none.
type CommitSummary struct {
	ID    string
	Title string
}

// ResolveShortID returns the shortest unambiguous prefix of commitID within repository.
func ResolveShortID(executionContext context.Context, repository gitrepo.Repository, commitID string) (string, error) {
	return repository.ShortID(executionContext, commitID)
}

// Summarize loads the commit and builds its display record.
func Summarize(executionContext context.Context, repository gitrepo.Repository, commitID string) (CommitSummary, error) {
	commit, commitError := repository.Commit(executionContext, commitID)
	if commitError != nil {
		return CommitSummary{}, fmt.Errorf(summarizeFailureTemplateConstant, commitID, commitError)
	}
	shortID, shortIDError := ResolveShortID(executionContext, repository, commitID)
	if shortIDError != nil {
		return CommitSummary{}, fmt.Errorf(summarizeFailureTemplateConstant, commitID, shortIDError)
	}
	title, _ := commit.Title()
	return CommitSummary{ID: shortID, Title: title}, nil
}

func shortIDOrPlaceholder(executionContext context.Context, repository gitrepo.Repository, commitID string) (string, error) {
	shortID, shortIDError := ResolveShortID(executionContext, repository, commitID)
	if shortIDError != nil {
		return ShortIDPlaceholderConstant, shortIDError
	}
	return shortID, nil
}
