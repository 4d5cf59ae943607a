package submodules

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	// UnnamedSubmodulePlaceholderConstant names a submodule that has neither a path nor a configured name.
	UnnamedSubmodulePlaceholderConstant = "???"

	submoduleFieldConstant = "submodule"
	commitFieldConstant    = "commit"
	endpointFieldConstant  = "endpoint"
	fromEndpointConstant   = "from"
	toEndpointConstant     = "to"

	skipMissingHeadMessageConstant     = "skipping submodule without a recorded commit"
	skipMissingWorkdirMessageConstant  = "skipping submodule without a checkout"
	skipUnchangedMessageConstant       = "skipping unchanged submodule"
	openFailureMessageConstant         = "unable to open submodule repository; reporting the move without history"
	shortIDFailureMessageConstant      = "unable to abbreviate endpoint commit"
	walkCreationFailureMessageConstant = "unable to traverse submodule history"
	walkHideFailureMessageConstant     = "unable to exclude commit from traversal"
	walkPushFailureMessageConstant     = "unable to start traversal from commit"
	walkStepFailureMessageConstant     = "traversal stopped early"
	summaryFailureMessageConstant      = "omitting unreadable commit"
)

// DisplayName returns the submodule path, falling back to its configured name
// and then to a placeholder.
func DisplayName(submodule gitrepo.Submodule) string {
	if path := submodule.Path(); len(path) > 0 {
		return path
	}
	if name := submodule.Name(); len(name) > 0 {
		return name
	}
	return UnnamedSubmodulePlaceholderConstant
}

// Differ computes the update of a single submodule.
type Differ struct {
	logger *zap.Logger
}

// NewDiffer constructs a Differ; a nil logger discards diagnostics.
func NewDiffer(logger *zap.Logger) *Differ {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Differ{logger: logger}
}

// Diff returns the submodule's update and whether there is one to report.
//
// Submodules missing either endpoint, or whose endpoints are equal, yield no
// update. Failures inside the submodule repository degrade the update instead
// of aborting it; only a traversal that cannot be created suppresses it.
func (differ *Differ) Diff(executionContext context.Context, submodule gitrepo.Submodule) (Update, bool) {
	name := DisplayName(submodule)
	logger := differ.logger.With(zap.String(submoduleFieldConstant, name))

	fromID, hasFromID := submodule.HeadID()
	if !hasFromID {
		logger.Debug(skipMissingHeadMessageConstant)
		return Update{}, false
	}
	toID, hasToID := submodule.WorkdirID()
	if !hasToID {
		logger.Debug(skipMissingWorkdirMessageConstant)
		return Update{}, false
	}
	if fromID == toID {
		logger.Debug(skipUnchangedMessageConstant)
		return Update{}, false
	}

	repository, openError := submodule.Open(executionContext)
	if openError != nil {
		logger.Warn(openFailureMessageConstant, zap.Error(openError))
		return BuildUpdate(name, ShortIDPlaceholderConstant, ShortIDPlaceholderConstant, nil, nil), true
	}
	defer repository.Close()

	fromShortID, fromShortIDError := shortIDOrPlaceholder(executionContext, repository, fromID)
	if fromShortIDError != nil {
		logger.Warn(shortIDFailureMessageConstant, zap.String(endpointFieldConstant, fromEndpointConstant), zap.String(commitFieldConstant, fromID), zap.Error(fromShortIDError))
	}
	toShortID, toShortIDError := shortIDOrPlaceholder(executionContext, repository, toID)
	if toShortIDError != nil {
		logger.Warn(shortIDFailureMessageConstant, zap.String(endpointFieldConstant, toEndpointConstant), zap.String(commitFieldConstant, toID), zap.Error(toShortIDError))
	}

	added, addedAvailable := differ.collect(executionContext, logger, repository, toID, fromID)
	if !addedAvailable {
		return Update{}, false
	}
	dropped, droppedAvailable := differ.collect(executionContext, logger, repository, fromID, toID)
	if !droppedAvailable {
		return Update{}, false
	}

	return BuildUpdate(name, fromShortID, toShortID, added, dropped), true
}

// collect summarizes the commits reachable from includedID but not excludedID.
func (differ *Differ) collect(executionContext context.Context, logger *zap.Logger, repository gitrepo.Repository, includedID string, excludedID string) ([]CommitSummary, bool) {
	walk, walkError := repository.NewRevisionWalk(executionContext)
	if walkError != nil {
		logger.Warn(walkCreationFailureMessageConstant, zap.Error(walkError))
		return nil, false
	}
	defer walk.Close()

	if hideError := walk.Hide(excludedID); hideError != nil {
		logger.Warn(walkHideFailureMessageConstant, zap.String(commitFieldConstant, excludedID), zap.Error(hideError))
	}
	if pushError := walk.Push(includedID); pushError != nil {
		logger.Warn(walkPushFailureMessageConstant, zap.String(commitFieldConstant, includedID), zap.Error(pushError))
	}

	var summaries []CommitSummary
	for executionContext.Err() == nil {
		commitID, nextError := walk.Next()
		if errors.Is(nextError, io.EOF) {
			break
		}
		if nextError != nil {
			logger.Warn(walkStepFailureMessageConstant, zap.Error(nextError))
			break
		}
		summary, summaryError := Summarize(executionContext, repository, commitID)
		if summaryError != nil {
			logger.Warn(summaryFailureMessageConstant, zap.String(commitFieldConstant, commitID), zap.Error(summaryError))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, true
}
