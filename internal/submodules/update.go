package submodules

import "strings"

const (
	fastForwardSeparatorConstant = ".."
	divergentSeparatorConstant   = "..."
	addedCommitPrefixConstant    = "+"
	droppedCommitPrefixConstant  = "-"
	commitTitleSeparatorConstant = " "
	messageLineSeparatorConstant = "\n"
)

// Update describes the move of one submodule.
//
// Title has the form "name (from..to)", with "..." instead of ".." when any
// commit was dropped. Message lists added commits as "+id title" followed by
// dropped commits as "-id title" and is empty when neither list has entries.
type Update struct {
	Name    string
	Title   string
	Message string
}

// HasMessage reports whether the update lists any commits.
func (update Update) HasMessage() bool {
	return len(update.Message) > 0
}

// BuildUpdate formats a submodule move. It performs no I/O.
func BuildUpdate(name string, fromID string, toID string, added []CommitSummary, dropped []CommitSummary) Update {
	separator := fastForwardSeparatorConstant
	if len(dropped) > 0 {
		separator = divergentSeparatorConstant
	}

	var titleBuilder strings.Builder
	titleBuilder.WriteString(name)
	titleBuilder.WriteString(" (")
	titleBuilder.WriteString(fromID)
	titleBuilder.WriteString(separator)
	titleBuilder.WriteString(toID)
	titleBuilder.WriteString(")")

	messageLines := make([]string, 0, len(added)+len(dropped))
	for _, summary := range added {
		messageLines = append(messageLines, formatCommitLine(addedCommitPrefixConstant, summary))
	}
	for _, summary := range dropped {
		messageLines = append(messageLines, formatCommitLine(droppedCommitPrefixConstant, summary))
	}

	return Update{
		Name:    name,
		Title:   titleBuilder.String(),
		Message: strings.Join(messageLines, messageLineSeparatorConstant),
	}
}

func formatCommitLine(prefix string, summary CommitSummary) string {
	if len(summary.Title) == 0 {
		return prefix + summary.ID
	}
	return prefix + summary.ID + commitTitleSeparatorConstant + summary.Title
}
