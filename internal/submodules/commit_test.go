package submodules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
	"github.com/temirov/submodule-commitmsg/internal/submodules"
)

func TestSummarize(testInstance *testing.T) {
	testCases := []struct {
		name            string
		commitID        string
		expectedSummary submodules.CommitSummary
		expectedError   error
	}{
		{
			name:            "first_line_of_multiline_message",
			commitID:        testBaseCommitConstant,
			expectedSummary: submodules.CommitSummary{ID: "1111111", Title: "Base change"},
		},
		{
			name:            "empty_message_has_no_title",
			commitID:        testSideCommitConstant,
			expectedSummary: submodules.CommitSummary{ID: "5555555"},
		},
		{
			name:          "unreadable_commit",
			commitID:      testBrokenCommitConstant,
			expectedError: gitrepo.ErrObjectNotFound,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			summary, summaryError := submodules.Summarize(context.Background(), newHistoryRepository(), testCase.commitID)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, summaryError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, summaryError)
			require.Equal(testInstance, testCase.expectedSummary, summary)
		})
	}
}

func TestSummarizeRequiresShortID(testInstance *testing.T) {
	repository := newHistoryRepository()
	delete(repository.shortIDs, testMainCommitConstant)

	_, summaryError := submodules.Summarize(context.Background(), repository, testMainCommitConstant)
	require.ErrorIs(testInstance, summaryError, gitrepo.ErrObjectNotFound)
}
