package submodules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/submodule-commitmsg/internal/submodules"
)

func TestBuildUpdate(testInstance *testing.T) {
	testCases := []struct {
		name            string
		added           []submodules.CommitSummary
		dropped         []submodules.CommitSummary
		expectedTitle   string
		expectedMessage string
	}{
		{
			name:          "no_commits",
			expectedTitle: "name (from..to)",
		},
		{
			name:            "added_with_title",
			added:           []submodules.CommitSummary{{ID: "0000000", Title: "commit"}},
			expectedTitle:   "name (from..to)",
			expectedMessage: "+0000000 commit",
		},
		{
			name:            "added_without_title",
			added:           []submodules.CommitSummary{{ID: "0000000"}},
			expectedTitle:   "name (from..to)",
			expectedMessage: "+0000000",
		},
		{
			name:            "dropped_with_title",
			dropped:         []submodules.CommitSummary{{ID: "0000000", Title: "commit"}},
			expectedTitle:   "name (from...to)",
			expectedMessage: "-0000000 commit",
		},
		{
			name:            "added_and_dropped",
			added:           []submodules.CommitSummary{{ID: "aaa", Title: "x"}},
			dropped:         []submodules.CommitSummary{{ID: "bbb", Title: "y"}},
			expectedTitle:   "name (from...to)",
			expectedMessage: "+aaa x\n-bbb y",
		},
		{
			name:            "added_lines_precede_dropped_lines",
			added:           []submodules.CommitSummary{{ID: "a2", Title: "second"}, {ID: "a1"}},
			dropped:         []submodules.CommitSummary{{ID: "d2"}, {ID: "d1", Title: "first"}},
			expectedTitle:   "name (from...to)",
			expectedMessage: "+a2 second\n+a1\n-d2\n-d1 first",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			update := submodules.BuildUpdate("name", "from", "to", testCase.added, testCase.dropped)
			require.Equal(testInstance, "name", update.Name)
			require.Equal(testInstance, testCase.expectedTitle, update.Title)
			require.Equal(testInstance, testCase.expectedMessage, update.Message)
			require.Equal(testInstance, len(testCase.added)+len(testCase.dropped) > 0, update.HasMessage())

			repeated := submodules.BuildUpdate("name", "from", "to", testCase.added, testCase.dropped)
			require.Equal(testInstance, update, repeated)

			if len(testCase.dropped) == 0 {
				require.NotContains(testInstance, update.Title, "...")
			} else {
				require.True(testInstance, strings.Contains(update.Title, "from...to"))
			}
		})
	}
}
