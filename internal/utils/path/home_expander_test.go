package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/submodule-commitmsg/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/tester"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		provider     pathutils.HomeDirectoryProvider
		candidate    string
		expectedPath string
	}{
		{name: "bare_tilde", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_slash", candidate: "~/src/project", expectedPath: filepath.Join(testHomeDirectoryConstant, "src", "project")},
		{name: "other_user_untouched", candidate: "~other/project", expectedPath: "~other/project"},
		{name: "relative_untouched", candidate: "src/project", expectedPath: "src/project"},
		{name: "empty_untouched", candidate: "", expectedPath: ""},
		{
			name:         "provider_failure_untouched",
			provider:     func() (string, error) { return "", errors.New("no home") },
			candidate:    "~/src",
			expectedPath: "~/src",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) { return testHomeDirectoryConstant, nil }
			}
			expander := pathutils.NewHomeExpanderWithProvider(provider)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderResolvesHomeOnce(testInstance *testing.T) {
	lookupCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookupCount++
		return testHomeDirectoryConstant, nil
	})

	expander.Expand("~/a")
	expander.Expand("~/b")

	require.Equal(testInstance, 1, lookupCount)
}
