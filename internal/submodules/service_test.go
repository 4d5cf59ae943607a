package submodules_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
	"github.com/temirov/submodule-commitmsg/internal/submodules"
)

func TestNewServiceRequiresDiscoverer(testInstance *testing.T) {
	_, creationError := submodules.NewService(submodules.ServiceDependencies{})
	require.ErrorIs(testInstance, creationError, submodules.ErrDiscovererNotConfigured)
}

func TestServiceCollectFatalErrors(testInstance *testing.T) {
	enumerationFailure := errors.New("corrupt .gitmodules")
	testCases := []struct {
		name            string
		discoverer      *fakeDiscoverer
		expectedMessage string
		expectedError   error
	}{
		{
			name:            "repository_not_found",
			discoverer:      &fakeDiscoverer{discoverError: gitrepo.ErrRepositoryNotFound},
			expectedMessage: "no repository found: repository not found",
			expectedError:   gitrepo.ErrRepositoryNotFound,
		},
		{
			name:            "enumeration_failure",
			discoverer:      &fakeDiscoverer{repository: &fakeRepository{submodulesError: enumerationFailure}},
			expectedMessage: "failed to enumerate submodules: corrupt .gitmodules",
			expectedError:   enumerationFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, creationError := submodules.NewService(submodules.ServiceDependencies{Discoverer: testCase.discoverer})
			require.NoError(testInstance, creationError)

			updates, collectError := service.Collect(context.Background(), submodules.Options{})
			require.Nil(testInstance, updates)
			require.ErrorIs(testInstance, collectError, testCase.expectedError)
			require.EqualError(testInstance, collectError, testCase.expectedMessage)
			require.Equal(testInstance, []string{"."}, testCase.discoverer.requestedPaths)
		})
	}
}

func TestServiceCollectFiltersAndPreservesOrder(testInstance *testing.T) {
	history := newHistoryRepository()
	var declared []gitrepo.Submodule
	for index := 0; index < 6; index++ {
		declared = append(declared, movedSubmodule(fmt.Sprintf("lib%d", index), testBaseCommitConstant, testMainCommitConstant, history))
	}
	unchanged := movedSubmodule("static", testMainCommitConstant, testMainCommitConstant, history)
	declared = append(declared, unchanged)

	superproject := &fakeRepository{root: "/workspace/super", submodules: declared}

	testCases := []struct {
		name          string
		options       submodules.Options
		expectedNames []string
	}{
		{
			name:          "all_sequential",
			options:       submodules.Options{RepositoryPath: "/workspace/super"},
			expectedNames: []string{"lib0", "lib1", "lib2", "lib3", "lib4", "lib5"},
		},
		{
			name:          "all_parallel",
			options:       submodules.Options{RepositoryPath: "/workspace/super", Concurrency: 4},
			expectedNames: []string{"lib0", "lib1", "lib2", "lib3", "lib4", "lib5"},
		},
		{
			name:          "exact_name_filter",
			options:       submodules.Options{Filters: []string{"lib4", "lib1", "lib", "static"}},
			expectedNames: []string{"lib1", "lib4"},
		},
		{
			name:    "filter_without_match",
			options: submodules.Options{Filters: []string{"missing"}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, creationError := submodules.NewService(submodules.ServiceDependencies{Discoverer: &fakeDiscoverer{repository: superproject}})
			require.NoError(testInstance, creationError)

			updates, collectError := service.Collect(context.Background(), testCase.options)
			require.NoError(testInstance, collectError)

			var names []string
			for _, update := range updates {
				names = append(names, update.Name)
				require.Equal(testInstance, "+2222222 Main change", update.Message)
			}
			require.Equal(testInstance, testCase.expectedNames, names)
		})
	}
}
