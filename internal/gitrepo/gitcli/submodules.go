package gitcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/temirov/submodule-commitmsg/internal/execshell"
	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	gitmodulesFileNameConstant          = ".gitmodules"
	dotGitEntryNameConstant             = ".git"
	gitConfigSubcommandConstant         = "config"
	gitFileFlagConstant                 = "--file"
	gitNullFlagConstant                 = "--null"
	gitGetRegexpFlagConstant            = "--get-regexp"
	submodulePathPatternConstant        = `^submodule\..*\.path$`
	submoduleKeyPrefixConstant          = "submodule."
	submoduleKeySuffixConstant          = ".path"
	gitLSTreeSubcommandConstant         = "ls-tree"
	gitNullTerminatedFlagConstant       = "-z"
	gitPathSeparatorArgumentConstant    = "--"
	gitlinkModeConstant                 = "160000"
	nullSeparatorConstant               = "\x00"
	keyValueSeparatorConstant           = "\n"
	treeEntryPathSeparatorConstant      = "\t"
	treeEntryFieldCountConstant         = 3
	configNoMatchExitCodeConstant       = 1
	listSubmodulesErrorTemplateConstant = "list submodules: %w"
)

// Submodules enumerates the submodules declared in .gitmodules, sorted by path.
func (repository *Repository) Submodules(executionContext context.Context) ([]gitrepo.Submodule, error) {
	if repository.bare {
		return nil, nil
	}
	if _, statError := os.Stat(filepath.Join(repository.root, gitmodulesFileNameConstant)); statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(listSubmodulesErrorTemplateConstant, statError)
	}

	declarations, declarationError := repository.readDeclarations(executionContext)
	if declarationError != nil {
		return nil, fmt.Errorf(listSubmodulesErrorTemplateConstant, declarationError)
	}
	if len(declarations) == 0 {
		return nil, nil
	}

	declaredPaths := make([]string, 0, len(declarations))
	for _, declaration := range declarations {
		declaredPaths = append(declaredPaths, declaration.path)
	}
	recordedIDs := repository.readGitlinks(executionContext, declaredPaths)

	submodules := make([]gitrepo.Submodule, 0, len(declarations))
	for _, declaration := range declarations {
		entry := &Submodule{
			executor:      repository.executor,
			name:          declaration.name,
			path:          declaration.path,
			directoryPath: filepath.Join(repository.root, filepath.FromSlash(declaration.path)),
		}
		entry.headID, entry.hasHeadID = recordedIDs[declaration.path]
		entry.workdirID, entry.hasWorkdirID = entry.readCheckedOutID(executionContext)
		submodules = append(submodules, entry)
	}

	slices.SortFunc(submodules, func(left, right gitrepo.Submodule) int {
		return strings.Compare(left.Path(), right.Path())
	})
	return submodules, nil
}

type submoduleDeclaration struct {
	name string
	path string
}

func (repository *Repository) readDeclarations(executionContext context.Context) ([]submoduleDeclaration, error) {
	executionResult, configError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, gitFileFlagConstant, gitmodulesFileNameConstant, gitNullFlagConstant, gitGetRegexpFlagConstant, submodulePathPatternConstant},
		WorkingDirectory: repository.root,
	})
	if configError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(configError, &failedError) && failedError.Result.ExitCode == configNoMatchExitCodeConstant {
			return nil, nil
		}
		return nil, configError
	}
	return parseDeclarations(executionResult.StandardOutput), nil
}

// parseDeclarations reads NUL-terminated "key\nvalue" records.
func parseDeclarations(output string) []submoduleDeclaration {
	var declarations []submoduleDeclaration
	for _, record := range strings.Split(output, nullSeparatorConstant) {
		key, value, found := strings.Cut(record, keyValueSeparatorConstant)
		if !found || len(value) == 0 {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, submoduleKeyPrefixConstant), submoduleKeySuffixConstant)
		declarations = append(declarations, submoduleDeclaration{name: name, path: value})
	}
	return declarations
}

func (repository *Repository) readGitlinks(executionContext context.Context, paths []string) map[string]string {
	arguments := append([]string{gitLSTreeSubcommandConstant, gitNullTerminatedFlagConstant, gitHeadReferenceConstant, gitPathSeparatorArgumentConstant}, paths...)
	executionResult, lsTreeError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repository.root,
	})
	if lsTreeError != nil {
		return map[string]string{}
	}
	return parseGitlinks(executionResult.StandardOutput)
}

// parseGitlinks reads "<mode> <type> <id>\t<path>" entries and keeps gitlinks.
func parseGitlinks(output string) map[string]string {
	gitlinks := make(map[string]string)
	for _, record := range strings.Split(output, nullSeparatorConstant) {
		metadata, path, found := strings.Cut(record, treeEntryPathSeparatorConstant)
		if !found {
			continue
		}
		fields := strings.Fields(metadata)
		if len(fields) != treeEntryFieldCountConstant || fields[0] != gitlinkModeConstant {
			continue
		}
		gitlinks[path] = fields[2]
	}
	return gitlinks
}

// Submodule is a snapshot of one submodule's recorded and checked-out commits.
type Submodule struct {
	executor      GitExecutor
	name          string
	path          string
	directoryPath string
	headID        string
	hasHeadID     bool
	workdirID     string
	hasWorkdirID  bool
}

// Name returns the logical submodule name from .gitmodules.
func (submodule *Submodule) Name() string {
	return submodule.name
}

// Path returns the submodule path relative to the superproject root.
func (submodule *Submodule) Path() string {
	return submodule.path
}

// HeadID returns the gitlink recorded in the superproject HEAD tree.
func (submodule *Submodule) HeadID() (string, bool) {
	return submodule.headID, submodule.hasHeadID
}

// WorkdirID returns the HEAD of the checked-out submodule repository.
func (submodule *Submodule) WorkdirID() (string, bool) {
	return submodule.workdirID, submodule.hasWorkdirID
}

// Open returns a repository handle rooted at the submodule working tree.
func (submodule *Submodule) Open(executionContext context.Context) (gitrepo.Repository, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	if !submodule.hasCheckout() {
		return nil, fmt.Errorf(discoverErrorTemplateConstant, submodule.directoryPath, gitrepo.ErrRepositoryNotFound)
	}
	return &Repository{executor: submodule.executor, root: submodule.directoryPath}, nil
}

func (submodule *Submodule) hasCheckout() bool {
	_, statError := os.Stat(filepath.Join(submodule.directoryPath, dotGitEntryNameConstant))
	return statError == nil
}

func (submodule *Submodule) readCheckedOutID(executionContext context.Context) (string, bool) {
	if !submodule.hasCheckout() {
		return "", false
	}
	headID, revParseError := runTrimmed(executionContext, submodule.executor, submodule.directoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, gitHeadReferenceConstant)
	if revParseError != nil || len(headID) == 0 {
		return "", false
	}
	return headID, true
}
