package testsupport

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	gitExecutableNameConstant      = "git"
	defaultBranchNameConstant      = "main"
	fixtureAuthorNameConstant      = "Fixture Author"
	fixtureAuthorEmailConstant     = "fixture@example.com"
	fixtureCommitDateConstant      = "2024-01-01T00:00:00Z"
	fixtureFilePermissionsConstant = 0o644
	skipMissingGitMessageConstant  = "git executable not available"
)

// RequireGit skips the test when the git executable cannot be found.
func RequireGit(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testInstance.Skip(skipMissingGitMessageConstant)
	}
}

// Repository is a git working tree rooted in a test temporary directory.
type Repository struct {
	testInstance *testing.T
	Directory    string
}

// NewRepository initializes an empty repository on the main branch.
func NewRepository(testInstance *testing.T) *Repository {
	testInstance.Helper()
	RequireGit(testInstance)
	repository := &Repository{testInstance: testInstance, Directory: testInstance.TempDir()}
	repository.Run("init", "--quiet")
	repository.Run("symbolic-ref", "HEAD", "refs/heads/"+defaultBranchNameConstant)
	return repository
}

// At wraps an existing working tree, such as a checked-out submodule.
func (repository *Repository) At(relativePath string) *Repository {
	return &Repository{testInstance: repository.testInstance, Directory: filepath.Join(repository.Directory, relativePath)}
}

// Run executes git inside the repository and returns its trimmed output.
func (repository *Repository) Run(arguments ...string) string {
	repository.testInstance.Helper()
	command := exec.Command(gitExecutableNameConstant, arguments...)
	command.Dir = repository.Directory
	command.Env = fixtureEnvironment(repository.testInstance)
	outputBytes, commandError := command.CombinedOutput()
	require.NoError(repository.testInstance, commandError, string(outputBytes))
	return string(bytes.TrimSpace(outputBytes))
}

// Commit records an empty commit and returns its identifier.
func (repository *Repository) Commit(message string) string {
	repository.testInstance.Helper()
	repository.Run("-c", "commit.gpgsign=false", "commit", "--quiet", "--allow-empty", "--allow-empty-message", "-m", message)
	return repository.Head()
}

// CommitFile writes a file, stages it and commits it.
func (repository *Repository) CommitFile(relativePath string, contents string, message string) string {
	repository.testInstance.Helper()
	filePath := filepath.Join(repository.Directory, relativePath)
	require.NoError(repository.testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(repository.testInstance, os.WriteFile(filePath, []byte(contents), fixtureFilePermissionsConstant))
	repository.Run("add", relativePath)
	return repository.Commit(message)
}

// Head returns the identifier of the checked-out commit.
func (repository *Repository) Head() string {
	repository.testInstance.Helper()
	return repository.Run("rev-parse", "HEAD")
}

// Checkout detaches HEAD at the provided revision.
func (repository *Repository) Checkout(revision string) {
	repository.testInstance.Helper()
	repository.Run("checkout", "--quiet", "--detach", revision)
}

// AddSubmodule clones source into relativePath and commits the new gitlink.
func (repository *Repository) AddSubmodule(source *Repository, relativePath string) *Repository {
	repository.testInstance.Helper()
	repository.Run("-c", "protocol.file.allow=always", "submodule", "add", "--quiet", source.Directory, relativePath)
	repository.Commit("add " + relativePath)
	return repository.At(relativePath)
}

func fixtureEnvironment(testInstance *testing.T) []string {
	return append(os.Environ(),
		"HOME="+testInstance.TempDir(),
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME="+fixtureAuthorNameConstant,
		"GIT_AUTHOR_EMAIL="+fixtureAuthorEmailConstant,
		"GIT_AUTHOR_DATE="+fixtureCommitDateConstant,
		"GIT_COMMITTER_NAME="+fixtureAuthorNameConstant,
		"GIT_COMMITTER_EMAIL="+fixtureAuthorEmailConstant,
		"GIT_COMMITTER_DATE="+fixtureCommitDateConstant,
	)
}
