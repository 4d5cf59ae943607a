// Package testsupport builds throwaway git repositories for tests by driving
// the git executable.
package testsupport
