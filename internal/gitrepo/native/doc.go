// Package native implements the gitrepo access layer on top of go-git.
//
// Repositories are opened directly from disk without invoking the git
// executable. Submodule pointers are read from the superproject HEAD tree and
// from each submodule's checked-out HEAD.
package native
