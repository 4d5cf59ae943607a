// Package gitrepo defines the Git access layer consumed by the submodule
// commit-message tooling.
//
// It exposes Discoverer for locating the enclosing superproject, Repository for
// commit lookup, short identifiers and history traversal, Submodule for the two
// endpoint pointers of a submodule, and RevisionWalk for push/hide topological
// walks. Implementations live in the native (go-git) and gitcli (git
// executable) subpackages.
package gitrepo
