// Package gitcli implements the gitrepo access layer by running the git
// executable through execshell.
//
// It exists for repositories using features go-git cannot read, such as
// partial clones or alternative object formats, and mirrors the semantics of
// the native backend.
package gitcli
