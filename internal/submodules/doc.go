// Package submodules computes how a superproject's submodules moved and turns
// those moves into a commit message.
//
// Differ compares the commit recorded in the superproject HEAD with the commit
// checked out in each submodule and lists the commits added and dropped by the
// move. BuildUpdate formats one submodule's move, Render joins the updates of a
// run into a title and body, and Service sequences discovery, enumeration,
// filtering and diffing for the command-line entry point.
package submodules
