// Package revwalk implements push/hide history traversal in topological order.
//
// Walker works over any Graph that can report the parents of a commit, which
// lets the go-git backend and the tests share the same traversal semantics.
//
// Graph carries no commit dates or generation numbers, so hiding a commit
// marks its entire ancestry before pushed commits are collected. A walk
// therefore costs one parent lookup per commit reachable from the hidden and
// pushed tips, each commit looked up at most once per walk, rather than
// stopping at the merge base as git's date-ordered walk does.
package revwalk
