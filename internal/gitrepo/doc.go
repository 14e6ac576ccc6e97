// Package gitrepo answers read-only questions about a Git working tree.
//
// Repository runs the describe, rev-parse, rev-list, status and remote queries
// that version resolution depends on and captures their answers in a Snapshot.
// CanonicalWebURL turns SSH remotes into browsable HTTPS addresses.
package gitrepo
