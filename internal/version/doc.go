// Package version derives release versions from git history.
//
// A build sitting exactly on a vX.Y.Z tag of a release branch, with no local
// changes, is versioned as the tag itself. Every other build is versioned as
// <tag>-<branch>.<distance>.<commit>, followed by .m<hex mtime> when tracked
// files are modified. Resolver memoizes the result for the lifetime of a process.
package version
