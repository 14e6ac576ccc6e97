// Package releasenotes extracts the changelog section of a release and renders
// it together with the artifact checksum manifest.
package releasenotes
