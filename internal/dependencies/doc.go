// Package dependencies supplies default collaborators for relver command builders.
package dependencies
