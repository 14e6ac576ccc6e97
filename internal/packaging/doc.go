// Package packaging turns a versioned script into release artifacts.
//
// A build copies the script into the build directory with its version
// variable assigned, archives it, records SHA-256 checksums of every archive
// and builds a container image tagged with the version. Publishing pushes
// that image to Docker Hub and, inside GitHub Actions, to the GitHub package
// registry. Each external step fails the whole run with a StepError naming it.
package packaging
