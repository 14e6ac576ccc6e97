// Package registry decides which container registries a release image is pushed to.
//
// The decision is driven by CI environment variables decoded into Environment:
// GitHub Actions identity and token select the GitHub package registry, and a
// Docker Hub username with push key enables the default registry.
package registry
