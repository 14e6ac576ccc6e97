package registry

import "path"

// GitHubPackagesHost is the registry that receives images built in GitHub Actions.
const GitHubPackagesHost = "docker.pkg.github.com"

// Tag is a fully qualified image reference in a remote registry.
type Tag struct {
	Host       string
	Repository string
	Tag        string
}

// String joins the tag components with slashes.
func (tag Tag) String() string {
	return path.Join(tag.Host, tag.Repository, tag.Tag)
}
