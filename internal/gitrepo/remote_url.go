package gitrepo

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	sshRemotePatternConstant        = `git@(?P<host>[^:]+):(?P<path>.+)\.git`
	sshRemoteHostGroupConstant      = "host"
	sshRemotePathGroupConstant      = "path"
	canonicalGitHubHostConstant     = "github.com"
	httpsWebURLTemplateConstant     = "https://%s/%s/"
	remoteURLWhitespaceTrimConstant = " \t\r\n"
)

var sshRemotePattern = regexp.MustCompile(sshRemotePatternConstant)

// SSHRemote is the host and repository path of an scp-style `git@host:path.git` remote.
type SSHRemote struct {
	Host string
	Path string
}

// ParseSSHRemote extracts host and path from an scp-style SSH remote.
// It reports false for any other remote form, including HTTPS URLs.
func ParseSSHRemote(remote string) (SSHRemote, bool) {
	matches := sshRemotePattern.FindStringSubmatch(remote)
	if matches == nil {
		return SSHRemote{}, false
	}
	return SSHRemote{
		Host: matches[sshRemotePattern.SubexpIndex(sshRemoteHostGroupConstant)],
		Path: matches[sshRemotePattern.SubexpIndex(sshRemotePathGroupConstant)],
	}, true
}

// WebURL renders the remote as a browsable HTTPS URL with a trailing slash.
// Any host ending in github.com, enterprise subdomains included, is rendered as github.com.
func (remote SSHRemote) WebURL() string {
	host := remote.Host
	if strings.HasSuffix(host, canonicalGitHubHostConstant) {
		host = canonicalGitHubHostConstant
	}
	return fmt.Sprintf(httpsWebURLTemplateConstant, host, remote.Path)
}

// CanonicalWebURL rewrites SSH remotes into their HTTPS web form and returns every other value unchanged.
func CanonicalWebURL(remote string) string {
	trimmedRemote := strings.Trim(remote, remoteURLWhitespaceTrimConstant)
	sshRemote, isSSHRemote := ParseSSHRemote(trimmedRemote)
	if !isSSHRemote {
		return trimmedRemote
	}
	return sshRemote.WebURL()
}
