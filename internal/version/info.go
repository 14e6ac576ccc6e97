package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	fallbackBaseTagConstant            = "v0.0.0"
	fallbackBranchConstant             = "none"
	fallbackShortCommitConstant        = "g0000000"
	shortCommitPrefixConstant          = "g"
	masterBranchConstant               = "master"
	detachedHeadBranchConstant         = "HEAD"
	branchReplacementConstant          = "-"
	dirtyMarkerTemplateConstant        = "m%08x"
	resolvedVersionTemplateConstant    = "%s-%s.%d.%s"
	dirtyMarkerSuffixTemplateConstant  = "%s.%s"
	untaggedDescribeTokenCountConstant = 1
	taggedDescribeTokenCountConstant   = 3
)

var disallowedBranchCharacters = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Info is the decomposed version of a build.
type Info struct {
	BaseTag     string `yaml:"base_tag"`
	Branch      string `yaml:"branch"`
	Distance    int    `yaml:"distance"`
	ShortCommit string `yaml:"commit"`
	DirtyMarker string `yaml:"dirty_marker,omitempty"`
	Resolved    string `yaml:"version"`
}

// SemanticVersion reports whether the resolved version is a valid semantic version.
func (info Info) SemanticVersion() bool {
	return semver.IsValid(info.Resolved)
}

// ParseDescription turns `git describe --long` tokens into an Info without a marker.
//
// A single token is a bare commit abbreviation from a history without matching tags, so
// the commit count stands in for the distance. Three tokens are tag, distance and commit.
// Any other shape yields the fallback v0.0.0-none.0.g0000000.
func ParseDescription(describeTokens []string, branchName string, commitCount int) Info {
	switch len(describeTokens) {
	case untaggedDescribeTokenCountConstant:
		return Info{
			BaseTag:     fallbackBaseTagConstant,
			Branch:      SanitizeBranch(branchName),
			Distance:    commitCount,
			ShortCommit: shortCommitPrefixConstant + describeTokens[0],
		}
	case taggedDescribeTokenCountConstant:
		distance, parsed := parseDistance(describeTokens[1])
		if !parsed {
			return fallbackInfo()
		}
		return Info{
			BaseTag:     describeTokens[0],
			Branch:      SanitizeBranch(branchName),
			Distance:    distance,
			ShortCommit: describeTokens[2],
		}
	default:
		return fallbackInfo()
	}
}

// SanitizeBranch replaces every run of characters outside [A-Za-z0-9._-] with a single hyphen.
func SanitizeBranch(branchName string) string {
	return disallowedBranchCharacters.ReplaceAllString(branchName, branchReplacementConstant)
}

// DirtyMarker encodes the newest modification time as m followed by eight hex digits.
// It returns an empty string when nothing is modified.
func DirtyMarker(modificationTimes []time.Time) string {
	if len(modificationTimes) == 0 {
		return ""
	}

	newest := modificationTimes[0].Unix()
	for _, modificationTime := range modificationTimes[1:] {
		if modificationTime.Unix() > newest {
			newest = modificationTime.Unix()
		}
	}
	return fmt.Sprintf(dirtyMarkerTemplateConstant, newest)
}

// IsCleanRelease reports whether the build sits exactly on its tag with no local changes.
// Master and a detached HEAD are release branches; so is any branch whose name prefixes the tag.
func IsCleanRelease(info Info) bool {
	releaseBranch := info.Branch == masterBranchConstant ||
		info.Branch == detachedHeadBranchConstant ||
		strings.HasPrefix(info.BaseTag, info.Branch)
	return releaseBranch && info.Distance == 0 && len(info.DirtyMarker) == 0
}

// Format renders the version string for info.
func Format(info Info) string {
	if IsCleanRelease(info) {
		return info.BaseTag
	}

	resolved := fmt.Sprintf(resolvedVersionTemplateConstant, info.BaseTag, info.Branch, info.Distance, info.ShortCommit)
	if len(info.DirtyMarker) > 0 {
		resolved = fmt.Sprintf(dirtyMarkerSuffixTemplateConstant, resolved, info.DirtyMarker)
	}
	return resolved
}

func fallbackInfo() Info {
	return Info{
		BaseTag:     fallbackBaseTagConstant,
		Branch:      fallbackBranchConstant,
		Distance:    0,
		ShortCommit: fallbackShortCommitConstant,
	}
}

func parseDistance(distanceToken string) (int, bool) {
	if len(distanceToken) == 0 {
		return 0, false
	}
	for _, character := range distanceToken {
		if character < '0' || character > '9' {
			return 0, false
		}
	}
	distance, parseError := strconv.Atoi(distanceToken)
	if parseError != nil {
		return 0, false
	}
	return distance, true
}
