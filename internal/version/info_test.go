package version_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relver/internal/version"
)

const (
	testFallbackVersionConstant = "v0.0.0-none.0.g0000000"
	testBaseTagConstant         = "v1.4.2"
	testShortCommitConstant     = "g1a2b3c4"
)

func TestParseDescription(testInstance *testing.T) {
	testCases := []struct {
		name         string
		tokens       []string
		branch       string
		commitCount  int
		expectedInfo version.Info
	}{
		{
			name:        "tagged_history",
			tokens:      []string{testBaseTagConstant, "3", testShortCommitConstant},
			branch:      "feature/login",
			commitCount: 99,
			expectedInfo: version.Info{
				BaseTag:     testBaseTagConstant,
				Branch:      "feature-login",
				Distance:    3,
				ShortCommit: testShortCommitConstant,
			},
		},
		{
			name:        "untagged_history_uses_commit_count",
			tokens:      []string{"1a2b3c4"},
			branch:      "master",
			commitCount: 42,
			expectedInfo: version.Info{
				BaseTag:     "v0.0.0",
				Branch:      "master",
				Distance:    42,
				ShortCommit: testShortCommitConstant,
			},
		},
		{
			name:         "no_tokens_falls_back",
			tokens:       nil,
			branch:       "master",
			expectedInfo: version.Info{BaseTag: "v0.0.0", Branch: "none", ShortCommit: "g0000000"},
		},
		{
			name:         "hyphenated_tag_falls_back",
			tokens:       []string{"v1.0.0", "rc1", "2", testShortCommitConstant},
			branch:       "master",
			expectedInfo: version.Info{BaseTag: "v0.0.0", Branch: "none", ShortCommit: "g0000000"},
		},
		{
			name:         "non_integer_distance_falls_back",
			tokens:       []string{testBaseTagConstant, "x1", testShortCommitConstant},
			branch:       "master",
			expectedInfo: version.Info{BaseTag: "v0.0.0", Branch: "none", ShortCommit: "g0000000"},
		},
		{
			name:         "signed_distance_falls_back",
			tokens:       []string{testBaseTagConstant, "+1", testShortCommitConstant},
			branch:       "master",
			expectedInfo: version.Info{BaseTag: "v0.0.0", Branch: "none", ShortCommit: "g0000000"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedInfo, version.ParseDescription(testCase.tokens, testCase.branch, testCase.commitCount))
		})
	}
}

func TestFallbackVersionFormatting(testInstance *testing.T) {
	require.Equal(testInstance, testFallbackVersionConstant, version.Format(version.ParseDescription(nil, "", 0)))
}

func TestSanitizeBranch(testInstance *testing.T) {
	testCases := map[string]string{
		"feature/foo bar!":    "feature-foo-bar-",
		"release_1.2-beta":    "release_1.2-beta",
		"a//b":                "a-b",
		"":                    "",
		"users/jdoe/ticket#7": "users-jdoe-ticket-7",
	}
	for branchName, expected := range testCases {
		require.Equal(testInstance, expected, version.SanitizeBranch(branchName), branchName)
	}
}

func TestDirtyMarker(testInstance *testing.T) {
	testCases := []struct {
		name     string
		times    []time.Time
		expected string
	}{
		{name: "no_modified_files", times: nil, expected: ""},
		{name: "single_file", times: []time.Time{time.Unix(0x1A2B3C4D, 0)}, expected: "m1a2b3c4d"},
		{name: "zero_padded", times: []time.Time{time.Unix(255, 0)}, expected: "m000000ff"},
		{name: "newest_wins", times: []time.Time{time.Unix(255, 0), time.Unix(0x1A2B3C4D, 0), time.Unix(4096, 0)}, expected: "m1a2b3c4d"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, version.DirtyMarker(testCase.times))
		})
	}
}

func TestFormat(testInstance *testing.T) {
	testCases := []struct {
		name          string
		info          version.Info
		expectedClean bool
		expected      string
	}{
		{
			name:          "clean_release_on_master",
			info:          version.Info{BaseTag: testBaseTagConstant, Branch: "master", ShortCommit: testShortCommitConstant},
			expectedClean: true,
			expected:      testBaseTagConstant,
		},
		{
			name:          "clean_release_on_detached_head",
			info:          version.Info{BaseTag: testBaseTagConstant, Branch: "HEAD", ShortCommit: testShortCommitConstant},
			expectedClean: true,
			expected:      testBaseTagConstant,
		},
		{
			name:          "clean_release_on_tag_prefix_branch",
			info:          version.Info{BaseTag: testBaseTagConstant, Branch: "v1.4", ShortCommit: testShortCommitConstant},
			expectedClean: true,
			expected:      testBaseTagConstant,
		},
		{
			name:     "feature_branch_on_tag",
			info:     version.Info{BaseTag: testBaseTagConstant, Branch: "feature-x", ShortCommit: testShortCommitConstant},
			expected: "v1.4.2-feature-x.0.g1a2b3c4",
		},
		{
			name:     "commits_after_tag",
			info:     version.Info{BaseTag: testBaseTagConstant, Branch: "master", Distance: 5, ShortCommit: testShortCommitConstant},
			expected: "v1.4.2-master.5.g1a2b3c4",
		},
		{
			name:     "modified_release",
			info:     version.Info{BaseTag: testBaseTagConstant, Branch: "master", ShortCommit: testShortCommitConstant, DirtyMarker: "m000000ff"},
			expected: "v1.4.2-master.0.g1a2b3c4.m000000ff",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedClean, version.IsCleanRelease(testCase.info))
			require.Equal(testInstance, testCase.expected, version.Format(testCase.info))
			require.Equal(testInstance, version.Format(testCase.info), version.Format(testCase.info))
		})
	}
}

func TestSemanticVersion(testInstance *testing.T) {
	require.True(testInstance, version.Info{Resolved: testBaseTagConstant}.SemanticVersion())
	require.True(testInstance, version.Info{Resolved: "v1.4.2-master.5.g1a2b3c4.m000000ff"}.SemanticVersion())
	require.False(testInstance, version.Info{Resolved: "v1.4.2-release_2.0.g1a2b3c4"}.SemanticVersion())
}
