package releasenotes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relver/internal/releasenotes"
)

const (
	testChangelogConstant = "Changelog preamble\n" +
		"\n" +
		"# v1.2.0\n" +
		"\n" +
		"\n" +
		"Notes for 1.2.0\n" +
		"\n" +
		"# v1.1.0\n" +
		"Older notes\n" +
		"## Details\n" +
		"More older notes\n"
	testChecksumConstant = "0123abcd  relver-v1.2.0.tar.gz\n"
)

func TestParse(testInstance *testing.T) {
	document := releasenotes.Parse(testChangelogConstant)
	require.Len(testInstance, document.Sections, 2)
	require.Equal(testInstance, "v1.2.0", document.Sections[0].Heading)
	require.Equal(testInstance, []string{"", "", "Notes for 1.2.0", ""}, document.Sections[0].Body)
	require.Equal(testInstance, "v1.1.0", document.Sections[1].Heading)
	require.Equal(testInstance, []string{"Older notes", "## Details", "More older notes", ""}, document.Sections[1].Body)

	require.Empty(testInstance, releasenotes.Parse("no headings here\n").Sections)
}

func TestExtractBody(testInstance *testing.T) {
	testCases := []struct {
		name      string
		changelog string
		version   string
		expected  string
	}{
		{name: "strips_leading_blank_lines", changelog: testChangelogConstant, version: "v1.2.0", expected: "Notes for 1.2.0\n"},
		{name: "keeps_subheadings", changelog: testChangelogConstant, version: "v1.1.0", expected: "Older notes\n## Details\nMore older notes\n"},
		{name: "missing_version", changelog: testChangelogConstant, version: "v9.9.9", expected: ""},
		{name: "prefix_is_not_a_match", changelog: testChangelogConstant, version: "v1.2", expected: ""},
		{name: "first_duplicate_wins", changelog: "# v1.0.0\nfirst\n# v1.0.0\nsecond\n", version: "v1.0.0", expected: "first"},
		{name: "heading_whitespace_trimmed", changelog: "#   v2.0.0  \r\nbody\n", version: "v2.0.0", expected: "body\n"},
		{name: "changelog_example", changelog: "# v1.2.0\nNotes for 1.2.0\n\n# v1.1.0\nOlder notes\n", version: "v1.2.0", expected: "Notes for 1.2.0\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, releasenotes.ExtractBody(testCase.changelog, testCase.version))
		})
	}
}

func TestAssemble(testInstance *testing.T) {
	withoutChecksums := releasenotes.Assemble(releasenotes.Notes{Prefix: "Release", Version: "v1.2.0", Body: "Notes for 1.2.0\n"})
	require.Equal(testInstance, "Release v1.2.0\n\nNotes for 1.2.0\n", withoutChecksums)

	withChecksums := releasenotes.Assemble(releasenotes.Notes{
		Prefix:        "relver",
		Version:       "v1.2.0",
		Body:          "Notes for 1.2.0\n",
		ChecksumBlock: testChecksumConstant,
		HasChecksums:  true,
	})
	require.Equal(testInstance, "relver v1.2.0\n\nNotes for 1.2.0\n\n## Checksums\n\n```\n"+testChecksumConstant+"```\n", withChecksums)

	emptyBody := releasenotes.Assemble(releasenotes.Notes{Prefix: "Release", Version: "v0.0.0"})
	require.Equal(testInstance, "Release v0.0.0\n\n", emptyBody)
}
