package releasenotes

import (
	"strings"
)

const (
	sectionHeadingPrefixConstant = "# "
	lineSeparatorConstant        = "\n"
	headerSeparatorConstant      = " "
	headerTerminatorConstant     = "\n\n"
	checksumBlockOpeningConstant = "\n## Checksums\n\n```\n"
	checksumBlockClosingConstant = "```\n"
)

// Section is one `# ` headed part of a changelog.
type Section struct {
	Heading string
	Body    []string
}

// Document is a changelog split into sections in document order.
type Document struct {
	Sections []Section
}

// Parse splits changelog text into sections. Text before the first heading is discarded.
func Parse(changelogText string) Document {
	var document Document
	var currentSection *Section

	for _, line := range strings.Split(changelogText, lineSeparatorConstant) {
		if strings.HasPrefix(line, sectionHeadingPrefixConstant) {
			document.Sections = append(document.Sections, Section{
				Heading: strings.TrimSpace(strings.TrimPrefix(line, sectionHeadingPrefixConstant)),
			})
			currentSection = &document.Sections[len(document.Sections)-1]
			continue
		}
		if currentSection != nil {
			currentSection.Body = append(currentSection.Body, line)
		}
	}
	return document
}

// Find returns the first section whose heading equals heading exactly.
func (document Document) Find(heading string) (Section, bool) {
	for _, section := range document.Sections {
		if section.Heading == heading {
			return section, true
		}
	}
	return Section{}, false
}

// ExtractBody returns the body of the section headed by version, without leading blank lines.
// It returns an empty string when the changelog has no such section.
func ExtractBody(changelogText string, version string) string {
	section, found := Parse(changelogText).Find(version)
	if !found {
		return ""
	}

	bodyLines := section.Body
	for len(bodyLines) > 0 && len(strings.TrimSpace(bodyLines[0])) == 0 {
		bodyLines = bodyLines[1:]
	}
	return strings.Join(bodyLines, lineSeparatorConstant)
}

// Notes is a release notes document before rendering.
type Notes struct {
	Prefix        string
	Version       string
	Body          string
	ChecksumBlock string
	HasChecksums  bool
}

// Assemble renders notes as the header line, the body and an optional fenced checksum listing.
func Assemble(notes Notes) string {
	var builder strings.Builder
	builder.WriteString(notes.Prefix)
	builder.WriteString(headerSeparatorConstant)
	builder.WriteString(notes.Version)
	builder.WriteString(headerTerminatorConstant)
	builder.WriteString(notes.Body)
	if notes.HasChecksums {
		builder.WriteString(checksumBlockOpeningConstant)
		builder.WriteString(notes.ChecksumBlock)
		builder.WriteString(checksumBlockClosingConstant)
	}
	return builder.String()
}
