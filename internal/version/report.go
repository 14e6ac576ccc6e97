package version

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	outputFormatVersionConstant       = "version"
	outputFormatTextConstant          = "text"
	outputFormatYAMLConstant          = "yaml"
	unsupportedFormatTemplateConstant = "unsupported output format %q (expected version, text or yaml)"
	reportEncodingTemplateConstant    = "unable to encode version report: %w"
	reportLineTemplateConstant        = "%-17s %s\n"
	reportVersionLabelConstant        = "version:"
	reportBaseTagLabelConstant        = "base tag:"
	reportBranchLabelConstant         = "branch:"
	reportDistanceLabelConstant       = "distance:"
	reportCommitLabelConstant         = "commit:"
	reportDirtyMarkerLabelConstant    = "dirty marker:"
	reportSemanticLabelConstant       = "semantic version:"
	reportFullCommitLabelConstant     = "full commit:"
	reportDirectoryLabelConstant      = "directory:"
	reportRemoteLabelConstant         = "remote:"
)

// OutputFormat selects how the info command renders a Report.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatVersion OutputFormat = OutputFormat(outputFormatVersionConstant)
	OutputFormatText    OutputFormat = OutputFormat(outputFormatTextConstant)
	OutputFormatYAML    OutputFormat = OutputFormat(outputFormatYAMLConstant)
)

// ParseOutputFormat validates a user supplied format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(value) {
	case OutputFormatVersion, OutputFormatText, OutputFormatYAML:
		return OutputFormat(value), nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, value)
	}
}

// Report is everything the info command knows about the working tree.
type Report struct {
	Info            `yaml:",inline"`
	SemanticVersion bool   `yaml:"semantic_version"`
	FullCommit      string `yaml:"full_commit,omitempty"`
	Directory       string `yaml:"directory,omitempty"`
	Remote          string `yaml:"remote,omitempty"`
}

// Render writes report to writer in the requested format.
func (report Report) Render(writer io.Writer, format OutputFormat) error {
	switch format {
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return fmt.Errorf(reportEncodingTemplateConstant, encodeError)
		}
		return encoder.Close()
	case OutputFormatText:
		return report.renderText(writer)
	default:
		_, writeError := fmt.Fprintln(writer, report.Resolved)
		return writeError
	}
}

func (report Report) renderText(writer io.Writer) error {
	reportLines := [][2]string{
		{reportVersionLabelConstant, report.Resolved},
		{reportBaseTagLabelConstant, report.BaseTag},
		{reportBranchLabelConstant, report.Branch},
		{reportDistanceLabelConstant, strconv.Itoa(report.Distance)},
		{reportCommitLabelConstant, report.ShortCommit},
		{reportDirtyMarkerLabelConstant, report.DirtyMarker},
		{reportSemanticLabelConstant, strconv.FormatBool(report.SemanticVersion)},
		{reportFullCommitLabelConstant, report.FullCommit},
		{reportDirectoryLabelConstant, report.Directory},
		{reportRemoteLabelConstant, report.Remote},
	}
	for _, reportLine := range reportLines {
		if _, writeError := fmt.Fprintf(writer, reportLineTemplateConstant, reportLine[0], reportLine[1]); writeError != nil {
			return writeError
		}
	}
	return nil
}
