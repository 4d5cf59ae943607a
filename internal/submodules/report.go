package submodules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	titleSeparatorConstant            = ", "
	bodyBlockSeparatorConstant        = "\n\n"
	subjectPrefixConstant             = "Update "
	nameHeaderTemplateConstant        = "%s:\n%s"
	lineTerminatorConstant            = "\n"
	yamlEncodeFailureTemplateConstant = "encode report: %w"
)

// Report is the commit message assembled from a run's updates.
type Report struct {
	Title   string
	Body    string
	Updates []Update
}

// Render joins update titles with ", " and update messages into blank-line
// separated blocks. Each block is headed by the submodule name when the run
// has more than one update.
func Render(updates []Update) Report {
	titles := make([]string, 0, len(updates))
	blocks := make([]string, 0, len(updates))
	multipleUpdates := len(updates) > 1
	for _, update := range updates {
		titles = append(titles, update.Title)
		if !update.HasMessage() {
			continue
		}
		if multipleUpdates {
			blocks = append(blocks, fmt.Sprintf(nameHeaderTemplateConstant, update.Name, update.Message))
			continue
		}
		blocks = append(blocks, update.Message)
	}
	return Report{
		Title:   strings.Join(titles, titleSeparatorConstant),
		Body:    strings.Join(blocks, bodyBlockSeparatorConstant),
		Updates: updates,
	}
}

// Subject returns the first line of the commit message.
func (report Report) Subject() string {
	return subjectPrefixConstant + report.Title
}

// Text renders the full commit message: the subject line, then a blank line
// and the body when there is one.
func (report Report) Text() string {
	var textBuilder strings.Builder
	textBuilder.WriteString(report.Subject())
	textBuilder.WriteString(lineTerminatorConstant)
	if len(report.Body) > 0 {
		textBuilder.WriteString(lineTerminatorConstant)
		textBuilder.WriteString(report.Body)
		textBuilder.WriteString(lineTerminatorConstant)
	}
	return textBuilder.String()
}

type yamlSubmoduleDocument struct {
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Message string `yaml:"message,omitempty"`
}

type yamlReportDocument struct {
	Subject    string                  `yaml:"subject"`
	Title      string                  `yaml:"title"`
	Body       string                  `yaml:"body,omitempty"`
	Submodules []yamlSubmoduleDocument `yaml:"submodules"`
}

// YAML renders the report as a YAML document for tooling.
func (report Report) YAML() (string, error) {
	document := yamlReportDocument{
		Subject:    report.Subject(),
		Title:      report.Title,
		Body:       report.Body,
		Submodules: make([]yamlSubmoduleDocument, 0, len(report.Updates)),
	}
	for _, update := range report.Updates {
		document.Submodules = append(document.Submodules, yamlSubmoduleDocument{Name: update.Name, Title: update.Title, Message: update.Message})
	}
	encoded, encodeError := yaml.Marshal(document)
	if encodeError != nil {
		return "", fmt.Errorf(yamlEncodeFailureTemplateConstant, encodeError)
	}
	return string(encoded), nil
}
