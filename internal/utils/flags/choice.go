package flags

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix      = "<"
	choicePlaceholderSuffix      = ">"
	choiceSeparatorLiteral       = "|"
	choiceUsageEmptyTemplate     = "`%s`"
	choiceUsageFullTemplate      = "`%s` %s"
	choiceValueTypeName          = "string"
	invalidChoiceErrorTemplate   = "invalid value %q (expected one of %s)"
	choiceListSeparatorForErrors = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := mapset.NewThreadUnsafeSet[string]()

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(trimmedChoice) == 0 || !seen.Add(normalizedChoice) {
			continue
		}
		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, trimmedChoice)
	}

	return highlighted
}

// ChoiceValue is a pflag.Value restricted to a fixed, case-insensitive set of options.
type ChoiceValue struct {
	selected string
	choices  []string
	allowed  mapset.Set[string]
}

var _ pflag.Value = (*ChoiceValue)(nil)

// NewChoiceValue constructs a ChoiceValue preset to defaultChoice.
func NewChoiceValue(defaultChoice string, choices []string) *ChoiceValue {
	allowed := mapset.NewThreadUnsafeSet[string]()
	for _, choice := range choices {
		allowed.Add(strings.ToLower(strings.TrimSpace(choice)))
	}
	return &ChoiceValue{
		selected: strings.ToLower(strings.TrimSpace(defaultChoice)),
		choices:  append([]string(nil), choices...),
		allowed:  allowed,
	}
}

// String returns the selected option.
func (value *ChoiceValue) String() string {
	if value == nil {
		return ""
	}
	return value.selected
}

// Set validates and stores candidate.
func (value *ChoiceValue) Set(candidate string) error {
	normalized := strings.ToLower(strings.TrimSpace(candidate))
	if !value.allowed.ContainsOne(normalized) {
		return fmt.Errorf(invalidChoiceErrorTemplate, candidate, strings.Join(value.choices, choiceListSeparatorForErrors))
	}
	value.selected = normalized
	return nil
}

// Type reports the flag value type shown in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeName
}

// AddChoiceFlag registers a ChoiceValue flag on flagSet with a highlighted usage string.
func AddChoiceFlag(flagSet *pflag.FlagSet, name string, defaultChoice string, choices []string, description string) *ChoiceValue {
	value := NewChoiceValue(defaultChoice, choices)
	flagSet.Var(value, name, FormatChoiceUsage(defaultChoice, choices, description))
	return value
}
