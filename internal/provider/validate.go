package provider

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/toolscope/toolscope/internal/domain/inventory"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds the result of validating a descriptor file.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

var pathSegmentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*(\.[a-zA-Z0-9][a-zA-Z0-9_-]*)*$`)

// ValidateDescriptorFile parses and validates one descriptor YAML file.
func ValidateDescriptorFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "file", Message: err.Error()}},
		}, nil
	}
	return ValidateDescriptors(file.Tools), nil
}

// ValidateDescriptors checks descriptor entries against the rules the
// aggregator assumes: unique dotted paths and known approval modes.
func ValidateDescriptors(entries []descriptorEntry) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(entries) == 0 {
		result.Errors = append(result.Errors, ValidationError{"tools", "at least one tool is required"})
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		field := fmt.Sprintf("tools[%d]", i)

		if e.Path == "" {
			result.Errors = append(result.Errors, ValidationError{field + ".path", "required field is missing"})
			continue
		}
		if !pathSegmentPattern.MatchString(e.Path) {
			result.Errors = append(result.Errors, ValidationError{field + ".path", fmt.Sprintf("%q is not a valid dotted path", e.Path)})
		}
		if _, dup := seen[e.Path]; dup {
			result.Errors = append(result.Errors, ValidationError{field + ".path", fmt.Sprintf("duplicate path %q", e.Path)})
		}
		seen[e.Path] = struct{}{}

		switch e.Approval {
		case "", string(inventory.ApprovalAuto), string(inventory.ApprovalRequired):
		default:
			result.Errors = append(result.Errors, ValidationError{field + ".approval", fmt.Sprintf("%q is not a valid approval mode", e.Approval)})
		}

		if e.Description == "" && e.Detail == "" {
			result.Warnings = append(result.Warnings, ValidationError{field + ".description", "tool has no description"})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
