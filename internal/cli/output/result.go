package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/toolscope/toolscope/internal/cli/client"
)

// DetailResult wraps a hydrated tool detail for rendering.
type DetailResult struct {
	Raw *client.ToolDetail
}

func NewDetailResult(raw *client.ToolDetail) *DetailResult {
	return &DetailResult{Raw: raw}
}

func (r *DetailResult) JSON() (string, error) {
	data, err := json.MarshalIndent(r.Raw, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *DetailResult) Text() string {
	t := r.Raw.Tool
	var sb strings.Builder
	fmt.Fprintf(&sb, "Path:     %s\n", t.Path)
	fmt.Fprintf(&sb, "Source:   %s (%s)\n", t.SourceLabel(), t.SourceType())
	fmt.Fprintf(&sb, "Approval: %s\n", t.Approval)
	if t.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", t.Description)
	}
	if t.Display != nil {
		if t.Display.ArgsType != "" {
			fmt.Fprintf(&sb, "\nArgs:    %s\n", t.Display.ArgsType)
		}
		if t.Display.ReturnsType != "" {
			fmt.Fprintf(&sb, "Returns: %s\n", t.Display.ReturnsType)
		}
		if t.Display.Schema != nil {
			data, err := json.MarshalIndent(t.Display.Schema, "", "  ")
			if err == nil {
				fmt.Fprintf(&sb, "\nSchema:\n%s\n", data)
			}
		}
	}
	if r.Raw.Loading {
		sb.WriteString("\n(detail still loading)\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (r *DetailResult) Markdown() string {
	t := r.Raw.Tool
	var sb strings.Builder
	fmt.Fprintf(&sb, "## `%s`\n\n", t.Path)
	fmt.Fprintf(&sb, "- **Source:** %s (%s)\n", t.SourceLabel(), t.SourceType())
	fmt.Fprintf(&sb, "- **Approval:** %s\n", t.Approval)
	if t.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", t.Description)
	}
	if t.Display != nil && t.Display.Schema != nil {
		data, err := json.MarshalIndent(t.Display.Schema, "", "  ")
		if err == nil {
			fmt.Fprintf(&sb, "\n```json\n%s\n```\n", data)
		}
	}
	return strings.TrimSpace(sb.String())
}
