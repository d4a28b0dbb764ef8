package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/toolscope/toolscope/internal/api"
	"github.com/toolscope/toolscope/internal/cli/client"
	"github.com/toolscope/toolscope/internal/cli/errors"
	"github.com/toolscope/toolscope/internal/domain/grouping"
	"github.com/toolscope/toolscope/internal/domain/view"
)

type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
)

type Formatter struct {
	format OutputFormat
	color  bool
}

func NewFormatter(format OutputFormat, useColor bool) *Formatter {
	return &Formatter{
		format: format,
		color:  useColor,
	}
}

func (f *Formatter) FormatError(err errors.ClassifiedError) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(err, "", "  ")
		return string(data)
	}

	var msg string
	if f.color {
		msg = color.RedString("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\n" + color.YellowString("Hint: %s", err.Hint)
		}
	} else {
		msg = fmt.Sprintf("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\nHint: " + err.Hint
		}
	}
	return msg
}

// FormatPlan renders one page of the flat tool list.
func (f *Formatter) FormatPlan(plan *view.Plan) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(plan, "", "  ")
		fmt.Println(string(data))
		return ""
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Path", "Source", "Approval", "Description"}),
	)

	for _, row := range plan.Rows {
		switch row.Kind {
		case view.RowTool:
			table.Append([]string{
				row.Tool.Path,
				row.Tool.SourceLabel(),
				string(row.Tool.Approval),
				row.Tool.Description,
			})
		case view.RowPlaceholder:
			table.Append([]string{"(loading...)", row.SourceOf, "", ""})
		}
	}

	table.Render()
	if plan.HasMore {
		fmt.Printf("showing %d of %d rows\n", len(plan.Rows), plan.Total)
	}
	return "" // tablewriter writes directly to stdout
}

// FormatTree renders the grouped view as an indented outline, expanded
// groups opened and collapsed groups summarized by count.
func (f *Formatter) FormatTree(vm *view.ViewModel) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(vm, "", "  ")
		fmt.Println(string(data))
		return ""
	}

	for _, row := range vm.Plan.Rows {
		indent := strings.Repeat("  ", row.Depth)
		switch row.Kind {
		case view.RowGroup:
			fmt.Println(indent + f.groupLine(row.Group, row.Expanded))
		case view.RowTool:
			fmt.Println(indent + row.Tool.Path)
		case view.RowPlaceholder:
			fmt.Println(indent + "(loading " + row.SourceOf + "...)")
		}
	}
	return ""
}

func (f *Formatter) groupLine(g *grouping.Group, expanded bool) string {
	marker := "+"
	if expanded {
		marker = "-"
	}
	line := fmt.Sprintf("%s %s (%d)", marker, g.Label, g.ChildCount)
	if g.ApprovalCount > 0 {
		line += fmt.Sprintf(" [%d need approval]", g.ApprovalCount)
	}
	if f.color && g.ApprovalCount > 0 {
		return color.YellowString(line)
	}
	return line
}

// FormatSources renders the stabilized source list plus load warnings.
func (f *Formatter) FormatSources(resp *client.SourcesResponse) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return ""
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Name", "Type", "Enabled"}),
	)
	for _, s := range resp.Sources {
		table.Append([]string{s.Name, string(s.Type), fmt.Sprintf("%v", s.Enabled)})
	}
	table.Render()

	for _, w := range resp.Warnings {
		if f.color {
			fmt.Println(color.YellowString("warning: %s", w))
		} else {
			fmt.Println("warning: " + w)
		}
	}
	return ""
}

// FormatStatus renders the daemon status summary.
func (f *Formatter) FormatStatus(status *api.StatusResponse) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(data))
		return ""
	}

	if f.color {
		color.Cyan("Toolscope Daemon Status:")
	} else {
		fmt.Println("Toolscope Daemon Status:")
	}
	fmt.Printf("  Uptime:  %ds\n", status.UptimeSeconds)
	fmt.Printf("  Tools:   %d\n", status.Tools)
	fmt.Printf("  Sources: %d\n", status.Sources)
	if len(status.Loading) > 0 {
		fmt.Printf("  Loading: %s\n", strings.Join(status.Loading, ", "))
	}
	for source, n := range status.WarningCounts {
		fmt.Printf("  Warnings (%s): %d\n", source, n)
	}
	return ""
}
