package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/errors"
	"github.com/toolscope/toolscope/internal/domain/inventory"
)

var (
	sourceType     string
	sourceCommand  string
	sourceURL      string
	sourceFile     string
	sourceApproval string
	sourceDisabled bool
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage configured tool sources",
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		resp, err := c.ListSources()
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		formatter.FormatSources(resp)
	},
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new tool source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		config := map[string]string{}
		if sourceCommand != "" {
			config["command"] = sourceCommand
		}
		if sourceURL != "" {
			config["url"] = sourceURL
		}
		if sourceFile != "" {
			config["file"] = sourceFile
		}
		if sourceApproval != "" {
			config["approval"] = sourceApproval
		}

		record := inventory.SourceRecord{
			Name:    args[0],
			Type:    inventory.SourceType(sourceType),
			Enabled: !sourceDisabled,
			Config:  config,
		}

		created, err := c.AddSource(record)
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		fmt.Printf("added source '%s' (%s)\n", created.Name, created.ID)
	},
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a tool source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		if err := c.RemoveSource(args[0]); err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		fmt.Printf("removed source '%s'\n", args[0])
	},
}

var sourcesEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a tool source",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setEnabled(args[0], true) },
}

var sourcesDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a tool source without removing it",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setEnabled(args[0], false) },
}

func setEnabled(name string, enabled bool) {
	c := apiClient()
	formatter := newFormatter()

	if err := c.SetSourceEnabled(name, enabled); err != nil {
		fmt.Println(formatter.FormatError(errors.Classify(err)))
		os.Exit(1)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("%s source '%s'\n", state, name)
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesAddCmd, sourcesRemoveCmd, sourcesEnableCmd, sourcesDisableCmd)

	sourcesAddCmd.Flags().StringVar(&sourceType, "type", "mcp", "source type: mcp, openapi, or graphql")
	sourcesAddCmd.Flags().StringVar(&sourceCommand, "command", "", "command line for a stdio MCP server")
	sourcesAddCmd.Flags().StringVar(&sourceURL, "url", "", "endpoint for a streamable MCP server")
	sourcesAddCmd.Flags().StringVar(&sourceFile, "file", "", "descriptor file for openapi/graphql sources")
	sourcesAddCmd.Flags().StringVar(&sourceApproval, "approval", "", "default approval mode: required or auto")
	sourcesAddCmd.Flags().BoolVar(&sourceDisabled, "disabled", false, "register the source without enabling it")
}
