package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/errors"
)

var (
	listOffset int
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the aggregated tool inventory",
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		plan, err := c.ListTools("", listOffset, listLimit)
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		formatter.FormatPlan(plan)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "row offset into the flat list")
	listCmd.Flags().IntVar(&listLimit, "limit", 100, "maximum rows per page")
}
