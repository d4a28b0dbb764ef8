package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/errors"
)

var findLimit int

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search tools by name tokens and description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		plan, err := c.ListTools(strings.Join(args, " "), 0, findLimit)
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		formatter.FormatPlan(plan)
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().IntVar(&findLimit, "limit", 100, "maximum rows to return")
}
