package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show toolscoped daemon status",
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		status, err := c.GetStatus()
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		formatter.FormatStatus(status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
