package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/errors"
)

var (
	treeGroup string
	treeQuery string
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the grouped tool inventory",
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()

		vm, err := c.Tree(treeGroup, treeQuery)
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		formatter.FormatTree(vm)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVar(&treeGroup, "group", "source", "grouping mode: source, namespace, or approval")
	treeCmd.Flags().StringVarP(&treeQuery, "query", "q", "", "filter tools before grouping")
}
