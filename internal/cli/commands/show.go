package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/cache"
	"github.com/toolscope/toolscope/internal/cli/errors"
	"github.com/toolscope/toolscope/internal/cli/output"
)

var (
	showMarkdown bool
	showNoCache  bool
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Show a tool's hydrated detail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := apiClient()
		formatter := newFormatter()
		path := args[0]

		detailCache := newDetailCache()
		if !showNoCache && detailCache != nil {
			if detail, ok := detailCache.Get(path); ok {
				printDetail(output.NewDetailResult(detail))
				return
			}
		}

		detail, err := c.GetToolDetail(path, 5*time.Second)
		if err != nil {
			fmt.Println(formatter.FormatError(errors.Classify(err)))
			os.Exit(1)
		}
		if detailCache != nil {
			detailCache.Set(path, detail)
		}
		printDetail(output.NewDetailResult(detail))
	},
}

func newDetailCache() *cache.DetailCache {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return cache.NewDetailCache(filepath.Join(home, ".cache", "toolscope", "details"))
}

func printDetail(result *output.DetailResult) {
	switch {
	case jsonOutput:
		s, err := result.JSON()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(s)
	case showMarkdown:
		fmt.Println(result.Markdown())
	default:
		fmt.Println(result.Text())
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showMarkdown, "markdown", false, "render as markdown")
	showCmd.Flags().BoolVar(&showNoCache, "no-cache", false, "skip the local detail cache")
}
