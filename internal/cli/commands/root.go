package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/toolscope/toolscope/internal/cli/client"
	"github.com/toolscope/toolscope/internal/cli/inference"
	"github.com/toolscope/toolscope/internal/cli/output"
)

var (
	cfgFile    string
	daemonAddr string
	jsonOutput bool
	noColor    bool
	timeout    int
)

var rootCmd = &cobra.Command{
	Use:   "toolscope",
	Short: "Toolscope CLI - inventory browser for aggregated tool sources",
	Long: `Toolscope indexes the tools exposed by configured sources (MCP servers,
OpenAPI and GraphQL descriptors) into one searchable inventory.
This CLI talks to the toolscoped daemon.`,
}

func Execute() error {
	// Simple command inference - prepend inferred command to args
	if len(os.Args) > 1 {
		inferredCmd, _ := inference.InferCommand(os.Args[1:])
		if inferredCmd != "" {
			// Insert the inferred command after the program name
			newArgs := make([]string, 0, len(os.Args)+1)
			newArgs = append(newArgs, os.Args[0])
			newArgs = append(newArgs, inferredCmd)
			newArgs = append(newArgs, os.Args[1:]...)
			os.Args = newArgs
		}
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/toolscope/cli.toml)")
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", "", "daemon address (default http://localhost:6340)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 30000, "request timeout in milliseconds")
}

type cliConfig struct {
	Addr      string `toml:"addr"`
	TimeoutMS int    `toml:"timeout_ms"`
}

func loadConfig() cliConfig {
	cfg := cliConfig{Addr: "http://localhost:6340"}

	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg
		}
		path = filepath.Join(home, ".config", "toolscope", "cli.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, &cfg); err != nil || cfg.Addr == "" {
		cfg.Addr = "http://localhost:6340"
	}
	return cfg
}

func apiClient() *client.ControlClient {
	cfg := loadConfig()
	addr := cfg.Addr
	if daemonAddr != "" {
		addr = daemonAddr
	}
	ms := timeout
	if cfg.TimeoutMS > 0 && !rootCmd.PersistentFlags().Changed("timeout") {
		ms = cfg.TimeoutMS
	}
	return client.NewControlClient(addr, time.Duration(ms)*time.Millisecond)
}

func newFormatter() *output.Formatter {
	format := output.FormatText
	if jsonOutput {
		format = output.FormatJSON
	}
	return output.NewFormatter(format, !noColor)
}
