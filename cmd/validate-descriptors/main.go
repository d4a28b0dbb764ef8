// Command validate-descriptors validates static source descriptor YAML
// files before they are registered with toolscoped.
//
// Usage:
//
//	validate-descriptors [options] path...
//
// Options:
//
//	-strict     Treat warnings as errors
//	-json       Output results as JSON
//	-quiet      Only output errors
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toolscope/toolscope/internal/provider"
)

func main() {
	var (
		strict bool
		asJSON bool
		quiet  bool
	)

	fs := flag.NewFlagSet("validate-descriptors", flag.ExitOnError)
	fs.BoolVar(&strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&asJSON, "json", false, "Output results as JSON")
	fs.BoolVar(&quiet, "quiet", false, "Only output errors")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(fs.Args(), strict, asJSON, quiet))
}

func run(paths []string, strict, asJSON, quiet bool) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no descriptor files given")
		return 1
	}

	exitCode := 0
	allResults := make(map[string]*provider.ValidationResult)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			exitCode = 1
			continue
		}

		files := []string{path}
		if info.IsDir() {
			files, err = descriptorFiles(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading directory %s: %v\n", path, err)
				exitCode = 1
				continue
			}
		}

		for _, file := range files {
			result, err := provider.ValidateDescriptorFile(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error validating file %s: %v\n", file, err)
				exitCode = 1
				continue
			}
			allResults[file] = result
		}
	}

	if asJSON {
		outputJSON(allResults)
	} else {
		outputText(allResults, quiet, strict)
	}

	for _, result := range allResults {
		if !result.Valid {
			exitCode = 1
		}
		if strict && len(result.Warnings) > 0 {
			exitCode = 1
		}
	}

	return exitCode
}

func descriptorFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func outputJSON(results map[string]*provider.ValidationResult) {
	output := struct {
		Results map[string]*provider.ValidationResult `json:"results"`
		Summary struct {
			Total   int `json:"total"`
			Valid   int `json:"valid"`
			Invalid int `json:"invalid"`
		} `json:"summary"`
	}{
		Results: results,
	}

	for _, r := range results {
		output.Summary.Total++
		if r.Valid {
			output.Summary.Valid++
		} else {
			output.Summary.Invalid++
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func outputText(results map[string]*provider.ValidationResult, quiet, strict bool) {
	validCount := 0
	invalidCount := 0

	for path, result := range results {
		if result.Valid && len(result.Warnings) == 0 && quiet {
			validCount++
			continue
		}

		if result.Valid {
			validCount++
			if !quiet {
				fmt.Printf("✓ %s\n", path)
			}
		} else {
			invalidCount++
			fmt.Printf("✗ %s\n", path)
		}

		for _, err := range result.Errors {
			fmt.Printf("  ERROR: %s: %s\n", err.Field, err.Message)
		}

		if !quiet || strict {
			for _, warn := range result.Warnings {
				fmt.Printf("  WARN:  %s: %s\n", warn.Field, warn.Message)
			}
		}
	}

	if !quiet {
		fmt.Println()
		fmt.Printf("Summary: %d valid, %d invalid\n", validCount, invalidCount)
	}
}
