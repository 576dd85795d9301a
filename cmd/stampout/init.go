package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/stampout/internal/plan"
)

//go:embed templates/plan.json templates/plan.yaml
var planTemplates embed.FS

// templateFor returns the embedded template path and the default output
// file name for a template format.
func templateFor(format string) (string, string, error) {
	switch strings.ToLower(format) {
	case "json":
		return "templates/plan.json", plan.DefaultPlanFile, nil
	case "yaml", "yml":
		return "templates/plan.yaml", "plan.yaml", nil
	default:
		return "", "", fmt.Errorf("unknown template format %q (use json or yaml)", format)
	}
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a plan file template",
		Long: `Init writes a plan file template to the current directory.

The template sets every plan field with its meaning. Edit rootInputPath,
outputPath and redactionTexts before running stampout.

Examples:
  # Create plan.json in the current directory
  stampout init

  # Create a commented YAML plan
  stampout init --format yaml

  # Create the plan at a specific path, overwriting an existing file
  stampout init -o books/plan.json -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", plan.DefaultPlanFile,
		"Output file path for the plan (default: plan.json, or plan.yaml with --format yaml)")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing plan file")
	cmd.Flags().String("format", "json",
		"Template format: json or yaml")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	templatePath, defaultName, err := templateFor(format)
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("output") {
		outputPath = defaultName
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("plan file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := planTemplates.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read plan template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created plan file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file before running stampout:")
	fmt.Fprintln(out, "  - rootInputPath and outputPath")
	fmt.Fprintln(out, "  - rootMode and folderMode for the layout of your documents")
	fmt.Fprintln(out, "  - redactionTexts, the stamps to remove")

	return nil
}
