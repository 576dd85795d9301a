package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errNoPlanFile is returned when no --plan is given and the working
// directory holds no plan file.
var errNoPlanFile = errors.New("no plan file found: create plan.json here (see 'stampout init') or pass --plan <path>")

// NewRootCmd creates the root command for stampout.
// Running it without a subcommand performs a redaction run.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stampout",
		Short: "Remove license stamps and watermark text from PDF documents",
		Long: `stampout removes license stamps and other watermark text from PDF documents.

A plan file (plan.json, plan.yaml or plan.yml in the current directory, or
--plan) names the input, the output and the texts to redact. The plan's
rootMode and folderMode select how the input is traversed:

  single             one document in, one redacted document out
  multi + list       every document directly inside rootInputPath
  multi + parenting  exactly one document in each direct subdirectory
  multi + recursive  exactly one document in every directory at any depth

Directories without a document, or with several, are reported and skipped.
A document that fails is reported; the remaining documents are still processed.

Examples:
  # Redact using plan.json in the current directory
  stampout

  # Use another plan and show what would happen without touching documents
  stampout --plan books.yaml --dry-run

  # Write a Markdown report next to the terminal summary
  stampout -r markdown -o report.md`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRedactCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("plan", "p", "",
		"Plan file path (default: plan.json, plan.yaml or plan.yml in the current directory)")
	cmd.PersistentFlags().String("config", "",
		"Settings file path (default: stampout.yaml in the current directory, then the XDG config directory)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	addRunFlags(cmd)

	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	os.Exit(execute(NewRootCmd(), os.Stderr))
}

// execute runs cmd and prints a fatal error as a single line on stderr.
// It returns the process exit status.
func execute(cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "stampout: %v\n", err)
		return 1
	}
	return 0
}
