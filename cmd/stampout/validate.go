package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/nao1215/stampout/internal/strategy"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the plan and show the selected strategy",
		Long: `Validate loads the plan, checks it and prints the typed plan together with
the traversal strategy its modes select. No document is opened or written.

Redaction texts are shown by count only.

Examples:
  # Validate plan.json in the current directory
  stampout validate

  # Also list the documents a run would redact and the directories it would skip
  stampout validate --list --plan books.yaml`,
		Args: cobra.NoArgs,
		RunE: runValidateCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"Enumerate work items and anomalies without redacting")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, _ []string) error {
	fsys := afero.NewOsFs()

	planPath, err := findPlan(cmd, fsys)
	if err != nil {
		return err
	}

	p, err := loadPlan(fsys, planPath)
	if err != nil {
		return err
	}

	s, err := strategy.Select(p)
	if err != nil {
		return err
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan:     %s\n", planPath)
	fmt.Fprintf(out, "Strategy: %s\n\n", s.Kind())
	if err := writeSnapshot(out, p.Snapshot()); err != nil {
		return err
	}

	if !list {
		return nil
	}

	enum, err := s.Enumerate(fsys, p)
	if err != nil {
		return err
	}
	writeEnumeration(out, enum)
	return nil
}

// writeSnapshot prints the typed plan as YAML.
func writeSnapshot(w io.Writer, snap plan.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

// writeEnumeration prints work items and anomalies in processing order.
func writeEnumeration(w io.Writer, enum *strategy.Enumeration) {
	items := enum.Items()
	fmt.Fprintf(w, "\nWork items: %d, anomalies: %d\n", len(items), len(enum.Entries)-len(items))
	for _, entry := range enum.Entries {
		if entry.Anomaly == model.AnomalyNone {
			fmt.Fprintf(w, "  %s -> %s\n", entry.Source, entry.Output)
			continue
		}
		fmt.Fprintf(w, "  [SKIP] %s: %s: %s\n", entry.Label(), entry.Anomaly, entry.Message)
		for _, candidate := range entry.Candidates {
			fmt.Fprintf(w, "         candidate: %s\n", candidate)
		}
	}
}
