package strategy

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// newTree creates files and directories in a fresh in-memory filesystem.
// A trailing slash creates a directory. Files contain a watermark.
func newTree(t *testing.T, paths ...string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			if err := fsys.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("failed to create %s: %v", p, err)
			}
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", p, err)
		}
		if err := afero.WriteFile(fsys, p, []byte("page WM\fWM again"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}
	return fsys
}

// mustPlan validates raw, filling in the required keys that are missing.
func mustPlan(t *testing.T, fsys afero.Fs, raw plan.Raw) *plan.Plan {
	t.Helper()

	if _, ok := raw[plan.KeyRedactionTexts]; !ok {
		raw[plan.KeyRedactionTexts] = []any{"WM"}
	}
	p, err := plan.Validate(fsys, raw)
	if err != nil {
		t.Fatalf("failed to validate plan: %v", err)
	}
	return p
}

func sources(items []model.WorkItem) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Source
	}
	return result
}

func anomalyDirs(anomalies []*model.ItemOutcome) map[string]model.AnomalyKind {
	result := make(map[string]model.AnomalyKind, len(anomalies))
	for _, a := range anomalies {
		result[a.Dir] = a.Anomaly
	}
	return result
}
