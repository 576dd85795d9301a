package plan

import "testing"

func TestParseRootMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    RootMode
		wantErr bool
	}{
		{input: "single", want: RootSingle},
		{input: "Multi", want: RootMulti},
		{input: " MULTI ", want: RootMulti},
		{input: "", wantErr: true},
		{input: "many", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseRootMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRootMode(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRootMode(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRootMode(%q): expected %s, got %s", tt.input, tt.want, got)
		}
	}
}

func TestParseFolderMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    FolderMode
		wantErr bool
	}{
		{input: "single", want: FolderSingle},
		{input: "list", want: FolderList},
		{input: "Parenting", want: FolderParenting},
		{input: "parenting_singles", want: FolderParenting},
		{input: "recursive", want: FolderRecursive},
		{input: "parenting_multi", wantErr: true},
		{input: "tree", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFolderMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFolderMode(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFolderMode(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFolderMode(%q): expected %s, got %s", tt.input, tt.want, got)
		}
	}
}

func TestModeStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, m := range []FolderMode{FolderSingle, FolderList, FolderParenting, FolderRecursive} {
		got, err := ParseFolderMode(m.String())
		if err != nil || got != m {
			t.Errorf("expected %s to parse back, got %s (%v)", m, got, err)
		}
	}
	for _, m := range []RootMode{RootSingle, RootMulti} {
		got, err := ParseRootMode(m.String())
		if err != nil || got != m {
			t.Errorf("expected %s to parse back, got %s (%v)", m, got, err)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := invalidPath(KeyRootInputPath, "/in", "does not exist", nil)
	want := "invalid path: rootInputPath (/in): does not exist"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
