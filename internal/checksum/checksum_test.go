package checksum

import (
	"slices"
	"testing"
)

func TestSum_Stable(t *testing.T) {
	a := Sum([]byte(`[{"username":"ada"}]`))
	if a != Sum([]byte(`[{"username":"ada"}]`)) {
		t.Error("same content should hash the same")
	}
	if a == Sum([]byte(`[{"username":"bob"}]`)) {
		t.Error("different content should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
}

func TestDiff(t *testing.T) {
	disk := map[string]string{
		"same.json":    "1",
		"edited.yaml":  "2b",
		"new/fall.yml": "3",
	}
	indexed := map[string]string{
		"same.json":   "1",
		"edited.yaml": "2a",
		"gone.json":   "4",
	}
	changed, removed := Diff(disk, indexed)
	if !slices.Equal(changed, []string{"edited.yaml", "new/fall.yml"}) {
		t.Errorf("changed = %v", changed)
	}
	if !slices.Equal(removed, []string{"gone.json"}) {
		t.Errorf("removed = %v", removed)
	}
}

func TestDiff_Empty(t *testing.T) {
	changed, removed := Diff(nil, nil)
	if len(changed) != 0 || len(removed) != 0 {
		t.Errorf("changed=%v removed=%v", changed, removed)
	}
}
