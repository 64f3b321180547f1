package history

import (
	"context"
	"testing"
	"time"

	"github.com/costlens/costlens/pkg/analyzer"
	"github.com/costlens/costlens/pkg/report"
	"github.com/costlens/costlens/pkg/rules"
)

func testReport(fileName string, saving float64) *analyzer.Report {
	return &analyzer.Report{
		FileName: fileName,
		Format:   "terraform",
		Findings: []rules.Finding{{ID: "rule-11-nat-gateways", Service: "NAT Gateway"}},
		Summary:  report.CostSummary{MonthlySaving: saving},
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	archive := NewArchive(NewDirStore(t.TempDir()))
	archive.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	key, err := archive.Save(ctx, testReport("main.tf", 75))
	if err != nil {
		t.Fatal(err)
	}
	if key != "reports/20250801T120000-main-tf.json" {
		t.Errorf("key = %q", key)
	}

	loaded, err := archive.Load(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.FileName != "main.tf" || len(loaded.Findings) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestArchiveEntriesNewestFirst(t *testing.T) {
	archive := NewArchive(NewDirStore(t.TempDir()))
	ctx := context.Background()

	stamps := []time.Time{
		time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC),
	}
	for i, stamp := range stamps {
		archive.now = func() time.Time { return stamp }
		if _, err := archive.Save(ctx, testReport("stack.ts", float64(i))); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := archive.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].MonthlySaving != 1 {
		t.Errorf("newest entry should list first: %+v", entries)
	}
}

func TestArchiveEntriesSkipsCorrupt(t *testing.T) {
	store := NewDirStore(t.TempDir())
	ctx := context.Background()
	if err := store.Put(ctx, "reports/garbage.json", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	archive := NewArchive(store)
	if _, err := archive.Save(ctx, testReport("main.tf", 10)); err != nil {
		t.Fatal(err)
	}

	entries, err := archive.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %+v, corrupt member should be skipped", entries)
	}
}

func TestArchiveEmptyStore(t *testing.T) {
	archive := NewArchive(NewDirStore(t.TempDir()))
	entries, err := archive.Entries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want none", entries)
	}
}
