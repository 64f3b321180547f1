package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/costlens/costlens/pkg/analyzer"
	"github.com/costlens/costlens/pkg/rules"
	"github.com/goccy/go-json"
)

// Archive writes analysis reports into a Store under stable keys and
// reads them back for listing.
type Archive struct {
	store Store
	now   func() time.Time
}

// NewArchive wraps a store. The clock is injectable for tests.
func NewArchive(store Store) *Archive {
	return &Archive{store: store, now: time.Now}
}

// Entry summarizes one archived report for listings.
type Entry struct {
	Key           string  `json:"key"`
	FileName      string  `json:"fileName"`
	Findings      int     `json:"findings"`
	MonthlySaving float64 `json:"monthlySaving"`
}

// Save archives a report under reports/<timestamp>-<sanitized file name>.json.
func (a *Archive) Save(ctx context.Context, report *analyzer.Report) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	key := fmt.Sprintf("reports/%s-%s.json",
		a.now().UTC().Format("20060102T150405"),
		sanitizeFileName(report.FileName))
	if err := a.store.Put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Load reads one archived report back.
func (a *Archive) Load(ctx context.Context, key string) (*analyzer.Report, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var report analyzer.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding archived report %s: %w", key, err)
	}
	return &report, nil
}

// Entries lists archived reports, newest first. Unreadable entries are
// skipped; a corrupt archive member must not break the listing.
func (a *Archive) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := a.store.List(ctx, "reports/")
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	entries := []Entry{}
	for _, key := range keys {
		report, err := a.Load(ctx, key)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:           key,
			FileName:      report.FileName,
			Findings:      len(report.Findings),
			MonthlySaving: report.Summary.MonthlySaving,
		})
	}
	return entries, nil
}

// sanitizeFileName reuses the finding-identifier sanitizer so archive
// keys stay filesystem- and S3-safe.
func sanitizeFileName(name string) string {
	id := rules.FindingID("x", name)
	return strings.TrimPrefix(id, "x-")
}
