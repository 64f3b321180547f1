package report

import (
	"encoding/json"
	"testing"

	"github.com/costlens/costlens/pkg/rules"
	"github.com/sebdah/goldie/v2"
)

func testFindings() []rules.Finding {
	return []rules.Finding{
		{
			ID: "rule-03-dev-db", Service: "RDS",
			Severity: rules.SeverityCritical, Category: rules.CategoryEnvMismatch,
			CurrentMonthlyCost: 730, OptimizedMonthlyCost: 365, MonthlySaving: 365,
		},
		{
			ID: "rule-04-dev-db", Service: "RDS",
			Severity: rules.SeverityHigh, Category: rules.CategoryOverprovisioned,
			CurrentMonthlyCost: 100, OptimizedMonthlyCost: 50, MonthlySaving: 50,
		},
		{
			ID: "rule-09-raw", Service: "S3",
			Severity: rules.SeverityMedium, Category: rules.CategoryMissingFeature,
			CurrentMonthlyCost: 12, OptimizedMonthlyCost: 6, MonthlySaving: 6,
		},
	}
}

func TestSummarizeGroupsByService(t *testing.T) {
	summary := Summarize(testFindings())

	if len(summary.Breakdown) != 2 {
		t.Fatalf("breakdown rows = %d, want 2", len(summary.Breakdown))
	}
	rds := summary.Breakdown[0]
	if rds.Service != "RDS" || rds.FindingCount != 2 {
		t.Errorf("first row = %+v, want RDS with 2 findings sorted first", rds)
	}
	if rds.CurrentMonthlyCost != 830 || rds.MonthlySaving != 415 {
		t.Errorf("rds costs = %+v", rds)
	}
	if summary.MonthlySaving != 421 || summary.AnnualSaving != 5052 {
		t.Errorf("totals = %+v", summary)
	}
	if summary.SavingPercent != 50 {
		t.Errorf("percent = %d, want 50", summary.SavingPercent)
	}
}

func TestBreakdownSumsToTotals(t *testing.T) {
	summary := Summarize(testFindings())

	var current, optimized, saving float64
	for _, row := range summary.Breakdown {
		current += row.CurrentMonthlyCost
		optimized += row.OptimizedMonthlyCost
		saving += row.MonthlySaving
	}
	if current != summary.CurrentMonthlyCost || optimized != summary.OptimizedMonthlyCost || saving != summary.MonthlySaving {
		t.Errorf("breakdown (%v/%v/%v) does not sum to totals (%v/%v/%v)",
			current, optimized, saving,
			summary.CurrentMonthlyCost, summary.OptimizedMonthlyCost, summary.MonthlySaving)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if len(summary.Breakdown) != 0 {
		t.Errorf("breakdown = %+v, want empty", summary.Breakdown)
	}
	if summary.SavingPercent != 0 {
		t.Errorf("percent = %d, want 0 with no cost", summary.SavingPercent)
	}
}

func TestSummarizeGolden(t *testing.T) {
	summary := Summarize(testFindings())
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	g := goldie.New(t)
	g.Assert(t, "cost_summary", data)
}

func TestBuildRoadmap(t *testing.T) {
	findings := []rules.Finding{
		{ID: "rule-03-db", Service: "RDS", Category: rules.CategoryEnvMismatch, Severity: rules.SeverityCritical},
		{ID: "rule-09-bucket", Service: "S3", Category: rules.CategoryMissingFeature, Severity: rules.SeverityMedium},
		{ID: "rule-14-cdn", Service: "CloudFront", Category: rules.CategoryOverprovisioned, Severity: rules.SeverityLow},
		{ID: "rule-01-fn", Service: "Lambda", Category: rules.CategoryOverprovisioned, Severity: rules.SeverityHigh},
		{ID: "rule-06-task", Service: "ECS", Category: rules.CategoryOverprovisioned, Severity: rules.SeverityHigh},
		{ID: "rule-11-nat", Service: "NAT Gateway", Category: rules.CategoryArchitectural, Severity: rules.SeverityHigh},
		{ID: "rule-15-ec2", Service: "EC2", Category: rules.CategoryOverprovisioned, Severity: rules.SeverityMedium},
	}

	roadmap := BuildRoadmap(findings)

	wantQuick := []string{"rule-03-db", "rule-09-bucket", "rule-14-cdn"}
	if len(roadmap.QuickWins) != len(wantQuick) {
		t.Fatalf("quick wins = %+v", roadmap.QuickWins)
	}
	for i, want := range wantQuick {
		if roadmap.QuickWins[i].ID != want {
			t.Errorf("quick win %d = %q, want %q", i, roadmap.QuickWins[i].ID, want)
		}
	}

	wantMedium := []string{"rule-01-fn", "rule-06-task"}
	if len(roadmap.MediumEffort) != len(wantMedium) {
		t.Fatalf("medium effort = %+v", roadmap.MediumEffort)
	}

	// EC2 overprovisioning is not in the medium-effort service set; it and
	// the architectural NAT finding need planning.
	wantPlanning := []string{"rule-11-nat", "rule-15-ec2"}
	if len(roadmap.NeedsPlanning) != len(wantPlanning) {
		t.Fatalf("needs planning = %+v", roadmap.NeedsPlanning)
	}
	for i, want := range wantPlanning {
		if roadmap.NeedsPlanning[i].ID != want {
			t.Errorf("needs planning %d = %q, want %q", i, roadmap.NeedsPlanning[i].ID, want)
		}
	}
}
