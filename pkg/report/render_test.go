package report

import (
	"strings"
	"testing"

	"github.com/costlens/costlens/pkg/rules"
)

func TestRenderSections(t *testing.T) {
	findings := testFindings()
	summary := Summarize(findings)
	roadmap := BuildRoadmap(findings)

	out := Render(findings, summary, roadmap)

	for _, want := range []string{"FINDINGS", "COST SUMMARY", "ROADMAP", "Quick wins", "Medium effort", "Needs planning"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "save $415/mo") {
		t.Errorf("RDS row missing from summary:\n%s", out)
	}
	if !strings.Contains(out, "saving $421/mo ($5052/yr, 50%)") {
		t.Errorf("total line wrong:\n%s", out)
	}
}

func TestRenderNoFindings(t *testing.T) {
	out := Render(nil, Summarize(nil), BuildRoadmap(nil))
	if !strings.Contains(out, "No cost anti-patterns detected.") {
		t.Errorf("empty-result message missing:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	findings := []rules.Finding{{
		ID: "rule-11-nat", Service: "NAT Gateway", Title: "3 NAT gateways declared",
		Severity: rules.SeverityHigh, Category: rules.CategoryArchitectural,
		CurrentMonthlyCost: 112, OptimizedMonthlyCost: 37, MonthlySaving: 75, SavingPercent: 67,
	}}
	a := Render(findings, Summarize(findings), BuildRoadmap(findings))
	b := Render(findings, Summarize(findings), BuildRoadmap(findings))
	if a != b {
		t.Error("render output is not deterministic for identical input")
	}
}
