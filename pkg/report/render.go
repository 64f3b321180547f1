package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/costlens/costlens/pkg/rules"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF99")).
			MarginBottom(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	severityStyles = map[rules.Severity]lipgloss.Style{
		rules.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		rules.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		rules.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF66")),
		rules.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
	}
)

// Render formats findings, summary and roadmap for a terminal. Output is
// deterministic for a given input so it can be golden-tested.
func Render(findings []rules.Finding, summary CostSummary, roadmap Roadmap) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("FINDINGS"))
	b.WriteString("\n")
	if len(findings) == 0 {
		b.WriteString(dimStyle.Render("  No cost anti-patterns detected."))
		b.WriteString("\n")
	}
	for _, f := range findings {
		sev := severityStyles[f.Severity]
		b.WriteString(fmt.Sprintf("  %s %s\n", sev.Render(fmt.Sprintf("[%s]", strings.ToUpper(string(f.Severity)))), f.Title))
		b.WriteString(dimStyle.Render(fmt.Sprintf("    %s -> %s  saves $%.0f/mo (%d%%)",
			f.CurrentConfig, f.RecommendedConfig, f.MonthlySaving, f.SavingPercent)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("COST SUMMARY"))
	b.WriteString("\n")
	for _, row := range summary.Breakdown {
		b.WriteString(fmt.Sprintf("  %-14s %2d finding(s)  $%8.0f -> $%8.0f  save $%.0f/mo\n",
			row.Service, row.FindingCount, row.CurrentMonthlyCost, row.OptimizedMonthlyCost, row.MonthlySaving))
	}
	b.WriteString(fmt.Sprintf("  Total: $%.0f/mo -> $%.0f/mo, saving $%.0f/mo ($%.0f/yr, %d%%)\n\n",
		summary.CurrentMonthlyCost, summary.OptimizedMonthlyCost,
		summary.MonthlySaving, summary.AnnualSaving, summary.SavingPercent))

	b.WriteString(headerStyle.Render("ROADMAP"))
	b.WriteString("\n")
	writeTier(&b, "Quick wins", roadmap.QuickWins)
	writeTier(&b, "Medium effort", roadmap.MediumEffort)
	writeTier(&b, "Needs planning", roadmap.NeedsPlanning)

	return b.String()
}

func writeTier(b *strings.Builder, label string, findings []rules.Finding) {
	b.WriteString(fmt.Sprintf("  %s (%d)\n", label, len(findings)))
	for _, f := range findings {
		b.WriteString(dimStyle.Render(fmt.Sprintf("    - %s: %s", f.ID, f.Title)))
		b.WriteString("\n")
	}
}
