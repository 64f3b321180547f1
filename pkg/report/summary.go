// Package report aggregates findings into cost summaries and the
// remediation roadmap. Aggregates are pure functions of the findings
// list, recomputed every run and never cached.
package report

import (
	"math"
	"sort"

	"github.com/costlens/costlens/pkg/rules"
)

// ServiceCost is the per-service cost aggregate.
type ServiceCost struct {
	Service              string  `json:"service"`
	FindingCount         int     `json:"findingCount"`
	CurrentMonthlyCost   float64 `json:"currentMonthlyCost"`
	OptimizedMonthlyCost float64 `json:"optimizedMonthlyCost"`
	MonthlySaving        float64 `json:"monthlySaving"`
	SavingPercent        int     `json:"savingPercent"`
}

// CostSummary is the whole-analysis cost aggregate.
type CostSummary struct {
	Breakdown            []ServiceCost `json:"breakdown"`
	CurrentMonthlyCost   float64       `json:"currentMonthlyCost"`
	OptimizedMonthlyCost float64       `json:"optimizedMonthlyCost"`
	MonthlySaving        float64       `json:"monthlySaving"`
	AnnualSaving         float64       `json:"annualSaving"`
	SavingPercent        int           `json:"savingPercent"`
}

// Summarize groups findings by exact service-name string and derives the
// per-service and total deltas. Sums are accumulated on the raw values
// and rounded to whole currency units once, per service, at aggregation
// time; the totals are sums of the rounded per-service figures so that
// breakdown rows always add up to the totals exactly.
func Summarize(findings []rules.Finding) CostSummary {
	type accumulator struct {
		current   float64
		optimized float64
		count     int
	}
	groups := map[string]*accumulator{}
	order := []string{}

	for _, f := range findings {
		acc, ok := groups[f.Service]
		if !ok {
			acc = &accumulator{}
			groups[f.Service] = acc
			order = append(order, f.Service)
		}
		acc.current += f.CurrentMonthlyCost
		acc.optimized += f.OptimizedMonthlyCost
		acc.count++
	}

	summary := CostSummary{Breakdown: []ServiceCost{}}
	for _, service := range order {
		acc := groups[service]
		current := math.Round(acc.current)
		optimized := math.Round(acc.optimized)
		saving := current - optimized
		pct := 0
		if current != 0 {
			pct = int(math.Round(saving / current * 100))
		}
		summary.Breakdown = append(summary.Breakdown, ServiceCost{
			Service:              service,
			FindingCount:         acc.count,
			CurrentMonthlyCost:   current,
			OptimizedMonthlyCost: optimized,
			MonthlySaving:        saving,
			SavingPercent:        pct,
		})
		summary.CurrentMonthlyCost += current
		summary.OptimizedMonthlyCost += optimized
		summary.MonthlySaving += saving
	}

	sort.SliceStable(summary.Breakdown, func(i, j int) bool {
		return summary.Breakdown[i].MonthlySaving > summary.Breakdown[j].MonthlySaving
	})

	summary.AnnualSaving = summary.MonthlySaving * 12
	if summary.CurrentMonthlyCost != 0 {
		summary.SavingPercent = int(math.Round(summary.MonthlySaving / summary.CurrentMonthlyCost * 100))
	}
	return summary
}

// Roadmap partitions findings into remediation tiers.
type Roadmap struct {
	QuickWins     []rules.Finding `json:"quickWins"`
	MediumEffort  []rules.Finding `json:"mediumEffort"`
	NeedsPlanning []rules.Finding `json:"needsPlanning"`
}

// mediumEffortServices are the services whose overprovisioning fixes are
// a config change plus a redeploy.
var mediumEffortServices = map[string]bool{
	"Lambda": true,
	"RDS":    true,
	"ECS":    true,
}

// BuildRoadmap applies the fixed classification table: environment
// mismatches, S3 feature gaps and low-severity CloudFront findings are
// quick wins; Lambda/RDS/ECS overprovisioning is medium effort;
// everything else needs planning. The table is a deliberate product
// decision, not derived from severity or saving.
func BuildRoadmap(findings []rules.Finding) Roadmap {
	roadmap := Roadmap{
		QuickWins:     []rules.Finding{},
		MediumEffort:  []rules.Finding{},
		NeedsPlanning: []rules.Finding{},
	}
	for _, f := range findings {
		switch {
		case f.Category == rules.CategoryEnvMismatch,
			f.Service == "S3" && f.Category == rules.CategoryMissingFeature,
			f.Service == "CloudFront" && f.Severity == rules.SeverityLow:
			roadmap.QuickWins = append(roadmap.QuickWins, f)
		case f.Category == rules.CategoryOverprovisioned && mediumEffortServices[f.Service]:
			roadmap.MediumEffort = append(roadmap.MediumEffort, f)
		default:
			roadmap.NeedsPlanning = append(roadmap.NeedsPlanning, f)
		}
	}
	return roadmap
}
