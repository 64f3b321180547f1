package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

func cloudFrontPriceClassAll() Rule {
	r := Rule{
		ID:          "rule-14",
		Name:        "CloudFront all-edge price class",
		Service:     "CloudFront",
		Severity:    SeverityLow,
		Category:    CategoryOverprovisioned,
		Description: "PriceClass_All serves from every edge region at the highest per-GB rates; most audiences are regional.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, dist := range m.CloudFrontDistributions {
			if dist.PriceClass != "PriceClass_All" {
				continue
			}
			current := pricing.CloudFrontAssumedMonthlyGB * pricing.CloudFrontAllRegionsPerGB
			optimized := pricing.CloudFrontAssumedMonthlyGB * pricing.CloudFront100PerGB
			findings = append(findings, r.finding(
				dist.Name,
				fmt.Sprintf("Distribution %q uses PriceClass_All", dist.Name),
				fmt.Sprintf("Assuming %.0f GB/month transfer, restricting to the North America/Europe class cuts the per-GB rate. Keep All only for a genuinely global audience.", pricing.CloudFrontAssumedMonthlyGB),
				"PriceClass_All",
				"PriceClass_100",
				current, optimized,
			))
		}
		return findings
	}
	return r
}
