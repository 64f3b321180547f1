package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

func apiGatewayNLBPairing() Rule {
	r := Rule{
		ID:          "rule-07",
		Name:        "REST API fronting a network load balancer",
		Service:     "API Gateway",
		Severity:    SeverityMedium,
		Category:    CategoryArchitectural,
		Description: "Stacking a REST API on an NLB pays for two managed entry points where one suffices.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, api := range m.APIGateways {
			if api.APIType != "REST" || !api.PairedWithNLB {
				continue
			}
			requests := pricing.APIGatewayAssumedMonthlyMillions
			current := requests*pricing.APIGatewayRESTPerMillion + pricing.NLBHourly*pricing.HoursPerMonth
			optimized := requests * pricing.APIGatewayHTTPPerMillion
			findings = append(findings, r.finding(
				api.Name,
				fmt.Sprintf("API %q pairs a REST API with an NLB", api.Name),
				"An HTTP API with a direct integration replaces the REST-plus-NLB sandwich for most request/response workloads.",
				"REST API + network load balancer",
				"HTTP API with direct integration",
				current, optimized,
			))
		}
		return findings
	}
	return r
}

func apiGatewayRESTOverHTTP() Rule {
	r := Rule{
		ID:          "rule-08",
		Name:        "REST API where HTTP API suffices",
		Service:     "API Gateway",
		Severity:    SeverityMedium,
		Category:    CategoryArchitectural,
		Description: "REST APIs cost 3.5x HTTP APIs per request; most proxies use none of the REST-only features.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, api := range m.APIGateways {
			if api.APIType != "REST" {
				continue
			}
			requests := pricing.APIGatewayAssumedMonthlyMillions
			current := requests * pricing.APIGatewayRESTPerMillion
			optimized := requests * pricing.APIGatewayHTTPPerMillion
			findings = append(findings, r.finding(
				api.Name,
				fmt.Sprintf("API %q uses REST API pricing", api.Name),
				fmt.Sprintf("At %.0fM requests/month the HTTP API tier serves the same proxy integrations at a third of the cost. Check for usage plans or request validation before migrating.", requests),
				"API Gateway REST API",
				"API Gateway HTTP API",
				current, optimized,
			))
		}
		return findings
	}
	return r
}
