package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

func natGatewayMultiple() Rule {
	r := Rule{
		ID:          "rule-11",
		Name:        "Multiple NAT gateways",
		Service:     "NAT Gateway",
		Severity:    SeverityHigh,
		Category:    CategoryArchitectural,
		Description: "Each NAT gateway bills hourly plus per-GB. Multi-AZ NAT redundancy is usually a production-only need.",
	}
	r.Check = func(m *model.Model) []Finding {
		group := m.NATGateways
		if group == nil || group.Count <= 1 {
			return nil
		}
		current := pricing.NATGatewayMonthly(group.Count)
		optimized := pricing.NATGatewayMonthly(1)
		return []Finding{r.finding(
			group.Name,
			fmt.Sprintf("%d NAT gateways declared", group.Count),
			"Consolidate to one gateway, or replace with VPC endpoints for S3/DynamoDB traffic, and add per-AZ gateways only where an availability requirement exists.",
			fmt.Sprintf("%d NAT gateways", group.Count),
			"1 NAT gateway + VPC endpoints",
			current, optimized,
		)}
	}
	return r
}
