package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

// Share of provisioned cost assumed to remain after moving a spiky
// workload to on-demand billing.
const dynamoOnDemandCostShare = 0.4

func dynamoDBProvisioned() Rule {
	r := Rule{
		ID:          "rule-12",
		Name:        "Provisioned DynamoDB billing",
		Service:     "DynamoDB",
		Severity:    SeverityMedium,
		Category:    CategoryOverprovisioned,
		Description: "Provisioned capacity bills around the clock; on-demand bills per request and wins for spiky or low traffic.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, table := range m.DynamoDBTables {
			if table.BillingMode != "PROVISIONED" {
				continue
			}
			rcu := table.ReadCapacity
			if rcu == 0 {
				rcu = pricing.DynamoDBDefaultRCU
			}
			wcu := table.WriteCapacity
			if wcu == 0 {
				wcu = pricing.DynamoDBDefaultWCU
			}
			current := float64(rcu)*pricing.DynamoDBRCUMonthly + float64(wcu)*pricing.DynamoDBWCUMonthly
			optimized := current * dynamoOnDemandCostShare
			findings = append(findings, r.finding(
				table.Name,
				fmt.Sprintf("Table %q uses provisioned capacity", table.Name),
				fmt.Sprintf("%d RCU / %d WCU bill every hour regardless of traffic. On-demand mode removes the idle floor.", rcu, wcu),
				fmt.Sprintf("PROVISIONED, %d RCU / %d WCU", rcu, wcu),
				"PAY_PER_REQUEST",
				current, optimized,
			))
		}
		return findings
	}
	return r
}
