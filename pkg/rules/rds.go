package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

// rdsNonProdTargetClass is the downsizing target for non-production
// databases.
const rdsNonProdTargetClass = "db.t3.medium"

func rdsMultiAZNonProd() Rule {
	r := Rule{
		ID:          "rule-03",
		Name:        "Multi-AZ in non-production",
		Service:     "RDS",
		Severity:    SeverityCritical,
		Category:    CategoryEnvMismatch,
		Description: "Multi-AZ doubles instance cost to buy availability non-production environments do not need.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, db := range m.RDSInstances {
			if !db.MultiAZ || isProduction(db.Name, db.Environment) {
				continue
			}
			current := pricing.RDSInstanceMonthly(db.InstanceClass, true)
			optimized := pricing.RDSInstanceMonthly(db.InstanceClass, false)
			findings = append(findings, r.finding(
				db.Name,
				fmt.Sprintf("RDS %q runs Multi-AZ outside production", db.Name),
				"A standby replica doubles the instance bill. Non-production databases tolerate single-AZ downtime.",
				fmt.Sprintf("%s, multiAz: true", db.InstanceClass),
				fmt.Sprintf("%s, multiAz: false", db.InstanceClass),
				current, optimized,
			))
		}
		return findings
	}
	return r
}

func rdsOversizedNonProd() Rule {
	r := Rule{
		ID:          "rule-04",
		Name:        "Oversized RDS in non-production",
		Service:     "RDS",
		Severity:    SeverityHigh,
		Category:    CategoryOverprovisioned,
		Description: "xlarge-or-bigger database classes outside production rarely see the load that justifies them.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, db := range m.RDSInstances {
			if !sizeAtLeastXLarge(db.InstanceClass) || isProduction(db.Name, db.Environment) {
				continue
			}
			current := pricing.RDSInstanceMonthly(db.InstanceClass, db.MultiAZ)
			optimized := pricing.RDSInstanceMonthly(rdsNonProdTargetClass, db.MultiAZ)
			findings = append(findings, r.finding(
				db.Name,
				fmt.Sprintf("RDS %q uses %s outside production", db.Name, db.InstanceClass),
				"Development and staging load fits burstable classes. Downsize and scale up only when a load test demands it.",
				db.InstanceClass,
				rdsNonProdTargetClass,
				current, optimized,
			))
		}
		return findings
	}
	return r
}
