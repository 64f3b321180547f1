package rules

import (
	"fmt"
	"strings"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

// modernFamily maps previous-generation instance families to their
// current-generation replacement.
var modernFamily = map[string]string{
	"t2": "t3",
	"m3": "m5",
	"m4": "m5",
	"c3": "c5",
	"c4": "c5",
	"r3": "r5",
	"r4": "r5",
}

func ec2PreviousGeneration() Rule {
	r := Rule{
		ID:          "rule-15",
		Name:        "Previous-generation EC2 instances",
		Service:     "EC2",
		Severity:    SeverityMedium,
		Category:    CategoryOverprovisioned,
		Description: "Previous-generation families cost more per unit of compute than their drop-in successors.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, inst := range m.EC2Instances {
			family, size, found := strings.Cut(inst.InstanceType, ".")
			if !found {
				continue
			}
			modern, ok := modernFamily[family]
			if !ok {
				continue
			}
			replacement := modern + "." + size
			current := pricing.EC2InstanceMonthly(inst.InstanceType)
			optimized := pricing.EC2InstanceMonthly(replacement)
			findings = append(findings, r.finding(
				inst.Name,
				fmt.Sprintf("Instance %q runs previous-generation %s", inst.Name, inst.InstanceType),
				fmt.Sprintf("%s is a drop-in replacement with better price/performance; migration is usually a stop/start.", replacement),
				inst.InstanceType,
				replacement,
				current, optimized,
			))
		}
		return findings
	}
	return r
}
