package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

const cacheRecommendedNodeType = "cache.t3.medium"

func elastiCacheOversized() Rule {
	r := Rule{
		ID:          "rule-13",
		Name:        "Oversized ElastiCache nodes",
		Service:     "ElastiCache",
		Severity:    SeverityMedium,
		Category:    CategoryOverprovisioned,
		Description: "xlarge-or-bigger cache nodes hold far more working set than most session or lookup caches need.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, cluster := range m.ElastiCacheClusters {
			if !sizeAtLeastXLarge(cluster.NodeType) {
				continue
			}
			nodes := cluster.NumNodes
			if nodes < 1 {
				nodes = 1
			}
			current := float64(nodes) * pricing.ElastiCacheNodeMonthly(cluster.NodeType)
			optimized := float64(nodes) * pricing.ElastiCacheNodeMonthly(cacheRecommendedNodeType)
			findings = append(findings, r.finding(
				cluster.Name,
				fmt.Sprintf("Cache %q runs %d x %s", cluster.Name, nodes, cluster.NodeType),
				"Check memory and CPU utilization; caches routinely run at a fraction of an xlarge node's capacity.",
				fmt.Sprintf("%d x %s", nodes, cluster.NodeType),
				fmt.Sprintf("%d x %s", nodes, cacheRecommendedNodeType),
				current, optimized,
			))
		}
		return findings
	}
	return r
}
