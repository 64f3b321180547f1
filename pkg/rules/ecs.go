package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

const (
	// Desired counts at or above this outside production look like a
	// copied production scaling policy.
	ecsDesiredCountThreshold = 3
	ecsRecommendedCount      = 1

	// Task sizing at or above both thresholds is flagged as a whole-box
	// allocation on Fargate.
	ecsCPUThreshold    = 4096
	ecsMemoryThreshold = 8192

	ecsRecommendedCPU    = 1024
	ecsRecommendedMemory = 2048
)

func ecsOverScaledNonProd() Rule {
	r := Rule{
		ID:          "rule-05",
		Name:        "Over-scaled ECS service in non-production",
		Service:     "ECS",
		Severity:    SeverityMedium,
		Category:    CategoryOverprovisioned,
		Description: "Non-production services running production replica counts around the clock.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, svc := range m.ECSServices {
			if svc.DesiredCount < ecsDesiredCountThreshold || isProduction(svc.Name, svc.Environment) {
				continue
			}
			perTask := pricing.FargateTaskMonthly(svc.CPUUnits, svc.MemoryMiB)
			findings = append(findings, r.finding(
				svc.Name,
				fmt.Sprintf("ECS service %q keeps %d tasks outside production", svc.Name, svc.DesiredCount),
				"Each always-on task bills for its full CPU and memory reservation. One replica covers non-production traffic.",
				fmt.Sprintf("desiredCount: %d", svc.DesiredCount),
				fmt.Sprintf("desiredCount: %d", ecsRecommendedCount),
				float64(svc.DesiredCount)*perTask, float64(ecsRecommendedCount)*perTask,
			))
		}
		return findings
	}
	return r
}

func ecsOversizedFargate() Rule {
	r := Rule{
		ID:          "rule-06",
		Name:        "Oversized Fargate task",
		Service:     "ECS",
		Severity:    SeverityHigh,
		Category:    CategoryOverprovisioned,
		Description: "Task definitions reserving 4+ vCPU and 8+ GiB, billed continuously whether used or not.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, svc := range m.ECSServices {
			if svc.LaunchType != "FARGATE" {
				continue
			}
			if svc.CPUUnits < ecsCPUThreshold || svc.MemoryMiB < ecsMemoryThreshold {
				continue
			}
			count := svc.DesiredCount
			if count < 1 {
				count = 1
			}
			current := float64(count) * pricing.FargateTaskMonthly(svc.CPUUnits, svc.MemoryMiB)
			optimized := float64(count) * pricing.FargateTaskMonthly(ecsRecommendedCPU, ecsRecommendedMemory)
			findings = append(findings, r.finding(
				svc.Name,
				fmt.Sprintf("Fargate task %q reserves %d CPU units and %d MiB", svc.Name, svc.CPUUnits, svc.MemoryMiB),
				"Fargate bills the reservation, not usage. Size tasks to observed utilization and let autoscaling add replicas.",
				fmt.Sprintf("cpu: %d, memory: %d MiB", svc.CPUUnits, svc.MemoryMiB),
				fmt.Sprintf("cpu: %d, memory: %d MiB", ecsRecommendedCPU, ecsRecommendedMemory),
				current, optimized,
			))
		}
		return findings
	}
	return r
}
