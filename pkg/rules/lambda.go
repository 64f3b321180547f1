package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

// Memory above this is treated as oversized for a typical API workload.
const lambdaMemoryThresholdMB = 2048

// lambdaRecommendedMemoryMB is the downsizing target the saving estimate
// is computed against.
const lambdaRecommendedMemoryMB = 1024

// Timeouts above this expose the account to runaway invocation cost.
const lambdaTimeoutThresholdSec = 300

const lambdaRecommendedTimeoutSec = 60

// Share of invocations assumed to run to the configured timeout when
// estimating timeout exposure. An estimation parameter, not measurement.
const lambdaTimeoutRunawayShare = 0.05

func lambdaOversizedMemory() Rule {
	r := Rule{
		ID:          "rule-01",
		Name:        "Oversized Lambda memory",
		Service:     "Lambda",
		Severity:    SeverityHigh,
		Category:    CategoryOverprovisioned,
		Description: "Lambda functions allocated far more memory than typical workloads use. Cost scales linearly with memory.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, fn := range m.LambdaFunctions {
			if fn.MemoryMB <= lambdaMemoryThresholdMB {
				continue
			}
			current := pricing.LambdaMonthly(fn.MemoryMB)
			optimized := pricing.LambdaMonthly(lambdaRecommendedMemoryMB)
			findings = append(findings, r.finding(
				fn.Name,
				fmt.Sprintf("Lambda %q allocates %d MB of memory", fn.Name, fn.MemoryMB),
				fmt.Sprintf("At %s invocations/month, %d MB costs %.0fx a right-sized allocation. Profile the function and size to observed peak usage.",
					"1M", fn.MemoryMB, float64(fn.MemoryMB)/float64(lambdaRecommendedMemoryMB)),
				fmt.Sprintf("memorySize: %d MB", fn.MemoryMB),
				fmt.Sprintf("memorySize: %d MB", lambdaRecommendedMemoryMB),
				current, optimized,
			))
		}
		return findings
	}
	return r
}

func lambdaExcessiveTimeout() Rule {
	r := Rule{
		ID:          "rule-02",
		Name:        "Excessive Lambda timeout",
		Service:     "Lambda",
		Severity:    SeverityMedium,
		Category:    CategoryOverprovisioned,
		Description: "Long timeouts let hung invocations bill for minutes instead of seconds.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, fn := range m.LambdaFunctions {
			if fn.TimeoutSeconds <= lambdaTimeoutThresholdSec {
				continue
			}
			gb := float64(fn.MemoryMB) / 1024.0
			exposure := func(timeout int) float64 {
				return gb * float64(timeout) * pricing.LambdaAssumedMonthlyInvocations *
					lambdaTimeoutRunawayShare * pricing.LambdaGBSecond
			}
			findings = append(findings, r.finding(
				fn.Name,
				fmt.Sprintf("Lambda %q allows a %ds timeout", fn.Name, fn.TimeoutSeconds),
				"Hung invocations run to the configured timeout before billing stops. Cap the timeout near the observed p99 duration.",
				fmt.Sprintf("timeout: %ds", fn.TimeoutSeconds),
				fmt.Sprintf("timeout: %ds", lambdaRecommendedTimeoutSec),
				exposure(fn.TimeoutSeconds), exposure(lambdaRecommendedTimeoutSec),
			))
		}
		return findings
	}
	return r
}
