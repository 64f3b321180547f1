// Package rules holds the anti-pattern detection registry and the engine
// that evaluates it against a normalized infrastructure model. The
// registry is a flat, statically ordered table; rules are independent
// pure predicates with their own embedded cost assumptions.
package rules

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/costlens/costlens/pkg/config"
	"github.com/costlens/costlens/pkg/model"
)

// Severity classifies a finding's urgency.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns the sort position of a severity; critical sorts first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Category classifies a finding's nature.
type Category string

const (
	CategoryOverprovisioned Category = "overprovisioned"
	CategoryArchitectural   Category = "architectural"
	CategoryMissingFeature  Category = "missing-feature"
	CategoryEnvMismatch     Category = "env-mismatch"
)

// Finding is one anti-pattern detection result. Findings are immutable
// once produced and carry everything downstream consumers (narrative
// generation, rendering, persistence) need.
type Finding struct {
	ID                   string   `json:"id"`
	Service              string   `json:"service"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Severity             Severity `json:"severity"`
	Category             Category `json:"category"`
	CurrentConfig        string   `json:"currentConfig"`
	RecommendedConfig    string   `json:"recommendedConfig"`
	CurrentMonthlyCost   float64  `json:"currentMonthlyCost"`
	OptimizedMonthlyCost float64  `json:"optimizedMonthlyCost"`
	MonthlySaving        float64  `json:"monthlySaving"`
	SavingPercent        int      `json:"savingPercent"`
	Resource             string   `json:"resource"`
}

// Rule pairs static metadata with a pure evaluation function.
type Rule struct {
	ID          string
	Name        string
	Service     string
	Severity    Severity
	Category    Category
	Description string
	Check       func(*model.Model) []Finding
}

// Registry returns the fixed rule table in evaluation order.
func Registry() []Rule {
	return []Rule{
		lambdaOversizedMemory(),
		lambdaExcessiveTimeout(),
		rdsMultiAZNonProd(),
		rdsOversizedNonProd(),
		ecsOverScaledNonProd(),
		ecsOversizedFargate(),
		apiGatewayNLBPairing(),
		apiGatewayRESTOverHTTP(),
		s3NoLifecycle(),
		s3NoIntelligentTiering(),
		natGatewayMultiple(),
		dynamoDBProvisioned(),
		elastiCacheOversized(),
		cloudFrontPriceClassAll(),
		ec2PreviousGeneration(),
	}
}

// Engine evaluates the registry with per-rule fault isolation.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewEngine builds an engine over the static registry.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{rules: Registry(), logger: logger}
}

// Rules exposes the registry metadata, e.g. for `costlens rules`.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Evaluate runs every rule against the model and returns findings in a
// stable total order: severity rank ascending, then absolute monthly
// saving descending, ties resolved by encounter order. A rule that
// panics is logged and excluded; it never aborts the remaining rules.
func (e *Engine) Evaluate(m *model.Model) []Finding {
	if m == nil {
		m = &model.Model{}
	}

	findings := []Finding{}
	for _, rule := range e.rules {
		findings = append(findings, e.runRule(rule, m)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := findings[i].Severity.Rank(), findings[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return math.Abs(findings[i].MonthlySaving) > math.Abs(findings[j].MonthlySaving)
	})
	return findings
}

func (e *Engine) runRule(rule Rule, m *model.Model) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule evaluation failed, excluding rule",
				"rule", rule.ID, "error", fmt.Sprint(r))
			findings = nil
		}
	}()
	return rule.Check(m)
}

var nonIdentifier = regexp.MustCompile(`[^a-z0-9]+`)

// FindingID derives the deterministic identifier downstream narrative
// matching joins on: rule id plus the sanitized resource name. Identical
// input always yields identical IDs.
func FindingID(ruleID, resource string) string {
	sanitized := nonIdentifier.ReplaceAllString(strings.ToLower(resource), "-")
	sanitized = strings.Trim(sanitized, "-")
	if sanitized == "" {
		sanitized = "unnamed"
	}
	return ruleID + "-" + sanitized
}

// newFinding fills a finding from rule metadata and cost figures. Costs
// are rounded to whole dollars here, once, so every consumer sees the
// same whole-unit values.
func (r Rule) finding(resource, title, description, currentConfig, recommendedConfig string, current, optimized float64) Finding {
	cur := math.Round(current)
	opt := math.Round(optimized)
	saving := cur - opt
	pct := 0
	if cur != 0 {
		pct = int(math.Round(saving / cur * 100))
	}
	return Finding{
		ID:                   FindingID(r.ID, resource),
		Service:              r.Service,
		Title:                title,
		Description:          description,
		Severity:             r.Severity,
		Category:             r.Category,
		CurrentConfig:        currentConfig,
		RecommendedConfig:    recommendedConfig,
		CurrentMonthlyCost:   cur,
		OptimizedMonthlyCost: opt,
		MonthlySaving:        saving,
		SavingPercent:        pct,
		Resource:             resource,
	}
}

// isProduction reports whether a resource belongs to production, judged
// by its environment tag or name tokens.
func isProduction(name, environment string) bool {
	haystack := strings.ToLower(name + " " + environment)
	for _, token := range config.ProductionTokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

// sizeAtLeastXLarge reports whether an instance class's size suffix is
// xlarge or bigger (xlarge, 2xlarge, 4xlarge, ...).
func sizeAtLeastXLarge(instanceClass string) bool {
	parts := strings.Split(instanceClass, ".")
	size := parts[len(parts)-1]
	return strings.HasSuffix(size, "xlarge")
}
