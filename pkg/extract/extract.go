// Package extract converts raw dialect text (CDK source, Terraform HCL,
// CloudFormation templates, ECS task definitions) into the normalized
// infrastructure model. Extractors are interchangeable strategies behind
// one contract: tolerate missing fields, apply documented defaults, never
// fail on well-formed-but-incomplete input, and emit only collections
// with at least one matched resource.
package extract

import (
	"strconv"
	"strings"

	"github.com/costlens/costlens/pkg/detect"
	"github.com/costlens/costlens/pkg/model"
)

// Extractor converts one dialect's content into a partial model.
type Extractor interface {
	Name() string
	Extract(content string) *model.Model
}

// ForKind returns the extractor for a detected file kind. Archive, image
// and unknown kinds have no extractor.
func ForKind(kind detect.Kind) (Extractor, bool) {
	switch kind {
	case detect.KindCDK:
		return &CDKExtractor{}, true
	case detect.KindTerraform:
		return &TerraformExtractor{}, true
	case detect.KindCloudFormation:
		return &CloudFormationExtractor{}, true
	case detect.KindECSTask:
		return &ECSTaskExtractor{}, true
	}
	return nil, false
}

// Default attribute values applied when a recognized resource omits a
// field. These mirror the AWS service defaults where one exists.
const (
	defaultLambdaMemoryMB   = 128
	defaultLambdaTimeoutSec = 3
	defaultRDSClass         = "db.t3.micro"
	defaultECSDesiredCount  = 1
	defaultECSCPUUnits      = 256
	defaultECSMemoryMiB     = 512
	defaultEC2Type          = "t3.micro"
	defaultBillingMode      = "PROVISIONED"
	defaultPriceClass       = "PriceClass_All"
	defaultCacheNodeType    = "cache.t3.micro"
)

var nonProdTokens = []string{"dev", "development", "test", "testing", "stage", "staging", "qa", "sandbox", "demo"}
var prodTokens = []string{"prod", "production", "live"}

// inferEnvironment guesses an environment tag from a resource name.
// Production tokens win over non-production ones so "prod-test-db" is
// treated as production.
func inferEnvironment(name string) string {
	lower := strings.ToLower(name)
	for _, t := range prodTokens {
		if strings.Contains(lower, t) {
			return "production"
		}
	}
	for _, t := range nonProdTokens {
		if strings.Contains(lower, t) {
			return "development"
		}
	}
	return ""
}

// atoiDefault parses an integer attribute, falling back on absent or
// malformed values.
func atoiDefault(s string, fallback int) int {
	s = strings.TrimSpace(strings.Trim(s, `"'`))
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// coerceInt accepts the string-or-number values JSON dialects use for
// CPU and memory fields.
func coerceInt(v any, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		return atoiDefault(n, fallback)
	case nil:
		return fallback
	}
	return fallback
}

// placeholderName generates a stable name for a resource whose identity
// could not be recovered from the source text.
func placeholderName(prefix string, i int) string {
	return prefix + "-" + strconv.Itoa(i+1)
}

// captureBalanced returns the text between the delimiter at start and its
// matching close, exclusive, skipping string literals. It returns ok=false
// when the input ends before the delimiter balances.
func captureBalanced(s string, start int, open, close byte) (string, bool) {
	if start >= len(s) || s[start] != open {
		return "", false
	}
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}
