package rules

import (
	"fmt"

	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
)

func s3NoLifecycle() Rule {
	r := Rule{
		ID:          "rule-09",
		Name:        "No lifecycle policy",
		Service:     "S3",
		Severity:    SeverityMedium,
		Category:    CategoryMissingFeature,
		Description: "Buckets with neither a lifecycle policy nor intelligent tiering keep every object in Standard forever.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, bucket := range m.S3Buckets {
			if bucket.HasLifecyclePolicy || bucket.HasIntelligentTiering {
				continue
			}
			current := pricing.S3AssumedBucketGB * pricing.S3StandardGBMonth
			optimized := pricing.S3AssumedBucketGB * pricing.S3InfrequentAccessGBMonth
			findings = append(findings, r.finding(
				bucket.Name,
				fmt.Sprintf("Bucket %q has no lifecycle policy", bucket.Name),
				fmt.Sprintf("Assuming %.0f GB stored, aging objects into Infrequent Access roughly halves per-GB storage cost.", pricing.S3AssumedBucketGB),
				"no lifecycle policy, no intelligent tiering",
				"lifecycle transition to Infrequent Access after 30 days",
				current, optimized,
			))
		}
		return findings
	}
	return r
}

// s3NoIntelligentTiering fires only when a lifecycle policy IS configured
// but intelligent tiering is absent. Buckets with neither are rule-09's
// territory; this rule intentionally does not overlap it.
func s3NoIntelligentTiering() Rule {
	r := Rule{
		ID:          "rule-10",
		Name:        "Lifecycle without intelligent tiering",
		Service:     "S3",
		Severity:    SeverityLow,
		Category:    CategoryMissingFeature,
		Description: "Lifecycle rules age objects on a fixed schedule; intelligent tiering moves unevenly-accessed data sooner.",
	}
	r.Check = func(m *model.Model) []Finding {
		var findings []Finding
		for _, bucket := range m.S3Buckets {
			if !bucket.HasLifecyclePolicy || bucket.HasIntelligentTiering {
				continue
			}
			current := pricing.S3AssumedBucketGB * pricing.S3StandardGBMonth
			optimized := pricing.S3AssumedBucketGB * pricing.S3IntelligentTieringGBMonth
			findings = append(findings, r.finding(
				bucket.Name,
				fmt.Sprintf("Bucket %q has lifecycle rules but no intelligent tiering", bucket.Name),
				"Intelligent tiering complements fixed lifecycle schedules by demoting objects on observed access patterns.",
				"lifecycle policy only",
				"lifecycle policy + intelligent tiering",
				current, optimized,
			))
		}
		return findings
	}
	return r
}
