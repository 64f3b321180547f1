// Package config defines default limits and analysis parameters.
package config

// Limits bound the input surface of one analysis request.
// Enforcing them is the calling layer's job (CLI, HTTP server);
// the core pipeline assumes they were applied upstream.
type Limits struct {
	// MaxFileBytes caps the size of a single submitted file.
	MaxFileBytes int64
	// MaxArchiveMembers caps the member count of a ZIP submission.
	// Exceeding it rejects the whole archive.
	MaxArchiveMembers int
	// DetectSampleBytes is how much of a file the format detector inspects.
	DetectSampleBytes int
}

// DefaultLimits returns the standard input limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:      10 << 20, // 10 MiB
		MaxArchiveMembers: 50,
		DetectSampleBytes: 64 << 10,
	}
}

// ProductionTokens are the name/tag fragments that mark a resource as
// production. Rules that flag non-prod waste treat a resource as
// production when any token appears in its name or environment tag.
var ProductionTokens = []string{"prod", "production", "live"}
