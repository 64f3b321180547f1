// Package analyzer ties the pipeline together: detect the input format,
// extract a normalized model, evaluate the rule registry and aggregate
// the results into a report.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/costlens/costlens/pkg/archive"
	"github.com/costlens/costlens/pkg/config"
	"github.com/costlens/costlens/pkg/detect"
	"github.com/costlens/costlens/pkg/extract"
	"github.com/costlens/costlens/pkg/model"
	"github.com/costlens/costlens/pkg/pricing"
	"github.com/costlens/costlens/pkg/report"
	"github.com/costlens/costlens/pkg/rules"
	"github.com/costlens/costlens/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ErrNoInfrastructure means the input could not be read as any supported
// infrastructure format. A recognized file that simply defines no
// resources is not an error; it yields an empty report.
var ErrNoInfrastructure = errors.New("no infrastructure definitions found in input")

// Report is the complete analysis result for one input.
type Report struct {
	FileName       string             `json:"fileName"`
	Format         string             `json:"format"`
	PricingVersion string             `json:"pricingVersion"`
	ResourceCount  int                `json:"resourceCount"`
	Findings       []rules.Finding    `json:"findings"`
	Summary        report.CostSummary `json:"summary"`
	Roadmap        report.Roadmap     `json:"roadmap"`
}

// Analyzer runs the full detection-to-roadmap pipeline.
type Analyzer struct {
	engine *rules.Engine
	limits config.Limits
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithLimits overrides the default input limits.
func WithLimits(limits config.Limits) Option {
	return func(a *Analyzer) {
		a.limits = limits
	}
}

// New builds an Analyzer over the static rule registry.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		limits: config.DefaultLimits(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.engine = rules.NewEngine(a.logger)
	return a
}

// Limits returns the input limits the analyzer enforces. Callers that
// reject oversized payloads before reading them (the HTTP surface) use
// this to agree with the analyzer on the cap.
func (a *Analyzer) Limits() config.Limits {
	return a.limits
}

// Analyze runs the pipeline on one input. Identical input always yields
// an identical report.
func (a *Analyzer) Analyze(ctx context.Context, fileName string, content []byte) (*Report, error) {
	ctx, span := telemetry.Tracer("analyzer").Start(ctx, "Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("input.file", fileName), attribute.Int("input.bytes", len(content)))

	if int64(len(content)) > a.limits.MaxFileBytes {
		return nil, fmt.Errorf("input %q exceeds the %d byte limit", fileName, a.limits.MaxFileBytes)
	}

	sample := content
	if len(sample) > a.limits.DetectSampleBytes {
		sample = sample[:a.limits.DetectSampleBytes]
	}
	kind := detect.Detect(fileName, sample)
	span.SetAttributes(attribute.String("input.format", string(kind)))
	a.logger.Info("input classified", "file", fileName, "format", kind)

	var m *model.Model
	switch kind {
	case detect.KindUnknown, detect.KindImage:
		return nil, fmt.Errorf("%w: %s input %q", ErrNoInfrastructure, kind, fileName)
	case detect.KindZip:
		members, err := archive.Expand(content, a.limits.MaxArchiveMembers, a.logger)
		if err != nil {
			return nil, fmt.Errorf("expanding archive %q: %w", fileName, err)
		}
		var extracted int
		m, extracted = archive.ExtractAll(members, a.logger)
		if extracted == 0 {
			return nil, fmt.Errorf("%w: archive %q has no analyzable members", ErrNoInfrastructure, fileName)
		}
	default:
		extractor, ok := extract.ForKind(kind)
		if !ok {
			return nil, fmt.Errorf("%w: no extractor for %s", ErrNoInfrastructure, kind)
		}
		m = extractor.Extract(string(content))
	}

	findings := a.engine.Evaluate(m)
	a.logger.Info("analysis complete",
		"file", fileName, "resources", m.ResourceCount(), "findings", len(findings))

	return &Report{
		FileName:       fileName,
		Format:         string(kind),
		PricingVersion: pricing.Version,
		ResourceCount:  m.ResourceCount(),
		Findings:       findings,
		Summary:        report.Summarize(findings),
		Roadmap:        report.BuildRoadmap(findings),
	}, nil
}
