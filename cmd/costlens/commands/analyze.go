package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/costlens/costlens/pkg/analyzer"
	"github.com/costlens/costlens/pkg/policy"
	"github.com/costlens/costlens/pkg/report"
	"github.com/costlens/costlens/pkg/telemetry"
	"github.com/costlens/costlens/pkg/version"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	analyzeJSON   bool
	analyzePolicy string
	otlpEndpoint  string
)

var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze an infrastructure definition for cost anti-patterns",
	Long: `Analyze a CDK source file, Terraform configuration, CloudFormation
template, ECS task definition or a ZIP bundle of any of these, and report
detected cost anti-patterns with estimated savings.

With --policy, the given CEL expression is evaluated per finding; any
match exits nonzero, which fails a CI pipeline. Example:

  costlens analyze infra.zip --policy "severity == 'critical' && saving > 500"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	AnalyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the full report as JSON")
	AnalyzeCmd.Flags().StringVar(&analyzePolicy, "policy", "", "CEL expression; matching findings fail the run")
	AnalyzeCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP trace endpoint URL")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()

	shutdown, err := telemetry.Init(ctx, "costlens", version.Current, otlpEndpoint)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer shutdown(ctx)

	// A policy that does not compile should fail before any analysis work.
	var gate *policy.Gate
	if analyzePolicy != "" {
		gate, err = policy.Compile(analyzePolicy)
		if err != nil {
			return err
		}
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	a := analyzer.New(analyzer.WithLogger(logger))
	result, err := a.Analyze(ctx, path, content)
	if err != nil {
		return err
	}

	if analyzeJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Print(report.Render(result.Findings, result.Summary, result.Roadmap))
	}

	if gate != nil {
		matched, err := gate.Match(result.Findings)
		if err != nil {
			return err
		}
		if len(matched) > 0 {
			for _, f := range matched {
				fmt.Fprintf(os.Stderr, "policy violation: %s (%s)\n", f.ID, f.Title)
			}
			return fmt.Errorf("%d finding(s) matched policy %q", len(matched), gate.Expr())
		}
	}
	return nil
}
