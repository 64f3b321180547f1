package analyzer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/costlens/costlens/pkg/config"
)

const cfnFixture = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "DevDatabase": {
      "Type": "AWS::RDS::DBInstance",
      "Properties": {"DBInstanceClass": "db.t3.large", "MultiAZ": true}
    },
    "RawBucket": {"Type": "AWS::S3::Bucket", "Properties": {}}
  }
}`

func TestAnalyzeCloudFormation(t *testing.T) {
	a := New()
	report, err := a.Analyze(context.Background(), "template.json", []byte(cfnFixture))
	if err != nil {
		t.Fatal(err)
	}

	if report.Format != "cloudformation" {
		t.Errorf("format = %q", report.Format)
	}
	if report.ResourceCount != 2 {
		t.Errorf("resources = %d, want 2", report.ResourceCount)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("findings = %d, want rule-03 and rule-09: %+v", len(report.Findings), report.Findings)
	}
	if report.Findings[0].ID != "rule-03-devdatabase" {
		t.Errorf("first finding = %q, want the critical one", report.Findings[0].ID)
	}
	if report.PricingVersion == "" {
		t.Error("pricing version missing")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := New()
	first, err := a.Analyze(context.Background(), "template.json", []byte(cfnFixture))
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Analyze(context.Background(), "template.json", []byte(cfnFixture))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different reports")
	}
}

func TestAnalyzeUnknownInput(t *testing.T) {
	a := New()
	_, err := a.Analyze(context.Background(), "notes.txt", []byte("meeting notes"))
	if !errors.Is(err, ErrNoInfrastructure) {
		t.Errorf("err = %v, want ErrNoInfrastructure", err)
	}

	_, err = a.Analyze(context.Background(), "diagram.png", []byte{0x89, 0x50})
	if !errors.Is(err, ErrNoInfrastructure) {
		t.Errorf("image err = %v, want ErrNoInfrastructure", err)
	}
}

func TestAnalyzeEmptyButValidInput(t *testing.T) {
	// A recognized dialect with no resources is a clean empty report, not
	// an error.
	a := New()
	report, err := a.Analyze(context.Background(), "main.tf", []byte(`provider "aws" {
  region = "us-east-1"
}`))
	if err != nil {
		t.Fatal(err)
	}
	if report.ResourceCount != 0 || len(report.Findings) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestAnalyzeOversizedInput(t *testing.T) {
	a := New(WithLimits(config.Limits{MaxFileBytes: 10, MaxArchiveMembers: 50, DetectSampleBytes: 1024}))
	_, err := a.Analyze(context.Background(), "main.tf", []byte(strings.Repeat("x", 100)))
	if err == nil {
		t.Fatal("expected a size limit error")
	}
	if errors.Is(err, ErrNoInfrastructure) {
		t.Error("size rejection must not read as no-infrastructure")
	}
}

func TestAnalyzeZipBundle(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"network-a.tf": "resource \"aws_nat_gateway\" \"a\" {\n  count = 2\n}",
		"network-b.tf": "resource \"aws_nat_gateway\" \"b\" {\n  count = 3\n}",
		"README.md":    "# infra",
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		f.Write([]byte(content))
	}
	w.Close()

	a := New()
	report, err := a.Analyze(context.Background(), "bundle.zip", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if report.Format != "zip" {
		t.Errorf("format = %q", report.Format)
	}
	if report.ResourceCount != 5 {
		t.Errorf("resources = %d, want 5 NAT gateways merged across members", report.ResourceCount)
	}
	if len(report.Findings) != 1 || report.Findings[0].ID != "rule-11-nat-gateways" {
		t.Errorf("findings = %+v, want the multi-NAT rule", report.Findings)
	}
}

func TestAnalyzeDocsOnlyZip(t *testing.T) {
	// A bundle whose members match no dialect is unparseable input, not
	// clean infrastructure.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"README.md": "# infra docs",
		"notes.txt": "deploy on fridays",
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		f.Write([]byte(content))
	}
	w.Close()

	a := New()
	_, err := a.Analyze(context.Background(), "docs.zip", buf.Bytes())
	if !errors.Is(err, ErrNoInfrastructure) {
		t.Errorf("err = %v, want ErrNoInfrastructure", err)
	}
}

func TestAnalyzeZipMemberCap(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range []string{"a.tf", "b.tf", "c.tf"} {
		f, _ := w.Create(name)
		f.Write([]byte("# empty"))
	}
	w.Close()

	a := New(WithLimits(config.Limits{MaxFileBytes: 10 << 20, MaxArchiveMembers: 2, DetectSampleBytes: 1024}))
	if _, err := a.Analyze(context.Background(), "bundle.zip", buf.Bytes()); err == nil {
		t.Fatal("expected member cap rejection")
	}
}
