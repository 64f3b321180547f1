// Package detect classifies submitted files into the dialects the
// extractors understand. Detection is a pure function over the file name
// and a bounded content sample; it performs no I/O.
package detect

import (
	"path/filepath"
	"strings"
)

// Kind identifies which extraction path applies to a file.
type Kind string

const (
	KindCDK            Kind = "cdk"
	KindTerraform      Kind = "terraform"
	KindCloudFormation Kind = "cloudformation"
	KindECSTask        Kind = "ecs-task"
	KindZip            Kind = "zip"
	KindImage          Kind = "image"
	KindUnknown        Kind = "unknown"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true,
}

// Detect selects the extractor kind for a file. The extension decides
// outright for archives and images; for ambiguous extensions the content
// sample disambiguates. Callers are responsible for bounding the sample
// size (see config.Limits.DetectSampleBytes).
func Detect(fileName string, sample []byte) Kind {
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case ext == ".zip":
		return KindZip
	case imageExtensions[ext]:
		return KindImage
	case ext == ".tf" || ext == ".hcl":
		return KindTerraform
	}

	content := string(sample)

	switch ext {
	case ".json":
		if isECSTask(content) {
			return KindECSTask
		}
		if isCloudFormation(content) {
			return KindCloudFormation
		}
	case ".yaml", ".yml", ".template":
		if isCloudFormation(content) {
			return KindCloudFormation
		}
	case ".ts", ".js", ".py":
		if isCDK(content) {
			return KindCDK
		}
		if ext == ".ts" {
			// Unmatched TypeScript defaults to CDK. This is a known
			// low-confidence fallback: most .ts submissions to this tool
			// are CDK apps whose import lines fall outside the sample.
			return KindCDK
		}
	}

	// Extension told us nothing; let the content speak.
	switch {
	case isTerraform(content):
		return KindTerraform
	case isECSTask(content):
		return KindECSTask
	case isCloudFormation(content):
		return KindCloudFormation
	case isCDK(content):
		return KindCDK
	}

	return KindUnknown
}

func isCloudFormation(content string) bool {
	if strings.Contains(content, "AWSTemplateFormatVersion") {
		return true
	}
	hasResources := strings.Contains(content, `"Resources"`) ||
		strings.Contains(content, "Resources:")
	return hasResources && strings.Contains(content, "AWS::")
}

func isECSTask(content string) bool {
	return strings.Contains(content, "containerDefinitions") ||
		strings.Contains(content, "taskDefinitionArn") ||
		strings.Contains(content, "requiresCompatibilities")
}

func isTerraform(content string) bool {
	return strings.Contains(content, `provider "aws"`) ||
		strings.Contains(content, `resource "aws_`) ||
		strings.Contains(content, "terraform {")
}

func isCDK(content string) bool {
	markers := []string{
		"aws-cdk-lib",
		"@aws-cdk/",
		"aws_cdk",
		"from constructs import",
		"cdk.Stack",
		"cdk.App",
		"new Stack(",
		"new App(",
	}
	for _, m := range markers {
		if strings.Contains(content, m) {
			return true
		}
	}
	return false
}
