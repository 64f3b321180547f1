package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/costlens/costlens/pkg/analyzer"
	"github.com/costlens/costlens/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cfnFixture = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "RawBucket": {"Type": "AWS::S3::Bucket", "Properties": {}}
  }
}`

func newTestAPI(a *analyzer.Analyzer) *API {
	if a == nil {
		a = analyzer.New()
	}
	return New(nil, a, Config{Addr: ":0"})
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyzeRawBody(t *testing.T) {
	api := newTestAPI(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze?filename=template.json", strings.NewReader(cfnFixture))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report analyzer.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "cloudformation", report.Format)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "rule-09-rawbucket", report.Findings[0].ID)
}

func TestAnalyzeMultipartUpload(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "template.json")
	require.NoError(t, err)
	part.Write([]byte(cfnFixture))
	require.NoError(t, w.Close())

	api := newTestAPI(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report analyzer.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "template.json", report.FileName)
}

func TestAnalyzeUnparseableInput(t *testing.T) {
	api := newTestAPI(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze?filename=notes.txt", strings.NewReader("meeting notes"))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeOversizedPayload(t *testing.T) {
	small := analyzer.New(analyzer.WithLimits(config.Limits{
		MaxFileBytes:      16,
		MaxArchiveMembers: 50,
		DetectSampleBytes: 1024,
	}))
	api := newTestAPI(small)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze?filename=big.tf", strings.NewReader(strings.Repeat("x", 1024)))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRulesEndpoint(t *testing.T) {
	api := newTestAPI(nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rules []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	assert.Len(t, rules, 15)
}
