package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/semantic"
	"keyplan/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sqlJD     = "Requirements: 3+ years SQL. Responsibilities: Build dashboards with SQL."
	sqlResume = "Built SQL queries to track metrics."
)

// planView is the part of a plan document the tests inspect
type planView struct {
	JobTitle string `json:"jobTitle"`
	Top10    []struct {
		Term string `json:"term"`
	} `json:"top10"`
	Validation validate.Result `json:"validation"`
}

// runCLI executes the command tree with a default config and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := config.Default()
	cfg.AI.APIKey = ""
	cfg.AI.Operations.SemanticMatch.APIKey = ""

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	ctx := withRuntime(context.Background(), cfg, errors.NewLoggerWithWriter(&stderr, slog.LevelError))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPlanCommand(t *testing.T) {
	jdFile := writeFile(t, "jd.txt", sqlJD)
	resumeFile := writeFile(t, "resume.txt", sqlResume)

	out, err := runCLI(t, "plan", jdFile, resumeFile, "--title", "Data Analyst")
	require.NoError(t, err)

	var plan planView
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "Data Analyst", plan.JobTitle)
	require.NotEmpty(t, plan.Top10)
	assert.Equal(t, "sql", plan.Top10[0].Term)
	assert.Equal(t, []string{"sql"}, plan.Validation.Valid)
}

func TestPlanCommandWritesFile(t *testing.T) {
	jdFile := writeFile(t, "jd.txt", sqlJD)
	outFile := filepath.Join(t.TempDir(), "plans", "plan.md")

	out, err := runCLI(t, "plan", jdFile, "--format", "markdown", "-o", outFile)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), "sql")
}

func TestPlanCommandErrors(t *testing.T) {
	_, err := runCLI(t, "plan", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))

	jdFile := writeFile(t, "jd.txt", sqlJD)
	_, err = runCLI(t, "plan", jdFile, "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))

	out, err := runCLI(t, "plan", jdFile, "--format", "JSON")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	emptyFile := writeFile(t, "empty.txt", "   \n")
	_, err = runCLI(t, "plan", emptyFile)
	require.Error(t, err)
}

func TestPlanBatchCommand(t *testing.T) {
	resumeFile := writeFile(t, "resume.txt", sqlResume)
	first := writeFile(t, "analyst.txt", sqlJD)
	second := writeFile(t, "designer.txt", "Requirements: Figma and user research.")

	out, err := runCLI(t, "plan-batch", resumeFile, first, second)
	require.NoError(t, err)

	var resp struct {
		Results []struct {
			ID   string   `json:"id"`
			Plan planView `json:"plan"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "analyst", resp.Results[0].ID)
	assert.Equal(t, "designer", resp.Results[1].ID)
	assert.Equal(t, "sql", resp.Results[0].Plan.Top10[0].Term)

	out, err = runCLI(t, "plan-batch", resumeFile, first, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "analyst")
}

func TestMatchCommandDeterministic(t *testing.T) {
	resumeFile := writeFile(t, "resume.txt", "Deployed services with Kubernetes.")

	out, err := runCLI(t, "match", resumeFile, "-k", "kubernetes,rust")
	require.NoError(t, err)

	var res semantic.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"kubernetes"}, res.MatchedKeywords)
	assert.Equal(t, []string{"rust"}, res.MissedKeywords)
	assert.Equal(t, 50, res.MatchScore)
	assert.Equal(t, semantic.SourceFallback, res.Source)
}

func TestMatchCommandKeywordsFileAndJSONResume(t *testing.T) {
	resumeFile := writeFile(t, "resume.json", `{"experience":[{"bullets":["Wrote Terraform modules"]}]}`)
	keywordsFile := writeFile(t, "keywords.txt", "# infra\nterraform\nansible\n")

	out, err := runCLI(t, "match", keywordsFile, resumeFile, "--no-ai")
	require.NoError(t, err)

	var res semantic.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"terraform"}, res.MatchedKeywords)
	assert.Equal(t, []string{"ansible"}, res.MissedKeywords)
}

func TestMatchCommandArgumentErrors(t *testing.T) {
	resumeFile := writeFile(t, "resume.txt", "Go")
	keywordsFile := writeFile(t, "keywords.txt", "go")

	_, err := runCLI(t, "match", resumeFile)
	assert.Error(t, err)

	_, err = runCLI(t, "match", keywordsFile, resumeFile, "-k", "go")
	assert.Error(t, err)

	badJSON := writeFile(t, "resume.json", "{not json")
	_, err = runCLI(t, "match", badJSON, "-k", "go")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))

	_, err = runCLI(t, "match", keywordsFile, badJSON)
	require.Error(t, err, "the resume is the last argument")
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
}

func TestValidateCommand(t *testing.T) {
	jdFile := writeFile(t, "jd.txt", "Requirements: 5+ years of experience, SQL, Figma and strong communication.")
	keywordsFile := writeFile(t, "keywords.json", `["SQL", "Figma", "Rust"]`)

	out, err := runCLI(t, "validate", keywordsFile, jdFile)
	require.NoError(t, err)

	var report validate.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"SQL", "Figma"}, report.Valid)
	assert.Equal(t, []string{"Rust"}, report.Invalid)

	out, err = runCLI(t, "validate", jdFile, "-k", "SQL", "-k", "Rust", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Rust")

	_, err = runCLI(t, "validate", keywordsFile, jdFile, "-k", "SQL")
	assert.Error(t, err)
}

func TestCategorizeCommand(t *testing.T) {
	out, err := runCLI(t, "categorize", "-k", "5+ years,Figma", "--format", "text")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "5+ years\t"+string(validate.CategoryExperience)))
	assert.True(t, strings.HasPrefix(lines[1], "Figma\t"+string(validate.CategoryTools)))

	keywordsFile := writeFile(t, "keywords.txt", "SQL, Figma")
	out, err = runCLI(t, "categorize", keywordsFile)
	require.NoError(t, err)
	var reports []validate.KeywordReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Len(t, reports, 2)

	_, err = runCLI(t, "categorize")
	assert.Error(t, err)
}

func TestDebugMatchCommand(t *testing.T) {
	resumeFile := writeFile(t, "resume.txt", "Built dashboards in Tableau and PostgreSQL.")

	out, err := runCLI(t, "debug-match", "postgres", resumeFile)
	require.NoError(t, err)

	var d validate.MatchDebug
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "postgres", d.Normalized)
	assert.Equal(t, "token", d.Strategy)
	assert.False(t, d.TokenFound)

	out, err = runCLI(t, "debug-match", "tableau", resumeFile, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Present:    true")
}

func TestServeRejectsInvalidTLS(t *testing.T) {
	_, err := runCLI(t, "serve", "--tls-mode", "server", "--port", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TLS configuration")
}

func TestServeOverrides(t *testing.T) {
	cfg := config.Default()
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9999", "--tls-mode", "mutual", "--ca-file", "ca.pem"}))

	o := &serveOverrides{}
	o.port, _ = cmd.Flags().GetString("port")
	o.tlsMode, _ = cmd.Flags().GetString("tls-mode")
	o.caFile, _ = cmd.Flags().GetString("ca-file")
	host := cfg.Server.Host
	o.apply(cmd, cfg)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, host, cfg.Server.Host, "unset flags keep config values")
	assert.Equal(t, "mutual", cfg.Server.TLS.Mode)
	assert.Equal(t, "ca.pem", cfg.Server.TLS.CAFile)
	assert.NotEmpty(t, cfg.Server.TLS.ClientAuthPolicy)
}

func TestVersionCommandNeedsNoConfig(t *testing.T) {
	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, stdout.String(), "keyplan version "+Version)
}

func TestRootLoadsConfigFile(t *testing.T) {
	cfgFile := writeFile(t, "config.yaml", "app:\n  defaultFormat: text\n  logLevel: warn\n")
	jdFile := writeFile(t, "jd.txt", sqlJD)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"plan", jdFile, "--config", cfgFile, "--log-level", "error"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.False(t, json.Valid(stdout.Bytes()), "default format comes from the config file")
	assert.Contains(t, stdout.String(), "sql")
	assert.Empty(t, stderr.String(), "info logs are suppressed at error level")
}
