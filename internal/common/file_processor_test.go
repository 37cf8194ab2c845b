package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyplan/internal/errors"
	"keyplan/internal/semantic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadFile(t *testing.T) {
	fp := NewFileProcessor(nil, 0)

	text, err := fp.ReadFile(writeTemp(t, "resume.txt", "Built SQL queries"))
	require.NoError(t, err)
	assert.Equal(t, "Built SQL queries", text)

	html, err := fp.ReadFile(writeTemp(t, "jd.html", postingHTML))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "Requirements:"))

	_, err = fp.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.CodeOf(err))
}

func TestReadFileSizeLimit(t *testing.T) {
	fp := NewFileProcessor(nil, 10)
	path := writeTemp(t, "big.txt", strings.Repeat("a", 11))

	_, err := fp.ReadFile(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileTooLarge, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "10 B")

	ok := writeTemp(t, "ok.txt", strings.Repeat("a", 10))
	text, err := fp.ReadFile(ok)
	require.NoError(t, err)
	assert.Len(t, text, 10)
}

func TestValidateAndReadFiles(t *testing.T) {
	fp := NewFileProcessor(nil, 0)
	a := writeTemp(t, "a.txt", "one")
	b := writeTemp(t, "b.md", "two")

	contents, err := fp.ValidateAndReadFiles(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, contents)

	_, err = fp.ValidateAndReadFiles(a, filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}

func TestParseKeywordList(t *testing.T) {
	list, err := ParseKeywordList(`["Go", "SQL"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, list)

	list, err = ParseKeywordList("# wanted\nGo, SQL\n\nKubernetes\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, list)

	_, err = ParseKeywordList(`["Go", 3]`)
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
}

func TestHandleOutput(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerWithWriter(nil, &buf)
	res := semantic.Result{MatchedKeywords: []string{"Go"}, MissedKeywords: []string{}, MatchScore: 100, Source: semantic.SourceFallback}

	require.NoError(t, oh.HandleOutput(res, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "Score: 100/100")

	out := filepath.Join(t.TempDir(), "out", "match.json")
	require.NoError(t, oh.HandleOutput(res, CommandConfig{OutputFormat: "json", OutputFile: out}))
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"matchScore": 100`)

	err = oh.HandleOutput(res, CommandConfig{OutputFormat: "xml"})
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
}

func TestRunCommand(t *testing.T) {
	kw := writeTemp(t, "keywords.txt", "Go\nRust")
	resume := writeTemp(t, "resume.txt", "Go developer")
	var buf bytes.Buffer

	type input struct {
		keywords []string
		resume   string
	}
	logged := false
	err := RunCommand(context.Background(), Runner{Stdout: &buf}, CommandConfig{OutputFormat: "json"},
		[]string{kw, resume},
		func(contents []string) (input, error) {
			list, err := ParseKeywordList(contents[0])
			return input{keywords: list, resume: contents[1]}, err
		},
		func(ctx context.Context, in input) (semantic.Result, *semantic.Usage, error) {
			m := semantic.NewMatcher(nil, nil)
			return m.Match(ctx, semantic.Request{Keywords: in.keywords, Resume: in.resume}), nil, nil
		},
		func(in input, _ CommandConfig) { logged = len(in.keywords) == 2 },
	)
	require.NoError(t, err)
	assert.True(t, logged)
	assert.Contains(t, buf.String(), `"matchScore": 50`)
}
