package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jd.txt")
	require.NoError(t, os.WriteFile(file, []byte("Requirements: SQL"), 0600))

	assert.NoError(t, ValidateInputFile(file))
	assert.ErrorContains(t, ValidateInputFile(""), "filename cannot be empty")
	assert.ErrorContains(t, ValidateInputFile(filepath.Join(dir, "missing.txt")), "file does not exist")
	assert.ErrorContains(t, ValidateInputFile(dir), "path is a directory")
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "plan.json")
	require.NoError(t, ValidateOutputFile(out))
	info, err := os.Stat(filepath.Dir(out))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, ValidateOutputFile(""))
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsTextFile("resume.MD"))
	assert.True(t, IsTextFile("keywords.json"))
	assert.False(t, IsTextFile("posting.html"))
	assert.True(t, IsHTMLFile("posting.HTML"))
	assert.False(t, IsHTMLFile("resume.pdf"))

	assert.True(t, LooksLikeHTML("  <!DOCTYPE html><html><body>hi</body></html>"))
	assert.True(t, LooksLikeHTML("<html lang=en>"))
	assert.False(t, LooksLikeHTML("Requirements: 3+ years <SQL>"))
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		0:                "0 B",
		1023:             "1023 B",
		1024:             "1.0 KB",
		1536:             "1.5 KB",
		10 * 1024 * 1024: "10.0 MB",
	}
	for size, want := range tests {
		assert.Equal(t, want, FormatFileSize(size))
	}
}
