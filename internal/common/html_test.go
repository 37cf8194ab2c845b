package common

import (
	"testing"

	"keyplan/internal/jd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<!DOCTYPE html>
<html><head><title>Data Analyst</title><style>.x{}</style></head>
<body>
<nav>Home | Jobs | Login</nav>
<div class="job-description">
<h2>Requirements:</h2><ul><li>3+ years SQL</li><li>Tableau</li></ul>
<h2>Responsibilities:</h2><p>Build dashboards with SQL.<br>Partner with product.</p>
</div>
<footer>Copyright</footer>
<script>track()</script>
</body></html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(postingHTML)
	require.NoError(t, err)

	assert.Equal(t, "Requirements:\n3+ years SQL\nTableau\nResponsibilities:\nBuild dashboards with SQL.\nPartner with product.", text)
	assert.NotContains(t, text, "Login")
	assert.NotContains(t, text, "track()")
}

func TestExtractTextFeedsParser(t *testing.T) {
	text, err := ExtractText(postingHTML)
	require.NoError(t, err)

	meta := jd.Parse(text, "Data Analyst")
	assert.Contains(t, meta.Sections.RequiredQualifications, "3+ years SQL")
	assert.Contains(t, meta.Sections.Responsibilities, "Build dashboards with SQL.")
}

func TestExtractTextFallsBackToBody(t *testing.T) {
	text, err := ExtractText("<html><body><p>Plain   posting</p><p>Second</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "Plain posting\nSecond", text)
}
