package codeowners_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrfin/prnudge/internal/codeowners"
)

func TestParse_SkipsCommentsAndMalformedLines(t *testing.T) {
	input := `
# full-line comment
*.py @team-backend

/frontend/* @team-frontend # trailing comment
lonely-pattern-without-owner
docs/** @team-docs @alice
`
	rs := codeowners.Parse(strings.NewReader(input))
	assert.Equal(t, 3, rs.Len())
}

func TestOwnersForFile_LastMatchWins(t *testing.T) {
	input := `
* @team-default
*.go @team-backend
/cmd/* @team-cli
`
	rs := codeowners.Parse(strings.NewReader(input))

	assert.Equal(t, []string{"team-backend"}, rs.OwnersForFile("internal/app.go"))
	assert.Equal(t, []string{"team-cli"}, rs.OwnersForFile("cmd/main.go"), "later rule overrides *.go")
	assert.Equal(t, []string{"team-default"}, rs.OwnersForFile("README.md"))
}

func TestOwnersForFile_NoMatch(t *testing.T) {
	rs := codeowners.Parse(strings.NewReader("*.py @team-backend\n"))
	assert.Nil(t, rs.OwnersForFile("main.go"))
}

func TestOwnersForFile_PatternForms(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		match   bool
	}{
		{name: "extension glob", pattern: "*.py", path: "app.py", match: true},
		{name: "extension glob in subdir", pattern: "*.py", path: "scripts/tool.py", match: true},
		{name: "single star stops at slash", pattern: "/frontend/*", path: "frontend/index.js", match: true},
		{name: "single star does not cross dirs", pattern: "/frontend/*", path: "frontend/css/site.css", match: false},
		{name: "double star crosses dirs", pattern: "/frontend/**", path: "frontend/css/site.css", match: true},
		{name: "anchored pattern only at root", pattern: "/frontend/*", path: "app/frontend/index.js", match: false},
		{name: "leading slash on path is normalized", pattern: "/frontend/*", path: "/frontend/index.js", match: true},
		{name: "unanchored suffix", pattern: "package.json", path: "web/package.json", match: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rs := codeowners.Parse(strings.NewReader(tc.pattern + " @owner\n"))
			owners := rs.OwnersForFile(tc.path)
			if tc.match {
				assert.Equal(t, []string{"@owner"}, owners)
			} else {
				assert.Nil(t, owners)
			}
		})
	}
}

func TestOwnersForFiles_UnionFirstAppearanceOrder(t *testing.T) {
	input := `
*.py team-backend
/frontend/* team-frontend
`
	rs := codeowners.Parse(strings.NewReader(input))

	owners := rs.OwnersForFiles([]string{"app.py", "/frontend/index.js", "lib/util.py"})
	assert.Equal(t, []string{"team-backend", "team-frontend"}, owners)
}

func TestOwnersForFiles_MultipleOwnersPerRule(t *testing.T) {
	rs := codeowners.Parse(strings.NewReader("docs/** @team-docs @alice\n"))

	owners := rs.OwnersForFiles([]string{"docs/guide.md", "docs/api/ref.md"})
	assert.Equal(t, []string{"@team-docs", "@alice"}, owners)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CODEOWNERS")
	require.NoError(t, os.WriteFile(path, []byte("*.go @team-backend\n"), 0o644))

	rs, err := codeowners.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, []string{"@team-backend"}, rs.OwnersForFile("main.go"))
}

func TestParseFile_Missing(t *testing.T) {
	_, err := codeowners.ParseFile(filepath.Join(t.TempDir(), "CODEOWNERS"))
	require.Error(t, err)
}

func TestEmpty(t *testing.T) {
	rs := codeowners.Empty()
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.OwnersForFiles([]string{"anything.go"}))
}
