package validate

import "strings"

// keywordAliases maps common shorthand to the canonical keyword.
var keywordAliases = map[string]string{
	"golang":     "go",
	"k8s":        "kubernetes",
	"js":         "javascript",
	"ts":         "typescript",
	"postgres":   "postgresql",
	"py":         "python",
	"tf":         "terraform",
	"gcp":        "google cloud",
	"ml":         "machine learning",
	"ai":         "artificial intelligence",
	"nodejs":     "node.js",
	"node":       "node.js",
	"reactjs":    "react",
	"react.js":   "react",
	"vuejs":      "vue",
	"vue.js":     "vue",
	"powerbi":    "power bi",
	"ci-cd":      "ci/cd",
	"cicd":       "ci/cd",
	"a/b tests":  "a/b testing",
	"ab testing": "a/b testing",
}

// NormalizeKeyword lowercases keyword and resolves known aliases.
func NormalizeKeyword(keyword string) string {
	kw := strings.ToLower(strings.Join(strings.Fields(keyword), " "))
	if canonical, ok := keywordAliases[kw]; ok {
		return canonical
	}
	return kw
}
