// Package pathutil maps request paths to low-cardinality metric labels and
// parses numeric path segments.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a dynamic route with its label template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/articles/[^/]+/score$`), Template: "/articles/:id/score"},
	{Pattern: regexp.MustCompile(`^/articles/\d+$`), Template: "/articles/:id"},
}

// knownPaths are returned unchanged; everything else collapses to "other".
var knownPaths = map[string]struct{}{
	"/":              {},
	"/articles":      {},
	"/articles.json": {},
	"/feedback":      {},
	"/refresh":       {},
	"/stats":         {},
	"/health":        {},
	"/ready":         {},
	"/live":          {},
	"/metrics":       {},
}

// OtherPath is the label used for paths that match no route.
const OtherPath = "other"

// NormalizePath turns a request path into a metrics label.
//
//	NormalizePath("/articles/42/score") // "/articles/:id/score"
//	NormalizePath("/stats?x=1")         // "/stats"
//	NormalizePath("/wp-login.php")      // "other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return OtherPath
}

// GetExpectedCardinality is the upper bound of distinct labels NormalizePath emits.
func GetExpectedCardinality() int {
	return len(knownPaths) + len(pathPatterns) + 1
}
