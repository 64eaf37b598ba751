package scope

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pb33f/libopenapi"
)

// pathParam matches an OpenAPI path template segment like "{id}".
var pathParam = regexp.MustCompile(`\{[^/{}]+\}`)

// AllowPatternsFromOpenAPI reads an OpenAPI document and derives a set
// of allow-pattern regular expressions, one per declared path, each
// matching an absolute URL on any host whose path is that declared
// path, with path parameters loosened to match any non-slash segment
// and any query string or fragment permitted. It seeds
// Config.AllowPatterns so exploration scope tracks a service's
// documented surface without hand-written regexes.
func AllowPatternsFromOpenAPI(content []byte) ([]string, error) {
	doc, err := libopenapi.NewDocument(content)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("build openapi v3 model: %w", err)
	}

	var patterns []string
	for pair := model.Model.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		patterns = append(patterns, pathToPattern(pair.Key()))
	}
	return patterns, nil
}

func pathToPattern(path string) string {
	path = strings.TrimSuffix(path, "/")

	var b strings.Builder
	b.WriteString(`^[a-zA-Z][a-zA-Z0-9+.-]*://[^/?#]*`)
	last := 0
	for _, loc := range pathParam.FindAllStringIndex(path, -1) {
		b.WriteString(regexp.QuoteMeta(path[last:loc[0]]))
		b.WriteString("[^/]+")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(path[last:]))
	b.WriteString(`/?(?:[?#].*)?$`)
	return b.String()
}
