// Package importer turns externally authored test fixtures into the
// execution.TestCase suites the scheduler consumes, filling in the
// "test-case generation" Non-goal's data-entry edge for fixtures that
// already exist as a Postman collection, without reimplementing the
// graph-derived generator itself (spec §1 Out of scope).
package importer

import (
	"fmt"
	"strings"

	postman "github.com/rbretecher/go-postman-collection"

	"github.com/mateoblack/sentinel/internal/execution"
)

// FromPostmanCollection reads a Postman Collection v2.1 document and
// produces one TestCase per request item, named after the request item
// itself; folders are flattened, and IDs are numbered in the order the
// requests appear in the collection tree. Each TestCase has a single
// "navigation" step against the request's raw URL followed by a
// url-match assertion, giving every imported request a smoke-test
// shape that the existing TestExecutor (spec §4.11) can already run;
// callers merge the result with graph-derived suites before scheduling.
func FromPostmanCollection(content []byte, suite string) ([]execution.TestCase, error) {
	collection, err := postman.ParseCollection(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("importer: parsing postman collection: %w", err)
	}

	var cases []execution.TestCase
	walkItems(collection.Items, suite, &cases)
	return cases, nil
}

func walkItems(items []*postman.Items, suite string, out *[]execution.TestCase) {
	for _, item := range items {
		if item.IsGroup() {
			walkItems(item.Items, suite, out)
			continue
		}
		if item.Request == nil || item.Request.URL == nil {
			continue
		}

		rawURL := item.Request.URL.Raw
		*out = append(*out, execution.TestCase{
			ID:    fmt.Sprintf("postman-%d", len(*out)+1),
			Name:  item.Name,
			Suite: suite,
			Steps: []execution.TestStep{
				{
					Action:   execution.ActionNavigation,
					Selector: rawURL,
					Assertions: []execution.TestAssertion{
						{Type: execution.AssertionURLMatch, Expected: rawURL},
					},
				},
			},
		})
	}
}
