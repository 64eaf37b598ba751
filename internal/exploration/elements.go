package exploration

import (
	"net/url"
	"strings"

	"github.com/mateoblack/sentinel/internal/fingerprint"
)

// ElementCategory classifies one interactive DOM node found on a page.
type ElementCategory string

const (
	CategoryNavigationLink ElementCategory = "navigation-link"
	CategoryFormControl    ElementCategory = "form-control"
	CategoryButton         ElementCategory = "button"
)

// Element is one interactive node discovered on a page, keyed by its
// derived xpath so the same control is recognized across revisits.
type Element struct {
	ID       string
	Category ElementCategory
	Selector string
	Href     string // absolute, resolved against the page URL; only for navigation-link
}

// classifyInteractiveElements walks root and returns every element the
// exploration loop can act on, plus the forms found on the page.
func classifyInteractiveElements(pageURL string, root *fingerprint.DomNode) (elements []Element, forms []Element) {
	var walk func(n *fingerprint.DomNode)
	walk = func(n *fingerprint.DomNode) {
		if n == nil {
			return
		}
		switch n.Tag {
		case "a":
			if href, ok := resolveHref(pageURL, n.Attributes["href"]); ok {
				elements = append(elements, Element{ID: n.XPath, Category: CategoryNavigationLink, Selector: n.CSSSelector, Href: href})
			}
		case "form":
			forms = append(forms, Element{ID: n.XPath, Category: CategoryFormControl, Selector: n.CSSSelector})
		case "button":
			elements = append(elements, Element{ID: n.XPath, Category: CategoryButton, Selector: n.CSSSelector})
		case "input":
			if t := strings.ToLower(n.Attributes["type"]); t == "submit" || t == "button" {
				elements = append(elements, Element{ID: n.XPath, Category: CategoryButton, Selector: n.CSSSelector})
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return elements, forms
}

// resolveHref resolves href (relative or absolute) against base and
// reports whether a URL was produced. Empty hrefs, "#" anchors,
// javascript: and mailto: links, and parse failures are rejected.
func resolveHref(base, href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := baseURL.ResolveReference(ref)
	return resolved.String(), true
}
