// Package fingerprint canonicalizes URLs and DOM subtrees so that
// semantically identical page states collapse onto the same identity.
package fingerprint

import "strconv"

// BoundingBox is the on-screen rectangle of a rendered element. It is
// immutable once produced and carries no identity semantics of its own.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DomNode is a parsed DOM element. The tree is acyclic and owned by the
// extraction that produced it; nothing downstream mutates it in place.
type DomNode struct {
	Tag         string            `json:"tag"`
	ID          string            `json:"id,omitempty"`
	Classes     []string          `json:"classes,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	TextContent string            `json:"textContent,omitempty"`
	Children    []*DomNode        `json:"children,omitempty"`
	BoundingBox *BoundingBox      `json:"boundingBox,omitempty"`
	Visible     bool              `json:"isVisible"`
	XPath       string            `json:"xpath,omitempty"`
	CSSSelector string            `json:"cssSelector,omitempty"`
}

// RawDomData mirrors the shape returned by the in-page DOM extraction
// script (spec §6). It is the wire form; Parse turns it into a DomNode
// tree with derived XPath/CSSSelector.
type RawDomData struct {
	Tag         string            `json:"tag"`
	ID          *string           `json:"id"`
	Classes     []string          `json:"classes"`
	Attributes  map[string]string `json:"attributes"`
	TextContent string            `json:"textContent"`
	Children    []RawDomData      `json:"children"`
	BoundingBox *BoundingBox      `json:"boundingBox"`
	IsVisible   bool              `json:"isVisible"`
}

// Parse converts raw extraction data into an owned DomNode tree,
// deriving an xpath and a best-effort CSS selector for every node.
func Parse(raw RawDomData) *DomNode {
	return parse(raw, "/html", 0)
}

func parse(raw RawDomData, parentPath string, siblingIndex int) *DomNode {
	node := &DomNode{
		Tag:         raw.Tag,
		Classes:     raw.Classes,
		Attributes:  raw.Attributes,
		TextContent: raw.TextContent,
		BoundingBox: raw.BoundingBox,
		Visible:     raw.IsVisible,
	}
	if raw.ID != nil {
		node.ID = *raw.ID
	}

	node.XPath = derivedXPath(parentPath, raw.Tag, siblingIndex)
	node.CSSSelector = derivedCSSSelector(node)

	node.Children = make([]*DomNode, 0, len(raw.Children))
	for i, child := range raw.Children {
		node.Children = append(node.Children, parse(child, node.XPath, i))
	}
	return node
}

func derivedXPath(parentPath, tag string, siblingIndex int) string {
	if tag == "" {
		tag = "*"
	}
	return parentPath + "/" + tag + "[" + strconv.Itoa(siblingIndex+1) + "]"
}

func derivedCSSSelector(node *DomNode) string {
	if node.ID != "" {
		return "#" + node.ID
	}
	sel := node.Tag
	for _, c := range node.Classes {
		sel += "." + c
	}
	return sel
}

