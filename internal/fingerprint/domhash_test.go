package fingerprint

import "testing"

func TestHashDOM_IgnoresBoundingBoxAndVisibility(t *testing.T) {
	a := &DomNode{Tag: "div", ID: "root", BoundingBox: &BoundingBox{X: 0, Y: 0, Width: 100, Height: 50}, Visible: true}
	b := &DomNode{Tag: "div", ID: "root", BoundingBox: &BoundingBox{X: 10, Y: 20, Width: 5, Height: 5}, Visible: false}

	if HashDOM(a) != HashDOM(b) {
		t.Error("hash should be identical when only bounding box/visibility differ")
	}
}

func TestHashDOM_AttributeOrderDoesNotMatter(t *testing.T) {
	a := &DomNode{Tag: "input", Attributes: map[string]string{"type": "text", "name": "q"}}
	b := &DomNode{Tag: "input", Attributes: map[string]string{"name": "q", "type": "text"}}

	if HashDOM(a) != HashDOM(b) {
		t.Error("hash should be stable regardless of attribute map iteration order")
	}
}

func TestHashDOM_ClassOrderDoesNotMatter(t *testing.T) {
	a := &DomNode{Tag: "div", Classes: []string{"b", "a"}}
	b := &DomNode{Tag: "div", Classes: []string{"a", "b"}}

	if HashDOM(a) != HashDOM(b) {
		t.Error("hash should be stable regardless of declared class order")
	}
}

func TestHashDOM_DifferentTextProducesDifferentHash(t *testing.T) {
	a := &DomNode{Tag: "p", TextContent: "hello"}
	b := &DomNode{Tag: "p", TextContent: "world"}

	if HashDOM(a) == HashDOM(b) {
		t.Error("different text content should produce different hashes")
	}
}

func TestHashDOM_ChildOrderMatters(t *testing.T) {
	a := &DomNode{Tag: "ul", Children: []*DomNode{
		{Tag: "li", TextContent: "one"},
		{Tag: "li", TextContent: "two"},
	}}
	b := &DomNode{Tag: "ul", Children: []*DomNode{
		{Tag: "li", TextContent: "two"},
		{Tag: "li", TextContent: "one"},
	}}

	if HashDOM(a) == HashDOM(b) {
		t.Error("child declaration order is significant and should change the hash")
	}
}
