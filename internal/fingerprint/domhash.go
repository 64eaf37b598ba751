package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

const tokenDelimiter = "\x00"

// HashDOM computes a stable, layout-independent hash of a DomNode
// subtree. Bounding boxes and visibility are excluded by design: a
// layout shift alone must not change a page's identity.
func HashDOM(root *DomNode) string {
	var b strings.Builder
	serialize(root, &b)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func serialize(n *DomNode, b *strings.Builder) {
	if n == nil {
		return
	}
	emit(b, n.Tag)
	emit(b, n.ID)

	classes := append([]string(nil), n.Classes...)
	sort.Strings(classes)
	emit(b, strings.Join(classes, " "))

	emit(b, n.TextContent)

	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		emit(b, k)
		emit(b, n.Attributes[k])
	}

	for _, child := range n.Children {
		serialize(child, b)
	}
}

func emit(b *strings.Builder, token string) {
	b.WriteString(token)
	b.WriteString(tokenDelimiter)
}
