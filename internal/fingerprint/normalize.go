package fingerprint

import (
	"net/url"
	"sort"
	"strings"
)

// trackingQueryKeys are stripped unconditionally during normalization.
var trackingQueryKeys = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
}

// NormalizeURL canonicalizes an absolute URL so that semantically
// equivalent URLs collapse to the same string. It is idempotent:
// NormalizeURL(NormalizeURL(u)) == NormalizeURL(u). If u fails to
// parse, it is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	q := u.Query()
	for key := range trackingQueryKeys {
		q.Del(key)
	}
	u.RawQuery = sortedQuery(q)
	u.Fragment = ""

	return u.String()
}

// sortedQuery renders query values sorted by key, with a stable
// secondary sort on value so repeated runs are byte-identical.
func sortedQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := append([]string(nil), q[k]...)
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
