// Package scope decides, per candidate URL, whether exploration is
// allowed to follow it.
package scope

import (
	"fmt"
	"net/url"
	"regexp"
)

// Config controls scope decisions. Patterns are regular expressions
// evaluated against the (possibly query-stripped) candidate URL.
type Config struct {
	AllowPatterns        []string `json:"allowPatterns,omitempty" yaml:"allowPatterns,omitempty"`
	DenyPatterns         []string `json:"denyPatterns,omitempty" yaml:"denyPatterns,omitempty"`
	AllowExternalDomains bool     `json:"allowExternalDomains" yaml:"allowExternalDomains"`
	ExcludeQueryPatterns []string `json:"excludeQueryPatterns,omitempty" yaml:"excludeQueryPatterns,omitempty"`
}

// Decision is the tagged outcome of a scope check: Allowed is the
// discriminant, Reason is populated only when Allowed is false.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision              { return Decision{Allowed: true} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// Filter evaluates candidate URLs against a compiled Config.
type Filter struct {
	baseHost     string
	allow        []*regexp.Regexp
	deny         []*regexp.Regexp
	excludeQuery []*regexp.Regexp
	allowExtDom  bool
}

// NewFilter compiles cfg against baseHost (the lower-cased host of the
// exploration's start URL). Invalid regex entries are skipped, never
// fatal; use ValidateConfig beforehand to surface them to the caller.
func NewFilter(baseHost string, cfg Config) *Filter {
	f := &Filter{baseHost: baseHost, allowExtDom: cfg.AllowExternalDomains}
	f.allow = compileAll(cfg.AllowPatterns)
	f.deny = compileAll(cfg.DenyPatterns)
	f.excludeQuery = compileAll(cfg.ExcludeQueryPatterns)
	return f
}

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// ValidateConfig pre-compiles every pattern in cfg and returns the
// subset that failed to compile, so callers can reject a configuration
// before exploration begins rather than silently dropping rules.
func ValidateConfig(cfg Config) []string {
	var invalid []string
	check := func(patterns []string) {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				invalid = append(invalid, p)
			}
		}
	}
	check(cfg.AllowPatterns)
	check(cfg.DenyPatterns)
	check(cfg.ExcludeQueryPatterns)
	return invalid
}

// Check decides whether candidate is in scope, in the order specified
// by the exploration spec: parse, domain check, query stripping, deny,
// allow.
func (f *Filter) Check(candidate string) Decision {
	u, err := url.Parse(candidate)
	if err != nil {
		return deny("Invalid URL")
	}

	if !f.allowExtDom && !sameHost(u.Hostname(), f.baseHost) {
		return deny(fmt.Sprintf("external domain %q not allowed", u.Hostname()))
	}

	stripped := stripExcludedQuery(*u, f.excludeQuery)
	strippedURL := stripped.String()

	for _, re := range f.deny {
		if re.MatchString(strippedURL) {
			return deny(fmt.Sprintf("matched deny pattern %q", re.String()))
		}
	}

	if len(f.allow) == 0 {
		return allow()
	}

	for _, re := range f.allow {
		if re.MatchString(strippedURL) {
			return allow()
		}
	}
	return deny("did not match any allow pattern")
}

func sameHost(a, b string) bool {
	return lower(a) == lower(b)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func stripExcludedQuery(u url.URL, patterns []*regexp.Regexp) url.URL {
	if len(patterns) == 0 {
		return u
	}
	q := u.Query()
	for key := range q {
		for _, re := range patterns {
			if re.MatchString(key) {
				q.Del(key)
				break
			}
		}
	}
	u.RawQuery = q.Encode()
	return u
}
