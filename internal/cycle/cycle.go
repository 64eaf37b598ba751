// Package cycle decides whether revisiting a page state should halt
// further traversal of that branch of the exploration frontier.
package cycle

import "github.com/mateoblack/sentinel/internal/fingerprint"

// Reason classifies why a candidate state was judged a cycle.
type Reason string

const (
	ReasonDuplicateState        Reason = "duplicate-state"
	ReasonParameterizedURLLimit Reason = "parameterized-url-limit"
	ReasonInfiniteScroll        Reason = "infinite-scroll"
)

// Entry is one recorded cycle occurrence.
type Entry struct {
	URL    string `json:"url"`
	Reason Reason `json:"reason"`
	Count  int    `json:"count"`
}

// Report aggregates every cycle entry observed during an exploration.
type Report struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Add appends entry and keeps Total consistent.
func (r *Report) Add(entry Entry) {
	r.Entries = append(r.Entries, entry)
	r.Total += entry.Count
}

// Limits bounds revisit budgets.
type Limits struct {
	ParameterizedURLLimit   int
	InfiniteScrollThreshold int
}

// Detector decides whether a candidate state is a cycle, given the set
// of previously-visited fingerprint keys and a per-normalized-URL
// visit counter. It holds no state of its own; callers own both sets.
type Detector struct {
	limits Limits
}

func NewDetector(limits Limits) *Detector {
	return &Detector{limits: limits}
}

// Check evaluates fp against visited and counts. visited maps
// fingerprint key -> presence; counts maps normalized URL -> number of
// prior visits. ok is false when the candidate is not a cycle.
func (d *Detector) Check(fp fingerprint.StateFingerprint, visited map[string]bool, counts map[string]int) (Entry, bool) {
	if visited[fp.Key()] {
		return Entry{URL: fp.NormalizedURL, Reason: ReasonDuplicateState, Count: 1}, true
	}

	if n := counts[fp.NormalizedURL]; n >= d.limits.ParameterizedURLLimit {
		return Entry{URL: fp.NormalizedURL, Reason: ReasonParameterizedURLLimit, Count: n + 1}, true
	}

	return Entry{}, false
}

// CheckInfiniteScroll surfaces the infinite-scroll reason when
// domSizeDelta, the DOM growth the caller measured for a same-URL
// revisit, is at least the configured threshold. It keeps no size
// history of its own, and the exploration loop does not call it, so
// infinite-scroll entries appear only when a caller supplies the delta.
func (d *Detector) CheckInfiniteScroll(normalizedURL string, domSizeDelta int) (Entry, bool) {
	if domSizeDelta >= d.limits.InfiniteScrollThreshold {
		return Entry{URL: normalizedURL, Reason: ReasonInfiniteScroll, Count: 1}, true
	}
	return Entry{}, false
}
