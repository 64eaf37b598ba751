package report

import (
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/mateoblack/sentinel/internal/graph"
)

// GraphDiff summarizes the nodes and edges that appeared or disappeared
// between two explorations of the same start URL, for detecting UI
// drift run over run (spec §1 "trend database", supplemented feature).
type GraphDiff struct {
	AddedNodeURLs   []string
	RemovedNodeURLs []string
	AddedEdges      []string
	RemovedEdges    []string
	LinesAdded      int
	LinesRemoved    int
}

// DiffGraphs renders both graphs as line sets keyed by node URL and
// edge description. The added/removed node and edge lists come from
// comparing those two sets directly; the line-level stats come from
// rendering them as a synthetic unified diff and parsing it back with
// go-diff, the same way a patch validator would (see DESIGN.md).
func DiffGraphs(before, after *graph.Graph) (GraphDiff, error) {
	oldLines := graphLines(before)
	newLines := graphLines(after)

	unified := unifiedDiff("graph.nodes+edges", oldLines, newLines)

	fileDiffs, err := godiff.NewMultiFileDiffReader(strings.NewReader(unified)).ReadAllFiles()
	if err != nil {
		return GraphDiff{}, fmt.Errorf("report: parsing graph diff: %w", err)
	}

	var gd GraphDiff
	oldSet := toSet(oldLines)
	newSet := toSet(newLines)

	for url := range newSet {
		if !oldSet[url] {
			if strings.HasPrefix(url, "node ") {
				gd.AddedNodeURLs = append(gd.AddedNodeURLs, strings.TrimPrefix(url, "node "))
			} else {
				gd.AddedEdges = append(gd.AddedEdges, strings.TrimPrefix(url, "edge "))
			}
		}
	}
	for url := range oldSet {
		if !newSet[url] {
			if strings.HasPrefix(url, "node ") {
				gd.RemovedNodeURLs = append(gd.RemovedNodeURLs, strings.TrimPrefix(url, "node "))
			} else {
				gd.RemovedEdges = append(gd.RemovedEdges, strings.TrimPrefix(url, "edge "))
			}
		}
	}
	sort.Strings(gd.AddedNodeURLs)
	sort.Strings(gd.RemovedNodeURLs)
	sort.Strings(gd.AddedEdges)
	sort.Strings(gd.RemovedEdges)

	for _, fd := range fileDiffs {
		for _, hunk := range fd.Hunks {
			for _, line := range strings.Split(string(hunk.Body), "\n") {
				switch {
				case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
					gd.LinesAdded++
				case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
					gd.LinesRemoved++
				}
			}
		}
	}

	return gd, nil
}

// graphLines renders a deterministic, sorted line-per-element view of
// a graph suitable for line-oriented diffing.
func graphLines(g *graph.Graph) []string {
	var lines []string
	for _, n := range g.Nodes() {
		lines = append(lines, fmt.Sprintf("node %s", n.URL))
	}
	for _, e := range g.Edges() {
		lines = append(lines, fmt.Sprintf("edge %s --%s(%s)--> %s", e.SourceID, e.ActionType, e.Selector, e.TargetID))
	}
	sort.Strings(lines)
	return lines
}

func toSet(lines []string) map[string]bool {
	set := make(map[string]bool, len(lines))
	for _, l := range lines {
		set[l] = true
	}
	return set
}

// unifiedDiff hand-rolls a minimal unified diff between two sorted line
// sets. Because both inputs are pre-sorted, a merge-style walk suffices
// in place of a general LCS — there is no reordering to account for.
func unifiedDiff(name string, oldLines, newLines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", name)
	fmt.Fprintf(&b, "+++ b/%s\n", name)
	fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))

	i, j := 0, 0
	for i < len(oldLines) || j < len(newLines) {
		switch {
		case i < len(oldLines) && j < len(newLines) && oldLines[i] == newLines[j]:
			fmt.Fprintf(&b, " %s\n", oldLines[i])
			i++
			j++
		case j < len(newLines) && (i >= len(oldLines) || oldLines[i] > newLines[j]):
			fmt.Fprintf(&b, "+%s\n", newLines[j])
			j++
		default:
			fmt.Fprintf(&b, "-%s\n", oldLines[i])
			i++
		}
	}
	return b.String()
}
