// Package coverage derives page/element/path coverage ratios from
// exploration counters and checks them against configured thresholds.
package coverage

import "fmt"

// Ratio is covered/total expressed both as raw counts and a percentage.
type Ratio struct {
	Covered    int     `json:"covered"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func newRatio(covered, total int) Ratio {
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(covered) / float64(total)
	}
	return Ratio{Covered: covered, Total: total, Percentage: pct}
}

// Metrics bundles the three axes of coverage tracked during
// exploration.
type Metrics struct {
	Page    Ratio `json:"page"`
	Element Ratio `json:"element"`
	Path    Ratio `json:"path"`
}

// Calculate derives Metrics from raw exploration counters.
func Calculate(pagesVisited, pagesDiscovered, elementsActivated, elementsFound, edgesTraversed, edgesDiscovered int) Metrics {
	return Metrics{
		Page:    newRatio(pagesVisited, pagesDiscovered),
		Element: newRatio(elementsActivated, elementsFound),
		Path:    newRatio(edgesTraversed, edgesDiscovered),
	}
}

// Thresholds names the minimum acceptable percentage per axis. A nil
// pointer means "not required".
type Thresholds struct {
	MinPageCoverage    *float64
	MinElementCoverage *float64
	MinPathCoverage    *float64
}

// CheckResult is the tagged outcome of evaluating Thresholds against
// Metrics.
type CheckResult struct {
	Met     bool     `json:"met"`
	Details []string `json:"details,omitempty"`
}

// CheckThresholds returns Met=true iff every configured threshold is
// satisfied. Unset thresholds are ignored. Details names every failing
// axis with its actual and required percentage.
func CheckThresholds(metrics Metrics, thresholds Thresholds) CheckResult {
	result := CheckResult{Met: true}

	check := func(name string, required *float64, actual float64) {
		if required == nil {
			return
		}
		if actual < *required {
			result.Met = false
			result.Details = append(result.Details, fmt.Sprintf("%s coverage %.2f%% below required %.2f%%", name, actual, *required))
		}
	}

	check("page", thresholds.MinPageCoverage, metrics.Page.Percentage)
	check("element", thresholds.MinElementCoverage, metrics.Element.Percentage)
	check("path", thresholds.MinPathCoverage, metrics.Path.Percentage)

	return result
}
