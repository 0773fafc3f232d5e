// Package validator compares planned tests against existing tests and
// reports coverage gaps.
package validator

import "sort"

// CoverageSummary aggregates the headline counts.
type CoverageSummary struct {
	New                  int `json:"new"`
	Existing             int `json:"existing"`
	TotalAfterGeneration int `json:"total_after_generation"`
}

// CoverageReport is the result of comparing planned vs existing tests.
type CoverageReport struct {
	TotalPlanned        int             `json:"total_planned"`
	AlreadyCovered      []string        `json:"already_covered"`
	NewTests            []string        `json:"new_tests"`
	Duplicates          []string        `json:"duplicates"`
	CoverageImprovement float64         `json:"coverage_improvement"`
	Summary             CoverageSummary `json:"summary"`
}

// ValidateCoverage computes the set difference between planned and
// existing test names. Duplicates are names appearing more than once in
// the raw planned sequence. All name lists are sorted so reports are
// reproducible.
func ValidateCoverage(plannedTests, existingTests []string) CoverageReport {
	plannedSet := make(map[string]int, len(plannedTests))
	for _, name := range plannedTests {
		plannedSet[name]++
	}
	existingSet := make(map[string]bool, len(existingTests))
	for _, name := range existingTests {
		existingSet[name] = true
	}

	alreadyCovered := make([]string, 0)
	newTests := make([]string, 0)
	duplicates := make([]string, 0)
	for name, count := range plannedSet {
		if existingSet[name] {
			alreadyCovered = append(alreadyCovered, name)
		} else {
			newTests = append(newTests, name)
		}
		if count > 1 {
			duplicates = append(duplicates, name)
		}
	}
	sort.Strings(alreadyCovered)
	sort.Strings(newTests)
	sort.Strings(duplicates)

	totalPlanned := len(plannedSet)
	improvement := 0.0
	if totalPlanned > 0 {
		improvement = float64(len(newTests)) / float64(totalPlanned)
	}

	return CoverageReport{
		TotalPlanned:        totalPlanned,
		AlreadyCovered:      alreadyCovered,
		NewTests:            newTests,
		Duplicates:          duplicates,
		CoverageImprovement: improvement,
		Summary: CoverageSummary{
			New:                  len(newTests),
			Existing:             len(existingSet),
			TotalAfterGeneration: len(existingSet) + len(newTests),
		},
	}
}
