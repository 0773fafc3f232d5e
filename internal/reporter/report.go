package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"api-test-planner/internal/models"
	"api-test-planner/internal/validator"
)

// Report represents a planning run report
type Report struct {
	Timestamp    time.Time                 `json:"timestamp"`
	TotalPlanned int                       `json:"total_planned"`
	NewTests     int                       `json:"new_tests"`
	Rationale    string                    `json:"rationale"`
	Coverage     *validator.CoverageReport `json:"coverage"`
	Scenarios    []models.TestScenario     `json:"scenarios,omitempty"`
}

// Reporter handles the generation of planning run reports
type Reporter struct {
	config ReportingConfig
}

// ReportingConfig holds the configuration for reporting
type ReportingConfig struct {
	OutputDir string
	Detailed  bool
}

// NewReporter creates a new instance of Reporter
func NewReporter(config ReportingConfig) *Reporter {
	return &Reporter{
		config: config,
	}
}

// WriteReport writes a JSON summary of the planning run and returns
// the path of the written file.
func (r *Reporter) WriteReport(plan *models.TestPlan, coverage *validator.CoverageReport) (string, error) {
	report := Report{
		Timestamp:    time.Now(),
		TotalPlanned: len(plan.Scenarios),
		Rationale:    plan.Rationale,
		Coverage:     coverage,
	}
	if coverage != nil {
		report.NewTests = len(coverage.NewTests)
	}
	if r.config.Detailed {
		report.Scenarios = plan.Scenarios
	}

	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return "", err
	}

	reportPath := filepath.Join(r.config.OutputDir, fmt.Sprintf("report_%s.json", report.Timestamp.Format("20060102_150405")))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return "", err
	}
	return reportPath, nil
}
