package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"api-test-planner/internal/models"
	"api-test-planner/internal/validator"
)

func samplePlan(t *testing.T) *models.TestPlan {
	t.Helper()
	plan, err := models.NewTestPlan([]models.TestScenario{
		{TestName: "a_positive", Endpoint: "a", TestType: "positive", ExpectedStatus: 200},
		{TestName: "b_positive", Endpoint: "b", TestType: "positive", ExpectedStatus: 200},
	}, "Planned 2 tests covering 2 endpoints.")
	if err != nil {
		t.Fatalf("NewTestPlan() error = %v", err)
	}
	return plan
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(ReportingConfig{OutputDir: dir})

	plan := samplePlan(t)
	coverage := validator.ValidateCoverage(plan.TestNames(), []string{"a_positive"})

	path, err := r.WriteReport(plan, &coverage)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("report written to %s, want %s", path, dir)
	}
	if !strings.HasPrefix(filepath.Base(path), "report_") || !strings.HasSuffix(path, ".json") {
		t.Errorf("unexpected report filename: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.TotalPlanned != 2 || report.NewTests != 1 {
		t.Errorf("report counts = %d planned, %d new", report.TotalPlanned, report.NewTests)
	}
	if report.Coverage == nil || report.Coverage.CoverageImprovement != 0.5 {
		t.Errorf("coverage = %+v", report.Coverage)
	}
	if report.Scenarios != nil {
		t.Error("scenarios should be omitted without the detailed flag")
	}
}

func TestWriteReportDetailed(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(ReportingConfig{OutputDir: dir, Detailed: true})

	plan := samplePlan(t)
	coverage := validator.ValidateCoverage(plan.TestNames(), nil)

	path, err := r.WriteReport(plan, &coverage)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(report.Scenarios) != 2 {
		t.Errorf("detailed report has %d scenarios, want 2", len(report.Scenarios))
	}
}
