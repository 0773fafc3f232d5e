package models

import (
	"fmt"
	"strings"
)

// validLanguages lists the code targets renderers can produce.
var validLanguages = map[string]bool{
	"python_pytest": true,
}

// GeneratedTest is one rendered test with its source code.
type GeneratedTest struct {
	TestName   string   `json:"test_name"`
	TestCode   string   `json:"test_code"`
	Language   string   `json:"language"`
	Assertions []string `json:"assertions,omitempty"`
}

// NewGeneratedTest validates the language and that the code is non-empty.
func NewGeneratedTest(testName, testCode, language string, assertions []string) (GeneratedTest, error) {
	if language == "" {
		language = "python_pytest"
	}
	if !validLanguages[language] {
		return GeneratedTest{}, fmt.Errorf("invalid language: %s", language)
	}
	if strings.TrimSpace(testCode) == "" {
		return GeneratedTest{}, fmt.Errorf("test_code cannot be empty")
	}
	return GeneratedTest{
		TestName:   testName,
		TestCode:   testCode,
		Language:   language,
		Assertions: assertions,
	}, nil
}

// TestSuite is a complete set of generated tests.
type TestSuite struct {
	Tests              []GeneratedTest `json:"tests"`
	CoveragePercentage float64         `json:"coverage_percentage"`
}

// NewTestSuite validates the coverage percentage range.
func NewTestSuite(tests []GeneratedTest, coveragePercentage float64) (*TestSuite, error) {
	if coveragePercentage < 0.0 || coveragePercentage > 100.0 {
		return nil, fmt.Errorf("coverage_percentage must be between 0 and 100, got %v", coveragePercentage)
	}
	return &TestSuite{Tests: tests, CoveragePercentage: coveragePercentage}, nil
}
