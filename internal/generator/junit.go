package generator

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"api-test-planner/internal/models"
)

type junitProperty struct {
	XMLName xml.Name `xml:"property"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:"value,attr"`
}

type junitTestCase struct {
	XMLName    xml.Name        `xml:"testcase"`
	Name       string          `xml:"name,attr"`
	ClassName  string          `xml:"classname,attr"`
	Properties []junitProperty `xml:"properties>property"`
	SystemOut  string          `xml:"system-out,omitempty"`
}

type junitTestSuite struct {
	XMLName xml.Name        `xml:"testsuite"`
	Name    string          `xml:"name,attr"`
	Tests   int             `xml:"tests,attr"`
	Cases   []junitTestCase `xml:"testcase"`
}

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Name    string           `xml:"name,attr"`
	Tests   int              `xml:"tests,attr"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

// negativeTypes are the test types expecting a failure status; their
// test cases carry a system-out block describing the expectation.
var negativeTypes = map[string]bool{
	"no_auth": true, "state_conflict": true, "forbidden_role": true,
	"field_validation": true, "boundary_value": true, "numeric_boundary": true,
	"dependency_failure": true, "invalid_input": true,
}

// GenerateJUnitXML renders the test plan as a CI-compatible JUnit XML
// report, one test suite per endpoint.
func GenerateJUnitXML(plan *models.TestPlan, sysCtx *models.SystemContext) (string, error) {
	lookup := endpointLookup(sysCtx)
	order, groups := groupByEndpoint(plan)

	root := junitTestSuites{
		Name:  "Generated API Tests",
		Tests: len(plan.Scenarios),
	}

	for _, endpointName := range order {
		ep := lookup[endpointName]
		method, path := methodAndPath(ep)
		scenarios := groups[endpointName]

		suite := junitTestSuite{
			Name:  method + " " + path,
			Tests: len(scenarios),
		}

		for _, scenario := range scenarios {
			testCase := junitTestCase{
				Name:      "test_" + scenario.TestName,
				ClassName: "apitests." + endpointName,
				Properties: []junitProperty{
					{Name: "test_type", Value: scenario.TestType},
					{Name: "http_method", Value: method},
					{Name: "endpoint_path", Value: path},
					{Name: "expected_status", Value: fmt.Sprintf("%d", scenario.ExpectedStatus)},
					{Name: "description", Value: scenario.Description},
				},
			}

			if len(scenario.PayloadHint) > 0 {
				if hint, err := json.Marshal(scenario.PayloadHint); err == nil {
					testCase.Properties = append(testCase.Properties,
						junitProperty{Name: "payload_hint", Value: string(hint)})
				}
			}

			if (scenario.TestType == "field_validation" || scenario.TestType == "boundary_value") && ep != nil {
				names := make([]string, len(ep.RequestBody))
				for i, f := range ep.RequestBody {
					names[i] = f.Name
				}
				testCase.Properties = append(testCase.Properties,
					junitProperty{Name: "request_fields", Value: strings.Join(names, ", ")})
			}

			if negativeTypes[scenario.TestType] {
				testCase.SystemOut = fmt.Sprintf("Expected: HTTP %d\nScenario: %s\nType: %s",
					scenario.ExpectedStatus, scenario.Description, scenario.TestType)
			}

			suite.Cases = append(suite.Cases, testCase)
		}

		root.Suites = append(root.Suites, suite)
	}

	data, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit report: %w", err)
	}
	return xml.Header + string(data), nil
}
