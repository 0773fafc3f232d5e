package generator

import (
	"fmt"
	"strings"

	"api-test-planner/internal/models"
)

// GenerateGherkin renders the test plan as a BDD .feature file, one
// Feature block per endpoint with a Scenario per planned test.
func GenerateGherkin(plan *models.TestPlan, sysCtx *models.SystemContext) string {
	lookup := endpointLookup(sysCtx)
	order, groups := groupByEndpoint(plan)

	var b strings.Builder
	b.WriteString("# Auto-generated BDD scenarios\n")
	fmt.Fprintf(&b, "# %s\n\n", plan.Rationale)

	for _, endpointName := range order {
		ep := lookup[endpointName]
		method, path := methodAndPath(ep)

		fmt.Fprintf(&b, "Feature: %s %s\n", method, path)
		if ep != nil && ep.Description != "" {
			fmt.Fprintf(&b, "  %s\n", ep.Description)
		}
		b.WriteString("\n")

		for _, scenario := range groups[endpointName] {
			fmt.Fprintf(&b, "  Scenario: %s\n", scenario.TestName)
			writeGherkinSteps(&b, scenario, method, path, ep)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeGherkinSteps(b *strings.Builder, scenario models.TestScenario, method, path string, ep *models.Endpoint) {
	switch scenario.TestType {
	case "positive":
		b.WriteString("    Given a valid authenticated request\n")
		fmt.Fprintf(b, "    When the client sends %s %s with valid data\n", method, path)
	case "no_auth":
		b.WriteString("    Given a request without credentials\n")
		fmt.Fprintf(b, "    When the client sends %s %s\n", method, path)
	case "dependency_failure":
		b.WriteString("    Given the required setup step was skipped\n")
		fmt.Fprintf(b, "    When the client sends %s %s\n", method, path)
	case "invalid_input":
		b.WriteString("    Given a non-existent resource id\n")
		fmt.Fprintf(b, "    When the client sends %s %s\n", method, testPath(path, "nonexistent-id-999"))
	case "state_conflict":
		b.WriteString("    Given the resource is in a conflicting state\n")
		fmt.Fprintf(b, "    When the client sends %s %s\n", method, path)
	case "forbidden_role":
		roles := ""
		if ep != nil {
			roles = strings.Join(ep.Roles, ", ")
		}
		fmt.Fprintf(b, "    Given an authenticated user without the required role (%s)\n", roles)
		fmt.Fprintf(b, "    When the client sends %s %s\n", method, path)
	default:
		// field_validation, boundary_value, numeric_boundary
		b.WriteString("    Given a payload violating field constraints\n")
		fmt.Fprintf(b, "    When the client sends %s %s\n", method, path)
	}
	fmt.Fprintf(b, "    Then the response status should be %d\n", scenario.ExpectedStatus)
}
