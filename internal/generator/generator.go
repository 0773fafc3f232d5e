// Package generator renders a TestPlan into concrete artifacts: pytest
// code, a Postman collection, JUnit XML, a Gherkin feature file and an
// OpenAPI specification.
package generator

import (
	"regexp"
	"strings"

	"api-test-planner/internal/inference"
	"api-test-planner/internal/models"
)

var pathParamSegmentRe = regexp.MustCompile(`:[A-Za-z0-9_]+`)

// endpointLookup indexes a context's endpoints by name; a nil context
// yields an empty lookup, every renderer then falls back to defaults.
func endpointLookup(sysCtx *models.SystemContext) map[string]*models.Endpoint {
	lookup := make(map[string]*models.Endpoint)
	if sysCtx == nil {
		return lookup
	}
	for _, ep := range sysCtx.Endpoints {
		lookup[ep.Name] = ep
	}
	return lookup
}

// groupByEndpoint groups scenarios by endpoint name, preserving both
// group and scenario order.
func groupByEndpoint(plan *models.TestPlan) ([]string, map[string][]models.TestScenario) {
	var order []string
	groups := make(map[string][]models.TestScenario)
	for _, scenario := range plan.Scenarios {
		if _, seen := groups[scenario.Endpoint]; !seen {
			order = append(order, scenario.Endpoint)
		}
		groups[scenario.Endpoint] = append(groups[scenario.Endpoint], scenario)
	}
	return order, groups
}

// testPath substitutes every path parameter with a concrete test id.
func testPath(urlPath, value string) string {
	return pathParamSegmentRe.ReplaceAllString(urlPath, value)
}

// scenarioPayload builds the request payload for a scenario: the
// endpoint's inferred example payload with the scenario's hints merged
// on top. The omit sentinel deletes a key instead of overriding it.
func scenarioPayload(scenario models.TestScenario, ep *models.Endpoint) map[string]interface{} {
	payload := make(map[string]interface{})
	if ep != nil {
		payload = inference.FieldsToPayload(ep.RequestBody)
	}
	for key, value := range scenario.PayloadHint {
		if key == models.OmitFieldKey {
			if name, ok := value.(string); ok {
				delete(payload, name)
			}
			continue
		}
		payload[key] = value
	}
	return payload
}

// methodAndPath resolves an endpoint's method/path with GET / defaults
// for scenarios whose endpoint is missing from the context.
func methodAndPath(ep *models.Endpoint) (string, string) {
	if ep == nil {
		return "GET", "/"
	}
	return ep.Method, ep.URLPath
}

// bodyMethod reports whether the method carries a request body.
func bodyMethod(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

func lowerMethod(method string) string {
	return strings.ToLower(method)
}
