package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"api-test-planner/internal/models"

	"github.com/google/uuid"
)

// GeneratePostman renders the test plan as a Postman Collection v2.1
// JSON document, one folder per endpoint.
func GeneratePostman(plan *models.TestPlan, sysCtx *models.SystemContext) (string, error) {
	lookup := endpointLookup(sysCtx)

	collection := map[string]interface{}{
		"info": map[string]interface{}{
			"_postman_id": uuid.New().String(),
			"name":        "Generated API Tests",
			"description": "Auto-generated API test collection\n\n" + plan.Rationale,
			"schema":      "https://schema.getpostman.com/json/collection/v2.1.0/collection.json",
		},
		"variable": []map[string]interface{}{
			{"key": "base_url", "value": "http://localhost:8000", "type": "string"},
			{"key": "auth_token", "value": "Bearer test-token-valid", "type": "string"},
		},
	}

	order, groups := groupByEndpoint(plan)
	items := make([]map[string]interface{}, 0, len(order))
	for _, endpointName := range order {
		ep := lookup[endpointName]
		folder := map[string]interface{}{
			"name": endpointName,
		}
		var requests []map[string]interface{}
		for _, scenario := range groups[endpointName] {
			requests = append(requests, buildRequestItem(scenario, ep))
		}
		folder["item"] = requests
		items = append(items, folder)
	}
	collection["item"] = items

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal collection: %w", err)
	}
	return string(data), nil
}

// buildRequestItem builds a single Postman request item with a test
// script asserting the scenario's expected status.
func buildRequestItem(scenario models.TestScenario, ep *models.Endpoint) map[string]interface{} {
	method, path := methodAndPath(ep)
	callPath := testPath(path, "test-id-123")
	if scenario.TestType == "invalid_input" {
		callPath = testPath(path, "nonexistent-id-999")
	}

	headers := []map[string]interface{}{
		{"key": "Content-Type", "value": "application/json"},
	}
	requiresAuth := ep != nil && ep.RequiresAuth
	if requiresAuth && scenario.TestType != "no_auth" {
		headers = append(headers, map[string]interface{}{
			"key": "Authorization", "value": "{{auth_token}}",
		})
	}

	request := map[string]interface{}{
		"method": method,
		"header": headers,
		"url": map[string]interface{}{
			"raw":  "{{base_url}}" + callPath,
			"host": []string{"{{base_url}}"},
			"path": strings.Split(strings.Trim(callPath, "/"), "/"),
		},
		"description": scenario.Description,
	}

	if bodyMethod(method) {
		payload := scenarioPayload(scenario, ep)
		raw, err := json.MarshalIndent(payload, "", "  ")
		if err == nil {
			request["body"] = map[string]interface{}{
				"mode": "raw",
				"raw":  string(raw),
				"options": map[string]interface{}{
					"raw": map[string]interface{}{"language": "json"},
				},
			}
		}
	}

	testScript := []string{
		fmt.Sprintf("pm.test(%q, function () {", scenario.TestName),
		fmt.Sprintf("    pm.response.to.have.status(%d);", scenario.ExpectedStatus),
		"});",
	}

	return map[string]interface{}{
		"name":    scenario.TestName,
		"request": request,
		"event": []map[string]interface{}{
			{
				"listen": "test",
				"script": map[string]interface{}{
					"type": "text/javascript",
					"exec": testScript,
				},
			},
		},
	}
}
