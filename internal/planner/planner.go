// Package planner expands an annotated system context into a
// deduplicated plan of named test scenarios with expected outcomes.
package planner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"api-test-planner/internal/models"
)

// formatFields are the field formats that get invalid-format scenarios.
var formatFields = map[string]bool{
	"email": true, "phone": true, "uri": true, "url": true, "uuid": true,
}

// PlanTests generates test scenarios for every endpoint in declaration
// order using a fixed rule sequence:
//
//  1. positive            - happy path (expected success code)
//  2. no_auth             - if requires_auth (401)
//  3. dependency_failure  - one per dependency (404)
//  4. invalid_input       - if path has a parameter placeholder (404)
//  5. state_conflict      - per state constraint (constraint error code)
//  6. forbidden_role      - up to 2 roles not granted to the endpoint (403)
//  7. field_validation    - invalid format and missing required field (422)
//  8. boundary_value      - string length violations (422)
//  9. numeric_boundary    - numeric minimum violations (422)
//
// Scenarios whose names are already in existingTests are suppressed at
// generation time. Re-planning identical input yields an identical plan.
func PlanTests(context *models.SystemContext, existingTests []string) (*models.TestPlan, error) {
	existing := make(map[string]bool, len(existingTests))
	for _, name := range existingTests {
		existing[name] = true
	}

	var scenarios []models.TestScenario
	var firstErr error

	add := func(name, endpoint, description, testType string, expectedStatus int, payloadHint map[string]interface{}) {
		if existing[name] {
			return
		}
		scenario, err := models.NewTestScenario(name, endpoint, description, testType, expectedStatus, payloadHint)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		scenarios = append(scenarios, scenario)
	}

	for _, ep := range context.Endpoints {
		base := ep.Name
		method := ep.Method
		path := ep.URLPath

		// 1. Positive test (happy path)
		add(base+"_positive", ep.Name,
			fmt.Sprintf("Verify %s %s returns success with valid data", method, path),
			"positive", ep.ExpectedSuccessCode(), nil)

		// 2. No-auth test
		if ep.RequiresAuth {
			add(base+"_no_auth", ep.Name,
				fmt.Sprintf("Verify %s %s rejects unauthenticated requests", method, path),
				"no_auth", 401, nil)
		}

		// 3. Dependency failure tests: resource from the dependency does
		// not exist because setup was skipped.
		for _, dep := range ep.DependsOn {
			add(base+"_dependency_fail_"+dep, ep.Name,
				fmt.Sprintf("Verify %s returns 404 when dependency '%s' resource does not exist", ep.Name, dep),
				"dependency_failure", 404, nil)
		}

		// 4. Invalid ID test
		if hasPathParam(path) {
			add(base+"_invalid_id", ep.Name,
				fmt.Sprintf("Verify %s %s returns 404 for non-existent resource", method, path),
				"invalid_input", 404, nil)
		}

		// 5. State conflict tests
		for _, constraint := range ep.StateConstraints {
			blocked := constraint.BlockedValues
			if len(constraint.AllowedValues) > 0 {
				// Try the action when NOT in an allowed state.
				conflictState := "completed"
				if len(blocked) > 0 {
					conflictState = blocked[0]
				}
				add(base+"_state_conflict_"+constraint.Field, ep.Name,
					fmt.Sprintf("Verify %s %s returns %d when %s is '%s' (only allowed when %s in %v)",
						method, path, constraint.ErrorCode, constraint.Field, conflictState,
						constraint.Field, constraint.AllowedValues),
					"state_conflict", constraint.ErrorCode,
					map[string]interface{}{constraint.Field: conflictState})
			}
			for _, blockedVal := range blocked {
				add(base+"_state_blocked_"+blockedVal, ep.Name,
					fmt.Sprintf("Verify %s %s returns %d when %s is '%s'",
						method, path, constraint.ErrorCode, constraint.Field, blockedVal),
					"state_conflict", constraint.ErrorCode,
					map[string]interface{}{constraint.Field: blockedVal})
			}
		}

		// 6. Forbidden role tests: roles that exist elsewhere in the
		// system but are not granted to this endpoint.
		if len(ep.Roles) > 0 && ep.RequiresAuth {
			allRoles := make(map[string]bool)
			for _, other := range context.Endpoints {
				for _, role := range other.Roles {
					allRoles[role] = true
				}
			}
			for _, role := range ep.Roles {
				delete(allRoles, role)
			}
			forbidden := make([]string, 0, len(allRoles))
			for role := range allRoles {
				forbidden = append(forbidden, role)
			}
			sort.Strings(forbidden)
			if len(forbidden) > 2 {
				forbidden = forbidden[:2]
			}
			for _, role := range forbidden {
				add(base+"_forbidden_"+role, ep.Name,
					fmt.Sprintf("Verify %s %s returns 403 for '%s' role (requires: %s)",
						method, path, role, strings.Join(ep.Roles, ", ")),
					"forbidden_role", 403, nil)
			}
		}

		// 7. Field validation tests
		count := 0
		for _, field := range ep.RequestBody {
			if !formatFields[field.Format] {
				continue
			}
			add(base+"_invalid_"+field.Name, ep.Name,
				fmt.Sprintf("Verify %s %s returns 422 when '%s' has invalid %s format",
					method, path, field.Name, field.Format),
				"field_validation", 422,
				map[string]interface{}{field.Name: "not-a-valid-" + field.Format})
			count++
			if count == 2 {
				break
			}
		}

		for _, field := range ep.RequestBody {
			if !field.Required {
				continue
			}
			add(base+"_missing_"+field.Name, ep.Name,
				fmt.Sprintf("Verify %s %s returns 422 when required field '%s' is missing",
					method, path, field.Name),
				"field_validation", 422,
				map[string]interface{}{models.OmitFieldKey: field.Name})
			break
		}

		// 8. Boundary value tests (string length)
		count = 0
		for _, field := range ep.RequestBody {
			if field.MinLength == nil && field.MaxLength == nil {
				continue
			}
			if field.MinLength != nil && *field.MinLength > 0 {
				shortLen := *field.MinLength - 1
				if shortLen < 1 {
					shortLen = 1
				}
				add(base+"_short_"+field.Name, ep.Name,
					fmt.Sprintf("Verify %s %s returns 422 when '%s' is shorter than %d characters",
						method, path, field.Name, *field.MinLength),
					"boundary_value", 422,
					map[string]interface{}{field.Name: strings.Repeat("x", shortLen)})
			}
			count++
			if count == 2 {
				break
			}
		}

		// 9. Numeric boundary tests. The deterministic matcher does not
		// populate Minimum/Maximum today; these branches serve
		// externally annotated field specs and tier-2 corrections.
		count = 0
		for _, field := range ep.RequestBody {
			if field.Minimum == nil && field.Maximum == nil {
				continue
			}
			if field.Minimum != nil {
				belowMin := *field.Minimum - 1
				add(base+"_negative_"+field.Name, ep.Name,
					fmt.Sprintf("Verify %s %s returns 422 when '%s' is %s (below minimum %s)",
						method, path, field.Name, formatNumber(belowMin), formatNumber(*field.Minimum)),
					"numeric_boundary", 422,
					map[string]interface{}{field.Name: belowMin})
				if *field.Minimum > 0 {
					add(base+"_zero_"+field.Name, ep.Name,
						fmt.Sprintf("Verify %s %s returns 422 when '%s' is 0 (minimum is %s)",
							method, path, field.Name, formatNumber(*field.Minimum)),
						"numeric_boundary", 422,
						map[string]interface{}{field.Name: 0})
				}
			}
			count++
			if count == 2 {
				break
			}
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return models.NewTestPlan(scenarios, buildRationale(scenarios, len(context.Endpoints), len(existing)))
}

// hasPathParam reports whether the path contains a parameter placeholder
// segment (":id" style).
func hasPathParam(path string) bool {
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if strings.HasPrefix(segment, ":") {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// buildRationale summarizes the plan: totals plus a sorted per-type
// breakdown.
func buildRationale(scenarios []models.TestScenario, endpointCount, existingCount int) string {
	typeCounts := make(map[string]int)
	for _, s := range scenarios {
		typeCounts[s.TestType]++
	}
	types := make([]string, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%d %s", typeCounts[t], t)
	}
	return fmt.Sprintf("Planned %d tests covering %d endpoints. Deduped against %d existing tests. Breakdown: %s.",
		len(scenarios), endpointCount, existingCount, strings.Join(parts, ", "))
}
