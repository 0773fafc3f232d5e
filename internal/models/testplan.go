package models

import "fmt"

// OmitFieldKey is a payload hint sentinel: instead of overriding a value,
// the named key is removed from the base payload before sending.
const OmitFieldKey = "_omit_field"

// validTestTypes is the closed set of scenario categories the planner emits.
var validTestTypes = map[string]bool{
	"positive":           true, // happy path, expect success
	"no_auth":            true, // missing auth, expect 401
	"dependency_failure": true, // skip required setup, expect 404
	"invalid_input":      true, // bad ID/params, expect 404
	"state_conflict":     true, // violate state constraint, expect 409
	"forbidden_role":     true, // wrong role, expect 403
	"field_validation":   true, // invalid field format/required, expect 422
	"boundary_value":     true, // exceed min/max length, expect 422
	"numeric_boundary":   true, // violate numeric min/max, expect 422
}

// TestScenario is a single planned test case with its expected outcome.
type TestScenario struct {
	TestName       string                 `json:"test_name"`
	Endpoint       string                 `json:"endpoint"`
	Description    string                 `json:"description"`
	TestType       string                 `json:"test_type"`
	ExpectedStatus int                    `json:"expected_status"`
	PayloadHint    map[string]interface{} `json:"payload_hint,omitempty"`
}

// NewTestScenario creates a scenario, rejecting unknown test types.
func NewTestScenario(testName, endpoint, description, testType string, expectedStatus int, payloadHint map[string]interface{}) (TestScenario, error) {
	if !validTestTypes[testType] {
		return TestScenario{}, fmt.Errorf("invalid test_type: %s", testType)
	}
	return TestScenario{
		TestName:       testName,
		Endpoint:       endpoint,
		Description:    description,
		TestType:       testType,
		ExpectedStatus: expectedStatus,
		PayloadHint:    payloadHint,
	}, nil
}

// TestPlan is an ordered list of scenarios plus a human-readable rationale.
type TestPlan struct {
	Scenarios []TestScenario `json:"scenarios"`
	Rationale string         `json:"rationale"`
}

// NewTestPlan validates that scenario names are pairwise distinct.
func NewTestPlan(scenarios []TestScenario, rationale string) (*TestPlan, error) {
	seen := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		if seen[s.TestName] {
			return nil, fmt.Errorf("duplicate test name in plan: %s", s.TestName)
		}
		seen[s.TestName] = true
	}
	return &TestPlan{Scenarios: scenarios, Rationale: rationale}, nil
}

// TestNames returns scenario names in plan order.
func (p *TestPlan) TestNames() []string {
	names := make([]string, len(p.Scenarios))
	for i, s := range p.Scenarios {
		names[i] = s.TestName
	}
	return names
}
