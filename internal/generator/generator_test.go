package generator

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"api-test-planner/internal/models"
)

func samplePlanAndContext(t *testing.T) (*models.TestPlan, *models.SystemContext) {
	t.Helper()

	create := &models.Endpoint{
		Name: "post__orders", Method: "POST", URLPath: "/orders", RequiresAuth: true,
		RequestBody: []models.FieldSpec{
			{Name: "product_id", FieldType: "string", Format: "uuid", Required: true},
			{Name: "quantity", FieldType: "integer", Required: true},
		},
	}
	read := &models.Endpoint{
		Name: "get__orders_id", Method: "GET", URLPath: "/orders/:id", RequiresAuth: true,
		DependsOn: []string{"post__orders"},
	}
	sysCtx, err := models.NewSystemContext([]*models.Endpoint{create, read}, nil, nil)
	if err != nil {
		t.Fatalf("NewSystemContext() error = %v", err)
	}

	plan, err := models.NewTestPlan([]models.TestScenario{
		{TestName: "post__orders_positive", Endpoint: "post__orders", Description: "Create succeeds", TestType: "positive", ExpectedStatus: 201},
		{TestName: "post__orders_no_auth", Endpoint: "post__orders", Description: "Create without auth", TestType: "no_auth", ExpectedStatus: 401},
		{TestName: "post__orders_missing_product_id", Endpoint: "post__orders", Description: "Required field left out", TestType: "field_validation", ExpectedStatus: 422,
			PayloadHint: map[string]interface{}{models.OmitFieldKey: "product_id"}},
		{TestName: "get__orders_id_invalid_id", Endpoint: "get__orders_id", Description: "Unknown id", TestType: "invalid_input", ExpectedStatus: 404},
	}, "Planned 4 tests covering 2 endpoints.")
	if err != nil {
		t.Fatalf("NewTestPlan() error = %v", err)
	}
	return plan, sysCtx
}

func TestGeneratePytest(t *testing.T) {
	plan, sysCtx := samplePlanAndContext(t)
	code := GeneratePytest(plan, sysCtx)

	for _, want := range []string{
		"def test_post__orders_positive(client):",
		"assert response.status_code == 201",
		"def test_post__orders_no_auth(client):",
		"headers={}",
		`client.get("/orders/nonexistent-id-999"`,
		"# Total tests: 4",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("pytest output missing %q", want)
		}
	}

	// Omitted field must not appear in the missing-field payload.
	start := strings.Index(code, "def test_post__orders_missing_product_id")
	end := strings.Index(code[start:], "assert")
	body := code[start : start+end]
	if strings.Contains(body, "product_id") {
		t.Error("omitted field still present in payload")
	}
	if !strings.Contains(body, "quantity") {
		t.Error("remaining field missing from payload")
	}
}

func TestBuildPytestSuite(t *testing.T) {
	plan, sysCtx := samplePlanAndContext(t)
	suite, err := BuildPytestSuite(plan, sysCtx, 80.0)
	if err != nil {
		t.Fatalf("BuildPytestSuite() error = %v", err)
	}

	if len(suite.Tests) != 4 {
		t.Fatalf("suite has %d tests, want 4", len(suite.Tests))
	}
	if suite.CoveragePercentage != 80.0 {
		t.Errorf("coverage = %v, want 80", suite.CoveragePercentage)
	}
	if suite.Tests[0].Language != "python_pytest" {
		t.Errorf("language = %s", suite.Tests[0].Language)
	}
	if len(suite.Tests[0].Assertions) != 1 || !strings.Contains(suite.Tests[0].Assertions[0], "201") {
		t.Errorf("assertions = %v", suite.Tests[0].Assertions)
	}
}

func TestGeneratePostman(t *testing.T) {
	plan, sysCtx := samplePlanAndContext(t)
	out, err := GeneratePostman(plan, sysCtx)
	if err != nil {
		t.Fatalf("GeneratePostman() error = %v", err)
	}

	var collection map[string]interface{}
	if err := json.Unmarshal([]byte(out), &collection); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	items, ok := collection["item"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("collection folders = %v, want 2", collection["item"])
	}

	if !strings.Contains(out, "pm.response.to.have.status(201)") {
		t.Error("missing status assertion script")
	}
	if !strings.Contains(out, "{{auth_token}}") {
		t.Error("missing auth header variable")
	}
}

func TestGenerateJUnitXML(t *testing.T) {
	plan, sysCtx := samplePlanAndContext(t)
	out, err := GenerateJUnitXML(plan, sysCtx)
	if err != nil {
		t.Fatalf("GenerateJUnitXML() error = %v", err)
	}

	var root junitTestSuites
	if err := xml.Unmarshal([]byte(out), &root); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}

	if root.Tests != 4 || len(root.Suites) != 2 {
		t.Fatalf("root = %d tests in %d suites, want 4 in 2", root.Tests, len(root.Suites))
	}
	if root.Suites[0].Name != "POST /orders" {
		t.Errorf("suite name = %s", root.Suites[0].Name)
	}

	first := root.Suites[0].Cases[0]
	if first.Name != "test_post__orders_positive" {
		t.Errorf("case name = %s", first.Name)
	}
	props := make(map[string]string)
	for _, p := range first.Properties {
		props[p.Name] = p.Value
	}
	if props["expected_status"] != "201" || props["test_type"] != "positive" {
		t.Errorf("properties = %v", props)
	}
	if first.SystemOut != "" {
		t.Error("positive test should not carry a system-out block")
	}
	if root.Suites[0].Cases[1].SystemOut == "" {
		t.Error("negative test missing system-out block")
	}
}

func TestGenerateGherkin(t *testing.T) {
	plan, sysCtx := samplePlanAndContext(t)
	out := GenerateGherkin(plan, sysCtx)

	for _, want := range []string{
		"Feature: POST /orders",
		"Scenario: post__orders_positive",
		"Then the response status should be 201",
		"Given a request without credentials",
		"When the client sends GET /orders/nonexistent-id-999",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("gherkin output missing %q", want)
		}
	}
}

func TestGenerateOpenAPI(t *testing.T) {
	plan, sysCtx := samplePlanAndContext(t)
	out, err := GenerateOpenAPI(plan, sysCtx)
	if err != nil {
		t.Fatalf("GenerateOpenAPI() error = %v", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("openapi version = %v", doc["openapi"])
	}

	paths := doc["paths"].(map[string]interface{})
	if _, ok := paths["/orders/{id}"]; !ok {
		t.Errorf("path parameter not converted to spec style: %v", paths)
	}

	orders := paths["/orders"].(map[string]interface{})
	post := orders["post"].(map[string]interface{})
	if _, ok := post["requestBody"]; !ok {
		t.Error("POST operation missing requestBody")
	}
	tests, ok := post["x-planned-tests"].([]interface{})
	if !ok || len(tests) != 3 {
		t.Errorf("x-planned-tests = %v, want 3 entries", post["x-planned-tests"])
	}
}

func TestScenarioPayloadOmit(t *testing.T) {
	ep := &models.Endpoint{
		Name: "post__orders", Method: "POST", URLPath: "/orders",
		RequestBody: []models.FieldSpec{
			{Name: "product_id", FieldType: "string", Format: "uuid", Required: true},
			{Name: "quantity", FieldType: "integer", Required: true},
		},
	}
	scenario := models.TestScenario{
		TestName: "t", Endpoint: "post__orders", TestType: "field_validation", ExpectedStatus: 422,
		PayloadHint: map[string]interface{}{models.OmitFieldKey: "product_id", "quantity": 0},
	}

	payload := scenarioPayload(scenario, ep)
	if _, ok := payload["product_id"]; ok {
		t.Error("omit sentinel failed to drop the field")
	}
	if payload["quantity"] != 0 {
		t.Errorf("hint override = %v, want 0", payload["quantity"])
	}
}

func TestTestPath(t *testing.T) {
	if got := testPath("/orders/:id/items/:itemId", "x"); got != "/orders/x/items/x" {
		t.Errorf("testPath() = %s", got)
	}
	if got := testPath("/orders", "x"); got != "/orders" {
		t.Errorf("testPath() on plain path = %s", got)
	}
}
