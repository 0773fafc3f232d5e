package generator

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"api-test-planner/internal/models"
)

// GenerateOpenAPI renders the inferred context plus the planned tests
// as an OpenAPI 3.0 document in YAML. Planned scenarios are attached
// to their operation under the x-planned-tests extension.
func GenerateOpenAPI(plan *models.TestPlan, sysCtx *models.SystemContext) (string, error) {
	_, groups := groupByEndpoint(plan)

	paths := map[string]interface{}{}
	for _, ep := range sysCtx.Endpoints {
		specPath := toSpecPath(ep.URLPath)
		item, _ := paths[specPath].(map[string]interface{})
		if item == nil {
			item = map[string]interface{}{}
			paths[specPath] = item
		}
		item[strings.ToLower(ep.Method)] = buildOperation(ep, groups[ep.Name])
	}

	doc := map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Inferred API",
			"description": plan.Rationale,
			"version":     "1.0.0",
		},
		"paths": paths,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	return string(out), nil
}

func buildOperation(ep *models.Endpoint, scenarios []models.TestScenario) map[string]interface{} {
	op := map[string]interface{}{
		"operationId": ep.Name,
		"responses": map[string]interface{}{
			fmt.Sprintf("%d", ep.ExpectedSuccessCode()): map[string]interface{}{
				"description": "Expected success response",
			},
		},
	}
	if ep.Description != "" {
		op["description"] = ep.Description
	}

	if params := pathParams(ep.URLPath); len(params) > 0 {
		list := make([]interface{}, 0, len(params))
		for _, p := range params {
			list = append(list, map[string]interface{}{
				"name":     p,
				"in":       "path",
				"required": true,
				"schema":   map[string]interface{}{"type": "string"},
			})
		}
		op["parameters"] = list
	}

	if bodyMethod(ep.Method) && len(ep.RequestBody) > 0 {
		op["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": fieldsToSchema(ep.RequestBody),
				},
			},
		}
	}

	if len(ep.ResponseBody) > 0 {
		responses := op["responses"].(map[string]interface{})
		success := responses[fmt.Sprintf("%d", ep.ExpectedSuccessCode())].(map[string]interface{})
		success["content"] = map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": fieldsToSchema(ep.ResponseBody),
			},
		}
	}

	if ep.RequiresAuth {
		op["security"] = []interface{}{map[string]interface{}{"bearerAuth": []interface{}{}}}
	}

	if len(scenarios) > 0 {
		tests := make([]interface{}, 0, len(scenarios))
		for _, s := range scenarios {
			tests = append(tests, map[string]interface{}{
				"name":            s.TestName,
				"type":            s.TestType,
				"expected_status": s.ExpectedStatus,
				"description":     s.Description,
			})
		}
		op["x-planned-tests"] = tests
	}
	return op
}

func fieldsToSchema(fields []models.FieldSpec) map[string]interface{} {
	props := map[string]interface{}{}
	required := make([]string, 0)
	for _, f := range fields {
		prop := map[string]interface{}{"type": f.FieldType}
		if f.Format != "" {
			prop["format"] = f.Format
		}
		if len(f.Enum) > 0 {
			vals := make([]interface{}, 0, len(f.Enum))
			for _, v := range f.Enum {
				vals = append(vals, v)
			}
			prop["enum"] = vals
		}
		if f.MinLength != nil {
			prop["minLength"] = *f.MinLength
		}
		if f.MaxLength != nil {
			prop["maxLength"] = *f.MaxLength
		}
		if f.Minimum != nil {
			prop["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			prop["maximum"] = *f.Maximum
		}
		props[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	sort.Strings(required)
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// toSpecPath converts :id style parameters to {id} style.
func toSpecPath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

func pathParams(path string) []string {
	var params []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") {
			params = append(params, seg[1:])
		}
	}
	return params
}
