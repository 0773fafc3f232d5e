// Package inference infers request/response schemas and business rules
// for endpoints using two tiers: deterministic domain keyword matching
// (always runs, no API key needed) and optional LLM-based refinement.
package inference

import (
	"context"
	"strings"
	"time"
	"unicode"

	"api-test-planner/internal/llm"
	"api-test-planner/internal/logger"
	"api-test-planner/internal/models"
)

// Options configures the optional tier-2 refinement pass. A nil Completer
// disables it; everything else has working defaults.
type Options struct {
	Completer   llm.Completer
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Log         *logger.Logger
}

// InferSchemas infers and populates request/response schemas, state
// constraints and role restrictions on the endpoints in place.
//
// Tier 1 (deterministic) always runs and only fills fields that are
// still empty. Tier 2 (LLM refinement) is best-effort: any failure is
// logged and discarded, never returned to the caller.
func InferSchemas(ctx context.Context, endpoints []*models.Endpoint, requirementsText string, opts Options) {
	for _, ep := range endpoints {
		// GET/HEAD/OPTIONS carry no request body, but still get a response.
		if ep.Method == "GET" || ep.Method == "HEAD" || ep.Method == "OPTIONS" {
			if len(ep.ResponseBody) == 0 {
				ep.ResponseBody = inferResponseFields(ep)
			}
			continue
		}

		if len(ep.RequestBody) == 0 {
			ep.RequestBody = InferRequestFields(ep)
		}
		if len(ep.ResponseBody) == 0 {
			ep.ResponseBody = inferResponseFields(ep)
		}
	}

	if requirementsText != "" {
		ExtractStateConstraints(endpoints, requirementsText)
		ExtractRoles(endpoints, requirementsText)
	}

	tryRefinement(ctx, endpoints, requirementsText, opts)
}

// InferRequestFields matches the endpoint path against the domain rule
// table, first match wins. Falls back to a generic resource-aware
// two-field template.
func InferRequestFields(ep *models.Endpoint) []models.FieldSpec {
	pathStr := normalizePath(ep.URLPath)

	for _, rule := range domainRules {
		if rule.methods != nil && !containsString(rule.methods, ep.Method) {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(pathStr, kw) {
				return copyFields(rule.fields)
			}
		}
	}

	return genericRequestFields(ep)
}

func normalizePath(urlPath string) string {
	parts := strings.Split(strings.Trim(strings.ToLower(urlPath), "/"), "/")
	return strings.Join(parts, "/")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// copyFields clones a field template so refinement never mutates the
// shared rule table.
func copyFields(fields []models.FieldSpec) []models.FieldSpec {
	out := make([]models.FieldSpec, len(fields))
	copy(out, fields)
	return out
}

// inferResponseFields synthesizes the typical REST echo-back response:
// an id, the request fields, and two timestamps.
func inferResponseFields(ep *models.Endpoint) []models.FieldSpec {
	fields := []models.FieldSpec{
		{Name: "id", FieldType: "string", Format: "uuid", Required: true,
			Example: "550e8400-e29b-41d4-a716-446655440000"},
	}
	fields = append(fields, ep.RequestBody...)
	fields = append(fields,
		models.FieldSpec{Name: "created_at", FieldType: "string", Format: "date-time",
			Required: false, Example: "2025-06-15T10:30:00Z"},
		models.FieldSpec{Name: "updated_at", FieldType: "string", Format: "date-time",
			Required: false, Example: "2025-06-15T10:30:00Z"},
	)
	return fields
}

// genericRequestFields generates resource-aware fallback fields.
func genericRequestFields(ep *models.Endpoint) []models.FieldSpec {
	resource := ExtractResource(ep.URLPath)
	return []models.FieldSpec{
		{Name: "name", FieldType: "string", Required: true,
			Example: "Test " + titleCase(resource)},
		{Name: "description", FieldType: "string", Required: false,
			Example: "Description for " + resource},
	}
}

// ExtractResource extracts the singular resource name from a URL path:
// /orders/:id becomes "order".
func ExtractResource(urlPath string) string {
	parts := strings.Split(strings.Trim(urlPath, "/"), "/")
	resource := "resource"
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, ":") || strings.HasPrefix(p, "{") {
			continue
		}
		resource = p
		break
	}
	return Singularize(resource)
}

// Singularize strips a trailing "ies" (→"y") or "s" from a resource
// name. Idempotent on already-singular nouns.
func Singularize(resource string) string {
	if strings.HasSuffix(resource, "ies") {
		return resource[:len(resource)-3] + "y"
	}
	if strings.HasSuffix(resource, "s") && len(resource) > 1 {
		return resource[:len(resource)-1]
	}
	return resource
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FieldsToPayload converts field specs into a realistic example payload.
// Metadata-only timestamp fields are skipped.
func FieldsToPayload(fields []models.FieldSpec) map[string]interface{} {
	payload := make(map[string]interface{})
	for _, f := range fields {
		if !f.Required && (f.Name == "created_at" || f.Name == "updated_at") {
			continue
		}
		payload[f.Name] = f.ExampleValue()
	}
	return payload
}
