package models

import (
	"fmt"
	"strings"
)

// validMethods is the set of HTTP methods an endpoint may declare.
var validMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// FieldSpec describes a single request or response body field.
type FieldSpec struct {
	Name        string   `json:"name"`
	FieldType   string   `json:"field_type"` // string|integer|number|boolean|array|object
	Format      string   `json:"format,omitempty"`
	Required    bool     `json:"required"`
	Example     string   `json:"example,omitempty"`
	MinLength   *int     `json:"min_length,omitempty"`
	MaxLength   *int     `json:"max_length,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ExampleValue produces a concrete example value for the field.
// Priority: explicit example, first enum value, format-based canonical
// value, type-based canonical value, then a "test_<name>" fallback.
func (f FieldSpec) ExampleValue() interface{} {
	if f.Example != "" {
		return f.Example
	}
	if len(f.Enum) > 0 {
		return f.Enum[0]
	}
	switch f.Format {
	case "email":
		return "user@example.com"
	case "phone":
		return "+1-555-0199"
	case "uri", "url":
		return "https://example.com"
	case "uuid":
		return "550e8400-e29b-41d4-a716-446655440000"
	case "date-time":
		return "2025-06-15T10:30:00Z"
	case "date":
		return "2025-06-15"
	case "password":
		return "SecureP@ss123"
	}
	switch f.FieldType {
	case "integer":
		return 1
	case "number":
		return 9.99
	case "boolean":
		return true
	case "array":
		return []interface{}{}
	case "object":
		return map[string]interface{}{}
	}
	return "test_" + f.Name
}

// StateConstraint is a business rule restricting an operation to certain
// values of a status-like field.
type StateConstraint struct {
	Field         string   `json:"field"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	BlockedValues []string `json:"blocked_values,omitempty"`
	Description   string   `json:"description,omitempty"`
	ErrorCode     int      `json:"error_code"`
}

// Equal reports whether two constraints carry the same values. Used to
// dedup constraints appended to an endpoint.
func (c StateConstraint) Equal(o StateConstraint) bool {
	return c.Field == o.Field &&
		stringSlicesEqual(c.AllowedValues, o.AllowedValues) &&
		stringSlicesEqual(c.BlockedValues, o.BlockedValues) &&
		c.Description == o.Description &&
		c.ErrorCode == o.ErrorCode
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Endpoint represents a single API operation plus its inferred metadata.
// The annotation fields (RequestBody, ResponseBody, StateConstraints,
// Roles) start empty and are filled by schema inference.
type Endpoint struct {
	Name         string   `json:"name"`
	Method       string   `json:"method"`
	URLPath      string   `json:"url_path"`
	RequiresAuth bool     `json:"requires_auth"`
	DependsOn    []string `json:"depends_on,omitempty"`

	RequestBody      []FieldSpec       `json:"request_body,omitempty"`
	ResponseBody     []FieldSpec       `json:"response_body,omitempty"`
	StateConstraints []StateConstraint `json:"state_constraints,omitempty"`
	Roles            []string          `json:"roles,omitempty"`
	Description      string            `json:"description,omitempty"`

	// SuccessCode overrides the derived success status when non-zero.
	SuccessCode int `json:"success_code,omitempty"`
}

// NewEndpoint creates an endpoint with a normalized, validated method.
func NewEndpoint(name, method, urlPath string) (*Endpoint, error) {
	ep := &Endpoint{
		Name:    name,
		Method:  strings.ToUpper(method),
		URLPath: urlPath,
	}
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	return ep, nil
}

// Validate checks the endpoint's structural invariants.
func (e *Endpoint) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("endpoint name cannot be empty")
	}
	if !validMethods[e.Method] {
		return fmt.Errorf("invalid HTTP method: %s", e.Method)
	}
	return nil
}

// ExpectedSuccessCode returns the status code a positive test expects:
// 201 for POST, 204 for DELETE, 200 otherwise, unless overridden.
func (e *Endpoint) ExpectedSuccessCode() int {
	if e.SuccessCode != 0 {
		return e.SuccessCode
	}
	switch e.Method {
	case "POST":
		return 201
	case "DELETE":
		return 204
	default:
		return 200
	}
}

// AddStateConstraint appends a constraint unless an equal one is present.
func (e *Endpoint) AddStateConstraint(c StateConstraint) {
	for _, existing := range e.StateConstraints {
		if existing.Equal(c) {
			return
		}
	}
	e.StateConstraints = append(e.StateConstraints, c)
}

// AuthRule groups endpoints under an authentication scope.
type AuthRule struct {
	Scope       string   `json:"scope"`
	RequiredFor []string `json:"required_for,omitempty"`
}

// SystemContext is the complete parsed system: endpoints, auth rules and
// the dependency graph between endpoints.
type SystemContext struct {
	Endpoints    []*Endpoint         `json:"endpoints"`
	AuthRules    []AuthRule          `json:"auth_rules,omitempty"`
	Dependencies map[string][]string `json:"dependencies,omitempty"`
}

// NewSystemContext validates endpoint name uniqueness and that every
// dependency reference names an existing endpoint.
func NewSystemContext(endpoints []*Endpoint, authRules []AuthRule, dependencies map[string][]string) (*SystemContext, error) {
	names := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		if err := ep.Validate(); err != nil {
			return nil, err
		}
		if names[ep.Name] {
			return nil, fmt.Errorf("duplicate endpoint name: %s", ep.Name)
		}
		names[ep.Name] = true
	}
	for _, ep := range endpoints {
		for _, dep := range ep.DependsOn {
			if !names[dep] {
				return nil, fmt.Errorf("dependency '%s' references non-existent endpoint", dep)
			}
		}
	}
	for _, deps := range dependencies {
		for _, dep := range deps {
			if !names[dep] {
				return nil, fmt.Errorf("dependency '%s' references non-existent endpoint", dep)
			}
		}
	}
	return &SystemContext{
		Endpoints:    endpoints,
		AuthRules:    authRules,
		Dependencies: dependencies,
	}, nil
}

// Endpoint returns the endpoint with the given name, or nil.
func (c *SystemContext) Endpoint(name string) *Endpoint {
	for _, ep := range c.Endpoints {
		if ep.Name == name {
			return ep
		}
	}
	return nil
}
