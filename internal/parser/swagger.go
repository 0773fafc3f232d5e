package parser

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"api-test-planner/internal/models"

	"github.com/getkin/kin-openapi/openapi3"
)

var pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)

// SwaggerParser builds a SystemContext from a served Swagger/OpenAPI
// specification.
type SwaggerParser struct {
	baseURL string
	client  *http.Client
	doc     *openapi3.T
}

// NewSwaggerParser creates a new instance of SwaggerParser
func NewSwaggerParser(baseURL string) *SwaggerParser {
	return &SwaggerParser{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// ParseSystemContext fetches the OpenAPI documentation and converts its
// operations into planner endpoints.
func (p *SwaggerParser) ParseSystemContext() (*models.SystemContext, error) {
	// Try different Swagger/OpenAPI JSON URLs
	urls := []string{
		fmt.Sprintf("%s/swagger/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/swagger.json", p.baseURL),
		fmt.Sprintf("%s/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/api/swagger.json", p.baseURL),
		fmt.Sprintf("%s/api/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/openapi.json", p.baseURL),
	}

	var lastErr error
	for _, url := range urls {
		p.doc, lastErr = p.fetchOpenAPIDoc(url)
		if lastErr == nil {
			break
		}
	}
	if p.doc == nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI documentation from any known URL, last error: %w", lastErr)
	}

	return ParseDocument(p.doc)
}

// fetchOpenAPIDoc fetches the OpenAPI documentation from the given URL
func (p *SwaggerParser) fetchOpenAPIDoc(url string) (*openapi3.T, error) {
	resp, err := p.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %w", err)
	}
	return doc, nil
}

// ParseDocument converts an already-loaded OpenAPI document into a
// SystemContext. Paths and methods are walked in sorted order so the
// resulting endpoint declaration order is deterministic.
func ParseDocument(doc *openapi3.T) (*models.SystemContext, error) {
	var endpoints []*models.Endpoint

	paths := doc.Paths.Map()
	pathKeys := make([]string, 0, len(paths))
	for path := range paths {
		pathKeys = append(pathKeys, path)
	}
	sort.Strings(pathKeys)

	docSecured := len(doc.Security) > 0

	for _, path := range pathKeys {
		operations := paths[path].Operations()
		methods := make([]string, 0, len(operations))
		for method := range operations {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			operation := operations[method]
			urlPath := pathParamRe.ReplaceAllString(path, ":$1")

			ep, err := models.NewEndpoint(EndpointName(method, urlPath), method, urlPath)
			if err != nil {
				return nil, err
			}
			ep.Description = operation.Summary
			if ep.Description == "" {
				ep.Description = operation.Description
			}
			ep.RequiresAuth = docSecured
			if operation.Security != nil {
				ep.RequiresAuth = len(*operation.Security) > 0
			}

			if operation.RequestBody != nil && operation.RequestBody.Value != nil {
				for _, content := range operation.RequestBody.Value.Content {
					if content.Schema != nil {
						ep.RequestBody = schemaToFields(content.Schema)
						break
					}
				}
			}

			endpoints = append(endpoints, ep)
		}
	}

	return models.NewSystemContext(endpoints, nil, nil)
}

// schemaToFields flattens an object schema's properties into field specs.
func schemaToFields(ref *openapi3.SchemaRef) []models.FieldSpec {
	if ref == nil || ref.Value == nil {
		return nil
	}
	schema := ref.Value

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	propNames := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	fields := make([]models.FieldSpec, 0, len(propNames))
	for _, name := range propNames {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		fields = append(fields, propToField(name, prop.Value, required[name]))
	}
	return fields
}

func propToField(name string, prop *openapi3.Schema, required bool) models.FieldSpec {
	field := models.FieldSpec{
		Name:        name,
		FieldType:   schemaType(prop),
		Format:      prop.Format,
		Required:    required,
		Description: prop.Description,
	}
	if prop.MinLength > 0 {
		minLen := int(prop.MinLength)
		field.MinLength = &minLen
	}
	if prop.MaxLength != nil {
		maxLen := int(*prop.MaxLength)
		field.MaxLength = &maxLen
	}
	if prop.Min != nil {
		minVal := *prop.Min
		field.Minimum = &minVal
	}
	if prop.Max != nil {
		maxVal := *prop.Max
		field.Maximum = &maxVal
	}
	for _, v := range prop.Enum {
		field.Enum = append(field.Enum, fmt.Sprint(v))
	}
	if prop.Example != nil {
		field.Example = fmt.Sprint(prop.Example)
	}
	return field
}

func schemaType(prop *openapi3.Schema) string {
	if prop.Type == nil {
		return "string"
	}
	for _, t := range []string{"string", "integer", "number", "boolean", "array", "object"} {
		if prop.Type.Is(t) {
			return t
		}
	}
	return "string"
}

// BaseURL returns the URL the parser was created with, with a trailing
// slash trimmed.
func (p *SwaggerParser) BaseURL() string {
	return strings.TrimSuffix(p.baseURL, "/")
}
