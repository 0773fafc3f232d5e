// Package parser turns API requirements (structured text, prose, or an
// OpenAPI document) into a SystemContext for schema inference.
package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"api-test-planner/internal/llm"
	"api-test-planner/internal/models"
)

var (
	structuredLineRe = regexp.MustCompile(`^([A-Z]+)\s+(/[a-zA-Z0-9/:_-]*)`)
	authScopeRe      = regexp.MustCompile(`requires\s+(\w+_auth)`)
	dependsOnRe      = regexp.MustCompile(`depends on\s+([A-Z]+)\s+(/[a-zA-Z0-9/:_-]*)`)
)

const prosePromptTemplate = `You are an API design expert. Convert the following natural language requirements into structured API endpoints.

Format: METHOD /path (requires auth_type, depends on OTHER_METHOD /other_path)

Examples:
- POST /orders (requires user_auth)
- GET /orders/:id (requires user_auth, depends on POST /orders)
- DELETE /orders/:id (requires user_auth)

Rules:
1. Use RESTful conventions (GET, POST, PUT, DELETE)
2. Use :id for path parameters
3. Include "requires X_auth" if authentication is mentioned
4. Include "depends on Y endpoint" if one endpoint needs another
5. Return ONLY the structured format, one endpoint per line
6. Do NOT include explanations or comments

Requirements:
%s

Structured endpoints:`

// IsStructuredFormat reports whether the text already contains
// structured endpoint declarations ("METHOD /path" lines).
func IsStructuredFormat(text string) bool {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if structuredLineRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// ParseRequirements parses requirements text into a SystemContext.
// Prose input is first converted to structured format through the
// completer; without one, prose input is an error. The bool result
// reports whether LLM conversion was used.
func ParseRequirements(ctx context.Context, text string, completer llm.Completer, model string, temperature float32) (*models.SystemContext, bool, error) {
	usedLLM := false
	if !IsStructuredFormat(text) {
		if completer == nil {
			return nil, false, fmt.Errorf("natural language parsing requires a configured LLM provider; " +
				"alternatively, use structured format: METHOD /path (requires auth)")
		}
		converted, err := proseToStructured(ctx, text, completer, model, temperature)
		if err != nil {
			return nil, false, fmt.Errorf("failed to convert prose requirements: %w", err)
		}
		text = converted
		usedLLM = true
	}

	sysCtx, err := parseStructured(text)
	if err != nil {
		return nil, usedLLM, err
	}
	return sysCtx, usedLLM, nil
}

// proseToStructured converts natural language requirements into the
// structured line format via a chat completion.
func proseToStructured(ctx context.Context, prose string, completer llm.Completer, model string, temperature float32) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an API design expert. Convert natural language requirements to structured REST API endpoints."},
		{Role: llm.RoleUser, Content: fmt.Sprintf(prosePromptTemplate, prose)},
	}
	result, err := completer.Chat(ctx, messages, model, temperature, 1000)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// EndpointName derives the canonical endpoint name from a method and
// path: POST /orders becomes "post__orders".
func EndpointName(method, urlPath string) string {
	name := strings.ToLower(method + "_" + urlPath)
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, ":", "")
}

// parseStructured parses "METHOD /path (requires x_auth, depends on
// METHOD /path)" lines into a validated SystemContext.
func parseStructured(text string) (*models.SystemContext, error) {
	var endpoints []*models.Endpoint
	dependencies := make(map[string][]string)

	// scope → endpoint names, preserving first-mention order
	var scopeOrder []string
	scopeEndpoints := make(map[string][]string)

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		match := structuredLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		method, urlPath := match[1], match[2]
		name := EndpointName(method, urlPath)

		ep, err := models.NewEndpoint(name, method, urlPath)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint declaration %q: %w", line, err)
		}

		if authMatch := authScopeRe.FindStringSubmatch(line); authMatch != nil {
			ep.RequiresAuth = true
			scope := authMatch[1]
			if _, seen := scopeEndpoints[scope]; !seen {
				scopeOrder = append(scopeOrder, scope)
			}
			scopeEndpoints[scope] = append(scopeEndpoints[scope], name)
		}

		for _, dep := range dependsOnRe.FindAllStringSubmatch(line, -1) {
			ep.DependsOn = append(ep.DependsOn, EndpointName(dep[1], dep[2]))
		}

		endpoints = append(endpoints, ep)
		dependencies[name] = ep.DependsOn
	}

	authRules := make([]models.AuthRule, 0, len(scopeOrder))
	for _, scope := range scopeOrder {
		authRules = append(authRules, models.AuthRule{
			Scope:       scope,
			RequiredFor: scopeEndpoints[scope],
		})
	}

	return models.NewSystemContext(endpoints, authRules, dependencies)
}
