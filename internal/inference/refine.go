package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"api-test-planner/internal/llm"
	"api-test-planner/internal/models"
)

const refinePromptTemplate = `Review these API endpoints and their inferred request fields. Based on the original requirements, suggest corrections.

Original requirements:
%s

Current inference:
%s

Return a JSON object with corrections. Only include endpoints that need changes.
Format:
{
  "corrections": [
    {
      "endpoint": "POST /path",
      "add_fields": [{"name": "field_name", "field_type": "string", "format": "email", "required": true}],
      "remove_fields": ["wrong_field"],
      "state_constraints": [{"field": "status", "allowed_values": ["pending"], "description": "rule"}]
    }
  ]
}

If no corrections needed, return: {"corrections": []}
Only return valid JSON, no explanations.`

// fieldPatch mirrors FieldSpec for correction payloads; required
// defaults to true when the model omits it.
type fieldPatch struct {
	Name        string   `json:"name"`
	FieldType   string   `json:"field_type"`
	Format      string   `json:"format"`
	Required    *bool    `json:"required"`
	Example     string   `json:"example"`
	MinLength   *int     `json:"min_length"`
	MaxLength   *int     `json:"max_length"`
	Minimum     *float64 `json:"minimum"`
	Maximum     *float64 `json:"maximum"`
	Enum        []string `json:"enum"`
	Description string   `json:"description"`
}

type constraintPatch struct {
	Field         string   `json:"field"`
	AllowedValues []string `json:"allowed_values"`
	BlockedValues []string `json:"blocked_values"`
	Description   string   `json:"description"`
	ErrorCode     int      `json:"error_code"`
}

type correction struct {
	Endpoint         string            `json:"endpoint"`
	AddFields        []fieldPatch      `json:"add_fields"`
	RemoveFields     []string          `json:"remove_fields"`
	StateConstraints []constraintPatch `json:"state_constraints"`
}

// tryRefinement runs the tier-2 LLM correction pass. It is best-effort:
// timeouts, transport errors, malformed JSON and an absent completer all
// collapse to a no-op, leaving the tier-1 result untouched.
func tryRefinement(ctx context.Context, endpoints []*models.Endpoint, requirementsText string, opts Options) {
	if requirementsText == "" || opts.Completer == nil {
		return
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	if limit := llm.CapabilityFor(opts.Model).MaxTokens; maxTokens > limit {
		maxTokens = limit
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = 0.2
	}

	var summary []string
	for _, ep := range endpoints {
		names := make([]string, len(ep.RequestBody))
		for i, f := range ep.RequestBody {
			names[i] = f.Name
		}
		summary = append(summary, fmt.Sprintf("  %s %s: request fields=[%s]",
			ep.Method, ep.URLPath, strings.Join(names, ", ")))
	}
	prompt := fmt.Sprintf(refinePromptTemplate, requirementsText, strings.Join(summary, "\n"))

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an API schema expert. Return only valid JSON."},
		{Role: llm.RoleUser, Content: prompt},
	}

	result, err := opts.Completer.Chat(ctx, messages, opts.Model, temperature, maxTokens)
	if err != nil {
		if opts.Log != nil {
			opts.Log.LogLLMInteraction("SchemaRefinement", len(endpoints), nil, err)
		}
		return
	}

	var parsed struct {
		Corrections []correction `json:"corrections"`
	}
	if err := json.Unmarshal([]byte(stripFences(result)), &parsed); err != nil {
		if opts.Log != nil {
			opts.Log.LogLLMInteraction("SchemaRefinement", len(endpoints), nil, err)
		}
		return
	}

	applyCorrections(endpoints, parsed.Corrections)
	if opts.Log != nil {
		opts.Log.LogLLMInteraction("SchemaRefinement", len(endpoints), fmt.Sprintf("%d corrections applied", len(parsed.Corrections)), nil)
	}
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// applyCorrections applies add/remove/constraint corrections to the
// endpoints they target ("METHOD /path").
func applyCorrections(endpoints []*models.Endpoint, corrections []correction) {
	for _, corr := range corrections {
		parts := strings.SplitN(corr.Endpoint, " ", 2)
		if len(parts) != 2 {
			continue
		}
		method, path := strings.ToUpper(parts[0]), parts[1]

		for _, ep := range endpoints {
			if ep.Method != method || ep.URLPath != path {
				continue
			}

			if len(corr.RemoveFields) > 0 {
				remove := make(map[string]bool, len(corr.RemoveFields))
				for _, name := range corr.RemoveFields {
					remove[name] = true
				}
				kept := ep.RequestBody[:0]
				for _, f := range ep.RequestBody {
					if !remove[f.Name] {
						kept = append(kept, f)
					}
				}
				ep.RequestBody = kept
			}

			for _, patch := range corr.AddFields {
				if hasField(ep.RequestBody, patch.Name) {
					continue
				}
				required := true
				if patch.Required != nil {
					required = *patch.Required
				}
				ep.RequestBody = append(ep.RequestBody, models.FieldSpec{
					Name:        patch.Name,
					FieldType:   patch.FieldType,
					Format:      patch.Format,
					Required:    required,
					Example:     patch.Example,
					MinLength:   patch.MinLength,
					MaxLength:   patch.MaxLength,
					Minimum:     patch.Minimum,
					Maximum:     patch.Maximum,
					Enum:        patch.Enum,
					Description: patch.Description,
				})
			}

			for _, patch := range corr.StateConstraints {
				field := patch.Field
				if field == "" {
					field = "status"
				}
				errorCode := patch.ErrorCode
				if errorCode == 0 {
					errorCode = 409
				}
				ep.AddStateConstraint(models.StateConstraint{
					Field:         field,
					AllowedValues: patch.AllowedValues,
					BlockedValues: patch.BlockedValues,
					Description:   patch.Description,
					ErrorCode:     errorCode,
				})
			}
			break
		}
	}
}

func hasField(fields []models.FieldSpec, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
