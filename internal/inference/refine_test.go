package inference

import (
	"context"
	"errors"
	"testing"

	"api-test-planner/internal/llm"
	"api-test-planner/internal/models"
)

// fakeCompleter returns a canned response or error.
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Chat(ctx context.Context, messages []llm.Message, model string, temperature float32, maxTokens int) (string, error) {
	f.calls++
	return f.response, f.err
}

func orderEndpoint() *models.Endpoint {
	return &models.Endpoint{
		Name: "post__orders", Method: "POST", URLPath: "/orders",
		RequestBody: []models.FieldSpec{
			{Name: "product_id", FieldType: "string", Format: "uuid", Required: true},
			{Name: "quantity", FieldType: "integer", Required: true},
		},
	}
}

func TestTryRefinementAppliesCorrections(t *testing.T) {
	ep := orderEndpoint()
	completer := &fakeCompleter{response: `{
		"corrections": [{
			"endpoint": "POST /orders",
			"add_fields": [{"name": "coupon_code", "field_type": "string"}],
			"remove_fields": ["quantity"],
			"state_constraints": [{"allowed_values": ["pending"], "description": "rule"}]
		}]
	}`}

	tryRefinement(context.Background(), []*models.Endpoint{ep}, "some requirements", Options{Completer: completer})

	if hasFieldName(ep.RequestBody, "quantity") {
		t.Error("quantity should have been removed")
	}
	coupon := -1
	for i, f := range ep.RequestBody {
		if f.Name == "coupon_code" {
			coupon = i
		}
	}
	if coupon == -1 {
		t.Fatal("coupon_code was not added")
	}
	// Omitted "required" defaults to true.
	if !ep.RequestBody[coupon].Required {
		t.Error("added field should default to required")
	}

	if len(ep.StateConstraints) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(ep.StateConstraints))
	}
	c := ep.StateConstraints[0]
	if c.Field != "status" || c.ErrorCode != 409 {
		t.Errorf("constraint defaults not applied: %+v", c)
	}
}

func TestTryRefinementStripsCodeFences(t *testing.T) {
	ep := orderEndpoint()
	completer := &fakeCompleter{response: "```json\n" + `{"corrections": [{"endpoint": "POST /orders", "remove_fields": ["quantity"]}]}` + "\n```"}

	tryRefinement(context.Background(), []*models.Endpoint{ep}, "reqs", Options{Completer: completer})

	if hasFieldName(ep.RequestBody, "quantity") {
		t.Error("fenced corrections were not applied")
	}
}

func TestTryRefinementBestEffort(t *testing.T) {
	tests := []struct {
		name      string
		completer llm.Completer
		text      string
		wantCalls int
	}{
		{name: "nil completer is a no-op", completer: nil, text: "reqs"},
		{name: "empty text is a no-op", completer: &fakeCompleter{}, text: ""},
		{name: "transport error leaves endpoints untouched", completer: &fakeCompleter{err: errors.New("boom")}, text: "reqs", wantCalls: 1},
		{name: "malformed JSON leaves endpoints untouched", completer: &fakeCompleter{response: "not json"}, text: "reqs", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := orderEndpoint()
			tryRefinement(context.Background(), []*models.Endpoint{ep}, tt.text, Options{Completer: tt.completer})

			if len(ep.RequestBody) != 2 {
				t.Errorf("request body changed: %v", fieldNames(ep.RequestBody))
			}
			if fake, ok := tt.completer.(*fakeCompleter); ok && fake.calls != tt.wantCalls {
				t.Errorf("completer calls = %d, want %d", fake.calls, tt.wantCalls)
			}
		})
	}
}

func TestTryRefinementIgnoresUnknownEndpoint(t *testing.T) {
	ep := orderEndpoint()
	completer := &fakeCompleter{response: `{"corrections": [{"endpoint": "POST /unknown", "remove_fields": ["quantity"]}]}`}

	tryRefinement(context.Background(), []*models.Endpoint{ep}, "reqs", Options{Completer: completer})

	if !hasFieldName(ep.RequestBody, "quantity") {
		t.Error("correction for unknown endpoint was applied")
	}
}
