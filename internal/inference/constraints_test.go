package inference

import (
	"reflect"
	"testing"

	"api-test-planner/internal/models"
)

func TestExtractStateConstraints(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Name: "post__orders", Method: "POST", URLPath: "/orders", RequiresAuth: true},
		{Name: "delete__orders_id_cancel", Method: "DELETE", URLPath: "/orders/:id/cancel", RequiresAuth: true},
	}
	text := "Orders can only be cancelled if status is 'pending'. Users cannot cancel if shipped."

	ExtractStateConstraints(endpoints, text)

	cancelEp := endpoints[1]
	if len(cancelEp.StateConstraints) != 2 {
		t.Fatalf("expected 2 constraints on cancel endpoint, got %d", len(cancelEp.StateConstraints))
	}

	allowed := cancelEp.StateConstraints[0]
	if !reflect.DeepEqual(allowed.AllowedValues, []string{"pending"}) {
		t.Errorf("allowed values = %v, want [pending]", allowed.AllowedValues)
	}
	if allowed.Field != "status" || allowed.ErrorCode != 409 {
		t.Errorf("constraint = %+v, want status field with 409", allowed)
	}

	blocked := cancelEp.StateConstraints[1]
	if !reflect.DeepEqual(blocked.BlockedValues, []string{"shipped"}) {
		t.Errorf("blocked values = %v, want [shipped]", blocked.BlockedValues)
	}

	if len(endpoints[0].StateConstraints) != 0 {
		t.Errorf("create endpoint should carry no constraints, got %v", endpoints[0].StateConstraints)
	}
}

func TestExtractStateConstraintsDedup(t *testing.T) {
	ep := &models.Endpoint{Name: "delete__orders_id_cancel", Method: "DELETE", URLPath: "/orders/:id/cancel"}
	text := "cancelled if status is 'pending'. cancelled if status is 'pending'."

	ExtractStateConstraints([]*models.Endpoint{ep}, text)
	if len(ep.StateConstraints) != 1 {
		t.Errorf("expected identical rules to dedup to 1 constraint, got %d", len(ep.StateConstraints))
	}
}

func TestExtractRoles(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Name: "delete__users_id", Method: "DELETE", URLPath: "/users/:id", RequiresAuth: true},
		{Name: "get__users", Method: "GET", URLPath: "/users", RequiresAuth: true},
		{Name: "get__health", Method: "GET", URLPath: "/health"},
	}
	text := "Only admin users can delete accounts. Requires user_auth for listing."

	ExtractRoles(endpoints, text)

	if !reflect.DeepEqual(endpoints[0].Roles, []string{"admin"}) {
		t.Errorf("delete endpoint roles = %v, want [admin]", endpoints[0].Roles)
	}
	// No action ties a role to the list endpoint, so every mentioned
	// role is assigned.
	if !reflect.DeepEqual(endpoints[1].Roles, []string{"admin", "user"}) {
		t.Errorf("list endpoint roles = %v, want [admin user]", endpoints[1].Roles)
	}
	if endpoints[2].Roles != nil {
		t.Errorf("unauthenticated endpoint got roles %v", endpoints[2].Roles)
	}
}

func TestExtractRolesNoKnownRoles(t *testing.T) {
	ep := &models.Endpoint{Name: "get__orders", Method: "GET", URLPath: "/orders", RequiresAuth: true}
	ExtractRoles([]*models.Endpoint{ep}, "The intern can delete anything.")

	if ep.Roles != nil {
		t.Errorf("unknown role token assigned roles %v", ep.Roles)
	}
}
