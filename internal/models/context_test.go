package models

import (
	"reflect"
	"testing"
)

func TestNewEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		epName   string
		method   string
		urlPath  string
		wantErr  bool
		wantMeth string
	}{
		{
			name:     "valid POST",
			epName:   "post__orders",
			method:   "POST",
			urlPath:  "/orders",
			wantMeth: "POST",
		},
		{
			name:     "lowercase method is normalized",
			epName:   "get__orders",
			method:   "get",
			urlPath:  "/orders",
			wantMeth: "GET",
		},
		{
			name:    "invalid method",
			epName:  "bad",
			method:  "FETCH",
			urlPath: "/orders",
			wantErr: true,
		},
		{
			name:    "empty name",
			epName:  "",
			method:  "GET",
			urlPath: "/orders",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := NewEndpoint(tt.epName, tt.method, tt.urlPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEndpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && ep.Method != tt.wantMeth {
				t.Errorf("NewEndpoint() method = %s, want %s", ep.Method, tt.wantMeth)
			}
		})
	}
}

func TestExpectedSuccessCode(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		override int
		want     int
	}{
		{name: "POST creates", method: "POST", want: 201},
		{name: "DELETE no content", method: "DELETE", want: 204},
		{name: "GET ok", method: "GET", want: 200},
		{name: "PUT ok", method: "PUT", want: 200},
		{name: "override wins", method: "POST", override: 200, want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := &Endpoint{Name: "ep", Method: tt.method, URLPath: "/x", SuccessCode: tt.override}
			if got := ep.ExpectedSuccessCode(); got != tt.want {
				t.Errorf("ExpectedSuccessCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFieldSpecExampleValue(t *testing.T) {
	minLen := 8
	tests := []struct {
		name  string
		field FieldSpec
		want  interface{}
	}{
		{
			name:  "explicit example wins",
			field: FieldSpec{Name: "email", FieldType: "string", Format: "email", Example: "me@test.io"},
			want:  "me@test.io",
		},
		{
			name:  "enum before format",
			field: FieldSpec{Name: "currency", FieldType: "string", Format: "email", Enum: []string{"USD", "EUR"}},
			want:  "USD",
		},
		{
			name:  "email format",
			field: FieldSpec{Name: "email", FieldType: "string", Format: "email"},
			want:  "user@example.com",
		},
		{
			name:  "uuid format",
			field: FieldSpec{Name: "id", FieldType: "string", Format: "uuid"},
			want:  "550e8400-e29b-41d4-a716-446655440000",
		},
		{
			name:  "integer type",
			field: FieldSpec{Name: "quantity", FieldType: "integer"},
			want:  1,
		},
		{
			name:  "number type",
			field: FieldSpec{Name: "price", FieldType: "number"},
			want:  9.99,
		},
		{
			name:  "boolean type",
			field: FieldSpec{Name: "published", FieldType: "boolean"},
			want:  true,
		},
		{
			name:  "bare string falls back to name",
			field: FieldSpec{Name: "nickname", FieldType: "string", MinLength: &minLen},
			want:  "test_nickname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.field.ExampleValue()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExampleValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestAddStateConstraintDedup(t *testing.T) {
	ep := &Endpoint{Name: "delete__orders_id", Method: "DELETE", URLPath: "/orders/:id"}
	c := StateConstraint{
		Field:         "status",
		AllowedValues: []string{"pending"},
		ErrorCode:     409,
	}

	ep.AddStateConstraint(c)
	ep.AddStateConstraint(c)
	if len(ep.StateConstraints) != 1 {
		t.Fatalf("expected 1 constraint after duplicate add, got %d", len(ep.StateConstraints))
	}

	different := StateConstraint{Field: "status", BlockedValues: []string{"shipped"}, ErrorCode: 409}
	ep.AddStateConstraint(different)
	if len(ep.StateConstraints) != 2 {
		t.Fatalf("expected 2 constraints after distinct add, got %d", len(ep.StateConstraints))
	}
}

func TestNewSystemContext(t *testing.T) {
	mkEndpoint := func(name string, deps ...string) *Endpoint {
		return &Endpoint{Name: name, Method: "GET", URLPath: "/x", DependsOn: deps}
	}

	tests := []struct {
		name         string
		endpoints    []*Endpoint
		dependencies map[string][]string
		wantErr      bool
	}{
		{
			name:      "valid with satisfied dependency",
			endpoints: []*Endpoint{mkEndpoint("a"), mkEndpoint("b", "a")},
		},
		{
			name:      "duplicate names",
			endpoints: []*Endpoint{mkEndpoint("a"), mkEndpoint("a")},
			wantErr:   true,
		},
		{
			name:      "dangling endpoint dependency",
			endpoints: []*Endpoint{mkEndpoint("a", "missing")},
			wantErr:   true,
		},
		{
			name:         "dangling map dependency",
			endpoints:    []*Endpoint{mkEndpoint("a")},
			dependencies: map[string][]string{"a": {"missing"}},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSystemContext(tt.endpoints, nil, tt.dependencies)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSystemContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSystemContextEndpointLookup(t *testing.T) {
	sysCtx, err := NewSystemContext([]*Endpoint{
		{Name: "get__orders", Method: "GET", URLPath: "/orders"},
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewSystemContext() error = %v", err)
	}

	if ep := sysCtx.Endpoint("get__orders"); ep == nil {
		t.Error("Endpoint() returned nil for existing name")
	}
	if ep := sysCtx.Endpoint("nope"); ep != nil {
		t.Error("Endpoint() returned non-nil for missing name")
	}
}
