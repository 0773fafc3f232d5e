package inference

import "api-test-planner/internal/models"

// domainRule maps path keywords to a request body field template. Rules
// are scanned in declaration order and the first match wins, so more
// specific keyword sets must precede more general ones.
type domainRule struct {
	keywords []string
	methods  []string // nil matches any method
	fields   []models.FieldSpec
}

func intPtr(i int) *int { return &i }

// domainRules is the ordered keyword table used by request inference.
var domainRules = []domainRule{
	// Auth / user registration
	{
		keywords: []string{"register", "signup", "sign-up"},
		methods:  []string{"POST"},
		fields: []models.FieldSpec{
			{Name: "email", FieldType: "string", Format: "email", Required: true, Example: "user@example.com"},
			{Name: "password", FieldType: "string", Format: "password", Required: true, MinLength: intPtr(8), Example: "SecureP@ss123"},
			{Name: "username", FieldType: "string", Required: false, MinLength: intPtr(3), MaxLength: intPtr(30), Example: "john_doe"},
			{Name: "full_name", FieldType: "string", Required: false, Example: "John Doe"},
		},
	},
	{
		keywords: []string{"login", "signin", "sign-in", "auth/token"},
		methods:  []string{"POST"},
		fields: []models.FieldSpec{
			{Name: "email", FieldType: "string", Format: "email", Required: true, Example: "user@example.com"},
			{Name: "password", FieldType: "string", Format: "password", Required: true, Example: "SecureP@ss123"},
		},
	},

	// Orders / e-commerce
	{
		keywords: []string{"orders", "order"},
		methods:  []string{"POST", "PUT"},
		fields: []models.FieldSpec{
			{Name: "product_id", FieldType: "string", Format: "uuid", Required: true, Description: "Product to order"},
			{Name: "quantity", FieldType: "integer", Required: true, Example: "2"},
			{Name: "shipping_address", FieldType: "string", Required: true, Example: "123 Main St, Springfield, IL"},
			{Name: "payment_method", FieldType: "string", Required: false, Enum: []string{"credit_card", "paypal", "bank_transfer"}, Example: "credit_card"},
		},
	},

	// Products / catalog
	{
		keywords: []string{"products", "product", "items", "item", "catalog"},
		methods:  []string{"POST", "PUT"},
		fields: []models.FieldSpec{
			{Name: "name", FieldType: "string", Required: true, Example: "Wireless Headphones"},
			{Name: "price", FieldType: "number", Required: true, Example: "79.99"},
			{Name: "description", FieldType: "string", Required: false, Example: "Noise-cancelling over-ear headphones"},
			{Name: "category", FieldType: "string", Required: false, Example: "electronics"},
			{Name: "sku", FieldType: "string", Required: false, Example: "WH-1000XM5"},
		},
	},

	// Users / profiles
	{
		keywords: []string{"users", "user", "profile", "profiles", "account"},
		methods:  []string{"POST", "PUT", "PATCH"},
		fields: []models.FieldSpec{
			{Name: "name", FieldType: "string", Required: true, Example: "Jane Smith"},
			{Name: "email", FieldType: "string", Format: "email", Required: true, Example: "jane@example.com"},
			{Name: "phone", FieldType: "string", Format: "phone", Required: false, Example: "+1-555-0199"},
			{Name: "role", FieldType: "string", Required: false, Enum: []string{"user", "admin", "moderator"}, Example: "user"},
		},
	},

	// Comments / reviews
	{
		keywords: []string{"comments", "comment", "reviews", "review", "feedback"},
		methods:  []string{"POST"},
		fields: []models.FieldSpec{
			{Name: "content", FieldType: "string", Required: true, MinLength: intPtr(1), MaxLength: intPtr(2000), Example: "Great product, highly recommended!"},
			{Name: "rating", FieldType: "integer", Required: false, Example: "5", Description: "Rating from 1-5"},
		},
	},

	// Posts / articles / blog
	{
		keywords: []string{"posts", "post", "articles", "article", "blog"},
		methods:  []string{"POST", "PUT"},
		fields: []models.FieldSpec{
			{Name: "title", FieldType: "string", Required: true, MinLength: intPtr(1), MaxLength: intPtr(200), Example: "Getting Started with API Testing"},
			{Name: "body", FieldType: "string", Required: true, Example: "In this guide we explore..."},
			{Name: "tags", FieldType: "array", Required: false, Example: `["testing", "api"]`},
			{Name: "published", FieldType: "boolean", Required: false, Example: "false"},
		},
	},

	// Payments / transactions
	{
		keywords: []string{"payments", "payment", "transactions", "transaction", "charges", "charge"},
		methods:  []string{"POST"},
		fields: []models.FieldSpec{
			{Name: "amount", FieldType: "number", Required: true, Example: "99.99"},
			{Name: "currency", FieldType: "string", Required: true, Enum: []string{"USD", "EUR", "GBP", "INR"}, Example: "USD"},
			{Name: "payment_method", FieldType: "string", Required: true, Enum: []string{"credit_card", "paypal", "bank_transfer"}, Example: "credit_card"},
			{Name: "description", FieldType: "string", Required: false, Example: "Order #1234 payment"},
		},
	},

	// Notifications
	{
		keywords: []string{"notifications", "notification", "alerts", "messages"},
		methods:  []string{"POST"},
		fields: []models.FieldSpec{
			{Name: "recipient_id", FieldType: "string", Format: "uuid", Required: true},
			{Name: "title", FieldType: "string", Required: true, Example: "New order received"},
			{Name: "message", FieldType: "string", Required: true, Example: "You have a new order #1234"},
			{Name: "channel", FieldType: "string", Required: false, Enum: []string{"email", "sms", "push"}, Example: "email"},
		},
	},
}
