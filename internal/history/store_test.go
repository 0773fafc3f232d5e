package history

import (
	"strings"
	"testing"
)

func TestOpenRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "unsupported type",
			config:  Config{Type: "sqlite", Table: "test_results"},
			wantErr: "unsupported database type",
		},
		{
			name:    "table name injection",
			config:  Config{Type: "postgres", Table: "results; DROP TABLE users"},
			wantErr: "invalid table name",
		},
		{
			name:    "table name with quotes",
			config:  Config{Type: "mysql", Table: `t"x`},
			wantErr: "invalid table name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.config)
			if err == nil {
				t.Fatal("Open() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Open() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTableIdentValidation(t *testing.T) {
	tests := []struct {
		table string
		want  bool
	}{
		{"test_results", true},
		{"Results2", true},
		{"_private", true},
		{"1results", false},
		{"res-ults", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := identRe.MatchString(tt.table); got != tt.want {
			t.Errorf("identRe.MatchString(%q) = %v, want %v", tt.table, got, tt.want)
		}
	}
}
