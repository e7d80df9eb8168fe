package logger

import (
	"testing"
	"time"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		pattern   string
		want      bool
	}{
		{"wildcard all", "validator:crossfield", "*", true},
		{"exact match", "validator:crossfield", "validator:crossfield", true},
		{"exact mismatch", "validator:crossfield", "validator:semantic", false},
		{"prefix wildcard", "validator:crossfield", "validator:*", true},
		{"prefix wildcard mismatch", "schema:registry", "validator:*", false},
		{"suffix wildcard", "validator:crossfield", "*crossfield", true},
		{"middle wildcard", "validator:crossfield", "validator*field", true},
		{"middle wildcard mismatch", "validator:crossfield", "schema*field", false},
		{"no wildcard no match", "validator:crossfield", "validator", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchPattern(tt.namespace, tt.pattern); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.namespace, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestComputeEnabledExclusions(t *testing.T) {
	orig := debugEnv
	defer func() { debugEnv = orig }()

	debugEnv = "validator:*,-validator:semantic"
	if !computeEnabled("validator:crossfield") {
		t.Error("expected validator:crossfield to be enabled")
	}
	if computeEnabled("validator:semantic") {
		t.Error("expected validator:semantic to be excluded")
	}

	debugEnv = ""
	if computeEnabled("validator:crossfield") {
		t.Error("expected logger disabled with empty DEBUG")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100us", "0ms"},
		{"5ms", "5ms"},
		{"1500ms", "1.5s"},
	}
	for _, tt := range tests {
		d, err := time.ParseDuration(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := formatDuration(d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
