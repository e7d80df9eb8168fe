package jinja

import (
	"strings"
	"testing"
)

func TestCheckValidTemplates(t *testing.T) {
	valid := []struct {
		name string
		src  string
	}{
		{"plain text", "turn on the lights"},
		{"simple state", "{{ states('sensor.kitchen_temp') }}"},
		{"filter chain", "{{ states('sensor.x') | float(0) | round(1) }}"},
		{"filter no args", "{{ trigger.to_state.state | upper }}"},
		{"comparison", "{{ states('sensor.x') | float > 21.5 }}"},
		{"is defined test", "{{ my_var is defined }}"},
		{"is not none", "{{ value is not none }}"},
		{"divisibleby bare arg", "{{ loop.index is divisibleby 3 }}"},
		{"ternary", "{{ 'on' if is_state('light.x', 'on') else 'off' }}"},
		{"concat", "{{ 'sensor.' ~ name }}"},
		{"attribute chain", "{{ states.sensor.kitchen.state }}"},
		{"integer attribute", "{{ trigger.entity_id.split('.').0 }}"},
		{"subscript", "{{ states.sensor[0].entity_id }}"},
		{"slice", "{{ entity_id[:6] }}"},
		{"dict literal", "{{ {'brightness': 255} }}"},
		{"list literal", "{{ [1, 2, 3] | max }}"},
		{"kwargs", "{{ states('sensor.x') | round(1, default=0) }}"},
		{"math", "{{ (a + b) * 2 ** 3 // 4 % 5 }}"},
		{"membership", "{{ 'kitchen' in area_name(trigger.entity_id) }}"},
		{"not in", "{{ state not in ['on', 'off'] }}"},
		{"if statement", "{% if is_state('light.x', 'on') %}on{% endif %}"},
		{"if elif else", "{% if a %}1{% elif b %}2{% else %}3{% endif %}"},
		{"for loop", "{% for e in states.light %}{{ e.entity_id }}{% endfor %}"},
		{"for with filter", "{% for s in states.sensor if s.state != 'unknown' %}{{ s.name }}{% endfor %}"},
		{"set", "{% set temp = states('sensor.x') | float(0) %}{{ temp }}"},
		{"set multi target", "{% set a, b = 1, 2 %}"},
		{"block set", "{% set msg %}hello {{ name }}{% endset %}"},
		{"macro", "{% macro greet(name, punct='!') %}hi {{ name }}{{ punct }}{% endmacro %}"},
		{"comment", "{# ignored {{ not parsed }} #}{{ ok }}"},
		{"raw region", "{% raw %}{{ literal braces }} {% bogus %}{% endraw %}"},
		{"whitespace control", "{%- if x -%}{{- x -}}{%- endif -%}"},
		{"break in loop", "{% for x in y %}{% if x %}{% break %}{% endif %}{% endfor %}"},
		{"multiline", "{{ states('sensor.a')\n   | float(0)\n   | round(2) }}"},
		{"namespace call", "{% set ns = namespace(found=false) %}{% set ns.found = true %}"},
		{"string escapes", `{{ "quoted \" brace }}" }}`},
		{"timestamp format", "{{ now().strftime('%H:%M') }}"},
		{"tuple output", "{{ a, b }}"},
	}

	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			if err := Check(tt.src); err != nil {
				t.Errorf("Check(%q) = %v, want nil", tt.src, err)
			}
		})
	}
}

func TestCheckInvalidTemplates(t *testing.T) {
	invalid := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"dangling pipe", "{{ states('sensor.x') | }}", "filter name"},
		{"unclosed expression", "{{ states('sensor.x')", "unclosed expression"},
		{"unclosed statement", "{% if x", "unclosed statement"},
		{"unclosed comment", "{# never closed", "unclosed comment"},
		{"empty expression", "{{ }}", "empty expression"},
		{"missing endif", "{% if x %}on", "missing {% endif %}"},
		{"stray endif", "{% endif %}", "no open block"},
		{"mismatched end", "{% if x %}{% endfor %}", "expected {% endif %}"},
		{"elif outside if", "{% elif x %}", "outside"},
		{"unknown tag", "{% frobnicate x %}", "unknown tag"},
		{"missing in", "{% for x y %}{% endfor %}", "expected 'in'"},
		{"unterminated string", "{{ states('sensor.x }}", "unclosed expression block"},
		{"bad operator", "{{ a ? b }}", "unexpected character"},
		{"double operator", "{{ a + * b }}", "unexpected"},
		{"dangling dot", "{{ states. }}", "attribute name"},
		{"unclosed paren", "{{ states('x' }}", "expected"},
		{"unclosed bracket", "{{ items[0 }}", "expected"},
		{"dict missing colon", "{{ {'a' 1} }}", "expected \":\""},
		{"break outside loop", "{% break %}", "outside"},
		{"bare keyword", "{{ and }}", "unexpected keyword"},
		{"missing if expression", "{% if %}{% endif %}", "missing expression"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.src)
			if err == nil {
				t.Fatalf("Check(%q) = nil, want error containing %q", tt.src, tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Check(%q) = %q, want message containing %q", tt.src, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCheckReportsLineNumbers(t *testing.T) {
	src := "line one\nline two\n{{ states('sensor.x') | }}"
	err := Check(src)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if err.Line != 3 {
		t.Errorf("error line = %d, want 3", err.Line)
	}

	src = "{{ states('sensor.a')\n  | float(0)\n  | }}"
	err = Check(src)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if err.Line != 3 {
		t.Errorf("error line = %d, want 3", err.Line)
	}
}

func TestContainsTemplate(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"plain", false},
		{"{{ x }}", true},
		{"{% if x %}", true},
		{"{ not a template }", false},
		{"trailing {", false},
	}
	for _, tt := range tests {
		if got := ContainsTemplate(tt.src); got != tt.want {
			t.Errorf("ContainsTemplate(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestCheckIsIndependentPerCall(t *testing.T) {
	if err := Check("{% if x %}"); err == nil {
		t.Fatal("expected error for unbalanced if")
	}
	// A fresh call must not inherit the previous call's block stack.
	if err := Check("{{ ok }}"); err != nil {
		t.Errorf("Check after failed call = %v, want nil", err)
	}
}
