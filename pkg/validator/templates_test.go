package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hassops/ha-guard/pkg/report"
	"github.com/hassops/ha-guard/pkg/validator"
)

func checkTemplates(t *testing.T, src string) []report.ValidationError {
	t.Helper()
	return validator.CheckTemplates(validator.Normalize(parseDoc(t, src)))
}

func TestTemplatesDanglingFilter(t *testing.T) {
	findings := checkTemplates(t, `
trigger:
  - platform: template
    value_template: "{{ states('sensor.x') | }}"
action:
  - service: light.turn_on
`)
	require.Len(t, findings, 1)
	assert.Equal(t, "trigger[0].value_template", findings[0].Path)
	assert.Equal(t, report.SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "line 1")
}

func TestTemplatesValidFilterChain(t *testing.T) {
	findings := checkTemplates(t, `
trigger:
  - platform: template
    value_template: "{{ states('sensor.x') | float(0) | round(1) > 20 }}"
action:
  - service: light.turn_on
`)
	assert.Empty(t, findings)
}

func TestTemplatesAlwaysCheckedFields(t *testing.T) {
	// value_template is checked even without delimiters; a plain string
	// is valid template syntax, so only a malformed one fires.
	findings := checkTemplates(t, `
trigger:
  - platform: template
    value_template: "no delimiters here"
`)
	assert.Empty(t, findings)

	findings = checkTemplates(t, `
action:
  - wait_template: "{% if x %}"
`)
	require.Len(t, findings, 1)
	assert.Equal(t, "action[0].wait_template", findings[0].Path)
}

func TestTemplatesNestedAndVariables(t *testing.T) {
	findings := checkTemplates(t, `
variables:
  greeting: "{{ 'hello ' ~ user }}"
  broken: "{{ a + }}"
action:
  - service: notify.mobile
    data:
      message: "{{ greeting }}"
      nested:
        deeper: "{{ also | }}"
`)
	require.Len(t, findings, 2)
	paths := []string{findings[0].Path, findings[1].Path}
	assert.Contains(t, paths, "variables.broken")
	assert.Contains(t, paths, "action[0].data.nested.deeper")
}

func TestTemplatesMultilineLineNumber(t *testing.T) {
	findings := checkTemplates(t, `
action:
  - service: notify.mobile
    data:
      message: |
        {{ states('sensor.a')
           | float(0)
           | }}
`)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "line 3")
}

func TestTemplatesConditionSection(t *testing.T) {
	findings := checkTemplates(t, `
condition:
  - condition: template
    value_template: "{{ is_state('light.x', 'on' }}"
`)
	require.Len(t, findings, 1)
	assert.Equal(t, "condition[0].value_template", findings[0].Path)
}

func TestTemplatesIgnoresNonTemplateStrings(t *testing.T) {
	findings := checkTemplates(t, `
trigger:
  - platform: state
    entity_id: light.kitchen
    to: "on"
action:
  - service: light.turn_on
    target:
      entity_id: light.kitchen
`)
	assert.Empty(t, findings)
}

func TestTemplatesScriptSequence(t *testing.T) {
	findings := checkTemplates(t, `
sequence:
  - service: notify.mobile
    data:
      message: "{{ broken | }}"
`)
	require.Len(t, findings, 1)
	assert.Equal(t, "sequence[0].data.message", findings[0].Path)
}
