package validator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hassops/ha-guard/pkg/schema"
	"github.com/hassops/ha-guard/pkg/validator"
)

func newPipeline(t *testing.T) *validator.Pipeline {
	t.Helper()
	p, err := validator.NewDefaultPipeline()
	require.NoError(t, err)
	return p
}

func TestPipelineValidAutomation(t *testing.T) {
	src := "alias: X\ntrigger:\n  - platform: time\n    at: \"08:00:00\"\naction:\n  - service: light.turn_on\nmode: single"
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte(src))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, schema.SchemaAutomation, res.SchemaName)
}

func TestPipelineMissingTrigger(t *testing.T) {
	src := "alias: Y\naction:\n  - service: light.turn_on"
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte(src))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	found := false
	for _, e := range res.Errors {
		if e.Path == "trigger" || strings.Contains(e.Message, "trigger") {
			found = true
		}
	}
	assert.True(t, found, "at least one error must mention trigger: %v", res.Errors)
}

func TestPipelineUnknownSchema(t *testing.T) {
	res, err := newPipeline(t).Validate("ha.bogus", []byte("alias: X"))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, schema.ErrUnknownSchema))
}

func TestPipelineParseFailure(t *testing.T) {
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte("alias: [unclosed"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "invalid YAML")
}

func TestPipelineNonMappingDocument(t *testing.T) {
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte("- just\n- a\n- list"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "mapping")
}

func TestPipelineMergesAllStages(t *testing.T) {
	src := `
alias: Kitchen sunrise
mode: parallel
trigger:
  - platform: sun
    event: noon
action:
  - service: notify.mobile
    data:
      message: "{{ broken | }}"
`
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte(src))
	require.NoError(t, err)
	assert.False(t, res.Valid)

	// structural passes here; cross-field contributes the sun error and
	// the mode warning, templates contribute the filter error
	assert.Len(t, res.Errors, 2)
	assert.Len(t, res.Warnings, 1)
}

func TestPipelineValidInvariant(t *testing.T) {
	// Warnings alone never make a document invalid.
	src := `
trigger:
  - platform: state
    entity_id: light.x
    from: "on"
    to: "on"
action:
  - service: light.turn_on
`
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte(src))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
}

func TestPipelineNormalizesLegacyShapes(t *testing.T) {
	src := `
alias: Legacy
triggers:
  platform: state
  entity_id: light.x
actions:
  - domain: light
    service: turn_on
`
	res, err := newPipeline(t).Validate(schema.SchemaAutomation, []byte(src))
	require.NoError(t, err)
	assert.True(t, res.Valid, "legacy keys normalize before structural checks: %v", res.Errors)
}

func TestPipelineValidateLive(t *testing.T) {
	src := `
trigger:
  - platform: state
    entity_id: light.kitchen
action:
  - service: light.turn_on
    target:
      entity_id: switch.heater
`
	p := newPipeline(t)
	static, semantic, err := p.ValidateLive(context.Background(), schema.SchemaAutomation, []byte(src), testRegistryCache(defaultFakeRegistry()))
	require.NoError(t, err)
	assert.True(t, static.Valid)
	require.NotNil(t, semantic)
	assert.True(t, semantic.Valid)
	require.Len(t, semantic.Warnings, 1, "domain mismatch warning")
}

func TestPipelineValidateLiveRegistryDown(t *testing.T) {
	fake := defaultFakeRegistry()
	fake.err = errors.New("connection refused")
	src := `
trigger:
  - platform: state
    entity_id: light.kitchen
action:
  - service: light.turn_on
`
	static, semantic, err := newPipeline(t).ValidateLive(context.Background(), schema.SchemaAutomation, []byte(src), testRegistryCache(fake))
	require.Error(t, err)
	assert.Nil(t, semantic)
	require.NotNil(t, static, "static result stands on its own")
	assert.True(t, static.Valid)
}

func TestPipelineValidateLiveSkipsSemanticOnParseFailure(t *testing.T) {
	static, semantic, err := newPipeline(t).ValidateLive(context.Background(), schema.SchemaAutomation, []byte("alias: [broken"), testRegistryCache(defaultFakeRegistry()))
	require.NoError(t, err)
	assert.False(t, static.Valid)
	assert.Nil(t, semantic)
}
