package hayaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalars(t *testing.T) {
	v, err := Parse([]byte(`
alias: Morning lights
enabled: true
max: 10
threshold: 21.5
note: null
`))
	require.NoError(t, err)
	require.True(t, v.IsMapping())

	alias, ok := v.Get("alias")
	require.True(t, ok)
	assert.Equal(t, KindString, alias.Kind)
	assert.Equal(t, "Morning lights", alias.Str)

	enabled, _ := v.Get("enabled")
	assert.Equal(t, KindBool, enabled.Kind)
	assert.True(t, enabled.Bool)

	max, _ := v.Get("max")
	assert.Equal(t, KindNumber, max.Kind)
	assert.Equal(t, float64(10), max.Number)

	threshold, _ := v.Get("threshold")
	assert.Equal(t, 21.5, threshold.Number)

	note, _ := v.Get("note")
	assert.Equal(t, KindNull, note.Kind)
}

func TestParsePreservesKeyOrder(t *testing.T) {
	v, err := Parse([]byte("zebra: 1\nalpha: 2\nmike: 3\n"))
	require.NoError(t, err)
	require.Len(t, v.Entries, 3)

	keys := []string{v.Entries[0].Key, v.Entries[1].Key, v.Entries[2].Key}
	assert.Equal(t, []string{"zebra", "alpha", "mike"}, keys)
}

func TestParsePositions(t *testing.T) {
	v, err := Parse([]byte("alias: X\ntrigger:\n  - platform: state\n"))
	require.NoError(t, err)

	trigger, ok := v.Get("trigger")
	require.True(t, ok)
	require.True(t, trigger.IsSequence())
	require.Len(t, trigger.Items, 1)
	assert.Equal(t, 3, trigger.Items[0].Line)
}

func TestParseNestedSequenceOfMappings(t *testing.T) {
	v, err := Parse([]byte(`
trigger:
  - platform: state
    entity_id: binary_sensor.door
  - platform: sun
    event: sunset
`))
	require.NoError(t, err)

	trigger, _ := v.Get("trigger")
	require.True(t, trigger.IsSequence())
	require.Len(t, trigger.Items, 2)
	assert.Equal(t, "state", trigger.Items[0].GetString("platform"))
	assert.Equal(t, "sunset", trigger.Items[1].GetString("event"))
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("alias: [unclosed\ntrigger: x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestParseEmptyDocument(t *testing.T) {
	v, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, KindNull, v.Kind)
}

func TestParseNonMappingTopLevel(t *testing.T) {
	v, err := Parse([]byte("- a\n- b\n"))
	require.NoError(t, err)
	assert.Equal(t, KindSequence, v.Kind)
	assert.False(t, v.IsMapping())
}

func TestBlockScalarIsString(t *testing.T) {
	v, err := Parse([]byte("value_template: >\n  {{ states('sensor.x') }}\n"))
	require.NoError(t, err)

	tmpl, _ := v.Get("value_template")
	require.True(t, tmpl.IsString())
	assert.Contains(t, tmpl.Str, "states('sensor.x')")
}

func TestSetGetDeleteClone(t *testing.T) {
	m := Map(Entry{Key: "a", Value: Str("1")})
	m.Set("b", Num(2))
	m.Set("a", Str("updated"))

	assert.Equal(t, "updated", m.GetString("a"))
	require.Len(t, m.Entries, 2)

	clone := m.Clone()
	clone.Delete("a")
	assert.True(t, m.Has("a"), "clone must not share entries")
	assert.False(t, clone.Has("a"))
}

func TestInterfaceConversion(t *testing.T) {
	v, err := Parse([]byte("a: 1\nb: [x, y]\n"))
	require.NoError(t, err)

	got := v.Interface()
	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
	assert.Equal(t, []any{"x", "y"}, m["b"])
}
