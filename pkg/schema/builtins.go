package schema

// The four built-in Home Assistant schemas. RegisterBuiltins is called
// explicitly during startup; nothing here runs as an import side effect.

// Schema names accepted by the validation pipeline.
const (
	SchemaAutomation = "ha.automation"
	SchemaScript     = "ha.script"
	SchemaScene      = "ha.scene"
	SchemaDashboard  = "ha.dashboard"
)

// Run modes shared by automations and scripts.
var runModes = []string{"single", "restart", "queued", "parallel"}

// max_exceeded takes a log level (or "silent").
var maxExceededLevels = []string{
	"silent", "critical", "fatal", "error", "warning", "warn", "info", "debug", "notset",
}

// RegisterBuiltins registers the four HA schemas. It fails only on
// duplicate registration, i.e. when called twice on the same registry.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]*Descriptor{
		SchemaAutomation: automationDescriptor(),
		SchemaScript:     scriptDescriptor(),
		SchemaScene:      sceneDescriptor(),
		SchemaDashboard:  dashboardDescriptor(),
	}
	for _, name := range []string{SchemaAutomation, SchemaScript, SchemaScene, SchemaDashboard} {
		if err := r.Register(name, builtins[name]); err != nil {
			return err
		}
	}
	return nil
}

// NewBuiltinRegistry is a convenience for callers that just want the four
// HA schemas ready to use.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}

// triggerDescriptor covers the fields common to all trigger platforms.
// Platform-specific consistency (thresholds, sun events, time formats)
// lives in the cross-field rules, not here.
func triggerDescriptor() *Descriptor {
	return &Descriptor{
		Name: "trigger",
		Fields: []FieldSpec{
			{Name: "platform", Required: true, Type: TypeString},
			{Name: "id", Type: TypeString},
			{Name: "variables", Type: TypeMapping},
			{Name: "enabled", Type: TypeBool},
		},
	}
}

// actionDescriptor is deliberately open: actions are a union of service
// calls, delays, waits, choose/repeat blocks and more, and the only shape
// requirement at the structural level is "a mapping". The cross-field
// rules know the per-variant requirements.
func actionDescriptor() *Descriptor {
	return &Descriptor{
		Name: "action",
		Fields: []FieldSpec{
			{Name: "service", Type: TypeString},
			{Name: "alias", Type: TypeString},
			{Name: "enabled", Type: TypeBool},
			{Name: "target", Type: TypeMapping},
			{Name: "data", Type: TypeMapping},
			{Name: "choose", Type: TypeSequence, Elem: &Elem{Scalar: TypeMapping}},
			{Name: "variables", Type: TypeMapping},
		},
	}
}

func conditionDescriptor() *Descriptor {
	return &Descriptor{
		Name: "condition",
		Fields: []FieldSpec{
			{Name: "condition", Type: TypeString},
			{Name: "alias", Type: TypeString},
			{Name: "enabled", Type: TypeBool},
		},
	}
}

func automationDescriptor() *Descriptor {
	return &Descriptor{
		Name: SchemaAutomation,
		Fields: []FieldSpec{
			{Name: "id", Type: TypeString},
			{Name: "alias", Type: TypeString},
			{Name: "description", Type: TypeString},
			{Name: "initial_state", Type: TypeBool},
			{Name: "trigger", Required: true, Type: TypeSequence, Elem: &Elem{Descriptor: triggerDescriptor()}},
			{Name: "condition", Type: TypeSequence, Elem: &Elem{Descriptor: conditionDescriptor()}},
			{Name: "action", Required: true, Type: TypeSequence, Elem: &Elem{Descriptor: actionDescriptor()}},
			{Name: "mode", Enum: runModes},
			{Name: "max", Type: TypeNumber},
			{Name: "max_exceeded", Enum: maxExceededLevels},
			{Name: "variables", Type: TypeMapping},
			{Name: "trigger_variables", Type: TypeMapping},
		},
	}
}

func scriptDescriptor() *Descriptor {
	return &Descriptor{
		Name: SchemaScript,
		Fields: []FieldSpec{
			{Name: "alias", Type: TypeString},
			{Name: "description", Type: TypeString},
			{Name: "icon", Type: TypeString},
			{Name: "sequence", Required: true, Type: TypeSequence, Elem: &Elem{Descriptor: actionDescriptor()}},
			{Name: "mode", Enum: runModes},
			{Name: "max", Type: TypeNumber},
			{Name: "max_exceeded", Enum: maxExceededLevels},
			{Name: "fields", Type: TypeMapping},
			{Name: "variables", Type: TypeMapping},
		},
	}
}

func sceneDescriptor() *Descriptor {
	return &Descriptor{
		Name: SchemaScene,
		Fields: []FieldSpec{
			{Name: "id", Type: TypeString},
			{Name: "name", Required: true, Type: TypeString},
			{Name: "icon", Type: TypeString},
			// Entity states are either a bare scalar ("on") or a mapping of
			// attributes, so elements stay unconstrained.
			{Name: "entities", Required: true, Type: TypeMapping},
			{Name: "metadata", Type: TypeMapping},
		},
	}
}

func dashboardDescriptor() *Descriptor {
	view := &Descriptor{
		Name: "view",
		Fields: []FieldSpec{
			{Name: "title", Type: TypeString},
			{Name: "path", Type: TypeString},
			{Name: "icon", Type: TypeString},
			{Name: "theme", Type: TypeString},
			{Name: "type", Type: TypeString},
			{Name: "cards", Type: TypeSequence, Elem: &Elem{Scalar: TypeMapping}},
			{Name: "badges", Type: TypeSequence},
		},
	}
	return &Descriptor{
		Name: SchemaDashboard,
		Fields: []FieldSpec{
			{Name: "title", Type: TypeString},
			{Name: "theme", Type: TypeString},
			{Name: "background", Type: TypeString},
			{Name: "views", Required: true, Type: TypeSequence, Elem: &Elem{Descriptor: view}},
		},
	}
}
