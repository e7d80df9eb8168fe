package schema

import (
	"fmt"
	"strings"

	"github.com/hassops/ha-guard/pkg/hayaml"
	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/report"
)

var structuralLog = logger.New("schema:structural")

// Validate walks doc against the named descriptor and returns the
// structural findings. The document must already be a mapping; the
// pipeline short-circuits non-mapping documents before structural checks.
// An unknown schema name is returned as an error, never as a result.
func (r *Registry) Validate(name string, doc *hayaml.Value) (*report.Result, error) {
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	structuralLog.Printf("Structural validation against %q", name)

	var findings []report.ValidationError
	walkDescriptor(d, doc, "", name, &findings)
	structuralLog.Printf("Structural validation complete: %d findings", len(findings))
	return report.NewResult(name, findings), nil
}

// walkDescriptor checks every field spec of d against the mapping at path.
// Unknown fields are intentionally ignored at every level.
func walkDescriptor(d *Descriptor, doc *hayaml.Value, path, schemaPath string, findings *[]report.ValidationError) {
	for _, f := range d.Fields {
		fieldPath := joinPath(path, f.Name)
		fieldSchemaPath := schemaPath + "/" + f.Name

		value, present := doc.Get(f.Name)
		if !present {
			if f.Required {
				*findings = append(*findings, report.ValidationError{
					Path:       fieldPath,
					Message:    fmt.Sprintf("missing required field %q", f.Name),
					Severity:   report.SeverityError,
					SchemaPath: fieldSchemaPath,
				})
			}
			continue
		}

		checkField(f, value, fieldPath, fieldSchemaPath, findings)
	}
}

func checkField(f FieldSpec, value *hayaml.Value, path, schemaPath string, findings *[]report.ValidationError) {
	if len(f.Enum) > 0 {
		checkEnum(f, value, path, schemaPath, findings)
		return
	}

	if f.Type != TypeAny && value.Kind != typeKind(f.Type) {
		*findings = append(*findings, report.ValidationError{
			Path:       path,
			Message:    fmt.Sprintf("expected %s, got %s", f.Type, value.Kind),
			Severity:   report.SeverityError,
			SchemaPath: schemaPath,
		})
		return
	}

	if f.Elem == nil {
		return
	}

	switch f.Type {
	case TypeSequence:
		for i, item := range value.Items {
			checkElem(f.Elem, item, fmt.Sprintf("%s[%d]", path, i), schemaPath, findings)
		}
	case TypeMapping:
		for _, e := range value.Entries {
			checkElem(f.Elem, e.Value, path+"."+e.Key, schemaPath, findings)
		}
	}
}

func checkEnum(f FieldSpec, value *hayaml.Value, path, schemaPath string, findings *[]report.ValidationError) {
	if !value.IsString() {
		*findings = append(*findings, report.ValidationError{
			Path:       path,
			Message:    fmt.Sprintf("expected string, got %s", value.Kind),
			Severity:   report.SeverityError,
			SchemaPath: schemaPath,
		})
		return
	}
	for _, allowed := range f.Enum {
		if value.Str == allowed {
			return
		}
	}
	*findings = append(*findings, report.ValidationError{
		Path:       path,
		Message:    fmt.Sprintf("value %q is not one of [%s]", value.Str, strings.Join(f.Enum, ", ")),
		Severity:   report.SeverityError,
		SchemaPath: schemaPath,
	})
}

func checkElem(elem *Elem, value *hayaml.Value, path, schemaPath string, findings *[]report.ValidationError) {
	if elem.Descriptor != nil {
		if !value.IsMapping() {
			*findings = append(*findings, report.ValidationError{
				Path:       path,
				Message:    fmt.Sprintf("expected mapping, got %s", value.Kind),
				Severity:   report.SeverityError,
				SchemaPath: schemaPath,
			})
			return
		}
		walkDescriptor(elem.Descriptor, value, path, schemaPath, findings)
		return
	}
	if elem.Scalar != TypeAny && value.Kind != typeKind(elem.Scalar) {
		*findings = append(*findings, report.ValidationError{
			Path:       path,
			Message:    fmt.Sprintf("expected %s, got %s", elem.Scalar, value.Kind),
			Severity:   report.SeverityError,
			SchemaPath: schemaPath,
		})
	}
}

func typeKind(t Type) hayaml.Kind {
	switch t {
	case TypeString:
		return hayaml.KindString
	case TypeBool:
		return hayaml.KindBool
	case TypeNumber:
		return hayaml.KindNumber
	case TypeMapping:
		return hayaml.KindMapping
	case TypeSequence:
		return hayaml.KindSequence
	default:
		return hayaml.KindNull
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
