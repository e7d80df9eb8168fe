package validator

// # Template Syntax Checking
//
// Walks the sections that may carry embedded templates, finds candidate
// strings, and runs each through the syntax checker exactly once. Nothing
// is ever rendered; unresolved identifiers and filters are fine.

import (
	"fmt"

	"github.com/hassops/ha-guard/pkg/hayaml"
	"github.com/hassops/ha-guard/pkg/jinja"
	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/report"
)

var templateLog = logger.New("validator:templates")

// maxTemplateDepth bounds the recursive walk so pathological nesting
// cannot stall validation.
const maxTemplateDepth = 10

// Sections of the document that may carry templates.
var templateSections = []string{"trigger", "action", "sequence", "condition", "variables"}

// Fields checked even when the value has no template delimiters, because
// HA always renders them.
var alwaysTemplateFields = map[string]bool{
	"value_template":      true,
	"wait_template":       true,
	"event_data_template": true,
}

// CheckTemplates returns one finding per template candidate that fails to
// parse. The path points at the string's position in the document tree.
func CheckTemplates(doc *hayaml.Value) []report.ValidationError {
	if !doc.IsMapping() {
		return nil
	}
	var findings []report.ValidationError
	checked := 0
	for _, section := range templateSections {
		v, ok := doc.Get(section)
		if !ok {
			continue
		}
		walkTemplates(v, section, "", 0, &checked, &findings)
	}
	templateLog.Printf("Template check complete: %d candidates, %d findings", checked, len(findings))
	return findings
}

// walkTemplates descends v looking for string leaves. key is the mapping
// key the value sits under, "" for list elements and the section root.
func walkTemplates(v *hayaml.Value, path, key string, depth int, checked *int, findings *[]report.ValidationError) {
	if v == nil || depth > maxTemplateDepth {
		return
	}
	switch v.Kind {
	case hayaml.KindString:
		if !jinja.ContainsTemplate(v.Str) && !alwaysTemplateFields[key] {
			return
		}
		*checked++
		if serr := jinja.Check(v.Str); serr != nil {
			*findings = append(*findings, report.Errorf(path,
				"template syntax error at line %d: %s", serr.Line, serr.Message))
		}
	case hayaml.KindSequence:
		for i, item := range v.Items {
			walkTemplates(item, fmt.Sprintf("%s[%d]", path, i), "", depth+1, checked, findings)
		}
	case hayaml.KindMapping:
		for _, e := range v.Entries {
			walkTemplates(e.Value, path+"."+e.Key, e.Key, depth+1, checked, findings)
		}
	}
}
