package validator

import (
	"github.com/hassops/ha-guard/pkg/hayaml"
	"github.com/hassops/ha-guard/pkg/logger"
)

var normalizeLog = logger.New("validator:normalize")

// Accepted plural spellings and their canonical keys.
var pluralKeys = map[string]string{
	"triggers":   "trigger",
	"actions":    "action",
	"conditions": "condition",
}

// Keys whose value may be written as a single mapping instead of a list.
var listKeys = []string{"trigger", "action", "condition", "sequence"}

// Normalize canonicalizes the accepted authoring variants into the one
// shape every downstream check assumes. It never mutates raw and is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
//
// Rules:
//   - triggers/actions/conditions are renamed to their singular keys
//   - a single mapping under trigger/action/condition/sequence becomes a
//     one-element list
//   - a {domain: d, service: s} action pair collapses to service: "d.s"
//   - mode defaults to "single" when absent
func Normalize(raw *hayaml.Value) *hayaml.Value {
	if !raw.IsMapping() {
		return raw
	}
	doc := raw.Clone()

	for plural, singular := range pluralKeys {
		v, ok := doc.Get(plural)
		if !ok {
			continue
		}
		if !doc.Has(singular) {
			doc.Set(singular, v)
		}
		doc.Delete(plural)
	}

	for _, key := range listKeys {
		v, ok := doc.Get(key)
		if !ok {
			continue
		}
		if v.IsMapping() {
			normalizeLog.Printf("Wrapping singular %q into a list", key)
			doc.Set(key, hayaml.Seq(v))
		}
	}

	for _, key := range []string{"action", "sequence"} {
		actions, ok := doc.Get(key)
		if !ok || !actions.IsSequence() {
			continue
		}
		for _, a := range actions.Items {
			normalizeServiceCall(a)
		}
	}

	if !doc.Has("mode") {
		doc.Set("mode", hayaml.Str("single"))
	}
	return doc
}

// normalizeServiceCall rewrites {domain: d, service: s} into
// {service: "d.s"} in place, preserving all other keys. Deleting the
// domain key keeps the rewrite idempotent.
func normalizeServiceCall(action *hayaml.Value) {
	if !action.IsMapping() {
		return
	}
	domain := action.GetString("domain")
	service := action.GetString("service")
	if domain == "" || service == "" {
		return
	}
	action.Set("service", hayaml.Str(domain+"."+service))
	action.Delete("domain")
}
