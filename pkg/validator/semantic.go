package validator

// # Semantic Validation
//
// Resolves entity, service and area references against the live registry
// cache. This is the only validation stage that performs I/O; everything
// it needs from Home Assistant goes through the cache, so one document
// costs at most one fetch per registry collection per TTL window.

import (
	"context"
	"fmt"
	"strings"

	"github.com/hassops/ha-guard/pkg/hayaml"
	"github.com/hassops/ha-guard/pkg/jinja"
	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/registry"
	"github.com/hassops/ha-guard/pkg/report"
)

var semanticLog = logger.New("validator:semantic")

// Domains whose services legitimately address entities of any domain, so
// a service/entity domain mismatch is not even worth a warning.
var domainAgnostic = map[string]bool{
	"homeassistant": true,
}

// CheckSemantic verifies entity, service and area references in the
// normalized doc against the cache. A registry fetch failure is returned
// as an error; it never degrades into findings over stale or empty data.
func CheckSemantic(ctx context.Context, schemaName string, doc *hayaml.Value, cache *registry.Cache) (*report.Result, error) {
	if !doc.IsMapping() {
		return report.NewResult(schemaName, nil), nil
	}
	var findings []report.ValidationError

	if triggers, ok := doc.Get("trigger"); ok && triggers.IsSequence() {
		for i, trigger := range triggers.Items {
			if err := checkEntityRefs(ctx, trigger, fmt.Sprintf("trigger[%d]", i), cache, &findings); err != nil {
				return nil, err
			}
		}
	}
	for _, key := range []string{"action", "sequence"} {
		actions, ok := doc.Get(key)
		if !ok || !actions.IsSequence() {
			continue
		}
		for i, action := range actions.Items {
			if err := checkActionRefs(ctx, action, fmt.Sprintf("%s[%d]", key, i), cache, &findings); err != nil {
				return nil, err
			}
		}
	}
	if conditions, ok := doc.Get("condition"); ok && conditions.IsSequence() {
		for i, condition := range conditions.Items {
			if err := checkConditionRefs(ctx, condition, fmt.Sprintf("condition[%d]", i), cache, &findings); err != nil {
				return nil, err
			}
		}
	}

	semanticLog.Printf("Semantic check complete: %d findings", len(findings))
	return report.NewResult(schemaName, findings), nil
}

// entityIDList accepts the two authoring shapes of entity_id: one string
// or a list of strings. Non-string elements are skipped; the structural
// stage owns shape complaints.
func entityIDList(v *hayaml.Value) []string {
	switch {
	case v.IsString():
		return []string{v.Str}
	case v.IsSequence():
		ids := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			if item.IsString() {
				ids = append(ids, item.Str)
			}
		}
		return ids
	default:
		return nil
	}
}

func checkEntityRefs(ctx context.Context, node *hayaml.Value, path string, cache *registry.Cache, findings *[]report.ValidationError) error {
	if !node.IsMapping() {
		return nil
	}
	ids, ok := node.Get("entity_id")
	if !ok {
		return nil
	}
	for _, id := range entityIDList(ids) {
		if jinja.ContainsTemplate(id) {
			continue
		}
		exists, err := cache.EntityExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			*findings = append(*findings, report.Errorf(path+".entity_id",
				"entity %q does not exist", id))
		}
	}
	return nil
}

func checkActionRefs(ctx context.Context, action *hayaml.Value, path string, cache *registry.Cache, findings *[]report.ValidationError) error {
	if !action.IsMapping() {
		return nil
	}
	service := action.GetString("service")
	if service == "" || jinja.ContainsTemplate(service) {
		return nil
	}

	exists, err := cache.ServiceExists(ctx, service)
	if err != nil {
		return err
	}
	if !exists {
		*findings = append(*findings, report.Errorf(path+".service",
			"service %q does not exist", service))
	}

	target, ok := action.Get("target")
	if !ok || !target.IsMapping() {
		return nil
	}
	serviceDomain, _, _ := strings.Cut(service, ".")

	if entityIDs, ok := target.Get("entity_id"); ok {
		for _, id := range entityIDList(entityIDs) {
			if jinja.ContainsTemplate(id) {
				continue
			}
			entityExists, err := cache.EntityExists(ctx, id)
			if err != nil {
				return err
			}
			if !entityExists {
				*findings = append(*findings, report.Errorf(path+".target.entity_id",
					"entity %q does not exist", id))
				continue
			}
			entityDomain, _, _ := strings.Cut(id, ".")
			if entityDomain != serviceDomain && !domainAgnostic[serviceDomain] {
				*findings = append(*findings, report.Warnf(path+".target.entity_id",
					"service %q targets entity %q of domain %q; check the domains match", service, id, entityDomain))
			}
		}
	}

	if areaIDs, ok := target.Get("area_id"); ok {
		for _, id := range entityIDList(areaIDs) {
			if jinja.ContainsTemplate(id) {
				continue
			}
			areaExists, err := cache.AreaExists(ctx, id)
			if err != nil {
				return err
			}
			if !areaExists {
				*findings = append(*findings, report.Errorf(path+".target.area_id",
					"area %q does not exist", id))
			}
		}
	}
	return nil
}

// checkConditionRefs verifies a condition's entity references and recurses
// into nested combinator conditions (and/or/not carry a "conditions"
// list) at any depth.
func checkConditionRefs(ctx context.Context, condition *hayaml.Value, path string, cache *registry.Cache, findings *[]report.ValidationError) error {
	if !condition.IsMapping() {
		return nil
	}
	if err := checkEntityRefs(ctx, condition, path, cache, findings); err != nil {
		return err
	}
	nested, ok := condition.Get("conditions")
	if !ok || !nested.IsSequence() {
		return nil
	}
	for i, inner := range nested.Items {
		if err := checkConditionRefs(ctx, inner, fmt.Sprintf("%s.conditions[%d]", path, i), cache, findings); err != nil {
			return err
		}
	}
	return nil
}
