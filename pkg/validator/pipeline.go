// Package validator wires the validation stages into one pipeline:
// parse, normalize, then structural, cross-field and template checks
// merged into a single result, with an optional semantic pass against the
// live registry cache.
package validator

import (
	"context"

	"github.com/hassops/ha-guard/pkg/hayaml"
	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/registry"
	"github.com/hassops/ha-guard/pkg/report"
	"github.com/hassops/ha-guard/pkg/schema"
)

var pipelineLog = logger.New("validator:pipeline")

// Pipeline validates documents against a schema registry. Construct one
// per process; it is stateless beyond the registry and safe to share.
type Pipeline struct {
	schemas *schema.Registry
}

// NewPipeline builds a pipeline over the given schema registry.
func NewPipeline(schemas *schema.Registry) *Pipeline {
	return &Pipeline{schemas: schemas}
}

// NewDefaultPipeline builds a pipeline with the built-in HA schemas.
func NewDefaultPipeline() (*Pipeline, error) {
	r, err := schema.NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}
	return NewPipeline(r), nil
}

// Schemas exposes the underlying registry, for listing schema names.
func (p *Pipeline) Schemas() *schema.Registry {
	return p.schemas
}

// Validate runs the static stages over source. An unknown schema name is
// a caller bug and comes back as a plain error with no result. Parse
// failures and non-mapping documents short-circuit into a single-error
// result; otherwise structural, cross-field and template findings are
// merged, all stages running unconditionally so every problem surfaces
// in one pass.
func (p *Pipeline) Validate(schemaName string, source []byte) (*report.Result, error) {
	// Resolve the schema before touching the document so UnknownSchema
	// never turns into a validation result.
	if _, err := p.schemas.Get(schemaName); err != nil {
		return nil, err
	}

	doc, err := hayaml.Parse(source)
	if err != nil {
		pipelineLog.Printf("Parse failure: %v", err)
		return report.NewResult(schemaName, []report.ValidationError{
			report.Errorf("", "%v", err),
		}), nil
	}
	if !doc.IsMapping() {
		return report.NewResult(schemaName, []report.ValidationError{
			report.Errorf("", "top-level value must be a mapping, got %s", doc.Kind),
		}), nil
	}

	normalized := Normalize(doc)

	result, err := p.schemas.Validate(schemaName, normalized)
	if err != nil {
		return nil, err
	}
	result.Merge(report.NewResult(schemaName, CheckCrossField(normalized)))
	result.Merge(report.NewResult(schemaName, CheckTemplates(normalized)))

	pipelineLog.Printf("Validation of %q complete: valid=%v errors=%d warnings=%d",
		schemaName, result.Valid, len(result.Errors), len(result.Warnings))
	return result, nil
}

// ValidateLive runs Validate and then the semantic pass. The static
// result always stands on its own: a registry failure is returned as err
// with the static result intact, never folded into its findings. The
// semantic pass is skipped (nil result) when the document did not parse
// into a mapping.
func (p *Pipeline) ValidateLive(ctx context.Context, schemaName string, source []byte, cache *registry.Cache) (static, semantic *report.Result, err error) {
	static, err = p.Validate(schemaName, source)
	if err != nil {
		return nil, nil, err
	}

	doc, perr := hayaml.Parse(source)
	if perr != nil || !doc.IsMapping() {
		return static, nil, nil
	}
	normalized := Normalize(doc)

	semantic, err = CheckSemantic(ctx, schemaName, normalized, cache)
	if err != nil {
		return static, nil, err
	}
	return static, semantic, nil
}
