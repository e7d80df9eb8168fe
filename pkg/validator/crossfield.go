package validator

// # Cross-Field Consistency Rules
//
// Pure rules over the normalized document that relate two or more fields
// of one trigger, one action, or the top level. Rules fire per list index
// and embed the index in the error path, so an LLM caller can fix every
// finding in one round trip. Emission order follows document order.

import (
	"fmt"
	"regexp"

	"github.com/hassops/ha-guard/pkg/hayaml"
	"github.com/hassops/ha-guard/pkg/jinja"
	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/report"
)

var crossFieldLog = logger.New("validator:crossfield")

// timePattern matches clock times like 7:30, 07:30 and 07:30:15.
var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

var delayKeys = map[string]bool{
	"hours":        true,
	"minutes":      true,
	"seconds":      true,
	"milliseconds": true,
	"days":         true,
}

var repeatLoopKinds = []string{"count", "while", "until", "for_each"}

// CheckCrossField runs every cross-field rule over doc, which must
// already be normalized. Findings come back in document order.
func CheckCrossField(doc *hayaml.Value) []report.ValidationError {
	if !doc.IsMapping() {
		return nil
	}
	var findings []report.ValidationError

	checkTopLevel(doc, &findings)
	if triggers, ok := doc.Get("trigger"); ok && triggers.IsSequence() {
		for i, trigger := range triggers.Items {
			checkTrigger(trigger, fmt.Sprintf("trigger[%d]", i), &findings)
		}
	}
	for _, key := range []string{"action", "sequence"} {
		if actions, ok := doc.Get(key); ok && actions.IsSequence() {
			for i, action := range actions.Items {
				checkAction(action, fmt.Sprintf("%s[%d]", key, i), &findings)
			}
		}
	}

	crossFieldLog.Printf("Cross-field check complete: %d findings", len(findings))
	return findings
}

func checkTopLevel(doc *hayaml.Value, findings *[]report.ValidationError) {
	mode := doc.GetString("mode")
	if (mode == "queued" || mode == "parallel") && !doc.Has("max") {
		*findings = append(*findings, report.Warnf("mode",
			"mode %q runs without a limit; set \"max\" to bound concurrent runs", mode))
	}
	if doc.Has("max_exceeded") && !doc.Has("max") {
		*findings = append(*findings, report.Warnf("max_exceeded",
			`"max_exceeded" has no effect without "max"`))
	}
}

func checkTrigger(trigger *hayaml.Value, path string, findings *[]report.ValidationError) {
	if !trigger.IsMapping() {
		return
	}
	switch trigger.GetString("platform") {
	case "numeric_state":
		if !trigger.Has("above") && !trigger.Has("below") {
			*findings = append(*findings, report.Errorf(path,
				`numeric_state trigger needs a threshold: set "above", "below", or both`))
		}
	case "state":
		to, hasTo := trigger.Get("to")
		from, hasFrom := trigger.Get("from")
		if hasTo && hasFrom && to.IsString() && from.IsString() && to.Str == from.Str {
			*findings = append(*findings, report.Warnf(path,
				"state trigger with to == from (%q) will never fire", to.Str))
		}
	case "time":
		at := trigger.GetString("at")
		if at != "" && !validTriggerTime(at) {
			*findings = append(*findings, report.Warnf(path+".at",
				`"at" should be HH:MM, HH:MM:SS, or an input_datetime entity, got %q`, at))
		}
	case "sun":
		event := trigger.GetString("event")
		if event != "sunrise" && event != "sunset" {
			*findings = append(*findings, report.Errorf(path+".event",
				`sun trigger event must be "sunrise" or "sunset", got %q`, event))
		}
	}
}

func validTriggerTime(at string) bool {
	if timePattern.MatchString(at) {
		return true
	}
	return len(at) > len("input_datetime.") && at[:len("input_datetime.")] == "input_datetime."
}

func checkAction(action *hayaml.Value, path string, findings *[]report.ValidationError) {
	if !action.IsMapping() {
		return
	}
	if delay, ok := action.Get("delay"); ok {
		checkDelay(delay, path+".delay", findings)
	}
	if choose, ok := action.Get("choose"); ok && choose.IsSequence() {
		for i, branch := range choose.Items {
			checkChooseBranch(branch, fmt.Sprintf("%s.choose[%d]", path, i), findings)
		}
	}
	if repeat, ok := action.Get("repeat"); ok && repeat.IsMapping() {
		checkRepeat(repeat, path+".repeat", findings)
	}
}

func checkDelay(delay *hayaml.Value, path string, findings *[]report.ValidationError) {
	switch {
	case delay.IsString():
		if timePattern.MatchString(delay.Str) || jinja.ContainsTemplate(delay.Str) {
			return
		}
		*findings = append(*findings, report.Warnf(path,
			"delay %q is not HH:MM[:SS] and does not look like a template", delay.Str))
	case delay.IsMapping():
		for _, e := range delay.Entries {
			if !delayKeys[e.Key] {
				*findings = append(*findings, report.Warnf(path,
					"delay has unknown key %q; expected hours, minutes, seconds, milliseconds, or days", e.Key))
			}
		}
	}
}

func checkChooseBranch(branch *hayaml.Value, path string, findings *[]report.ValidationError) {
	if !branch.IsMapping() {
		return
	}
	if !branch.Has("conditions") && !branch.Has("condition") {
		*findings = append(*findings, report.Errorf(path,
			"choose branch is missing conditions"))
	}
	if !branch.Has("sequence") {
		*findings = append(*findings, report.Errorf(path,
			"choose branch is missing sequence"))
	}
}

func checkRepeat(repeat *hayaml.Value, path string, findings *[]report.ValidationError) {
	var present []string
	for _, kind := range repeatLoopKinds {
		if repeat.Has(kind) {
			present = append(present, kind)
		}
	}
	switch {
	case len(present) == 0:
		*findings = append(*findings, report.Errorf(path,
			"repeat needs a loop type: one of count, while, until, for_each"))
	case len(present) > 1:
		*findings = append(*findings, report.Warnf(path,
			"repeat has multiple loop types (%v); only one applies", present))
	}
	if !repeat.Has("sequence") {
		*findings = append(*findings, report.Errorf(path,
			"repeat is missing sequence"))
	}
}
