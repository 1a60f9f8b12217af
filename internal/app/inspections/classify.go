// Package inspections classifies inspection comments and builds the batch
// requests that reply to, resolve, create or delete them.
package inspections

import (
	"time"

	"github.com/agisilaos/annofab-cli/internal/api"
)

func IsRoot(c api.Inspection) bool {
	return c.ParentInspectionID == nil
}

// UnansweredRoots returns the root comments that still ask the annotator to
// act and have no reply created at or after startedDatetime, the start of the
// current work session on the task. Input order is kept.
func UnansweredRoots(comments []api.Inspection, startedDatetime string) []api.Inspection {
	answered := map[string]struct{}{}
	for _, c := range comments {
		if c.ParentInspectionID == nil {
			continue
		}
		if notBefore(c.CreatedDatetime, startedDatetime) {
			answered[*c.ParentInspectionID] = struct{}{}
		}
	}
	out := []api.Inspection{}
	for _, c := range comments {
		if !IsRoot(c) || c.Status != api.InspectionStatusAnnotatorActionRequired {
			continue
		}
		if _, ok := answered[c.InspectionID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Unprocessed returns the root comments raised in the given phase and stage
// that are still annotator_action_required, whether or not they have replies.
func Unprocessed(comments []api.Inspection, phase api.TaskPhase, phaseStage int) []api.Inspection {
	out := []api.Inspection{}
	for _, c := range comments {
		if !IsRoot(c) || c.Status != api.InspectionStatusAnnotatorActionRequired {
			continue
		}
		if c.Phase != phase || c.PhaseStage != phaseStage {
			continue
		}
		out = append(out, c)
	}
	return out
}

// notBefore reports created >= started. Timestamps carry offsets, so they are
// compared as instants; unparsable values fall back to string order.
func notBefore(created, started string) bool {
	if started == "" {
		return false
	}
	ct, err1 := time.Parse(time.RFC3339Nano, created)
	st, err2 := time.Parse(time.RFC3339Nano, started)
	if err1 != nil || err2 != nil {
		return created >= started
	}
	return !ct.Before(st)
}
