package session

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/suitewell/suitewell-backend/internal/types"
)

// Event is a client action accepted by the session event endpoint.
type Event string

const (
	EventStart         Event = "start"
	EventPause         Event = "pause"
	EventResume        Event = "resume"
	EventSkip          Event = "skip"
	EventEasier        Event = "easier"
	EventHarder        Event = "harder"
	EventCompleteBlock Event = "complete_block"
	EventRepLog        Event = "rep_log"
)

// Known reports whether the event name is part of the transition table.
// Unknown events are still logged to the audit trail, they just never
// mutate session state.
func Known(e Event) bool {
	switch e {
	case EventStart, EventPause, EventResume, EventSkip,
		EventEasier, EventHarder, EventCompleteBlock, EventRepLog:
		return true
	}
	return false
}

// Adaptation offsets move in half steps and are clamped to [-2, 2] no
// matter how many easier/harder events arrive.
const (
	AdaptationMin  = -2.0
	AdaptationMax  = 2.0
	adaptationStep = 0.5
)

// Update is the partial update to apply to the session row. Keys are
// column names. An empty update means the event was accepted but changed
// nothing (silent no-op).
type Update map[string]any

// Apply computes the state transition for one event. Pure: it reads the
// session and template, never mutates them, and performs no I/O.
//
// tmpl may be nil, either because the session has no template or the slug
// could not be resolved; skip/complete_block then degrade to a no-op
// rather than failing.
func Apply(sess *types.WorkoutSession, tmpl *types.WorkoutTemplate, event Event, payload map[string]any) Update {
	now := time.Now().UTC()
	switch event {
	case EventStart:
		return Update{
			"lifecycle_status": types.LifecycleRunning,
			"started_at":       now,
		}
	case EventPause:
		return Update{"lifecycle_status": types.LifecyclePaused}
	case EventResume:
		return Update{"lifecycle_status": types.LifecycleRunning}
	case EventSkip:
		return advance(sess, tmpl, now, false)
	case EventCompleteBlock:
		return advance(sess, tmpl, now, true)
	case EventEasier:
		return adjustAdaptation(sess, payload, -adaptationStep)
	case EventHarder:
		return adjustAdaptation(sess, payload, +adaptationStep)
	case EventRepLog:
		// Audit-only: the row it produced in the event log is the effect.
		return Update{}
	default:
		return Update{}
	}
}

// advance moves the session forward one exercise (or one whole block) and
// finishes the workout when it runs off the end of the template.
func advance(sess *types.WorkoutSession, tmpl *types.WorkoutTemplate, now time.Time, wholeBlock bool) Update {
	if tmpl == nil || len(tmpl.Blocks) == 0 {
		return Update{}
	}

	block := sess.CurrentBlock
	if block < 0 || block >= len(tmpl.Blocks) {
		// Out-of-range indices mean the workout is over, whatever got us here.
		return finish(now)
	}

	if !wholeBlock {
		if sess.CurrentExercise+1 < len(tmpl.Blocks[block].Exercises) {
			return Update{"current_exercise": sess.CurrentExercise + 1}
		}
	}

	if block+1 < len(tmpl.Blocks) {
		return Update{
			"current_block":    block + 1,
			"current_exercise": 0,
		}
	}

	return finish(now)
}

func finish(now time.Time) Update {
	return Update{
		"lifecycle_status": types.LifecycleDone,
		"interval_phase":   types.PhaseComplete,
		"ended_at":         now,
	}
}

func adjustAdaptation(sess *types.WorkoutSession, payload map[string]any, delta float64) Update {
	slug, _ := payload["exercise_slug"].(string)
	if slug == "" {
		return Update{}
	}

	current := map[string]float64{}
	if len(sess.Adaptations) > 0 {
		// A corrupt adaptations blob resets to empty rather than poisoning
		// every subsequent event.
		_ = json.Unmarshal(sess.Adaptations, &current)
	}

	v := current[slug] + delta
	if v < AdaptationMin {
		v = AdaptationMin
	}
	if v > AdaptationMax {
		v = AdaptationMax
	}
	current[slug] = v

	raw, err := json.Marshal(current)
	if err != nil {
		return Update{}
	}
	return Update{"adaptations": datatypes.JSON(raw)}
}
