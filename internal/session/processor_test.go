package session

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/suitewell/suitewell-backend/internal/types"
)

func twoBlockTemplate() *types.WorkoutTemplate {
	return &types.WorkoutTemplate{
		Slug: "hiit-45",
		Name: "HIIT 45",
		Blocks: []types.WorkoutBlock{
			{
				Name:   "Warmup",
				Rounds: 1,
				Exercises: []types.TemplateExercise{
					{Slug: "jumping-jacks", WorkSeconds: 30, RestSeconds: 10},
					{Slug: "high-knees", WorkSeconds: 30, RestSeconds: 10},
				},
			},
			{
				Name:   "Main",
				Rounds: 2,
				Exercises: []types.TemplateExercise{
					{Slug: "squat", WorkSeconds: 45, RestSeconds: 15},
				},
			},
		},
	}
}

func oneBlockTemplate() *types.WorkoutTemplate {
	return &types.WorkoutTemplate{
		Slug: "quick",
		Blocks: []types.WorkoutBlock{
			{
				Name: "Only",
				Exercises: []types.TemplateExercise{
					{Slug: "burpees"},
					{Slug: "plank"},
				},
			},
		},
	}
}

func newSession() *types.WorkoutSession {
	return &types.WorkoutSession{
		LifecycleStatus: types.LifecycleIdle,
		IntervalPhase:   types.PhasePrep,
	}
}

func adaptationsOf(t *testing.T, u Update) map[string]float64 {
	t.Helper()
	raw, ok := u["adaptations"].(datatypes.JSON)
	if !ok {
		t.Fatalf("update has no adaptations entry: %v", u)
	}
	out := map[string]float64{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal adaptations: %v", err)
	}
	return out
}

func TestApplyLifecycleEvents(t *testing.T) {
	cases := []struct {
		name       string
		event      Event
		wantStatus types.LifecycleStatus
		wantTimes  []string
	}{
		{name: "start", event: EventStart, wantStatus: types.LifecycleRunning, wantTimes: []string{"started_at"}},
		{name: "pause", event: EventPause, wantStatus: types.LifecyclePaused},
		{name: "resume", event: EventResume, wantStatus: types.LifecycleRunning},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := Apply(newSession(), nil, tc.event, nil)
			if got := u["lifecycle_status"]; got != tc.wantStatus {
				t.Fatalf("lifecycle_status=%v, want %v", got, tc.wantStatus)
			}
			for _, key := range tc.wantTimes {
				if _, ok := u[key]; !ok {
					t.Fatalf("expected %s in update, got %v", key, u)
				}
			}
		})
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	sess := newSession()
	sess.LifecycleStatus = types.LifecycleRunning

	paused := Apply(sess, nil, EventPause, nil)
	if len(paused) != 1 || paused["lifecycle_status"] != types.LifecyclePaused {
		t.Fatalf("pause touched more than lifecycle_status: %v", paused)
	}

	resumed := Apply(sess, nil, EventResume, nil)
	if len(resumed) != 1 || resumed["lifecycle_status"] != types.LifecycleRunning {
		t.Fatalf("resume touched more than lifecycle_status: %v", resumed)
	}
}

func TestApplySkip(t *testing.T) {
	t.Run("advances exercise within block", func(t *testing.T) {
		sess := newSession()
		u := Apply(sess, oneBlockTemplate(), EventSkip, nil)
		if u["current_exercise"] != 1 {
			t.Fatalf("current_exercise=%v, want 1", u["current_exercise"])
		}
		if _, ok := u["current_block"]; ok {
			t.Fatalf("skip within block must not touch current_block: %v", u)
		}
	})

	t.Run("advances to next block at end of block", func(t *testing.T) {
		sess := newSession()
		sess.CurrentExercise = 1
		u := Apply(sess, twoBlockTemplate(), EventSkip, nil)
		if u["current_block"] != 1 || u["current_exercise"] != 0 {
			t.Fatalf("got %v, want block=1 exercise=0", u)
		}
	})

	t.Run("finishes on last exercise of last block", func(t *testing.T) {
		sess := newSession()
		sess.LifecycleStatus = types.LifecycleRunning
		sess.CurrentExercise = 1
		u := Apply(sess, oneBlockTemplate(), EventSkip, nil)
		if u["lifecycle_status"] != types.LifecycleDone {
			t.Fatalf("lifecycle_status=%v, want done", u["lifecycle_status"])
		}
		if _, ok := u["ended_at"]; !ok {
			t.Fatalf("finish must set ended_at: %v", u)
		}
		if u["interval_phase"] != types.PhaseComplete {
			t.Fatalf("interval_phase=%v, want complete", u["interval_phase"])
		}
	})

	t.Run("finishes when indices already out of range", func(t *testing.T) {
		sess := newSession()
		sess.CurrentBlock = 7
		u := Apply(sess, oneBlockTemplate(), EventSkip, nil)
		if u["lifecycle_status"] != types.LifecycleDone {
			t.Fatalf("lifecycle_status=%v, want done", u["lifecycle_status"])
		}
	})

	t.Run("no template is a silent no-op", func(t *testing.T) {
		u := Apply(newSession(), nil, EventSkip, nil)
		if len(u) != 0 {
			t.Fatalf("expected empty update, got %v", u)
		}
	})
}

func TestApplyCompleteBlock(t *testing.T) {
	t.Run("moves to next block regardless of exercise position", func(t *testing.T) {
		sess := newSession()
		u := Apply(sess, twoBlockTemplate(), EventCompleteBlock, nil)
		if u["current_block"] != 1 || u["current_exercise"] != 0 {
			t.Fatalf("got %v, want block=1 exercise=0", u)
		}
	})

	t.Run("finishes on last block", func(t *testing.T) {
		sess := newSession()
		sess.CurrentBlock = 1
		u := Apply(sess, twoBlockTemplate(), EventCompleteBlock, nil)
		if u["lifecycle_status"] != types.LifecycleDone {
			t.Fatalf("lifecycle_status=%v, want done", u["lifecycle_status"])
		}
	})

	t.Run("no template is a silent no-op", func(t *testing.T) {
		u := Apply(newSession(), nil, EventCompleteBlock, nil)
		if len(u) != 0 {
			t.Fatalf("expected empty update, got %v", u)
		}
	})
}

func TestApplyAdaptations(t *testing.T) {
	t.Run("harder clamps at upper bound", func(t *testing.T) {
		sess := newSession()
		payload := map[string]any{"exercise_slug": "squat"}
		// Four in a row lands exactly on the boundary, a fifth must not pass it.
		for i := 0; i < 5; i++ {
			u := Apply(sess, nil, EventHarder, payload)
			sess.Adaptations = u["adaptations"].(datatypes.JSON)
		}
		got := adaptationsOf(t, Update{"adaptations": sess.Adaptations})
		if got["squat"] != AdaptationMax {
			t.Fatalf("adaptations.squat=%v, want %v", got["squat"], AdaptationMax)
		}
	})

	t.Run("easier clamps at lower bound", func(t *testing.T) {
		sess := newSession()
		payload := map[string]any{"exercise_slug": "squat"}
		for i := 0; i < 6; i++ {
			u := Apply(sess, nil, EventEasier, payload)
			sess.Adaptations = u["adaptations"].(datatypes.JSON)
		}
		got := adaptationsOf(t, Update{"adaptations": sess.Adaptations})
		if got["squat"] != AdaptationMin {
			t.Fatalf("adaptations.squat=%v, want %v", got["squat"], AdaptationMin)
		}
	})

	t.Run("single step is half a point", func(t *testing.T) {
		u := Apply(newSession(), nil, EventHarder, map[string]any{"exercise_slug": "plank"})
		got := adaptationsOf(t, u)
		if got["plank"] != 0.5 {
			t.Fatalf("adaptations.plank=%v, want 0.5", got["plank"])
		}
	})

	t.Run("missing exercise_slug mutates nothing", func(t *testing.T) {
		u := Apply(newSession(), nil, EventEasier, map[string]any{"reps": 10})
		if len(u) != 0 {
			t.Fatalf("expected empty update, got %v", u)
		}
	})

	t.Run("preserves other slugs", func(t *testing.T) {
		sess := newSession()
		sess.Adaptations = datatypes.JSON(`{"squat":1}`)
		u := Apply(sess, nil, EventHarder, map[string]any{"exercise_slug": "plank"})
		got := adaptationsOf(t, u)
		if got["squat"] != 1 || got["plank"] != 0.5 {
			t.Fatalf("got %v, want squat=1 plank=0.5", got)
		}
	})
}

func TestApplyNoOpEvents(t *testing.T) {
	cases := []struct {
		name    string
		event   Event
		payload map[string]any
	}{
		{name: "rep_log", event: EventRepLog, payload: map[string]any{"reps": 12}},
		{name: "unrecognized", event: Event("jazzercise"), payload: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := Apply(newSession(), twoBlockTemplate(), tc.event, tc.payload)
			if len(u) != 0 {
				t.Fatalf("expected empty update, got %v", u)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, e := range []Event{EventStart, EventPause, EventResume, EventSkip, EventEasier, EventHarder, EventCompleteBlock, EventRepLog} {
		if !Known(e) {
			t.Fatalf("Known(%q)=false, want true", e)
		}
	}
	if Known(Event("jazzercise")) {
		t.Fatalf("Known(jazzercise)=true, want false")
	}
}
