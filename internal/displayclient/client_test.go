package displayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/suitewell/suitewell-backend/internal/sse"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type fakeBackend struct {
	t         *testing.T
	sessionID uuid.UUID

	mu     sync.Mutex
	sess   types.WorkoutSession
	tmpl   types.WorkoutTemplate
	feed   chan sse.FeedMessage
	fail   bool
	failCh chan struct{}
	srv    *httptest.Server
	hits   map[string]int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	slug := "hiit-45"
	b := &fakeBackend{
		t:         t,
		sessionID: uuid.New(),
		feed:      make(chan sse.FeedMessage, 16),
		failCh:    make(chan struct{}),
		hits:      map[string]int{},
	}
	b.sess = types.WorkoutSession{
		ID:              b.sessionID,
		TemplateSlug:    &slug,
		LifecycleStatus: types.LifecycleRunning,
		IntervalPhase:   types.PhaseWork,
		Adaptations:     datatypes.JSON([]byte(`{}`)),
	}
	b.tmpl = types.WorkoutTemplate{
		Slug: slug,
		Name: "HIIT 45",
		Blocks: []types.WorkoutBlock{{
			Name: "Round 1",
			Exercises: []types.TemplateExercise{
				{Name: "Burpees", WorkSeconds: 30, RestSeconds: 15},
				{Name: "Squats", WorkSeconds: 40, RestSeconds: 20},
			},
		}},
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	failing := b.fail
	b.mu.Unlock()
	if failing {
		http.Error(w, "down", http.StatusInternalServerError)
		return
	}

	switch r.URL.Path {
	case fmt.Sprintf("/api/sessions/%s", b.sessionID):
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(b.sess)
	case "/api/templates/hiit-45":
		json.NewEncoder(w).Encode(b.tmpl)
	case "/api/feed/stream":
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-b.failSignal():
				return
			case msg := <-b.feed:
				raw, _ := json.Marshal(msg)
				fmt.Fprintf(w, "event: message\ndata: %s\n\n", raw)
				flusher.Flush()
			}
		}
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) setSession(mut func(s *types.WorkoutSession)) types.WorkoutSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	mut(&b.sess)
	return b.sess
}

func (b *fakeBackend) pushUpdate() {
	b.mu.Lock()
	sess := b.sess
	b.mu.Unlock()
	b.feed <- sse.FeedMessage{
		Channel: sse.SessionChannel(b.sessionID),
		Event:   sse.FeedSessionUpdated,
		Data:    sess,
	}
}

// setFailing(true) also severs any open stream so the client notices.
func (b *fakeBackend) setFailing(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v && !b.fail {
		close(b.failCh)
	}
	if !v && b.fail {
		b.failCh = make(chan struct{})
	}
	b.fail = v
}

func (b *fakeBackend) failSignal() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failCh
}

func newTestClient(b *fakeBackend, tick time.Duration) *Client {
	return New(Config{
		BaseURL:       b.srv.URL,
		Token:         "test-token",
		SessionID:     b.sessionID,
		Surface:       SurfaceTV,
		TickInterval:  tick,
		RetryInterval: 20 * time.Millisecond,
	})
}

func waitFor(t *testing.T, cond func(View) bool, c *Client, what string) View {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		v := c.View()
		if cond(v) {
			return v
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s, view=%+v", what, c.View())
	return View{}
}

func TestInitialSnapshot(t *testing.T) {
	b := newFakeBackend(t)
	c := newTestClient(b, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	v := waitFor(t, func(v View) bool { return !v.LastSyncAt.IsZero() }, c, "initial sync")
	if v.Lifecycle != types.LifecycleRunning {
		t.Errorf("lifecycle=%q, want running", v.Lifecycle)
	}
	if v.ExerciseName != "Burpees" {
		t.Errorf("exercise=%q, want Burpees", v.ExerciseName)
	}
	if v.RemainingSeconds != 30 {
		t.Errorf("remaining=%d, want 30 (work seconds)", v.RemainingSeconds)
	}
	if v.Disconnected {
		t.Error("disconnected after successful snapshot")
	}
}

func TestFeedUpdateOverwritesState(t *testing.T) {
	b := newFakeBackend(t)
	c := newTestClient(b, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	waitFor(t, func(v View) bool { return !v.LastSyncAt.IsZero() }, c, "initial sync")

	b.setSession(func(s *types.WorkoutSession) {
		s.CurrentExercise = 1
		s.IntervalPhase = types.PhaseRest
	})
	b.pushUpdate()

	v := waitFor(t, func(v View) bool { return v.CurrentExercise == 1 }, c, "feed update")
	if v.Phase != types.PhaseRest {
		t.Errorf("phase=%q, want rest", v.Phase)
	}
	if v.ExerciseName != "Squats" {
		t.Errorf("exercise=%q, want Squats", v.ExerciseName)
	}
	if v.RemainingSeconds != 20 {
		t.Errorf("remaining=%d, want 20 (rest seconds)", v.RemainingSeconds)
	}
}

func TestUnchangedSnapshotKeepsCountdown(t *testing.T) {
	b := newFakeBackend(t)
	c := newTestClient(b, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	waitFor(t, func(v View) bool { return !v.LastSyncAt.IsZero() }, c, "initial sync")

	// Let the ticker burn a few seconds off.
	v := waitFor(t, func(v View) bool { return v.RemainingSeconds < 28 }, c, "ticks")

	// Same position, same phase: the countdown must not reset to 30.
	b.pushUpdate()
	time.Sleep(50 * time.Millisecond)
	after := c.View()
	if after.RemainingSeconds > v.RemainingSeconds {
		t.Errorf("countdown reset from %d to %d on unchanged snapshot",
			v.RemainingSeconds, after.RemainingSeconds)
	}
}

func TestTickOnlyWhileRunning(t *testing.T) {
	b := newFakeBackend(t)
	b.setSession(func(s *types.WorkoutSession) {
		s.LifecycleStatus = types.LifecyclePaused
	})
	c := newTestClient(b, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	v := waitFor(t, func(v View) bool { return !v.LastSyncAt.IsZero() }, c, "initial sync")

	time.Sleep(60 * time.Millisecond)
	if got := c.View().RemainingSeconds; got != v.RemainingSeconds {
		t.Errorf("countdown moved from %d to %d while paused", v.RemainingSeconds, got)
	}
}

func TestDisconnectedKeepsLastKnownView(t *testing.T) {
	b := newFakeBackend(t)
	c := newTestClient(b, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	waitFor(t, func(v View) bool { return !v.LastSyncAt.IsZero() }, c, "initial sync")

	b.setFailing(true)

	v := waitFor(t, func(v View) bool { return v.Disconnected }, c, "disconnect")
	if v.ExerciseName != "Burpees" {
		t.Errorf("lost last-known exercise, got %q", v.ExerciseName)
	}

	// Ticker keeps decrementing local values while offline.
	waitFor(t, func(after View) bool {
		return after.RemainingSeconds < v.RemainingSeconds
	}, c, "offline ticks")
}

func TestReconnectClearsDisconnected(t *testing.T) {
	b := newFakeBackend(t)
	c := newTestClient(b, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	waitFor(t, func(v View) bool { return !v.LastSyncAt.IsZero() }, c, "initial sync")

	b.setFailing(true)
	waitFor(t, func(v View) bool { return v.Disconnected }, c, "disconnect")

	b.setFailing(false)
	b.pushUpdate()
	waitFor(t, func(v View) bool { return !v.Disconnected }, c, "reconnect")
}
