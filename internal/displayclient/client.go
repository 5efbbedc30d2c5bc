package displayclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/sse"
	"github.com/suitewell/suitewell-backend/internal/types"
)

// Surface names which display this client drives. All three surfaces run
// the same sync contract; only rendering differs.
type Surface string

const (
	SurfaceTV     Surface = "tv"
	SurfaceTablet Surface = "tablet"
	SurfaceRemote Surface = "remote"
)

// Seconds shown for the prep phase, which has no template timing.
const defaultPrepSeconds = 10

type Config struct {
	BaseURL   string
	Token     string
	SessionID uuid.UUID
	Surface   Surface
	Log       *logger.Logger

	HTTPClient *http.Client
	// TickInterval drives the cosmetic countdown; 1s in production,
	// shorter in tests.
	TickInterval time.Duration
	// RetryInterval is the flat delay between reconnect attempts.
	RetryInterval time.Duration
}

// View is the render-ready snapshot a surface shows. RemainingSeconds is
// purely cosmetic between authoritative syncs: it is overwritten, never
// trusted, whenever fresh data arrives.
type View struct {
	Lifecycle        types.LifecycleStatus
	Phase            types.IntervalPhase
	CurrentBlock     int
	CurrentExercise  int
	ExerciseName     string
	RemainingSeconds int
	Adaptations      map[string]float64
	Disconnected     bool
	LastSyncAt       time.Time
}

// Client mirrors one session row for one display surface. Each surface
// owns its own Client; there is no shared state between surfaces beyond
// the server row itself.
type Client struct {
	cfg  Config
	log  *logger.Logger
	http *http.Client

	mu   sync.Mutex
	view View
	tmpl *types.WorkoutTemplate
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		cfg:  cfg,
		log:  log.With("surface", string(cfg.Surface), "sessionID", cfg.SessionID),
		http: cfg.HTTPClient,
		view: View{Lifecycle: types.LifecycleIdle, Phase: types.PhasePrep},
	}
}

// View returns the current render snapshot.
func (c *Client) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Run drives the sync loop until ctx is cancelled: one snapshot fetch,
// then change-feed streaming with flat-interval reconnects, with the
// cosmetic tick running the whole time. Always returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	if err := c.refresh(ctx); err != nil {
		c.log.Warn("initial snapshot failed, starting in local mode", "error", err)
		c.markDisconnected()
	}

	go c.tickLoop(ctx)

	for {
		if err := c.stream(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("feed stream lost", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RetryInterval):
		}
		// Refetch before reconnecting: a working API clears the offline
		// flag even when the stream stays down, and a dead API marks it.
		if err := c.refresh(ctx); err != nil {
			c.markDisconnected()
		}
	}
}

func (c *Client) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick decrements the local countdown while the session runs. The result
// is cosmetic; the next authoritative sync replaces it.
func (c *Client) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.Lifecycle == types.LifecycleRunning && c.view.RemainingSeconds > 0 {
		c.view.RemainingSeconds--
	}
}

// refresh pulls the authoritative snapshot (and the template, when it is
// not cached yet).
func (c *Client) refresh(ctx context.Context) error {
	var sess types.WorkoutSession
	path := fmt.Sprintf("/api/sessions/%s", c.cfg.SessionID)
	if err := c.getJSON(ctx, path, &sess); err != nil {
		return err
	}
	if err := c.ensureTemplate(ctx, &sess); err != nil {
		c.log.Warn("template fetch failed, countdown timing degraded", "error", err)
	}
	c.applySnapshot(&sess)
	return nil
}

func (c *Client) ensureTemplate(ctx context.Context, sess *types.WorkoutSession) error {
	if sess.TemplateSlug == nil {
		return nil
	}
	c.mu.Lock()
	cached := c.tmpl != nil && c.tmpl.Slug == *sess.TemplateSlug
	c.mu.Unlock()
	if cached {
		return nil
	}

	var tmpl types.WorkoutTemplate
	if err := c.getJSON(ctx, "/api/templates/"+*sess.TemplateSlug, &tmpl); err != nil {
		return err
	}
	c.mu.Lock()
	c.tmpl = &tmpl
	c.mu.Unlock()
	return nil
}

// applySnapshot overwrites local state with authoritative values. The
// countdown resets only when the position or phase moved, so a snapshot
// that changed nothing does not restart a mid-exercise timer.
func (c *Client) applySnapshot(sess *types.WorkoutSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.view
	c.view.Lifecycle = sess.LifecycleStatus
	c.view.Phase = sess.IntervalPhase
	c.view.CurrentBlock = sess.CurrentBlock
	c.view.CurrentExercise = sess.CurrentExercise
	c.view.Disconnected = false
	c.view.LastSyncAt = time.Now()

	c.view.Adaptations = map[string]float64{}
	if len(sess.Adaptations) > 0 {
		_ = json.Unmarshal(sess.Adaptations, &c.view.Adaptations)
	}

	moved := prev.LastSyncAt.IsZero() ||
		prev.CurrentBlock != sess.CurrentBlock ||
		prev.CurrentExercise != sess.CurrentExercise ||
		prev.Phase != sess.IntervalPhase
	if moved {
		c.view.RemainingSeconds = c.phaseSecondsLocked(sess)
	}

	c.view.ExerciseName = ""
	if ex := c.tmpl.ExerciseAt(sess.CurrentBlock, sess.CurrentExercise); ex != nil {
		c.view.ExerciseName = ex.Name
	}
}

// phaseSecondsLocked derives the authoritative countdown length for the
// current phase from the template. Callers hold c.mu.
func (c *Client) phaseSecondsLocked(sess *types.WorkoutSession) int {
	switch sess.IntervalPhase {
	case types.PhasePrep:
		return defaultPrepSeconds
	case types.PhaseComplete:
		return 0
	}
	ex := c.tmpl.ExerciseAt(sess.CurrentBlock, sess.CurrentExercise)
	if ex == nil {
		return 0
	}
	if sess.IntervalPhase == types.PhaseRest {
		return ex.RestSeconds
	}
	return ex.WorkSeconds
}

func (c *Client) markDisconnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Disconnected = true
}

// stream holds the SSE connection open and applies each feed message.
// Returns when the connection drops or ctx ends.
func (c *Client) stream(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/feed/stream?channels=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), sse.SessionChannel(c.cfg.SessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "text/event-stream")

	// The stream stays open indefinitely; the configured client timeout
	// would kill it, so streaming uses a transport-only client.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed stream status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		c.handleFeedData(ctx, strings.TrimPrefix(line, "data: "))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("feed stream closed")
}

func (c *Client) handleFeedData(ctx context.Context, data string) {
	var msg struct {
		Channel string          `json:"channel"`
		Event   sse.FeedEvent   `json:"event"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		c.log.Warn("bad feed payload", "error", err)
		return
	}
	if msg.Event != sse.FeedSessionUpdated {
		return
	}
	var sess types.WorkoutSession
	if err := json.Unmarshal(msg.Data, &sess); err != nil {
		c.log.Warn("bad session row in feed", "error", err)
		return
	}
	if sess.ID != c.cfg.SessionID {
		return
	}
	if err := c.ensureTemplate(ctx, &sess); err != nil {
		c.log.Warn("template fetch failed, countdown timing degraded", "error", err)
	}
	c.applySnapshot(&sess)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
