package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/repos"
	"github.com/suitewell/suitewell-backend/internal/session"
	"github.com/suitewell/suitewell-backend/internal/sse"
	"github.com/suitewell/suitewell-backend/internal/types"
)

// SessionService is the sole mutation entry point for workout session
// state. Dispatch appends the audit row and applies the processor's
// partial update in a single transaction, then pushes the fresh row onto
// the change feed.
type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*types.WorkoutSession, error)
	Get(ctx context.Context, id uuid.UUID) (*types.WorkoutSession, error)
	ListActive(ctx context.Context, propertyID uuid.UUID) ([]*types.WorkoutSession, error)
	Dispatch(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]any) (*DispatchResult, error)
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*types.SessionEvent, error)
}

type CreateSessionInput struct {
	PropertyID   uuid.UUID
	StationID    *uuid.UUID
	TemplateSlug *string
}

type DispatchResult struct {
	Event   string         `json:"event"`
	Updates session.Update `json:"updates"`
}

// errStaleRevision aborts the dispatch transaction when the optimistic
// revision check matches zero rows; the outer loop refetches and retries.
var errStaleRevision = errors.New("stale session revision")

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.WorkoutSessionRepo
	eventRepo   repos.SessionEventRepo
	templates   TemplateService
	emitter     FeedEmitter
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.WorkoutSessionRepo,
	eventRepo repos.SessionEventRepo,
	templates TemplateService,
	emitter FeedEmitter,
) SessionService {
	return &sessionService{
		db:          db,
		log:         baseLog.With("service", "SessionService"),
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		templates:   templates,
		emitter:     emitter,
	}
}

func (s *sessionService) Create(ctx context.Context, input CreateSessionInput) (*types.WorkoutSession, error) {
	if input.PropertyID == uuid.Nil {
		return nil, fmt.Errorf("%w: property_id required", ErrInvalidInput)
	}
	if input.TemplateSlug != nil {
		if _, ok := s.templates.Get(*input.TemplateSlug); !ok {
			return nil, fmt.Errorf("%w: unknown template %q", ErrInvalidInput, *input.TemplateSlug)
		}
	}

	sess := &types.WorkoutSession{
		ID:              uuid.New(),
		PropertyID:      input.PropertyID,
		StationID:       input.StationID,
		LifecycleStatus: types.LifecycleIdle,
		IntervalPhase:   types.PhasePrep,
		TemplateSlug:    input.TemplateSlug,
		Adaptations:     datatypes.JSON(`{}`),
	}
	if _, err := s.sessionRepo.Create(ctx, nil, []*types.WorkoutSession{sess}); err != nil {
		return nil, fmt.Errorf("create workout session: %w", err)
	}
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*types.WorkoutSession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load workout session: %w", err)
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

// ListActive returns the property's sessions that have not finished,
// newest first. Tablets use it to offer resuming an in-progress workout.
func (s *sessionService) ListActive(ctx context.Context, propertyID uuid.UUID) ([]*types.WorkoutSession, error) {
	if propertyID == uuid.Nil {
		return nil, fmt.Errorf("%w: property id required", ErrInvalidInput)
	}
	sessions, err := s.sessionRepo.ListActiveByPropertyID(ctx, nil, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) Dispatch(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]any) (*DispatchResult, error) {
	event = strings.TrimSpace(event)
	if event == "" {
		return nil, fmt.Errorf("%w: event name required", ErrInvalidInput)
	}
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session id required", ErrInvalidInput)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload not serializable", ErrInvalidInput)
	}

	ev := session.Event(event)
	if !session.Known(ev) {
		s.log.Warn("unrecognized session event", "event", event, "sessionID", sessionID)
	}

	// The optimistic revision check can lose to a concurrent writer; one
	// refetch-and-retry absorbs the common remote-vs-tablet race before
	// surfacing a conflict.
	for attempt := 0; attempt < 2; attempt++ {
		sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load workout session: %w", err)
		}
		if sess == nil {
			return nil, ErrNotFound
		}

		var tmpl *types.WorkoutTemplate
		if sess.TemplateSlug != nil {
			var ok bool
			tmpl, ok = s.templates.Get(*sess.TemplateSlug)
			if !ok {
				// Silent degrade: position events become no-ops, the event row is still written.
				s.log.Warn("session references unknown template", "template", *sess.TemplateSlug, "sessionID", sessionID)
			}
		}

		updates := session.Update{}
		if session.Known(ev) {
			updates = session.Apply(sess, tmpl, ev, payload)
		}

		txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			row := &types.SessionEvent{
				ID:        uuid.New(),
				SessionID: sess.ID,
				Event:     event,
				Payload:   datatypes.JSON(payloadJSON),
			}
			if _, err := s.eventRepo.Append(ctx, tx, []*types.SessionEvent{row}); err != nil {
				return fmt.Errorf("append session event: %w", err)
			}
			if len(updates) == 0 {
				return nil
			}
			applied, err := s.sessionRepo.UpdateWithRevision(ctx, tx, sess.ID, sess.Revision, map[string]any(updates))
			if err != nil {
				return fmt.Errorf("apply session update: %w", err)
			}
			if !applied {
				return errStaleRevision
			}
			return nil
		})
		if txErr != nil {
			if errors.Is(txErr, errStaleRevision) {
				s.log.Debug("session revision moved, retrying dispatch", "sessionID", sessionID, "event", event, "attempt", attempt)
				continue
			}
			return nil, fmt.Errorf("dispatch %q: %w", event, txErr)
		}

		s.publish(ctx, sessionID, event, payload)
		return &DispatchResult{Event: event, Updates: updates}, nil
	}

	return nil, fmt.Errorf("dispatch %q: %w", event, ErrConflict)
}

func (s *sessionService) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*types.SessionEvent, error) {
	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load workout session: %w", err)
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	events, err := s.eventRepo.ListBySessionID(ctx, nil, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list session events: %w", err)
	}
	return events, nil
}

// publish pushes the authoritative row onto the change feed. Feed
// delivery is best effort: a failed emit never fails the dispatch.
func (s *sessionService) publish(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]any) {
	if s.emitter == nil {
		return
	}
	fresh, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil || fresh == nil {
		s.log.Warn("could not reload session for feed publish", "sessionID", sessionID, "error", err)
		return
	}
	channel := sse.SessionChannel(sessionID)
	s.emitter.Emit(ctx, sse.FeedMessage{
		Channel: channel,
		Event:   sse.FeedSessionUpdated,
		Data:    fresh,
	})
	s.emitter.Emit(ctx, sse.FeedMessage{
		Channel: channel,
		Event:   sse.FeedSessionEventLogged,
		Data: map[string]any{
			"session_id": sessionID,
			"event":      event,
			"payload":    payload,
		},
	})
}
