package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/repos"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type StationService interface {
	Create(ctx context.Context, input CreateStationInput) (*types.WorkoutStation, error)
	Get(ctx context.Context, id uuid.UUID) (*types.WorkoutStation, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*types.WorkoutStation, error)
}

type CreateStationInput struct {
	PropertyID  uuid.UUID
	Room        string
	Surface     types.SurfaceKind
	PairingCode string
}

type stationService struct {
	db           *gorm.DB
	log          *logger.Logger
	stationRepo  repos.WorkoutStationRepo
	propertyRepo repos.PropertyRepo
	auth         AuthService
}

func NewStationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stationRepo repos.WorkoutStationRepo,
	propertyRepo repos.PropertyRepo,
	auth AuthService,
) StationService {
	return &stationService{
		db:           db,
		log:          baseLog.With("service", "StationService"),
		stationRepo:  stationRepo,
		propertyRepo: propertyRepo,
		auth:         auth,
	}
}

func (s *stationService) Create(ctx context.Context, input CreateStationInput) (*types.WorkoutStation, error) {
	input.Room = strings.TrimSpace(input.Room)
	if input.PropertyID == uuid.Nil || input.Room == "" {
		return nil, fmt.Errorf("%w: property_id and room required", ErrInvalidInput)
	}
	if !types.ValidSurface(input.Surface) {
		return nil, fmt.Errorf("%w: unknown surface %q", ErrInvalidInput, input.Surface)
	}
	if len(input.PairingCode) < 6 {
		return nil, fmt.Errorf("%w: pairing code must be at least 6 characters", ErrInvalidInput)
	}

	prop, err := s.propertyRepo.GetByID(ctx, nil, input.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("load property: %w", err)
	}
	if prop == nil {
		return nil, ErrNotFound
	}

	hash, err := s.auth.HashPairingCode(input.PairingCode)
	if err != nil {
		return nil, err
	}

	station := &types.WorkoutStation{
		ID:              uuid.New(),
		PropertyID:      input.PropertyID,
		Room:            input.Room,
		Surface:         input.Surface,
		PairingCodeHash: hash,
	}
	if _, err := s.stationRepo.Create(ctx, nil, []*types.WorkoutStation{station}); err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}
	return station, nil
}

func (s *stationService) Get(ctx context.Context, id uuid.UUID) (*types.WorkoutStation, error) {
	station, err := s.stationRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load station: %w", err)
	}
	if station == nil {
		return nil, ErrNotFound
	}
	return station, nil
}

func (s *stationService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*types.WorkoutStation, error) {
	stations, err := s.stationRepo.ListByPropertyID(ctx, nil, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}
