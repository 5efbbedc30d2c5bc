package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/repos"
)

// StationClaims identifies an authenticated display surface.
type StationClaims struct {
	StationID  uuid.UUID
	PropertyID uuid.UUID
	Surface    string
}

// AuthService pairs display stations and validates their bearer tokens.
// Pairing codes are provisioned per station and only their bcrypt hash is
// stored.
type AuthService interface {
	PairStation(ctx context.Context, stationID uuid.UUID, pairingCode string) (string, error)
	ParseToken(tokenString string) (*StationClaims, error)
	HashPairingCode(code string) (string, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	stationRepo  repos.WorkoutStationRepo
	jwtSecretKey string
	tokenTTL     time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stationRepo repos.WorkoutStationRepo,
	jwtSecretKey string,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		stationRepo:  stationRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
	}
}

func (as *authService) PairStation(ctx context.Context, stationID uuid.UUID, pairingCode string) (string, error) {
	if stationID == uuid.Nil || pairingCode == "" {
		return "", fmt.Errorf("%w: station id and pairing code required", ErrInvalidInput)
	}

	station, err := as.stationRepo.GetByID(ctx, nil, stationID)
	if err != nil {
		return "", fmt.Errorf("load station: %w", err)
	}
	if station == nil {
		return "", ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(station.PairingCodeHash), []byte(pairingCode)); err != nil {
		as.log.Warn("pairing code mismatch", "stationID", stationID)
		return "", ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := as.stationRepo.UpdateFields(ctx, nil, stationID, map[string]any{
		"paired_at":  now,
		"updated_at": now,
	}); err != nil {
		return "", fmt.Errorf("record pairing: %w", err)
	}

	claims := jwt.MapClaims{
		"station_id":  station.ID.String(),
		"property_id": station.PropertyID.String(),
		"surface":     string(station.Surface),
		"iat":         now.Unix(),
		"exp":         now.Add(as.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign station token: %w", err)
	}
	return signed, nil
}

func (as *authService) ParseToken(tokenString string) (*StationClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}

	stationID, err := parseUUIDClaim(claims, "station_id")
	if err != nil {
		return nil, ErrUnauthorized
	}
	propertyID, err := parseUUIDClaim(claims, "property_id")
	if err != nil {
		return nil, ErrUnauthorized
	}
	surface, _ := claims["surface"].(string)

	return &StationClaims{
		StationID:  stationID,
		PropertyID: propertyID,
		Surface:    surface,
	}, nil
}

func (as *authService) HashPairingCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pairing code: %w", err)
	}
	return string(hash), nil
}

func parseUUIDClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	return uuid.Parse(raw)
}
