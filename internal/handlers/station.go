package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suitewell/suitewell-backend/internal/services"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type StationHandler struct {
	authService     services.AuthService
	stationService  services.StationService
	propertyService services.PropertyService
}

func NewStationHandler(
	authService services.AuthService,
	stationService services.StationService,
	propertyService services.PropertyService,
) *StationHandler {
	return &StationHandler{
		authService:     authService,
		stationService:  stationService,
		propertyService: propertyService,
	}
}

// Pair exchanges a station id + pairing code for a bearer token.
func (sh *StationHandler) Pair(c *gin.Context) {
	var body struct {
		StationID   string `json:"station_id"`
		PairingCode string `json:"pairing_code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	stationID, err := uuid.Parse(body.StationID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	token, err := sh.authService.PairStation(c.Request.Context(), stationID, body.PairingCode)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"token": token})
}

func (sh *StationHandler) CreateProperty(c *gin.Context) {
	var body struct {
		Slug     string `json:"slug"`
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	prop, err := sh.propertyService.Create(c.Request.Context(), body.Slug, body.Name, body.Timezone)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prop)
}

func (sh *StationHandler) CreateStation(c *gin.Context) {
	var body struct {
		PropertyID  string `json:"property_id"`
		Room        string `json:"room"`
		Surface     string `json:"surface"`
		PairingCode string `json:"pairing_code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	station, err := sh.stationService.Create(c.Request.Context(), services.CreateStationInput{
		PropertyID:  propertyID,
		Room:        body.Room,
		Surface:     types.SurfaceKind(body.Surface),
		PairingCode: body.PairingCode,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, station)
}
