package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelmind/internal/models/request_models"
	"travelmind/internal/services"
	"travelmind/pkg/middleware"
	"travelmind/pkg/utils"
)

type TripController struct {
	tripService services.TripServiceInterface
}

func NewTripController(tripService services.TripServiceInterface) *TripController {
	return &TripController{
		tripService: tripService,
	}
}

// CreateTrip godoc
// @Summary Generate and save a trip
// @Description Asks the planner for an itinerary, stores it and bootstraps the trip checklist
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body request_models.CreateTripRequest true "Trip prompt"
// @Success 200 {object} response_models.CreateTripResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /api/trips [post]
func (t *TripController) CreateTrip(c *gin.Context) {
	var req request_models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = middleware.UserID(c, req.UserID)

	trip, err := t.tripService.CreateTrip(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, trip, "Trip created successfully")
}

// ListTrips godoc
// @Summary List trips of a user
// @Tags Trips
// @Produce json
// @Param userId query string false "User ID, ignored when a token is sent"
// @Success 200 {array} response_models.TripSummary
// @Router /api/trips [get]
func (t *TripController) ListTrips(c *gin.Context) {
	userID := middleware.UserID(c, c.Query("userId"))
	if userID == "" {
		utils.RespondErrorWithReason(c, http.StatusBadRequest, utils.ReasonBadRequest, "userId is required", nil)
		return
	}

	trips, err := t.tripService.ListTrips(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, trips, "Trips fetched successfully")
}

// GetTrip godoc
// @Summary Get a trip with its days and activities
// @Tags Trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} response_models.TripDetail
// @Failure 404 {object} utils.APIResponse
// @Router /api/trips/{id} [get]
func (t *TripController) GetTrip(c *gin.Context) {
	trip, err := t.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, trip, "Trip fetched successfully")
}

// ReplacePlan godoc
// @Summary Replace the plan of a trip
// @Description Normalizes the submitted itinerary and swaps all days and activities in one transaction
// @Tags Trips
// @Accept json
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param request body request_models.ReplacePlanRequest true "Itinerary"
// @Success 200 {object} response_models.TripDetail
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /api/plan/{tripId} [put]
func (t *TripController) ReplacePlan(c *gin.Context) {
	var req request_models.ReplacePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	trip, err := t.tripService.ReplacePlan(c.Request.Context(), c.Param("tripId"), req.Plan)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, trip, "Plan replaced successfully")
}
