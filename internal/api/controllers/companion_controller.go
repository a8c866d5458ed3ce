package controllers

import (
	"github.com/gin-gonic/gin"

	"travelmind/internal/models/request_models"
	"travelmind/internal/services"
	"travelmind/pkg/middleware"
	"travelmind/pkg/utils"
)

type CompanionController struct {
	companionService services.CompanionServiceInterface
}

func NewCompanionController(companionService services.CompanionServiceInterface) *CompanionController {
	return &CompanionController{companionService: companionService}
}

// Ask godoc
// @Summary Quick on-trip question
// @Description Answers with the fast companion model; identical questions are served from cache for a minute
// @Tags Companion
// @Accept json
// @Produce json
// @Param request body request_models.AskRequest true "Question"
// @Success 200 {object} response_models.AskResponse
// @Router /api/companion/ask [post]
func (cc *CompanionController) Ask(c *gin.Context) {
	var req request_models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = middleware.UserID(c, req.UserID)

	answer, err := cc.companionService.Ask(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, answer, "")
}

// Evaluate godoc
// @Summary Queue a day evaluation
// @Description Checks weather and opening hours in the background; poll the returned job id
// @Tags Companion
// @Accept json
// @Produce json
// @Param request body request_models.EvaluateRequest true "Day to evaluate"
// @Success 200 {object} response_models.EnqueueResponse
// @Router /api/companion/evaluate [post]
func (cc *CompanionController) Evaluate(c *gin.Context) {
	var req request_models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = middleware.UserID(c, req.UserID)

	job, err := cc.companionService.Enqueue(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, job, "Evaluation queued")
}

// EvaluationResult godoc
// @Summary Poll a day evaluation
// @Tags Companion
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response_models.EvaluationStatus
// @Router /api/companion/evaluate/{jobId} [get]
func (cc *CompanionController) EvaluationResult(c *gin.Context) {
	status, err := cc.companionService.Result(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, status, "")
}
