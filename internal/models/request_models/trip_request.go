package request_models

import "encoding/json"

type CreateTripRequest struct {
	UserID string `json:"userId"`
	Prompt string `json:"prompt" binding:"required"`
	Model  string `json:"model"`
	// YYYY-MM-DD, anchors undated days
	StartDate string `json:"startDate"`
}

type ReplacePlanRequest struct {
	Plan json.RawMessage `json:"plan" binding:"required"`
}
