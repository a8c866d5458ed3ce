package request_models

type AskRequest struct {
	UserID  string `json:"userId"`
	TripID  string `json:"tripId"`
	Message string `json:"message" binding:"required"`
}

type EvaluateRequest struct {
	UserID   string   `json:"userId"`
	TripID   string   `json:"tripId" binding:"required"`
	Date     string   `json:"date" binding:"required"`
	Lat      *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lon      *float64 `json:"lon" binding:"required,min=-180,max=180"`
	PlaceIDs []string `json:"placeIds"`
}
