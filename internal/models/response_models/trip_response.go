package response_models

import "time"

type TripSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

type TripDetail struct {
	TripSummary
	UserID   string        `json:"userId"`
	Currency string        `json:"currency,omitempty"`
	Prompt   string        `json:"prompt,omitempty"`
	Days     []DayResponse `json:"days"`
}

type DayResponse struct {
	ID          string             `json:"id"`
	DayIndex    int                `json:"dayIndex"`
	Date        string             `json:"date"`
	City        string             `json:"city,omitempty"`
	Title       string             `json:"title,omitempty"`
	Summary     string             `json:"summary,omitempty"`
	BudgetCents *int64             `json:"budgetCents,omitempty"`
	Activities  []ActivityResponse `json:"activities"`
}

type ActivityResponse struct {
	ID         string     `json:"id"`
	Position   int        `json:"position"`
	Title      string     `json:"title"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Kind       string     `json:"kind,omitempty"`
	PlaceID    string     `json:"placeId,omitempty"`
	Lat        *float64   `json:"lat,omitempty"`
	Lon        *float64   `json:"lon,omitempty"`
	PriceCents *int64     `json:"priceCents,omitempty"`
	BookingURL string     `json:"bookingUrl,omitempty"`
}

type CreateTripResponse struct {
	TripID string      `json:"tripId"`
	Trip   *TripDetail `json:"trip"`
	// TodosCreated is zero when bootstrapping was skipped or failed.
	TodosCreated int `json:"todosCreated"`
}
