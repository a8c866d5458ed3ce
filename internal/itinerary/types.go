package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Itinerary is a validated plan with every day resolved to a calendar date.
type Itinerary struct {
	Title       string    `json:"title"`
	Destination string    `json:"destination,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Days        []Day     `json:"days"`
}

type Day struct {
	Date        time.Time  `json:"date"`
	City        string     `json:"city,omitempty"`
	Title       string     `json:"title,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	BudgetCents *int64     `json:"budgetCents,omitempty"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
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

// wire shapes as produced by a model or a client

type rawItinerary struct {
	Title       string   `json:"title"`
	Destination string   `json:"destination"`
	Currency    string   `json:"currency"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Days        []rawDay `json:"days" validate:"dive"`
}

type rawDay struct {
	Date        string        `json:"date"`
	City        string        `json:"city"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	BudgetCents *int64        `json:"budgetCents" validate:"omitempty,min=0"`
	Activities  []rawActivity `json:"activities" validate:"dive"`
	Items       []rawActivity `json:"items" validate:"dive"`
}

type rawActivity struct {
	Title      string   `json:"title"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	Notes      string   `json:"notes"`
	Kind       string   `json:"kind"`
	PlaceID    string   `json:"placeId"`
	Lat        *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon        *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
	PriceCents *int64   `json:"priceCents" validate:"omitempty,min=0"`
	BookingURL string   `json:"bookingUrl"`
}

var errActivityShape = errors.New("activity must be a string or an object")

// UnmarshalJSON accepts either a bare title string or a full object.
func (a *rawActivity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*a = rawActivity{Title: title}
		return nil
	case '{':
		type plain rawActivity
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*a = rawActivity(p)
		return nil
	default:
		return errActivityShape
	}
}
