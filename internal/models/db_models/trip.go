package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Trip struct {
	BaseModel
	UserID      string `gorm:"index;not null"`
	Title       string
	Destination string
	Currency    string `gorm:"size:8"`
	Prompt      string
	StartDate   time.Time
	EndDate     time.Time
	// RawPlan is the last accepted model output or submitted plan.
	RawPlan datatypes.JSON

	Days []TripDay
}

type TripDay struct {
	BaseModel
	TripID      uuid.UUID `gorm:"type:uuid;index;not null"`
	DayIndex    int
	Date        time.Time
	City        string
	Title       string
	Summary     string
	BudgetCents *int64

	Activities []TripActivity
}

type TripActivity struct {
	BaseModel
	TripDayID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Position   int
	Title      string
	StartTime  *time.Time
	EndTime    *time.Time
	Notes      string
	Kind       string
	PlaceID    string
	Lat        *float64
	Lon        *float64
	PriceCents *int64
	BookingURL string
}
