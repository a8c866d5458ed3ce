package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"travelmind/internal/itinerary"
	dbm "travelmind/internal/models/db_models"
	"travelmind/pkg/utils"
)

type TripRepository interface {
	CreateWithPlan(ctx context.Context, in CreateTripInput, plan *itinerary.Itinerary, raw []byte) (*dbm.Trip, error)
	ReplacePlan(ctx context.Context, tripID uuid.UUID, plan *itinerary.Itinerary, raw []byte) (*dbm.Trip, error)
	GetByID(ctx context.Context, tripID uuid.UUID) (*dbm.Trip, error)
	ListByUser(ctx context.Context, userID string) ([]dbm.Trip, error)
}

type CreateTripInput struct {
	UserID string
	Prompt string
}

type tripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) CreateWithPlan(ctx context.Context, in CreateTripInput, plan *itinerary.Itinerary, raw []byte) (*dbm.Trip, error) {
	if plan == nil {
		return nil, errors.New("plan is required")
	}

	var tripID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip := dbm.Trip{
			UserID:      in.UserID,
			Prompt:      in.Prompt,
			Title:       plan.Title,
			Destination: plan.Destination,
			Currency:    plan.Currency,
			StartDate:   plan.StartDate,
			EndDate:     plan.EndDate,
			RawPlan:     datatypes.JSON(raw),
		}
		if err := tx.Create(&trip).Error; err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		tripID = trip.ID
		return writeDays(tx, trip.ID, plan.Days)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, tripID)
}

// ReplacePlan swaps the whole day/activity tree of a trip. Concurrent
// replaces of the same trip are last-writer-wins.
func (r *tripRepository) ReplacePlan(ctx context.Context, tripID uuid.UUID, plan *itinerary.Itinerary, raw []byte) (*dbm.Trip, error) {
	if plan == nil {
		return nil, errors.New("plan is required")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip dbm.Trip
		if err := tx.First(&trip, "id = ?", tripID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrTripNotFound
			}
			return err
		}

		// 1) Wipe previous materialized data
		subDayIDs := tx.Unscoped().Model(&dbm.TripDay{}).
			Select("id").
			Where("trip_id = ?", trip.ID)

		if err := tx.Unscoped().Where("trip_day_id IN (?)", subDayIDs).
			Delete(&dbm.TripActivity{}).Error; err != nil {
			return fmt.Errorf("delete activities: %w", err)
		}
		if err := tx.Unscoped().Where("trip_id = ?", trip.ID).
			Delete(&dbm.TripDay{}).Error; err != nil {
			return fmt.Errorf("delete days: %w", err)
		}

		// 2) Header + audit snapshot
		updates := map[string]any{
			"start_date": plan.StartDate,
			"end_date":   plan.EndDate,
			"raw_plan":   datatypes.JSON(raw),
		}
		if strings.TrimSpace(plan.Title) != "" {
			updates["title"] = plan.Title
		}
		if plan.Destination != "" {
			updates["destination"] = plan.Destination
		}
		if plan.Currency != "" {
			updates["currency"] = plan.Currency
		}
		if err := tx.Model(&trip).Updates(updates).Error; err != nil {
			return fmt.Errorf("update trip: %w", err)
		}

		// 3) Recreate days + activities
		return writeDays(tx, trip.ID, plan.Days)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, tripID)
}

func writeDays(tx *gorm.DB, tripID uuid.UUID, days []itinerary.Day) error {
	for i, d := range days {
		td := dbm.TripDay{
			TripID:      tripID,
			DayIndex:    i + 1,
			Date:        d.Date,
			City:        d.City,
			Title:       d.Title,
			Summary:     d.Summary,
			BudgetCents: d.BudgetCents,
		}
		if err := tx.Create(&td).Error; err != nil {
			return fmt.Errorf("create day %d: %w", i+1, err)
		}

		acts := make([]dbm.TripActivity, 0, len(d.Activities))
		for pos, a := range d.Activities {
			acts = append(acts, dbm.TripActivity{
				TripDayID:  td.ID,
				Position:   pos,
				Title:      a.Title,
				StartTime:  a.StartTime,
				EndTime:    a.EndTime,
				Notes:      a.Notes,
				Kind:       a.Kind,
				PlaceID:    a.PlaceID,
				Lat:        a.Lat,
				Lon:        a.Lon,
				PriceCents: a.PriceCents,
				BookingURL: a.BookingURL,
			})
		}
		if len(acts) > 0 {
			if err := tx.Create(&acts).Error; err != nil {
				return fmt.Errorf("create activities for day %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, tripID uuid.UUID) (*dbm.Trip, error) {
	var trip dbm.Trip
	err := r.db.WithContext(ctx).
		Where("id = ?", tripID).
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_index ASC")
		}).
		Preload("Days.Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&trip).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTripNotFound
		}
		return nil, err
	}

	return &trip, nil
}

func (r *tripRepository) ListByUser(ctx context.Context, userID string) ([]dbm.Trip, error) {
	var trips []dbm.Trip
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&trips).Error

	if err != nil {
		return nil, err
	}

	return trips, nil
}
