package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travelmind/internal/itinerary"
	dbm "travelmind/internal/models/db_models"
	"travelmind/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(dbm.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustNormalize(t *testing.T, raw string) *itinerary.Itinerary {
	t.Helper()
	it, err := itinerary.Normalize([]byte(raw), itinerary.Options{})
	require.NoError(t, err)
	return it
}

const lisbonRaw = `{"title":"Lisbon Getaway","startDate":"2025-09-01","endDate":"2025-09-03","destination":"Lisbon","days":[{"date":"2025-09-01","activities":[{"title":"Belém Tower","startTime":"10:00","endTime":"12:00"}]},{"date":"2025-09-02","activities":[]},{"date":"2025-09-03","activities":[]}]}`

const portoRaw = `{"title":"Porto","startDate":"2025-10-01","days":[{"activities":["Ribeira","Livraria Lello"]},{"activities":["Port cellars"]}]}`

func dayTitles(trip *dbm.Trip) [][]string {
	out := make([][]string, 0, len(trip.Days))
	for _, d := range trip.Days {
		titles := make([]string, 0, len(d.Activities))
		for _, a := range d.Activities {
			titles = append(titles, a.Title)
		}
		out = append(out, titles)
	}
	return out
}

func dayDates(trip *dbm.Trip) []string {
	out := make([]string, 0, len(trip.Days))
	for _, d := range trip.Days {
		out = append(out, d.Date.UTC().Format("2006-01-02"))
	}
	return out
}

func TestCreateWithPlan(t *testing.T) {
	repo := NewTripRepository(newTestDB(t))
	ctx := context.Background()

	trip, err := repo.CreateWithPlan(ctx, CreateTripInput{UserID: "user-1", Prompt: "Plan a 3-day trip to Lisbon"}, mustNormalize(t, lisbonRaw), []byte(lisbonRaw))
	require.NoError(t, err)

	assert.Equal(t, "Lisbon Getaway", trip.Title)
	assert.Equal(t, "Lisbon", trip.Destination)
	assert.JSONEq(t, lisbonRaw, string(trip.RawPlan))
	require.Len(t, trip.Days, 3)
	assert.Equal(t, []string{"2025-09-01", "2025-09-02", "2025-09-03"}, dayDates(trip))
	assert.Equal(t, [][]string{{"Belém Tower"}, {}, {}}, dayTitles(trip))
	assert.Equal(t, 1, trip.Days[0].DayIndex)
	require.NotNil(t, trip.Days[0].Activities[0].StartTime)
	assert.Equal(t, 10, trip.Days[0].Activities[0].StartTime.UTC().Hour())
}

func TestReplacePlanIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip, err := repo.CreateWithPlan(ctx, CreateTripInput{UserID: "user-1"}, mustNormalize(t, lisbonRaw), []byte(lisbonRaw))
	require.NoError(t, err)

	first, err := repo.ReplacePlan(ctx, trip.ID, mustNormalize(t, portoRaw), []byte(portoRaw))
	require.NoError(t, err)
	second, err := repo.ReplacePlan(ctx, trip.ID, mustNormalize(t, portoRaw), []byte(portoRaw))
	require.NoError(t, err)

	assert.Equal(t, dayDates(first), dayDates(second))
	assert.Equal(t, dayTitles(first), dayTitles(second))
	assert.Equal(t, [][]string{{"Ribeira", "Livraria Lello"}, {"Port cellars"}}, dayTitles(second))
	assert.Equal(t, "Porto", second.Title)

	var days, acts int64
	require.NoError(t, db.Unscoped().Model(&dbm.TripDay{}).Where("trip_id = ?", trip.ID).Count(&days).Error)
	require.NoError(t, db.Unscoped().Model(&dbm.TripActivity{}).Count(&acts).Error)
	assert.EqualValues(t, 2, days)
	assert.EqualValues(t, 3, acts)
}

func TestReplacePlanKeepsTitleWhenMissing(t *testing.T) {
	repo := NewTripRepository(newTestDB(t))
	ctx := context.Background()

	trip, err := repo.CreateWithPlan(ctx, CreateTripInput{UserID: "user-1"}, mustNormalize(t, lisbonRaw), []byte(lisbonRaw))
	require.NoError(t, err)

	untitled := `{"startDate":"2025-09-01","days":[{"activities":["Alfama walk"]}]}`
	got, err := repo.ReplacePlan(ctx, trip.ID, mustNormalize(t, untitled), []byte(untitled))
	require.NoError(t, err)
	assert.Equal(t, "Lisbon Getaway", got.Title)
	assert.Equal(t, [][]string{{"Alfama walk"}}, dayTitles(got))
}

func TestReplacePlanRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip, err := repo.CreateWithPlan(ctx, CreateTripInput{UserID: "user-1"}, mustNormalize(t, lisbonRaw), []byte(lisbonRaw))
	require.NoError(t, err)

	boom := errors.New("disk full")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_activities", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "trip_activities" {
			_ = tx.AddError(boom)
		}
	}))

	_, err = repo.ReplacePlan(ctx, trip.ID, mustNormalize(t, portoRaw), []byte(portoRaw))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	require.NoError(t, db.Callback().Create().Remove("test:fail_activities"))

	got, err := repo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon Getaway", got.Title)
	assert.Equal(t, []string{"2025-09-01", "2025-09-02", "2025-09-03"}, dayDates(got))
	assert.Equal(t, [][]string{{"Belém Tower"}, {}, {}}, dayTitles(got))
	assert.JSONEq(t, lisbonRaw, string(got.RawPlan))
}

func TestReplacePlanMissingTrip(t *testing.T) {
	repo := NewTripRepository(newTestDB(t))
	_, err := repo.ReplacePlan(context.Background(), uuid.New(), mustNormalize(t, portoRaw), []byte(portoRaw))
	assert.ErrorIs(t, err, utils.ErrTripNotFound)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrTripNotFound)
}

func TestListByUserOrdersByStartDesc(t *testing.T) {
	repo := NewTripRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.CreateWithPlan(ctx, CreateTripInput{UserID: "u"}, mustNormalize(t, lisbonRaw), []byte(lisbonRaw))
	require.NoError(t, err)
	_, err = repo.CreateWithPlan(ctx, CreateTripInput{UserID: "u"}, mustNormalize(t, portoRaw), []byte(portoRaw))
	require.NoError(t, err)
	_, err = repo.CreateWithPlan(ctx, CreateTripInput{UserID: "other"}, mustNormalize(t, portoRaw), []byte(portoRaw))
	require.NoError(t, err)

	trips, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "Porto", trips[0].Title)
	assert.True(t, trips[0].StartDate.After(trips[1].StartDate))
}
