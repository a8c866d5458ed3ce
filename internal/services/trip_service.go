package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelmind/internal/itinerary"
	dbm "travelmind/internal/models/db_models"
	"travelmind/internal/models/request_models"
	"travelmind/internal/models/response_models"
	"travelmind/internal/repositories"
	"travelmind/pkg/utils"
)

const minPromptLength = 10

type TripServiceInterface interface {
	CreateTrip(ctx context.Context, req request_models.CreateTripRequest) (*response_models.CreateTripResponse, error)
	GetTrip(ctx context.Context, tripID string) (*response_models.TripDetail, error)
	ListTrips(ctx context.Context, userID string) ([]response_models.TripSummary, error)
	ReplacePlan(ctx context.Context, tripID string, plan json.RawMessage) (*response_models.TripDetail, error)
}

type TripService struct {
	repo        repositories.TripRepository
	itineraries ItineraryServiceInterface
	todos       TodoServiceInterface
	loc         *time.Location
	logger      *zap.Logger
}

func NewTripService(
	repo repositories.TripRepository,
	itineraries ItineraryServiceInterface,
	todos TodoServiceInterface,
	loc *time.Location,
	logger *zap.Logger,
) TripServiceInterface {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripService{
		repo:        repo,
		itineraries: itineraries,
		todos:       todos,
		loc:         loc,
		logger:      logger.Named("trips"),
	}
}

func (s *TripService) CreateTrip(ctx context.Context, req request_models.CreateTripRequest) (*response_models.CreateTripResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	prompt := strings.TrimSpace(req.Prompt)

	var problems []string
	if userID == "" {
		problems = append(problems, "userId: required")
	}
	if utf8.RuneCountInString(prompt) < minPromptLength {
		problems = append(problems, fmt.Sprintf("prompt: must be at least %d characters", minPromptLength))
	}

	var defaultStart *time.Time
	if req.StartDate != "" {
		start, err := utils.ParseDate(req.StartDate, s.loc)
		if err != nil {
			problems = append(problems, "startDate: must be YYYY-MM-DD")
		} else {
			defaultStart = &start
		}
	}
	if len(problems) > 0 {
		return nil, utils.NewDetailedError(utils.ErrInvalidInput, problems...)
	}

	generated, err := s.itineraries.Generate(ctx, prompt, GenerateOptions{
		Model:        strings.TrimSpace(req.Model),
		DefaultStart: defaultStart,
	})
	if err != nil {
		return nil, err
	}

	trip, err := s.repo.CreateWithPlan(ctx, repositories.CreateTripInput{
		UserID: userID,
		Prompt: prompt,
	}, generated.Itinerary, []byte(generated.Raw))
	if err != nil {
		s.logger.Error("persisting trip failed",
			zap.String("reason", utils.ReasonTripPersistFailed),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", utils.ErrTripPersistFailed, err)
	}

	// Best effort: a trip without its checklist is still a trip.
	created, err := s.todos.BootstrapFromTemplates(ctx, userID, trip.ID)
	if err != nil {
		s.logger.Warn("todo bootstrap skipped",
			zap.String("reason", utils.ReasonTodoBootstrapFailed),
			zap.String("trip_id", trip.ID.String()),
			zap.Error(err),
		)
		created = 0
	}

	s.logger.Info("trip created",
		zap.String("trip_id", trip.ID.String()),
		zap.String("provider", generated.Provider),
		zap.String("model", generated.Model),
		zap.Int("attempts", generated.Attempts),
		zap.Int("todos", created),
	)

	return &response_models.CreateTripResponse{
		TripID:       trip.ID.String(),
		Trip:         s.toDetail(trip),
		TodosCreated: created,
	}, nil
}

func (s *TripService) GetTrip(ctx context.Context, tripID string) (*response_models.TripDetail, error) {
	id, err := uuid.Parse(tripID)
	if err != nil {
		return nil, utils.ErrTripNotFound
	}

	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrTripNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return s.toDetail(trip), nil
}

func (s *TripService) ListTrips(ctx context.Context, userID string) ([]response_models.TripSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId query is required", utils.ErrInvalidInput)
	}

	trips, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	out := make([]response_models.TripSummary, 0, len(trips))
	for i := range trips {
		out = append(out, s.toSummary(&trips[i]))
	}
	return out, nil
}

// ReplacePlan validates a client-edited plan and swaps the stored tree.
// A plan without a title keeps the trip's current title.
func (s *TripService) ReplacePlan(ctx context.Context, tripID string, plan json.RawMessage) (*response_models.TripDetail, error) {
	id, err := uuid.Parse(tripID)
	if err != nil {
		return nil, utils.ErrTripNotFound
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrTripNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	var defaultStart *time.Time
	if !current.StartDate.IsZero() {
		start := current.StartDate.In(s.loc)
		defaultStart = &start
	}

	it, err := itinerary.Normalize(plan, itinerary.Options{
		RequireTitle: false,
		DefaultStart: defaultStart,
		Location:     s.loc,
	})
	if err != nil {
		var verr *itinerary.ValidationError
		if errors.As(err, &verr) {
			return nil, utils.NewDetailedError(utils.ErrInvalidInput, verr.Violations...)
		}
		return nil, utils.NewDetailedError(utils.ErrInvalidInput, err.Error())
	}

	trip, err := s.repo.ReplacePlan(ctx, id, it, plan)
	if err != nil {
		if errors.Is(err, utils.ErrTripNotFound) {
			return nil, err
		}
		s.logger.Error("replacing plan failed",
			zap.String("reason", utils.ReasonTripPersistFailed),
			zap.String("trip_id", tripID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", utils.ErrTripPersistFailed, err)
	}

	return s.toDetail(trip), nil
}

func (s *TripService) toSummary(t *dbm.Trip) response_models.TripSummary {
	return response_models.TripSummary{
		ID:          t.ID.String(),
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   utils.FormatDate(t.StartDate.In(s.loc)),
		EndDate:     utils.FormatDate(t.EndDate.In(s.loc)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (s *TripService) toDetail(t *dbm.Trip) *response_models.TripDetail {
	detail := &response_models.TripDetail{
		TripSummary: s.toSummary(t),
		UserID:      t.UserID,
		Currency:    t.Currency,
		Prompt:      t.Prompt,
		Days:        make([]response_models.DayResponse, 0, len(t.Days)),
	}

	for _, d := range t.Days {
		day := response_models.DayResponse{
			ID:          d.ID.String(),
			DayIndex:    d.DayIndex,
			Date:        utils.FormatDate(d.Date.In(s.loc)),
			City:        d.City,
			Title:       d.Title,
			Summary:     d.Summary,
			BudgetCents: d.BudgetCents,
			Activities:  make([]response_models.ActivityResponse, 0, len(d.Activities)),
		}
		for _, a := range d.Activities {
			day.Activities = append(day.Activities, response_models.ActivityResponse{
				ID:         a.ID.String(),
				Position:   a.Position,
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
		detail.Days = append(detail.Days, day)
	}
	return detail
}
