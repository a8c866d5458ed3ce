package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	dbm "travelmind/internal/models/db_models"
	"travelmind/internal/models/response_models"
	"travelmind/internal/repositories"
)

const defaultTodaysHours = "09:00–18:00"

type PlaceStatusServiceInterface interface {
	// Openings returns one entry per requested id in request order. Ids with
	// no stored place get an "open 09:00–18:00" placeholder.
	Openings(ctx context.Context, placeIDs []string, at time.Time) ([]response_models.PlaceOpening, error)
}

type PlaceStatusService struct {
	repo repositories.PlaceRepository
	loc  *time.Location
}

func NewPlaceStatusService(repo repositories.PlaceRepository, loc *time.Location) PlaceStatusServiceInterface {
	if loc == nil {
		loc = time.UTC
	}
	return &PlaceStatusService{repo: repo, loc: loc}
}

func (s *PlaceStatusService) Openings(ctx context.Context, placeIDs []string, at time.Time) ([]response_models.PlaceOpening, error) {
	places, err := s.repo.FindByIDs(ctx, placeIDs)
	if err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}
	byID := make(map[string]dbm.Place, len(places))
	for _, p := range places {
		byID[p.ID.String()] = p
	}

	out := make([]response_models.PlaceOpening, 0, len(placeIDs))
	for i, id := range placeIDs {
		p, ok := byID[strings.ToLower(id)]
		if !ok {
			open := true
			out = append(out, response_models.PlaceOpening{
				PlaceID:     id,
				Name:        fmt.Sprintf("POI %d", i+1),
				OpenNow:     &open,
				TodaysHours: defaultTodaysHours,
			})
			continue
		}

		open := s.isOpen(p, at)
		hours := p.OpeningHours
		if hours == "" {
			hours = defaultTodaysHours
		}
		out = append(out, response_models.PlaceOpening{
			PlaceID:     id,
			Name:        p.Name,
			OpenNow:     &open,
			TodaysHours: hours,
		})
	}
	return out, nil
}

// isOpen treats a closed status as authoritative, then checks the
// "HH:mm-HH:mm" window. Windows that wrap past midnight are supported.
func (s *PlaceStatusService) isOpen(p dbm.Place, at time.Time) bool {
	if strings.EqualFold(p.Status, dbm.PlaceStatusClosed) {
		return false
	}
	from, to, ok := parseHours(p.OpeningHours)
	if !ok {
		return true
	}
	local := at.In(s.loc)
	now := local.Hour()*60 + local.Minute()
	if from <= to {
		return now >= from && now < to
	}
	return now >= from || now < to
}

func parseHours(v string) (int, int, bool) {
	v = strings.ReplaceAll(v, "–", "-")
	parts := strings.SplitN(v, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	from, ok1 := clockMinutes(parts[0])
	to, ok2 := clockMinutes(parts[1])
	return from, to, ok1 && ok2
}

func clockMinutes(v string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
