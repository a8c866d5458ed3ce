package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dbm "travelmind/internal/models/db_models"
	"travelmind/internal/models/request_models"
	"travelmind/internal/models/response_models"
	"travelmind/internal/repositories"
	"travelmind/pkg/utils"
)

type TodoServiceInterface interface {
	ListByTrip(ctx context.Context, tripID string) ([]response_models.TodoResponse, error)
	Create(ctx context.Context, req request_models.CreateTodoRequest) (*response_models.TodoResponse, error)
	Update(ctx context.Context, id string, req request_models.UpdateTodoRequest) (*response_models.TodoResponse, error)
	// BootstrapFromTemplates copies every template into a PENDING todo for
	// the trip and returns how many were created.
	BootstrapFromTemplates(ctx context.Context, userID string, tripID uuid.UUID) (int, error)
	SeedDefaultTemplates(ctx context.Context) (int, error)
}

type TodoService struct {
	repo repositories.TodoRepository
	loc  *time.Location
}

func NewTodoService(repo repositories.TodoRepository, loc *time.Location) TodoServiceInterface {
	if loc == nil {
		loc = time.UTC
	}
	return &TodoService{repo: repo, loc: loc}
}

// DefaultTodoTemplates is the development seed set.
var DefaultTodoTemplates = []dbm.TodoTemplate{
	{Title: "Book outbound flight", Kind: "booking"},
	{Title: "Book return flight", Kind: "booking"},
	{Title: "Reserve hotel / lodging", Kind: "booking"},
	{Title: "Buy travel insurance", Kind: "booking"},
	{Title: "Add passports / IDs to Wallet", Kind: "docs"},
	{Title: "Check visa requirements", Kind: "docs"},
	{Title: "Enable international roaming / eSIM", Kind: "prep"},
	{Title: "Download offline maps", Kind: "prep"},
	{Title: "Notify bank of travel", Kind: "prep"},
	{Title: "Pack meds + chargers + adapters", Kind: "packing"},
}

func (s *TodoService) ListByTrip(ctx context.Context, tripID string) ([]response_models.TodoResponse, error) {
	id, err := uuid.Parse(tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: tripId must be a uuid", utils.ErrInvalidInput)
	}

	todos, err := s.repo.ListByTrip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	out := make([]response_models.TodoResponse, 0, len(todos))
	for i := range todos {
		out = append(out, s.toResponse(&todos[i]))
	}
	return out, nil
}

func (s *TodoService) Create(ctx context.Context, req request_models.CreateTodoRequest) (*response_models.TodoResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: userId and title are required", utils.ErrInvalidInput)
	}

	todo := dbm.Todo{
		UserID: req.UserID,
		Title:  strings.TrimSpace(req.Title),
		Kind:   strings.TrimSpace(req.Kind),
		Status: dbm.TodoPending,
	}
	if req.TripID != "" {
		id, err := uuid.Parse(req.TripID)
		if err != nil {
			return nil, fmt.Errorf("%w: tripId must be a uuid", utils.ErrInvalidInput)
		}
		todo.TripID = &id
	}
	if req.DueDate != "" {
		due, err := s.parseDue(req.DueDate)
		if err != nil {
			return nil, err
		}
		todo.DueDate = &due
	}

	if err := s.repo.Create(ctx, &todo); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	resp := s.toResponse(&todo)
	return &resp, nil
}

// Update allows any transition between PENDING, DONE and SKIPPED, including
// reopening a finished item.
func (s *TodoService) Update(ctx context.Context, id string, req request_models.UpdateTodoRequest) (*response_models.TodoResponse, error) {
	todoID, err := uuid.Parse(id)
	if err != nil {
		return nil, utils.ErrTodoNotFound
	}

	fields := map[string]any{}
	if req.Status != nil {
		status := dbm.TodoStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			return nil, utils.ErrInvalidTodoStatus
		}
		fields["status"] = string(status)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", utils.ErrInvalidInput)
		}
		fields["title"] = title
	}
	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			fields["due_date"] = nil
		} else {
			due, err := s.parseDue(*req.DueDate)
			if err != nil {
				return nil, err
			}
			fields["due_date"] = due
		}
	}

	todo, err := s.repo.Update(ctx, todoID, fields)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(todo)
	return &resp, nil
}

func (s *TodoService) BootstrapFromTemplates(ctx context.Context, userID string, tripID uuid.UUID) (int, error) {
	templates, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}

	todos := make([]dbm.Todo, 0, len(templates))
	for _, t := range templates {
		id := tripID
		todos = append(todos, dbm.Todo{
			UserID: userID,
			TripID: &id,
			Title:  t.Title,
			Kind:   t.Kind,
			Status: dbm.TodoPending,
		})
	}
	if err := s.repo.CreateBatch(ctx, todos); err != nil {
		return 0, err
	}
	return len(todos), nil
}

func (s *TodoService) SeedDefaultTemplates(ctx context.Context) (int, error) {
	return s.repo.SeedTemplates(ctx, DefaultTodoTemplates)
}

// parseDue accepts YYYY-MM-DD or RFC 3339.
func (s *TodoService) parseDue(v string) (time.Time, error) {
	if t, err := utils.ParseDate(v, s.loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: dueDate must be YYYY-MM-DD or RFC 3339", utils.ErrInvalidInput)
}

func (s *TodoService) toResponse(t *dbm.Todo) response_models.TodoResponse {
	resp := response_models.TodoResponse{
		ID:        t.ID.String(),
		UserID:    t.UserID,
		Title:     t.Title,
		Kind:      t.Kind,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.TripID != nil {
		id := t.TripID.String()
		resp.TripID = &id
	}
	if t.DueDate != nil {
		due := t.DueDate.In(s.loc)
		resp.DueDate = utils.FormatDatePtr(&due)
	}
	return resp
}
