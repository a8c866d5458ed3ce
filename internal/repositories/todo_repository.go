package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "travelmind/internal/models/db_models"
	"travelmind/pkg/utils"
)

type TodoRepository interface {
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]dbm.Todo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dbm.Todo, error)
	Create(ctx context.Context, todo *dbm.Todo) error
	CreateBatch(ctx context.Context, todos []dbm.Todo) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*dbm.Todo, error)

	ListTemplates(ctx context.Context) ([]dbm.TodoTemplate, error)
	SeedTemplates(ctx context.Context, templates []dbm.TodoTemplate) (int, error)
}

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]dbm.Todo, error) {
	var todos []dbm.Todo
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("status ASC").
		Order("created_at ASC").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepository) GetByID(ctx context.Context, id uuid.UUID) (*dbm.Todo, error) {
	var todo dbm.Todo
	if err := r.db.WithContext(ctx).First(&todo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *dbm.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *todoRepository) CreateBatch(ctx context.Context, todos []dbm.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&todos).Error
}

func (r *todoRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*dbm.Todo, error) {
	todo, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return todo, nil
	}
	if err := r.db.WithContext(ctx).Model(todo).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *todoRepository) ListTemplates(ctx context.Context) ([]dbm.TodoTemplate, error) {
	var templates []dbm.TodoTemplate
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// SeedTemplates inserts the templates whose titles are not present yet and
// reports how many were added.
func (r *todoRepository) SeedTemplates(ctx context.Context, templates []dbm.TodoTemplate) (int, error) {
	added := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range templates {
			var count int64
			if err := tx.Model(&dbm.TodoTemplate{}).Where("title = ?", t.Title).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			tpl := t
			if err := tx.Create(&tpl).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
