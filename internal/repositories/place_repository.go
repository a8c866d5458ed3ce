package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "travelmind/internal/models/db_models"
)

type PlaceRepository interface {
	// FindByIDs ignores ids that are not uuids.
	FindByIDs(ctx context.Context, ids []string) ([]dbm.Place, error)
	Create(ctx context.Context, place *dbm.Place) error
}

type placeRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) FindByIDs(ctx context.Context, ids []string) ([]dbm.Place, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, u)
		}
	}
	if len(parsed) == 0 {
		return nil, nil
	}

	var places []dbm.Place
	if err := r.db.WithContext(ctx).Where("id IN ?", parsed).Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}

func (r *placeRepository) Create(ctx context.Context, place *dbm.Place) error {
	return r.db.WithContext(ctx).Create(place).Error
}
