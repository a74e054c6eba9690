package rooms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staybook/staybook-backend/pkg/db"
	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/pagination"
)

// Repository reads and seeds rooms.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Get loads a room by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&room).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load room")
	}
	return &room, nil
}

// List returns rooms ordered by name then id.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rooms).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rooms")
	}
	return rooms, nil
}

// Create inserts a room.
func (r *Repository) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room == nil {
		return nil, fmt.Errorf("room required")
	}
	if room.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "room price must not be negative")
	}
	if room.Capacity < 1 {
		room.Capacity = 1
	}
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create room")
	}
	return room, nil
}
