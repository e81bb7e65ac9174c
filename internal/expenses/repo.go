package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
)

// Repository defines persistence operations for the trip_expenses table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.TripExpense) (*models.TripExpense, error)
	Find(ctx context.Context, expenseID uuid.UUID) (*models.TripExpense, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripExpense, error)
	Update(ctx context.Context, expenseID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, expenseID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an expenses repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.TripExpense) (*models.TripExpense, error) {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *repository) Find(ctx context.Context, expenseID uuid.UUID) (*models.TripExpense, error) {
	var expense models.TripExpense
	err := r.db.WithContext(ctx).Where("id = ?", expenseID).First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripExpense, error) {
	var rows []models.TripExpense
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, expenseID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.TripExpense{}).
		Where("id = ?", expenseID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, expenseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", expenseID).
		Delete(&models.TripExpense{}).Error
}
