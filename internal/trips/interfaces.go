package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

// Repository defines persistence operations for the trips table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	Find(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	// FindDetailed loads the trip with truck, driver and expenses attached.
	FindDetailed(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	List(ctx context.Context, params pagination.Params, filters TripFilters) (*TripList, error)
	// UpdateStatusCAS writes the updates only while the row still holds
	// fromStatus; it reports false when another writer moved the row first.
	UpdateStatusCAS(ctx context.Context, tripID uuid.UUID, fromStatus enums.TripStatus, updates map[string]any) (bool, error)
	Update(ctx context.Context, tripID uuid.UUID, updates map[string]any) error
	UpdateRouteStops(ctx context.Context, tripID uuid.UUID, stops types.RouteStops) error
}
