package trips

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

func setupTripsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	trips := `
CREATE TABLE IF NOT EXISTS trips (
  id TEXT PRIMARY KEY,
  trip_number TEXT,
  status TEXT NOT NULL DEFAULT 'planned',
  truck_id TEXT,
  driver_id TEXT,
  start_date DATETIME,
  end_date DATETIME,
  total_revenue NUMERIC NOT NULL DEFAULT 0,
  carrier_pay NUMERIC NOT NULL DEFAULT 0,
  total_broker_fees NUMERIC NOT NULL DEFAULT 0,
  driver_pay NUMERIC NOT NULL DEFAULT 0,
  total_expenses NUMERIC NOT NULL DEFAULT 0,
  net_profit NUMERIC NOT NULL DEFAULT 0,
  route_stops TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	trucks := `
CREATE TABLE IF NOT EXISTS trucks (
  id TEXT PRIMARY KEY,
  unit_number TEXT NOT NULL,
  type TEXT NOT NULL,
  make TEXT,
  model TEXT,
  year INTEGER,
  plate_no TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	drivers := `
CREATE TABLE IF NOT EXISTS drivers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  email TEXT,
  pay_type TEXT NOT NULL DEFAULT 'percentage',
  pay_rate NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	tripExpenses := `
CREATE TABLE IF NOT EXISTS trip_expenses (
  id TEXT PRIMARY KEY,
  trip_id TEXT NOT NULL,
  category TEXT NOT NULL,
  custom_label TEXT,
  amount NUMERIC NOT NULL,
  expense_date DATETIME,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS trips`,
		`DROP TABLE IF EXISTS trucks`,
		`DROP TABLE IF EXISTS drivers`,
		`DROP TABLE IF EXISTS trip_expenses`,
		trips, trucks, drivers, tripExpenses,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedTrip(t *testing.T, db *gorm.DB, status enums.TripStatus, createdAt time.Time) *models.Trip {
	t.Helper()

	trip := &models.Trip{
		ID:        uuid.New(),
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(trip).Error)
	return trip
}

func TestTripsRepoCreateAndFind(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	number := "TRIP-041"
	created, err := repo.Create(ctx, &models.Trip{
		ID:         uuid.New(),
		TripNumber: &number,
		Status:     enums.TripStatusPlanned,
		CarrierPay: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	found, err := repo.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.TripNumber)
	assert.Equal(t, "TRIP-041", *found.TripNumber)
}

func TestTripsRepoFindDetailedPreloads(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	truck := &models.Truck{ID: uuid.New(), UnitNumber: "U-7", Type: enums.TruckTypeOpen7}
	require.NoError(t, db.Create(truck).Error)
	driver := &models.Driver{
		ID:      uuid.New(),
		Name:    "R. Alvarez",
		PayType: enums.DriverPayTypePercentage,
		PayRate: decimal.NewFromInt(25),
	}
	require.NoError(t, db.Create(driver).Error)

	trip := &models.Trip{
		ID:       uuid.New(),
		Status:   enums.TripStatusPlanned,
		TruckID:  &truck.ID,
		DriverID: &driver.ID,
	}
	require.NoError(t, db.Create(trip).Error)
	expense := &models.TripExpense{
		ID:       uuid.New(),
		TripID:   trip.ID,
		Category: enums.ExpenseCategoryFuel,
		Amount:   decimal.NewFromInt(120),
	}
	require.NoError(t, db.Create(expense).Error)

	found, err := repo.FindDetailed(ctx, trip.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Truck)
	assert.Equal(t, enums.TruckTypeOpen7, found.Truck.Type)
	require.NotNil(t, found.Driver)
	assert.Equal(t, enums.DriverPayTypePercentage, found.Driver.PayType)
	require.Len(t, found.Expenses, 1)
	assert.Equal(t, enums.ExpenseCategoryFuel, found.Expenses[0].Category)
}

func TestTripsRepoUpdateStatusCAS(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, enums.TripStatusPlanned, time.Now().UTC())

	swapped, err := repo.UpdateStatusCAS(ctx, trip.ID, enums.TripStatusPlanned, map[string]any{
		"status": enums.TripStatusInProgress,
	})
	require.NoError(t, err)
	assert.True(t, swapped)

	swapped, err = repo.UpdateStatusCAS(ctx, trip.ID, enums.TripStatusPlanned, map[string]any{
		"status": enums.TripStatusInProgress,
	})
	require.NoError(t, err)
	assert.False(t, swapped)
}

func TestTripsRepoRouteStopsRoundTrip(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, enums.TripStatusPlanned, time.Now().UTC())
	orderID := uuid.New()
	stops := types.RouteStops{
		{OrderID: orderID, StopType: enums.StopTypePickup},
		{OrderID: orderID, StopType: enums.StopTypeDelivery},
	}

	require.NoError(t, repo.UpdateRouteStops(ctx, trip.ID, stops))

	found, err := repo.Find(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, found.RouteStops, 2)
	assert.Equal(t, orderID, found.RouteStops[0].OrderID)
	assert.Equal(t, enums.StopTypePickup, found.RouteStops[0].StopType)
}

func TestTripsRepoListFiltersAndPaginates(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedTrip(t, db, enums.TripStatusPlanned, base.Add(time.Duration(i)*time.Minute))
	}
	completed := seedTrip(t, db, enums.TripStatusCompleted, base.Add(10*time.Minute))

	status := enums.TripStatusCompleted
	list, err := repo.List(ctx, pagination.Params{}, TripFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.Trips, 1)
	assert.Equal(t, completed.ID, list.Trips[0].ID)

	first, err := repo.List(ctx, pagination.Params{Limit: 2}, TripFilters{})
	require.NoError(t, err)
	require.Len(t, first.Trips, 2)
	require.NotNil(t, first.NextCursor)

	second, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: *first.NextCursor}, TripFilters{})
	require.NoError(t, err)
	require.Len(t, second.Trips, 2)
	assert.Nil(t, second.NextCursor)
}
