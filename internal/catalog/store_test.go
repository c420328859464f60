package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
)

var restaurantCols = []string{
	"business_id", "name", "address", "zip_code", "latitude", "longitude",
	"review_count", "rating", "cuisine", "inserted_at",
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func sampleRecord() models.RestaurantRecord {
	return models.RestaurantRecord{
		BusinessID:  "biz-001",
		Name:        "Lombardi's Pizza",
		Address:     "32 Spring St New York, NY 10012",
		ZipCode:     "10012",
		Latitude:    40.7216,
		Longitude:   -73.9957,
		ReviewCount: 5230,
		Rating:      "4.5",
		Cuisine:     "Italian",
		InsertedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGetByID_Found(t *testing.T) {
	store, mock := newTestStore(t)
	want := sampleRecord()

	mock.ExpectQuery(`SELECT .+ FROM restaurants WHERE business_id = \$1`).
		WithArgs("biz-001").
		WillReturnRows(sqlmock.NewRows(restaurantCols).AddRow(
			want.BusinessID, want.Name, want.Address, want.ZipCode,
			want.Latitude, want.Longitude, want.ReviewCount, want.Rating,
			want.Cuisine, want.InsertedAt,
		))

	got, err := store.GetByID(context.Background(), "biz-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFoundIsNotAnError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM restaurants WHERE business_id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(restaurantCols))

	got, err := store.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_QueryError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM restaurants WHERE business_id = \$1`).
		WithArgs("biz-001").
		WillReturnError(errors.New("connection refused"))

	_, err := store.GetByID(context.Background(), "biz-001")
	assert.Error(t, err)
}

func TestScanAll(t *testing.T) {
	store, mock := newTestStore(t)
	first := sampleRecord()
	second := sampleRecord()
	second.BusinessID = "biz-002"
	second.Name = "Joe's Shanghai"
	second.Cuisine = "Chinese"

	mock.ExpectQuery(`SELECT .+ FROM restaurants ORDER BY business_id`).
		WillReturnRows(sqlmock.NewRows(restaurantCols).
			AddRow(first.BusinessID, first.Name, first.Address, first.ZipCode,
				first.Latitude, first.Longitude, first.ReviewCount, first.Rating,
				first.Cuisine, first.InsertedAt).
			AddRow(second.BusinessID, second.Name, second.Address, second.ZipCode,
				second.Latitude, second.Longitude, second.ReviewCount, second.Rating,
				second.Cuisine, second.InsertedAt))

	records, err := store.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0])
	assert.Equal(t, second, records[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_Upsert(t *testing.T) {
	store, mock := newTestStore(t)
	rec := sampleRecord()

	mock.ExpectExec(`INSERT INTO restaurants .+ ON CONFLICT \(business_id\) DO UPDATE`).
		WithArgs(rec.BusinessID, rec.Name, rec.Address, rec.ZipCode,
			rec.Latitude, rec.Longitude, rec.ReviewCount, rec.Rating,
			rec.Cuisine, rec.InsertedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Put(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_RejectsMissingBusinessID(t *testing.T) {
	store, _ := newTestStore(t)

	rec := sampleRecord()
	rec.BusinessID = ""
	assert.Error(t, store.Put(context.Background(), rec))
}
