package sqlite_test

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/Houeta/catalog-watcher/internal/repository"
	"github.com/Houeta/catalog-watcher/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectStateQuery    = "SELECT last_checked, total_checks FROM watch_state"
	selectProductsQuery = "SELECT product_code, name, color, price, price_numeric, url, image_url FROM products"
)

var productColumns = []string{"product_code", "name", "color", "price", "price_numeric", "url", "image_url"}

// =============================================================================
// Integration Tests (using a real temporary database)
// =============================================================================

// newTestDB is a helper function that creates a temporary database for a test.
func newTestDB(t *testing.T) repository.StateRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlite.NewRepository(t.Context(), logger, dbPath)
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		if err = repo.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return repo
}

// TestRepository_Integration_UpdateAndGetState simulates the full lifecycle
// of the repository against a real SQLite database.
func TestRepository_Integration_UpdateAndGetState(t *testing.T) {
	repo := newTestDB(t)
	ctx := t.Context()

	// --- Scenario 1: Try to get state from an empty database ---
	t.Run("get_state_from_empty_db", func(t *testing.T) {
		_, err := repo.GetState(ctx)
		require.ErrorIs(t, err, repository.ErrStateNotFound)
	})

	// --- Scenario 2: Store the first snapshot ---
	state1 := &models.State{
		LastChecked: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		TotalChecks: 1,
		Products: []models.Product{
			{ProductCode: "Z9", Name: "Zip Hoodie", Color: "Navy", Price: "¥9,900", PriceNumeric: 9900, URL: "https://shop.example/p/Z9"},
			{ProductCode: "A1", Name: "Tee", Price: "¥1,000", PriceNumeric: 1000, URL: "https://shop.example/p/A1", ImageURL: "https://cdn.example/a1.jpg"},
		},
	}

	t.Run("update_state_first_time", func(t *testing.T) {
		require.NoError(t, repo.UpdateState(ctx, state1))
	})

	// --- Scenario 3: Order and every field survive the round trip ---
	t.Run("get_state_after_first_update", func(t *testing.T) {
		got, err := repo.GetState(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, state1.Products, got.Products)
		assert.Equal(t, 1, got.TotalChecks)
		assert.True(t, state1.LastChecked.Equal(got.LastChecked))
	})

	// --- Scenario 4: Update state a second time (replacing all data) ---
	state2 := &models.State{
		LastChecked: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		TotalChecks: 2,
		Products:    []models.Product{{ProductCode: "C3", Price: "¥300", PriceNumeric: 300}},
	}

	t.Run("update_state_second_time", func(t *testing.T) {
		require.NoError(t, repo.UpdateState(ctx, state2))
	})

	t.Run("get_state_after_second_update", func(t *testing.T) {
		got, err := repo.GetState(ctx)
		require.NoError(t, err)
		require.Len(t, got.Products, 1) // Verify old products were deleted.
		assert.Equal(t, state2.Products, got.Products)
		assert.Equal(t, 2, got.TotalChecks)
	})

	// --- Scenario 5: An empty snapshot is still a snapshot ---
	t.Run("empty_snapshot", func(t *testing.T) {
		require.NoError(t, repo.UpdateState(ctx, &models.State{LastChecked: time.Now(), TotalChecks: 3}))

		got, err := repo.GetState(ctx)
		require.NoError(t, err)
		assert.Empty(t, got.Products)
		assert.Equal(t, 3, got.TotalChecks)
	})
}

// =============================================================================
// Unit Tests (using sqlmock for failure scenarios)
// =============================================================================

// newMockedRepo creates a repository with a mocked database connection for testing failures.
func newMockedRepo(t *testing.T) (*sqlite.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := sqlite.NewForTest(mockDB)

	t.Cleanup(func() { mockDB.Close() })

	return repo, mock
}

func stateRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"last_checked", "total_checks"}).AddRow("2025-06-01T09:30:00Z", 4)
}

// TestRepository_GetState_Failures tests how GetState handles database errors.
func TestRepository_GetState_Failures(t *testing.T) {
	ctx := t.Context()

	t.Run("error_on_state_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		expectedErr := errors.New("db connection lost")
		mock.ExpectQuery(selectStateQuery).WillReturnError(expectedErr)

		_, err := repo.GetState(ctx)

		require.ErrorIs(t, err, expectedErr)
		require.NotErrorIs(t, err, repository.ErrStateNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_bad_timestamp", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows([]string{"last_checked", "total_checks"}).AddRow("yesterday", 1)
		mock.ExpectQuery(selectStateQuery).WillReturnRows(rows)

		_, err := repo.GetState(ctx)

		require.ErrorContains(t, err, "failed to parse last_checked")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_products_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery(selectStateQuery).WillReturnRows(stateRow())

		expectedErr := errors.New("table products is locked")
		mock.ExpectQuery(selectProductsQuery).WillReturnError(expectedErr)

		_, err := repo.GetState(ctx)

		require.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_scan_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery(selectStateQuery).WillReturnRows(stateRow())

		productRows := sqlmock.NewRows(productColumns).AddRow("A1", "Tee", "", "¥1", "not-a-number", "", "")
		mock.ExpectQuery(selectProductsQuery).WillReturnRows(productRows)

		_, err := repo.GetState(ctx)

		require.ErrorContains(t, err, "failed to scan product")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_rows", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery(selectStateQuery).WillReturnRows(stateRow())

		productRows := sqlmock.NewRows(productColumns).
			AddRow("A1", "Tee", "", "¥1", 1, "", "").
			RowError(0, assert.AnError)
		mock.ExpectQuery(selectProductsQuery).WillReturnRows(productRows)

		_, err := repo.GetState(ctx)

		require.ErrorContains(t, err, "rows iteration error")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery(selectStateQuery).WillReturnRows(stateRow())

		productRows := sqlmock.NewRows(productColumns).
			AddRow("B2", "Cap", "Red", "¥2,000", 2000, "https://shop.example/p/B2", "").
			AddRow("A1", "Tee", "", "¥1,000", 1000, "https://shop.example/p/A1", "")
		mock.ExpectQuery(selectProductsQuery).WillReturnRows(productRows)

		state, err := repo.GetState(ctx)

		require.NoError(t, err)
		assert.Equal(t, 4, state.TotalChecks)
		assert.Equal(t, time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC), state.LastChecked)
		require.Len(t, state.Products, 2)
		assert.Equal(t, "B2", state.Products[0].ProductCode)
		assert.Equal(t, 2000, state.Products[0].PriceNumeric)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestRepository_UpdateState_Failures tests how UpdateState handles transaction errors.
func TestRepository_UpdateState_Failures(t *testing.T) {
	ctx := t.Context()
	checkedAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	stateToUpdate := &models.State{
		LastChecked: checkedAt,
		TotalChecks: 2,
		Products:    []models.Product{{ProductCode: "A1"}},
	}
	const stamp = "2025-06-01T09:30:00Z"

	t.Run("error_on_begin_transaction", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		expectedErr := errors.New("cannot start transaction")
		mock.ExpectBegin().WillReturnError(expectedErr)

		err := repo.UpdateState(ctx, stateToUpdate)

		require.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_update_state_row", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT OR REPLACE INTO watch_state").
			WithArgs(stamp, 2).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.UpdateState(ctx, stateToUpdate)

		require.ErrorContains(t, err, "failed to update watch state")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_delete_products", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT OR REPLACE INTO watch_state").
			WithArgs(stamp, 2).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM products").WillReturnError(errors.New("delete failed"))
		mock.ExpectRollback()

		err := repo.UpdateState(ctx, stateToUpdate)

		require.ErrorContains(t, err, "failed to delete old products")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_prepare_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT OR REPLACE INTO watch_state").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectPrepare("INSERT INTO products").WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.UpdateState(ctx, stateToUpdate)

		require.ErrorContains(t, err, "failed to prepare insert statement")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_insert_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT OR REPLACE INTO watch_state").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))

		prep := mock.ExpectPrepare("INSERT INTO products")
		prep.ExpectExec().WithArgs(0, "A1", "", "", "", 0, "", "").WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.UpdateState(ctx, stateToUpdate)

		require.ErrorContains(t, err, "failed to insert product with code A1")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_commit", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT OR REPLACE INTO watch_state").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))

		prep := mock.ExpectPrepare("INSERT INTO products")
		prep.ExpectExec().WithArgs(0, "A1", "", "", "", 0, "", "").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		err := repo.UpdateState(ctx, stateToUpdate)

		require.ErrorContains(t, err, "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
