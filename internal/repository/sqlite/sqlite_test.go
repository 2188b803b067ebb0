package sqlite_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Houeta/catalog-watcher/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepository_Success(t *testing.T) {
	ctx := t.Context()

	// The data directory does not exist yet and must be created.
	dbPath := filepath.Join(t.TempDir(), "data", "state.db")

	// No-op logger
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlite.NewRepository(ctx, logger, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	assert.NotNil(t, repo)
	assert.FileExists(t, dbPath)
}

func TestNewRepository_InvalidPath(t *testing.T) {
	ctx := t.Context()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A regular file cannot act as a parent directory.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := sqlite.NewRepository(ctx, logger, filepath.Join(blocker, "state.db"))
	require.Error(t, err)
}

func TestRepository_Close(t *testing.T) {
	ctx := t.Context()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlite.NewRepository(ctx, logger, filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)

	require.NoError(t, repo.Close())
}

func TestSchemaInitialization(t *testing.T) {
	ctx := t.Context()

	dbPath := filepath.Join(t.TempDir(), "schema-test.sqlite")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlite.NewRepository(ctx, logger, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	rows, err := repo.DB().QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	require.NoError(t, err)
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	for _, table := range []string{"watch_state", "products", "subscriptions"} {
		assert.True(t, found[table], "expected table %q to exist, got: %+v", table, found)
	}
}

func TestNewRepository_ReopenKeepsData(t *testing.T) {
	ctx := t.Context()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlite.NewRepository(ctx, logger, dbPath)
	require.NoError(t, err)
	_, err = repo.AddSubscriber(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Migration must be idempotent.
	repo, err = sqlite.NewRepository(ctx, logger, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	chats, err := repo.Subscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, chats)
}
