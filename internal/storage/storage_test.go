package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"busfinder/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(filepath.Join(t.TempDir(), "busfinder.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	assert.False(t, db.HasData(ctx))
	c, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestImportAndLoadCatalog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	want := catalog.Sample()

	require.NoError(t, db.ImportCatalog(ctx, want, "sample"))
	assert.True(t, db.HasData(ctx))

	got, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Specs(), got.Specs())
	assert.Equal(t, want.Coordinates(), got.Coordinates())
	assert.Equal(t, want.StopNames(), got.StopNames())

	source, err := db.GetMetadata(ctx, "source")
	require.NoError(t, err)
	assert.Equal(t, "sample", source)

	importedAt, err := db.GetMetadata(ctx, "imported_at")
	require.NoError(t, err)
	assert.NotEmpty(t, importedAt)
}

func TestImportReplacesPreviousCatalog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.ImportCatalog(ctx, catalog.Sample(), "sample"))

	small := catalog.New([]catalog.RouteSpec{
		{Name: "X1", Stops: []string{"A", "B"}},
		{Name: "X1", Stops: []string{"B", "A"}},
		{Name: "Empty"},
	}, map[string]catalog.Coordinate{"A": {Lat: 1, Lng: 2}})
	require.NoError(t, db.ImportCatalog(ctx, small, "test"))

	got, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, small.Specs(), got.Specs())
	assert.Equal(t, small.Coordinates(), got.Coordinates())
}

func TestMetadataMissingKey(t *testing.T) {
	db := openTestDB(t)
	v, err := db.GetMetadata(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, db.SetMetadata(context.Background(), "nope", "yes"))
	v, err = db.GetMetadata(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "yes", v)
}
