package catalog

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/sqlite"
)

type recordingIndex struct {
	mu       sync.Mutex
	products map[uint32]Product
	adds     int
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{products: map[uint32]Product{}}
}

func (r *recordingIndex) Add(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	r.adds++
}

func TestIndexedFields(t *testing.T) {
	p := New(1, "Smart TV", "", "Eletrônicos", "4K UHD")
	assert.Equal(t, []string{"Smart TV", "Eletrônicos", "4K UHD"}, p.IndexedFields())
	assert.Empty(t, Product{ID: 2}.IndexedFields())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, New(1, "Camisa", "", "", "").Validate())
	err := New(2, " ", "Nike", "", "").Validate()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidProduct))
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJSONFile(t *testing.T) {
	path := writeCatalog(t, `[
		{"id": 1, "name": "Smartphone SuperX 64GB", "category": "Eletrônicos", "description": "câmera dupla"},
		{"id": 2, "name": "", "brand": "ghost"},
		{"id": 3, "name": "Smart TV", "brand": "Acme"},
		{"id": 3, "name": "Smart TV 55", "brand": "Acme"}
	]`)
	idx := newRecordingIndex()

	stats, err := Load(context.Background(), JSONFileSource{Path: path}, idx, 4)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 3, Skipped: 1}, stats)
	assert.Len(t, idx.products, 2)
	assert.Equal(t, "Smart TV 55", idx.products[3].Name, "last duplicate wins")
	assert.Equal(t, "câmera dupla", idx.products[1].Description)
}

func TestLoadJSONFileErrors(t *testing.T) {
	tests := map[string]string{
		"not an array": `{"id": 1}`,
		"bad element":  `[{"id": "x"}]`,
		"truncated":    `[{"id": 1, "name": "a"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(context.Background(), JSONFileSource{Path: writeCatalog(t, body)}, newRecordingIndex(), 2)
			assert.Error(t, err)
		})
	}

	_, err := Load(context.Background(), JSONFileSource{Path: "/nonexistent/catalog.json"}, newRecordingIndex(), 2)
	assert.Error(t, err)
}

func seedSQLite(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`CREATE TABLE products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT,
		category TEXT,
		description TEXT
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO products VALUES
		(10, 'Camisa Preta', NULL, 'Vestuário', NULL),
		(11, 'Camisa Branca', 'Hering', NULL, 'algodão')`)
	require.NoError(t, err)
}

func TestLoadSQLSource(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	seedSQLite(t, db)

	idx := newRecordingIndex()
	stats, err := Load(ctx, SQLSource{DB: db, Label: "sqlite"}, idx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, Product{ID: 10, Name: "Camisa Preta", Category: "Vestuário"}, idx.products[10])
	assert.Equal(t, Product{ID: 11, Name: "Camisa Branca", Brand: "Hering", Description: "algodão"}, idx.products[11])
}

func TestLoadStopsOnCancel(t *testing.T) {
	path := writeCatalog(t, `[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, JSONFileSource{Path: path}, newRecordingIndex(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	src, closer, err := OpenSource(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, src)
	assert.NoError(t, closer.Close())

	cfg.Catalog.Source = config.SourceFile
	cfg.Catalog.Path = "products.json"
	src, _, err = OpenSource(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "file:products.json", src.Name())

	cfg.Catalog.Source = config.SourceSQLite
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "catalog.db")
	src, closer, err = OpenSource(ctx, cfg)
	require.NoError(t, err)
	seedSQLite(t, src.(SQLSource).DB)
	idx := newRecordingIndex()
	_, err = Load(ctx, src, idx, 1)
	require.NoError(t, err)
	assert.Len(t, idx.products, 2)
	assert.NoError(t, closer.Close())

	cfg.Catalog.Source = "mongodb"
	_, _, err = OpenSource(ctx, cfg)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownSource))
}
