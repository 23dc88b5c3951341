package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-enrich/internal/feed"
	"github.com/sells-group/catalog-enrich/internal/model"
	"github.com/sells-group/catalog-enrich/internal/store"
)

func newImportStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestImportRecords(t *testing.T) {
	st := newImportStore(t)

	records := []feed.Record{
		{Line: 2, SKU: "CF234A", RawTitle: "Тонер-картридж HP CF234A"},
		{Line: 3, SKU: "CE285A", RawTitle: "Картридж HP CE285A черный"},
	}
	imported, err := importRecords(context.Background(), st, records)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	item, err := st.GetByInputHash(context.Background(), model.HashInput("Тонер-картридж HP CF234A"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, item.Status)
}

func TestImportRecords_SkipsAlreadyStored(t *testing.T) {
	st := newImportStore(t)

	records := []feed.Record{{Line: 2, SKU: "CF234A", RawTitle: "Тонер-картридж HP CF234A"}}
	_, err := importRecords(context.Background(), st, records)
	require.NoError(t, err)

	imported, err := importRecords(context.Background(), st, records)
	require.NoError(t, err)
	assert.Zero(t, imported)

	items, err := st.ListItems(context.Background(), store.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestReadFeed_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte("sku;title\nCF234A;Тонер-картридж HP CF234A\n"), 0o644))

	records, err := readFeed(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CF234A", records[0].SKU)
	assert.Equal(t, "Тонер-картридж HP CF234A", records[0].RawTitle)
}
