package feed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, recCh <-chan Record, errCh <-chan error) []Record {
	t.Helper()
	var records []Record
	for rec := range recCh {
		records = append(records, rec)
	}
	require.NoError(t, <-errCh)
	return records
}

func TestStreamCSV_SemicolonFeed(t *testing.T) {
	feed := "sku;title\n" +
		"CF234A;Тонер-картридж HP CF234A (9.2K стр)\n" +
		"TN-2375;Brother TN-2375 toner cartridge 2600 pages\n"

	recCh, errCh := StreamCSV(context.Background(), strings.NewReader(feed), CSVOptions{
		Delimiter: ';',
		HasHeader: true,
		Columns:   DefaultColumnMap(),
	})

	records := collect(t, recCh, errCh)
	require.Len(t, records, 2)
	assert.Equal(t, "CF234A", records[0].SKU)
	assert.Equal(t, "Тонер-картридж HP CF234A (9.2K стр)", records[0].RawTitle)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "TN-2375", records[1].SKU)
}

func TestStreamCSV_SkipsEmptyTitles(t *testing.T) {
	feed := "A1,HP toner\nA2,\nA3,Canon ink\n,   \n"

	recCh, errCh := StreamCSV(context.Background(), strings.NewReader(feed), CSVOptions{
		Columns: DefaultColumnMap(),
	})

	records := collect(t, recCh, errCh)
	require.Len(t, records, 2)
	assert.Equal(t, "HP toner", records[0].RawTitle)
	assert.Equal(t, "Canon ink", records[1].RawTitle)
}

func TestStreamCSV_RaggedRows(t *testing.T) {
	// Short rows lack the title column entirely and are skipped.
	feed := "A1,HP toner,extra,cells\nA2\nA3,Canon ink\n"

	recCh, errCh := StreamCSV(context.Background(), strings.NewReader(feed), CSVOptions{
		Columns: DefaultColumnMap(),
	})

	records := collect(t, recCh, errCh)
	require.Len(t, records, 2)
	assert.Equal(t, "A1", records[0].SKU)
	assert.Equal(t, "A3", records[1].SKU)
}

func TestStreamCSV_TrimsCells(t *testing.T) {
	feed := " A1 ,  HP CF234A toner  \n"

	recCh, errCh := StreamCSV(context.Background(), strings.NewReader(feed), CSVOptions{
		Columns: DefaultColumnMap(),
	})

	records := collect(t, recCh, errCh)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].SKU)
	assert.Equal(t, "HP CF234A toner", records[0].RawTitle)
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recCh, errCh := StreamCSV(ctx, strings.NewReader("A1,HP toner\n"), CSVOptions{
		Columns: DefaultColumnMap(),
	})

	for range recCh {
	}
	assert.Error(t, <-errCh)
}

func TestStreamCSV_ZeroOptionsUseDefaultColumns(t *testing.T) {
	// A caller passing a zero CSVOptions still gets sku in column 0 and
	// title in column 1, never the sku cell as the title.
	feed := "CF234A,HP CF234A toner cartridge\n"

	recCh, errCh := StreamCSV(context.Background(), strings.NewReader(feed), CSVOptions{})

	records := collect(t, recCh, errCh)
	require.Len(t, records, 1)
	assert.Equal(t, "CF234A", records[0].SKU)
	assert.Equal(t, "HP CF234A toner cartridge", records[0].RawTitle)
}

func TestStreamCSV_CustomColumns(t *testing.T) {
	feed := "ignore,Тонер HP,CF234A\n"

	recCh, errCh := StreamCSV(context.Background(), strings.NewReader(feed), CSVOptions{
		Columns: ColumnMap{SKU: 2, Title: 1},
	})

	records := collect(t, recCh, errCh)
	require.Len(t, records, 1)
	assert.Equal(t, "CF234A", records[0].SKU)
	assert.Equal(t, "Тонер HP", records[0].RawTitle)
}
