package feed

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV feed reader.
type CSVOptions struct {
	Delimiter  rune      // default ','; many supplier feeds use ';'
	HasHeader  bool      // if true, the first row is skipped
	Columns    ColumnMap // which cells hold sku and title
	LazyQuotes bool
}

// StreamCSV reads a supplier CSV feed and sends mapped records to a
// channel. Rows with an empty title cell are dropped. The caller must
// consume the record channel; both channels close when processing ends.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Record, <-chan error) {
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	if opts.Columns == (ColumnMap{}) {
		opts.Columns = DefaultColumnMap()
	}

	go func() {
		defer close(recCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // supplier feeds have ragged rows

		line := 0
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "feed: csv context cancelled")
				return
			}

			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrapf(err, "feed: csv read row %d", line+1)
				return
			}
			line++

			if line == 1 && opts.HasHeader {
				continue
			}

			rec, ok := mapRow(line, row, opts.Columns)
			if !ok {
				continue
			}

			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "feed: csv context cancelled")
				return
			}
		}
	}()

	return recCh, errCh
}
