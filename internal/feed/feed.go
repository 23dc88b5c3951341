// Package feed ingests supplier catalog feeds. Feeds arrive as CSV or
// XLSX files, fetched over HTTP or FTP, and reduce to one record per raw
// product title.
package feed

import "strings"

// Record is one supplier feed row after column mapping.
type Record struct {
	Line     int    `json:"line"`
	SKU      string `json:"sku"`
	RawTitle string `json:"raw_title"`
}

// ColumnMap locates the SKU and title columns in a feed. Suppliers do not
// agree on column order, so the mapping is per-feed configuration.
type ColumnMap struct {
	SKU   int `yaml:"sku" mapstructure:"sku"`
	Title int `yaml:"title" mapstructure:"title"`
}

// DefaultColumnMap assumes sku,title as the leading columns.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{SKU: 0, Title: 1}
}

// mapRow converts a raw row into a Record. Rows whose title cell is empty
// or missing produce ok=false and are skipped by the readers.
func mapRow(line int, row []string, cols ColumnMap) (Record, bool) {
	if cols.Title >= len(row) {
		return Record{}, false
	}
	title := strings.TrimSpace(row[cols.Title])
	if title == "" {
		return Record{}, false
	}

	sku := ""
	if cols.SKU >= 0 && cols.SKU < len(row) {
		sku = strings.TrimSpace(row[cols.SKU])
	}
	return Record{Line: line, SKU: sku, RawTitle: title}, true
}
