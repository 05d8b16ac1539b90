package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"costar-map/models"
)

// CSVReader loads raw listings from a comma-delimited file with a header row.
type CSVReader struct {
	path string
}

// NewCSVReader returns a reader for the file at path. The file is opened on
// every Load, so a reader can be reused.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// Load reads every row of the file.
func (c *CSVReader) Load(ctx context.Context) ([]*models.RawListing, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", c.path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// Close is a no-op; the file is closed after each Load.
func (c *CSVReader) Close() error {
	return nil
}

// ReadCSV parses listings from r. A missing required column fails the whole
// read. Short rows leave the trailing cells empty; rows with more cells than
// the header are an error.
func ReadCSV(ctx context.Context, r io.Reader) ([]*models.RawListing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: file is empty")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv: %w %q", ErrMissingColumn, col)
		}
	}

	listings := make([]*models.RawListing, 0, 1024)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", row, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("csv: row %d: expected %d fields, saw %d", row, len(header), len(record))
		}
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		listings = append(listings, &models.RawListing{
			Row:                   row,
			Zip:                   cell(ColZip),
			City:                  cell(ColCity),
			TotalAvailableSpaceSF: cell(ColSize),
			NumberOfParkingSpaces: cell(ColParking),
			Rent:                  cell(ColRent),
			Latitude:              cell(ColLatitude),
			Longitude:             cell(ColLongitude),
			PropertyName:          cell(ColPropertyName),
			PropertyAddress:       cell(ColPropertyAddress),
		})
	}

	return listings, nil
}
