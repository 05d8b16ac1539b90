package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	"costar-map/models"
)

// exportColumns is the header written by CSVWriter. It matches the input
// columns so an export can be loaded again.
var exportColumns = []string{
	ColZip, ColCity, ColSize, ColParking, ColRent, ColLatitude, ColLongitude, ColPropertyName, ColPropertyAddress,
}

// CSVWriter writes cleaned listings as CSV.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	writer *csv.Writer
}

// NewCSVWriter writes the header row to w and returns a writer for the rows.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportColumns); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{writer: cw}, nil
}

// Write appends listings in order. Missing numeric values are written as
// empty cells.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			l.Zip,
			l.City,
			formatCell(l.TotalAvailableSpaceSF),
			formatCell(l.NumberOfParkingSpaces),
			formatCell(l.Rent),
			formatCell(l.Latitude),
			formatCell(l.Longitude),
			l.PropertyName,
			l.PropertyAddress,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
