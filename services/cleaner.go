package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"costar-map/models"
	"costar-map/storage"
	"costar-map/utils"
)

// ZipLength is the number of characters kept from a raw postal code.
const ZipLength = 5

// ErrInvalidNumber is returned when a numeric cell cannot be parsed.
var ErrInvalidNumber = errors.New("invalid number")

// CleanerOptions controls the optional normalisation steps.
type CleanerOptions struct {
	// DropIncomplete drops rows missing latitude, longitude, rent or parking.
	DropIncomplete bool
	// PadShortZips left-pads digit-only zips shorter than ZipLength with zeros.
	PadShortZips bool
}

// Cleaner transforms RawListings into normalised Listings.
type Cleaner struct {
	logger *utils.Logger
	opts   CleanerOptions
}

// NewCleaner creates a Cleaner with the given logger and options.
func NewCleaner(logger *utils.Logger, opts CleanerOptions) *Cleaner {
	return &Cleaner{logger: logger, opts: opts}
}

// Load reads every row from src and cleans it. Any error is fatal for the
// whole load.
func (c *Cleaner) Load(ctx context.Context, src storage.ListingSource) ([]*models.Listing, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return c.Clean(raw)
}

// Clean processes raw listings and returns normalised records in input order.
func (c *Cleaner) Clean(raw []*models.RawListing) ([]*models.Listing, error) {
	result := make([]*models.Listing, 0, len(raw))
	var shortZips int

	for _, r := range raw {
		listing, err := c.parse(r)
		if err != nil {
			return nil, err
		}

		if c.opts.DropIncomplete && incomplete(listing) {
			c.logger.Debug("[cleaner] Dropping incomplete row %d (%s, %s)", r.Row, listing.City, listing.Zip)
			continue
		}
		if utf8.RuneCountInString(listing.Zip) < ZipLength {
			shortZips++
		}

		result = append(result, listing)
	}

	if shortZips > 0 {
		c.logger.Warn("[cleaner] %d listings have a zip shorter than %d characters", shortZips, ZipLength)
	}
	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result, nil
}

func (c *Cleaner) parse(r *models.RawListing) (*models.Listing, error) {
	l := &models.Listing{
		City:            NormalizeCity(r.City),
		Zip:             NormalizeZip(r.Zip, c.opts.PadShortZips),
		PropertyName:    strings.TrimSpace(r.PropertyName),
		PropertyAddress: strings.TrimSpace(r.PropertyAddress),
	}

	fields := []struct {
		column string
		raw    string
		dst    *float64
	}{
		{storage.ColSize, r.TotalAvailableSpaceSF, &l.TotalAvailableSpaceSF},
		{storage.ColParking, r.NumberOfParkingSpaces, &l.NumberOfParkingSpaces},
		{storage.ColRent, r.Rent, &l.Rent},
		{storage.ColLatitude, r.Latitude, &l.Latitude},
		{storage.ColLongitude, r.Longitude, &l.Longitude},
	}
	for _, f := range fields {
		v, err := parseNumber(f.raw)
		if err != nil {
			return nil, fmt.Errorf("cleaner: row %d: column %q: %w", r.Row, f.column, err)
		}
		*f.dst = v
	}

	return l, nil
}

// NormalizeZip trims the raw value and keeps its first ZipLength characters.
// With pad set, digit-only codes that come out shorter are left-padded with
// zeros, restoring leading zeros lost by spreadsheet exports. Other short
// values are returned as-is.
func NormalizeZip(raw string, pad bool) string {
	z := strings.TrimSpace(raw)
	if utf8.RuneCountInString(z) > ZipLength {
		z = string([]rune(z)[:ZipLength])
	}
	if pad && z != "" && len(z) < ZipLength && isDigits(z) {
		z = strings.Repeat("0", ZipLength-len(z)) + z
	}
	return z
}

// NormalizeCity collapses whitespace and title-cases each word, so
// " los  ANGELES " becomes "Los Angeles".
func NormalizeCity(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	// A Caser keeps state between calls and must not be shared.
	return cases.Title(language.AmericanEnglish).String(collapsed)
}

// parseNumber accepts plain numbers with an optional "$" prefix and
// thousands separators. Empty cells are missing values and come back as NaN.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return v, nil
}

func incomplete(l *models.Listing) bool {
	return math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) ||
		math.IsNaN(l.Rent) || math.IsNaN(l.NumberOfParkingSpaces)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
