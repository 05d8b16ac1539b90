package tui

import (
	"fmt"
	"io"

	"costar-map/models"
	"costar-map/services"
)

// maxRows caps the listing table printed after the summary.
const maxRows = 10

// SelectFunc picks one of options.
type SelectFunc func(title string, options []string) (string, error)

// Browser walks the user through city and zip selection and prints the
// summary for the chosen area.
type Browser struct {
	listings []*models.Listing
	summary  *services.SummaryService
	out      io.Writer
	pick     SelectFunc
}

// NewBrowser returns a Browser reading keys from the terminal.
func NewBrowser(listings []*models.Listing, summary *services.SummaryService, out io.Writer) *Browser {
	return &Browser{listings: listings, summary: summary, out: out, pick: Select}
}

// Run performs one pass: city, then zip among that city's zips, then the
// summary filtered with minSize and minParking.
func (b *Browser) Run(minSize, minParking float64) error {
	city, err := b.pick("City", services.CityOptions(b.listings))
	if err != nil {
		return fmt.Errorf("tui: city: %w", err)
	}

	zip, err := b.pick(fmt.Sprintf("ZIP Code (%s)", city), services.ZipOptions(b.listings, city))
	if err != nil {
		return fmt.Errorf("tui: zip: %w", err)
	}

	c := models.Criteria{City: city, Zip: zip, MinSize: minSize, MinParking: minParking}
	subset := services.Filter(b.listings, c)

	b.summary.Print(b.out, c, services.Summarize(subset))
	b.summary.PrintListings(b.out, subset, maxRows)
	return nil
}
