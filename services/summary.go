package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"costar-map/models"
	"costar-map/utils"
)

// NoMatchesMessage is shown instead of the summary block for an empty subset.
const NoMatchesMessage = "No matching sites found for the selected filters."

// SummaryService computes and prints per-selection summaries.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService that logs through logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Summarize computes the count and mean rent/size over subset. Missing
// values are skipped; an average with nothing to average stays nil.
func Summarize(subset []*models.Listing) models.Summary {
	s := models.Summary{Count: len(subset)}
	if s.Count == 0 {
		return s
	}

	s.AverageRent = mean(subset, func(l *models.Listing) float64 { return l.Rent })
	s.AverageSize = mean(subset, func(l *models.Listing) float64 { return l.TotalAvailableSpaceSF })
	return s
}

func mean(subset []*models.Listing, value func(*models.Listing) float64) *float64 {
	var total float64
	var n int
	for _, l := range subset {
		v := value(l)
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := total / float64(n)
	return &avg
}

// FormatRent renders a rent per square foot, e.g. "$20.00 / SF".
func FormatRent(v float64) string {
	return fmt.Sprintf("$%.2f / SF", v)
}

// FormatSize renders a whole number of square feet with thousands
// separators, e.g. "100,000 SF".
func FormatSize(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d SF", int64(math.RoundToEven(v)))
}

// Lines returns the summary block for display. An empty summary yields the
// single no-matches line.
func Lines(zip string, s models.Summary) []string {
	if s.Empty() {
		return []string{NoMatchesMessage}
	}
	return []string{
		"ZIP Code: " + zip,
		"Average Rent: " + optional(s.AverageRent, FormatRent),
		"Average Size: " + optional(s.AverageSize, FormatSize),
		fmt.Sprintf("Sites Found: %d", s.Count),
	}
}

func optional(v *float64, format func(float64) string) string {
	if v == nil {
		return "n/a"
	}
	return format(*v)
}

// Print writes the summary block for the terminal.
func (s *SummaryService) Print(w io.Writer, c models.Criteria, summary models.Summary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🔍 LISTING SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Filters\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  City              : \033[1m%s\033[0m\n", c.City)
	fmt.Fprintf(w, "  Min space         : \033[1m%s\033[0m\n", FormatSize(c.MinSize))
	fmt.Fprintf(w, "  Min parking       : \033[1m%.0f\033[0m\n", c.MinParking)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Results\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, line := range Lines(c.Zip, summary) {
		fmt.Fprintf(w, "  %s\n", line)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)

	if summary.Empty() {
		s.logger.Debug("[summary] No matches for %s %s", c.City, c.Zip)
	}
}

// PrintListings writes up to max rows of subset as a compact table.
func (s *SummaryService) PrintListings(w io.Writer, subset []*models.Listing, max int) {
	if len(subset) == 0 {
		return
	}
	if max <= 0 || max > len(subset) {
		max = len(subset)
	}

	fmt.Fprintf(w, "\033[1;33m  Sites\033[0m\n")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 54))
	for i, l := range subset[:max] {
		name := l.PropertyName
		if name == "" {
			name = "Unnamed"
		}
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-32s %12s  \033[1;32m$%.2f\033[0m\n",
			i+1, truncate(name, 30), FormatSize(l.TotalAvailableSpaceSF), l.Rent)
	}
	if rest := len(subset) - max; rest > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", rest)
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
