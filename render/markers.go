package render

import (
	"math"
	"strconv"
	"strings"

	"costar-map/models"
)

// UnnamedProperty stands in for a listing without a property name.
const UnnamedProperty = "Unnamed"

// Marker is one map pin. All popup fields are preformatted plain text.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rent    string  `json:"rent"`
	Size    string  `json:"size"`
	Parking string  `json:"parking"`
}

// NewMarkers builds one marker per listing that has coordinates, in order.
func NewMarkers(subset []*models.Listing) []Marker {
	markers := make([]Marker, 0, len(subset))
	for _, l := range subset {
		if !l.HasCoordinates() {
			continue
		}

		name := strings.TrimSpace(l.PropertyName)
		if name == "" {
			name = UnnamedProperty
		}

		markers = append(markers, Marker{
			Lat:     l.Latitude,
			Lon:     l.Longitude,
			Name:    name,
			Address: strings.TrimSpace(l.PropertyAddress),
			Rent:    dollars(l.Rent),
			Size:    plain(l.TotalAvailableSpaceSF) + " SF",
			Parking: plain(l.NumberOfParkingSpaces),
		})
	}
	return markers
}

func dollars(v float64) string {
	if math.IsNaN(v) {
		return plain(v)
	}
	return "$" + plain(v)
}

func plain(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
