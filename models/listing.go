package models

import (
	"encoding/json"
	"math"
)

// RawListing holds one row exactly as a listing source produced it.
// Every field is text; parsing and normalisation happen in the cleaner.
type RawListing struct {
	Row                   int
	Zip                   string
	City                  string
	TotalAvailableSpaceSF string
	NumberOfParkingSpaces string
	Rent                  string
	Latitude              string
	Longitude             string
	PropertyName          string
	PropertyAddress       string
}

// Listing is a normalised property row. Numeric fields hold NaN when the
// source cell was empty and incomplete rows were kept.
type Listing struct {
	City                  string  `json:"city"`
	Zip                   string  `json:"zip"`
	TotalAvailableSpaceSF float64 `json:"total_available_space_sf"`
	NumberOfParkingSpaces float64 `json:"number_of_parking_spaces"`
	Rent                  float64 `json:"rent"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	PropertyName          string  `json:"property_name,omitempty"`
	PropertyAddress       string  `json:"property_address,omitempty"`
}

// HasCoordinates reports whether the listing can be placed on a map.
func (l *Listing) HasCoordinates() bool {
	return !math.IsNaN(l.Latitude) && !math.IsNaN(l.Longitude)
}

// MarshalJSON writes missing numeric values as null; encoding/json cannot
// represent NaN.
func (l Listing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		City                  string   `json:"city"`
		Zip                   string   `json:"zip"`
		TotalAvailableSpaceSF *float64 `json:"total_available_space_sf"`
		NumberOfParkingSpaces *float64 `json:"number_of_parking_spaces"`
		Rent                  *float64 `json:"rent"`
		Latitude              *float64 `json:"latitude"`
		Longitude             *float64 `json:"longitude"`
		PropertyName          string   `json:"property_name,omitempty"`
		PropertyAddress       string   `json:"property_address,omitempty"`
	}{
		City:                  l.City,
		Zip:                   l.Zip,
		TotalAvailableSpaceSF: nullable(l.TotalAvailableSpaceSF),
		NumberOfParkingSpaces: nullable(l.NumberOfParkingSpaces),
		Rent:                  nullable(l.Rent),
		Latitude:              nullable(l.Latitude),
		Longitude:             nullable(l.Longitude),
		PropertyName:          l.PropertyName,
		PropertyAddress:       l.PropertyAddress,
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Criteria is the set of user-selected filter parameters.
type Criteria struct {
	City       string  `json:"city"`
	Zip        string  `json:"zip"`
	MinSize    float64 `json:"min_size"`
	MinParking float64 `json:"min_parking"`
}

// Summary holds the statistics over a filtered subset. The averages are nil
// when there is nothing to average.
type Summary struct {
	Count       int      `json:"count"`
	AverageRent *float64 `json:"average_rent"`
	AverageSize *float64 `json:"average_size"`
}

// Empty reports the "no matches" state.
func (s Summary) Empty() bool {
	return s.Count == 0
}

// Cluster groups nearby listings under one geohash cell.
type Cluster struct {
	Geohash   string  `json:"geohash"`
	Count     int     `json:"count"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
