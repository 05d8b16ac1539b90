package storage

import "errors"

// Column headers of the listings spreadsheet.
const (
	ColZip             = "Zip"
	ColCity            = "City"
	ColSize            = "Total Available Space (SF)"
	ColParking         = "Number Of Parking Spaces"
	ColRent            = "Rent"
	ColLatitude        = "Latitude"
	ColLongitude       = "Longitude"
	ColPropertyName    = "Property Name"
	ColPropertyAddress = "Property Address"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{
	ColZip, ColCity, ColSize, ColParking, ColRent, ColLatitude, ColLongitude,
}

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")
