package services

import (
	"errors"
	"fmt"
	"sort"

	"costar-map/config"
	"costar-map/models"
)

// ErrInvalidCriteria is returned when a threshold is not a selectable value.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Filter returns the listings matching every predicate of c, in input order.
// Missing numeric values never satisfy a threshold.
func Filter(listings []*models.Listing, c models.Criteria) []*models.Listing {
	subset := make([]*models.Listing, 0)
	for _, l := range listings {
		if l.City == c.City &&
			l.Zip == c.Zip &&
			l.TotalAvailableSpaceSF >= c.MinSize &&
			l.NumberOfParkingSpaces >= c.MinParking {
			subset = append(subset, l)
		}
	}
	return subset
}

// CityOptions returns the distinct cities, sorted.
func CityOptions(listings []*models.Listing) []string {
	return distinctSorted(listings, func(l *models.Listing) (string, bool) {
		return l.City, true
	})
}

// ZipOptions returns the distinct zips of the listings in city, sorted.
func ZipOptions(listings []*models.Listing, city string) []string {
	return distinctSorted(listings, func(l *models.Listing) (string, bool) {
		return l.Zip, l.City == city
	})
}

func distinctSorted(listings []*models.Listing, key func(*models.Listing) (string, bool)) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, l := range listings {
		k, ok := key(l)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Selection is what a user asked for in one interaction. Nil thresholds take
// the control defaults.
type Selection struct {
	City       string
	Zip        string
	MinSize    *float64
	MinParking *float64
}

// Controls describes the two numeric filter inputs.
type Controls struct {
	MinSize    config.Range
	MinParking config.Range
}

// Resolved is the effective state of one interaction: the criteria to filter
// with and the options the inputs should offer.
type Resolved struct {
	Criteria models.Criteria
	Cities   []string
	Zips     []string
}

// ResolveCriteria turns a Selection into criteria the way the dashboard
// inputs behave: an unknown city falls back to the first city, and a zip that
// does not belong to the chosen city falls back to that city's first zip.
func ResolveCriteria(listings []*models.Listing, sel Selection, controls Controls) (Resolved, error) {
	res := Resolved{Cities: CityOptions(listings)}

	city := sel.City
	if !contains(res.Cities, city) {
		city = ""
		if len(res.Cities) > 0 {
			city = res.Cities[0]
		}
	}

	res.Zips = ZipOptions(listings, city)
	zip := sel.Zip
	if !contains(res.Zips, zip) {
		zip = ""
		if len(res.Zips) > 0 {
			zip = res.Zips[0]
		}
	}

	minSize, err := threshold("min_size", sel.MinSize, controls.MinSize)
	if err != nil {
		return res, err
	}
	minParking, err := threshold("min_parking", sel.MinParking, controls.MinParking)
	if err != nil {
		return res, err
	}

	res.Criteria = models.Criteria{City: city, Zip: zip, MinSize: minSize, MinParking: minParking}
	return res, nil
}

func threshold(name string, v *float64, r config.Range) (float64, error) {
	if v == nil {
		return r.Default, nil
	}
	if !r.Contains(*v) {
		return 0, fmt.Errorf("%w: %s %v must be within [%v, %v] in steps of %v",
			ErrInvalidCriteria, name, *v, r.Min, r.Max, r.Step)
	}
	return *v, nil
}

func contains(list []string, s string) bool {
	i := sort.SearchStrings(list, s)
	return i < len(list) && list[i] == s
}
