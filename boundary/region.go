package boundary

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"costar-map/models"
)

// ErrRegionNotFound is returned when no feature carries the requested name.
var ErrRegionNotFound = errors.New("region not found")

// Select returns the features whose name property equals region exactly.
func Select(fc *geojson.FeatureCollection, region string) (*geojson.FeatureCollection, error) {
	out := &geojson.FeatureCollection{}
	if fc != nil {
		for _, f := range fc.Features {
			if name, _ := f.Properties[NameProperty].(string); name == region {
				out.Features = append(out.Features, f)
			}
		}
	}
	if len(out.Features) == 0 {
		return nil, fmt.Errorf("boundary: %w: %q", ErrRegionNotFound, region)
	}
	return out, nil
}

// Contains reports whether (lat, lon) lies inside any polygon of fc. Points
// inside a hole are outside.
func Contains(fc *geojson.FeatureCollection, lat, lon float64) bool {
	if fc == nil {
		return false
	}
	p := geom.Coord{lon, lat}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case *geom.Polygon:
			if polygonContains(g, p) {
				return true
			}
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				if polygonContains(g.Polygon(i), p) {
					return true
				}
			}
		}
	}
	return false
}

func polygonContains(poly *geom.Polygon, p geom.Coord) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	layout := poly.Layout()
	if !xy.IsPointInRing(layout, p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// CountOutside counts the placeable listings lying outside fc.
func CountOutside(fc *geojson.FeatureCollection, listings []*models.Listing) int {
	var n int
	for _, l := range listings {
		if l.HasCoordinates() && !Contains(fc, l.Latitude, l.Longitude) {
			n++
		}
	}
	return n
}

// Marshal encodes fc as GeoJSON.
func Marshal(fc *geojson.FeatureCollection) ([]byte, error) {
	if fc == nil {
		return nil, ErrNotLoaded
	}
	b, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("boundary: encode: %w", err)
	}
	return b, nil
}
