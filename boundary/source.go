package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"costar-map/config"
	"costar-map/utils"
)

// NameProperty is the feature property holding the region name.
const NameProperty = "name"

// maxBodyBytes caps the boundary document size.
const maxBodyBytes = 64 << 20

// Source yields a collection of named region polygons.
type Source interface {
	Fetch(ctx context.Context) (*geojson.FeatureCollection, error)
}

// NewSource picks a shapefile when one is configured, the remote document
// otherwise.
func NewSource(cfg *config.Config, logger *utils.Logger) Source {
	if cfg.BoundaryShapefile != "" {
		return NewShapefileSource(cfg.BoundaryShapefile, cfg.BoundaryNameField)
	}
	return NewHTTPSource(cfg.BoundaryURL, time.Duration(cfg.BoundaryTimeout)*time.Second, &utils.RetryConfig{
		MaxAttempts: cfg.BoundaryRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	})
}

// HTTPSource downloads a GeoJSON FeatureCollection.
type HTTPSource struct {
	url    string
	client *http.Client
	retry  *utils.RetryConfig
}

func NewHTTPSource(url string, timeout time.Duration, retry *utils.RetryConfig) *HTTPSource {
	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
		retry:  retry,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	var fc *geojson.FeatureCollection
	err := s.retry.Do(ctx, "boundary fetch", func(ctx context.Context) error {
		var err error
		fc, err = s.fetchOnce(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func (s *HTTPSource) fetchOnce(ctx context.Context) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("boundary: build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary: get %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("boundary: get %s: unexpected status %s", s.url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("boundary: read %s: %w", s.url, err)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("boundary: decode %s: %w", s.url, err)
	}
	return &fc, nil
}

// ShapefileSource reads polygons from a local .shp/.dbf pair.
type ShapefileSource struct {
	path      string
	nameField string
}

func NewShapefileSource(path, nameField string) *ShapefileSource {
	return &ShapefileSource{path: path, nameField: nameField}
}

var errNoNameField = errors.New("name field not found")

func (s *ShapefileSource) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	r, err := shp.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("boundary: open shapefile %s: %w", s.path, err)
	}
	defer r.Close()

	nameIdx := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(strings.TrimSpace(f.String()), s.nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("boundary: %s: %w: %q", s.path, errNoNameField, s.nameField)
	}

	fc := &geojson.FeatureCollection{}
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		mp, err := toMultiPolygon(poly)
		if err != nil {
			return nil, fmt.Errorf("boundary: %s: shape %d: %w", s.path, idx, err)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: mp,
			Properties: map[string]interface{}{
				NameProperty: strings.TrimSpace(r.ReadAttribute(idx, nameIdx)),
			},
		})
	}
	return fc, nil
}

// toMultiPolygon groups shapefile parts into polygons. Clockwise parts open a
// new polygon; counter-clockwise parts are holes of the current one.
func toMultiPolygon(poly *shp.Polygon) (*geom.MultiPolygon, error) {
	var polygons [][][]geom.Coord
	for i := range poly.Parts {
		start := int(poly.Parts[i])
		end := len(poly.Points)
		if i+1 < len(poly.Parts) {
			end = int(poly.Parts[i+1])
		}
		if start < 0 || start > end || end > len(poly.Points) {
			return nil, fmt.Errorf("part %d out of range", i)
		}
		if end-start < 4 {
			// not a closed ring
			continue
		}

		ring := make([]geom.Coord, 0, end-start)
		flat := make([]float64, 0, 2*(end-start))
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
			flat = append(flat, pt.X, pt.Y)
		}

		if len(polygons) == 0 || !xy.IsRingCounterClockwise(geom.XY, flat) {
			polygons = append(polygons, [][]geom.Coord{ring})
			continue
		}
		last := len(polygons) - 1
		polygons[last] = append(polygons[last], ring)
	}

	return geom.NewMultiPolygon(geom.XY).SetCoords(polygons)
}
