package boundary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"

	"costar-map/utils"
)

// ErrNotLoaded is returned before the first successful load.
var ErrNotLoaded = errors.New("boundary not loaded")

// Store holds the selected region boundary for the life of the process.
// It is loaded once and replaced only by an explicit Refresh.
type Store struct {
	source Source
	region string
	logger *utils.Logger

	mu       sync.RWMutex
	current  *geojson.FeatureCollection
	encoded  []byte
	err      error
	loadedAt time.Time
}

func NewStore(source Source, region string, logger *utils.Logger) *Store {
	return &Store{
		source: source,
		region: region,
		logger: logger,
		err:    ErrNotLoaded,
	}
}

// Init performs the startup load.
func (s *Store) Init(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh reloads the boundary. A failed refresh keeps the last good
// boundary in place and returns the error.
func (s *Store) Refresh(ctx context.Context) error {
	fc, encoded, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.current == nil {
			s.err = err
		}
		s.logger.Warn("[boundary] Load failed: %v", err)
		return err
	}

	s.current = fc
	s.encoded = encoded
	s.err = nil
	s.loadedAt = time.Now()
	s.logger.Info("[boundary] Loaded %d feature(s) for %s", len(fc.Features), s.region)
	return nil
}

func (s *Store) load(ctx context.Context) (*geojson.FeatureCollection, []byte, error) {
	all, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	fc, err := Select(all, s.region)
	if err != nil {
		return nil, nil, err
	}
	encoded, err := Marshal(fc)
	if err != nil {
		return nil, nil, err
	}
	return fc, encoded, nil
}

// Current returns the loaded boundary or the reason there is none.
func (s *Store) Current() (*geojson.FeatureCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, s.err
	}
	return s.current, nil
}

// GeoJSON returns the encoded boundary or the reason there is none.
func (s *Store) GeoJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, s.err
	}
	return s.encoded, nil
}

// LoadedAt reports when the current boundary was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
