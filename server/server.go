package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"costar-map/boundary"
	"costar-map/config"
	"costar-map/models"
	"costar-map/render"
	"costar-map/services"
	"costar-map/utils"
)

const shutdownTimeout = 10 * time.Second

// Server answers dashboard and API requests over a read-only set of listings.
type Server struct {
	cfg      *config.Config
	logger   *utils.Logger
	listings []*models.Listing
	boundary *boundary.Store
	controls services.Controls
	router   *mux.Router
}

func New(cfg *config.Config, logger *utils.Logger, listings []*models.Listing, store *boundary.Store) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		listings: listings,
		boundary: store,
		controls: services.Controls{MinSize: cfg.MinSize, MinParking: cfg.MinParking},
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(requestID, s.accessLog)

	s.router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cities", s.handleCities).Methods(http.MethodGet)
	api.HandleFunc("/cities/{city}/zips", s.handleZips).Methods(http.MethodGet)
	api.HandleFunc("/listings", s.handleListings).Methods(http.MethodGet)
	api.HandleFunc("/boundary", s.handleBoundary).Methods(http.MethodGet)
	api.HandleFunc("/boundary/refresh", s.handleBoundaryRefresh).Methods(http.MethodPost)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("[server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// View resolves sel and assembles the dashboard for it.
func (s *Server) View(sel services.Selection) (*render.MapView, error) {
	res, err := services.ResolveCriteria(s.listings, sel, s.controls)
	if err != nil {
		return nil, err
	}
	c := res.Criteria

	subset := services.Filter(s.listings, c)
	summary := services.Summarize(subset)

	view := &render.MapView{
		CenterLat: s.cfg.CenterLat,
		CenterLon: s.cfg.CenterLon,
		Zoom:      s.cfg.Zoom,
		Width:     s.cfg.MapWidth,
		Height:    s.cfg.MapHeight,
		Summary:   services.Lines(c.Zip, summary),
		Empty:     summary.Empty(),
		Cities:    render.Options(res.Cities, c.City),
		Zips:      render.Options(res.Zips, c.Zip),
		Controls: []render.Control{
			render.NewControl("min_size", "Min Space Size (SF)", s.controls.MinSize, c.MinSize),
			render.NewControl("min_parking", "Min Parking Spaces", s.controls.MinParking, c.MinParking),
		},
	}
	if !summary.Empty() {
		view.Markers = render.NewMarkers(subset)
	}

	fc, err := s.boundary.Current()
	if err != nil {
		view.Warning = fmt.Sprintf("Region boundary unavailable: %v", err)
		return view, nil
	}
	if view.Boundary, err = s.boundary.GeoJSON(); err != nil {
		view.Warning = fmt.Sprintf("Region boundary unavailable: %v", err)
		return view, nil
	}
	if n := boundary.CountOutside(fc, subset); n > 0 {
		view.Warning = fmt.Sprintf("%d of the sites found lie outside %s", n, s.cfg.RegionName)
	}
	return view, nil
}
