package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"costar-map/models"
	"costar-map/render"
	"costar-map/services"
	"costar-map/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

type listingsResponse struct {
	Criteria models.Criteria   `json:"criteria"`
	Summary  models.Summary    `json:"summary"`
	Listings []*models.Listing `json:"listings"`
	Clusters []models.Cluster  `json:"clusters,omitempty"`
}

type refreshResponse struct {
	Status   string    `json:"status"`
	Features int       `json:"features"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := services.Selection{City: q.Get("city"), Zip: q.Get("zip")}

	var err error
	if sel.MinSize, err = optionalFloat(q, "min_size"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sel.MinParking, err = optionalFloat(q, "min_parking"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := s.View(sel)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCriteria) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("[server] Build view: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, view); err != nil {
		s.logger.Error("[server] Render page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.CityOptions(s.listings))
}

func (s *Server) handleZips(w http.ResponseWriter, r *http.Request) {
	city := mux.Vars(r)["city"]
	zips := services.ZipOptions(s.listings, city)
	if len(zips) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown city %q", city))
		return
	}
	writeJSON(w, http.StatusOK, zips)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var c models.Criteria
	for _, name := range []string{"city", "zip"} {
		if _, ok := q[name]; !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing parameter %q", name))
			return
		}
	}
	c.City, c.Zip = q.Get("city"), q.Get("zip")

	var err error
	if c.MinSize, err = requiredFloat(q, "min_size"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c.MinParking, err = requiredFloat(q, "min_parking"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	subset := services.Filter(s.listings, c)
	if q.Get("format") == "csv" {
		s.writeCSV(w, subset)
		return
	}

	resp := listingsResponse{
		Criteria: c,
		Summary:  services.Summarize(subset),
		Listings: subset,
	}

	if q.Get("zoom") != "" {
		zoom, err := strconv.Atoi(q.Get("zoom"))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid zoom %q", q.Get("zoom")))
			return
		}
		resp.Clusters = services.Cluster(subset, services.PrecisionForZoom(zoom))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoundary(w http.ResponseWriter, r *http.Request) {
	b, err := s.boundary.GeoJSON()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(b)
}

func (s *Server) handleBoundaryRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.boundary.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	fc, err := s.boundary.Current()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Status:   "ok",
		Features: len(fc.Features),
		LoadedAt: s.boundary.LoadedAt(),
	})
}

func (s *Server) writeCSV(w http.ResponseWriter, subset []*models.Listing) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.csv"`)

	cw, err := storage.NewCSVWriter(w)
	if err == nil {
		err = cw.Write(subset)
	}
	if err != nil {
		// headers are already sent; all that is left is to log
		s.logger.Error("[server] Write CSV: %v", err)
	}
}

func optionalFloat(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := parseFloat(name, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func requiredFloat(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	return parseFloat(name, raw)
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %q", name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
