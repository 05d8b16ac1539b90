package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"costar-map/config"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// DefaultTitle heads the dashboard page.
const DefaultTitle = "Commercial Listings Map"

// Option is one entry of a select input.
type Option struct {
	Value    string
	Selected bool
}

// Control is a numeric input. Values are preformatted so large bounds do not
// render in exponent notation.
type Control struct {
	Name  string
	Label string
	Min   string
	Max   string
	Step  string
	Value string
}

// NewControl describes a numeric input bounded by r and currently set to v.
func NewControl(name, label string, r config.Range, v float64) Control {
	return Control{
		Name:  name,
		Label: label,
		Min:   number(r.Min),
		Max:   number(r.Max),
		Step:  number(r.Step),
		Value: number(v),
	}
}

// Options turns values into select options, marking selected.
func Options(values []string, selected string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v, Selected: v == selected}
	}
	return opts
}

// MapView is everything one rendering of the dashboard needs.
type MapView struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Width     int
	Height    int

	// Boundary is the encoded region outline; nil draws none.
	Boundary []byte
	Warning  string
	Markers  []Marker

	// Summary holds the summary lines, or the single no-matches line when
	// Empty is set.
	Summary []string
	Empty   bool

	Cities   []Option
	Zips     []Option
	Controls []Control
}

type mapData struct {
	Center   [2]float64      `json:"center"`
	Zoom     int             `json:"zoom"`
	Boundary json.RawMessage `json:"boundary"`
	Markers  []Marker        `json:"markers"`
}

type pageData struct {
	*MapView
	Data mapData
}

// Page renders the dashboard as a standalone HTML document.
func Page(w io.Writer, view *MapView) error {
	if view.Title == "" {
		view.Title = DefaultTitle
	}
	if view.Empty && len(view.Summary) == 0 {
		return fmt.Errorf("render: empty view needs a message")
	}

	var boundary json.RawMessage
	if len(view.Boundary) > 0 {
		if !json.Valid(view.Boundary) {
			return fmt.Errorf("render: boundary is not valid JSON")
		}
		boundary = view.Boundary
	}

	data := pageData{
		MapView: view,
		Data: mapData{
			Center:   [2]float64{view.CenterLat, view.CenterLon},
			Zoom:     view.Zoom,
			Boundary: boundary,
			Markers:  view.Markers,
		},
	}

	// a failed render writes nothing
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
