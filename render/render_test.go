package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"costar-map/config"
	"costar-map/models"
)

func TestNewMarkers(t *testing.T) {
	subset := []*models.Listing{
		{PropertyName: "Tower One", PropertyAddress: "1 Main St", Rent: 5.5, TotalAvailableSpaceSF: 100000, NumberOfParkingSpaces: 100, Latitude: 34.09, Longitude: -118.41},
		{Rent: math.NaN(), TotalAvailableSpaceSF: 2500, NumberOfParkingSpaces: 10, Latitude: 37.79, Longitude: -122.39},
		{PropertyName: "Nowhere", Latitude: math.NaN(), Longitude: -118},
	}

	got := NewMarkers(subset)
	if len(got) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(got))
	}

	want := Marker{Lat: 34.09, Lon: -118.41, Name: "Tower One", Address: "1 Main St", Rent: "$5.5", Size: "100000 SF", Parking: "100"}
	if got[0] != want {
		t.Errorf("marker 0:\ngot  %+v\nwant %+v", got[0], want)
	}
	if got[1].Name != UnnamedProperty || got[1].Address != "" || got[1].Rent != "n/a" {
		t.Errorf("marker 1 placeholders: got %+v", got[1])
	}
}

func testView() *MapView {
	d := config.Defaults()
	return &MapView{
		CenterLat: d.CenterLat,
		CenterLon: d.CenterLon,
		Zoom:      d.Zoom,
		Width:     d.MapWidth,
		Height:    d.MapHeight,
		Boundary:  []byte(`{"type":"FeatureCollection","features":[]}`),
		Markers: NewMarkers([]*models.Listing{
			{PropertyName: "Tower One", Rent: 5.5, TotalAvailableSpaceSF: 100000, NumberOfParkingSpaces: 100, Latitude: 34.09, Longitude: -118.41},
		}),
		Summary: []string{"ZIP Code: 90210", "Average Rent: $5.50 / SF", "Average Size: 100,000 SF", "Sites Found: 1"},
		Cities:  Options([]string{"Fresno", "Los Angeles"}, "Los Angeles"),
		Zips:    Options([]string{"90001", "90210"}, "90210"),
		Controls: []Control{
			NewControl("min_size", "Min Space Size (SF)", d.MinSize, 50000),
			NewControl("min_parking", "Min Parking Spaces", d.MinParking, 50),
		},
	}
}

func renderDoc(t *testing.T, view *MapView) (*goquery.Document, string) {
	t.Helper()
	var buf bytes.Buffer
	if err := Page(&buf, view); err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := buf.String()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc, html
}

func TestPage(t *testing.T) {
	doc, html := renderDoc(t, testView())

	if got := doc.Find("title").Text(); got != DefaultTitle {
		t.Errorf("title: got %q", got)
	}
	if got := doc.Find("#city option[selected]").AttrOr("value", ""); got != "Los Angeles" {
		t.Errorf("selected city: got %q", got)
	}
	if got := doc.Find("#zip option").Length(); got != 2 {
		t.Errorf("zip options: got %d, want 2", got)
	}
	if got := doc.Find("#summary li").Length(); got != 4 {
		t.Errorf("summary lines: got %d, want 4", got)
	}
	if doc.Find("#no-results").Length() != 0 || doc.Find("#warning").Length() != 0 {
		t.Error("unexpected no-results or warning block")
	}

	size := doc.Find("#min_size")
	if size.AttrOr("max", "") != "1500000" || size.AttrOr("step", "") != "10000" || size.AttrOr("value", "") != "50000" {
		t.Errorf("min_size control attributes: max=%q step=%q value=%q",
			size.AttrOr("max", ""), size.AttrOr("step", ""), size.AttrOr("value", ""))
	}

	style := doc.Find("#map").AttrOr("style", "")
	if !strings.Contains(style, "900px") || !strings.Contains(style, "600px") {
		t.Errorf("map footprint: got %q", style)
	}

	for _, want := range []string{`"Tower One"`, `"boundary":{"type":"FeatureCollection"`, `"center":[36.7783,-119.4179]`} {
		if !strings.Contains(html, want) {
			t.Errorf("page data missing %s", want)
		}
	}
}

func TestPageEmptyAndWarning(t *testing.T) {
	view := testView()
	view.Markers = nil
	view.Boundary = nil
	view.Empty = true
	view.Summary = []string{"No matching sites found for the selected filters."}
	view.Warning = "Region boundary unavailable"

	doc, html := renderDoc(t, view)

	if got := doc.Find("#no-results").Text(); got != view.Summary[0] {
		t.Errorf("no-results: got %q", got)
	}
	if doc.Find("#summary").Length() != 0 {
		t.Error("summary list should not render for an empty result")
	}
	if got := doc.Find("#warning").Text(); got != view.Warning {
		t.Errorf("warning: got %q", got)
	}
	if !strings.Contains(html, `"boundary":null`) || !strings.Contains(html, `"markers":null`) {
		t.Error("an empty view should carry no boundary and no markers")
	}
}

func TestPageEscapesListingText(t *testing.T) {
	view := testView()
	view.Markers = []Marker{{Name: "</script><script>alert(1)</script>", Lat: 34, Lon: -118}}

	_, html := renderDoc(t, view)
	if strings.Contains(html, "<script>alert(1)") {
		t.Error("listing text must not break out of the data script")
	}
}

func TestPageRejectsBadInput(t *testing.T) {
	view := testView()
	view.Boundary = []byte("{not json")
	if err := Page(&bytes.Buffer{}, view); err == nil {
		t.Error("expected an error for an invalid boundary")
	}

	view = testView()
	view.Empty = true
	view.Summary = nil
	if err := Page(&bytes.Buffer{}, view); err == nil {
		t.Error("expected an error for an empty view without a message")
	}
}

func TestFindChromeBinaryOverride(t *testing.T) {
	if got := FindChromeBinary("/opt/custom/chrome"); got != "/opt/custom/chrome" {
		t.Errorf("override: got %q", got)
	}

	t.Setenv("CHROME_BIN", "/usr/local/bin/chrome-test")
	if got := FindChromeBinary(""); got != "/usr/local/bin/chrome-test" {
		t.Errorf("CHROME_BIN: got %q", got)
	}
}
