package tui

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"costar-map/models"
	"costar-map/services"
	"costar-map/utils"
)

func TestReadKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  key
	}{
		{"ansi up", "\x1b[A", keyUp},
		{"ansi down", "\x1b[B", keyDown},
		{"windows up", "\xe0H", keyUp},
		{"windows down", "\x00P", keyDown},
		{"enter", "\r", keyEnter},
		{"newline", "\n", keyEnter},
		{"bare esc", "\x1b", keyQuit},
		{"ctrl-c", "\x03", keyQuit},
		{"vi down", "j", keyDown},
		{"other", "x", keyNone},
		{"ansi right", "\x1b[C", keyNone},
	}

	for _, tt := range tests {
		got, err := readKey(bufio.NewReader(strings.NewReader(tt.input)))
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestChoose(t *testing.T) {
	options := []string{"Fresno", "Los Angeles", "Sacramento"}

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{"first", "\r", 0, nil},
		{"down twice", "\x1b[B\x1b[B\r", 2, nil},
		{"clamped", "jjjjj\r", 2, nil},
		{"up at top", "\x1b[A\r", 0, nil},
		{"down then up", "jk\r", 0, nil},
		{"quit", "jq", -1, ErrCancelled},
		{"eof", "j", -1, ErrCancelled},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := choose(strings.NewReader(tt.input), &out, "City", options)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: err = %v; want %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
		if !strings.Contains(out.String(), "> Fresno") {
			t.Errorf("%s: first draw should highlight the first option", tt.name)
		}
	}

	if _, err := choose(strings.NewReader("\r"), &bytes.Buffer{}, "City", nil); err == nil {
		t.Error("expected an error for no options")
	}
}

func TestBrowserRun(t *testing.T) {
	listings := []*models.Listing{
		{City: "Los Angeles", Zip: "90210", TotalAvailableSpaceSF: 100000, NumberOfParkingSpaces: 100, Rent: 5.5, PropertyName: "Tower One"},
		{City: "Los Angeles", Zip: "90001", TotalAvailableSpaceSF: 60000, NumberOfParkingSpaces: 50, Rent: 3},
		{City: "Fresno", Zip: "93650", TotalAvailableSpaceSF: 250000, NumberOfParkingSpaces: 400, Rent: 1.2},
	}

	var titles [][]string
	picks := []string{"Los Angeles", "90210"}
	var out bytes.Buffer
	b := NewBrowser(listings, services.NewSummaryService(utils.Discard()), &out)
	b.pick = func(title string, options []string) (string, error) {
		titles = append(titles, options)
		p := picks[0]
		picks = picks[1:]
		return p, nil
	}

	if err := b.Run(50000, 50); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(titles) != 2 || strings.Join(titles[1], ",") != "90001,90210" {
		t.Errorf("zip options should be restricted to the city, got %v", titles)
	}
	for _, want := range []string{"ZIP Code: 90210", "Sites Found: 1", "Tower One"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBrowserCancelled(t *testing.T) {
	b := NewBrowser(nil, services.NewSummaryService(utils.Discard()), &bytes.Buffer{})
	b.pick = func(string, []string) (string, error) { return "", ErrCancelled }

	if err := b.Run(0, 0); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}
