package storage

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	db.MustExec(`
		CREATE TABLE listings (
			zip                      TEXT,
			city                     TEXT,
			total_available_space_sf REAL,
			number_of_parking_spaces INTEGER,
			rent                     REAL,
			latitude                 REAL,
			longitude                REAL,
			property_name            TEXT,
			property_address         TEXT
		)`)
	db.MustExec(`INSERT INTO listings VALUES ('90210-1', ' los angeles ', 100000, 100, 5.5, 34.09, -118.41, 'Tower One', '1 Main St')`)
	db.MustExec(`INSERT INTO listings VALUES ('94105', 'San Francisco', 2500, NULL, 7.25, 37.79, -122.39, NULL, NULL)`)
	return db
}

func TestSQLReaderLoad(t *testing.T) {
	reader, err := NewSQLReaderFromDB(newTestDB(t), "listings")
	if err != nil {
		t.Fatal(err)
	}

	rows, err := reader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Zip != "90210-1" || first.City != " los angeles " {
		t.Errorf("text columns: got zip=%q city=%q", first.Zip, first.City)
	}
	if first.NumberOfParkingSpaces != "100" {
		t.Errorf("integer column: got %q, want 100", first.NumberOfParkingSpaces)
	}
	if first.Rent != "5.5" {
		t.Errorf("real column: got %q, want 5.5", first.Rent)
	}

	second := rows[1]
	if second.Row != 2 {
		t.Errorf("Row: got %d, want 2", second.Row)
	}
	if second.NumberOfParkingSpaces != "" || second.PropertyName != "" {
		t.Errorf("NULL should become empty text, got %q / %q", second.NumberOfParkingSpaces, second.PropertyName)
	}
}

func TestSQLReaderRejectsBadTableName(t *testing.T) {
	tests := []string{"", "listings; DROP TABLE x", "1abc", "a.b.c"}

	for _, name := range tests {
		if _, err := NewSQLReaderFromDB(nil, name); err == nil {
			t.Errorf("table name %q should be rejected", name)
		}
	}
}

func TestSQLReaderOpenSQLite(t *testing.T) {
	reader, err := NewSQLReader(context.Background(), "sqlite", ":memory:", "public.listings")
	if err != nil {
		t.Fatalf("NewSQLReader: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Load(context.Background()); err == nil {
		t.Error("expected an error for a table that does not exist")
	}
}
