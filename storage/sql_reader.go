package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"costar-map/models"
)

var tableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLReader loads raw listings from a database table. It supports the
// postgres, oracle and sqlite drivers; the table is only ever read.
type SQLReader struct {
	db    *sqlx.DB
	table string
}

// listingRow mirrors the listings table. Every column is scanned as text so
// that SQL rows go through the same normalisation as CSV rows.
type listingRow struct {
	Zip             sql.NullString `db:"zip"`
	City            sql.NullString `db:"city"`
	Size            sql.NullString `db:"total_available_space_sf"`
	Parking         sql.NullString `db:"number_of_parking_spaces"`
	Rent            sql.NullString `db:"rent"`
	Latitude        sql.NullString `db:"latitude"`
	Longitude       sql.NullString `db:"longitude"`
	PropertyName    sql.NullString `db:"property_name"`
	PropertyAddress sql.NullString `db:"property_address"`
}

// NewSQLReader opens a connection with the given driver and checks it is
// reachable.
func NewSQLReader(ctx context.Context, driver, dsn, table string) (*SQLReader, error) {
	if !tableNameRegexp.MatchString(table) {
		return nil, fmt.Errorf("sql: invalid table name %q", table)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open %s: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: ping %s: %w", driver, err)
	}

	return &SQLReader{db: db, table: table}, nil
}

// NewSQLReaderFromDB wraps an already open connection.
func NewSQLReaderFromDB(db *sqlx.DB, table string) (*SQLReader, error) {
	if !tableNameRegexp.MatchString(table) {
		return nil, fmt.Errorf("sql: invalid table name %q", table)
	}
	return &SQLReader{db: db, table: table}, nil
}

// Load retrieves every listing in table storage order. Columns are aliased
// with quoted lower-case names so the row mapping works on Oracle too.
func (r *SQLReader) Load(ctx context.Context) ([]*models.RawListing, error) {
	query := fmt.Sprintf(`
		SELECT
			zip                      AS "zip",
			city                     AS "city",
			total_available_space_sf AS "total_available_space_sf",
			number_of_parking_spaces AS "number_of_parking_spaces",
			rent                     AS "rent",
			latitude                 AS "latitude",
			longitude                AS "longitude",
			property_name            AS "property_name",
			property_address         AS "property_address"
		FROM %s`, r.table)

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sql: fetch listings: %w", err)
	}

	listings := make([]*models.RawListing, 0, len(rows))
	for i, row := range rows {
		listings = append(listings, &models.RawListing{
			Row:                   i + 1,
			Zip:                   row.Zip.String,
			City:                  row.City.String,
			TotalAvailableSpaceSF: row.Size.String,
			NumberOfParkingSpaces: row.Parking.String,
			Rent:                  row.Rent.String,
			Latitude:              row.Latitude.String,
			Longitude:             row.Longitude.String,
			PropertyName:          row.PropertyName.String,
			PropertyAddress:       row.PropertyAddress.String,
		})
	}
	return listings, nil
}

func (r *SQLReader) Close() error {
	return r.db.Close()
}
