package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"busfinder/internal/catalog"
	"busfinder/internal/logging"
)

// GetMetadata retrieves a value from the feed_metadata table.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM feed_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a key-value pair in the feed_metadata table.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`,
		key, value)
	return err
}

// HasData returns true if the database holds at least one route.
func (db *DB) HasData(ctx context.Context) bool {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// ImportCatalog replaces the stored catalog with c in a single transaction.
// source is recorded in feed_metadata for diagnostics.
func (db *DB) ImportCatalog(ctx context.Context, c *catalog.Catalog, source string) error {
	start := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range []string{"route_stops", "routes", "stops", "feed_metadata"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t)); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	routeStmt, err := tx.PrepareContext(ctx, `INSERT INTO routes (position, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare routes: %w", err)
	}
	defer routeStmt.Close()

	stopStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO route_stops (route_position, stop_sequence, stop_name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare route_stops: %w", err)
	}
	defer stopStmt.Close()

	for _, r := range c.Routes() {
		if _, err := routeStmt.ExecContext(ctx, r.ID, r.Name); err != nil {
			return fmt.Errorf("insert route %s: %w", r.Name, err)
		}
		for seq, name := range r.Stops {
			if _, err := stopStmt.ExecContext(ctx, r.ID, seq, name); err != nil {
				return fmt.Errorf("insert stop %d of route %s: %w", seq, r.Name, err)
			}
		}
	}

	coords := c.Coordinates()
	names := make([]string, 0, len(coords))
	for name := range coords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		co := coords[name]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stops (stop_name, stop_lat, stop_lon) VALUES (?, ?, ?)`,
			name, co.Lat, co.Lng); err != nil {
			return fmt.Errorf("insert stop %s: %w", name, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range map[string]string{"imported_at": now, "source": source} {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logging.LogOperation(db.logger, "catalog import complete",
		slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
		slog.Int("routes", c.Len()),
		slog.Int("stops", len(coords)),
		slog.String("source", source),
	)
	return nil
}

// LoadCatalog reads the stored routes and coordinates into a Catalog.
// Routes keep their stored order.
func (db *DB) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.position, r.name, rs.stop_name
		FROM routes AS r
		LEFT JOIN route_stops AS rs ON rs.route_position = r.position
		ORDER BY r.position, rs.stop_sequence`)
	if err != nil {
		return nil, fmt.Errorf("routes query: %w", err)
	}
	defer rows.Close()

	var specs []catalog.RouteSpec
	last := -1
	for rows.Next() {
		var pos int
		var name string
		var stop sql.NullString
		if err := rows.Scan(&pos, &name, &stop); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		if pos != last {
			specs = append(specs, catalog.RouteSpec{Name: name})
			last = pos
		}
		if stop.Valid {
			specs[len(specs)-1].Stops = append(specs[len(specs)-1].Stops, stop.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	coords, err := db.stopCoordinates(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(specs, coords), nil
}

func (db *DB) stopCoordinates(ctx context.Context) (map[string]catalog.Coordinate, error) {
	rows, err := db.QueryContext(ctx, `SELECT stop_name, stop_lat, stop_lon FROM stops`)
	if err != nil {
		return nil, fmt.Errorf("stops query: %w", err)
	}
	defer rows.Close()

	coords := make(map[string]catalog.Coordinate)
	for rows.Next() {
		var name string
		var co catalog.Coordinate
		if err := rows.Scan(&name, &co.Lat, &co.Lng); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		coords[name] = co
	}
	return coords, rows.Err()
}
