package storage

import "fmt"

// migrate creates the catalog schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Routes; position is the catalog order and the route's identity.
	// Names are not unique.
	`CREATE TABLE IF NOT EXISTS routes (
		position INTEGER PRIMARY KEY,
		name     TEXT NOT NULL
	)`,

	// Ordered stop sequence per route
	`CREATE TABLE IF NOT EXISTS route_stops (
		route_position INTEGER NOT NULL REFERENCES routes(position),
		stop_sequence  INTEGER NOT NULL,
		stop_name      TEXT NOT NULL,
		PRIMARY KEY (route_position, stop_sequence)
	)`,

	// Stop coordinates; a route may reference a stop missing here.
	`CREATE TABLE IF NOT EXISTS stops (
		stop_name TEXT PRIMARY KEY,
		stop_lat  REAL NOT NULL,
		stop_lon  REAL NOT NULL
	)`,

	// Catalog metadata (source, imported_at, etc.)
	`CREATE TABLE IF NOT EXISTS feed_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_route_stops_stop ON route_stops(stop_name)`,
}
