package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port int

	// Catalog sources, tried in order: DBPath (if it already holds a
	// catalog), GTFSZip, GTFSURL, CatalogPath, then the built-in sample.
	DBPath      string
	GTFSZip     string
	GTFSURL     string
	GTFSDir     string // where downloaded GTFS archives are written
	CatalogPath string // YAML catalog file

	OSRMURL         string
	GeometryTimeout time.Duration // per-segment road geometry request
	NominatimURL    string
	GeocodeSuffix   string // appended to stop names when geocoding, e.g. ", Kolkata, India"
	UserAgent       string

	AlertsURL string // GTFS-RT service alerts feed; empty disables alerts

	RateLimit int // requests per second per client (0 = unlimited)

	LogFormat string // "text" or "json"
	LogLevel  string

	SeedDB bool // CLI flag: write the loaded catalog into DBPath, then exit
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:            envInt("BUSFINDER_PORT", 8080),
		DBPath:          envStr("BUSFINDER_DB_PATH", ""),
		GTFSZip:         envStr("BUSFINDER_GTFS_ZIP", ""),
		GTFSURL:         envStr("BUSFINDER_GTFS_URL", ""),
		GTFSDir:         envStr("BUSFINDER_GTFS_DIR", "./data"),
		CatalogPath:     envStr("BUSFINDER_CATALOG", ""),
		OSRMURL:         envStr("BUSFINDER_OSRM_URL", "https://router.project-osrm.org"),
		GeometryTimeout: envDuration("BUSFINDER_GEOMETRY_TIMEOUT", 4*time.Second),
		NominatimURL:    envStr("BUSFINDER_NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocodeSuffix:   envStr("BUSFINDER_GEOCODE_SUFFIX", ", Kolkata, India"),
		UserAgent:       envStr("BUSFINDER_USER_AGENT", "busfinder/1.0 (route finder)"),
		AlertsURL:       envStr("BUSFINDER_ALERTS_URL", ""),
		RateLimit:       envInt("BUSFINDER_RATE_LIMIT", 20),
		LogFormat:       envStr("BUSFINDER_LOG_FORMAT", "text"),
		LogLevel:        envStr("BUSFINDER_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
