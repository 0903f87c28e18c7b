package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"busfinder/internal/cache"
	"busfinder/internal/catalog"
)

// ErrNotFound is returned when Nominatim has no match for a stop name.
var ErrNotFound = errors.New("geocode: no match")

// MissTTL is how long a name Nominatim could not place is remembered.
// Nominatim allows one request per second, so repeated map requests for
// the same unplaceable stop must not go back to it.
const MissTTL = 10 * time.Minute

// Client is a Nominatim geocoding client that places stop names missing
// from the catalog's coordinate table.
type Client struct {
	baseURL    string
	suffix     string
	httpClient *http.Client
	userAgent  string
	cache      *cache.Cache[catalog.Coordinate]
	misses     *cache.Cache[struct{}]
}

// New creates a Nominatim geocoding client. suffix is appended to every
// stop name (e.g. ", Kolkata, India") to keep matches in the right city.
// userAgent is required by Nominatim's usage policy.
func New(baseURL, suffix, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		suffix:     suffix,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		userAgent:  userAgent,
		cache:      cache.New[catalog.Coordinate](24 * time.Hour),
		misses:     cache.New[struct{}](MissTTL),
	}
}

// Resolve geocodes a stop name. Hits are cached for a day and names with
// no match for MissTTL; transport failures are not cached.
func (c *Client) Resolve(ctx context.Context, stop string) (catalog.Coordinate, error) {
	if co, ok := c.cache.Get(stop); ok {
		return co, nil
	}
	if _, ok := c.misses.Get(stop); ok {
		return catalog.Coordinate{}, fmt.Errorf("%w for %q", ErrNotFound, stop)
	}

	u := c.baseURL + "/search?" + url.Values{
		"q":              {stop + c.suffix},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"addressdetails": {"0"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return catalog.Coordinate{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.Coordinate{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return catalog.Coordinate{}, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return catalog.Coordinate{}, fmt.Errorf("nominatim decode: %w", err)
	}
	if len(results) == 0 {
		c.misses.Set(stop, struct{}{})
		return catalog.Coordinate{}, fmt.Errorf("%w for %q", ErrNotFound, stop)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return catalog.Coordinate{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return catalog.Coordinate{}, fmt.Errorf("parse lon: %w", err)
	}

	co := catalog.Coordinate{Lat: lat, Lng: lon}
	c.cache.Set(stop, co)
	return co, nil
}

// Close stops the cache sweepers.
func (c *Client) Close() {
	c.cache.Close()
	c.misses.Close()
}
