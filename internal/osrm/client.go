package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"busfinder/internal/cache"
)

// ErrNoGeometry is returned when the service answers but has no usable path.
var ErrNoGeometry = errors.New("osrm: no route geometry")

// Client is an HTTP client for the OSRM route service.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     *cache.Cache[[][]float64]
	logger    *slog.Logger
}

// NewClient creates an OSRM client for the driving profile at baseURL.
func NewClient(baseURL, userAgent string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache.New[[][]float64](time.Hour),
		logger: logger,
	}
}

// Route returns the road-following path through the given points.
// Points and the returned path are [lat, lng] pairs.
func (c *Client) Route(ctx context.Context, points [][]float64) ([][]float64, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("osrm: need at least 2 points, got %d", len(points))
	}

	coordStr := formatCoords(points)
	if cached, ok := c.cache.Get(coordStr); ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson", c.baseURL, coordStr)
	resp, err := c.doGet(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}
	defer resp.Body.Close()

	var result routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Code != "Ok" || len(result.Routes) == 0 {
		return nil, fmt.Errorf("%w: code=%q %s", ErrNoGeometry, result.Code, result.Message)
	}

	var path [][]float64
	for _, p := range result.Routes[0].Geometry.Coordinates {
		if len(p) < 2 {
			continue
		}
		path = append(path, []float64{p[1], p[0]})
	}
	if len(path) < 2 {
		return nil, ErrNoGeometry
	}

	c.cache.Set(coordStr, path)
	c.logger.Debug("road geometry fetched", "points", len(points), "vertices", len(path), "meters", result.Routes[0].Distance)
	return path, nil
}

// Close releases background resources.
func (c *Client) Close() {
	c.cache.Close()
}

// formatCoords renders [lat, lng] points as OSRM's "lng,lat;lng,lat".
func formatCoords(points [][]float64) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = strconv.FormatFloat(p[1], 'f', -1, 64) + "," + strconv.FormatFloat(p[0], 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return resp, nil
}
