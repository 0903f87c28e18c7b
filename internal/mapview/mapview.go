// Package mapview turns a search result into drawable map data: stop
// markers and one road-following segment per consecutive stop pair.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"busfinder/internal/catalog"
	"busfinder/internal/geo"
	"busfinder/internal/search"

	"github.com/twpayne/go-polyline"
)

// Leg colours.
const (
	FirstLegColor  = "#1976d2"
	SecondLegColor = "#c62828"
)

// DefaultZoom is the initial map zoom level.
const DefaultZoom = 12

// MaxInFlight caps the geometry requests one Build has open at once.
const MaxInFlight = 4

// DefaultCenter is used when the catalog has no coordinates at all.
var DefaultCenter = catalog.Coordinate{Lat: 22.57, Lng: 88.36}

// ErrOptionRange is returned when the requested option does not exist.
var ErrOptionRange = errors.New("mapview: option out of range")

// Geometry fetches a road-following path through [lat, lng] points.
type Geometry interface {
	Route(ctx context.Context, points [][]float64) ([][]float64, error)
}

// Resolver places a stop that has no entry in the coordinate table.
type Resolver interface {
	Resolve(ctx context.Context, stop string) (catalog.Coordinate, error)
}

// Marker is a labelled stop on the map.
type Marker struct {
	Stop string  `json:"stop"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Segment is the drawn path between two consecutive stops of a leg.
type Segment struct {
	Leg        int         `json:"leg"`
	Route      string      `json:"route"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Color      string      `json:"color"`
	Path       [][]float64 `json:"path"`
	Polyline   string      `json:"polyline"`
	Fallback   bool        `json:"fallback"`
	DistanceKm float64     `json:"distanceKm"`
}

// Map is everything the client needs to draw one result option.
type Map struct {
	Center     catalog.Coordinate `json:"center"`
	Zoom       int                `json:"zoom"`
	Option     int                `json:"option"`
	Markers    []Marker           `json:"markers"`
	Segments   []Segment          `json:"segments"`
	DistanceKm float64            `json:"distanceKm"`
}

// Builder assembles Maps. geometry and resolver may be nil, in which case
// segments are straight lines and stops without coordinates are skipped.
type Builder struct {
	catalog  *catalog.Catalog
	geometry Geometry
	resolver Resolver
	timeout  time.Duration
	logger   *slog.Logger
}

// NewBuilder creates a Builder. timeout bounds each geometry request.
func NewBuilder(c *catalog.Catalog, geometry Geometry, resolver Resolver, timeout time.Duration, logger *slog.Logger) *Builder {
	return &Builder{
		catalog:  c,
		geometry: geometry,
		resolver: resolver,
		timeout:  timeout,
		logger:   logger,
	}
}

type leg struct {
	route string
	color string
	stops []string
}

type pair struct {
	leg      int
	route    string
	color    string
	from, to string
	a, b     catalog.Coordinate
}

// Build draws option (0-based) of res.
func (b *Builder) Build(ctx context.Context, res *search.Result, option int) (*Map, error) {
	if res == nil || option < 0 || option >= res.Len() {
		return nil, fmt.Errorf("%w: %d", ErrOptionRange, option)
	}

	var legs []leg
	var markerStops []string
	if res.Kind == search.KindDirect {
		m := res.Direct[option]
		legs = []leg{{route: m.Route.Name, color: FirstLegColor, stops: m.Stops}}
		markerStops = []string{res.Query.Source, res.Query.Destination}
	} else {
		c := res.Combinations[option]
		legs = []leg{
			{route: c.First.Route.Name, color: FirstLegColor, stops: c.First.Stops},
			{route: c.Second.Route.Name, color: SecondLegColor, stops: c.Second.Stops},
		}
		markerStops = []string{c.First.From, c.First.To, c.Second.To}
	}

	coords := b.locate(ctx, legs)

	m := &Map{
		Center:   DefaultCenter,
		Zoom:     DefaultZoom,
		Option:   option,
		Markers:  []Marker{},
		Segments: []Segment{},
	}
	if center, ok := b.catalog.Center(); ok {
		m.Center = center
	}
	for _, s := range markerStops {
		if co, ok := coords[s]; ok {
			m.Markers = append(m.Markers, Marker{Stop: s, Lat: co.Lat, Lng: co.Lng})
		}
	}

	var pairs []pair
	for i, l := range legs {
		for j := 0; j+1 < len(l.stops); j++ {
			from, to := l.stops[j], l.stops[j+1]
			a, okA := coords[from]
			z, okB := coords[to]
			if !okA || !okB {
				continue
			}
			pairs = append(pairs, pair{leg: i, route: l.route, color: l.color, from: from, to: to, a: a, b: z})
		}
	}

	m.Segments = b.segments(ctx, pairs)
	for _, s := range m.Segments {
		m.DistanceKm += s.DistanceKm
	}
	return m, nil
}

// locate returns coordinates for every stop on the legs, asking the
// resolver for stops missing from the catalog.
func (b *Builder) locate(ctx context.Context, legs []leg) map[string]catalog.Coordinate {
	out := make(map[string]catalog.Coordinate)
	for _, l := range legs {
		for _, s := range l.stops {
			if _, seen := out[s]; seen {
				continue
			}
			if co, ok := b.catalog.Coordinate(s); ok {
				out[s] = co
				continue
			}
			if b.resolver == nil {
				continue
			}
			co, err := b.resolver.Resolve(ctx, s)
			if err != nil {
				b.logger.Warn("stop not placed on map", "stop", s, "error", err)
				continue
			}
			out[s] = co
		}
	}
	return out
}

// segments fetches pair geometry concurrently, at most MaxInFlight at a
// time, and returns the segments in pair order.
func (b *Builder) segments(ctx context.Context, pairs []pair) []Segment {
	out := make([]Segment, len(pairs))
	sem := make(chan struct{}, MaxInFlight)
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, p pair) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
			}
			out[i] = b.segment(ctx, p)
		}(i, p)
	}
	wg.Wait()
	return out
}

func (b *Builder) segment(ctx context.Context, p pair) Segment {
	straight := [][]float64{{p.a.Lat, p.a.Lng}, {p.b.Lat, p.b.Lng}}
	path, fallback := straight, true

	if b.geometry != nil {
		gctx, cancel := context.WithTimeout(ctx, b.timeout)
		road, err := b.geometry.Route(gctx, straight)
		cancel()
		if err != nil || len(road) < 2 {
			b.logger.Warn("road geometry unavailable, drawing straight line",
				"route", p.route, "from", p.from, "to", p.to, "error", err)
		} else {
			path, fallback = road, false
		}
	}

	return Segment{
		Leg:        p.leg,
		Route:      p.route,
		From:       p.from,
		To:         p.to,
		Color:      p.color,
		Path:       path,
		Polyline:   string(polyline.EncodeCoords(path)),
		Fallback:   fallback,
		DistanceKm: geo.MetersToKm(geo.PathLength(path)),
	}
}
