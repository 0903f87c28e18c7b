package catalog

import (
	"sort"
)

// Coordinate is a stop's position, used only for rendering.
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Route is one bus service: a name and the stops it visits in travel order.
// ID is the route's position in the catalog and is the route's identity;
// two routes may share a Name and still be distinct entries.
type Route struct {
	ID    int
	Name  string
	Stops []string
}

// IndexOf returns the index of the first occurrence of stop, or -1.
func (r Route) IndexOf(stop string) int {
	for i, s := range r.Stops {
		if s == stop {
			return i
		}
	}
	return -1
}

// RouteSpec is the input shape of a route before it is given an identity.
type RouteSpec struct {
	Name  string   `yaml:"name" json:"name"`
	Stops []string `yaml:"stops" json:"stops"`
}

// Catalog holds the static network. It is never mutated after New returns,
// so it can be shared across goroutines without locking.
type Catalog struct {
	routes    []Route
	coords    map[string]Coordinate
	stopNames []string
	stopSet   map[string]bool
	center    Coordinate
	hasCenter bool
}

// New builds a Catalog. Route order is preserved and becomes each route's ID.
// Input is taken as-is: duplicate route names and stops without coordinates
// are accepted.
func New(routes []RouteSpec, coords map[string]Coordinate) *Catalog {
	c := &Catalog{
		routes:  make([]Route, len(routes)),
		coords:  make(map[string]Coordinate, len(coords)),
		stopSet: make(map[string]bool),
	}
	for name, co := range coords {
		c.coords[name] = co
	}
	for i, rs := range routes {
		stops := make([]string, len(rs.Stops))
		copy(stops, rs.Stops)
		c.routes[i] = Route{ID: i, Name: rs.Name, Stops: stops}
		for _, s := range stops {
			if !c.stopSet[s] {
				c.stopSet[s] = true
				c.stopNames = append(c.stopNames, s)
			}
		}
	}
	sort.Strings(c.stopNames)
	c.center, c.hasCenter = meanPosition(c.coords)
	return c
}

// meanPosition sums in name order so the result does not depend on map
// iteration order.
func meanPosition(coords map[string]Coordinate) (Coordinate, bool) {
	if len(coords) == 0 {
		return Coordinate{}, false
	}
	names := make([]string, 0, len(coords))
	for name := range coords {
		names = append(names, name)
	}
	sort.Strings(names)
	var lat, lng float64
	for _, name := range names {
		lat += coords[name].Lat
		lng += coords[name].Lng
	}
	n := float64(len(coords))
	return Coordinate{Lat: lat / n, Lng: lng / n}, true
}

// Routes returns every route in catalog order. The slice is shared; callers
// must not modify it.
func (c *Catalog) Routes() []Route {
	return c.routes
}

// Route returns the route with the given ID.
func (c *Catalog) Route(id int) (Route, bool) {
	if id < 0 || id >= len(c.routes) {
		return Route{}, false
	}
	return c.routes[id], true
}

// Len returns the number of routes.
func (c *Catalog) Len() int {
	return len(c.routes)
}

// Coordinate looks up a stop's position. Stops served by a route may be
// missing from the coordinate table.
func (c *Catalog) Coordinate(stop string) (Coordinate, bool) {
	co, ok := c.coords[stop]
	return co, ok
}

// Coordinates returns a copy of the coordinate table.
func (c *Catalog) Coordinates() map[string]Coordinate {
	out := make(map[string]Coordinate, len(c.coords))
	for k, v := range c.coords {
		out[k] = v
	}
	return out
}

// StopNames returns the sorted, de-duplicated names of every stop served
// by at least one route.
func (c *Catalog) StopNames() []string {
	out := make([]string, len(c.stopNames))
	copy(out, c.stopNames)
	return out
}

// HasStop reports whether any route serves the stop.
func (c *Catalog) HasStop(stop string) bool {
	return c.stopSet[stop]
}

// Center returns the mean position of all known coordinates.
// The second result is false when the table is empty.
func (c *Catalog) Center() (Coordinate, bool) {
	return c.center, c.hasCenter
}

// Specs returns the catalog's routes in their input shape, in order.
func (c *Catalog) Specs() []RouteSpec {
	out := make([]RouteSpec, len(c.routes))
	for i, r := range c.routes {
		stops := make([]string, len(r.Stops))
		copy(stops, r.Stops)
		out[i] = RouteSpec{Name: r.Name, Stops: stops}
	}
	return out
}
