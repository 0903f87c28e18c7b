// Package search finds bus connections between two stops of a catalog:
// routes that serve both stops in travel order, and, failing that, pairs
// of routes joined at an interchange stop.
package search

import (
	"busfinder/internal/catalog"

	"github.com/go-playground/validator/v10"
)

// RouteRef identifies a catalog route. ID is the identity; Name is for display.
type RouteRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DirectMatch is a route usable end to end, with the stops from source to
// destination inclusive, in route order.
type DirectMatch struct {
	Route RouteRef `json:"route"`
	Stops []string `json:"stops"`
}

// Leg is one bus ride within a transfer combination.
type Leg struct {
	Route RouteRef `json:"route"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Stops []string `json:"stops"`
}

// TransferCombination is a two-leg journey through one interchange stop.
// First.Route and Second.Route are always different catalog entries.
type TransferCombination struct {
	First  Leg `json:"first"`
	Second Leg `json:"second"`
}

// Engine answers route queries against a read-only catalog.
// All methods are safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	validate *validator.Validate
}

// NewEngine creates an Engine over c.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c, validate: newValidator(c)}
}

// Catalog returns the catalog the engine searches.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// FindDirectRoutes returns, in catalog order, every route on which source
// occurs strictly before destination. Only the first occurrence of each stop
// counts. An empty result is not an error.
func (e *Engine) FindDirectRoutes(source, destination string) []DirectMatch {
	var matches []DirectMatch
	for _, r := range e.catalog.Routes() {
		srcIdx := r.IndexOf(source)
		destIdx := r.IndexOf(destination)
		if srcIdx == -1 || destIdx == -1 || srcIdx >= destIdx {
			continue
		}
		matches = append(matches, DirectMatch{
			Route: ref(r),
			Stops: span(r.Stops, srcIdx, destIdx),
		})
	}
	return matches
}

// FindCombinations returns every two-leg journey from source to destination.
// Results are ordered by first route (catalog order), then interchange
// position on the first route, then second route (catalog order). The
// second route is any catalog entry other than the first, compared by ID,
// so same-named routes still pair with each other.
func (e *Engine) FindCombinations(source, destination string) []TransferCombination {
	routes := e.catalog.Routes()
	var combos []TransferCombination
	for _, r1 := range routes {
		srcIdx := r1.IndexOf(source)
		if srcIdx == -1 {
			continue
		}
		for i := srcIdx + 1; i < len(r1.Stops); i++ {
			interchange := r1.Stops[i]
			for _, r2 := range routes {
				if r2.ID == r1.ID {
					continue
				}
				interIdx := r2.IndexOf(interchange)
				destIdx := r2.IndexOf(destination)
				if interIdx == -1 || destIdx == -1 || interIdx >= destIdx {
					continue
				}
				combos = append(combos, TransferCombination{
					First: Leg{
						Route: ref(r1),
						From:  source,
						To:    interchange,
						Stops: span(r1.Stops, srcIdx, i),
					},
					Second: Leg{
						Route: ref(r2),
						From:  interchange,
						To:    destination,
						Stops: span(r2.Stops, interIdx, destIdx),
					},
				})
			}
		}
	}
	return combos
}

func ref(r catalog.Route) RouteRef {
	return RouteRef{ID: r.ID, Name: r.Name}
}

// span copies stops[from..to] inclusive so results never alias the catalog.
func span(stops []string, from, to int) []string {
	out := make([]string, to-from+1)
	copy(out, stops[from:to+1])
	return out
}
