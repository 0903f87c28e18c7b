package realtime

import (
	"sync"
	"time"
)

// Alert is a service alert reduced to what the result page shows.
type Alert struct {
	ID     string   `json:"id"`
	Header string   `json:"header"`
	Detail string   `json:"detail,omitempty"`
	Effect string   `json:"effect"`
	Routes []string `json:"routes"`
	Stops  []string `json:"stops,omitempty"`
}

// Store holds the latest alert snapshot. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byRoute map[string][]Alert
	count   int
	updated time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byRoute: make(map[string][]Alert)}
}

// Replace swaps in a new snapshot.
func (s *Store) Replace(alerts []Alert, at time.Time) {
	idx := make(map[string][]Alert)
	for _, a := range alerts {
		for _, r := range a.Routes {
			idx[r] = append(idx[r], a)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRoute = idx
	s.count = len(alerts)
	s.updated = at
}

// ForRoute returns alerts naming the route. A nil Store has no alerts.
func (s *Store) ForRoute(route string) []Alert {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Alert(nil), s.byRoute[route]...)
}

// ForRoutes returns alerts for each named route that has any.
func (s *Store) ForRoutes(routes ...string) map[string][]Alert {
	out := make(map[string][]Alert)
	for _, r := range routes {
		if _, done := out[r]; done {
			continue
		}
		if a := s.ForRoute(r); len(a) > 0 {
			out[r] = a
		}
	}
	return out
}

// Stats reports the snapshot size and when it was taken.
func (s *Store) Stats() (int, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, s.updated
}
