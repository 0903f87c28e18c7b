package gtfs

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"busfinder/internal/catalog"
)

// LoadCatalog builds a route catalog from a static GTFS archive.
//
// Each route contributes one catalog entry per direction, using the trip
// with the most stops in that direction as the stop sequence. Stops are
// keyed by stop_name; platforms sharing a name are merged and their
// coordinates averaged.
func LoadCatalog(path string, logger *slog.Logger) (*catalog.Catalog, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()
	return buildCatalog(&zr.Reader, logger)
}

// variant is the representative trip of one route direction.
type variant struct {
	routeID   string
	direction string
	tripID    string
	stops     int
}

func buildCatalog(zr *zip.Reader, logger *slog.Logger) (*catalog.Catalog, error) {
	feed, err := parseTables(zr, logger)
	if err != nil {
		return nil, err
	}

	var stopTimes *zip.File
	for _, f := range zr.File {
		if f.Name == "stop_times.txt" {
			stopTimes = f
			break
		}
	}
	if stopTimes == nil {
		return nil, fmt.Errorf("stop_times.txt not found in archive")
	}

	// Pass 1: count stops per trip to pick the longest trip per direction.
	counts := make(map[string]int)
	if err := streamStopTimes(stopTimes, func(st StopTime) {
		counts[st.TripID]++
	}); err != nil {
		return nil, err
	}

	variants := make(map[string][]*variant)
	chosen := make(map[string]bool)
	for _, t := range feed.Trips {
		n := counts[t.TripID]
		if n < 2 {
			continue
		}
		var v *variant
		for _, cand := range variants[t.RouteID] {
			if cand.direction == t.DirectionID {
				v = cand
				break
			}
		}
		if v == nil {
			variants[t.RouteID] = append(variants[t.RouteID], &variant{
				routeID: t.RouteID, direction: t.DirectionID, tripID: t.TripID, stops: n,
			})
			continue
		}
		if n > v.stops {
			v.tripID, v.stops = t.TripID, n
		}
	}
	for _, vs := range variants {
		for _, v := range vs {
			chosen[v.tripID] = true
		}
	}

	// Pass 2: collect stop sequences for the chosen trips only.
	type seqStop struct {
		seq    int
		stopID string
	}
	sequences := make(map[string][]seqStop)
	if err := streamStopTimes(stopTimes, func(st StopTime) {
		if !chosen[st.TripID] {
			return
		}
		seq, err := strconv.Atoi(st.StopSequence)
		if err != nil {
			return
		}
		sequences[st.TripID] = append(sequences[st.TripID], seqStop{seq: seq, stopID: st.StopID})
	}); err != nil {
		return nil, err
	}

	stopNames, coords := stopTable(feed.Stops)
	nameOf := func(id string) string {
		if n, ok := stopNames[id]; ok {
			return n
		}
		return id
	}

	var specs []catalog.RouteSpec
	for _, r := range feed.Routes {
		for _, v := range variants[r.RouteID] {
			seq := sequences[v.tripID]
			sort.SliceStable(seq, func(i, j int) bool { return seq[i].seq < seq[j].seq })

			spec := catalog.RouteSpec{Name: routeName(r)}
			for _, s := range seq {
				name := nameOf(s.stopID)
				if n := len(spec.Stops); n > 0 && spec.Stops[n-1] == name {
					continue
				}
				spec.Stops = append(spec.Stops, name)
			}
			specs = append(specs, spec)
		}
	}

	c := catalog.New(specs, coords)
	logger.Info("GTFS catalog built", "routes", c.Len(), "stops", len(c.StopNames()))
	return c, nil
}

func streamStopTimes(f *zip.File, fn func(StopTime)) error {
	if err := each(f, fn); err != nil {
		return fmt.Errorf("stop_times: %w", err)
	}
	return nil
}

// stopTable maps stop_id to stop_name and averages coordinates per name.
func stopTable(stops []Stop) (map[string]string, map[string]catalog.Coordinate) {
	names := make(map[string]string, len(stops))
	type sum struct {
		lat, lng float64
		n        int
	}
	sums := make(map[string]*sum)
	for _, s := range stops {
		name := s.StopName
		if name == "" {
			name = s.StopID
		}
		names[s.StopID] = name

		lat, errLat := strconv.ParseFloat(s.StopLat, 64)
		lng, errLng := strconv.ParseFloat(s.StopLon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		acc := sums[name]
		if acc == nil {
			acc = &sum{}
			sums[name] = acc
		}
		acc.lat += lat
		acc.lng += lng
		acc.n++
	}

	coords := make(map[string]catalog.Coordinate, len(sums))
	for name, acc := range sums {
		coords[name] = catalog.Coordinate{Lat: acc.lat / float64(acc.n), Lng: acc.lng / float64(acc.n)}
	}
	return names, coords
}

func routeName(r Route) string {
	switch {
	case r.RouteShortName != "":
		return r.RouteShortName
	case r.RouteLongName != "":
		return r.RouteLongName
	default:
		return r.RouteID
	}
}
