package gtfs

// Feed holds the parsed GTFS tables needed to build a route catalog.
// stop_times.txt is streamed separately and not held here.
type Feed struct {
	Routes []Route
	Stops  []Stop
	Trips  []Trip
}

type Route struct {
	RouteID        string `csv:"route_id"`
	RouteShortName string `csv:"route_short_name"`
	RouteLongName  string `csv:"route_long_name"`
}

type Stop struct {
	StopID   string `csv:"stop_id"`
	StopName string `csv:"stop_name"`
	StopLat  string `csv:"stop_lat"`
	StopLon  string `csv:"stop_lon"`
}

type Trip struct {
	TripID      string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	DirectionID string `csv:"direction_id"`
}

type StopTime struct {
	TripID       string `csv:"trip_id"`
	StopID       string `csv:"stop_id"`
	StopSequence string `csv:"stop_sequence"`
}
