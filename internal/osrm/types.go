package osrm

// routeResponse is the subset of the OSRM route service response we use.
type routeResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Routes  []route `json:"routes"`
}

type route struct {
	Distance float64  `json:"distance"` // meters
	Duration float64  `json:"duration"` // seconds
	Geometry geometry `json:"geometry"`
}

// geometry is a GeoJSON LineString; coordinates are [lng, lat].
type geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}
