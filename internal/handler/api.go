package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"busfinder/internal/mapview"
	"busfinder/internal/realtime"
	"busfinder/internal/search"
)

type stopJSON struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type routeJSON struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Stops []string `json:"stops"`
}

type searchResponse struct {
	Found   bool                        `json:"found"`
	Message string                      `json:"message,omitempty"`
	Heading string                      `json:"heading,omitempty"`
	Lines   []string                    `json:"lines,omitempty"`
	Result  *search.Result              `json:"result,omitempty"`
	Alerts  map[string][]realtime.Alert `json:"alerts,omitempty"`
}

// APIStops lists every stop served by a route, alphabetically, with its
// coordinate when one is known.
func (h *Handler) APIStops(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog()
	names := cat.StopNames()
	out := make([]stopJSON, len(names))
	for i, n := range names {
		out[i] = stopJSON{Name: n}
		if co, ok := cat.Coordinate(n); ok {
			lat, lng := co.Lat, co.Lng
			out[i].Lat, out[i].Lng = &lat, &lng
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

// APIRoutes lists the catalog routes in order.
func (h *Handler) APIRoutes(w http.ResponseWriter, r *http.Request) {
	routes := h.catalog().Routes()
	out := make([]routeJSON, len(routes))
	for i, rt := range routes {
		out[i] = routeJSON{ID: rt.ID, Name: rt.Name, Stops: rt.Stops}
	}
	h.writeJSON(w, http.StatusOK, out)
}

// APISearch runs a search. Bad input is a 400 with field errors; finding
// nothing is a normal 200 response with found=false.
func (h *Handler) APISearch(w http.ResponseWriter, r *http.Request) {
	query := queryFrom(r)
	res, err := h.engine.Search(query)
	var ve *search.ValidationError
	switch {
	case errors.As(err, &ve):
		h.validationErrorResponse(w, ve.Message, ve.Fields)
		return
	case errors.Is(err, search.ErrNoRoute):
		h.writeJSON(w, http.StatusOK, searchResponse{Found: false, Message: search.MsgNoRoute})
		return
	case err != nil:
		h.serverErrorResponse(w, err)
		return
	}

	h.logger.Debug("search", "from", query.Source, "to", query.Destination, "kind", res.Kind, "options", res.Len())
	h.writeJSON(w, http.StatusOK, searchResponse{
		Found:   true,
		Heading: res.Heading(),
		Lines:   res.Lines(),
		Result:  res,
		Alerts:  h.alertsForResult(res),
	})
}

// APIMap returns drawable map data for one option of a search result.
func (h *Handler) APIMap(w http.ResponseWriter, r *http.Request) {
	option := 0
	if v := r.URL.Query().Get("option"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.validationErrorResponse(w, "Invalid option.", map[string][]string{
				"option": {"must be a non-negative integer"},
			})
			return
		}
		option = n
	}

	res, err := h.engine.Search(queryFrom(r))
	var ve *search.ValidationError
	switch {
	case errors.As(err, &ve):
		h.validationErrorResponse(w, ve.Message, ve.Fields)
		return
	case errors.Is(err, search.ErrNoRoute):
		h.writeJSON(w, http.StatusNotFound, searchResponse{Found: false, Message: search.MsgNoRoute})
		return
	case err != nil:
		h.serverErrorResponse(w, err)
		return
	}

	m, err := h.maps.Build(r.Context(), res, option)
	if errors.Is(err, mapview.ErrOptionRange) {
		h.validationErrorResponse(w, "Invalid option.", map[string][]string{
			"option": {"out of range"},
		})
		return
	}
	if err != nil {
		h.serverErrorResponse(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

// Healthz reports catalog size and alert freshness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog()
	body := map[string]any{
		"status": "ok",
		"routes": cat.Len(),
		"stops":  len(cat.StopNames()),
	}
	if h.alerts != nil {
		n, at := h.alerts.Stats()
		body["alerts"] = n
		if !at.IsZero() {
			body["alertsUpdated"] = at.UTC()
		}
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// validationErrorResponse sends a 400 with field-specific errors.
func (h *Handler) validationErrorResponse(w http.ResponseWriter, message string, fieldErrors map[string][]string) {
	h.writeJSON(w, http.StatusBadRequest, struct {
		Error       string              `json:"error"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{Error: message, FieldErrors: fieldErrors})
}

func (h *Handler) serverErrorResponse(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
