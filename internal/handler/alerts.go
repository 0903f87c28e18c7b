package handler

import (
	"busfinder/internal/realtime"
	"busfinder/internal/search"
	"busfinder/internal/templates"
)

// optionRoutes lists the route names ridden in option i of res.
func optionRoutes(res *search.Result, i int) []string {
	if res.Kind == search.KindDirect {
		return []string{res.Direct[i].Route.Name}
	}
	c := res.Combinations[i]
	return []string{c.First.Route.Name, c.Second.Route.Name}
}

// alertsForOption returns display alerts for every route in option i.
func (h *Handler) alertsForOption(res *search.Result, i int) []templates.Alert {
	var out []templates.Alert
	seen := make(map[string]bool)
	for _, route := range optionRoutes(res, i) {
		if seen[route] {
			continue
		}
		seen[route] = true
		for _, a := range h.alerts.ForRoute(route) {
			out = append(out, templates.Alert{Route: route, Effect: a.Effect, Header: a.Header})
		}
	}
	return out
}

// alertsForResult returns alerts keyed by route name across every option.
func (h *Handler) alertsForResult(res *search.Result) map[string][]realtime.Alert {
	var names []string
	for i := 0; i < res.Len(); i++ {
		names = append(names, optionRoutes(res, i)...)
	}
	out := h.alerts.ForRoutes(names...)
	if len(out) == 0 {
		return nil
	}
	return out
}
