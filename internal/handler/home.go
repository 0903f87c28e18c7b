package handler

import (
	"errors"
	"net/http"

	"busfinder/internal/search"
	"busfinder/internal/templates"
)

// Home serves the search page. With from/to in the query string it also
// runs the search and lists the results.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	query := queryFrom(r)
	data := templates.HomeData{
		Page:  h.page("Find a bus"),
		Stops: h.catalog().StopNames(),
		From:  query.Source,
		To:    query.Destination,
		Map:   h.mapCenter(),
	}

	if q.Has("from") || q.Has("to") {
		res, err := h.engine.Search(query)
		var ve *search.ValidationError
		switch {
		case errors.As(err, &ve):
			data.Message = ve.Message
		case errors.Is(err, search.ErrNoRoute):
			data.Message = search.MsgNoRoute
		case err != nil:
			h.logger.Error("search failed", "from", query.Source, "to", query.Destination, "error", err)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			if err := templates.ErrorPage(h.page("Error"), "Something went wrong. Please try again.").Render(r.Context(), w); err != nil {
				h.logger.Error("rendering error page", "error", err)
			}
			return
		default:
			data.Heading = res.Heading()
			for i, line := range res.Lines() {
				data.Options = append(data.Options, templates.Option{
					Index:  i,
					Text:   line,
					Alerts: h.alertsForOption(res, i),
				})
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.HomePage(data).Render(r.Context(), w); err != nil {
		h.logger.Error("rendering home page", "error", err)
	}
}

func queryFrom(r *http.Request) search.Query {
	q := r.URL.Query()
	return search.Query{Source: q.Get("from"), Destination: q.Get("to")}
}
