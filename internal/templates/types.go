// Package templates renders the HTML pages. The components are written in
// templ; run `templ generate` from the repository root after editing a
// .templ file and commit the generated *_templ.go alongside it.
package templates

import (
	"net/url"
	"strconv"
)

// Page carries the fields every page needs.
type Page struct {
	Title        string
	AssetVersion string
}

// Alert is a service alert shown under a result option.
type Alert struct {
	Route  string
	Effect string
	Header string
}

// Option is one rendered search result.
type Option struct {
	Index  int
	Text   string
	Alerts []Alert
}

// MapView positions the map container before any result is drawn.
type MapView struct {
	Lat, Lng float64
	Zoom     int
}

// HomeData feeds the search page.
type HomeData struct {
	Page     Page
	Stops    []string
	From, To string
	Message  string
	Heading  string
	Options  []Option
	Map      MapView
}

func assetURL(path, version string) string {
	if version == "" {
		return path
	}
	return path + "?v=" + url.QueryEscape(version)
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func alertText(a Alert) string {
	s := a.Route + ": " + a.Effect
	if a.Header != "" {
		s += " · " + a.Header
	}
	return s
}
