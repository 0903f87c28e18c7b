package templates

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, d HomeData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, HomePage(d).Render(context.Background(), &buf))
	return buf.String()
}

func TestHomePageSelectors(t *testing.T) {
	out := render(t, HomeData{
		Page:  Page{Title: "Search", AssetVersion: "abc123"},
		Stops: []string{"Esplanade", "Howrah"},
		From:  "Howrah",
	})

	assert.Contains(t, out, `<title>Search · Bus Route Finder</title>`)
	assert.Contains(t, out, `/static/css/main.css?v=abc123`)
	assert.Contains(t, out, `<option value="Howrah" selected>Howrah</option>`)
	assert.Contains(t, out, `<option value="Esplanade">Esplanade</option>`)
	assert.NotContains(t, out, `class="results"`)
	assert.NotContains(t, out, `data-from`)
}

func TestHomePageResults(t *testing.T) {
	out := render(t, HomeData{
		Stops:   []string{"Howrah", "Park Street"},
		From:    "Howrah",
		To:      "Park Street",
		Heading: "Direct Buses:",
		Options: []Option{
			{Index: 0, Text: "S12D (Howrah → Esplanade → Park Street)", Alerts: []Alert{
				{Route: "S12D", Effect: "Detour", Header: "Diversion"},
			}},
			{Index: 1, Text: "AC12D (Howrah → Esplanade → Park Street)"},
		},
		Map: MapView{Lat: 22.57, Lng: 88.36, Zoom: 12},
	})

	assert.Contains(t, out, `<h2>Direct Buses:</h2>`)
	assert.Contains(t, out, `S12D (Howrah → Esplanade → Park Street)`)
	assert.Contains(t, out, `data-option="1"`)
	assert.Contains(t, out, `S12D: Detour · Diversion`)
	assert.Contains(t, out, `data-from="Howrah"`)
	assert.Contains(t, out, `data-to="Park Street"`)
	assert.Contains(t, out, `data-zoom="12"`)
}

func TestHomePageEscapes(t *testing.T) {
	out := render(t, HomeData{
		Stops:   []string{`<script>`},
		Message: `Unknown stop: <b>`,
	})
	assert.NotContains(t, out, `<option value="<script>"`)
	assert.Contains(t, out, `&lt;script&gt;`)
	assert.Contains(t, out, `Unknown stop: &lt;b&gt;`)
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorPage(Page{Title: "Error"}, "Something broke").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Something broke")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderReportsWriteError(t *testing.T) {
	err := HomePage(HomeData{}).Render(context.Background(), failWriter{})
	assert.Error(t, err)
}

func TestLayoutAssetURLs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorPage(Page{Title: "Error"}, "x").Render(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, `href="/static/css/main.css"`)
	assert.Contains(t, out, `src="/static/js/app.js"`)
	assert.Contains(t, out, `<main><p class="message" role="alert">x</p>`)
	assert.Contains(t, out, `</main>`)
}
