package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	c := Sample()

	require.Equal(t, 10, c.Len())
	first, ok := c.Route(0)
	require.True(t, ok)
	assert.Equal(t, "S12D", first.Name)
	assert.Equal(t, []string{"Howrah", "Esplanade", "Park Street", "Gariahat", "Jadavpur"}, first.Stops)

	last, ok := c.Route(9)
	require.True(t, ok)
	assert.Equal(t, "AC23A", last.Name)
	assert.Equal(t, 9, last.ID)

	co, ok := c.Coordinate("Park Street")
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 22.553, Lng: 88.352}, co)

	quoted, ok := c.Route(4)
	require.True(t, ok)
	assert.Equal(t, "205", quoted.Name)
}

func TestStopNamesSortedAndDeduplicated(t *testing.T) {
	c := New([]RouteSpec{
		{Name: "A", Stops: []string{"Zeta", "Alpha", "Mid"}},
		{Name: "B", Stops: []string{"Mid", "Alpha", "Beta"}},
	}, nil)

	assert.Equal(t, []string{"Alpha", "Beta", "Mid", "Zeta"}, c.StopNames())
	assert.True(t, c.HasStop("Beta"))
	assert.False(t, c.HasStop("Gamma"))
}

func TestStopNamesOnlyFromRoutes(t *testing.T) {
	c := New([]RouteSpec{{Name: "A", Stops: []string{"X", "Y"}}},
		map[string]Coordinate{"X": {1, 2}, "Orphan": {3, 4}})

	assert.Equal(t, []string{"X", "Y"}, c.StopNames())
	assert.False(t, c.HasStop("Orphan"))

	_, ok := c.Coordinate("Y")
	assert.False(t, ok, "route stop without coordinate should be absent, not an error")
}

func TestDuplicateRouteNamesAreDistinctEntries(t *testing.T) {
	c := New([]RouteSpec{
		{Name: "12C", Stops: []string{"A", "B"}},
		{Name: "12C", Stops: []string{"B", "A"}},
	}, nil)

	require.Equal(t, 2, c.Len())
	r0, _ := c.Route(0)
	r1, _ := c.Route(1)
	assert.Equal(t, r0.Name, r1.Name)
	assert.NotEqual(t, r0.ID, r1.ID)
}

func TestNewCopiesInput(t *testing.T) {
	stops := []string{"A", "B"}
	coords := map[string]Coordinate{"A": {1, 1}}
	c := New([]RouteSpec{{Name: "R", Stops: stops}}, coords)

	stops[0] = "changed"
	coords["A"] = Coordinate{9, 9}

	r, _ := c.Route(0)
	assert.Equal(t, "A", r.Stops[0])
	co, _ := c.Coordinate("A")
	assert.Equal(t, Coordinate{1, 1}, co)
}

func TestRouteOutOfRange(t *testing.T) {
	c := Sample()
	_, ok := c.Route(-1)
	assert.False(t, ok)
	_, ok = c.Route(c.Len())
	assert.False(t, ok)
}

func TestIndexOfFirstOccurrence(t *testing.T) {
	r := Route{Stops: []string{"A", "B", "A", "C"}}
	assert.Equal(t, 0, r.IndexOf("A"))
	assert.Equal(t, 3, r.IndexOf("C"))
	assert.Equal(t, -1, r.IndexOf("D"))
}

func TestCenter(t *testing.T) {
	c := New(nil, map[string]Coordinate{"A": {10, 20}, "B": {20, 40}})
	center, ok := c.Center()
	require.True(t, ok)
	assert.InDelta(t, 15, center.Lat, 1e-9)
	assert.InDelta(t, 30, center.Lng, 1e-9)

	_, ok = New(nil, nil).Center()
	assert.False(t, ok)
}

func TestCenterIsStable(t *testing.T) {
	c := Sample()
	first, ok := c.Center()
	require.True(t, ok)
	for i := 0; i < 200; i++ {
		got, _ := c.Center()
		require.Equal(t, first, got, "call %d", i)
	}
	for i := 0; i < 20; i++ {
		got, _ := Sample().Center()
		require.Equal(t, first, got, "rebuild %d", i)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	data, err := Marshal(Sample())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Sample().Specs(), c.Specs())
	assert.Equal(t, Sample().Coordinates(), c.Coordinates())
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("routes: [name: {"))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
