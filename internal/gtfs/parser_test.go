package gtfs

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	data := writeZip(t, files)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return zr
}

func TestReadAllMatchesColumnsByName(t *testing.T) {
	zr := openZip(t, map[string]string{
		"stops.txt": "\xef\xbb\xbfstop_lon, stop_name ,zone_id,stop_id,stop_lat\n" +
			"88.329, Howrah ,Z1,1,22.585\n" +
			"88.353,Esplanade\n",
	})

	stops, err := readAll[Stop](zr.File[0])
	require.NoError(t, err)
	assert.Equal(t, []Stop{
		{StopID: "1", StopName: "Howrah", StopLat: "22.585", StopLon: "88.329"},
		{StopName: "Esplanade", StopLon: "88.353"},
	}, stops)
}

func TestReadAllEmptyFile(t *testing.T) {
	zr := openZip(t, map[string]string{"routes.txt": ""})
	_, err := readAll[Route](zr.File[0])
	assert.ErrorContains(t, err, "read header")
}

func TestParseTables(t *testing.T) {
	feed, err := parseTables(openZip(t, testFeed), discardLogger())
	require.NoError(t, err)
	assert.Len(t, feed.Routes, 2)
	assert.Len(t, feed.Stops, 5)
	assert.Len(t, feed.Trips, 4)
	assert.Equal(t, Trip{TripID: "t3", RouteID: "R1", DirectionID: "1"}, feed.Trips[2])
}
