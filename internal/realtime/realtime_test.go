package realtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func text(lang, s string) *gtfs.TranslatedString {
	return &gtfs.TranslatedString{Translation: []*gtfs.TranslatedString_Translation{
		{Text: proto.String(s), Language: proto.String(lang)},
	}}
}

func sampleFeed() *gtfs.FeedMessage {
	detour := gtfs.Alert_DETOUR
	return &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("a1"),
				Alert: &gtfs.Alert{
					HeaderText:      text("en", "Diversion near Park Street"),
					DescriptionText: text("en", "Buses skip Park Street until 6pm."),
					Effect:          &detour,
					InformedEntity: []*gtfs.EntitySelector{
						{RouteId: proto.String("S12D")},
						{RouteId: proto.String("S12D"), StopId: proto.String("Park Street")},
						{RouteId: proto.String("AC12D")},
					},
				},
			},
			{
				Id: proto.String("a2"),
				Alert: &gtfs.Alert{
					HeaderText:     text("en", "Station-wide notice"),
					InformedEntity: []*gtfs.EntitySelector{{StopId: proto.String("Howrah")}},
				},
			},
			{
				Id:        proto.String("a3"),
				IsDeleted: proto.Bool(true),
				Alert: &gtfs.Alert{
					HeaderText:     text("en", "Old"),
					InformedEntity: []*gtfs.EntitySelector{{RouteId: proto.String("S12D")}},
				},
			},
		},
	}
}

func TestDecode(t *testing.T) {
	alerts := Decode(sampleFeed())
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "Diversion near Park Street", a.Header)
	assert.Equal(t, "Detour", a.Effect)
	assert.Equal(t, []string{"S12D", "AC12D"}, a.Routes)
	assert.Equal(t, []string{"Park Street"}, a.Stops)
}

func TestTranslationPrefersEnglish(t *testing.T) {
	ts := &gtfs.TranslatedString{Translation: []*gtfs.TranslatedString_Translation{
		{Text: proto.String("বাস বন্ধ"), Language: proto.String("bn")},
		{Text: proto.String("Bus suspended"), Language: proto.String("en-IN")},
	}}
	assert.Equal(t, "Bus suspended", translation(ts))
	assert.Equal(t, "", translation(nil))
}

func TestEffectLabel(t *testing.T) {
	assert.Equal(t, "No Service", EffectLabel(gtfs.Alert_NO_SERVICE))
	assert.Equal(t, "Alert", EffectLabel(gtfs.Alert_UNKNOWN_EFFECT))
}

func TestStore(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.ForRoute("S12D"))

	now := time.Now()
	s.Replace(Decode(sampleFeed()), now)

	assert.Len(t, s.ForRoute("S12D"), 1)
	assert.Len(t, s.ForRoute("AC12D"), 1)
	assert.Empty(t, s.ForRoute("205"))

	got := s.ForRoutes("S12D", "205", "S12D")
	assert.Len(t, got, 1)
	assert.Contains(t, got, "S12D")

	n, at := s.Stats()
	assert.Equal(t, 1, n)
	assert.Equal(t, now, at)

	var nilStore *Store
	assert.Nil(t, nilStore.ForRoute("S12D"))
}

func TestFetch(t *testing.T) {
	body, err := proto.Marshal(sampleFeed())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write(body)
	}))
	defer srv.Close()

	store := NewStore()
	f := NewFetcher(srv.URL, 0, store, discard)
	assert.Equal(t, DefaultInterval, f.interval)

	n, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.ForRoute("S12D"), 1)
}

func TestFetchKeepsSnapshotOnError(t *testing.T) {
	store := NewStore()
	store.Replace([]Alert{{ID: "x", Routes: []string{"205"}}}, time.Now())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{"bad status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, "HTTP 502"},
		{"bad protobuf", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte{0xff, 0xff, 0xff})
		}, "parse protobuf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewFetcher(srv.URL, time.Minute, store, discard).Fetch(context.Background())
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Len(t, store.ForRoute("205"), 1)
		})
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewFetcher(srv.URL, time.Hour, NewStore(), discard).Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetcher did not stop")
	}
}
