package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DefaultInterval is how often the alerts feed is polled.
const DefaultInterval = time.Minute

// Fetcher polls a GTFS-RT service alerts feed into a Store.
type Fetcher struct {
	url      string
	interval time.Duration
	store    *Store
	client   *http.Client
	logger   *slog.Logger
}

// NewFetcher creates an alerts fetcher for url.
func NewFetcher(url string, interval time.Duration, store *Store, logger *slog.Logger) *Fetcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Fetcher{
		url:      url,
		interval: interval,
		store:    store,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Start fetches immediately and then on every tick until ctx is cancelled.
func (f *Fetcher) Start(ctx context.Context) {
	f.poll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-ctx.Done():
			f.logger.Info("alerts fetcher stopped")
			return
		}
	}
}

func (f *Fetcher) poll(ctx context.Context) {
	n, err := f.Fetch(ctx)
	if err != nil {
		f.logger.Warn("fetch alerts failed", "url", f.url, "error", err)
		return
	}
	f.logger.Info("alerts updated", "count", n)
}

// Fetch downloads the feed once and replaces the store's snapshot.
// On error the previous snapshot is kept.
func (f *Fetcher) Fetch(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("alerts feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return 0, fmt.Errorf("parse protobuf: %w", err)
	}

	alerts := Decode(feed)
	f.store.Replace(alerts, time.Now())
	return len(alerts), nil
}

// Decode extracts route-scoped alerts from a feed. Alerts that name no
// route are dropped since nothing on a result page could show them.
func Decode(feed *gtfs.FeedMessage) []Alert {
	var alerts []Alert
	for _, entity := range feed.GetEntity() {
		a := entity.GetAlert()
		if a == nil || entity.GetIsDeleted() {
			continue
		}

		alert := Alert{
			ID:     entity.GetId(),
			Header: translation(a.GetHeaderText()),
			Detail: translation(a.GetDescriptionText()),
			Effect: EffectLabel(a.GetEffect()),
		}

		seenRoute := make(map[string]bool)
		seenStop := make(map[string]bool)
		for _, ie := range a.GetInformedEntity() {
			if r := ie.GetRouteId(); r != "" && !seenRoute[r] {
				alert.Routes = append(alert.Routes, r)
				seenRoute[r] = true
			}
			if s := ie.GetStopId(); s != "" && !seenStop[s] {
				alert.Stops = append(alert.Stops, s)
				seenStop[s] = true
			}
		}
		if len(alert.Routes) == 0 {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// translation prefers English, then the first non-empty text.
func translation(ts *gtfs.TranslatedString) string {
	var first string
	for _, t := range ts.GetTranslation() {
		text := t.GetText()
		if text == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(t.GetLanguage()), "en") {
			return text
		}
		if first == "" {
			first = text
		}
	}
	return first
}

// EffectLabel returns a human-readable effect description.
func EffectLabel(e gtfs.Alert_Effect) string {
	switch e {
	case gtfs.Alert_NO_SERVICE:
		return "No Service"
	case gtfs.Alert_REDUCED_SERVICE:
		return "Reduced Service"
	case gtfs.Alert_SIGNIFICANT_DELAYS:
		return "Significant Delays"
	case gtfs.Alert_DETOUR:
		return "Detour"
	case gtfs.Alert_ADDITIONAL_SERVICE:
		return "Additional Service"
	case gtfs.Alert_MODIFIED_SERVICE:
		return "Modified Service"
	case gtfs.Alert_STOP_MOVED:
		return "Stop Moved"
	default:
		return "Alert"
	}
}
