package handler

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"busfinder/internal/catalog"
	"busfinder/internal/mapview"
	"busfinder/internal/realtime"
	"busfinder/internal/search"
	"busfinder/internal/templates"
	"busfinder/web"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	engine  *search.Engine
	maps    *mapview.Builder
	alerts  *realtime.Store // nil when no alerts feed is configured
	logger  *slog.Logger
	version string // content hash of static assets, for cache busting
}

// New creates a Handler.
func New(engine *search.Engine, maps *mapview.Builder, alerts *realtime.Store, logger *slog.Logger) *Handler {
	v := computeAssetVersion(web.StaticFiles)
	logger.Debug("asset version computed", "version", v)
	return &Handler{engine: engine, maps: maps, alerts: alerts, logger: logger, version: v}
}

// computeAssetVersion hashes every CSS and JS file under fsys to produce a
// short version string.
func computeAssetVersion(fsys fs.FS) string {
	h := md5.New()
	var paths []string
	fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext == ".css" || ext == ".js" {
			paths = append(paths, p)
		}
		return nil
	})
	sort.Strings(paths)
	for _, p := range paths {
		f, err := fsys.Open(p)
		if err != nil {
			continue
		}
		io.Copy(h, f)
		f.Close()
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}

func (h *Handler) page(title string) templates.Page {
	return templates.Page{Title: title, AssetVersion: h.version}
}

func (h *Handler) catalog() *catalog.Catalog {
	return h.engine.Catalog()
}

// mapCenter is the initial map position before a result is drawn.
func (h *Handler) mapCenter() templates.MapView {
	c, ok := h.catalog().Center()
	if !ok {
		c = mapview.DefaultCenter
	}
	return templates.MapView{Lat: c.Lat, Lng: c.Lng, Zoom: mapview.DefaultZoom}
}
