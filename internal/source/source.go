// Package source decides where the route catalog comes from at startup.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"busfinder/internal/catalog"
	"busfinder/internal/gtfs"
	"busfinder/internal/storage"
)

// Options names the catalog sources. Empty fields are skipped.
type Options struct {
	DB          *storage.DB
	GTFSZip     string
	GTFSURL     string
	GTFSDir     string // where GTFSURL is downloaded to
	CatalogPath string // YAML catalog

	// Refresh ignores a catalog already stored in DB and rebuilds it from
	// the remaining sources.
	Refresh bool
}

// Load returns the first available catalog, trying in order: DB, GTFS zip,
// GTFS URL, YAML file, built-in sample. A catalog that did not come from
// DB is written to it. The second result describes where it came from.
func Load(ctx context.Context, opts Options, logger *slog.Logger) (*catalog.Catalog, string, error) {
	if opts.DB != nil && !opts.Refresh && opts.DB.HasData(ctx) {
		c, err := opts.DB.LoadCatalog(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load catalog from database: %w", err)
		}
		origin, _ := opts.DB.GetMetadata(ctx, "source")
		logger.Info("catalog loaded from database", "routes", c.Len(), "origin", origin)
		return c, "db", nil
	}

	c, src, err := build(ctx, opts, logger)
	if err != nil {
		return nil, "", err
	}

	if opts.DB != nil {
		if err := opts.DB.ImportCatalog(ctx, c, src); err != nil {
			return nil, "", fmt.Errorf("store catalog: %w", err)
		}
	}
	return c, src, nil
}

func build(ctx context.Context, opts Options, logger *slog.Logger) (*catalog.Catalog, string, error) {
	switch {
	case opts.GTFSZip != "":
		c, err := gtfs.LoadCatalog(opts.GTFSZip, logger)
		if err != nil {
			return nil, "", fmt.Errorf("GTFS zip %s: %w", opts.GTFSZip, err)
		}
		return c, "gtfs-zip:" + opts.GTFSZip, nil

	case opts.GTFSURL != "":
		dir := opts.GTFSDir
		if dir == "" {
			dir = os.TempDir()
		}
		path, err := gtfs.NewDownloader(opts.GTFSURL, dir, logger).Download(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("download GTFS: %w", err)
		}
		defer os.Remove(path)

		c, err := gtfs.LoadCatalog(path, logger)
		if err != nil {
			return nil, "", fmt.Errorf("GTFS feed %s: %w", opts.GTFSURL, err)
		}
		return c, "gtfs-url:" + opts.GTFSURL, nil

	case opts.CatalogPath != "":
		c, err := catalog.LoadFile(opts.CatalogPath)
		if err != nil {
			return nil, "", err
		}
		logger.Info("catalog loaded from file", "path", opts.CatalogPath, "routes", c.Len())
		return c, "yaml:" + opts.CatalogPath, nil

	default:
		c := catalog.Sample()
		logger.Info("using built-in sample catalog", "routes", c.Len())
		return c, "sample", nil
	}
}
