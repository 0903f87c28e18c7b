package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"busfinder/internal/catalog"
	"busfinder/internal/config"
	"busfinder/internal/geocode"
	"busfinder/internal/handler"
	"busfinder/internal/logging"
	"busfinder/internal/mapview"
	"busfinder/internal/osrm"
	"busfinder/internal/realtime"
	"busfinder/internal/search"
	"busfinder/internal/server"
	"busfinder/internal/source"
	"busfinder/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the whole program. It returns the process exit code so deferred
// cleanup runs before main exits.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	// CLI flags
	var from, to string
	var refresh bool
	fs := flag.NewFlagSet("busfinder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "YAML catalog file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database holding the catalog")
	fs.StringVar(&cfg.GTFSZip, "gtfs-zip", cfg.GTFSZip, "Build the catalog from a static GTFS zip")
	fs.StringVar(&cfg.GTFSURL, "gtfs-url", cfg.GTFSURL, "Download a static GTFS zip and build the catalog from it")
	fs.StringVar(&cfg.GTFSDir, "gtfs-dir", cfg.GTFSDir, "Directory for downloaded GTFS files")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.SeedDB, "seed-db", false, "Write the loaded catalog into -db, then exit")
	fs.BoolVar(&refresh, "refresh", false, "Rebuild the stored catalog instead of reusing it")
	fs.StringVar(&from, "from", "", "Source stop for a one-off search printed to stdout")
	fs.StringVar(&to, "to", "", "Destination stop for a one-off search printed to stdout")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := logging.New(stderr, cfg.LogFormat, cfg.LogLevel)

	// Context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedDB && cfg.DBPath == "" {
		logger.Error("-seed-db needs -db")
		return 2
	}

	var db *storage.DB
	if cfg.DBPath != "" {
		var err error
		db, err = storage.Open(cfg.DBPath, logger)
		if err != nil {
			logging.LogError(logger, "failed to open database", err)
			return 1
		}
		defer db.Close()
	}

	cat, src, err := source.Load(ctx, source.Options{
		DB:          db,
		GTFSZip:     cfg.GTFSZip,
		GTFSURL:     cfg.GTFSURL,
		GTFSDir:     cfg.GTFSDir,
		CatalogPath: cfg.CatalogPath,
		Refresh:     refresh || cfg.SeedDB,
	}, logger)
	if err != nil {
		logging.LogError(logger, "failed to load catalog", err)
		return 1
	}
	logger.Info("catalog ready", "source", src, "routes", cat.Len(), "stops", len(cat.StopNames()))

	if cfg.SeedDB {
		logger.Info("catalog stored", "db", cfg.DBPath)
		return 0
	}

	engine := search.NewEngine(cat)

	if from != "" || to != "" {
		return printSearch(stdout, engine, from, to)
	}

	if err := serve(ctx, cfg, cat, engine, logger); err != nil {
		logging.LogError(logger, "server error", err)
		return 1
	}
	return 0
}

// serve wires the map and alert collaborators and runs the HTTP server
// until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, engine *search.Engine, logger *slog.Logger) error {
	router := osrm.NewClient(cfg.OSRMURL, cfg.UserAgent, logger)
	defer router.Close()
	geocoder := geocode.New(cfg.NominatimURL, cfg.GeocodeSuffix, cfg.UserAgent)
	defer geocoder.Close()
	maps := mapview.NewBuilder(cat, router, geocoder, cfg.GeometryTimeout, logger)

	var alerts *realtime.Store
	if cfg.AlertsURL != "" {
		alerts = realtime.NewStore()
		go realtime.NewFetcher(cfg.AlertsURL, realtime.DefaultInterval, alerts, logger).Start(ctx)
	}

	srv := server.New(cfg, handler.New(engine, maps, alerts, logger), logger)
	return srv.ListenAndServe(ctx)
}

// printSearch writes a one-off search result and returns the exit code:
// 0 when something was found, 1 when no route exists, 2 for bad input.
func printSearch(w io.Writer, engine *search.Engine, from, to string) int {
	res, err := engine.Search(search.Query{Source: from, Destination: to})
	var ve *search.ValidationError
	switch {
	case errors.As(err, &ve):
		fmt.Fprintln(w, ve.Message)
		return 2
	case errors.Is(err, search.ErrNoRoute):
		fmt.Fprintln(w, search.MsgNoRoute)
		return 1
	case err != nil:
		fmt.Fprintln(w, err)
		return 1
	}

	fmt.Fprintln(w, res.Heading())
	for _, line := range res.Lines() {
		fmt.Fprintln(w, line)
	}
	return 0
}
