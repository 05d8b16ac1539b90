package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"costar-map/boundary"
	"costar-map/config"
	"costar-map/models"
	"costar-map/render"
	"costar-map/server"
	"costar-map/services"
	"costar-map/storage"
	"costar-map/tui"
	"costar-map/utils"
)

const snapshotTimeout = 2 * time.Minute

func main() {
	snapshot := flag.String("snapshot", "", "render the dashboard to this PNG file and exit")
	interactive := flag.Bool("tui", false, "pick a city and zip in the terminal")
	summaryOnly := flag.Bool("summary", false, "print the summary for -city/-zip and exit")
	city := flag.String("city", "", "city to filter on")
	zip := flag.String("zip", "", "zip code to filter on")
	minSize := flag.Float64("min-size", -1, "minimum available space in SF (default from config)")
	minParking := flag.Float64("min-parking", -1, "minimum parking spaces (default from config)")
	flag.Parse()

	logger := utils.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Listings map starting ===")
	logger.Info("Config: source: %s | region: %s | drop incomplete: %v | pad zips: %v",
		cfg.DataSource, cfg.RegionName, cfg.DropIncomplete, cfg.PadShortZips)

	src, err := storage.NewSource(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open listing source: %v", err)
		os.Exit(1)
	}
	defer src.Close()

	cleaner := services.NewCleaner(logger, services.CleanerOptions{
		DropIncomplete: cfg.DropIncomplete,
		PadShortZips:   cfg.PadShortZips,
	})
	listings, err := cleaner.Load(ctx, src)
	if err != nil {
		logger.Error("Failed to load listings: %v", err)
		os.Exit(1)
	}
	if len(listings) == 0 {
		logger.Warn("No listings survived cleaning; every view will be empty")
	}

	store := boundary.NewStore(boundary.NewSource(cfg, logger), cfg.RegionName, logger)

	summarySvc := services.NewSummaryService(logger)
	srv := server.New(cfg, logger, listings, store)

	sel := services.Selection{City: *city, Zip: *zip}
	if *minSize >= 0 {
		sel.MinSize = minSize
	}
	if *minParking >= 0 {
		sel.MinParking = minParking
	}

	switch {
	case *snapshot != "":
		loadBoundary(ctx, logger, store, cfg.RegionName, listings)
		if err := writeSnapshot(ctx, cfg, srv, sel, *snapshot); err != nil {
			logger.Error("Snapshot failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Snapshot saved to %s", *snapshot)

	case *interactive:
		size, parking := cfg.MinSize.Default, cfg.MinParking.Default
		if sel.MinSize != nil {
			size = *sel.MinSize
		}
		if sel.MinParking != nil {
			parking = *sel.MinParking
		}
		if err := tui.NewBrowser(listings, summarySvc, os.Stdout).Run(size, parking); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}

	case *summaryOnly:
		res, err := services.ResolveCriteria(listings, sel, services.Controls{MinSize: cfg.MinSize, MinParking: cfg.MinParking})
		if err != nil {
			logger.Error("Invalid filters: %v", err)
			os.Exit(1)
		}
		subset := services.Filter(listings, res.Criteria)
		summarySvc.Print(os.Stdout, res.Criteria, services.Summarize(subset))
		summarySvc.PrintListings(os.Stdout, subset, 10)

	default:
		loadBoundary(ctx, logger, store, cfg.RegionName, listings)
		if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}
}

// loadBoundary fetches the region outline. Failure leaves the store degraded.
func loadBoundary(ctx context.Context, logger *utils.Logger, store *boundary.Store, region string, listings []*models.Listing) {
	if err := store.Init(ctx); err != nil {
		logger.Warn("Continuing without a region boundary: %v", err)
		return
	}
	if fc, err := store.Current(); err == nil {
		if n := boundary.CountOutside(fc, listings); n > 0 {
			logger.Warn("%d of %d listings lie outside %s", n, len(listings), region)
		}
	}
}

func writeSnapshot(ctx context.Context, cfg *config.Config, srv *server.Server, sel services.Selection, path string) error {
	view, err := srv.View(sel)
	if err != nil {
		return err
	}

	var page bytes.Buffer
	if err := render.Page(&page, view); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	png, err := render.Snapshot(ctx, page.Bytes(), cfg.MapWidth, cfg.MapHeight, render.FindChromeBinary(cfg.ChromeBin))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
