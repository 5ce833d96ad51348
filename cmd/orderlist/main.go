// Command orderlist builds an order list from an order export and a catalog
// export without running the web server.
//
//	orderlist --orders orders.xlsx --catalog catalog.xlsx --images ./img --out list.xlsx
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/OrderSheet/internal/config"
	"github.com/JonMunkholm/OrderSheet/internal/core"
	"github.com/JonMunkholm/OrderSheet/internal/images"
	"github.com/JonMunkholm/OrderSheet/internal/logging"
)

type options struct {
	orders, catalog           string
	ordersSheet, catalogSheet string
	ordersID, catalogID       string
	images                    string
	profile                   string
	encoding                  string
	out                       string
	verbose                   bool
}

func main() {
	_ = godotenv.Load()

	var o options
	fs := pflag.NewFlagSet("orderlist", pflag.ExitOnError)
	fs.StringVarP(&o.orders, "orders", "o", "", "order list export (.xlsx or .csv)")
	fs.StringVarP(&o.catalog, "catalog", "c", "", "catalog export (.xlsx or .csv)")
	fs.StringVar(&o.ordersSheet, "orders-sheet", "", "worksheet of the order list (default: first)")
	fs.StringVar(&o.catalogSheet, "catalog-sheet", "", "worksheet of the catalog (default: first)")
	fs.StringVar(&o.ordersID, "orders-id", "", "identifier column of the order list")
	fs.StringVar(&o.catalogID, "catalog-id", "", "identifier column of the catalog")
	fs.StringVarP(&o.images, "images", "i", os.Getenv("IMAGE_FOLDER"), "folder with product pictures")
	fs.StringVarP(&o.profile, "profile", "p", os.Getenv("PROFILE_PATH"), "workflow profile (yaml, json or toml)")
	fs.StringVar(&o.encoding, "encoding", "utf-8", "text encoding of CSV inputs")
	fs.StringVar(&o.out, "out", "order-list.xlsx", "output file; .csv writes CSV")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	fs.Parse(os.Args[1:])

	if o.orders == "" || o.catalog == "" {
		fmt.Fprintln(os.Stderr, "orderlist: --orders and --catalog are required")
		fs.Usage()
		os.Exit(2)
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	closeLogs := logging.Setup(logging.Options{Level: level, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, o)
	stop()
	closeLogs()

	if err != nil {
		fmt.Fprintf(os.Stderr, "orderlist: %s\n  %v\n", core.FormatUserError(err), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	profile, err := config.LoadProfile(o.profile)
	if err != nil {
		return err
	}

	opts := core.OptionsFrom(config.BuildConfig{CSVEncoding: o.encoding}, profile)
	if o.images != "" {
		opts.Images = images.NewResolver(o.images)
	}
	service := core.NewService(opts, nil)

	orders, err := readSource(o.orders, o.ordersSheet, o.ordersID)
	if err != nil {
		return err
	}
	catalog, err := readSource(o.catalog, o.catalogSheet, o.catalogID)
	if err != nil {
		return err
	}

	format := core.OutputXLSX
	if strings.EqualFold(filepath.Ext(o.out), ".csv") {
		format = core.OutputCSV
	}

	res, err := service.Build(ctx, core.BuildRequest{Orders: orders, Catalog: catalog, Format: format})
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}

	slog.Debug("build written", "file", o.out, "bytes", len(res.Data))
	fmt.Printf("%s: %d rows (%d of %d joined removed), %d images, %d missing\n",
		o.out, res.Stats.Output, res.Stats.Removed, res.Stats.Joined, res.Render.Images, res.Render.MissingImages)
	return nil
}

func readSource(path, sheet, idColumn string) (core.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	return core.Source{Name: filepath.Base(path), Data: data, Sheet: sheet, IDColumn: idColumn}, nil
}
