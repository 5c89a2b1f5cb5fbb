// Command import-gtfs converts a static GTFS feed into a railnet dataset
// directory (railway_lines_index.json plus one file per line).
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
	"strconv"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/logging"
)

// railRouteType is the GTFS route_type of heavy rail services.
const railRouteType = 2

type options struct {
	source      string
	outDir      string
	routeTypes  []int
	agency      string
	minStations int
	logFormat   string
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var (
		opts       options
		routeTypes string
	)
	fs := flag.NewFlagSet("import-gtfs", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.source, "source", "", "Path or http(s) URL of a static GTFS zip")
	fs.StringVar(&opts.outDir, "out", "data", "Directory to write the dataset into")
	fs.StringVar(&routeTypes, "route-types", strconv.Itoa(railRouteType), "Comma separated GTFS route_type values to import; empty imports all")
	fs.StringVar(&opts.agency, "agency", "", "Only import routes of this agency id")
	fs.IntVar(&opts.minStations, "min-stations", 2, "Skip routes whose longest trip calls at fewer stations")
	fs.StringVar(&opts.logFormat, "log-format", "text", "Log format (json|text)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.source == "" {
		return options{}, errors.New("-source is required")
	}

	types, err := parseRouteTypes(routeTypes)
	if err != nil {
		return options{}, err
	}
	opts.routeTypes = types
	return opts, nil
}

func parseRouteTypes(s string) ([]int, error) {
	var types []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid route type %q", part)
		}
		types = append(types, n)
	}
	return types, nil
}

// routeFilter keeps routes of the requested types and agency. Empty criteria
// match everything.
func routeFilter(types []int, agency string) func(*gtfs.Route) bool {
	return func(r *gtfs.Route) bool {
		if agency != "" && (r.Agency == nil || r.Agency.Id != agency) {
			return false
		}
		if len(types) == 0 {
			return true
		}
		for _, t := range types {
			if int(r.Type) == t {
				return true
			}
		}
		return false
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	start := time.Now()

	static, err := catalog.LoadGTFS(ctx, opts.source)
	if err != nil {
		return err
	}

	ds, err := catalog.FromGTFS(static, catalog.ImportOptions{
		Filter:      routeFilter(opts.routeTypes, opts.agency),
		MinStations: opts.minStations,
	})
	if err != nil {
		return err
	}

	if err := catalog.WriteDataset(opts.outDir, ds); err != nil {
		return err
	}

	cat := ds.Catalog()
	logging.LogOperation(logger, "gtfs_import_completed",
		slog.String("source", opts.source),
		slog.String("out", opts.outDir),
		slog.Int("lines", cat.LineCount()),
		slog.Int("stations", cat.StationCount()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	logger := logging.NewLogger(os.Stderr, slog.LevelInfo, opts.logFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logging.LogError(logger, "GTFS import failed", err)
		os.Exit(1)
	}
}
