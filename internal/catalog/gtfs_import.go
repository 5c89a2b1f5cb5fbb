package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/jamespfennell/gtfs"

	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/models"
)

// ImportOptions controls how a GTFS feed is turned into a dataset.
type ImportOptions struct {
	// Filter selects the routes to import. Nil imports every route.
	Filter func(*gtfs.Route) bool
	// MinStations drops routes whose longest trip calls at fewer stations.
	MinStations int
}

// Dataset is an index plus line files ready to be written to disk.
type Dataset struct {
	index indexFile
	files map[string]lineFile
}

// LineNames returns the imported line names in index order.
func (d *Dataset) LineNames() []string {
	names := make([]string, len(d.index.Lines))
	for i, e := range d.index.Lines {
		names[i] = e.Name
	}
	return names
}

// Catalog builds an in-memory catalog from the dataset without touching disk.
func (d *Dataset) Catalog() *Catalog {
	var stats parseStats
	var lines []*models.RailwayLine
	for _, entry := range d.index.Lines {
		line, err := buildLine(entry, d.files[entry.File], &stats)
		if err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return New(lines)
}

// LoadGTFS reads and parses a static GTFS zip from a local path or an
// http(s) URL.
func LoadGTFS(ctx context.Context, source string) (*gtfs.Static, error) {
	var b []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("error building GTFS request: %w", reqErr)
		}
		resp, getErr := http.DefaultClient.Do(req)
		if getErr != nil {
			return nil, fmt.Errorf("error downloading GTFS data: %w", getErr)
		}
		defer logging.SafeCloseWithLogging(resp.Body, nil, "gtfs_download_body")
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("error downloading GTFS data: unexpected status %s", resp.Status)
		}
		b, err = io.ReadAll(resp.Body)
	} else {
		b, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}

	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	return static, nil
}

// FromGTFS derives a railway dataset from a static feed. Each route becomes a
// line whose physical order is its longest trip; every distinct calling
// sequence becomes a service pattern and stop time deltas fill the journey
// time table.
func FromGTFS(static *gtfs.Static, opts ImportOptions) (*Dataset, error) {
	if static == nil {
		return nil, fmt.Errorf("nil GTFS feed")
	}
	minStations := opts.MinStations
	if minStations < 2 {
		minStations = 2
	}

	tripsByRoute := make(map[string][]*gtfs.ScheduledTrip)
	var routeOrder []*gtfs.Route
	for i := range static.Routes {
		route := &static.Routes[i]
		if opts.Filter != nil && !opts.Filter(route) {
			continue
		}
		routeOrder = append(routeOrder, route)
	}
	for i := range static.Trips {
		trip := &static.Trips[i]
		if trip.Route == nil {
			continue
		}
		tripsByRoute[trip.Route.Id] = append(tripsByRoute[trip.Route.Id], trip)
	}

	ds := &Dataset{files: make(map[string]lineFile)}
	usedNames := make(map[string]bool)
	stationLines := make(map[string][]string)

	for _, route := range routeOrder {
		trips := tripsByRoute[route.Id]
		sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })

		sequences := make([][]gtfs.ScheduledStopTime, 0, len(trips))
		var longest []gtfs.ScheduledStopTime
		for _, trip := range trips {
			seq := orderedStopTimes(trip.StopTimes)
			sequences = append(sequences, seq)
			if len(seq) > len(longest) {
				longest = seq
			}
		}
		if len(longest) < minStations {
			continue
		}

		name := lineName(route)
		if usedNames[name] {
			name = name + " " + route.Id
		}
		usedNames[name] = true

		lf := lineFile{
			Metadata: lineMetadata{LineName: name},
		}
		if route.Agency != nil {
			lf.Metadata.Operator = route.Agency.Name
		}

		order := make([]string, 0, len(longest))
		position := make(map[string]int, len(longest))
		for _, st := range longest {
			stop := stationOf(st.Stop)
			if stop == nil {
				continue
			}
			if _, dup := position[stop.Name]; dup {
				continue
			}
			position[stop.Name] = len(order)
			order = append(order, stop.Name)
			lf.Stations = append(lf.Stations, stationRecordFor(stop))
			stationLines[stop.Name] = append(stationLines[stop.Name], name)
		}
		if len(order) < minStations {
			continue
		}

		lf.ServicePatterns = patternRecords{Records: patternsFor(sequences, order, position)}
		lf.JourneyTimes = journeyTimesFor(sequences)

		file := slugify(name) + ".json"
		ds.index.Lines = append(ds.index.Lines, indexEntry{
			Name:     name,
			File:     file,
			Operator: lf.Metadata.Operator,
			Terminus: []string{order[0], order[len(order)-1]},
		})
		ds.files[file] = lf
	}

	if len(ds.index.Lines) == 0 {
		return nil, fmt.Errorf("GTFS feed contains no importable routes")
	}

	for i := range ds.index.Lines {
		entry := &ds.index.Lines[i]
		lf := ds.files[entry.File]
		entry.Major = []string{}
		for j := range lf.Stations {
			rec := &lf.Stations[j]
			for _, other := range stationLines[rec.Name] {
				if other != entry.Name {
					rec.Interchange = append(rec.Interchange, other)
				}
			}
			if len(stationLines[rec.Name]) > 1 {
				entry.Major = append(entry.Major, rec.Name)
			}
		}
		ds.files[entry.File] = lf
	}

	return ds, nil
}

// WriteDataset writes the index and every line file into dir.
func WriteDataset(dir string, ds *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dataset dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, IndexFile), ds.index); err != nil {
		return err
	}
	for _, entry := range ds.index.Lines {
		if err := writeJSON(filepath.Join(dir, entry.File), ds.files[entry.File]); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer logging.HandleDeferredError(&err, f.Close, nil, "closing "+filepath.Base(path))

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func orderedStopTimes(in []gtfs.ScheduledStopTime) []gtfs.ScheduledStopTime {
	out := make([]gtfs.ScheduledStopTime, 0, len(in))
	for _, st := range in {
		if st.Stop != nil {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StopSequence < out[j].StopSequence })
	return out
}

// stationOf folds platforms into their parent station.
func stationOf(stop *gtfs.Stop) *gtfs.Stop {
	if stop == nil {
		return nil
	}
	if stop.Parent != nil {
		return stop.Parent
	}
	return stop
}

func stationRecordFor(stop *gtfs.Stop) stationRecord {
	rec := stationRecord{Name: stop.Name, Zone: flexString(stop.ZoneId)}
	if stop.Latitude != nil && stop.Longitude != nil {
		rec.Coordinates = coordRecord{Lat: *stop.Latitude, Lng: *stop.Longitude}
	}
	return rec
}

func lineName(route *gtfs.Route) string {
	switch {
	case route.LongName != "":
		return route.LongName
	case route.ShortName != "":
		return route.ShortName
	default:
		return route.Id
	}
}

func patternsFor(sequences [][]gtfs.ScheduledStopTime, order []string, position map[string]int) map[string]patternRecord {
	patterns := map[string]patternRecord{
		"stopping": {Name: "All stations", Stations: patternStations{All: true}, ServiceType: "stopping"},
	}

	seen := map[string]bool{strings.Join(order, "|"): true}
	n := 0
	for _, seq := range sequences {
		names := make([]string, 0, len(seq))
		for _, st := range seq {
			if stop := stationOf(st.Stop); stop != nil {
				if len(names) == 0 || names[len(names)-1] != stop.Name {
					names = append(names, stop.Name)
				}
			}
		}
		names = inLineOrder(names, position)
		if len(names) < 2 {
			continue
		}
		key := strings.Join(names, "|")
		if seen[key] {
			continue
		}
		seen[key] = true

		n++
		patterns[fmt.Sprintf("pattern_%d", n)] = patternRecord{
			Name:        fmt.Sprintf("%s - %s (%d stops)", names[0], names[len(names)-1], len(names)),
			Stations:    patternStations{Names: names},
			ServiceType: serviceTypeFor(len(names), len(order)),
		}
	}
	return patterns
}

// inLineOrder returns names in the line's physical order when the trip runs
// along it in either direction, or nil when it does not.
func inLineOrder(names []string, position map[string]int) []string {
	ascending, descending := true, true
	for i := 1; i < len(names); i++ {
		a, okA := position[names[i-1]]
		b, okB := position[names[i]]
		if !okA || !okB {
			return nil
		}
		if b <= a {
			ascending = false
		}
		if b >= a {
			descending = false
		}
	}
	switch {
	case ascending:
		return names
	case descending:
		out := make([]string, len(names))
		for i, n := range names {
			out[len(names)-1-i] = n
		}
		return out
	default:
		return nil
	}
}

func serviceTypeFor(served, total int) string {
	ratio := float64(served) / float64(total)
	switch {
	case ratio >= 0.9:
		return "stopping"
	case ratio >= 0.6:
		return "semi_fast"
	case ratio >= 0.35:
		return "fast"
	default:
		return "express"
	}
}

// journeyTimesFor keeps the quickest observed run between consecutive calls.
func journeyTimesFor(sequences [][]gtfs.ScheduledStopTime) map[string]float64 {
	times := make(map[string]float64)
	for _, seq := range sequences {
		for i := 1; i < len(seq); i++ {
			from, to := stationOf(seq[i-1].Stop), stationOf(seq[i].Stop)
			if from == nil || to == nil || from.Name == to.Name {
				continue
			}
			depart := seq[i-1].DepartureTime
			if depart == 0 {
				depart = seq[i-1].ArrivalTime
			}
			minutes := (seq[i].ArrivalTime - depart).Minutes()
			if minutes <= 0 {
				continue
			}
			key := from.Name + "-" + to.Name
			if cur, ok := times[key]; !ok || minutes < cur {
				times[key] = minutes
			}
		}
	}
	if len(times) == 0 {
		return nil
	}
	return times
}

func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
