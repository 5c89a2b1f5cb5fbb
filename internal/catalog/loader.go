package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/models"
)

// Loader reads a dataset directory into a Catalog.
type Loader struct {
	Dir         string
	KeyStations []string
	Logger      *slog.Logger
}

// NewLoader returns a loader for dir that checks keyStations after loading.
func NewLoader(dir string, keyStations []string, logger *slog.Logger) *Loader {
	return &Loader{Dir: dir, KeyStations: keyStations, Logger: logger}
}

// Load reads the index and every line file it lists. A missing index is
// fatal. Unreadable line files and malformed records are skipped and logged.
// If key stations are missing the partial catalog is returned together with
// an *IntegrityError.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	logger := logging.OrDiscard(l.Logger)
	start := time.Now()

	idx, err := l.readIndex()
	if err != nil {
		logging.LogError(logger, "Failed to read railway lines index", err,
			slog.String("dir", l.Dir))
		return nil, err
	}

	var (
		lines   []*models.RailwayLine
		skipped []SkippedLine
		stats   parseStats
	)
	for _, entry := range idx.Lines {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}

		line, err := l.readLine(entry, &stats)
		if err != nil {
			logging.LogWarning(logger, "Skipping railway line",
				slog.String("line", entry.Name),
				slog.String("file", entry.File),
				slog.String("error", err.Error()))
			skipped = append(skipped, SkippedLine{Name: entry.Name, File: entry.File, Reason: err.Error()})
			continue
		}
		for _, msg := range stats.drain() {
			logging.LogWarning(logger, "Skipping malformed record",
				slog.String("line", entry.Name),
				slog.String("detail", msg))
		}
		lines = append(lines, line)
	}

	cat := New(lines)
	cat.report.SkippedLines = skipped
	cat.report.SkippedStations = stats.stations
	cat.report.SkippedPatterns = stats.patterns
	cat.report.LoadedAt = time.Now()
	cat.report.Duration = time.Since(start)

	logging.LogOperation(logger, "catalog_loaded",
		slog.String("dir", l.Dir),
		slog.Int("lines", cat.LineCount()),
		slog.Int("stations", cat.StationCount()),
		slog.Int("skipped_lines", len(skipped)),
		slog.Duration("duration", cat.report.Duration))

	if len(l.KeyStations) == 0 {
		logging.LogWarning(logger, "No key stations configured, skipping catalog integrity check",
			slog.String("dir", l.Dir))
	}
	if missing := cat.MissingStations(l.KeyStations); len(missing) > 0 {
		cat.report.MissingKeys = missing
		ierr := &IntegrityError{Missing: missing}
		logging.LogError(logger, "Catalog integrity check failed", ierr)
		return cat, ierr
	}

	return cat, nil
}

func (l *Loader) readIndex() (*indexFile, error) {
	path := filepath.Join(l.Dir, IndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIndexMissing, path, err)
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrIndexMissing, path, err)
	}
	if len(idx.Lines) == 0 {
		return nil, fmt.Errorf("%w: %s lists no lines", ErrIndexMissing, path)
	}
	return &idx, nil
}

type parseStats struct {
	stations int
	patterns int
	messages []string
}

func (s *parseStats) skip(kind *int, format string, args ...any) {
	*kind++
	s.messages = append(s.messages, fmt.Sprintf(format, args...))
}

func (s *parseStats) drain() []string {
	msgs := s.messages
	s.messages = nil
	return msgs
}

func (l *Loader) readLine(entry indexEntry, stats *parseStats) (*models.RailwayLine, error) {
	if entry.Name == "" {
		return nil, errors.New("index entry has no name")
	}
	if entry.File == "" {
		return nil, errors.New("index entry has no file")
	}

	data, err := os.ReadFile(filepath.Join(l.Dir, filepath.Clean(entry.File)))
	if err != nil {
		return nil, fmt.Errorf("reading line file: %w", err)
	}

	var lf lineFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing line file: %w", err)
	}

	return buildLine(entry, lf, stats)
}

func buildLine(entry indexEntry, lf lineFile, stats *parseStats) (*models.RailwayLine, error) {
	line := &models.RailwayLine{
		Name:     entry.Name,
		File:     entry.File,
		Operator: entry.Operator,
		Terminus: entry.Terminus,
		Major:    entry.Major,
	}
	if line.Operator == "" {
		line.Operator = lf.Metadata.Operator
	}

	seen := make(map[string]bool, len(lf.Stations))
	for i, rec := range lf.Stations {
		if rec.Name == "" {
			stats.skip(&stats.stations, "station record %d has no name", i)
			continue
		}
		if seen[rec.Name] {
			stats.skip(&stats.stations, "station %q listed twice", rec.Name)
			continue
		}
		seen[rec.Name] = true
		line.Stations = append(line.Stations, models.Station{
			Name:        rec.Name,
			Coordinates: models.Coordinates{Lat: rec.Coordinates.Lat, Lng: rec.Coordinates.Lng},
			Zone:        string(rec.Zone),
			Interchange: rec.Interchange,
		})
	}
	if len(line.Stations) == 0 {
		return nil, errors.New("line has no valid stations")
	}

	for _, code := range lf.ServicePatterns.RejectedCodes() {
		stats.skip(&stats.patterns, "service pattern %q: %s", code, lf.ServicePatterns.Rejected[code])
	}
	if len(lf.ServicePatterns.Records) > 0 {
		set := &models.ServicePatternSet{Patterns: make(map[string]*models.ServicePattern, len(lf.ServicePatterns.Records))}
		for code, rec := range lf.ServicePatterns.Records {
			p := &models.ServicePattern{
				Code:        code,
				Name:        rec.Name,
				AllStations: rec.Stations.All,
				Stations:    rec.Stations.Names,
				Type:        models.ParseServiceType(rec.ServiceType),
			}
			if err := p.Validate(line); err != nil {
				stats.skip(&stats.patterns, "%v", err)
				continue
			}
			set.Patterns[code] = p
		}
		if len(set.Patterns) > 0 {
			line.Patterns = set
		}
	}

	if len(lf.JourneyTimes) > 0 {
		line.JourneyTimes = make(map[string]float64, len(lf.JourneyTimes))
		for k, v := range lf.JourneyTimes {
			if v > 0 {
				line.JourneyTimes[k] = v
			}
		}
	}

	return line, nil
}
