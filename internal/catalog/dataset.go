package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// IndexFile is the name of the line index inside a dataset directory.
const IndexFile = "railway_lines_index.json"

type indexFile struct {
	Lines []indexEntry `json:"lines"`
}

type indexEntry struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Operator string   `json:"operator"`
	Terminus []string `json:"terminus_stations"`
	Major    []string `json:"major_stations"`
}

type lineFile struct {
	Metadata        lineMetadata       `json:"metadata"`
	Stations        []stationRecord    `json:"stations"`
	ServicePatterns patternRecords     `json:"service_patterns"`
	JourneyTimes    map[string]float64 `json:"typical_journey_times,omitempty"`
}

type lineMetadata struct {
	LineName string `json:"line_name"`
	Operator string `json:"operator,omitempty"`
}

type stationRecord struct {
	Name        string      `json:"name"`
	Coordinates coordRecord `json:"coordinates"`
	Zone        flexString  `json:"zone,omitempty"`
	Interchange []string    `json:"interchange,omitempty"`
}

type coordRecord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type patternRecord struct {
	Name        string          `json:"name"`
	Stations    patternStations `json:"stations"`
	ServiceType string          `json:"service_type"`
}

// patternRecords decodes each pattern on its own. Patterns that do not
// decode land in Rejected, keyed by code, instead of failing the line file.
type patternRecords struct {
	Records  map[string]patternRecord
	Rejected map[string]string
}

func (p *patternRecords) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("service_patterns must be an object: %w", err)
	}
	p.Records = make(map[string]patternRecord, len(raw))
	p.Rejected = nil
	for code, msg := range raw {
		var rec patternRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			if p.Rejected == nil {
				p.Rejected = make(map[string]string)
			}
			p.Rejected[code] = err.Error()
			continue
		}
		p.Records[code] = rec
	}
	return nil
}

func (p patternRecords) MarshalJSON() ([]byte, error) {
	if p.Records == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Records)
}

// RejectedCodes returns the codes of undecodable patterns, sorted.
func (p patternRecords) RejectedCodes() []string {
	codes := make([]string, 0, len(p.Rejected))
	for code := range p.Rejected {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// patternStations is either the literal "all" or an explicit list of names.
type patternStations struct {
	All   bool
	Names []string
}

func (p *patternStations) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if !strings.EqualFold(s, "all") {
			return fmt.Errorf("unsupported stations value %q", s)
		}
		p.All = true
		p.Names = nil
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("stations must be \"all\" or a list: %w", err)
	}
	p.All = false
	p.Names = names
	return nil
}

func (p patternStations) MarshalJSON() ([]byte, error) {
	if p.All {
		return []byte(`"all"`), nil
	}
	if p.Names == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Names)
}

// flexString accepts zones written either as strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("zone must be a string or number: %w", err)
		}
		*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}
