package models

import (
	"fmt"
	"sort"
	"strings"
)

// ServiceType classifies a stopping pattern by how fast it runs.
type ServiceType int

const (
	ServiceUnknown ServiceType = iota
	ServiceExpress
	ServiceFast
	ServiceSemiFast
	ServiceStopping
	ServicePeak
	ServiceNight
)

var serviceTypeNames = map[ServiceType]string{
	ServiceUnknown:  "unknown",
	ServiceExpress:  "express",
	ServiceFast:     "fast",
	ServiceSemiFast: "semi_fast",
	ServiceStopping: "stopping",
	ServicePeak:     "peak",
	ServiceNight:    "night",
}

func (t ServiceType) String() string {
	if name, ok := serviceTypeNames[t]; ok {
		return name
	}
	return serviceTypeNames[ServiceUnknown]
}

// ParseServiceType maps the dataset spelling of a service type. Unrecognised
// values map to ServiceUnknown.
func ParseServiceType(s string) ServiceType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	switch normalized {
	case "express":
		return ServiceExpress
	case "fast":
		return ServiceFast
	case "semi_fast", "semifast":
		return ServiceSemiFast
	case "stopping", "all_stations", "local":
		return ServiceStopping
	case "peak":
		return ServicePeak
	case "night":
		return ServiceNight
	default:
		return ServiceUnknown
	}
}

// Priority is the rank used to bias searches; lower is faster.
func (t ServiceType) Priority() int {
	switch t {
	case ServiceExpress:
		return 1
	case ServiceFast, ServicePeak:
		return 2
	case ServiceSemiFast:
		return 3
	case ServiceStopping, ServiceNight:
		return 4
	default:
		return LegacyPriority
	}
}

// SpeedMultiplier scales the distance based journey time estimate.
func (t ServiceType) SpeedMultiplier() float64 {
	switch t {
	case ServiceExpress:
		return 0.8
	case ServiceFast:
		return 0.9
	case ServiceSemiFast:
		return 1.0
	case ServicePeak:
		return 1.1
	case ServiceStopping:
		return 1.2
	case ServiceNight:
		return 1.4
	default:
		return 1.2
	}
}

// ServicePattern is a named stopping profile of one line.
type ServicePattern struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AllStations bool        `json:"allStations"`
	Stations    []string    `json:"stations,omitempty"`
	Type        ServiceType `json:"type"`
}

// Priority of the pattern's service type.
func (p *ServicePattern) Priority() int {
	return p.Type.Priority()
}

// ServedStations resolves the pattern against its line.
func (p *ServicePattern) ServedStations(line *RailwayLine) []string {
	if p.AllStations {
		return line.StationNames()
	}
	return p.Stations
}

// Validate checks that an explicit station list is an ordered subset of the line.
func (p *ServicePattern) Validate(line *RailwayLine) error {
	if p.AllStations {
		return nil
	}
	if len(p.Stations) < 2 {
		return fmt.Errorf("pattern %q serves fewer than two stations", p.Code)
	}

	last := -1
	for _, name := range p.Stations {
		idx := line.IndexOf(name)
		if idx < 0 {
			return fmt.Errorf("pattern %q serves %q which is not on line %q", p.Code, name, line.Name)
		}
		if idx <= last {
			return fmt.Errorf("pattern %q lists %q out of line order", p.Code, name)
		}
		last = idx
	}
	return nil
}

// ServicePatternSet holds the patterns of a line keyed by code.
type ServicePatternSet struct {
	Patterns map[string]*ServicePattern `json:"patterns"`
}

// Codes returns pattern codes fastest first, then alphabetically.
func (s *ServicePatternSet) Codes() []string {
	if s == nil {
		return nil
	}
	codes := make([]string, 0, len(s.Patterns))
	for code := range s.Patterns {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		pi, pj := s.Patterns[codes[i]].Priority(), s.Patterns[codes[j]].Priority()
		if pi != pj {
			return pi < pj
		}
		return codes[i] < codes[j]
	})
	return codes
}
