package routing

import (
	"context"
	"math"
	"sort"

	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/network"
)

// Validation thresholds in kilometres.
const (
	UserDirectLimitKM = 50.0
	UserMaxSegmentKM  = 150.0
	AutoMaxSegmentKM  = 500.0
)

// Issue reasons reported by Validate.
const (
	ReasonUnknownStation  = "unknown station"
	ReasonNoOperator      = "no direct operator connection"
	ReasonImplausible     = "implausible segment distance"
	ReasonUnknownDistance = "no direct operator and unknown distance"
	ReasonExceedsCeiling  = "segment exceeds sanity ceiling"
	ReasonRepeatedStation = "station visited twice"
)

// unknownDistance is reported in place of +Inf, which JSON cannot carry.
const unknownDistance = -1

// IdentifyTrainChanges returns the stations where a passenger must change
// line. The origin is never a change point.
func IdentifyTrainChanges(cat *catalog.Catalog, route []string) []string {
	changes := []string{}
	current := ""

	for i := 1; i < len(route); i++ {
		prev, next := route[i-1], route[i]
		common := commonLineNames(cat, prev, next)

		if len(common) == 0 {
			if i > 1 {
				changes = appendUnique(changes, prev)
			}
			current = ""
			continue
		}

		if current == "" {
			current = common[0]
			continue
		}

		if !contains(common, current) {
			changes = appendUnique(changes, prev)
			current = common[0]
		}
	}
	return changes
}

// OperatorForSegment returns the operator of the first line serving both
// stations.
func OperatorForSegment(cat *catalog.Catalog, from, to string) (string, bool) {
	a, okA := cat.Resolve(from)
	b, okB := cat.Resolve(to)
	if !okA || !okB {
		return "", false
	}
	for _, line := range cat.CommonLines(a, b) {
		if line.Operator != "" {
			return line.Operator, true
		}
	}
	return "", false
}

// SuggestViaStations returns intermediate stations of a small route search
// between the pair, sorted alphabetically and truncated to limit.
func (f *Finder) SuggestViaStations(ctx context.Context, from, to string, limit int) []string {
	via, _ := f.SearchViaStations(ctx, from, to, limit)
	return via
}

// SearchViaStations is SuggestViaStations that also passes on the search's
// ErrSearchTruncated.
func (f *Finder) SearchViaStations(ctx context.Context, from, to string, limit int) ([]string, error) {
	opts := DefaultOptions()
	opts.MaxRoutes = viaMaxRoutes
	opts.MaxChanges = viaMaxChanges

	routes, err := f.Search(ctx, from, to, opts)

	seen := make(map[string]bool)
	via := []string{}
	for _, r := range routes {
		for _, s := range r.Intermediate() {
			if !seen[s] {
				seen[s] = true
				via = append(via, s)
			}
		}
	}

	sort.Strings(via)
	if limit > 0 && len(via) > limit {
		via = via[:limit]
	}
	return via, err
}

// Validate checks each segment of route for geographic plausibility. User
// composed routes need a shared operator or a short hop; generated routes
// only have to stay under a sanity ceiling.
func Validate(cat *catalog.Catalog, route models.Route) models.ValidationResult {
	strict := route.IsUserComposed()
	source := route.Source
	if strict {
		source = models.RouteSourceUser
	}
	result := models.ValidationResult{Valid: true, Source: source, Issues: []models.SegmentIssue{}}

	flag := func(from, to string, km float64, reason string) {
		if math.IsInf(km, 0) || math.IsNaN(km) {
			km = unknownDistance
		}
		result.Valid = false
		result.Issues = append(result.Issues, models.SegmentIssue{From: from, To: to, DistanceKM: km, Reason: reason})
	}

	if strict && route.HasCycle() {
		flag(route.Origin(), route.Destination(), 0, ReasonRepeatedStation)
	}

	for i := 1; i < len(route.Stations); i++ {
		from, to := route.Stations[i-1], route.Stations[i]
		a, okA := cat.StationByName(from)
		b, okB := cat.StationByName(to)
		if !okA || !okB {
			flag(from, to, math.Inf(1), ReasonUnknownStation)
			continue
		}

		km := network.DistanceKM(a.Coordinates, b.Coordinates)
		unknown := math.IsInf(km, 0)

		if !strict {
			if !unknown && km > AutoMaxSegmentKM {
				flag(from, to, km, ReasonExceedsCeiling)
			}
			continue
		}

		_, hasOperator := OperatorForSegment(cat, a.Name, b.Name)
		switch {
		case unknown && !hasOperator:
			flag(from, to, km, ReasonUnknownDistance)
		case unknown:
		case km > UserMaxSegmentKM:
			flag(from, to, km, ReasonImplausible)
		case !hasOperator && km > UserDirectLimitKM:
			flag(from, to, km, ReasonNoOperator)
		}
	}
	return result
}

func commonLineNames(cat *catalog.Catalog, a, b string) []string {
	ca, okA := cat.Resolve(a)
	cb, okB := cat.Resolve(b)
	if !okA || !okB {
		return nil
	}
	lines := cat.CommonLines(ca, cb)
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}
