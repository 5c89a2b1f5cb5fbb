package cache

import "time"

// Strategy names.
const (
	StrategySearch      = "search"
	StrategyRoute       = "route"
	StrategyStationData = "station_data"
	StrategyValidation  = "validation"
	StrategyDefault     = "default"
)

// Strategy says which tiers an operation's results go to and for how long.
// A zero TTL skips that tier.
type Strategy struct {
	Name    string
	L1TTL   time.Duration
	L2TTL   time.Duration
	DiskTTL time.Duration
}

// Validation results depend on the loaded dataset and are never persisted.
var strategies = map[string]Strategy{
	StrategySearch:      {Name: StrategySearch, L1TTL: 5 * time.Minute, L2TTL: 30 * time.Minute, DiskTTL: time.Hour},
	StrategyRoute:       {Name: StrategyRoute, L1TTL: 10 * time.Minute, L2TTL: time.Hour, DiskTTL: 24 * time.Hour},
	StrategyStationData: {Name: StrategyStationData, L1TTL: time.Hour, L2TTL: 6 * time.Hour, DiskTTL: 7 * 24 * time.Hour},
	StrategyValidation:  {Name: StrategyValidation, L1TTL: 5 * time.Minute, L2TTL: 15 * time.Minute},
	StrategyDefault:     {Name: StrategyDefault, L1TTL: 5 * time.Minute, L2TTL: 30 * time.Minute, DiskTTL: time.Hour},
}

// StrategyFor returns the named strategy, or the default one.
func StrategyFor(name string) Strategy {
	if s, ok := strategies[name]; ok {
		return s
	}
	return strategies[StrategyDefault]
}

func (s Strategy) UsesDisk() bool { return s.DiskTTL > 0 }
