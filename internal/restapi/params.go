package restapi

import (
	"net/url"

	"railnet.dev/railnet/internal/utils"
)

// stationParam reads a required station name from the query string,
// recording a field error when it is missing or malformed.
func stationParam(query url.Values, key string, fieldErrors map[string][]string) string {
	name := utils.SanitizeInput(query.Get(key))
	if err := utils.ValidateStationName(name); err != nil {
		fieldErrors[key] = append(fieldErrors[key], err.Error())
	}
	return name
}

// limitParam reads an optional positive limit no larger than max.
func limitParam(query url.Values, fallback, max int, fieldErrors map[string][]string) int {
	limit, _ := utils.ParseIntParam(query, "limit", fallback, fieldErrors)
	if _, bad := fieldErrors["limit"]; bad {
		return fallback
	}
	if err := utils.ValidateLimit(limit, max); err != nil {
		fieldErrors["limit"] = append(fieldErrors["limit"], err.Error())
	}
	return limit
}
