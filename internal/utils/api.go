package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ParseIntParam retrieves an int value from the provided URL query parameters.
// A missing key yields the fallback; an invalid value yields the fallback and
// records an error in fieldErrors.
func ParseIntParam(params url.Values, key string, fallback int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return fallback, fieldErrors
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return fallback, fieldErrors
	}
	return i, fieldErrors
}

// ParseTimeParameter parses an optional departure time. It accepts epoch
// milliseconds, RFC 3339 timestamps and "HH:MM" (interpreted as today in loc).
// An empty value returns the zero time.
func ParseTimeParameter(timeParam string, loc *time.Location, now time.Time) (time.Time, map[string][]string, bool) {
	if timeParam == "" {
		return time.Time{}, nil, true
	}

	if epoch, err := strconv.ParseInt(timeParam, 10, 64); err == nil {
		return time.UnixMilli(epoch).In(loc), nil, true
	}
	if t, err := time.Parse(time.RFC3339, timeParam); err == nil {
		return t.In(loc), nil, true
	}
	if t, err := time.ParseInLocation("15:04", timeParam, loc); err == nil {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil, true
	}

	fieldErrors := map[string][]string{
		"departureTime": {"Invalid field value for field \"departureTime\"."},
	}
	return time.Time{}, fieldErrors, false
}
