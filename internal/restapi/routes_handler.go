package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/utils"
)

const (
	defaultViaLimit = 5
	maxViaLimit     = 50

	maxValidateBodyBytes = 64 << 10
)

func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	from := stationParam(query, "from", fieldErrors)
	to := stationParam(query, "to", fieldErrors)

	maxChanges := -1
	if query.Has("maxChanges") {
		maxChanges, _ = utils.ParseIntParam(query, "maxChanges", -1, fieldErrors)
		if _, bad := fieldErrors["maxChanges"]; !bad {
			if err := utils.ValidateMaxChanges(maxChanges); err != nil {
				fieldErrors["maxChanges"] = []string{err.Error()}
			}
		}
	}

	departure, timeErrors, ok := utils.ParseTimeParameter(query.Get("departureTime"), time.Local, time.Now())
	if !ok {
		for k, v := range timeErrors {
			fieldErrors[k] = v
		}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if !api.knownStations(from, to) {
		api.sendNotFound(w, r)
		return
	}

	var departurePtr *time.Time
	if !departure.IsZero() {
		departurePtr = &departure
	}

	routes := api.Engine.FindRoutes(r.Context(), from, to, maxChanges, departurePtr)
	if err := r.Context().Err(); err != nil {
		// Client went away; nothing useful to send.
		return
	}

	entries := make([]models.RouteEntry, len(routes))
	for i, route := range routes {
		entries[i] = api.Engine.RouteEntry(route)
	}

	api.sendResponse(w, r, models.NewListResponse(entries, false))
}

type validateRouteRequest struct {
	Stations []string           `json:"stations"`
	Source   models.RouteSource `json:"source"`
}

func (api *RestAPI) validateRouteHandler(w http.ResponseWriter, r *http.Request) {
	var req validateRouteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxValidateBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		msg := "request body must be a JSON object"
		if errors.As(err, &maxErr) {
			msg = "request body too large"
		}
		api.validationErrorResponse(w, r, map[string][]string{"body": {msg}})
		return
	}

	fieldErrors := make(map[string][]string)
	switch {
	case len(req.Stations) == 0:
		fieldErrors["stations"] = []string{"at least one station is required"}
	case len(req.Stations) > models.MaxPathLength:
		fieldErrors["stations"] = []string{fmt.Sprintf("too many stations (max %d)", models.MaxPathLength)}
	}
	for i, name := range req.Stations {
		if err := utils.ValidateStationName(name); err != nil {
			key := fmt.Sprintf("stations[%d]", i)
			fieldErrors[key] = append(fieldErrors[key], err.Error())
		}
	}
	switch req.Source {
	case "":
		req.Source = models.RouteSourceUser
	case models.RouteSourceDirect, models.RouteSourceSearch, models.RouteSourceUser:
	default:
		fieldErrors["source"] = []string{"source must be one of direct, search, user"}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	result := api.Engine.ValidateRoute(r.Context(), models.Route{Stations: req.Stations, Source: req.Source})
	api.sendResponse(w, r, models.NewEntryResponse(result))
}

func (api *RestAPI) viaHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	from := stationParam(query, "from", fieldErrors)
	to := stationParam(query, "to", fieldErrors)
	limit := limitParam(query, defaultViaLimit, maxViaLimit, fieldErrors)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if !api.knownStations(from, to) {
		api.sendNotFound(w, r)
		return
	}

	via := api.Engine.SuggestViaStations(r.Context(), from, to, limit)
	api.sendResponse(w, r, models.NewListResponse(via, false))
}

type operatorEntry struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Operator string `json:"operator"`
}

func (api *RestAPI) operatorHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	from := stationParam(query, "from", fieldErrors)
	to := stationParam(query, "to", fieldErrors)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	operator, ok := api.Engine.OperatorForSegment(from, to)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(operatorEntry{From: from, To: to, Operator: operator}))
}

func (api *RestAPI) knownStations(names ...string) bool {
	cat := api.Engine.Catalog()
	for _, name := range names {
		if _, ok := cat.Resolve(name); !ok {
			return false
		}
	}
	return true
}
