package restapi

import (
	"net/http"

	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/utils"
)

const maxSearchLimit = 100

func (api *RestAPI) stationSearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	q, err := utils.ValidateAndSanitizeQuery(query.Get("q"))
	if err != nil {
		fieldErrors["q"] = []string{err.Error()}
	}
	limit := limitParam(query, catalog.DefaultSearchLimit, maxSearchLimit, fieldErrors)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	// One extra result tells us whether the limit cut the list short.
	results := api.Engine.SearchStations(r.Context(), q, limit+1)
	limitExceeded := len(results) > limit
	if limitExceeded {
		results = results[:limit]
	}

	api.sendResponse(w, r, models.NewListResponse(results, limitExceeded))
}

func (api *RestAPI) stationHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ParamFromRequest(r, "name")
	if err := utils.ValidateStationName(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"name": {err.Error()}})
		return
	}

	entry, ok := api.Engine.StationInfo(r.Context(), name)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) stationLinesHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ParamFromRequest(r, "name")
	if err := utils.ValidateStationName(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"name": {err.Error()}})
		return
	}

	canonical, ok := api.Engine.Catalog().Resolve(name)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(api.Engine.LinesForStation(canonical), false))
}
