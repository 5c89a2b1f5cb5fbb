package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"railnet.dev/railnet/internal/appconf"
	"railnet.dev/railnet/internal/webui"
)

// Routes registers every endpoint on a new router.
func (api *RestAPI) Routes() *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowed)
	router.PanicHandler = api.panicResponse

	router.HandlerFunc(http.MethodGet, "/api/current-time", api.currentTimeHandler)

	router.HandlerFunc(http.MethodGet, "/api/stations", api.stationSearchHandler)
	router.HandlerFunc(http.MethodGet, "/api/stations/:name", api.stationHandler)
	router.HandlerFunc(http.MethodGet, "/api/stations/:name/lines", api.stationLinesHandler)

	router.HandlerFunc(http.MethodGet, "/api/routes", api.routesHandler)
	router.HandlerFunc(http.MethodPost, "/api/routes/validate", api.validateRouteHandler)
	router.HandlerFunc(http.MethodGet, "/api/via", api.viaHandler)
	router.HandlerFunc(http.MethodGet, "/api/operator", api.operatorHandler)

	router.HandlerFunc(http.MethodGet, "/api/cache/stats", api.cacheStatsHandler)
	router.HandlerFunc(http.MethodDelete, "/api/cache", api.cacheInvalidateHandler)

	if api.Config.Environment() != appconf.Production {
		router.Handler(http.MethodGet, "/debug", webui.New(api.Application).Handler())
	}

	return router
}
