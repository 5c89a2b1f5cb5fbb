package restapi

import (
	"net/http"

	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/utils"
)

func (api *RestAPI) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.Engine.CacheStats()))
}

type invalidationEntry struct {
	Prefix  string `json:"prefix"`
	Removed int    `json:"removed"`
}

// cacheInvalidateHandler drops entries whose key starts with prefix. An
// empty prefix clears the whole cache.
func (api *RestAPI) cacheInvalidateHandler(w http.ResponseWriter, r *http.Request) {
	prefix, err := utils.ValidateAndSanitizeQuery(r.URL.Query().Get("prefix"))
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"prefix": {err.Error()}})
		return
	}

	removed := api.Engine.InvalidateCache(prefix)
	api.sendResponse(w, r, models.NewEntryResponse(invalidationEntry{Prefix: prefix, Removed: removed}))
}
