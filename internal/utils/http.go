package utils

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ParamFromRequest retrieves a path parameter stored by httprouter in the request context,
// unescaping it and removing a trailing ".json".
func ParamFromRequest(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	raw := strings.TrimSuffix(params.ByName(paramName), ".json")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}
