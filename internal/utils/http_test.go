package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestParamFromRequest(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want string
	}{
		{
			name: "plain name",
			path: "Woking",
			want: "Woking",
		},
		{
			name: "escaped spaces",
			path: "London%20Waterloo",
			want: "London Waterloo",
		},
		{
			name: "JSON extension",
			path: "Woking.json",
			want: "Woking",
		},
		{
			name: "escaped parenthetical",
			path: "Farnborough%20%28Main%29",
			want: "Farnborough (Main)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var result string
			router.Handler(http.MethodGet, "/api/stations/:name", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				result = ParamFromRequest(r, "name")
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/stations/"+tc.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.want, result)
		})
	}
}
