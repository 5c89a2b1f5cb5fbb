package webui

import (
	"net/http"

	"railnet.dev/railnet/internal/app"
)

// WebUI serves the HTML debug pages.
type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

// Handler returns the debug index handler.
func (webUI *WebUI) Handler() http.Handler {
	return http.HandlerFunc(webUI.debugIndexHandler)
}
