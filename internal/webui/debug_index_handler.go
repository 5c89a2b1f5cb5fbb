package webui

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"

	"railnet.dev/railnet/internal/catalog"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"report", "lines", "stations", "graph", "cache", "config"}

type debugData struct {
	Title string
	Pre   string
	Types []string
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   dumper.Sdump(data),
		Types: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type datasetStatus struct {
	LastUpdated time.Time
	Report      catalog.Report
}

type graphSummary struct {
	Nodes int
	Edges int
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	cat := webUI.Engine.Catalog()

	switch r.URL.Query().Get("dataType") {
	case "report":
		data = datasetStatus{LastUpdated: webUI.Catalog.LastUpdated(), Report: cat.Report()}
		title = "Dataset - Load Report"
	case "lines":
		data = cat.Lines()
		title = "Dataset - Lines"
	case "stations":
		data = cat.Stations()
		title = "Dataset - Stations"
	case "graph":
		g := webUI.Engine.Finder().Graph()
		data = graphSummary{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
		title = "Network - Graph"
	case "cache":
		data = webUI.Engine.CacheStats()
		title = "Result Cache - Counters"
	case "config":
		data = webUI.Config
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: report, lines, stations, graph, cache, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
