// Package httpx exposes the registry's introspection surfaces over
// HTTP for diagnostics and admin tooling.
package httpx

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/itsneelabh/pulse/metric"
)

// StatusHandler serves the registry's incarnation descriptors as JSON:
// one entry per incarnation with name, tags, unit, and instrument type.
func StatusHandler(registry *metric.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, registry.Status())
	})
}

// SnapshotHandler serves a fresh harvest as JSON. Harvesting resets
// counters and distributions, so this endpoint is meant for setups
// without a reporting loop; behind one it would steal the loop's data.
func SnapshotHandler(registry *metric.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, registry.Snapshot())
	})
}

// Handler bundles the introspection endpoints under /status and
// /snapshot, wrapped with OpenTelemetry HTTP instrumentation.
func Handler(registry *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/status", StatusHandler(registry))
	mux.Handle("/snapshot", SnapshotHandler(registry))
	return otelhttp.NewHandler(mux, "pulse.admin")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
