package apicommon

import (
	"encoding/json"
	"net/http"

	"go.vocdoni.io/dvote/log"
)

// HTTPWriteJSON writes data as a 200 JSON response. Encoding failures can only
// be logged since the status line has already been sent.
func HTTPWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warnw("could not encode response body", "error", err)
	}
}
