package routes

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/buidl-labs/muxsync/ingest"
	"github.com/buidl-labs/muxsync/util"
	"github.com/buidl-labs/muxsync/validation"
)

// BackfillHandler runs one backfill and answers with its counters. Fields
// missing from the body take the configured defaults. On
// failure the counters of the completed part are returned with the error.
func (h *Handler) BackfillHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, validation.Errorf("body", "reading request body: %v", err))
		return
	}
	var opts ingest.BackfillOptions
	if len(body) > 0 {
		if err := json.Unmarshal(body, &opts); err != nil {
			writeError(w, validation.Errorf("body", "expected backfill options"))
			return
		}
	}

	res, err := h.service.Backfill(r.Context(), opts.WithDefaults(h.backfillDefaults))
	if err != nil {
		status := statusFor(err)
		util.WriteResponse(w, status, map[string]interface{}{
			"error":  err.Error(),
			"result": res,
		})
		return
	}
	util.WriteResponse(w, http.StatusOK, res)
}
