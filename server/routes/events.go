package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/buidl-labs/muxsync/util"
)

// ListEventsHandler lists the most recently received webhook events.
func (h *Handler) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListRecentEvents(r.Context(), parseLimit(r, 50))
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"events": events})
}

// ObjectEventsHandler lists the events of one object.
func (h *Handler) ObjectEventsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	events, err := h.events.ListEventsForObject(r.Context(), vars["object_type"], vars["object_id"], parseLimit(r, 50))
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"events": events})
}
