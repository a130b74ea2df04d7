package routes

import (
	"io"
	"net/http"

	"github.com/buidl-labs/muxsync/util"
)

// WebhookHandler ingests one Mux webhook delivery.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		util.WriteError(w, http.StatusRequestEntityTooLarge, "webhook body too large")
		return
	}
	res, err := h.service.IngestWebhook(r.Context(), body, r.Header)
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, res)
}
