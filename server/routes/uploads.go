package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/buidl-labs/muxsync/util"
)

// ListUploadsHandler lists direct uploads, most recently updated first.
func (h *Handler) ListUploadsHandler(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploads.ListUploads(r.Context(), parseLimit(r, 50))
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"uploads": uploads})
}

func (h *Handler) GetUploadHandler(w http.ResponseWriter, r *http.Request) {
	upload, err := h.uploads.GetUploadByMuxID(r.Context(), mux.Vars(r)["upload_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, upload)
}

// CreateUploadHandler creates a direct upload URL the client can PUT a
// video file to.
func (h *Handler) CreateUploadHandler(w http.ResponseWriter, r *http.Request) {
	params, err := readObject(w, r, true)
	if err != nil {
		writeError(w, err)
		return
	}
	upload, err := h.service.CreateDirectUpload(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusCreated, upload)
}

func (h *Handler) SyncUploadHandler(w http.ResponseWriter, r *http.Request) {
	upload, err := h.service.SyncUploadByID(r.Context(), mux.Vars(r)["upload_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, upload)
}
