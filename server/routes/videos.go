package routes

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/util"
	"github.com/buidl-labs/muxsync/validation"
)

type metadataRequest struct {
	UserID string `json:"userId"`
	dataservice.MetadataInput
}

// GetVideoHandler returns an asset with its metadata, for one user when
// ?user_id= is set.
func (h *Handler) GetVideoHandler(w http.ResponseWriter, r *http.Request) {
	video, err := h.videos.GetVideo(r.Context(), mux.Vars(r)["asset_id"], r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, video)
}

// PutVideoMetadataHandler sparse-merges metadata for (asset, user).
func (h *Handler) PutVideoMetadataHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, validation.Errorf("body", "reading request body: %v", err))
		return
	}
	var req metadataRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, validation.Errorf("body", "expected a metadata object"))
		return
	}

	id, err := h.videos.UpsertVideoMetadata(r.Context(), mux.Vars(r)["asset_id"], req.UserID, req.MetadataInput)
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"id": id})
}

// UserVideosHandler lists a user's videos, most recently updated first.
func (h *Handler) UserVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.ListVideosForUser(r.Context(), mux.Vars(r)["user_id"], parseLimit(r, 25))
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"videos": videos})
}
