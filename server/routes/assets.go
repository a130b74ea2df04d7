package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/buidl-labs/muxsync/util"
	"github.com/buidl-labs/muxsync/validation"
)

// ListAssetsHandler lists assets, optionally filtered by ?status=.
func (h *Handler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	status := r.URL.Query().Get("status")

	var err error
	var assets interface{}
	if status != "" {
		assets, err = h.assets.ListAssetsByStatus(r.Context(), status, limit)
	} else {
		assets, err = h.assets.ListAssets(r.Context(), limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// GetAssetHandler returns one asset by its mux asset id.
func (h *Handler) GetAssetHandler(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.GetAssetByMuxID(r.Context(), mux.Vars(r)["asset_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, asset)
}

// CreateAssetHandler creates an asset through the Mux API. The body holds
// the creation parameters.
func (h *Handler) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	params, err := readObject(w, r, false)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(params) == 0 {
		writeError(w, validation.Errorf("body", "asset creation parameters are required"))
		return
	}
	asset, err := h.service.CreateAsset(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusCreated, asset)
}

// SyncAssetHandler refreshes one asset from the Mux API.
func (h *Handler) SyncAssetHandler(w http.ResponseWriter, r *http.Request) {
	asset, err := h.service.SyncAssetByID(r.Context(), mux.Vars(r)["asset_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, asset)
}
