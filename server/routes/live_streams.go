package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/buidl-labs/muxsync/util"
)

func (h *Handler) ListLiveStreamsHandler(w http.ResponseWriter, r *http.Request) {
	liveStreams, err := h.liveStreams.ListLiveStreams(r.Context(), parseLimit(r, 50))
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, map[string]interface{}{"liveStreams": liveStreams})
}

func (h *Handler) GetLiveStreamHandler(w http.ResponseWriter, r *http.Request) {
	liveStream, err := h.liveStreams.GetLiveStreamByMuxID(r.Context(), mux.Vars(r)["live_stream_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, liveStream)
}

func (h *Handler) CreateLiveStreamHandler(w http.ResponseWriter, r *http.Request) {
	params, err := readObject(w, r, true)
	if err != nil {
		writeError(w, err)
		return
	}
	liveStream, err := h.service.CreateLiveStream(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusCreated, liveStream)
}

func (h *Handler) SyncLiveStreamHandler(w http.ResponseWriter, r *http.Request) {
	liveStream, err := h.service.SyncLiveStreamByID(r.Context(), mux.Vars(r)["live_stream_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	util.WriteResponse(w, http.StatusOK, liveStream)
}
