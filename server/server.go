package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/buidl-labs/muxsync/server/routes"
)

// NewRouter mounts every route of h.
func NewRouter(h *routes.Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", h.HealthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/mux/webhook", h.WebhookHandler).Methods("POST")

	router.HandleFunc("/assets", h.ListAssetsHandler).Methods("GET")
	router.HandleFunc("/assets", h.CreateAssetHandler).Methods("POST")
	router.HandleFunc("/assets/{asset_id}", h.GetAssetHandler).Methods("GET")
	router.HandleFunc("/assets/{asset_id}/sync", h.SyncAssetHandler).Methods("POST")

	router.HandleFunc("/live-streams", h.ListLiveStreamsHandler).Methods("GET")
	router.HandleFunc("/live-streams", h.CreateLiveStreamHandler).Methods("POST")
	router.HandleFunc("/live-streams/{live_stream_id}", h.GetLiveStreamHandler).Methods("GET")
	router.HandleFunc("/live-streams/{live_stream_id}/sync", h.SyncLiveStreamHandler).Methods("POST")

	router.HandleFunc("/uploads", h.ListUploadsHandler).Methods("GET")
	router.HandleFunc("/uploads", h.CreateUploadHandler).Methods("POST")
	router.HandleFunc("/uploads/{upload_id}", h.GetUploadHandler).Methods("GET")
	router.HandleFunc("/uploads/{upload_id}/sync", h.SyncUploadHandler).Methods("POST")

	router.HandleFunc("/events", h.ListEventsHandler).Methods("GET")
	router.HandleFunc("/events/{object_type}/{object_id}", h.ObjectEventsHandler).Methods("GET")

	router.HandleFunc("/videos/{asset_id}", h.GetVideoHandler).Methods("GET")
	router.HandleFunc("/videos/{asset_id}/metadata", h.PutVideoMetadataHandler).Methods("PUT")
	router.HandleFunc("/users/{user_id}/videos", h.UserVideosHandler).Methods("GET")

	router.HandleFunc("/backfill", h.BackfillHandler).Methods("POST")

	return router
}

// NewHTTPHandler wraps the router with CORS, panic recovery and access
// logging to accessLog.
func NewHTTPHandler(h *routes.Handler, corsOrigins []string, accessLog io.Writer) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Mux-Signature"}),
	)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))
	return handlers.LoggingHandler(accessLog, recovery(cors(NewRouter(h))))
}

// StartServer serves handler on serverPort until ctx is cancelled.
func StartServer(ctx context.Context, serverPort string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              serverPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infoln("Starting server at PORT", serverPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
