package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/buidl-labs/muxsync/config"
	"github.com/buidl-labs/muxsync/dataservice"
	"github.com/buidl-labs/muxsync/ingest"
	"github.com/buidl-labs/muxsync/muxapi"
	"github.com/buidl-labs/muxsync/server"
	"github.com/buidl-labs/muxsync/server/routes"
	"github.com/buidl-labs/muxsync/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error loading configuration:", err)
	}
	if err := util.SetupLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		log.Fatalln("Error configuring logging:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openDatabase(ctx, cfg.Storage)
	if err != nil {
		log.Fatalln("Error opening database:", err)
	}
	defer closeDB()

	svcCfg := ingest.Config{}
	if cfg.Mux.HasCredentials() {
		svcCfg.Client = muxapi.NewHTTPClient(muxapi.Config{
			TokenID:           cfg.Mux.TokenID,
			TokenSecret:       cfg.Mux.TokenSecret,
			BaseURL:           cfg.Mux.BaseURL,
			RequestsPerSecond: cfg.Mux.RequestsPerSecond,
		})
	} else {
		log.Warn("MUX_TOKEN_ID/MUX_TOKEN_SECRET not set: events are applied from their embedded payloads")
	}
	if cfg.Mux.VerifySignature {
		svcCfg.Verifier = muxapi.NewVerifier(cfg.Mux.WebhookSecret, cfg.Mux.SignatureTolerance)
	}

	h := routes.NewHandler(db, ingest.NewService(db, svcCfg))
	maxAssets, includeMetadata := cfg.Backfill.MaxAssets, cfg.Backfill.IncludeVideoMetadata
	h.SetBackfillDefaults(ingest.BackfillOptions{
		MaxAssets:            &maxAssets,
		DefaultUserID:        cfg.Backfill.DefaultUserID,
		IncludeVideoMetadata: &includeMetadata,
	})
	accessLog := log.StandardLogger().Writer()
	err = server.StartServer(ctx, ":"+cfg.Server.Port, server.NewHTTPHandler(h, cfg.Server.CORSOrigins, accessLog))
	accessLog.Close()
	if err != nil {
		log.Fatalln("Error in starting server", err)
	}
}

func openDatabase(ctx context.Context, cfg config.StorageConfig) (dataservice.DatabaseHelper, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("Using the in-memory store: data is lost on exit")
		db := dataservice.NewMemoryDatabase()
		return db, func() {}, dataservice.EnsureIndexes(ctx, db)
	}

	client, err := dataservice.NewClient(cfg.MongoURI, cfg.Transactions)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Connect(); err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			log.Error("Disconnecting from mongo: ", err)
		}
	}

	db := dataservice.NewDatabase(cfg.Database, client)
	if err := dataservice.EnsureIndexes(ctx, db); err != nil {
		closeDB()
		return nil, nil, err
	}
	log.Info("Connected to mongo database ", cfg.Database)
	return db, closeDB, nil
}
