package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/GregMSThompson/insights-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/insights-dashboard/internal/config"
	"github.com/GregMSThompson/insights-dashboard/internal/handlers"
	"github.com/GregMSThompson/insights-dashboard/internal/response"
	"github.com/GregMSThompson/insights-dashboard/internal/router"
	"github.com/GregMSThompson/insights-dashboard/internal/services"
	"github.com/GregMSThompson/insights-dashboard/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stores
	wstore := store.NewWidgetStore(bs.Firestore)
	istore := store.NewInsightStore(bs.Firestore)

	// services
	wserv := services.NewWidgetService(wstore)
	sserv := services.NewSessionService(bs.Log, wstore)
	anserv := services.NewAnalysisService(sserv)
	iserv := services.NewInsightService(bs.VertexAdapter, sserv, istore, cfg.InsightTTL)

	go sserv.RunJanitor(ctx, cfg.SessionIdleTimeout/4, cfg.SessionIdleTimeout)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.WidgetSvc = wserv
	deps.SessionSvc = sserv
	deps.AnalysisSvc = anserv
	deps.InsightSvc = iserv

	// router
	r := router.NewRouter(deps)
	bs.Log.Info("listening", "port", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
