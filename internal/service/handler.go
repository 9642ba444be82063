package service

import (
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/controller"
	"github.com/mmynk/splitsync/internal/middleware"
)

// DashboardServiceName is the fully-qualified name of the view API service.
const DashboardServiceName = "splitsync.v1.DashboardService"

// Procedure paths.
const (
	DashboardServiceGetSnapshotProcedure   = "/" + DashboardServiceName + "/GetSnapshot"
	DashboardServiceRefreshProcedure       = "/" + DashboardServiceName + "/Refresh"
	DashboardServiceWatchSnapshotProcedure = "/" + DashboardServiceName + "/WatchSnapshot"
	DashboardServiceGetDraftProcedure      = "/" + DashboardServiceName + "/GetDraft"
	DashboardServiceUpdateDraftProcedure   = "/" + DashboardServiceName + "/UpdateDraft"
	DashboardServiceAddExpenseProcedure    = "/" + DashboardServiceName + "/AddExpense"
	DashboardServiceAddPersonProcedure     = "/" + DashboardServiceName + "/AddPerson"
)

// EditProcedures change the draft or the ledger. Read-only tokens may not call them.
var EditProcedures = []string{
	DashboardServiceUpdateDraftProcedure,
	DashboardServiceAddExpenseProcedure,
	DashboardServiceAddPersonProcedure,
}

// TokenTTL is the lifetime of view tokens issued by `splitsync token`.
const TokenTTL = 30 * 24 * time.Hour

// NewDashboardServiceHandler builds an HTTP handler for svc. It returns the
// path to mount the handler on.
func NewDashboardServiceHandler(svc *DashboardService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(DashboardServiceGetSnapshotProcedure,
		connect.NewUnaryHandler(DashboardServiceGetSnapshotProcedure, svc.GetSnapshot, opts...))
	mux.Handle(DashboardServiceRefreshProcedure,
		connect.NewUnaryHandler(DashboardServiceRefreshProcedure, svc.Refresh, opts...))
	mux.Handle(DashboardServiceWatchSnapshotProcedure,
		connect.NewServerStreamHandler(DashboardServiceWatchSnapshotProcedure, svc.WatchSnapshot, opts...))
	mux.Handle(DashboardServiceGetDraftProcedure,
		connect.NewUnaryHandler(DashboardServiceGetDraftProcedure, svc.GetDraft, opts...))
	mux.Handle(DashboardServiceUpdateDraftProcedure,
		connect.NewUnaryHandler(DashboardServiceUpdateDraftProcedure, svc.UpdateDraft, opts...))
	mux.Handle(DashboardServiceAddExpenseProcedure,
		connect.NewUnaryHandler(DashboardServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(DashboardServiceAddPersonProcedure,
		connect.NewUnaryHandler(DashboardServiceAddPersonProcedure, svc.AddPerson, opts...))
	return "/" + DashboardServiceName + "/", mux
}

// NewMux mounts the view API, /metrics and /healthz. When the controller's
// view secret is set every RPC requires a bearer token.
func NewMux(ctl *controller.Controller, gatherer prometheus.Gatherer) *http.ServeMux {
	interceptors := []connect.Interceptor{middleware.LoggingInterceptor()}
	if ctl.Config.ViewSecret != "" {
		jwtManager := auth.NewJWTManager(ctl.Config.ViewSecret, TokenTTL)
		// Auth runs first so the logging interceptor sees the viewer.
		interceptors = []connect.Interceptor{
			middleware.RequireAuth(jwtManager, EditProcedures...),
			middleware.LoggingInterceptor(),
		}
	}

	mux := http.NewServeMux()
	path, handler := NewDashboardServiceHandler(
		NewDashboardService(ctl),
		connect.WithInterceptors(interceptors...),
	)
	mux.Handle(path, handler)

	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
