package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"llmanim/internal/gateway/handler/rpc"
	"llmanim/internal/gateway/middleware"
)

func NewRouter(
	versionHandler *rpc.VersionHandler,
	watchHandler *rpc.WatchHandler,
	allowedOrigin string,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(allowedOrigin))

	// RPC Handlers
	path, h := versionHandler.Handler()
	r.Handle(path+"*", h)

	// Live updates
	r.Get("/ws/versions", watchHandler.ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
