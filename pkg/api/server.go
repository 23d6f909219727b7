// Package api surfpatch REST API
//
// @title           surfpatch REST API
// @version         1.0.0
// @description     Inspect and patch account data on a local surfnet validator.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>surfpatch API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({url: '/swagger/swagger.json', dom_id: '#swagger-ui'});
	   };
	 </script>
</body>
</html>`

// NewRouter builds the HTTP routes. metricsHandler serves /metrics; nil
// uses the default prometheus registry.
func NewRouter(server *Server, metricsHandler http.Handler) http.Handler {
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	metrics := server.metrics

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))
		if server.config.RequestTimeout > 0 {
			r.Use(middleware.Timeout(server.config.RequestTimeout))
		}

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/assets/{key}", metrics.InstrumentHandler("GET", "/api/v1/assets/{key}", server.handleGetAsset))
		r.Put("/assets/{key}/owner", metrics.InstrumentHandler("PUT", "/api/v1/assets/{key}/owner", server.handleSetAssetOwner))

		r.Get("/collections/{key}", metrics.InstrumentHandler("GET", "/api/v1/collections/{key}", server.handleGetCollection))
		r.Put("/collections/{key}/authority", metrics.InstrumentHandler("PUT", "/api/v1/collections/{key}/authority", server.handleSetCollectionAuthority))

		r.Get("/token-records/{key}", metrics.InstrumentHandler("GET", "/api/v1/token-records/{key}", server.handleGetTokenRecord))
		r.Get("/token-accounts/{key}", metrics.InstrumentHandler("GET", "/api/v1/token-accounts/{key}", server.handleGetTokenAccount))

		r.Get("/snapshots", metrics.InstrumentHandler("GET", "/api/v1/snapshots", server.handleListSnapshots))
		r.Post("/snapshots/{id}/restore", metrics.InstrumentHandler("POST", "/api/v1/snapshots/{id}/restore", server.handleRestoreSnapshot))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/swagger/", "/swagger/index.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(swaggerUI))
		case "/swagger/swagger.json":
			doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
			if err != nil {
				server.logger.Error("swagger doc", "error", err)
				http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(doc))
		default:
			http.NotFound(w, r)
		}
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, p AccountPatcher, config ServerConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	bind := config.Bind
	if bind == "" {
		bind = "127.0.0.1"
	}
	addr := net.JoinHostPort(bind, strconv.Itoa(config.Port))
	SwaggerInfo.Host = addr

	server := NewServer(p, config, NewMetrics(nil), logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting surfpatch REST API", "addr", addr, "metrics", fmt.Sprintf("http://%s/metrics", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down surfpatch REST API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
