package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/cache"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/config"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/service"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()

	var storeImpl store.Store
	if cfg.UseMemoryStore {
		log.Info("using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("connecting to postgres")
		}
		defer pg.Close()
		storeImpl = pg
	}

	// Redis is optional; without it every request recomputes.
	var insightCache *cache.Cache
	if cfg.RedisURL != "" {
		insightCache, err = cache.Connect(ctx, cfg.RedisURL, log)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, continuing without cache")
			insightCache = nil
		} else {
			defer insightCache.Close()
		}
	}

	insightsService := service.New(storeImpl, insightCache, log)

	mux := http.NewServeMux()
	insightsService.RegisterRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
	})
	handler := c.Handler(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.WithField("port", cfg.Port).Info("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
