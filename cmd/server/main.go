package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ghost.confess/config"
	"ghost.confess/internal/api"
	"ghost.confess/internal/confession"
	"ghost.confess/internal/logging"
	"ghost.confess/internal/metrics"
	"ghost.confess/internal/responder"
	"ghost.confess/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logging.New("ghost-confess")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	st := initStore(cfg, log)
	defer st.Close()

	agg := metrics.NewAggregator(cfg.Confessions.MetricsCapacity)
	svc := confession.NewService(st, agg, confession.Options{
		DeleteOnRead: cfg.Confessions.DeleteOnRead,
	})

	resp := responder.NewClient(
		cfg.Responder.BaseURL,
		os.Getenv(cfg.Responder.APIKeyEnv),
		cfg.Responder.Model,
		cfg.Responder.Timeout,
	)

	router := api.SetupRouter(svc, agg, resp, cfg, log)

	log.Info().
		Str("addr", cfg.Addr()).
		Str("store", cfg.Store.Type).
		Bool("delete_on_read", cfg.Confessions.DeleteOnRead).
		Msg("server starting")

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func initStore(cfg *config.Config, log zerolog.Logger) store.Store {
	switch cfg.Store.Type {
	case "redis":
		st, err := store.NewRedisStore(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		return st
	default:
		return store.NewMemoryStore(cfg.Store.CleanupInterval)
	}
}
