package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/config"
	"github.com/versecast/versecast/internal/engine"
	"github.com/versecast/versecast/internal/hub"
	"github.com/versecast/versecast/internal/item"
	"github.com/versecast/versecast/internal/library"
	"github.com/versecast/versecast/internal/redis"
	"github.com/versecast/versecast/internal/renderer"
	"github.com/versecast/versecast/internal/stage"
)

func main() {
	env := LoadEnvironment()
	if env.Environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	citation, err := item.ParseCitationStyle(cfg.CitationStyle)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid citation style")
	}

	store, err := library.Open(env.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("library init failed")
	}

	cache := redis.Connect(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	stageNotifier, err := stage.Connect(env.MQTTBrokerURL, "versecast-server")
	if err != nil {
		log.Fatal().Err(err).Msg("stage notifier init failed")
	}

	pool := renderer.NewPool(cfg.Renderers)

	var eng *engine.Engine
	h := hub.New(func() (any, bool) { return eng.ClientSnapshot() })
	eng = engine.New(pool, h, stageNotifier, cache, item.Deps{
		Library:  store,
		Sink:     pool,
		Citation: citation,
	})

	r := gin.Default()
	RegisterRoutes(r, eng, store, h)

	go func() {
		log.Info().Str("address", env.ServerAddress).Int("renderers", len(cfg.Renderers)).Msg("listening")
		if err := r.Run(env.ServerAddress); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	eng.Shutdown()
	stageNotifier.Close()
	cache.Close()
	h.Close()
}
