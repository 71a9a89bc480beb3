package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rag-api/internal/config"
	"rag-api/internal/corpus"
	"rag-api/internal/embedding"
	"rag-api/internal/index"
	"rag-api/internal/llmservice"
	"rag-api/internal/rag"
	"rag-api/internal/server"
)

const (
	configFilePath  = "./configs/config.yaml"
	shutdownTimeout = 10 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// .env is optional, for the API key
	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	addr := flag.String("addr", "", "Listen address, overrides the config")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx := context.Background()

	embedder, err := embedding.NewEmbedder(&cfg.Embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	docs, err := corpus.Load(&cfg.Corpus)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading corpus")
	}
	log.Info().Int("documents", len(docs)).Msg("Loaded corpus")

	idx, closeIdx, err := newIndex(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating index")
	}
	defer closeIdx()

	if err := index.Build(ctx, embedder, idx, docs); err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}
	log.Info().Str("type", cfg.Index.Type).Msg("Built index")

	generator, err := llmservice.NewClient(&cfg.Inference)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generation client")
	}

	pipeline := rag.NewRAG(embedder, idx, generator, &cfg.Retrieval)
	srv := server.New(pipeline, &cfg.Server)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(log.Logger),
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down")
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Config file not found, using defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

func newIndex(cfg *config.Config) (index.Index, func(), error) {
	switch cfg.Index.Type {
	case "postgres":
		pg, err := index.NewPostgresIndex(&cfg.Index)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() {
			if err := pg.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing index")
			}
		}, nil
	default:
		mem, err := index.NewMemoryIndex()
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}
}
