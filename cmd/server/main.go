package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lecture-rag/internal/auth"
	"lecture-rag/internal/config"
	"lecture-rag/internal/db"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/httpapi"
	"lecture-rag/internal/indexing"
	"lecture-rag/internal/lecture"
	"lecture-rag/internal/llmservice"
	"lecture-rag/internal/media"
	"lecture-rag/internal/qna"
	"lecture-rag/internal/rag"
	"lecture-rag/internal/transcribe"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	bunDB := db.NewDB(sqldb, cfg.Database.Debug)
	defer bunDB.Close()

	if err := db.InitDB(ctx, bunDB); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}
	store := db.NewStore(bunDB)

	embedder, err := embedding.NewEmbedder(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	chatClient, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat client")
	}
	engine := rag.NewEngine(chatClient, cfg.Index.TopK)

	runner := media.NewExecRunner()
	acquirer, err := media.NewAcquirer(cfg.Media.VideoDir, runner)
	if err != nil {
		log.Fatal().Err(err).Msg("Error preparing video directory")
	}
	transcoder, err := media.NewTranscoder(cfg.Media.VideoDir, cfg.Media.AudioDir, runner)
	if err != nil {
		log.Fatal().Err(err).Msg("Error preparing media directories")
	}
	transcriber := transcribe.NewClient(transcribe.Config{
		APIURL:   cfg.Speech.APIURL,
		APIKey:   cfg.Speech.APIKey,
		Language: cfg.Speech.Language,
		Timeout:  cfg.SpeechTimeout(),
	})
	indexer := indexing.NewIndexer(embedder, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)

	openRetriever := func(storagePath, collectionName string) (rag.Retriever, error) {
		return rag.OpenCollection(storagePath, collectionName, embedder)
	}
	lectureSvc := lecture.NewService(
		store, acquirer, transcoder, transcriber, indexer, engine,
		openRetriever, cfg.Index.VectorDir,
		log.With().Str("component", "lecture").Logger(),
	)

	authSvc := auth.NewService(store, cfg.SessionTTL())

	announceRetriever, err := rag.OpenCollection(cfg.Announce.Dir, cfg.Announce.Collection, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening announcements collection")
	}
	var cache qna.AnswerCache
	if cfg.Redis.Addr != "" {
		redisCache, err := qna.NewRedisCache(cfg.Redis.Addr)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, answer caching disabled")
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}
	qnaSvc := qna.NewService(
		authSvc, store, engine, announceRetriever, cache, cfg.CacheTTL(),
		log.With().Str("component", "qna").Logger(),
	)

	server := httpapi.NewServer(httpapi.Options{
		Bind:        cfg.Server.Bind,
		CORSOrigins: cfg.Server.CORSOrigins,
		CSVPath:     cfg.Storage.CSVPath,
		WebhookURL:  cfg.Storage.WebhookURL,
	}, authSvc, lectureSvc, qnaSvc, log.With().Str("component", "http").Logger())

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error starting server")
	}
	<-ctx.Done()
	server.Stop()
	log.Info().Msg("server stopped")
}
