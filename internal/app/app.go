package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ragbot/features/chat"
	"ragbot/features/datasource"
	featureingest "ragbot/features/ingest"
	"ragbot/internal/adapter/gemini"
	wstore "ragbot/internal/adapter/weaviate"
	"ragbot/internal/audio"
	"ragbot/internal/config"
	"ragbot/internal/ingest"
	"ragbot/internal/middleware"
	"ragbot/internal/settings"
	"ragbot/internal/task"
	"ragbot/internal/text"
	"ragbot/internal/transcripts"
)

type App struct {
	Handler  http.Handler
	Pipeline *ingest.Pipeline
	Tasks    *task.Manager

	port int
}

func New(cfg *config.Config, deps *Dependencies) (*App, error) {
	sqlDB := deps.DB

	// Feature: Settings
	settingsRepo := settings.NewPostgresRepo(sqlDB)
	settingsService := settings.NewService(settingsRepo)
	seedSettings(cfg, settingsService)
	settingsHandler := settings.NewHandler(settingsService)

	// Ingestion pipeline
	embedder := gemini.NewEmbedder(settingsService)
	store := wstore.NewStore(deps.Weaviate, cfg.WeaviateClass)
	downloader := audio.NewDownloader(cfg.YTDLPPath, cfg.DownloadDir)
	transcriber := audio.NewTranscriber(cfg.WhisperPath, cfg.WhisperModel, "",
		time.Duration(cfg.WhisperTimeoutSeconds)*time.Second)
	transcriptRepo := transcripts.NewPostgresRepo(sqlDB)

	pipeline := ingest.NewPipeline(ingest.PipelineOptions{
		Chunker:     text.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		Embedder:    embedder,
		Store:       store,
		Downloader:  downloader,
		Transcriber: transcriber,
		Recorder:    transcriptRepo,
		SettingsSvc: settingsService,
	})

	// Feature: Ingest (synchronous)
	ingestHandler := featureingest.NewHandler(pipeline)

	// Feature: DataSource (async upload / add / status)
	tasks := task.NewManager()
	dsHandler := datasource.NewHandler(pipeline, tasks, cfg.UploadDir, cfg.MaxUploadSizeMB)

	// Feature: Chat
	chatHandler := chat.NewHandler(chat.NewPostgresRepo(sqlDB))

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /api/ingest", middleware.CorrelationID(enableCORS(ingestHandler.Ingest)))

	mux.Handle("POST /api/data_source/upload", middleware.CorrelationID(enableCORS(dsHandler.Upload)))
	mux.Handle("POST /api/data_source/add", middleware.CorrelationID(enableCORS(dsHandler.Add)))
	mux.Handle("GET /api/data_source/status/{task_id}", middleware.CorrelationID(enableCORS(dsHandler.Status)))
	mux.Handle("GET /api/data_source/upload/status/{task_id}", middleware.CorrelationID(enableCORS(dsHandler.Status)))

	mux.Handle("POST /api/chat", middleware.CorrelationID(enableCORS(chatHandler.Chat)))
	mux.Handle("GET /api/history", middleware.CorrelationID(enableCORS(chatHandler.History)))

	mux.Handle("GET /api/settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("POST /api/settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))
	mux.Handle("PUT /api/settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
	mux.HandleFunc("GET /{$}", health)
	mux.HandleFunc("/health", health)
	mux.HandleFunc("GET /api/health", health)

	return &App{
		Handler:  mux,
		Pipeline: pipeline,
		Tasks:    tasks,
		port:     cfg.ServerPort,
	}, nil
}

// seedSettings stores the env-provided api key on first boot so the runtime
// settings row is the single source of truth afterwards.
func seedSettings(cfg *config.Config, svc *settings.Service) {
	if cfg.GeminiAPIKey == "" {
		return
	}
	ctx := context.Background()
	set, err := svc.Get(ctx)
	if err != nil {
		slog.Warn("failed to fetch settings for seeding", "error", err)
		return
	}
	if set.GeminiAPIKey != "" {
		return
	}
	set.GeminiAPIKey = cfg.GeminiAPIKey
	if err := svc.Update(ctx, set); err != nil {
		slog.Warn("failed to seed gemini api key", "error", err)
		return
	}
	slog.Info("seeded gemini api key from environment")
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
