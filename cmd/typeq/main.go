package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/ai"
	"github.com/typeq/typeq/internal/config"
	"github.com/typeq/typeq/internal/db"
	"github.com/typeq/typeq/internal/embedcache"
	"github.com/typeq/typeq/internal/filestore"
	"github.com/typeq/typeq/internal/handler"
	"github.com/typeq/typeq/internal/job"
	"github.com/typeq/typeq/internal/middleware"
	"github.com/typeq/typeq/internal/pkg/jwt"
	"github.com/typeq/typeq/internal/repo"
	"github.com/typeq/typeq/internal/schedule"
	"github.com/typeq/typeq/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "typeq",
		Short: "typeq suggestion server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run typeq server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	var tokenConfigPath string
	var clientID string
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint an api token for a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenConfigPath == "" {
				return fmt.Errorf("--config is required")
			}
			if clientID == "" {
				return fmt.Errorf("--client-id is required")
			}
			cfg, err := config.Load(tokenConfigPath)
			if err != nil {
				return err
			}
			token, err := jwt.GenerateToken(clientID, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokenConfigPath, "config", "", "path to config.json")
	tokenCmd.Flags().StringVar(&clientID, "client-id", "", "client identifier embedded in the token")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	chunkRepo := repo.NewChunkRepo(database)
	docRepo := repo.NewDocumentRepo(database)
	pendingRepo := repo.NewPendingRepo(database)
	cacheRepo := repo.NewEmbeddingCacheRepo(database)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	completer := ai.NewGenerator(provider, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Temperature)
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel)
	if len(cfg.AI.Fallbacks) > 0 {
		genEntries := []ai.GeneratorEntry{{Name: cfg.AI.Provider, Generator: completer}}
		embEntries := []ai.EmbedderEntry{{Name: cfg.AI.EmbedModel, Embedder: embedder}}
		for _, fb := range cfg.AI.Fallbacks {
			fbProvider, err := ai.NewProvider(fb.Provider, fb.Data)
			if err != nil {
				return fmt.Errorf("init fallback ai provider %s: %w", fb.Provider, err)
			}
			if fb.Model != "" {
				genEntries = append(genEntries, ai.GeneratorEntry{
					Name:      fb.Provider,
					Generator: ai.NewGenerator(fbProvider, fb.Model, cfg.AI.MaxTokens, cfg.AI.Temperature),
				})
			}
			if fb.EmbedModel != "" {
				embEntries = append(embEntries, ai.EmbedderEntry{
					Name:     fb.EmbedModel,
					Embedder: ai.NewEmbedder(fbProvider, fb.EmbedModel),
				})
			}
		}
		completer = ai.NewGroupGenerator(genEntries)
		embedder = ai.NewGroupEmbedder(embEntries)
	}
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.AI.CacheSize, time.Duration(cfg.AI.CacheTTLMinutes)*time.Minute)
	aiManager := ai.NewManager(completer, embedder, ai.ManagerConfig{
		Timeout:       cfg.AI.Timeout,
		MaxInputChars: cfg.AI.MaxInputChars,
		ContextChunks: cfg.Suggest.ContextChunks,
	})

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	indexService := service.NewIndexService(aiManager, chunkRepo, pendingRepo, cfg.Ingest.BatchSize, time.Duration(cfg.Ingest.TimeoutSeconds)*time.Second)
	documentService := service.NewDocumentService(indexService, docRepo, chunkRepo, pendingRepo, store)
	suggestService := service.NewSuggestService(aiManager, chunkRepo, cfg.Suggest)
	learnService := service.NewLearnService(aiManager, chunkRepo, docRepo, indexService, cfg.Suggest.DuplicateThreshold)

	deps := handler.RouterDeps{
		Suggest:        handler.NewSuggestHandler(suggestService, learnService),
		Documents:      handler.NewDocumentHandler(documentService),
		Health:         handler.NewHealthHandler(database),
		JWTSecret:      []byte(cfg.JWTSecret),
		SuggestRateGap: time.Duration(cfg.Suggest.RateGapMillis) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewIngestResumeJob(documentService, pendingRepo, cfg.Jobs.IngestResumeLimit), cfg.Jobs.IngestResumeSpec); err != nil {
		return fmt.Errorf("schedule ingest resume: %w", err)
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Jobs.CacheMaxAgeDays), cfg.Jobs.CacheCleanupSpec); err != nil {
		return fmt.Errorf("schedule cache cleanup: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scheduler.Start(ctx)

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	return nil
}
