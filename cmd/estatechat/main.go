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

	"github.com/wzgate/estatechat/internal/ai"
	"github.com/wzgate/estatechat/internal/chat"
	"github.com/wzgate/estatechat/internal/chat/ragbot"
	"github.com/wzgate/estatechat/internal/chat/unitsbot"
	"github.com/wzgate/estatechat/internal/config"
	"github.com/wzgate/estatechat/internal/db"
	"github.com/wzgate/estatechat/internal/docsource"
	"github.com/wzgate/estatechat/internal/embedcache"
	"github.com/wzgate/estatechat/internal/handler"
	"github.com/wzgate/estatechat/internal/ingest"
	"github.com/wzgate/estatechat/internal/job"
	"github.com/wzgate/estatechat/internal/middleware"
	"github.com/wzgate/estatechat/internal/repo"
	"github.com/wzgate/estatechat/internal/schedule"
	"github.com/wzgate/estatechat/internal/service"
	"github.com/wzgate/estatechat/internal/vecindex"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "estatechat",
		Short: "estatechat real estate assistant server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run estatechat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg, database)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	var rebuildSource string
	rebuildCmd := &cobra.Command{
		Use:   "rebuild",
		Short: "rebuild the vector index from the configured source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup(configPath)
			if err != nil {
				return err
			}
			defer database.Close()
			return runRebuild(cfg, database, rebuildSource)
		},
	}
	rebuildCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rebuildCmd.Flags().StringVar(&rebuildSource, "dir", "", "directory to ingest, defaults to index.source_dir")
	rootCmd.AddCommand(runCmd, rebuildCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
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
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, database, nil
}

type wiring struct {
	chatService  *service.ChatService
	indexService *service.IndexService
	convRepo     *repo.ConversationRepo
	embedRepo    *repo.EmbeddingCacheRepo
}

func buildServices(cfg *config.Config, database *sql.DB) (*wiring, error) {
	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	timeout := time.Duration(cfg.AI.Timeout) * time.Second

	chatGen := ai.WithCallTimeout(ai.NewGenerator(provider, cfg.AI.ChatModel), timeout)
	if fb := cfg.AI.Fallback; fb != nil {
		fbProvider, err := ai.NewProvider(fb.Provider, fb.Data)
		if err != nil {
			return nil, fmt.Errorf("init fallback ai provider: %w", err)
		}
		fbModel := fb.ChatModel
		if fbModel == "" {
			fbModel = cfg.AI.ChatModel
		}
		chatGen = ai.NewGroupGenerator([]ai.GeneratorEntry{
			{Name: cfg.AI.Provider, Generator: chatGen},
			{Name: fb.Provider, Generator: ai.WithCallTimeout(ai.NewGenerator(fbProvider, fbModel), timeout)},
		})
	}
	classifyGen := ai.WithCallTimeout(ai.NewGenerator(provider, cfg.AI.ClassifyModel), timeout)
	refineGen := ai.WithCallTimeout(ai.NewGenerator(provider, cfg.AI.RefineModel), timeout)

	embedRepo := repo.NewEmbeddingCacheRepo(database)
	embedder := ai.WithEmbedTimeout(ai.NewEmbedder(provider, cfg.AI.EmbedModel), timeout)
	embedder = embedcache.WrapDB(embedder, embedRepo)
	embedder = embedcache.WrapLRU(embedder, cfg.EmbedCache.LRUSize,
		time.Duration(cfg.EmbedCache.LRUTTLHours)*time.Hour)

	chunkRepo := repo.NewChunkRepo(database)
	index := vecindex.New(chunkRepo, embedder)
	chunker := ingest.NewChunker(embedder, cfg.Index.ChunkTargetWords, cfg.Index.MinChunkSize, cfg.Index.BreakpointThreshold)
	indexService := service.NewIndexService(index, chunker, cfg.Index.IngestWorkers)

	convRepo := repo.NewConversationRepo(database)
	classifier := chat.NewClassifier(classifyGen)
	rag := ragbot.New(chatGen, refineGen, index, cfg.Index.TopK)
	units := unitsbot.New(chatGen, classifyGen)
	chatService := service.NewChatService(convRepo, classifier, rag, units)

	return &wiring{
		chatService:  chatService,
		indexService: indexService,
		convRepo:     convRepo,
		embedRepo:    embedRepo,
	}, nil
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("source_dir", cfg.Index.SourceDir),
	)

	w, err := buildServices(cfg, database)
	if err != nil {
		return err
	}
	if err := w.indexService.Bootstrap(context.Background(), cfg.Index.SourceDir); err != nil {
		return fmt.Errorf("bootstrap index: %w", err)
	}
	defer w.indexService.Close()

	deps := handler.RouterDeps{
		Chat:            handler.NewChatHandler(w.chatService),
		Index:           handler.NewIndexHandler(w.indexService),
		APIKey:          cfg.APIKey,
		RateLimitWindow: time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewConversationRetentionJob(w.convRepo, cfg.Retention.ConversationDays), "0 4 * * *"); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(w.embedRepo, cfg.EmbedCache.DBTTLDays), "30 4 * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

// runRebuild rebuilds the index from a local directory without starting the
// HTTP server.
func runRebuild(cfg *config.Config, database *sql.DB, dir string) error {
	w, err := buildServices(cfg, database)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Index.SourceDir
	}
	src, err := docsource.NewSource("local", map[string]interface{}{"dir": dir})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := w.indexService.Rebuild(ctx, src); err != nil {
		return err
	}
	files, _, chunks := w.indexService.Info()
	logutil.GetLogger(ctx).Info("rebuild complete", zap.Int("chunks", chunks), zap.Int("sources", files))
	return nil
}
