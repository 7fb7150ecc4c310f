package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/malaysia-ai/concierge-server/internal/concierge/graph"
	"github.com/malaysia-ai/concierge-server/internal/concierge/images"
	conciergemodel "github.com/malaysia-ai/concierge-server/internal/concierge/model"
	"github.com/malaysia-ai/concierge-server/internal/concierge/vision"
	"github.com/malaysia-ai/concierge-server/internal/core"
	"github.com/malaysia-ai/concierge-server/internal/server/handlers"
	"github.com/malaysia-ai/concierge-server/internal/server/middlewares"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

const serverVersion = "2.0.0"

// Config holds HTTP listener settings.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    Config
	engine *gin.Engine
}

// New constructs the HTTP server with default middleware and routes.
func New(
	cfg Config,
	env core.Environment,
	concierge *graph.Concierge,
	imageClient *images.Client,
	analyzer *vision.Analyzer,
	respCfg conciergemodel.ResponseModelConfig,
	promptCfg conciergemodel.PersonaPromptConfig,
) *HttpServer {
	if env == core.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middlewares.RequestLogger(),
		middlewares.CORS(),
		middlewares.MetricsRecorder(),
	)

	chatHandler := handlers.NewChatHandler(concierge, analyzer, promptCfg)
	imageHandler := handlers.NewImageHandler(imageClient, analyzer)

	registerRoutes(engine, chatHandler, imageHandler, respCfg)

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
	}
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", server.Addr).Msg("concierge HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logx.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Engine exposes the underlying router, mainly for handler tests.
func (s *HttpServer) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(
	engine *gin.Engine,
	chatHandler *handlers.ChatHandler,
	imageHandler *handlers.ImageHandler,
	respCfg conciergemodel.ResponseModelConfig,
) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "🇲🇾 Malaysia Tourism AI Backend",
			"status":    "healthy",
			"version":   serverVersion,
			"endpoints": []string{"/health", "/chat", "/chat-stream"},
		})
	})
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"message":         "AI Chat Backend is running",
			"model_endpoint":  respCfg.Model,
			"backend_version": serverVersion,
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/chat", chatHandler.Chat)
	engine.POST("/chat-stream", chatHandler.ChatStream)
	engine.POST("/chat-with-image", chatHandler.ChatWithImage)

	engine.POST("/image-search", imageHandler.Search)
	engine.POST("/track-image-download", imageHandler.TrackDownload)
	engine.POST("/upload-image", imageHandler.Upload)
}
