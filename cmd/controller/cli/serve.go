package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/health"
	"llm-controller/cmd/controller/ratelimit"
	"llm-controller/cmd/controller/router"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/session"
	"llm-controller/cmd/internal/logger"
	"llm-controller/config"
)

const shutdownTimeout = 10 * time.Second

var serveOpts struct {
	configDir string
	host      string
	port      int
	backend   string
}

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP controller",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveOpts.configDir, "config", "", "Directory containing config.yaml and .env (default: nearest parent with config.yaml)")
	cmd.Flags().StringVar(&serveOpts.host, "host", "", "Bind host (overrides server.host)")
	cmd.Flags().IntVar(&serveOpts.port, "port", 0, "Bind port (overrides server.port)")
	cmd.Flags().StringVar(&serveOpts.backend, "backend", "", "Backend base URL (overrides backend.base_url)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging.Level)
	for _, warning := range cfg.Warnings {
		logger.Log.Warn(warning)
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 기동 시 한 번 확인해 두면 첫 요청이 probe 를 기다리지 않는다.
	healthy := app.monitor.Refresh(ctx)
	logger.InfoWithFields("starting llm controller", logger.Fields{
		"addr":            cfg.Server.Addr(),
		"backend":         cfg.Backend.BaseURL,
		"flavor":          cfg.Backend.Flavor,
		"backend_healthy": healthy,
		"rate_limit":      cfg.RateLimit.RequestsPerMinute,
		"rate_driver":     cfg.RateLimit.Driver,
		"version":         Version,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", server.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("received shutdown signal, shutting down controller...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Log.Info("controller stopped")
	return nil
}

func loadServeConfig() (config.AppConfig, error) {
	baseDir := serveOpts.configDir
	if baseDir == "" {
		baseDir = config.GetBasePath()
	}
	cfg, err := config.Load(baseDir)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if serveOpts.host != "" {
		cfg.Server.Host = serveOpts.host
	}
	if serveOpts.port != 0 {
		if serveOpts.port < 0 || serveOpts.port > 65535 {
			return cfg, fmt.Errorf("--port: out of range %d", serveOpts.port)
		}
		cfg.Server.Port = serveOpts.port
	}
	if serveOpts.backend != "" {
		cfg.Backend.BaseURL = serveOpts.backend
	}
	return cfg, nil
}

// application 은 serve 가 한 번 조립하는 구성요소 묶음이다.
type application struct {
	handler http.Handler
	monitor *health.Monitor
	redis   *redis.Client
}

func newApplication(cfg config.AppConfig) (*application, error) {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	backend := backendclient.New(backendclient.Config{
		Flavor:          cfg.Backend.Flavor,
		BaseURL:         cfg.Backend.BaseURL,
		ShortTimeout:    cfg.Backend.HealthTimeout.Std(),
		GenerateTimeout: cfg.Backend.GenerateTimeout.Std(),
		StreamTimeout:   cfg.Backend.StreamTimeout.Std(),
		PullTimeout:     cfg.Backend.PullTimeout.Std(),
	})
	monitor := health.NewMonitor(backend, cfg.Health.Interval.Std(), cfg.Backend.HealthTimeout.Std())

	app := &application{monitor: monitor}

	var limiterOpts []ratelimit.Option
	if cfg.RateLimit.Driver == config.RateLimitDriverRedis {
		app.redis = redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(pingCtx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RateLimit.RedisAddr, err)
		}
		limiterOpts = append(limiterOpts, ratelimit.WithRedisClient(app.redis))
	}
	limiter, err := ratelimit.New(ratelimit.Driver(cfg.RateLimit.Driver), cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Window.Std(), limiterOpts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	store := session.NewStore()
	counters := services.NewCounters()
	chat := services.NewChatService(backend, monitor, store, counters, cfg.Backend.DefaultModel)

	engine, err := router.New(router.Dependencies{
		Chat:           chat,
		Models:         services.NewModelService(backend, chat),
		Status:         services.NewStatusService(monitor, limiter, store, counters, Version),
		Sessions:       services.NewSessionService(store),
		Limiter:        limiter,
		Counters:       counters,
		TrustedProxies: cfg.Server.TrustedProxies,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.handler = router.WithCORS(engine, cfg.CORS.AllowedOrigins)
	return app, nil
}

func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Log.Warnf("close redis: %v", err)
		}
	}
}
