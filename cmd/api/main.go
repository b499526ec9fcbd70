package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/projtrack-notify/internal/application/dispatch"
	"github.com/projtrack-notify/internal/config"
	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/infrastructure/dynamo"
	"github.com/projtrack-notify/internal/infrastructure/fcm"
	jwtinfra "github.com/projtrack-notify/internal/infrastructure/jwt"
	"github.com/projtrack-notify/internal/infrastructure/memory"
	redisinfra "github.com/projtrack-notify/internal/infrastructure/redis"
	"github.com/projtrack-notify/internal/infrastructure/sns"
	transporthttp "github.com/projtrack-notify/internal/transport/http"
)

type notificationStore interface {
	transporthttp.NotificationRepository
	Create(ctx context.Context, in domain.NotificationInput) (*domain.Notification, error)
}

type tokenRegistry interface {
	transporthttp.PushTokenRepository
	TokensFor(ctx context.Context, userIDs []string) ([]domain.PushToken, error)
}

type studentRoster interface {
	ActiveStudentIDs(ctx context.Context) ([]string, error)
}

type stores struct {
	notifications notificationStore
	tokens        tokenRegistry
	roster        studentRoster
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "err", err)
		os.Exit(1)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("JWT provider not available", "err", err)
		os.Exit(1)
	}

	gateway, err := buildGateway(ctx, cfg)
	if err != nil {
		slog.Error("push gateway setup failed", "provider", cfg.Push.Provider, "err", err)
		os.Exit(1)
	}

	var live dispatch.LivePublisher
	if cfg.Redis.URL != "" {
		client, err := redisinfra.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Warn("live feed disabled", "err", err)
		} else {
			defer client.Close()
			live = redisinfra.NewPublisher(client)
		}
	}

	dispatcher := dispatch.New(dispatch.Deps{
		Store:       st.notifications,
		Tokens:      st.tokens,
		Roster:      st.roster,
		Gateway:     gateway,
		Live:        live,
		Timeout:     cfg.Push.Timeout,
		LiveTimeout: cfg.Redis.PublishTimeout,
		MaxInFlight: cfg.Push.MaxInFlight,
		MaxBacklog:  cfg.Push.MaxBacklog,
	})

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		NotificationRepo: st.notifications,
		PushTokenRepo:    st.tokens,
		Dispatcher:       dispatcher,
		JWTVerifier:      jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend, "push", cfg.Push.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		slog.Warn("push deliveries abandoned", "err", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if strings.EqualFold(cfg.AppEnv, "production") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func buildStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		slog.Warn("using in-memory store; data is lost on restart")
		return &stores{
			notifications: memory.NewNotificationStore(),
			tokens:        memory.NewPushTokenRegistry(),
			roster:        memory.NewStudentRoster(),
		}, nil
	case config.StoreBackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamodb client: %w", err)
		}
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return &stores{
			notifications: dynamo.NewNotificationRepo(client, cfg.DynamoTables.Notifications, cfg.DynamoTables.NotificationInbox),
			tokens:        dynamo.NewPushTokenRepo(client, cfg.DynamoTables.PushTokens),
			roster:        dynamo.NewStudentRepo(client, cfg.DynamoTables.Students),
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

// buildGateway returns a nil Gateway when push is disabled.
func buildGateway(ctx context.Context, cfg *config.Config) (dispatch.Gateway, error) {
	switch cfg.Push.Provider {
	case config.PushProviderNone, "":
		slog.Info("push delivery disabled")
		return nil, nil
	case config.PushProviderFCM:
		g, err := fcm.NewGateway(ctx, cfg.Push)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.PushProviderSNS:
		if cfg.Push.SNSPlatformApplication == "" {
			return nil, errors.New("SNS_PLATFORM_APPLICATION_ARN is required")
		}
		awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg, cfg.Push.SNSRegion)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return sns.NewGateway(sns.NewClient(awsCfg), cfg.Push.SNSPlatformApplication), nil
	}
	return nil, fmt.Errorf("unknown PUSH_PROVIDER %q", cfg.Push.Provider)
}
