package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digipin/internal/address"
	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/consent/poller"
	"digipin/internal/notify"
	"digipin/internal/platform/config"
	"digipin/internal/platform/httpserver"
	"digipin/internal/platform/logger"
	"digipin/internal/platform/metrics"
	"digipin/internal/platform/redis"
	"digipin/internal/session"
	"digipin/internal/session/handler"
)

// main wires the client's dependencies, performs the optional unattended
// login and serves the control API until interrupted.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("client stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Client, log *slog.Logger) error {
	m := metrics.New()

	var locks address.LockStore = address.NewMemoryLockStore()
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		locks = address.NewRedisLockStore(rdb)
		log.Info("identity locks stored in redis")
	}

	client := backend.New(cfg.BackendURL,
		backend.WithLogger(log),
		backend.WithMetrics(m),
		backend.WithTimeout(cfg.HTTPTimeout),
		backend.WithRetries(cfg.HTTPRetries),
	)
	center := notify.NewCenter(
		notify.WithTTL(cfg.NotifyTTL),
		notify.WithSink(notify.NewLogSink(log)),
		notify.WithMetrics(m),
	)
	ctrl := session.New(client,
		session.WithContext(ctx),
		session.WithNotifier(center),
		session.WithLockStore(locks),
		session.WithGrantMinutes(cfg.GrantMinutes),
		session.WithTrackerOptions(expiry.WithInterval(cfg.ExpiryInterval)),
		session.WithPollerOptions(poller.WithInterval(cfg.PollInterval)),
		session.WithLogger(log),
		session.WithMetrics(m),
	)
	defer ctrl.Logout(context.Background())

	if cfg.Email != "" {
		if _, err := ctrl.Login(ctx, backend.Credentials{Email: cfg.Email, Password: cfg.Password}); err != nil {
			log.Warn("unattended login failed", "email", cfg.Email, "error", err)
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		Handler: handler.New(ctrl, log),
		Logger:  log,
		Token:   cfg.ControlToken,
		Metrics: m.Handler(),
	})
	return httpserver.Run(ctx, httpserver.New(cfg.ControlAddr, router), 10*time.Second, log)
}
