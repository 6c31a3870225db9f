package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/automation"
	"github.com/massaflow/practice-api/internal/config"
	"github.com/massaflow/practice-api/internal/delivery"
	"github.com/massaflow/practice-api/internal/intelligence"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/internal/repository/memory"
	"github.com/massaflow/practice-api/internal/repository/postgres"
	"github.com/massaflow/practice-api/internal/template"
	"github.com/massaflow/practice-api/internal/worker"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/messaging"
	"github.com/massaflow/practice-api/pkg/messaging/redis"
	"github.com/massaflow/practice-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Log.Pretty,
	})

	m := metrics.New("massaflow_worker")
	clock := repository.SystemClock{}

	var store *repository.Store
	var cleanup func()
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal(err, "failed to connect to database")
		}
		store = postgres.NewStore(db)
		cleanup = func() { db.Close() }
	case "", "memory":
		ms := memory.NewStore()
		if cfg.Database.Seed {
			if err := memory.Seed(context.Background(), ms, clock.Now()); err != nil {
				log.Fatal(err, "failed to seed demo fixtures")
			}
		}
		store = ms.Repositories()
		cleanup = func() {}
	default:
		log.Fatal(fmt.Errorf("unknown database driver %q", cfg.Database.Driver), "bad configuration")
	}
	defer cleanup()

	var tracker analytics.Sink = analytics.NopSink{}
	var locker messaging.Locker
	if cfg.Redis.URL != "" {
		broker, err := redis.NewBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()
		tracker = analytics.NewBrokerSink(broker, log)
		locker = broker
	}

	templates := template.NewStore(cfg.Templates.Dir, log)

	var sink delivery.Sink
	if cfg.SMTP.Enabled {
		sink = delivery.NewSMTPSink(delivery.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	} else {
		sink = delivery.NewLogSink(log)
	}
	sink = delivery.NewThrottledSink(sink, cfg.Automation.SendsPerSecond, cfg.Automation.SendBurst)
	sink = delivery.NewBreakerSink(sink, cfg.Automation.BreakerMaxFailures, cfg.Automation.BreakerCooldown)

	intelSvc := intelligence.NewService(store, clock, intelligence.Config{
		Risk: intelligence.RiskConfig{
			CancellationThreshold: cfg.Intelligence.CancellationThreshold,
			MinAppointments:       cfg.Intelligence.MinAppointments,
		},
		LowAttendanceThreshold:            cfg.Intelligence.LowAttendanceThreshold,
		MinAppointmentsForAttendanceAlert: cfg.Intelligence.MinAppointmentsForAttendanceAlert,
		DedupeTasks:                       cfg.Intelligence.DedupeTasks,
	}, log, tracker, m)

	automationCfg := automation.Config{
		ReminderSuppressionWindow: cfg.Automation.ReminderSuppressionWindow,
		DeliveryTimeout:           cfg.Automation.DeliveryTimeout,
		CycleTimeout:              cfg.Automation.CycleTimeout,
		LinkBaseURL:               cfg.Automation.LinkBaseURL,
	}
	evaluator := automation.NewEvaluator(store, templates, sink, tracker, log, m, automationCfg)
	orchestrator := automation.NewOrchestrator(store, evaluator, intelSvc, clock, tracker, log, m, automationCfg)

	runner := worker.NewRunner(orchestrator, locker, cfg.Automation.Interval, cfg.Automation.LockTTL, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Expose metrics and liveness on a side port.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsSrv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port+1), Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server failed")
		}
	}()

	runner.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
