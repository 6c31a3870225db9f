package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/automation"
	"github.com/massaflow/practice-api/internal/config"
	"github.com/massaflow/practice-api/internal/delivery"
	"github.com/massaflow/practice-api/internal/handler"
	appointmentHandler "github.com/massaflow/practice-api/internal/handler/appointment"
	automationHandler "github.com/massaflow/practice-api/internal/handler/automation"
	clientHandler "github.com/massaflow/practice-api/internal/handler/client"
	intelligenceHandler "github.com/massaflow/practice-api/internal/handler/intelligence"
	taskHandler "github.com/massaflow/practice-api/internal/handler/task"
	userHandler "github.com/massaflow/practice-api/internal/handler/user"
	"github.com/massaflow/practice-api/internal/intelligence"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/internal/repository/memory"
	"github.com/massaflow/practice-api/internal/repository/postgres"
	"github.com/massaflow/practice-api/internal/router"
	appointmentService "github.com/massaflow/practice-api/internal/service/appointment"
	clientService "github.com/massaflow/practice-api/internal/service/client"
	taskService "github.com/massaflow/practice-api/internal/service/task"
	userService "github.com/massaflow/practice-api/internal/service/user"
	"github.com/massaflow/practice-api/internal/template"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/messaging/redis"
	"github.com/massaflow/practice-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := newLogger(cfg.Log)
	m := metrics.New("massaflow")
	clock := repository.SystemClock{}

	store, cleanup, err := newStore(cfg, clock, log)
	if err != nil {
		log.Fatal(err, "failed to initialize storage")
	}
	defer cleanup()

	// Redis is optional; without it analytics events are dropped.
	var tracker analytics.Sink = analytics.NopSink{}
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
	}

	templates := template.NewStore(cfg.Templates.Dir, log)
	sink := newDeliverySink(cfg, log)

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

	appointmentSvc := appointmentService.NewService(store, intelSvc, clock, tracker, log)
	clientSvc := clientService.NewService(store, clock)
	userSvc := userService.NewService(store, clock)
	taskSvc := taskService.NewService(store)

	base := handler.NewHandler(templates.Degraded)
	r := router.New(router.Config{
		RateLimit: rate.Limit(cfg.Server.RateLimit),
		RateBurst: cfg.Server.RateBurst,
	}, m, base,
		userHandler.NewHandler(userSvc),
		clientHandler.NewHandler(clientSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		taskHandler.NewHandler(taskSvc),
		intelligenceHandler.NewHandler(intelSvc, cfg.Intelligence.DashboardCacheTTL),
		automationHandler.NewHandler(orchestrator, tracker),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}

func newLogger(cfg config.LogConfig) *logger.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Pretty,
	})
}

// newStore selects the repository backend. The memory backend exists for
// local development and demos; postgres is the production driver.
func newStore(cfg *config.Config, clock repository.Clock, log *logger.Logger) (*repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(db), func() { db.Close() }, nil
	case "", "memory":
		ms := memory.NewStore()
		if cfg.Database.Seed {
			if err := memory.Seed(context.Background(), ms, clock.Now()); err != nil {
				return nil, nil, err
			}
			log.Info("demo fixtures loaded")
		}
		return ms.Repositories(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func newDeliverySink(cfg *config.Config, log *logger.Logger) delivery.Sink {
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
	return delivery.NewBreakerSink(sink, cfg.Automation.BreakerMaxFailures, cfg.Automation.BreakerCooldown)
}
