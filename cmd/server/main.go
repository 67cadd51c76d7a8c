package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	admissionhandler "admissio/internal/admission/handler"
	admissionmetrics "admissio/internal/admission/metrics"
	admissionservice "admissio/internal/admission/service"
	admissionstore "admissio/internal/admission/store"
	"admissio/internal/audit"
	authhandler "admissio/internal/auth/handler"
	"admissio/internal/auth/lockout"
	authmetrics "admissio/internal/auth/metrics"
	authservice "admissio/internal/auth/service"
	authstore "admissio/internal/auth/store"
	"admissio/internal/course"
	coursehandler "admissio/internal/course/handler"
	coursestore "admissio/internal/course/store"
	"admissio/internal/jwttoken"
	"admissio/internal/platform/config"
	"admissio/internal/platform/httpserver"
	"admissio/internal/platform/logger"
	platformmetrics "admissio/internal/platform/metrics"
	"admissio/internal/platform/middleware"
	platformredis "admissio/internal/platform/redis"
	"admissio/internal/policy"
	"admissio/internal/records"
	recordshandler "admissio/internal/records/handler"
	recordsstore "admissio/internal/records/store"
	"admissio/migrations"
	"admissio/pkg/platform/httputil"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns the process lifecycle. Business rules
// live in the internal service packages.
func main() {
	log := logger.New()
	if err := run(config.FromEnv(), log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("using postgres stores")
	} else {
		log.Info("no DATABASE_URL set, using in-memory stores")
	}

	var (
		credentialStore  authservice.CredentialStore
		courseStore      course.Store
		applicationStore admissionservice.Store
		recordStore      records.Store
		auditStore       audit.Store
	)
	if db != nil {
		credentialStore = authstore.NewPostgres(db)
		courseStore = coursestore.NewPostgres(db)
		applicationStore = admissionstore.NewPostgres(db)
		recordStore = recordsstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		credentialStore = authstore.NewInMemory()
		courseStore = coursestore.NewInMemory()
		applicationStore = admissionstore.NewInMemory()
		recordStore = recordsstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
	}

	var lockoutStore authservice.LockoutStore = lockout.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		lockoutStore = lockout.NewRedisStore(redisClient.Client)
		log.Info("login lockout backed by redis")
	}

	publisher := audit.NewPublisher(256, log)
	var sink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit events mirrored to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	worker := audit.NewWorker(auditStore, sink, publisher.Inbox(), log)

	tokens := jwttoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TokenTTL)

	authSvc := authservice.New(credentialStore, lockoutStore, tokens,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithAuditPublisher(publisher),
		authservice.WithBcryptCost(cfg.Auth.BcryptCost),
		authservice.WithLockout(cfg.Auth.LockoutThreshold, cfg.Auth.LockoutWindow),
	)
	courseSvc := course.NewService(courseStore,
		course.WithLogger(log),
		course.WithDefaultDocuments(cfg.Course.DefaultRequiredDocuments),
	)
	admissionSvc := admissionservice.New(applicationStore, courseSvc,
		admissionservice.WithLogger(log),
		admissionservice.WithMetrics(admissionmetrics.New()),
		admissionservice.WithAuditPublisher(publisher),
	)
	recordsSvc := records.NewService(recordStore, records.WithLogger(log))

	authH := authhandler.New(authSvc, log)
	courseH := coursehandler.New(courseSvc, log)
	admissionH := admissionhandler.New(admissionSvc, cfg.Auth.GatewaySecret, log)
	recordsH := recordshandler.New(recordsSvc, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(platformmetrics.New()))

	router.Get("/healthz", handleHealth(db, redisClient))
	router.Handle("/metrics", promhttp.Handler())

	authH.RegisterPublic(router)
	admissionH.RegisterGateway(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		r.Use(policy.Middleware())
		authH.RegisterProtected(r)
		courseH.Register(r)
		admissionH.Register(r)
		recordsH.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func handleHealth(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "redis unreachable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
