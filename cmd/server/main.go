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

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"party/internal/party/events"
	partymetrics "party/internal/party/metrics"
	"party/internal/party/outbox"
	"party/internal/party/service"
	"party/internal/party/store"
	"party/internal/platform/authtoken"
	"party/internal/platform/config"
	"party/internal/platform/httpserver"
	"party/internal/platform/kafka"
	"party/internal/platform/logger"
	"party/internal/platform/ratelimit"
	"party/internal/platform/redis"
	"party/internal/platform/tracing"
	"party/pkg/platform/circuit"
)

// main wires dependencies from the environment and runs the HTTP server and,
// when Kafka is configured, the outbox relay until SIGINT or SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("party server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	d, cleanup, err := buildDeps(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	router := newRouter(cfg, log, reg, d)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting party service", "addr", cfg.Addr,
			"postgres", cfg.UsePostgres(),
			"redis", cfg.UseRedis(),
			"kafka", cfg.UseKafka(),
			"auth", cfg.AuthEnabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if d.relay != nil {
		g.Go(func() error {
			if err := d.relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox relay: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down party service")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// deps holds the wired collaborators the router and background workers use.
type deps struct {
	service  *service.Service
	store    pinger
	limiter  ratelimit.Limiter
	verifier *authtoken.Service
	relay    *outbox.Relay
}

type pinger interface {
	Ping(ctx context.Context) error
}

func buildDeps(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer) (*deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*deps, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	d := &deps{}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(partymetrics.New(reg)),
	}

	if cfg.UsePostgres() {
		db, err := openPostgres(ctx, cfg.Database)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = db.Close() })

		pgStore := store.NewPostgres(db)
		pgOutbox := outbox.NewPostgres(db)
		d.store = pgStore
		opts = append(opts,
			service.WithTx(newPartyPostgresTx(db, cfg.Database.TxTimeout)),
			service.WithEventPublisher(pgOutbox),
		)
		d.service = service.New(pgStore, opts...)

		if cfg.UseKafka() {
			producer, err := kafka.NewProducer(cfg.Kafka, log)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, producer.Close)
			if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions); err != nil {
				return fail(err)
			}
			d.relay = outbox.NewRelay(pgOutbox, producer, log, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize)
		}
	} else {
		if cfg.UseKafka() {
			log.Warn("KAFKA_BROKERS ignored: the outbox relay needs DATABASE_URL")
		}
		memStore := store.NewInMemory()
		d.store = memStore
		opts = append(opts, service.WithEventPublisher(events.NewLogPublisher(log)))
		d.service = service.New(memStore, opts...)
	}

	local := ratelimit.NewLocalLimiter(cfg.RateLimit.PerMinute)
	d.limiter = local
	if cfg.UseRedis() {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = client.Close() })
		primary := ratelimit.NewRedisLimiter(client, cfg.RateLimit.PerMinute, time.Minute)
		d.limiter = ratelimit.NewFallbackLimiter(primary, local, circuit.New("ratelimit-redis"), log)
	}

	if cfg.AuthEnabled() {
		d.verifier = authtoken.NewService(cfg.Auth.SigningKey, cfg.Auth.Issuer)
	}

	return d, cleanup, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
