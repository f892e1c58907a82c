// README: Entry point; loads config, wires catalog, quote engine and booking store, serves the JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"carrental/internal/config"
	httptransport "carrental/internal/http"
	"carrental/internal/infra"
	"carrental/internal/logger"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("rental-api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	var dbPool *pgxpool.Pool
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		dbPool = pool
	}

	cat, err := loadCatalog(ctx, cfg, dbPool, zl)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	tiers, err := config.ParseTiers(cfg.Quote.Tiers)
	if err != nil {
		return err
	}
	quoteTiers := make([]quote.Tier, len(tiers))
	for i, t := range tiers {
		quoteTiers[i] = quote.Tier{MinDays: t.MinDays, Percent: t.Percent}
	}
	engine, err := quote.NewEngine(cat, quote.Config{
		Tiers:         quoteTiers,
		ChatThreshold: cfg.Quote.ChatThreshold,
		Location:      loc,
	})
	if err != nil {
		return err
	}

	var store booking.Store
	if cfg.Redis.Addr != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		store = booking.NewRedisStore(client, cfg.Booking.SessionTTL)
		zl.Info("booking store: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		mem := booking.NewMemoryStore(cfg.Booking.SessionTTL)
		store = mem
		go func() {
			if err := booking.RunSweeper(ctx, cfg.Booking.SweepSpec, mem, zl); err != nil {
				zl.Error("booking sweeper", zap.Error(err))
			}
		}()
		zl.Info("booking store: memory", zap.Duration("ttl", cfg.Booking.SessionTTL))
	}

	bookingSvc := booking.NewService(store, engine, cat, booking.Options{
		SubmitDelay:    cfg.Booking.SubmitDelay,
		ConfirmDelay:   cfg.Booking.ConfirmDelay,
		AllowZeroDay:   cfg.Booking.AllowZeroDay,
		BranchMode:     cfg.Quote.BranchMode,
		ChatChannelURL: cfg.Quote.ChatChannelURL,
	}, zl.Named("booking"))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Catalog:           cat,
		Quote:             engine,
		Booking:           bookingSvc,
		Log:               zl.Named("http"),
		BranchMode:        cfg.Quote.BranchMode,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		RequestsPerMinute: cfg.Limits.RequestsPerMinute,
		Burst:             cfg.Limits.Burst,
		SessionMaxAge:     int(cfg.Booking.SessionTTL.Seconds()),
		SecureCookies:     cfg.IsProduction(),
	})

	return httptransport.NewServer(cfg.HTTP.Addr, router, zl).Run(ctx)
}

// loadCatalog prefers Postgres (seeding the built-in fixture into an empty
// database), then a YAML file, then the embedded fixture.
func loadCatalog(ctx context.Context, cfg config.Config, db *pgxpool.Pool, zl *zap.Logger) (*catalog.Catalog, error) {
	var (
		fx     catalog.Fixture
		err    error
		source string
	)
	switch {
	case db != nil:
		source = "postgres"
		fx, err = loadOrSeed(ctx, catalog.NewStore(db), zl)
	case cfg.Catalog.File != "":
		source = cfg.Catalog.File
		fx, err = catalog.LoadFixtureFile(cfg.Catalog.File)
	default:
		source = "embedded"
		fx, err = catalog.DefaultFixture()
	}
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(fx)
	if err != nil {
		return nil, err
	}
	zl.Info("catalog loaded",
		zap.String("source", source),
		zap.Int("vehicles", len(fx.Vehicles)),
		zap.Int("addons", len(fx.Addons)),
		zap.Int("branches", len(fx.Branches)),
	)
	return cat, nil
}

type catalogStore interface {
	Load(ctx context.Context) (catalog.Fixture, error)
	Seed(ctx context.Context, fx catalog.Fixture) error
}

// loadOrSeed seeds the embedded fixture into an empty store.
func loadOrSeed(ctx context.Context, store catalogStore, zl *zap.Logger) (catalog.Fixture, error) {
	fx, err := store.Load(ctx)
	if err != nil || len(fx.Vehicles) > 0 {
		return fx, err
	}
	if fx, err = catalog.DefaultFixture(); err != nil {
		return catalog.Fixture{}, err
	}
	if err := store.Seed(ctx, fx); err != nil {
		return catalog.Fixture{}, fmt.Errorf("seed catalog: %w", err)
	}
	zl.Info("seeded catalog into postgres", zap.Int("vehicles", len(fx.Vehicles)))
	return fx, nil
}
