package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bizdesk/platform/pkg/clientip"
	"github.com/bizdesk/platform/pkg/config"
	"github.com/bizdesk/platform/pkg/environment"
	"github.com/bizdesk/platform/pkg/hostrouter"
	"github.com/bizdesk/platform/pkg/httpserver"
	"github.com/bizdesk/platform/pkg/logger"
	"github.com/bizdesk/platform/pkg/redis"
	"github.com/bizdesk/platform/pkg/requestid"
	"github.com/bizdesk/platform/pkg/tenant"
	"github.com/bizdesk/platform/svc/tenantstore"
)

type appConfig struct {
	Name string `env:"APP_NAME" envDefault:"platform"`
	Env  string `env:"APP_ENV" envDefault:"development"`
}

type cacheConfig struct {
	Backend string        `env:"TENANT_CACHE" envDefault:"memory"`
	TTL     time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1m"`
}

// app holds the wired dependencies shared by the commands.
type app struct {
	name     string
	env      environment.Environment
	log      *slog.Logger
	store    *tenantstore.Opened
	resolver *tenant.Resolver
	registry *prometheus.Registry
	observer tenant.Observer
	ipHeads  []string
	checks   []httpserver.Check
	closers  []func() error
}

func newLogger() (*slog.Logger, appConfig, error) {
	appCfg, err := config.Load[appConfig]()
	if err != nil {
		return nil, appCfg, err
	}
	logCfg, err := config.Load[logger.Config]()
	if err != nil {
		return nil, appCfg, err
	}

	log := logger.New(
		logger.WithOutput(os.Stderr),
		logger.WithEnvironment(environment.Parse(appCfg.Env), appCfg.Name),
		logger.WithLevelName(logCfg.Level),
		logger.WithFormat(logger.Format(logCfg.Format)),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			tenant.LoggerExtractor(),
			hostrouter.LoggerExtractor(),
		),
	)
	return log, appCfg, nil
}

// loadApp reads configuration and connects the tenant store and cache.
func loadApp(ctx context.Context) (*app, error) {
	log, appCfg, err := newLogger()
	if err != nil {
		return nil, err
	}

	hostCfg, err := config.Load[tenant.HostConfig]()
	if err != nil {
		return nil, err
	}
	if hostCfg, err = hostCfg.WithFile(); err != nil {
		return nil, err
	}
	storeCfg, err := config.Load[tenantstore.Config]()
	if err != nil {
		return nil, err
	}
	cacheCfg, err := config.Load[cacheConfig]()
	if err != nil {
		return nil, err
	}
	ipCfg, err := config.Load[clientip.Config]()
	if err != nil {
		return nil, err
	}

	a := &app{
		name:     appCfg.Name,
		env:      environment.Parse(appCfg.Env),
		log:      log,
		registry: prometheus.NewRegistry(),
		ipHeads:  ipCfg.Headers,
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := tenantstore.Open(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s tenant store: %w", storeCfg.Backend, err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	a.checks = append(a.checks, httpserver.Check{Name: "tenant_store", Fn: store.Healthcheck})

	cache, err := a.openCache(ctx, cacheCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	observer, err := tenant.NewPrometheusObserver(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.observer = observer

	a.resolver = tenant.NewResolver(
		tenant.NewClassifier(hostCfg),
		store.Store,
		tenant.WithCache(cache, cacheCfg.TTL),
		tenant.WithResolverLogger(log.With(logger.Component("tenant"))),
	)

	log.InfoContext(ctx, "tenant resolution configured",
		slog.String("store", string(storeCfg.Backend)),
		slog.String("cache", cacheCfg.Backend),
		slog.Any("platform_domains", hostCfg.PlatformDomains),
	)
	return a, nil
}

func (a *app) openCache(ctx context.Context, cfg cacheConfig) (tenant.Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return tenant.NewMemoryCache(cfg.TTL), nil
	case "redis":
		redisCfg, err := config.Load[redis.Config]()
		if err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.checks = append(a.checks, httpserver.Check{Name: "tenant_cache", Fn: redis.Healthcheck(client)})
		return tenant.NewRedisCache(client, redisCfg.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown TENANT_CACHE %q: want none, memory or redis", cfg.Backend)
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Error("shutdown", logger.Error(err))
	}
}
