package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gompdf/claimpacket/internal/cache"
	"github.com/gompdf/claimpacket/internal/config"
	"github.com/gompdf/claimpacket/internal/res"
	"github.com/gompdf/claimpacket/internal/store/pgstore"
	"github.com/gompdf/claimpacket/internal/store/sqlstore"
	"github.com/gompdf/claimpacket/pkg/api"
	"github.com/gompdf/claimpacket/pkg/claim"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// app is everything a command needs, plus the cleanup to run on exit
type app struct {
	generator *api.Generator
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	records, err := openRecords(ctx, cfg.Store, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	c, err := openCache(ctx, cfg.Cache, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	loader := res.NewLoader(loaderOptions(cfg, c, logger))
	options, err := generatorOptions(cfg.Packet, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.generator = api.NewWithOptions(claim.Combine(records, loader), options)
	return a, nil
}

func openRecords(ctx context.Context, conf config.StoreConf, logger *slog.Logger, a *app) (claim.RecordStore, error) {
	switch conf.Driver {
	case "postgres":
		st, err := pgstore.Open(ctx, pgstore.Conf{DSN: conf.DSN, MaxConns: conf.MaxConns}, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	case "sqlite", "mysql":
		st, err := sqlstore.Open(ctx, conf.Driver, conf.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { st.Close() })
		if conf.Migrate && conf.Driver == "sqlite" {
			if err := st.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		logger.Info("claim store opened", "driver", conf.Driver)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.Driver)
	}
}

func openCache(ctx context.Context, conf config.CacheConf, logger *slog.Logger, a *app) (cache.Cache, error) {
	switch conf.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, conf.Redis, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { rc.Close() })
		return rc, nil
	case "memory":
		return cache.NewMemoryCache(conf.TTL, 2*conf.TTL), nil
	default:
		return cache.Nop{}, nil
	}
}

func loaderOptions(cfg *config.Config, c cache.Cache, logger *slog.Logger) res.Options {
	opts := res.DefaultOptions()
	opts.BaseURL = cfg.Storage.BaseURL
	opts.Bucket = cfg.Storage.Bucket
	if cfg.Storage.Dir != "" {
		opts.SearchPaths = []string{cfg.Storage.Dir}
	}
	opts.Timeout = cfg.Storage.Timeout
	opts.Retries = cfg.Storage.Retries
	opts.MaxBytes = cfg.Storage.MaxBytes
	opts.RatePerSecond = cfg.Storage.RatePerSecond
	opts.Burst = cfg.Storage.Burst
	opts.AllowedHosts = cfg.Storage.AllowedHosts
	opts.CacheTTL = cfg.Cache.TTL
	opts.Cache = c
	opts.Logger = logger
	return opts
}

func generatorOptions(conf config.PacketConf, logger *slog.Logger) (api.Options, error) {
	opts := api.DefaultOptions()
	var pageSize api.Option
	switch strings.ToLower(conf.PageSize) {
	case "a4":
		pageSize = api.WithPageSizeA4()
	case "legal":
		pageSize = api.WithPageSizeLegal()
	case "letter", "":
		pageSize = api.WithPageSizeLetter()
	default:
		return opts, fmt.Errorf("unknown page size %q", conf.PageSize)
	}

	for _, opt := range []api.Option{
		pageSize,
		api.WithWrapMode(api.WrapMode(conf.WrapMode)),
		api.WithPrefetchWindow(conf.PrefetchWindow),
		api.WithFetchRetries(conf.FetchRetries, opts.RetryDelay),
		api.WithMaxImageDimension(conf.MaxImageDimension),
		api.WithMaxImagePixels(conf.MaxImagePixels),
		api.WithFonts(conf.FontRegular, conf.FontBold),
		api.WithAuthor(conf.Author),
		api.WithLogger(logger),
	} {
		opt(&opts)
	}
	return opts, nil
}
