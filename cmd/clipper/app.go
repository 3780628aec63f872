package main

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/clipper-video/clipper/internal/api"
	"github.com/clipper-video/clipper/internal/jobcache"
	"github.com/clipper-video/clipper/internal/settings"
	"github.com/clipper-video/clipper/internal/tracker"
	"github.com/clipper-video/clipper/pkg/cache"
	"github.com/clipper-video/clipper/pkg/config"
	"github.com/clipper-video/clipper/pkg/logger"
	"github.com/clipper-video/clipper/pkg/tracing"
)

// app 子命令共享的组件
type app struct {
	ctx      context.Context
	settings *settings.Settings
	cfg      *config.Config
	log      logger.Logger
	store    cache.Cache
	jobs     *jobcache.Cache
	api      *api.Client
	tracker  *tracker.Tracker
	out      *printer

	closers []func(context.Context) error
}

func newApp(ctx context.Context, opts *options, stdout io.Writer) (*app, error) {
	rt := &app{ctx: ctx, out: newPrinter(stdout, opts.Output)}

	if err := settings.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}
	s, cfg, err := settings.Load(opts.Config, config.WithOnChange(rt.reload))
	if err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		s.API.BaseURL = opts.BaseURL
	}
	if opts.Dbg {
		s.Log.Level = "debug"
	}
	rt.settings, rt.cfg = s, cfg

	if rt.log, err = s.Log.NewLogger(); err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return rt.log.Sync() })

	if s.Trace.Enabled {
		s.Trace.Writer = os.Stderr
		if _, err := tracing.NewTracerProvider(&s.Trace); err != nil {
			rt.close()
			return nil, err
		}
		rt.closers = append(rt.closers, tracing.Shutdown)
	}

	if rt.store, err = s.Cache.NewStore(); err != nil {
		rt.close()
		return nil, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return rt.store.Close() })
	if err := pingStore(ctx, rt.store); err != nil {
		rt.close()
		return nil, err
	}
	if s.Trace.Enabled {
		rt.store = cache.NewTracing(rt.store)
	}

	rt.jobs = s.Cache.NewJobCache(rt.store, rt.log)
	rt.api = api.New(s.API.NewClient(rt.log, s.Trace.Enabled))
	rt.tracker = tracker.New(rt.api.Jobs, rt.jobs,
		tracker.WithLogger(rt.log),
		tracker.WithPollInterval(s.API.PollInterval),
	)

	if cfg.ConfigFileUsed() != "" && !opts.Dbg {
		if err := cfg.StartWatch(); err != nil {
			rt.log.Debug("config watch disabled", zap.Error(err))
		}
		rt.closers = append(rt.closers, func(context.Context) error { cfg.StopWatch(); return nil })
	}

	rt.log.Debug("runtime ready",
		zap.String("api", rt.api.BaseURL()),
		zap.String("cache", s.Cache.Driver),
		zap.String("config", cfg.ConfigFileUsed()),
	)
	return rt, nil
}

// pingStore 启动时确认存储可用，redis 与 database 驱动在此发现连接问题
func pingStore(ctx context.Context, store cache.Cache) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return jobcache.ErrStorage.WithError(err)
	}
	return nil
}

// reload 配置文件变更时刷新日志级别
func (rt *app) reload() {
	if rt.log == nil || rt.cfg == nil {
		return
	}
	if err := settings.ReloadLogLevel(rt.cfg, rt.log); err != nil {
		rt.log.Warn("config reload failed", zap.Error(err))
	}
}

// close 逆序释放资源
func (rt *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i](ctx)
	}
	rt.closers = nil
}
