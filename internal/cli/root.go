package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/internal/config"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/notify/mongo"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
	"github.com/matzehuels/chartdeck/pkg/store"
)

// env is everything a command needs beyond its flags: the configuration,
// the session store and the external notifiers. Commands open one with
// openEnv and must Close it.
type env struct {
	cfg       *config.Config
	backend   store.Store
	sessions  *session.Store
	sessionID string
	logger    *log.Logger

	// notifier delivers to Mongo and the webhook, if configured. It is
	// nil when neither is.
	notifier *notify.AsyncNotifier

	// stats is the Mongo sink when configured.
	stats notify.StatsSource

	closers []func(context.Context) error
}

// openEnv loads the configuration and opens the configured backends.
// Notifier connection failures are logged and leave that notifier out;
// store failures are returned.
func (c *CLI) openEnv(ctx context.Context) (*env, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateSessionID(c.sessionID); err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", cfg.Path, "backends", cfg.String())

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var keyer store.Keyer
	if prefix := cfg.Store.KeyPrefix; prefix != "" {
		keyer = store.NewScopedKeyer(nil, prefix)
	}

	e := &env{
		cfg:       cfg,
		backend:   backend,
		sessions:  session.NewStore(backend, keyer, cfg.Store.TTL.Duration),
		sessionID: c.sessionID,
		logger:    logger,
	}
	e.openNotifiers(ctx)
	return e, nil
}

// openStore opens the configured store backend, instrumented with the
// observability hooks.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Backend {
	case config.BackendFile:
		dir, derr := cfg.StoreDir()
		if derr != nil {
			return nil, fmt.Errorf("get store dir: %w", derr)
		}
		s, err = store.NewFile(dir)
	case config.BackendRedis:
		s, err = store.NewRedis(ctx, cfg.Store.RedisURL)
	case config.BackendMemory:
		s = store.NewMemory()
	default:
		s = store.NewNull()
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	return store.Instrument(s), nil
}

func (e *env) openNotifiers(ctx context.Context) {
	var ns []notify.Notifier

	if uri := e.cfg.Notify.MongoURI; uri != "" {
		sink, err := mongo.Connect(ctx, uri, e.cfg.Notify.MongoDatabase)
		if err != nil {
			e.logger.Warn("mongo activity log disabled", "error", err)
		} else {
			ns = append(ns, sink)
			e.stats = sink
			e.closers = append(e.closers, sink.Close)
		}
	}

	if url := e.cfg.Notify.WebhookURL; url != "" {
		if err := errors.ValidateURL(url); err != nil {
			e.logger.Warn("webhook disabled", "error", err)
		} else {
			ns = append(ns, notify.NewHTTP(url))
		}
	}

	if len(ns) > 0 {
		e.notifier = notify.Async(notify.Multi(ns...), e.logger, e.cfg.Notify.Timeout.Duration)
	}
}

// external returns the external notifier, or nil.
func (e *env) external() notify.Notifier {
	if e.notifier == nil {
		return nil
	}
	return e.notifier
}

// tracker returns a notifier that records events in the CLI session and
// forwards them to the external notifiers.
func (e *env) tracker() notify.Notifier {
	return notify.Multi(session.NewTracker(e.sessions, e.sessionID), e.external())
}

// statsSource returns where dashboard statistics come from: Mongo when
// configured, the CLI session otherwise.
func (e *env) statsSource() notify.StatsSource {
	if e.stats != nil {
		return e.stats
	}
	return session.NewTracker(e.sessions, e.sessionID)
}

// runner returns a pipeline runner reporting to the CLI session.
func (e *env) runner() *pipeline.Runner {
	r := pipeline.NewRunner(e.tracker(), e.logger)
	r.ExportOptions = e.cfg.ExportOptions()
	return r
}

// options returns pipeline options seeded from the configuration.
func (e *env) options() pipeline.Options {
	opts := e.cfg.PipelineOptions()
	opts.Logger = e.logger
	return opts
}

// Close waits for pending notifications and releases the backends.
func (e *env) Close(ctx context.Context) error {
	if e.notifier != nil {
		e.notifier.Wait()
	}
	ctx = context.WithoutCancel(ctx)
	for _, closeFn := range e.closers {
		if err := closeFn(ctx); err != nil {
			e.logger.Warn("close", "error", err)
		}
	}
	return e.backend.Close()
}
