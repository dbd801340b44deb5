package di

import (
	"context"
	"database/sql"
	"errors"
	"reflect"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-widgets/pkg/activity"
	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/commands"
	"github.com/goliatone/go-widgets/pkg/config"
	"github.com/goliatone/go-widgets/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	"github.com/goliatone/go-widgets/pkg/localization"
	"github.com/goliatone/go-widgets/pkg/sidebars"
	"github.com/goliatone/go-widgets/pkg/storage"
	"github.com/goliatone/go-widgets/pkg/transformer"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Options configure the DI container.
type Options struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Translator  i18n.Translator
	Fallbacks   i18n.FallbackResolver
	Broadcaster broadcaster.Broadcaster
	Activity    activity.Hooks
	Registry    *blocks.Registry
}

// Container wires storage, the codec, services, and commands.
type Container struct {
	Config       config.Config
	Storage      storage.Providers
	Logger       logger.Logger
	Codec        *blocks.Codec
	Transformer  *transformer.Transformer
	Sidebars     *sidebars.Service
	Renderer     *sidebars.Renderer
	Localization *localization.Provider
	Commands     *commands.Registry

	db *bun.DB
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(ctx context.Context, opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = logger.New(nil, logger.ParseLevel(cfg.Logging.Level))
	}

	c := &Container{Config: cfg, Logger: lgr}

	providers := opts.Storage
	if providers.Widgets == nil {
		var err error
		providers, c.db, err = openStorage(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
	}
	c.Storage = providers

	b := opts.Broadcaster
	if b == nil {
		b = &broadcaster.Nop{}
	}
	if cfg.Realtime.Enabled {
		b = broadcaster.NewFanout(b, broadcaster.Log{Logger: lgr})
	}

	c.Codec = blocks.NewCodec(opts.Registry)
	c.Transformer = transformer.New(transformer.WithCodec(c.Codec), transformer.WithLogger(lgr))

	svc, err := sidebars.NewService(sidebars.Dependencies{
		Repository:       providers.Widgets,
		Transactions:     providers.Transaction,
		Transformer:      c.Transformer,
		Codec:            c.Codec,
		Broadcaster:      b,
		Logger:           lgr,
		Activity:         opts.Activity,
		Metrics:          providers.Metrics,
		Config:           cfg.Sidebars,
		StrictBlockNames: cfg.Blocks.StrictNames,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Sidebars = svc

	c.Renderer, err = sidebars.NewRenderer(svc, cfg.Sidebars.Template)
	if err != nil {
		c.Close()
		return nil, err
	}

	translator := opts.Translator
	if translator == nil {
		translator, err = localization.NewTranslator(cfg.Localization.DefaultLocale, localization.DefaultTranslations(), opts.Fallbacks)
		if err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Localization, err = localization.NewProvider(translator,
		localization.WithDefaultLocale(cfg.Localization.DefaultLocale),
		localization.WithRTLLocales(cfg.Localization.RTLLocales...),
		localization.WithCacheSize(cfg.Localization.CacheSize),
		localization.WithLogger(lgr),
	)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Commands, err = commands.New(commands.Dependencies{
		Sidebars: svc,
		Codec:    c.Codec,
		Logger:   lgr,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the database opened by the container, if any.
func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Providers, *bun.DB, error) {
	switch cfg.Driver {
	case "", config.StorageDriverMemory:
		return storage.NewMemoryProviders(), nil, nil
	case config.StorageDriverSQLite:
		sqldb, err := sql.Open(sqliteshim.DriverName(), cfg.DSN)
		if err != nil {
			return storage.Providers{}, nil, err
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		if err := storage.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return storage.Providers{}, nil, err
		}
		return storage.NewBunProviders(db), db, nil
	default:
		return storage.Providers{}, nil, errors.New("di: unsupported storage driver " + cfg.Driver)
	}
}
