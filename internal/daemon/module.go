package daemon

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/propflow/commshub/internal/bus"
	"github.com/propflow/commshub/internal/config"
	"github.com/propflow/commshub/internal/identity"
	"github.com/propflow/commshub/internal/inbox"
	"github.com/propflow/commshub/internal/logging"
	"github.com/propflow/commshub/internal/notify"
	"github.com/propflow/commshub/internal/poll"
	"github.com/propflow/commshub/internal/record"
	"github.com/propflow/commshub/internal/routing"
	"github.com/propflow/commshub/internal/source"
	"github.com/propflow/commshub/internal/statusstore"
)

// Params holds what the host process supplies to the daemon: the
// config location plus the collaborator implementations the engine
// consumes. Nil collaborators degrade to empty ones so a bare daemon
// still starts.
type Params struct {
	ConfigPath string
	// ViewerID overrides the config file's viewer when non-empty.
	ViewerID    string
	Adapters    []source.Adapter
	CrossRef    inbox.CrossRef
	Assignments inbox.AssignmentDirectory
}

// Module returns the fx module for the hub daemon, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("hubd",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStore,
			provideEngine,
			provideHolder,
			providePollTask,
			provideBridge,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.ConfigPath == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &config.Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

func viewerID(p Params, cfg *config.Config) string {
	if p.ViewerID != "" {
		return p.ViewerID
	}
	return cfg.ViewerID
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogPath, viewerID(p, cfg))
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStore(cfg *config.Config, logger *zap.Logger) (statusstore.Store, error) {
	dsn := cfg.StatusStoreDSN
	if dsn == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".commshub")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "statuses.db")
	}
	s, err := statusstore.Open(dsn)
	if err != nil {
		return nil, err
	}
	logger.Info("status store ready", zap.String("dsn", dsn))
	return s, nil
}

// staticCrossRef and staticAssignments serve fixed snapshots; the nil
// value is an empty directory.
type staticCrossRef []identity.Entry

func (s staticCrossRef) Entries(context.Context) ([]identity.Entry, error) { return s, nil }

type staticAssignments []record.PhoneAssignment

func (s staticAssignments) Assignments(context.Context) ([]record.PhoneAssignment, error) {
	return s, nil
}

func provideEngine(p Params, cfg *config.Config, b *bus.Bus, store statusstore.Store, logger *zap.Logger) *inbox.Engine {
	crossRef := p.CrossRef
	if crossRef == nil {
		crossRef = staticCrossRef(nil)
	}
	assigns := p.Assignments
	if assigns == nil {
		assigns = staticAssignments(nil)
	}
	return inbox.New(inbox.Options{
		ViewerID:    viewerID(p, cfg),
		Adapters:    p.Adapters,
		CrossRef:    crossRef,
		Assignments: assigns,
		Statuses:    store,
		Bus:         b,
		Logger:      logger,
	})
}

// Holder keeps the latest confirmed snapshot for the presentation
// layer to read.
func provideHolder() *Holder {
	return NewHolder()
}

func providePollTask(p Params, cfg *config.Config, e *inbox.Engine, h *Holder, logger *zap.Logger) *poll.Task {
	view := routing.Mailbox(viewerID(p, cfg))
	run := func(ctx context.Context) any {
		snap, err := e.Refresh(ctx, view, source.Window{})
		if err != nil {
			logger.Warn("refresh aborted", zap.Error(err))
			return nil
		}
		return snap
	}
	deliver := func(result any) {
		if snap, ok := result.(*inbox.Snapshot); ok && snap != nil {
			h.Set(snap)
		}
	}
	return poll.New(cfg.PollInterval(), run, deliver)
}

func provideBridge(cfg *config.Config, b *bus.Bus, logger *zap.Logger) (*notify.Bridge, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	pub, err := notify.Dial(context.Background(), notify.DialOptions{
		URL:      cfg.AMQPURL,
		Exchange: cfg.Exchange(),
		Attempts: 5,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	return notify.NewBridge(b, pub, "hubd@"+host, logger), nil
}

func registerLifecycle(lc fx.Lifecycle, p Params, task *poll.Task, bridge *notify.Bridge, store statusstore.Store, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if len(p.Adapters) == 0 {
				logger.Warn("no source adapters registered; inbox will be empty")
			}
			if bridge != nil {
				bridge.Start(context.Background())
			}
			task.Start(context.Background())
			logger.Info("hub daemon started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			task.Stop()
			if bridge != nil {
				bridge.Stop()
			}
			if err := store.Close(); err != nil {
				logger.Warn("error closing status store", zap.Error(err))
			}
			logger.Info("hub daemon stopped")
			return nil
		},
	})
}
