package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aretw0/flowcanvas/internal/config"
	"github.com/aretw0/flowcanvas/pkg/adapters/file"
	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/adapters/process"
	"github.com/aretw0/flowcanvas/pkg/adapters/redis"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/executors"
	"github.com/aretw0/flowcanvas/pkg/executors/generate"
	"github.com/aretw0/flowcanvas/pkg/graph"
	"github.com/aretw0/flowcanvas/pkg/persistence/middleware"
	"github.com/aretw0/flowcanvas/pkg/ports"
	"github.com/aretw0/flowcanvas/pkg/registry"
	"github.com/aretw0/flowcanvas/pkg/scheduler"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

// Engine bundles what every command needs: the catalog and the executors bound to it.
type Engine struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Registry *registry.Registry
	Logger   *slog.Logger
}

// NewEngine builds the catalog and executor registry described by cfg.
// Catalog types without an executor are reported but not fatal: running such a
// node fails with domain.ErrNoExecutor.
func NewEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	cat := catalog.Builtin()
	if cfg.Catalog != "" {
		if err := cat.Extend(cfg.Catalog); err != nil {
			return nil, fmt.Errorf("error loading catalog: %w", err)
		}
	}

	reg := registry.NewRegistry()
	executors.Register(reg)
	generate.New(openAIClient(cfg.OpenAI), generate.Config{
		TextModel:   cfg.OpenAI.TextModel,
		ImageModel:  cfg.OpenAI.ImageModel,
		SpeechModel: cfg.OpenAI.SpeechModel,
		OutputDir:   cfg.OpenAI.OutputDir,
	}).Register(reg)

	if cfg.Tools != "" {
		tools, err := process.LoadTools(cfg.Tools)
		if err != nil {
			return nil, fmt.Errorf("error loading tools: %w", err)
		}
		process.NewRunner(
			process.WithRegistry(tools),
			process.WithBaseDir(filepath.Dir(cfg.Tools)),
		).Bind(reg)
	}

	if err := reg.Bind(cat); err != nil {
		logger.Warn("catalog types without executor", "err", strings.ReplaceAll(err.Error(), "\n", "; "))
	}

	return &Engine{Config: cfg, Catalog: cat, Registry: reg, Logger: logger}, nil
}

// openAIClient returns nil, selecting mock mode, when no API key is configured.
func openAIClient(c config.OpenAIConfig) *openai.Client {
	key := c.APIKey()
	if key == "" {
		return nil
	}
	return generate.NewClient(key, c.BaseURL)
}

// GraphOptions applies the strict_ports setting, forced on by strict.
func (e *Engine) GraphOptions(strict bool) []graph.Option {
	if strict || e.Config.StrictPorts {
		return []graph.Option{graph.WithStrictPorts()}
	}
	return nil
}

// Scheduler returns a scheduler over the engine registry.
// parallel <= 0 keeps the configured parallelism.
func (e *Engine) Scheduler(parallel int, hooks ...domain.LifecycleHooks) *scheduler.Scheduler {
	if parallel <= 0 {
		parallel = e.Config.Parallelism
	}
	return scheduler.New(e.Registry,
		scheduler.WithLogger(e.Logger),
		scheduler.WithParallelism(parallel),
		scheduler.WithLifecycleHooks(domain.ChainHooks(hooks...)),
	)
}

// OpenStore opens the configured workflow store, wrapped in the redaction and
// encryption middlewares when configured. The locker is nil unless the driver
// supports distributed locking. closeFn releases connections.
func (e *Engine) OpenStore() (ports.WorkflowStore, ports.DistributedLocker, func() error, error) {
	mws, err := e.storeMiddlewares()
	if err != nil {
		return nil, nil, nil, err
	}
	store, locker, closeFn, err := e.openBackend()
	if err != nil {
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mws...), locker, closeFn, nil
}

func (e *Engine) storeMiddlewares() ([]middleware.Middleware, error) {
	sc := e.Config.Store
	var mws []middleware.Middleware
	if len(sc.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(sc.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if sc.EncryptionKeyEnv != "" {
		raw := sc.EncryptionKey()
		if raw == "" {
			return nil, fmt.Errorf("encryption key variable %s is not set", sc.EncryptionKeyEnv)
		}
		key, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

func (e *Engine) openBackend() (store ports.WorkflowStore, locker ports.DistributedLocker, closeFn func() error, err error) {
	noop := func() error { return nil }
	sc := e.Config.Store
	switch strings.ToLower(sc.Driver) {
	case config.DriverMemory, "":
		return memory.NewStore(), nil, noop, nil
	case config.DriverFile:
		return file.New(sc.Path), nil, noop, nil
	case config.DriverRedis:
		var opts []redis.Option
		if sc.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(sc.Redis.Prefix))
		}
		if sc.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(sc.Redis.TTL))
		}
		s := redis.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, opts...)
		return s, redis.NewLocker(s.Client(), s.Prefix()), s.Close, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}

// Workspace opens the store and wraps it in a workspace running on this engine.
func (e *Engine) Workspace(hooks ...domain.LifecycleHooks) (*workspace.Workspace, func() error, error) {
	store, locker, closeFn, err := e.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	opts := []workspace.Option{
		workspace.WithLogger(e.Logger),
		workspace.WithStrictPorts(e.Config.StrictPorts),
		workspace.WithSchedulerOptions(scheduler.WithParallelism(e.Config.Parallelism)),
		workspace.WithLifecycleHooks(domain.ChainHooks(hooks...)),
	}
	if locker != nil {
		opts = append(opts, workspace.WithLocker(locker))
	}
	return workspace.New(store, e.Catalog, e.Registry, opts...), closeFn, nil
}
