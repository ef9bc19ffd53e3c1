// Package app assembles a running engine from configuration: the storage
// backend, the oracle, the adventure graph and the engine itself.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tatianab/orb-cult/internal/adventure"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/config"
	"github.com/tatianab/orb-cult/internal/engine"
	"github.com/tatianab/orb-cult/internal/oracle"
	"github.com/tatianab/orb-cult/internal/storage"
	"github.com/tatianab/orb-cult/internal/storage/badgerkv"
	"github.com/tatianab/orb-cult/internal/storage/memory"
	"github.com/tatianab/orb-cult/internal/storage/sqlite"
	"github.com/tatianab/orb-cult/internal/storage/yamlfile"
)

// App owns everything that must be closed on exit.
type App struct {
	Config *config.Config
	Store  *storage.Store
	Engine *engine.Engine

	closers []func() error
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close())
		}
	}()

	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = storage.New(backend, logger.With("component", "storage"))
	a.closers = append(a.closers, a.Store.Close)

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = chance.NewSeed(); err != nil {
			return nil, err
		}
	}
	roller := chance.New(seed)

	orc, err := a.openOracle(ctx, cfg, roller, logger)
	if err != nil {
		return nil, err
	}

	var graph *adventure.Graph
	if cfg.AdventureFile != "" {
		if graph, err = adventure.LoadFile(cfg.AdventureFile); err != nil {
			return nil, err
		}
		logger.Info("loaded adventure", "file", cfg.AdventureFile, "title", graph.Title, "nodes", len(graph.Nodes))
	}

	th, err := cfg.Thresholds()
	if err != nil {
		return nil, err
	}
	a.Engine, err = engine.New(a.Store, engine.Options{
		Roller:             roller,
		RitualCooldown:     cfg.RitualCooldown,
		MeditationCooldown: cfg.MeditationCooldown,
		Thresholds:         th,
		Graph:              graph,
		Oracle:             orc,
		DedupWindow:        cfg.DedupWindow,
		Logger:             logger.With("component", "engine"),
	})
	if err != nil {
		return nil, err
	}
	if d := a.Engine.Graph().Dangling(); len(d) > 0 {
		logger.Warn("adventure has choices leading nowhere", "nodes", d)
	}
	return a, nil
}

// OpenBackend opens the storage backend cfg selects.
func OpenBackend(cfg *config.Config, logger *slog.Logger) (storage.Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch cfg.Storage {
	case config.StorageYAML:
		return yamlfile.Open(cfg.StoragePath())
	case config.StorageBadger:
		bc := badgerkv.DefaultConfig()
		bc.Path = cfg.StoragePath()
		bc.Logger = logger.With("component", "badger")
		return badgerkv.Open(bc)
	case config.StorageSQLite:
		return sqlite.Open(cfg.StoragePath())
	case config.StorageMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}

func (a *App) openOracle(ctx context.Context, cfg *config.Config, r chance.Roller, logger *slog.Logger) (oracle.Oracle, error) {
	static := oracle.NewStatic(r)
	if !cfg.OracleEnabled() {
		return static, nil
	}
	g, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, g.Close)
	return &oracle.Fallback{Primary: g, Backup: static, Logger: logger.With("component", "oracle")}, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
