// simulate_game drives many cultists through the engine at once against a
// simulated clock and prints what the orb did to them.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tatianab/orb-cult/internal/app"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/config"
	"github.com/tatianab/orb-cult/internal/engine"
	"github.com/tatianab/orb-cult/internal/logging"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/storage"
)

const serverID = "simulation"

type options struct {
	cultists int
	rounds   int
	step     time.Duration
	seed     int64
	storage  string
}

type tally struct {
	mu       sync.Mutex
	statuses map[engine.Status]int
	tiers    map[models.RarityTier]int
	duels    int
	wins     int
}

func (t *tally) record(a engine.Action, res engine.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[res.Status]++
	if res.Artifact != nil {
		t.tiers[res.Artifact.Tier]++
	}
	if a.Kind == engine.KindSacrifice && a.TargetID != "" && res.Winner != "" {
		t.duels++
		if res.Winner == a.ActorID {
			t.wins++
		}
	}
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "simulate_game",
		Short: "Run a crowd of cultists against the engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return simulate(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.cultists, "cultists", 50, "number of simulated cultists")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 200, "rounds to play")
	cmd.Flags().DurationVar(&opts.step, "step", 30*time.Minute, "simulated time between rounds")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.storage, "storage", config.StorageMemory, "storage backend to exercise")
	if err := cmd.Execute(); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

func simulate(ctx context.Context, opts options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Storage = opts.storage
	if err := cfg.Validate(); err != nil {
		return err
	}
	backend, err := app.OpenBackend(cfg, logging.Discard())
	if err != nil {
		return err
	}
	store := storage.New(backend, nil)
	defer store.Close()

	var clock atomic.Int64
	clock.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	roll := chance.New(opts.seed)
	eng, err := engine.New(store, engine.Options{
		Roller: roll,
		Now:    func() time.Time { return time.Unix(0, clock.Load()).UTC() },
	})
	if err != nil {
		return err
	}

	ids := make([]string, opts.cultists)
	for i := range ids {
		ids[i] = fmt.Sprintf("cultist-%03d", i)
	}
	paths := make([]engine.Result, opts.cultists)
	t := &tally{statuses: map[engine.Status]int{}, tiers: map[models.RarityTier]int{}}

	start := time.Now()
	for round := range opts.rounds {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(16)
		for i, id := range ids {
			g.Go(func() error {
				a := pickAction(roll, id, ids, paths[i])
				res, err := eng.Handle(gctx, a)
				if err != nil {
					return fmt.Errorf("round %d %s %s: %w", round, id, a.Kind, err)
				}
				if a.Kind == engine.KindAdventureStart || a.Kind == engine.KindAdventureChoose {
					paths[i] = res
				}
				t.record(a, res)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		clock.Add(int64(opts.step))
	}

	return report(ctx, os.Stdout, store, ids, t, time.Since(start))
}

func pickAction(r chance.Roller, id string, ids []string, path engine.Result) engine.Action {
	a := engine.Action{ActorID: id, ServerID: serverID}
	if len(path.Choices) > 0 && (path.Status == engine.StatusOK || path.Status == engine.StatusContinue) {
		a.Kind = engine.KindAdventureChoose
		a.Payload = string(path.Choices[r.Intn(len(path.Choices))].ID)
		return a
	}
	switch n := r.Intn(100); {
	case n < 30:
		a.Kind = engine.KindRitual
	case n < 45:
		a.Kind = engine.KindMeditate
	case n < 60:
		a.Kind = engine.KindMention
	case n < 70:
		a.Kind, a.Payload = engine.KindAsk, "What do you want from us?"
	case n < 80:
		a.Kind = engine.KindAdventureStart
	case n < 95:
		a.Kind = engine.KindSacrifice
		a.TargetID = ids[r.Intn(len(ids))]
	default:
		a.Kind = engine.KindSacrifice
	}
	return a
}

func report(ctx context.Context, w io.Writer, store *storage.Store, ids []string, t *tally, elapsed time.Duration) error {
	var profiles []*models.CultistProfile
	for _, id := range ids {
		p, err := store.Cultist(ctx, id)
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	}
	slices.SortFunc(profiles, func(a, b *models.CultistProfile) int { return b.Favor - a.Favor })

	fmt.Fprintf(w, "--- Simulation finished in %s ---\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "Outcomes:")
	for _, s := range []engine.Status{
		engine.StatusOK, engine.StatusCooldown, engine.StatusIncoherent, engine.StatusContinue,
		engine.StatusCompleted, engine.StatusSessionActive, engine.StatusNoActiveSession,
	} {
		fmt.Fprintf(w, "  %-18s %d\n", s, t.statuses[s])
	}
	fmt.Fprintln(w, "Artifacts drawn:")
	for _, tier := range models.Tiers {
		fmt.Fprintf(w, "  %-10s %d\n", tier, t.tiers[tier])
	}
	if t.duels > 0 {
		fmt.Fprintf(w, "Duels: %d, challenger won %.1f%%\n", t.duels, 100*float64(t.wins)/float64(t.duels))
	}

	mad := 0
	for _, p := range profiles {
		if p.TimesMad > 0 {
			mad++
		}
	}
	fmt.Fprintf(w, "Cultists who lost their minds at least once: %d of %d\n", mad, len(profiles))
	fmt.Fprintln(w, "Most favored:")
	for _, p := range profiles[:min(5, len(profiles))] {
		fmt.Fprintf(w, "  %s favor=%d sanity=%d artifacts=%d kills=%d deaths=%d\n",
			p.ID, p.Favor, p.Sanity, len(p.Artifacts), p.Kills, p.TimesKilled)
	}
	return nil
}
