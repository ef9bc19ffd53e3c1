// Package engine is the session façade: it takes one action at a time from
// a dispatcher, runs it against the progression store under the right
// locks, and reports what happened.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tatianab/orb-cult/internal/achievements"
	"github.com/tatianab/orb-cult/internal/adventure"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/duel"
	"github.com/tatianab/orb-cult/internal/metrics"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/oracle"
	"github.com/tatianab/orb-cult/internal/rules"
	"github.com/tatianab/orb-cult/internal/storage"
)

// Options tune an Engine. Zero fields take defaults.
type Options struct {
	Roller             chance.Roller
	Now                func() time.Time
	RitualCooldown     time.Duration
	MeditationCooldown time.Duration
	Thresholds         rules.Thresholds
	Duel               duel.Params
	Rules              []achievements.Rule
	Graph              *adventure.Graph
	Oracle             oracle.Oracle
	// DedupWindow is how many recent action IDs are remembered. Zero
	// disables duplicate detection.
	DedupWindow int
	Logger      *slog.Logger
}

// Engine dispatches actions.
type Engine struct {
	store  *storage.Store
	roll   chance.Roller
	now    func() time.Time
	eval   *achievements.Evaluator
	adv    *adventure.Engine
	oracle oracle.Oracle
	recent *recentIDs
	log    *slog.Logger

	ritualCooldown     time.Duration
	meditationCooldown time.Duration
	thresholds         rules.Thresholds
	duel               duel.Params
}

// New returns an engine over store.
func New(store *storage.Store, opts Options) (*Engine, error) {
	if store == nil {
		return nil, errors.New("engine: store is required")
	}
	if opts.Roller == nil {
		seed, err := chance.NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Roller = chance.New(seed)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RitualCooldown == 0 {
		opts.RitualCooldown = rules.DefaultRitualCooldown
	}
	if opts.MeditationCooldown == 0 {
		opts.MeditationCooldown = rules.DefaultMeditationCooldown
	}
	if opts.Thresholds == (rules.Thresholds{}) {
		opts.Thresholds = rules.DefaultThresholds
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if opts.Duel == (duel.Params{}) {
		opts.Duel = duel.DefaultParams()
	}
	if opts.Graph == nil {
		g, err := adventure.Default()
		if err != nil {
			return nil, fmt.Errorf("load default adventure: %w", err)
		}
		opts.Graph = g
	}
	if opts.Oracle == nil {
		opts.Oracle = oracle.NewStatic(opts.Roller)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	eval := achievements.NewEvaluator(opts.Rules)
	return &Engine{
		store:              store,
		roll:               opts.Roller,
		now:                opts.Now,
		eval:               eval,
		adv:                adventure.NewEngine(opts.Graph, eval),
		oracle:             opts.Oracle,
		recent:             newRecentIDs(opts.DedupWindow),
		log:                opts.Logger,
		ritualCooldown:     opts.RitualCooldown,
		meditationCooldown: opts.MeditationCooldown,
		thresholds:         opts.Thresholds,
		duel:               opts.Duel,
	}, nil
}

// Graph returns the adventure graph in use.
func (e *Engine) Graph() *adventure.Graph {
	return e.adv.Graph()
}

// Handle runs one action. Outcomes the user caused, such as a cooldown or
// a missing session, are reported in the Result's Status. Only malformed
// actions and storage failures are returned as errors.
func (e *Engine) Handle(ctx context.Context, a Action) (Result, error) {
	started := time.Now()
	a.normalize()
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	if !e.recent.claim(a.ID) {
		metrics.ObserveAction(string(a.Kind), string(StatusDuplicate), time.Since(started))
		return Result{
			ActionID:  a.ID,
			Kind:      a.Kind,
			Status:    StatusDuplicate,
			Narrative: "That gesture was already answered.",
		}, nil
	}

	res, err := e.dispatch(ctx, a)
	if err != nil {
		e.recent.release(a.ID)
		if errors.Is(err, storage.ErrStorageUnavailable) {
			metrics.StorageError()
			e.log.Error("action failed", "kind", a.Kind, "actor", a.ActorID, "error", err)
		}
		return Result{}, err
	}
	res.ActionID = a.ID
	res.Kind = a.Kind
	metrics.ObserveAction(string(a.Kind), string(res.Status), time.Since(started))
	e.log.Debug("action handled", "kind", a.Kind, "actor", a.ActorID, "status", res.Status)
	return res, nil
}

func (e *Engine) dispatch(ctx context.Context, a Action) (Result, error) {
	switch a.Kind {
	case KindProfile:
		return e.profile(ctx, a)
	case KindRitual:
		return e.ritual(ctx, a)
	case KindMeditate:
		return e.meditate(ctx, a)
	case KindAsk:
		return e.ask(ctx, a)
	case KindMention:
		return e.mention(ctx, a)
	case KindProphecy:
		return e.prophecy(ctx, a)
	case KindServer:
		return e.server(ctx, a)
	case KindAdventureStart:
		return e.startAdventure(ctx, a)
	case KindAdventureChoose:
		return e.choose(ctx, a)
	case KindAdventureAbandon:
		return e.abandon(ctx, a)
	case KindSacrifice:
		if a.TargetID == "" || a.TargetID == a.ActorID {
			return e.selfOffer(ctx, a)
		}
		return e.sacrifice(ctx, a)
	}
	return Result{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
}

// gate applies the madness rule. It reports true, and fills res, when the
// cultist is too far gone to act.
func (e *Engine) gate(p *models.CultistProfile, now time.Time, res *Result) bool {
	if !rules.Incoherent(p) {
		return false
	}
	res.Status = StatusIncoherent
	res.Narrative = rules.IncoherentLine(e.roll)
	res.Profile = e.view(p, now)
	return true
}

// settle evaluates achievements after a mutation and counts fresh madness.
func (e *Engine) settle(p *models.CultistProfile, timesMadBefore int) []achievements.Unlock {
	unlocked := e.eval.Evaluate(p)
	e.observe(p, timesMadBefore, unlocked)
	return unlocked
}

func (e *Engine) observe(p *models.CultistProfile, timesMadBefore int, unlocked []achievements.Unlock) {
	for _, u := range unlocked {
		metrics.AchievementUnlocked(u.Name)
	}
	if p.TimesMad > timesMadBefore {
		metrics.MadnessOnset()
		e.log.Info("cultist lost their mind", "cultist", p.ID, "madness", p.MadnessLevel)
	}
}
