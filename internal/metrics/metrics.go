// Package metrics holds the Prometheus collectors for the cult engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cult_actions_total",
		Help: "Actions handled by kind and result status",
	}, []string{"kind", "status"})

	actionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cult_action_duration_seconds",
		Help:    "Time spent handling an action",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"kind"})

	artifactsDrawn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cult_artifacts_drawn_total",
		Help: "Artifacts granted by rarity tier",
	}, []string{"tier"})

	duelsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cult_duels_total",
		Help: "Duels resolved, by whether the challenger won",
	}, []string{"outcome"})

	achievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cult_achievements_unlocked_total",
		Help: "Achievements unlocked by name",
	}, []string{"achievement"})

	madnessOnsets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cult_madness_onsets_total",
		Help: "Times a cultist's sanity reached zero",
	})

	oracleFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cult_oracle_fallbacks_total",
		Help: "Oracle calls answered from the static pool after a failure",
	})

	storageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cult_storage_errors_total",
		Help: "Actions that failed because storage was unavailable",
	})
)

// ObserveAction records one handled action.
func ObserveAction(kind, status string, elapsed time.Duration) {
	actionsTotal.WithLabelValues(kind, status).Inc()
	actionDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ArtifactDrawn counts a granted artifact.
func ArtifactDrawn(tier string) {
	artifactsDrawn.WithLabelValues(tier).Inc()
}

// Duel counts a resolved duel.
func Duel(challengerWon bool) {
	outcome := "lost"
	if challengerWon {
		outcome = "won"
	}
	duelsTotal.WithLabelValues(outcome).Inc()
}

// AchievementUnlocked counts an unlock.
func AchievementUnlocked(name string) {
	achievementsUnlocked.WithLabelValues(name).Inc()
}

// MadnessOnset counts a fall to zero sanity.
func MadnessOnset() { madnessOnsets.Inc() }

// OracleFallback counts a static answer served after an oracle failure.
func OracleFallback() { oracleFallbacks.Inc() }

// StorageError counts an action lost to storage.
func StorageError() { storageErrors.Inc() }
