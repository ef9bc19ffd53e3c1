package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tatianab/orb-cult/internal/adventure"
	"github.com/tatianab/orb-cult/internal/duel"
	"github.com/tatianab/orb-cult/internal/metrics"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/oracle"
	"github.com/tatianab/orb-cult/internal/rules"
	"github.com/tatianab/orb-cult/internal/storage"
)

// mentionsPerEvent is how many invocations of the orb raise a server's
// event level by one.
const mentionsPerEvent = 25

func (e *Engine) profile(ctx context.Context, a Action) (Result, error) {
	id := a.ActorID
	if a.TargetID != "" {
		id = a.TargetID
	}
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(id)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(id)
		if err != nil {
			return err
		}
		sess, err := tx.Session(id)
		if err != nil {
			return err
		}
		res.Status = StatusOK
		res.Profile = e.view(p, e.now())
		if sess != nil {
			res.Profile.Node = adventure.NodeID(sess.NodeID)
		}
		res.Narrative = fmt.Sprintf("%s stands at sanity %d with favor %d.", p.ID, p.Sanity, p.Favor)
		return nil
	})
	return res, err
}

func (e *Engine) ritual(ctx context.Context, a Action) (Result, error) {
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}

		madBefore := p.TimesMad
		out, err := rules.Ritual(p, e.roll, now, e.ritualCooldown, e.thresholds)
		var cd *rules.CooldownError
		if errors.As(err, &cd) {
			res.Status = StatusCooldown
			res.Remaining = cd.Remaining
			res.Narrative = "The altar is still warm. The orb will not answer yet."
			res.Profile = e.view(p, now)
			return nil
		}
		if err != nil {
			return err
		}
		metrics.ArtifactDrawn(out.Artifact.Tier.String())

		res.Status = StatusOK
		res.Artifact = &out.Artifact
		res.Unlocked = e.settle(p, madBefore)
		res.Narrative = fmt.Sprintf("The ritual yields %s, a %s relic.", out.Artifact.Name, out.Artifact.Tier)
		res.Profile = e.view(p, now)
		return nil
	})
	return res, err
}

func (e *Engine) meditate(ctx context.Context, a Action) (Result, error) {
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}

		madBefore := p.TimesMad
		out, err := rules.Meditate(p, e.roll, now, e.meditationCooldown)
		var cd *rules.CooldownError
		if errors.As(err, &cd) {
			res.Status = StatusCooldown
			res.Remaining = cd.Remaining
			res.Narrative = "Your mind is too restless to settle again so soon."
			res.Profile = e.view(p, now)
			return nil
		}
		if err != nil {
			return err
		}

		res.Status = StatusOK
		switch {
		case out.Backfired:
			res.Narrative = fmt.Sprintf("Something looks back from the silence. Sanity %d.", out.SanityDelta)
		case out.Eased:
			res.Narrative = fmt.Sprintf("The whispers recede. Sanity %+d, and the madness loosens its grip.", out.SanityDelta)
		default:
			res.Narrative = fmt.Sprintf("You breathe with the orb. Sanity %+d.", out.SanityDelta)
		}
		res.Unlocked = e.settle(p, madBefore)
		res.Profile = e.view(p, now)
		return nil
	})
	return res, err
}

// ask records the question under the lock, then consults the oracle
// outside it so a slow model never holds a user's lock.
func (e *Engine) ask(ctx context.Context, a Action) (Result, error) {
	var (
		res   Result
		q     oracle.Question
		gated bool
	)
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			gated = true
			return nil
		}
		madBefore := p.TimesMad
		rules.Question(p)
		res.Status = StatusOK
		res.Unlocked = e.settle(p, madBefore)
		res.Profile = e.view(p, now)
		q = oracle.QuestionFor(p, a.Payload)
		return nil
	})
	if err != nil || gated {
		return res, err
	}

	answer, err := e.oracle.Answer(ctx, q)
	if err != nil {
		e.log.Warn("oracle gave no answer", "actor", a.ActorID, "error", err)
		answer = "The orb is silent."
	}
	res.Narrative = answer
	return res, nil
}

func (e *Engine) mention(ctx context.Context, a Action) (Result, error) {
	var res Result
	keys := []storage.LockKey{storage.UserKey(a.ActorID), storage.ServerKey(a.ServerID)}
	err := e.store.Atomically(ctx, keys, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}
		srv, err := tx.Server(a.ServerID)
		if err != nil {
			return err
		}

		madBefore := p.TimesMad
		p.TotalMentions++
		srv.TotalMentions++
		srv.EventLevel = srv.TotalMentions / mentionsPerEvent

		enc := rules.Encounter(p, e.roll)
		res.Narrative = rules.OrbLine(e.roll)
		if enc.Happened {
			srv.ServerSanity = models.ClampSanity(srv.ServerSanity - 1)
			res.Encounter = true
			res.Narrative += fmt.Sprintf(" Something brushes past you in the dark. Sanity -%d.", enc.SanityLoss)
		}

		res.Status = StatusOK
		res.Unlocked = e.settle(p, madBefore)
		res.Profile = e.view(p, now)
		res.Server = serverView(srv)
		return nil
	})
	return res, err
}

// prophecy records a prophecy against a server. Without a payload the
// oracle writes one; the oracle is consulted between two critical sections.
func (e *Engine) prophecy(ctx context.Context, a Action) (Result, error) {
	var (
		res   Result
		omen  oracle.Omen
		gated bool
	)
	keys := []storage.LockKey{storage.UserKey(a.ActorID), storage.ServerKey(a.ServerID)}
	err := e.store.Atomically(ctx, keys, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		if e.gate(p, e.now(), &res) {
			gated = true
			return nil
		}
		srv, err := tx.Server(a.ServerID)
		if err != nil {
			return err
		}
		omen = oracle.OmenFor(srv)
		return nil
	})
	if err != nil || gated {
		return res, err
	}

	text := a.Payload
	if text == "" {
		if text, err = e.oracle.Prophesy(ctx, omen); err != nil || text == "" {
			e.log.Warn("oracle gave no prophecy", "server", a.ServerID, "error", err)
			text = "The orb foretells nothing. That is worse."
		}
	}

	err = e.store.Atomically(ctx, keys, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}
		srv, err := tx.Server(a.ServerID)
		if err != nil {
			return err
		}
		srv.Prophecies = append(srv.Prophecies, models.Prophecy{Text: text, At: now, AuthorID: a.ActorID})
		res.Status = StatusOK
		res.Narrative = text
		res.Profile = e.view(p, now)
		res.Server = serverView(srv)
		return nil
	})
	return res, err
}

func (e *Engine) server(ctx context.Context, a Action) (Result, error) {
	var res Result
	keys := []storage.LockKey{storage.UserKey(a.ActorID), storage.ServerKey(a.ServerID)}
	err := e.store.Atomically(ctx, keys, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		srv, err := tx.Server(a.ServerID)
		if err != nil {
			return err
		}
		res.Status = StatusOK
		res.Profile = e.view(p, e.now())
		res.Server = serverView(srv)
		res.Narrative = fmt.Sprintf("The gathering has invoked the orb %d times. Event level %d, collective sanity %d.",
			srv.TotalMentions, srv.EventLevel, srv.ServerSanity)
		return nil
	})
	return res, err
}

func (e *Engine) startAdventure(ctx context.Context, a Action) (Result, error) {
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}
		cur, err := tx.Session(a.ActorID)
		if err != nil {
			return err
		}
		res.Profile = e.view(p, now)

		sess, node, err := e.adv.Start(a.ActorID, cur, e.roll, now)
		switch {
		case errors.Is(err, adventure.ErrSessionActive):
			res.Status = StatusSessionActive
			res.Narrative = "You are already walking a path. Finish it or abandon it."
			if n, err := e.adv.Current(cur); err == nil {
				res.Node, res.Choices = n.ID, n.Choices
			}
			res.Profile.Node = adventure.NodeID(cur.NodeID)
			return nil
		case err != nil:
			return err
		}
		if err := tx.PutSession(sess); err != nil {
			return err
		}
		res.Status = StatusOK
		res.Narrative = node.Text
		res.Node = node.ID
		res.Choices = node.Choices
		res.Profile.Node = node.ID
		return nil
	})
	return res, err
}

func (e *Engine) choose(ctx context.Context, a Action) (Result, error) {
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}
		sess, err := tx.Session(a.ActorID)
		if err != nil {
			return err
		}

		madBefore := p.TimesMad
		step, err := e.adv.Choose(p, sess, adventure.NodeID(a.Payload), now)
		switch {
		case errors.Is(err, adventure.ErrNoSession):
			res.Status = StatusNoActiveSession
			res.Narrative = "You are not on any path. Begin an adventure first."
			res.Profile = e.view(p, now)
			return nil
		case errors.Is(err, adventure.ErrUnknownNode):
			e.log.Warn("adventure session pointed at a missing node, discarding it",
				"actor", a.ActorID, "session", sess.ID, "node", a.Payload)
			if err := tx.DeleteSession(a.ActorID); err != nil {
				return err
			}
			res.Status = StatusUnknownNode
			res.Narrative = "The path dissolves beneath your feet. The adventure is lost."
			res.Profile = e.view(p, now)
			return nil
		case err != nil:
			return err
		}
		e.observe(p, madBefore, step.Unlocked)

		res.Narrative = step.Node.Text
		res.Node = step.Node.ID
		res.Unlocked = step.Unlocked
		if step.Completed {
			if err := tx.DeleteSession(a.ActorID); err != nil {
				return err
			}
			res.Status = StatusCompleted
			res.Elapsed = step.Elapsed
		} else {
			if err := tx.PutSession(step.Session); err != nil {
				return err
			}
			res.Status = StatusContinue
			res.Choices = step.Node.Choices
		}
		res.Profile = e.view(p, now)
		if !step.Completed {
			res.Profile.Node = step.Node.ID
		}
		return nil
	})
	return res, err
}

// abandon drops the session. Effects already applied by earlier steps stay.
func (e *Engine) abandon(ctx context.Context, a Action) (Result, error) {
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(p, now, &res) {
			return nil
		}
		sess, err := tx.Session(a.ActorID)
		if err != nil {
			return err
		}
		res.Status = StatusOK
		res.Narrative = "There is no path to abandon."
		if sess != nil {
			if err := tx.DeleteSession(a.ActorID); err != nil {
				return err
			}
			res.Narrative = "You turn back. The path closes behind you, but what it took stays taken."
		}
		res.Profile = e.view(p, now)
		return nil
	})
	return res, err
}

// selfOffer is exempt from the madness rule: it is the way back.
func (e *Engine) selfOffer(ctx context.Context, a Action) (Result, error) {
	var res Result
	err := e.store.Atomically(ctx, []storage.LockKey{storage.UserKey(a.ActorID)}, func(tx *storage.Tx) error {
		p, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		sess, err := tx.Session(a.ActorID)
		if err != nil {
			return err
		}
		if sess != nil {
			if err := tx.DeleteSession(a.ActorID); err != nil {
				return err
			}
		}
		duel.SelfOffer(p, e.duel)
		res.Status = StatusOK
		res.Narrative = fmt.Sprintf("You give yourself to the orb. You are reborn for the %s time.", ordinal(p.Sacrifices))
		res.Profile = e.view(p, e.now())
		return nil
	})
	return res, err
}

// sacrifice duels the actor against the target with both locked.
func (e *Engine) sacrifice(ctx context.Context, a Action) (Result, error) {
	var res Result
	keys := []storage.LockKey{storage.UserKey(a.ActorID), storage.UserKey(a.TargetID)}
	err := e.store.Atomically(ctx, keys, func(tx *storage.Tx) error {
		actor, err := tx.Cultist(a.ActorID)
		if err != nil {
			return err
		}
		now := e.now()
		if e.gate(actor, now, &res) {
			return nil
		}
		target, err := tx.Cultist(a.TargetID)
		if err != nil {
			return err
		}

		targetMad := target.TimesMad
		out, err := duel.Resolve(e.roll, actor, target, e.duel)
		if errors.Is(err, duel.ErrSelfTarget) {
			res.Status = StatusInvalidTarget
			res.Narrative = "You cannot duel yourself. Offer yourself instead."
			res.Profile = e.view(actor, now)
			return nil
		}
		if err != nil {
			return err
		}
		metrics.Duel(out.ActorWon)

		// The loser was reset, so only the winner can unlock anything.
		if out.ActorWon {
			res.Unlocked = e.settle(actor, actor.TimesMad)
			res.Narrative = fmt.Sprintf("You offer %s to the orb and take %s.", target.ID, plural(out.Transferred, "relic"))
		} else {
			e.observe(target, targetMad, e.eval.Evaluate(target))
			res.Narrative = fmt.Sprintf("%s turns the blade. The orb takes you instead.", target.ID)
		}
		if s, err := tx.Session(out.LoserID); err != nil {
			return err
		} else if s != nil {
			if err := tx.DeleteSession(out.LoserID); err != nil {
				return err
			}
		}

		res.Status = StatusOK
		res.Winner = out.WinnerID
		res.Profile = e.view(actor, now)
		tv := e.view(target, now)
		res.Target = &tv
		return nil
	})
	return res, err
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
