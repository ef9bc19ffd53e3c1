package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/tatianab/orb-cult/internal/engine"
)

// describe renders a result as plain text for the log.
func describe(res engine.Result) string {
	var b strings.Builder
	b.WriteString(res.Narrative)

	switch res.Status {
	case engine.StatusCooldown:
		fmt.Fprintf(&b, " (ready in %s)", res.Remaining.Round(time.Minute))
	case engine.StatusCompleted:
		fmt.Fprintf(&b, "\nThe path is complete after %s.", res.Elapsed.Round(time.Second))
	case engine.StatusDuplicate, engine.StatusIncoherent:
		return b.String()
	}

	if res.Artifact != nil {
		fmt.Fprintf(&b, "\nSanity %d, favor %d.", res.Profile.Sanity, res.Profile.Favor)
	}
	for _, u := range res.Unlocked {
		fmt.Fprintf(&b, "\nAchievement unlocked: %s (%+d favor)", u.Name, u.Reward)
	}
	for i, c := range res.Choices {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, c.Label)
	}
	if res.Server != nil && res.Kind == engine.KindProphecy {
		fmt.Fprintf(&b, "\n%d prophecies now stand against this place.", len(res.Server.Prophecies))
	}
	return b.String()
}

// profilePanel renders the side panel.
func profilePanel(p engine.ProfileView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CULTIST") + "\n")
	fmt.Fprintf(&b, "%s\n%s\n\n", p.ID, p.Personality)

	b.WriteString(titleStyle.Render("MIND") + "\n")
	fmt.Fprintf(&b, "Sanity: %d\nMadness: %d\nFavor: %d\n", p.Sanity, p.MadnessLevel, p.Favor)
	if p.Incoherent {
		b.WriteString(madStyle.Render("INCOHERENT") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("TIMERS") + "\n")
	fmt.Fprintf(&b, "Ritual: %s\nMeditation: %s\n\n", ready(p.RitualIn), ready(p.MeditationIn))

	b.WriteString(titleStyle.Render("ARTIFACTS") + "\n")
	if len(p.Artifacts) == 0 {
		b.WriteString("(none)\n")
	}
	for _, a := range p.Artifacts {
		fmt.Fprintf(&b, "- %s [%s]\n", a.Name, a.Tier)
	}
	b.WriteString("\n")

	if len(p.Achievements) > 0 {
		b.WriteString(titleStyle.Render("ACHIEVEMENTS") + "\n")
		for _, a := range p.Achievements {
			b.WriteString("- " + a + "\n")
		}
		b.WriteString("\n")
	}
	if p.Node != "" {
		b.WriteString(titleStyle.Render("PATH") + "\n" + string(p.Node) + "\n")
	}
	return b.String()
}

func ready(d time.Duration) string {
	if d <= 0 {
		return "ready"
	}
	return d.Round(time.Minute).String()
}
