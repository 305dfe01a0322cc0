package handlers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/warfbot/warfbot/internal/cycle"
	"github.com/warfbot/warfbot/internal/lookup"
	"github.com/warfbot/warfbot/internal/worldstate"
)

// locationTitles maps location ids to display names shown to users.
var locationTitles = map[cycle.LocationID]string{
	cycle.Cetus:   "Plains of Eidolon",
	cycle.Vallis:  "Orb Vallis",
	cycle.Cambion: "Cambion Drift",
	cycle.Earth:   "Earth",
}

func locationTitle(loc cycle.LocationID) string {
	if title, ok := locationTitles[loc]; ok {
		return title
	}
	return string(loc)
}

// formatDuration renders a duration as "2h 15m" or "45s" for sub-minute
// remainders.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// formatCycleStatus renders one location's current phase and the time until
// the next transition.
func formatCycleStatus(loc cycle.LocationID, state cycle.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", locationTitle(loc))
	fmt.Fprintf(&sb, "Current: %s\n", state.Phase)
	fmt.Fprintf(&sb, "Until %s: %s", state.Next, formatDuration(state.Remaining))
	return sb.String()
}

func formatSortie(s *worldstate.Sortie) string {
	var sb strings.Builder
	sb.WriteString("Today's sortie\n")
	fmt.Fprintf(&sb, "Boss: %s (%s)\n", s.Boss, s.Faction)
	for i, v := range s.Variants {
		fmt.Fprintf(&sb, "%d. %s — %s (%s)\n", i+1, v.MissionType, v.Node, v.Modifier)
	}
	if !s.Expiry.IsZero() {
		fmt.Fprintf(&sb, "Resets in: %s", formatDuration(time.Until(s.Expiry)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatVoidTrader(vt *worldstate.VoidTrader) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", vt.Character)
	if vt.Active {
		fmt.Fprintf(&sb, "Now at: %s\n", vt.Location)
		fmt.Fprintf(&sb, "Leaves in: %s", formatDuration(time.Until(vt.Expiry)))
	} else {
		fmt.Fprintf(&sb, "Next visit: %s\n", vt.Location)
		fmt.Fprintf(&sb, "Arrives in: %s", formatDuration(time.Until(vt.Activation)))
	}
	return sb.String()
}

func formatInvasions(invasions []worldstate.Invasion) string {
	if len(invasions) == 0 {
		return "No active invasions right now."
	}
	var sb strings.Builder
	sb.WriteString("Active invasions\n")
	for _, inv := range invasions {
		fmt.Fprintf(&sb, "\n%s: %s vs %s (%.0f%%)\n", inv.Node, inv.AttackingFaction, inv.DefendingFaction, inv.Completion)
		fmt.Fprintf(&sb, "Rewards: %s / %s\n", rewardOrNone(inv.AttackerReward), rewardOrNone(inv.DefenderReward))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func rewardOrNone(r worldstate.InvasionReward) string {
	if r.AsString == "" {
		return "none"
	}
	return r.AsString
}

func formatWarframe(wf *lookup.Warframe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", wf.Name)

	sb.WriteString("Abilities:\n")
	for i, ability := range wf.Abilities {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, ability)
	}

	sb.WriteString("\nWhere to get:\n")
	parts := make([]string, 0, len(wf.Acquisition))
	for part := range wf.Acquisition {
		parts = append(parts, part)
	}
	sort.Strings(parts)
	for _, part := range parts {
		fmt.Fprintf(&sb, "%s: %s\n", part, wf.Acquisition[part])
	}
	return strings.TrimRight(sb.String(), "\n")
}
