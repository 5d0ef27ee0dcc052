package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/mikdash/engine/avodah"
)

// stepTrack renders step progress as one glyph per step:
// done steps as ✓, the active one as its emoji, pending ones as ·.
func stepTrack(snap avodah.Snapshot) string {
	var b strings.Builder
	for _, v := range snap.Steps {
		switch v.Status {
		case avodah.StatusDone:
			b.WriteString("✓")
		case avodah.StatusActive:
			if v.Step.Emoji != "" {
				b.WriteString(v.Step.Emoji)
			} else {
				b.WriteString("▶")
			}
		default:
			b.WriteString("·")
		}
	}
	return b.String()
}

// renderStatusBar produces a full-width inverted status line showing
// coins, level, position and zone on the left and the current korban or
// interaction hint on the right.
func (m Model) renderStatusBar() string {
	l := m.engine.Ledger
	p := m.engine.Field.Position()

	zone := "Azara"
	if m.engine.Field.InNorthZone() {
		zone = "North"
	}
	left := fmt.Sprintf(" 🪙%d | Lv %d | (%.0f,%.0f) %s", l.Coins, l.Level, p.X, p.Z, zone)

	right := ""
	if snap := m.engine.Machine.Snapshot(); snap.Active {
		right = fmt.Sprintf("%s %s", snap.OfferingName, stepTrack(snap))
		if snap.Mistakes > 0 {
			right += fmt.Sprintf(" ⚠%d", snap.Mistakes)
		}
		right += " "
	} else if hint := m.engine.Prompt(); hint != "" {
		right = hint + " "
	}

	// Drop the hint rather than overflow the bar.
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > m.width {
		right = ""
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
