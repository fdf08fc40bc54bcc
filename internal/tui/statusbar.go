package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(visible, loaded, total int, filterLabel string, width int, searching, loading bool) string {
	left := fmt.Sprintf(" %d articles", visible)
	if loaded < total {
		left = fmt.Sprintf(" %d articles (%d of %d loaded)", visible, loaded, total)
	}
	if filterLabel != "All" {
		left += " · " + filterLabel
	}
	if loading {
		left += " (loading...)"
	}

	right := " / search  f filter  l like  r refresh  q quit "
	if searching {
		right = " esc cancel  enter search "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
