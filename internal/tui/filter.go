package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/arthurgrandao/scinewsAI/internal/filter"
	"github.com/arthurgrandao/scinewsAI/internal/model"
)

// "subscribed" is a bar-only pseudo token for the subscribed-only flag;
// it never enters the selection's token set.
const tokenSubscribed = "subscribed"

// filterBar renders the token row and tracks the cursor while filter mode is
// active. The selection itself lives in filter.Selection; the bar is pure
// presentation plus cursor movement.
type filterBar struct {
	topics       []model.Topic
	selection    *filter.Selection
	filterMode   bool
	filterCursor int
}

func newFilterBar(selection *filter.Selection) filterBar {
	return filterBar{selection: selection}
}

// setTopics replaces the topic catalog backing the bar. The cursor is
// clamped so it never points past the new token row.
func (f *filterBar) setTopics(topics []model.Topic) {
	f.topics = topics
	if last := f.tokenCount() - 1; f.filterCursor > last {
		f.filterCursor = last
	}
}

// tokenCount is all + liked + subscribed-only + one token per topic.
func (f *filterBar) tokenCount() int {
	return 3 + len(f.topics)
}

// tokenAt maps a cursor position to its token. Positions 0..2 are the fixed
// tokens; the rest are topic ids in catalog order.
func (f *filterBar) tokenAt(i int) string {
	switch i {
	case 0:
		return filter.TokenAll
	case 1:
		return filter.TokenLiked
	case 2:
		return tokenSubscribed
	}
	return f.topics[i-3].ID
}

func (f *filterBar) topicIDs() []string {
	ids := make([]string, len(f.topics))
	for i, t := range f.topics {
		ids[i] = t.ID
	}
	return ids
}

// toggleCurrent flips the token under the cursor.
func (f *filterBar) toggleCurrent() {
	token := f.tokenAt(f.filterCursor)
	if token == tokenSubscribed {
		f.selection.SubscribedOnly = !f.selection.SubscribedOnly
		return
	}
	f.selection.Toggle(token, f.topicIDs())
}

func (f *filterBar) activeLabel() string {
	if f.selection.IsAll() && !f.selection.SubscribedOnly {
		return "All"
	}
	var parts []string
	if f.selection.SubscribedOnly {
		parts = append(parts, tokenSubscribed)
	}
	for _, token := range f.selection.Tokens() {
		if token == filter.TokenAll {
			continue
		}
		parts = append(parts, f.tokenLabel(token))
	}
	if len(parts) == 0 {
		return "All"
	}
	label := parts[0]
	for _, p := range parts[1:] {
		label += ", " + p
	}
	return label
}

func (f *filterBar) tokenLabel(token string) string {
	for _, t := range f.topics {
		if t.ID == token {
			return t.Name
		}
	}
	return token
}

func (f *filterBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	for i := 0; i < f.tokenCount(); i++ {
		token := f.tokenAt(i)

		on := false
		label := f.tokenLabel(token)
		switch token {
		case filter.TokenAll:
			on = f.selection.IsAll()
			label = "All"
		case tokenSubscribed:
			on = f.selection.SubscribedOnly
		default:
			on = f.selection.Has(token)
		}

		style := tabInactiveStyle
		if on {
			style = tabActiveStyle
		}
		if f.filterMode && i == f.filterCursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
