// Package tui renders the interactive reader: the subscribed feed on the
// left, the selected article on the right, the filter token row above, all
// driven by snapshots from the session caches. The TUI never talks to the
// transport directly; every remote effect goes through a cache entry point
// inside a tea.Cmd closure.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tomakado/containers/set"

	"github.com/arthurgrandao/scinewsAI/internal/filter"
	"github.com/arthurgrandao/scinewsAI/internal/model"
	"github.com/arthurgrandao/scinewsAI/internal/session"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

const cmdTimeout = 30 * time.Second

type App struct {
	sess      *session.Session
	selection *filter.Selection

	topics     []model.Topic
	visible    []model.Article
	total      int
	loaded     int
	likeCounts map[string]int

	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	// State
	loading       bool
	previewScroll int
	currentDate   string
	err           error
	loggedOut     bool
}

func NewApp(sess *session.Session) *App {
	ti := textinput.New()
	ti.Placeholder = "Search articles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	selection := filter.NewSelection()

	return &App{
		sess:        sess,
		selection:   selection,
		likeCounts:  make(map[string]int),
		filterBar:   newFilterBar(selection),
		searchInput: ti,
		spinner:     sp,
		currentDate: time.Now().Format("Jan 2"),
	}
}

func (a *App) Init() tea.Cmd {
	a.loading = true
	return tea.Batch(
		a.loadFeedCmd(false),
		a.loadTopicsCmd(),
		a.loadMembershipCmd(),
		a.spinner.Tick,
	)
}

func (a *App) loadFeedCmd(force bool) tea.Cmd {
	feed := a.sess.Feed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		if err := feed.Ensure(ctx, force); err != nil {
			return feedErrMsg{err: err}
		}
		return feedLoadedMsg{snapshot: feed.Snapshot()}
	}
}

func (a *App) resetFeedCmd(query string) tea.Cmd {
	feed := a.sess.Feed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		if err := feed.Reset(ctx, query); err != nil {
			return feedErrMsg{err: err}
		}
		return feedLoadedMsg{snapshot: feed.Snapshot()}
	}
}

func (a *App) loadNextCmd() tea.Cmd {
	feed := a.sess.Feed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		if err := feed.LoadNext(ctx); err != nil {
			return feedErrMsg{err: err}
		}
		return feedLoadedMsg{snapshot: feed.Snapshot()}
	}
}

func (a *App) loadTopicsCmd() tea.Cmd {
	topics := a.sess.Topics
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		catalog, err := topics.Ensure(ctx, false)
		if err != nil {
			return feedErrMsg{err: err}
		}
		return topicsLoadedMsg{topics: catalog}
	}
}

// loadMembershipCmd refreshes the like and subscription sets together; both
// feed the visibility derivation.
func (a *App) loadMembershipCmd() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		if err := sess.Likes.Refresh(ctx, false); err != nil {
			return feedErrMsg{err: err}
		}
		if err := sess.Subscriptions.Refresh(ctx, false); err != nil {
			return feedErrMsg{err: err}
		}
		return likesLoadedMsg{}
	}
}

func (a *App) toggleLikeCmd(articleID string) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		err := sess.Likes.Toggle(ctx, articleID)
		if err == nil {
			sess.Stats.Invalidate(articleID)
		}
		return toggleDoneMsg{articleID: articleID, err: err}
	}
}

func (a *App) fetchStatsCmd(articleID string) tea.Cmd {
	stats := a.sess.Stats
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		count, err := stats.LikeCount(ctx, articleID)
		if err != nil {
			return nil // display data only; missing counts stay blank
		}
		return statsLoadedMsg{articleID: articleID, count: count}
	}
}

// deriveVisible recomputes the visible list from the current snapshots and
// clamps the cursor into it.
func (a *App) deriveVisible() {
	snapshot := a.sess.Feed.Snapshot()
	a.total = snapshot.Total
	a.loaded = len(snapshot.Articles)

	likes := set.New(a.sess.Likes.IDs()...)
	a.visible = filter.Visible(snapshot.Articles, a.topics, likes, a.sess.Subscriptions.IDs(), a.selection)
	if a.cursor >= len(a.visible) {
		a.cursor = max(0, len(a.visible)-1)
	}
}

func (a *App) selected() *model.Article {
	if len(a.visible) == 0 || a.cursor >= len(a.visible) {
		return nil
	}
	return &a.visible[a.cursor]
}

func (a *App) maybeFetchStats() tea.Cmd {
	if article := a.selected(); article != nil {
		if _, ok := a.likeCounts[article.ID]; !ok {
			return a.fetchStatsCmd(article.ID)
		}
	}
	return nil
}

// maybeLoadMore requests the next page when the cursor reaches the tail of
// the visible list and the server still holds pages.
func (a *App) maybeLoadMore() tea.Cmd {
	if a.cursor >= len(a.visible)-1 && a.sess.Feed.HasMore() && !a.sess.Feed.Loading() {
		return a.loadNextCmd()
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case feedLoadedMsg:
		a.loading = false
		a.deriveVisible()
		return a, a.maybeFetchStats()

	case topicsLoadedMsg:
		a.topics = msg.topics
		a.filterBar.setTopics(msg.topics)
		a.deriveVisible()
		return a, nil

	case likesLoadedMsg:
		a.deriveVisible()
		return a, nil

	case toggleDoneMsg:
		if msg.err != nil {
			a.err = msg.err
		}
		a.deriveVisible()
		delete(a.likeCounts, msg.articleID)
		return a, a.fetchStatsCmd(msg.articleID)

	case statsLoadedMsg:
		a.likeCounts[msg.articleID] = msg.count
		return a, nil

	case feedErrMsg:
		a.loading = false
		a.err = msg.err
		a.deriveVisible()
		return a, nil

	case loggedOutMsg:
		a.loggedOut = true
		return a, tea.Quit

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if s := msg.String(); s == "?" || s == "esc" || s == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.visible)-1 {
			a.cursor++
			a.previewScroll = 0
			return a, tea.Batch(a.maybeFetchStats(), a.maybeLoadMore())
		} else if a.focus == focusList {
			return a, a.maybeLoadMore()
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
			return a, a.maybeFetchStats()
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "l":
		if article := a.selected(); article != nil {
			return a, a.toggleLikeCmd(article.ID)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.SetValue(a.selection.Query)
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "r":
		if !a.loading {
			a.loading = true
			return a, tea.Batch(a.loadFeedCmd(true), a.loadMembershipCmd(), a.spinner.Tick)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

// handleSearchKey routes the query both ways on enter: to the server as the
// feed's search scope, and to the local filter as step zero.
func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		if a.selection.Query != "" {
			a.selection.Query = ""
			a.cursor = 0
			a.loading = true
			return a, tea.Batch(a.resetFeedCmd(""), a.spinner.Tick)
		}
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		query := a.searchInput.Value()
		if query != a.selection.Query {
			a.selection.Query = query
			a.cursor = 0
			a.loading = true
			return a, tea.Batch(a.resetFeedCmd(query), a.spinner.Tick)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		if a.filterBar.filterCursor > 0 {
			a.filterBar.filterCursor--
		}
		return a, nil
	case "right", "l":
		if a.filterBar.filterCursor < a.filterBar.tokenCount()-1 {
			a.filterBar.filterCursor++
		}
		return a, nil
	case " ", "enter":
		a.filterBar.toggleCurrent()
		a.cursor = 0
		a.deriveVisible()
		return a, a.maybeFetchStats()
	}
	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  scinews")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// Layout calculations
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1 // gap

	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("scinews")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Filter bar, replaced by the search input while searching
	filterRow := a.filterBar.render(a.width)
	if a.mode == modeSearch {
		filterRow = a.searchInput.View()
	}

	// List pane
	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.visible, a.sess.Likes.Contains, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	// Preview pane
	selected := a.selected()
	var likeCount int
	var liked bool
	if selected != nil {
		likeCount = a.likeCounts[selected.ID]
		liked = a.sess.Likes.Contains(selected.ID)
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, likeCount, liked, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(
		len(a.visible),
		a.loaded,
		a.total,
		a.filterBar.activeLabel(),
		a.width,
		a.mode == modeSearch,
		a.loading,
	)

	if a.loading {
		status = a.spinner.View() + " " + status
	}

	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filterRow, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("scinews")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate article list\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  l             Like or unlike the selected article\n" +
		"  r             Refresh feed, likes and subscriptions\n" +
		"  /             Search articles\n" +
		"  f             Toggle filter mode\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between tokens\n" +
		"  space/enter   Toggle token\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI. A server-reported logout quits the program and
// reports it to the caller.
func Run(sess *session.Session) error {
	app := NewApp(sess)
	p := tea.NewProgram(app, tea.WithAltScreen())
	sess.OnLogout(func() { p.Send(loggedOutMsg{}) })

	if _, err := p.Run(); err != nil {
		return err
	}
	if app.loggedOut {
		return fmt.Errorf("session expired: the server rejected the stored credentials")
	}
	return nil
}
