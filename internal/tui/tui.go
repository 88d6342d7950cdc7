// Package tui is the terminal reader: headlines, a reading list and article
// detail with translation and export.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/library"
	"github.com/thomaskoefod/newsagg/internal/logging"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/internal/translate"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

const commandTimeout = 30 * time.Second

type View int

const (
	ViewArticleList View = iota
	ViewArticleDetail
	ViewHelp
)

// Listing selects what the article list shows.
type Listing int

const (
	ListingHeadlines Listing = iota
	ListingReadingList
)

type Headlines interface {
	Fetch(ctx context.Context, q newsapi.Query) []models.TransientArticle
}

// Exporter sends an article to an external read-later service.
type Exporter interface {
	Configured() bool
	Export(ctx context.Context, article models.TransientArticle) error
}

type Options struct {
	News       Headlines
	Library    *library.Library
	Translator translate.Provider
	Exporter   Exporter
	Catalog    *i18n.Catalog
	// User owns the reading list; Lang picks UI labels; Target is the
	// translation language.
	User   string
	Lang   string
	Target string
	Logger *zap.Logger
}

type Model struct {
	opts        Options
	log         *zap.Logger
	view        View
	listing     Listing
	list        list.Model
	viewport    viewport.Model
	renderer    *glamour.TermRenderer
	converter   *md.Converter
	current     articleItem
	// translation is display-only; saving and export use current.article.
	translation *models.TransientArticle
	width       int
	height      int
	err         error
	statusMsg   string
}

type articlesLoadedMsg struct {
	listing Listing
	items   []articleItem
}

type errorMsg struct {
	err error
}

type statusMsg string

type savedMsg struct {
	url     string
	created bool
}

type removedMsg struct {
	url string
}

type translatedMsg struct {
	article models.TransientArticle
	ok      bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	articleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				MarginBottom(1)
)

func New(opts Options) Model {
	if opts.Target == "" {
		opts.Target = "uk"
	}

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Top Headlines"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{
		opts:      opts,
		log:       logging.OrNop(opts.Logger),
		view:      ViewArticleList,
		list:      l,
		viewport:  viewport.New(80, 20),
		renderer:  newRenderer(80),
		converter: md.NewConverter("", true, nil),
	}
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadHeadlines(m.opts.News, m.opts.Library, m.opts.User),
		tea.EnterAltScreen,
	)
}

func (m Model) t(msg string) string {
	return m.opts.Catalog.T(m.opts.Lang, msg)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.renderer = newRenderer(msg.Width)
		if m.view == ViewArticleDetail {
			m.viewport.SetContent(m.formatArticleForView(m.displayed()))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case articlesLoadedMsg:
		if msg.listing != m.listing {
			return m, nil
		}
		items := make([]list.Item, len(msg.items))
		for i, item := range msg.items {
			items[i] = item
		}
		m.err = nil
		m.statusMsg = fmt.Sprintf("Loaded %d articles", len(items))
		return m, m.list.SetItems(items)

	case savedMsg:
		m.err = nil
		m.markSaved(msg.url, true)
		if msg.created {
			m.statusMsg = m.t(i18n.MsgArticleAdded)
		} else {
			m.statusMsg = m.t(i18n.MsgAlreadyInList)
		}
		return m, nil

	case removedMsg:
		m.err = nil
		m.statusMsg = m.t(i18n.MsgArticleRemoved)
		m.markSaved(msg.url, false)
		if m.listing == ListingReadingList {
			if m.view == ViewArticleDetail && m.current.article.URL == msg.url {
				m.view = ViewArticleList
			}
			return m, loadReadingList(m.opts.Library, m.opts.User)
		}
		return m, nil

	case translatedMsg:
		if !msg.ok {
			m.statusMsg = m.t(i18n.MsgTranslationFailed)
			return m, nil
		}
		if m.view != ViewArticleDetail || msg.article.URL != m.current.article.URL {
			return m, nil
		}
		translated := msg.article
		m.translation = &translated
		m.viewport.SetContent(m.formatArticleForView(translated))
		m.statusMsg = "Translated"
		return m, nil

	case errorMsg:
		m.err = msg.err
		return m, nil

	case statusMsg:
		m.err = nil
		m.statusMsg = string(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// markSaved updates the star on every row showing url.
func (m *Model) markSaved(url string, saved bool) {
	for i, it := range m.list.Items() {
		item, ok := it.(articleItem)
		if !ok || item.article.URL != url {
			continue
		}
		item.saved = saved
		m.list.SetItem(i, item)
	}
	if m.current.article.URL == url {
		m.current.saved = saved
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewArticleList:
		return m.handleListKeys(msg)
	case ViewArticleDetail:
		return m.handleDetailKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// typing into the filter prompt
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter":
		if i, ok := m.list.SelectedItem().(articleItem); ok {
			m.view = ViewArticleDetail
			m.current = i
			m.translation = nil
			m.viewport.SetContent(m.formatArticleForView(i.article))
			m.viewport.GotoTop()
			return m, nil
		}

	case "r":
		return m, tea.Batch(
			m.reload(),
			func() tea.Msg { return statusMsg("Refreshing articles...") },
		)

	case "l":
		if m.listing == ListingHeadlines {
			m.listing = ListingReadingList
			m.list.Title = "Reading List"
		} else {
			m.listing = ListingHeadlines
			m.list.Title = "Top Headlines"
		}
		m.list.ResetFilter()
		return m, m.reload()

	case "s":
		if i, ok := m.list.SelectedItem().(articleItem); ok {
			return m, saveArticle(m.opts.Library, m.opts.User, i.article)
		}

	case "d":
		if i, ok := m.list.SelectedItem().(articleItem); ok {
			return m, removeArticle(m.opts.Library, m.opts.User, i)
		}

	case "o":
		if i, ok := m.list.SelectedItem().(articleItem); ok {
			return m, openArticle(i.article.URL)
		}

	case "?":
		m.view = ViewHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc", "backspace":
		m.view = ViewArticleList
		m.current = articleItem{}
		m.translation = nil
		return m, nil

	case "o":
		return m, openArticle(m.current.article.URL)

	case "s":
		return m, saveArticle(m.opts.Library, m.opts.User, m.current.article)

	case "d":
		return m, removeArticle(m.opts.Library, m.opts.User, m.current)

	case "t":
		if m.opts.Translator == nil {
			return m, func() tea.Msg { return statusMsg(m.t(i18n.MsgTranslationFailed)) }
		}
		return m, tea.Batch(
			translateArticle(m.opts.Translator, m.current.article, m.opts.Target, m.log),
			func() tea.Msg { return statusMsg("Translating...") },
		)

	case "x":
		// Send to Raindrop
		if m.opts.Exporter == nil || !m.opts.Exporter.Configured() {
			return m, func() tea.Msg { return statusMsg("Raindrop.io is not configured") }
		}
		return m, exportArticle(m.opts.Exporter, m.current.article)

	case "?":
		m.view = ViewHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		if m.current.article.URL != "" {
			m.view = ViewArticleDetail
		} else {
			m.view = ViewArticleList
		}
		return m, nil
	}
	return m, nil
}

// displayed is the article shown in the detail view.
func (m Model) displayed() models.TransientArticle {
	if m.translation != nil {
		return *m.translation
	}
	return m.current.article
}

func (m Model) reload() tea.Cmd {
	if m.listing == ListingReadingList {
		return loadReadingList(m.opts.Library, m.opts.User)
	}
	return loadHeadlines(m.opts.News, m.opts.Library, m.opts.User)
}

func (m Model) View() string {
	switch m.view {
	case ViewArticleList:
		return m.renderList()
	case ViewArticleDetail:
		return m.renderDetail()
	case ViewHelp:
		return m.renderHelp()
	}
	return ""
}

func (m Model) renderStatus(s *strings.Builder) {
	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.statusMsg != "" {
		s.WriteString(statusStyle.Render(m.statusMsg))
	}
	s.WriteString("\n")
}

func (m Model) renderList() string {
	var s strings.Builder

	s.WriteString(m.list.View())
	s.WriteString("\n")
	m.renderStatus(&s)

	if m.listing == ListingReadingList {
		s.WriteString(helpStyle.Render("enter: read • d: remove • o: open browser • l: headlines • r: refresh • ?: help • q: quit"))
	} else {
		s.WriteString(helpStyle.Render("enter: read • s: save • o: open browser • l: reading list • r: refresh • ?: help • q: quit"))
	}

	return s.String()
}

func (m Model) renderDetail() string {
	var s strings.Builder

	s.WriteString(m.viewport.View())
	s.WriteString("\n\n")
	m.renderStatus(&s)

	s.WriteString(helpStyle.Render("s: save • d: remove • t: translate • x: Raindrop • o: open browser • esc: back • ?: help • q: quit"))

	return s.String()
}

func (m Model) renderHelp() string {
	help := `
News Aggregator - Keyboard Shortcuts

Article List:
  ↑/↓, j/k     Navigate articles
  enter        Read article
  s            Save article to reading list
  d            Remove article from reading list
  l            Switch between headlines and reading list
  o            Open article in browser
  r            Refresh
  /            Filter articles
  q, ctrl+c    Quit

Article Detail:
  ↑/↓          Scroll
  s            Save article to reading list
  d            Remove article from reading list
  t            Translate article
  x            Export article to Raindrop.io
  o            Open article in browser
  esc          Back to list
  q, ctrl+c    Quit

General:
  ?            Show/hide this help
`
	return help + "\n" + helpStyle.Render("Press ? or esc to close help")
}

// formatArticleForView renders an article as markdown. Description HTML
// from feeds is converted first.
func (m Model) formatArticleForView(article models.TransientArticle) string {
	var body strings.Builder
	if article.Description != "" {
		body.WriteString("> ")
		body.WriteString(m.toMarkdown(article.Description))
		body.WriteString("\n\n")
	}
	body.WriteString(m.toMarkdown(article.Content))
	if article.URL != "" {
		fmt.Fprintf(&body, "\n\n[Read the full article](%s)", article.URL)
	}

	rendered := body.String()
	if m.renderer != nil {
		if out, err := m.renderer.Render(rendered); err == nil {
			rendered = out
		}
	}

	var s strings.Builder
	s.WriteString(articleTitleStyle.Render(article.Title))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("Source: %s", article.Source)))
	s.WriteString("\n")
	s.WriteString(rendered)
	return s.String()
}

func (m Model) toMarkdown(html string) string {
	if m.converter == nil || !strings.Contains(html, "<") {
		return html
	}
	out, err := m.converter.ConvertString(html)
	if err != nil {
		return html
	}
	return out
}

func loadHeadlines(news Headlines, lib *library.Library, user string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		articles := news.Fetch(ctx, newsapi.Query{Mode: newsapi.ModeTopHeadlines, Page: 1})
		urls, err := lib.SavedURLs(ctx, user)
		if err != nil {
			return errorMsg{err}
		}
		saved := make(map[string]bool, len(urls))
		for _, u := range urls {
			saved[u] = true
		}

		items := make([]articleItem, len(articles))
		for i, a := range articles {
			items[i] = articleItem{article: a, saved: saved[a.URL]}
		}
		return articlesLoadedMsg{listing: ListingHeadlines, items: items}
	}
}

func loadReadingList(lib *library.Library, user string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		entries, err := lib.ListSaved(ctx, user, library.Filters{})
		if err != nil {
			return errorMsg{err}
		}
		items := make([]articleItem, len(entries))
		for i, e := range entries {
			items[i] = articleItem{article: e.Article.Transient(), articleID: e.Article.ID, saved: true}
		}
		return articlesLoadedMsg{listing: ListingReadingList, items: items}
	}
}

func saveArticle(lib *library.Library, user string, article models.TransientArticle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		_, created, err := lib.Save(ctx, user, article)
		if err != nil {
			return errorMsg{err}
		}
		return savedMsg{url: article.URL, created: created}
	}
}

// removeArticle looks the article up by URL when the row came from the
// headlines listing and carries no id.
func removeArticle(lib *library.Library, user string, item articleItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		id := item.articleID
		if id == 0 {
			article, saved, err := lib.Article(ctx, user, item.article.URL)
			if err != nil || !saved {
				return statusMsg("Article is not in the reading list")
			}
			id = article.ID
		}
		if err := lib.Remove(ctx, user, id); err != nil {
			return errorMsg{err}
		}
		return removedMsg{url: item.article.URL}
	}
}

func translateArticle(p translate.Provider, article models.TransientArticle, lang string, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		out, ok := translate.TranslateArticle(ctx, p, article, lang, log)
		return translatedMsg{article: out, ok: ok}
	}
}

func exportArticle(exp Exporter, article models.TransientArticle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := exp.Export(ctx, article); err != nil {
			return errorMsg{err}
		}
		return statusMsg("Saved to Raindrop.io")
	}
}

func openArticle(url string) tea.Cmd {
	return func() tea.Msg {
		if err := openBrowser(url); err != nil {
			return errorMsg{err}
		}
		return statusMsg("Opened in browser")
	}
}
