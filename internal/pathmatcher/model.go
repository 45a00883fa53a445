// Package pathmatcher is a terminal tool for attaching media file paths to
// titles. Titles are stepped through one at a time; for each, the known paths
// are searched by title, one result is picked and appended to the episodes
// text, which is then saved back.
package pathmatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchLimit caps the number of paths returned for one title.
const SearchLimit = 200

const resultsWindow = 10

type Repository interface {
	ListTitles(context.Context) ([]models.MediaTitle, error)
	SearchPaths(ctx context.Context, title string, limit int) ([]models.MediaPath, error)
	UpdateEpisodes(ctx context.Context, id int64, episodes string) error
}

type focus int

const (
	focusNone focus = iota
	focusFilepath
	focusEpisodes
)

// Model holds the whole UI state. Only Update changes it; database work runs
// in commands whose results come back as messages.
type Model struct {
	ctx  context.Context //nolint:containedctx
	repo Repository

	titles []models.MediaTitle
	index  int

	results  []models.MediaPath
	cursor   int
	selected int

	filepath textinput.Model
	episodes textarea.Model
	focus    focus

	status string
	busy   bool
}

func New(ctx context.Context, repo Repository) Model {
	fp := textinput.New()
	fp.Prompt = "File path: "
	fp.Placeholder = "select a search result or type a path"

	ep := textarea.New()
	ep.Placeholder = "episodes"
	ep.ShowLineNumbers = false
	ep.SetHeight(8) //nolint:gomnd

	return Model{
		ctx:      ctx,
		repo:     repo,
		index:    -1,
		selected: -1,
		filepath: fp,
		episodes: ep,
		status:   "idle, press l to load titles",
	}
}

type titlesMsg []models.MediaTitle

type resultsMsg struct {
	index int
	rows  []models.MediaPath
}

type savedMsg struct {
	index    int
	episodes string
}

type errMsg struct {
	op  string
	err error
}

func loadTitlesCmd(ctx context.Context, repo Repository) tea.Cmd {
	return func() tea.Msg {
		titles, err := repo.ListTitles(ctx)
		if err != nil {
			return errMsg{op: "loading titles", err: err}
		}

		return titlesMsg(titles)
	}
}

func searchCmd(ctx context.Context, repo Repository, index int, title string) tea.Cmd {
	return func() tea.Msg {
		rows, err := repo.SearchPaths(ctx, title, SearchLimit)
		if err != nil {
			return errMsg{op: "search", err: err}
		}

		return resultsMsg{index: index, rows: rows}
	}
}

func saveCmd(ctx context.Context, repo Repository, index int, id int64, episodes string) tea.Cmd {
	return func() tea.Msg {
		if err := repo.UpdateEpisodes(ctx, id, episodes); err != nil {
			return errMsg{op: "save", err: err}
		}

		return savedMsg{index: index, episodes: episodes}
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.episodes.SetWidth(msg.Width - 2) //nolint:gomnd
		m.filepath.Width = msg.Width - len(m.filepath.Prompt) - 2 //nolint:gomnd

		return m, nil
	case errMsg:
		m.busy = false
		m.status = msg.op + " error: " + msg.err.Error()

		return m, nil
	case titlesMsg:
		m.busy = false
		m.titles = []models.MediaTitle(msg)

		if len(m.titles) == 0 {
			m.index = -1
			m.status = "no titles found"

			return m, nil
		}

		m.index = 0
		m.showCurrent()

		return m, nil
	case resultsMsg:
		m.busy = false

		if msg.index != m.index {
			return m, nil
		}

		m.results = msg.rows
		m.cursor, m.selected = 0, -1

		if len(m.results) == 0 {
			m.status = "no results"
		} else {
			m.status = fmt.Sprintf("found %d results", len(m.results))
		}

		return m, nil
	case savedMsg:
		m.busy = false

		if msg.index >= 0 && msg.index < len(m.titles) {
			m.titles[msg.index].Episodes = msg.episodes
		}

		if msg.index != m.index {
			return m, nil
		}

		if m.index < len(m.titles)-1 {
			m.index++
			m.showCurrent()
			m.status = "saved, " + m.status

			return m, nil
		}

		m.status = "saved, processed all titles"

		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) updateKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type { //nolint:exhaustive
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlS:
		return m.save()
	case tea.KeyTab:
		if m.focus == focusEpisodes {
			m.blur()
		} else {
			m.blur()
			m.focus = focusEpisodes
			cmd := m.episodes.Focus()

			return m, cmd
		}

		return m, nil
	case tea.KeyEsc:
		m.blur()

		return m, nil
	}

	if m.focus == focusFilepath && k.Type == tea.KeyEnter {
		m.blur()

		return m, nil
	}

	if m.focus != focusNone {
		return m.updateFocused(k)
	}

	switch k.Type { //nolint:exhaustive
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}

		return m, nil
	case tea.KeySpace:
		m.toggleSelected()

		return m, nil
	case tea.KeyRunes:
	default:
		return m, nil
	}

	switch string(k.Runes) {
	case "q":
		return m, tea.Quit
	case "l":
		if m.busy {
			return m, nil
		}

		m.busy = true
		m.status = "loading titles..."

		return m, loadTitlesCmd(m.ctx, m.repo)
	case "p":
		if m.index > 0 {
			m.index--
			m.showCurrent()
		}
	case "n":
		if m.index >= 0 && m.index < len(m.titles)-1 {
			m.index++
			m.showCurrent()
		}
	case "s":
		return m.search()
	case "a":
		m.appendPath()
	case "f":
		m.blur()
		m.focus = focusFilepath
		cmd := m.filepath.Focus()

		return m, cmd
	case "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	}

	return m, nil
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case focusEpisodes:
		m.episodes, cmd = m.episodes.Update(msg)
	case focusFilepath:
		m.filepath, cmd = m.filepath.Update(msg)
	case focusNone:
	}

	return m, cmd
}

func (m *Model) blur() {
	m.episodes.Blur()
	m.filepath.Blur()
	m.focus = focusNone
}

func (m *Model) current() (models.MediaTitle, bool) {
	if m.index < 0 || m.index >= len(m.titles) {
		return models.MediaTitle{}, false
	}

	return m.titles[m.index], true
}

// showCurrent resets the per-title fields for the title at m.index.
func (m *Model) showCurrent() {
	t, ok := m.current()
	if !ok {
		m.episodes.SetValue("")
		m.filepath.SetValue("")
		m.status = "out of range"

		return
	}

	m.episodes.SetValue(t.Episodes)
	m.filepath.SetValue("")
	m.results = nil
	m.cursor, m.selected = 0, -1
	m.status = fmt.Sprintf("showing %d/%d", m.index+1, len(m.titles))
}

func (m Model) search() (tea.Model, tea.Cmd) {
	t, ok := m.current()
	if !ok || strings.TrimSpace(t.Title) == "" {
		m.status = "no title to search"

		return m, nil
	}

	m.busy = true
	m.status = "searching..."

	return m, searchCmd(m.ctx, m.repo, m.index, t.Title)
}

// toggleSelected selects the result under the cursor and deselects any
// other; selecting the selected row again clears the selection.
func (m *Model) toggleSelected() {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return
	}

	if m.selected == m.cursor {
		m.selected = -1
		m.filepath.SetValue("")

		return
	}

	m.selected = m.cursor
	m.filepath.SetValue(m.results[m.cursor].FilePath)
}

func (m *Model) appendPath() {
	p := strings.TrimSpace(m.filepath.Value())
	if p == "" {
		m.status = "no file path to add"

		return
	}

	text := strings.TrimRight(m.episodes.Value(), "\n")
	if text != "" {
		text += "\n"
	}

	m.episodes.SetValue(text + p)
	m.status = "added " + p
}

func (m Model) save() (tea.Model, tea.Cmd) {
	t, ok := m.current()
	if !ok || m.busy {
		return m, nil
	}

	m.busy = true
	m.status = "saving..."

	return m, saveCmd(m.ctx, m.repo, m.index, t.ID, strings.TrimSpace(m.episodes.Value()))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("PathMatcher\n\n")

	if t, ok := m.current(); ok {
		fmt.Fprintf(&b, "Title: %s  (%d/%d)\n", t.Title, m.index+1, len(m.titles))
	} else {
		b.WriteString("Title: -\n")
	}

	b.WriteString(m.filepath.View() + "\n\n")
	b.WriteString("Search results:\n")

	if len(m.results) == 0 {
		b.WriteString("  (none)\n")
	}

	start := 0
	if m.cursor >= resultsWindow {
		start = m.cursor - resultsWindow + 1
	}

	for i := start; i < len(m.results) && i < start+resultsWindow; i++ {
		pointer, box := "  ", "[ ]"
		if i == m.cursor {
			pointer = "> "
		}

		if i == m.selected {
			box = "[x]"
		}

		fmt.Fprintf(&b, "%s%s %s\n", pointer, box, m.results[i].FilePath)
	}

	b.WriteString("\nEpisodes:\n")
	b.WriteString(m.episodes.View() + "\n\n")
	b.WriteString("Status: " + m.status + "\n")
	b.WriteString("l load  p/n prev/next  s search  space select  a add path  f edit path  " +
		"tab episodes  ctrl+s save  q quit\n")

	return b.String()
}
