package pathmatcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	titles    []models.MediaTitle
	paths     []models.MediaPath
	searchErr error

	searched []string
	limit    int
	updated  map[int64]string
}

func (r *fakeRepo) ListTitles(context.Context) ([]models.MediaTitle, error) {
	return append([]models.MediaTitle(nil), r.titles...), nil
}

func (r *fakeRepo) SearchPaths(_ context.Context, title string, limit int) ([]models.MediaPath, error) {
	r.searched = append(r.searched, title)
	r.limit = limit

	if r.searchErr != nil {
		return nil, r.searchErr
	}

	var out []models.MediaPath

	for _, p := range r.paths {
		if strings.Contains(p.FilePath, title) {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakeRepo) UpdateEpisodes(_ context.Context, id int64, episodes string) error {
	if r.updated == nil {
		r.updated = make(map[int64]string)
	}

	r.updated[id] = episodes

	return nil
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		titles: []models.MediaTitle{
			{ID: 10, Title: "Unearthly Child", Episodes: "part one"},
			{ID: 11, Title: "Daleks"},
			{ID: 12, Title: "Edge of Destruction"},
		},
		paths: []models.MediaPath{
			{ID: 1, FilePath: "/media/s01/Unearthly Child 1.mkv"},
			{ID: 2, FilePath: "/media/s01/Unearthly Child 2.mkv"},
			{ID: 3, FilePath: "/media/s01/Daleks 1.mkv"},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	nm, ok := next.(Model)
	require.True(t, ok)

	return nm, cmd
}

// sendAndRun delivers msg and feeds the message produced by its command back.
func sendAndRun(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	m, cmd := send(t, m, msg)
	require.NotNil(t, cmd)

	m, _ = send(t, m, cmd())

	return m
}

func loaded(t *testing.T, repo *fakeRepo) Model {
	t.Helper()

	return sendAndRun(t, New(context.Background(), repo), runes("l"))
}

func TestLoadAndNavigate(t *testing.T) {
	m := loaded(t, newRepo())

	assert.Equal(t, 0, m.index)
	assert.Equal(t, "part one", m.episodes.Value())
	assert.Equal(t, "showing 1/3", m.status)
	assert.Contains(t, m.View(), "Title: Unearthly Child  (1/3)")

	m, _ = send(t, m, runes("n"))
	assert.Equal(t, 1, m.index)
	assert.Equal(t, "", m.episodes.Value())

	m, _ = send(t, m, runes("n"))
	m, _ = send(t, m, runes("n"))
	assert.Equal(t, 2, m.index)

	m, _ = send(t, m, runes("p"))
	assert.Equal(t, 1, m.index)
}

func TestLoadWithoutTitles(t *testing.T) {
	m := loaded(t, &fakeRepo{})

	assert.Equal(t, -1, m.index)
	assert.Equal(t, "no titles found", m.status)

	m, cmd := send(t, m, runes("s"))
	assert.Nil(t, cmd)
	assert.Equal(t, "no title to search", m.status)
}

func TestSearchSelectAppendSave(t *testing.T) {
	repo := newRepo()
	m := loaded(t, repo)

	m = sendAndRun(t, m, runes("s"))
	require.Equal(t, []string{"Unearthly Child"}, repo.searched)
	assert.Equal(t, SearchLimit, repo.limit)
	require.Len(t, m.results, 2)
	assert.Equal(t, "found 2 results", m.status)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, 1, m.selected)
	assert.Equal(t, "/media/s01/Unearthly Child 2.mkv", m.filepath.Value())

	// selection is exclusive
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, "/media/s01/Unearthly Child 1.mkv", m.filepath.Value())
	assert.Contains(t, m.View(), "> [x] /media/s01/Unearthly Child 1.mkv")
	assert.Contains(t, m.View(), "  [ ] /media/s01/Unearthly Child 2.mkv")

	// selecting again clears
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, -1, m.selected)
	assert.Equal(t, "", m.filepath.Value())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = send(t, m, runes("a"))
	assert.Equal(t, "part one\n/media/s01/Unearthly Child 1.mkv", m.episodes.Value())

	m = sendAndRun(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "part one\n/media/s01/Unearthly Child 1.mkv", repo.updated[10])
	assert.Equal(t, "part one\n/media/s01/Unearthly Child 1.mkv", m.titles[0].Episodes)

	// advanced to the next title with fresh fields
	assert.Equal(t, 1, m.index)
	assert.Empty(t, m.results)
	assert.Equal(t, "", m.filepath.Value())
	assert.Equal(t, "saved, showing 2/3", m.status)
}

func TestSaveLastTitle(t *testing.T) {
	repo := newRepo()
	m := loaded(t, repo)

	m, _ = send(t, m, runes("n"))
	m, _ = send(t, m, runes("n"))

	m = sendAndRun(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, 2, m.index)
	assert.Equal(t, "saved, processed all titles", m.status)
	assert.Contains(t, repo.updated, int64(12))
}

func TestStaleSearchResultsDropped(t *testing.T) {
	m := loaded(t, newRepo())

	m, cmd := send(t, m, runes("s"))
	require.NotNil(t, cmd)

	m, _ = send(t, m, runes("n"))
	m, _ = send(t, m, cmd())

	assert.Empty(t, m.results)
	assert.Equal(t, 1, m.index)
}

func TestSearchErrorShown(t *testing.T) {
	repo := newRepo()
	repo.searchErr = errors.New("connection reset")

	m := loaded(t, repo)
	m = sendAndRun(t, m, runes("s"))

	assert.Equal(t, "search error: connection reset", m.status)
	assert.False(t, m.busy)
}

func TestAppendWithoutPath(t *testing.T) {
	m := loaded(t, newRepo())

	m, _ = send(t, m, runes("a"))
	assert.Equal(t, "part one", m.episodes.Value())
	assert.Equal(t, "no file path to add", m.status)
}

func TestEpisodesFocusCapturesKeys(t *testing.T) {
	m := loaded(t, newRepo())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusEpisodes, m.focus)

	m, _ = send(t, m, runes("q"))
	assert.Contains(t, m.episodes.Value(), "q")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusNone, m.focus)

	_, cmd := send(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
