package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	SongDetailView
	SyncView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	songs        *repositories.SongRepository
	engine       *tasks.SyncEngine
	width        int
	height       int
	songList     list.Model
	selectedSong *models.Song
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.SyncResult
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	back  key.Binding
	sync  key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		sync:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.sync, k.quit},
	}
}

// songItem wraps [models.Song] to implement list.Item.
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string {
	return fmt.Sprintf("%d %s", i.song.Ordinal, i.song.Title)
}
func (i songItem) Title() string {
	return fmt.Sprintf("%d · %s", i.song.Ordinal, i.song.Title)
}
func (i songItem) Description() string {
	desc := fmt.Sprintf("%d verses", len(i.song.Verses))
	if len(i.song.Categories) > 0 {
		names := make([]string, 0, len(i.song.Categories))
		for _, c := range i.song.Categories {
			names = append(names, c.Name)
		}
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(names, ", "))
	}
	return desc
}

type songsLoadedMsg struct {
	songs []models.Song
	err   error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, songs *repositories.SongRepository, engine *tasks.SyncEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   SongListView,
		songs:  songs,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the cached catalog.
func (m *Model) Init() tea.Cmd {
	return m.loadSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songList.Width() == 0 {
			m.songList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case SongDetailView:
			return m.handleSongDetailKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		}

	case songsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.songs))
		for i, song := range msg.songs {
			items[i] = songItem{song: song}
		}
		m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = fmt.Sprintf("Songbook (%d songs)", len(msg.songs))
		m.songList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.progressChan = nil
		m.view = SongListView
		return m, m.loadSongs()
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != SyncView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case SongDetailView:
		return m.renderSongDetail()
	case SyncView:
		return m.renderSync()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		if m.songList.FilterState() != list.Filtering {
			m.view = SyncView
			return m, m.startSync()
		}
	case "enter":
		selected := m.songList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(songItem); ok {
				song := item.song
				m.selectedSong = &song
				m.view = SongDetailView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleSongDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SongListView
		m.selectedSong = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == SongListView {
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadSongs() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.songs.List()
		return songsLoadedMsg{songs: songs, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.SyncAll(m.ctx, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.sync, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	var status string
	if m.result != nil {
		status = styles.ok.Render(fmt.Sprintf(
			"Synced %d songs, %d/%d note sheets",
			m.result.Songs, m.result.AssetsStored, m.result.AssetsAttempted,
		)) + "\n"
	}

	return fmt.Sprintf("%s\n%s%s", m.songList.View(), status, helpView)
}

func (m *Model) renderSongDetail() string {
	if m.selectedSong == nil {
		return ""
	}

	title := styles.title.Render(
		fmt.Sprintf("Nr. %d · %s", m.selectedSong.Ordinal, m.selectedSong.Title),
	)

	var body strings.Builder
	for _, verse := range m.selectedSong.Verses {
		body.WriteString(strconv.Itoa(verse.Number))
		body.WriteString(".\n")
		body.WriteString(verse.Text)
		body.WriteString("\n")
		if verse.Annotation != "" {
			body.WriteString(styles.help.Render("("+verse.Annotation+")") + "\n")
		}
		body.WriteString("\n")
	}

	var credits string
	if authors := creditLine(m.selectedSong); authors != "" {
		credits = styles.help.Render(authors) + "\n\n"
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s%s", title, credits, body.String(), helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Songbook")

	var phase string
	switch m.progress.Phase {
	case tasks.PhaseFetchingSongs:
		phase = "Fetching song catalog..."
	case tasks.PhasePersistingSongs:
		phase = fmt.Sprintf("Storing %d songs...", m.progress.Total)
	case tasks.PhaseDownloadingAssets:
		phase = fmt.Sprintf("Downloading note sheets (%d/%d)", m.progress.Current, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func creditLine(song *models.Song) string {
	var parts []string
	if len(song.TextAuthors) > 0 {
		parts = append(parts, "Text: "+authorNames(song.TextAuthors))
	}
	if len(song.MelodyAuthors) > 0 {
		parts = append(parts, "Melody: "+authorNames(song.MelodyAuthors))
	}
	return strings.Join(parts, " • ")
}

func authorNames(authors []models.Author) string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Name())
	}
	return strings.Join(names, ", ")
}
