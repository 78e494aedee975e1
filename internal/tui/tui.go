// Package tui renders a live view of captured interactions: a scrolling
// list fed from the event bus, a detail preview, and an analytics
// header. It is a read-only consumer; persistence happens elsewhere.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aiusage/internal/event"
	"aiusage/internal/record"
	"aiusage/internal/store"
)

// maxListItems caps how many interactions the view keeps around.
const maxListItems = 500

type interactionMsg struct {
	in record.Interaction
}

type model struct {
	st         *store.Store
	items      []record.Interaction // newest last
	summary    store.Summary
	cursor     int
	listOffset int
	follow     bool // stick to the newest item as events arrive
	preview    viewport.Model
	previewID  string
	width      int
	height     int
	ready      bool
	quitting   bool
}

func initialModel(st *store.Store) model {
	items := st.Query(store.Filter{})
	if len(items) > maxListItems {
		items = items[len(items)-maxListItems:]
	}
	m := model{
		st:      st,
		items:   items,
		summary: st.Analytics(),
		follow:  true,
		preview: viewport.New(0, 0),
	}
	if len(m.items) > 0 {
		m.cursor = len(m.items) - 1
	}
	return m
}

// Run starts the live viewer and blocks until it exits. New
// interactions published on the bus appear as they are captured.
func Run(st *store.Store, bus *event.Bus[record.Interaction]) error {
	m := initialModel(st)
	p := tea.NewProgram(m, tea.WithAltScreen())

	sub := bus.Subscribe(func(in record.Interaction) {
		p.Send(interactionMsg{in: in})
	})
	defer bus.Unsubscribe(sub)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = viewport.New(m.previewWidth(), m.panelHeight())
		m.renderCurrentPreview()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.follow = false
				m.adjustListScroll(m.panelHeight())
				m.renderCurrentPreview()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.follow = m.cursor == len(m.items)-1
				m.adjustListScroll(m.panelHeight())
				m.renderCurrentPreview()
			}
			return m, nil

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}
		return m, nil

	case interactionMsg:
		m.items = append(m.items, msg.in)
		if len(m.items) > maxListItems {
			drop := len(m.items) - maxListItems
			m.items = m.items[drop:]
			m.cursor -= drop
			if m.cursor < 0 {
				m.cursor = 0
			}
		}
		if m.follow {
			m.cursor = len(m.items) - 1
			m.adjustListScroll(m.panelHeight())
			m.renderCurrentPreview()
		}
		m.summary = m.st.Analytics()
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	header := m.headerBar()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	status := m.statusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, status)
}

func (m model) headerBar() string {
	title := styleHeader.Render("aiusage")
	stats := styleHeaderStat.Render(fmt.Sprintf(
		"%d interactions | avg %d ms | %d%% accepted",
		m.summary.TotalCount, m.summary.AverageLatency, m.summary.AcceptanceRate,
	))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, stats)
}

func (m model) statusBar() string {
	parts := []string{
		fmt.Sprintf("%d shown", len(m.items)),
		"up/dn navigate",
		"C-u/C-d preview",
		"q quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

// renderCurrentPreview refreshes the detail pane for the selected item.
func (m *model) renderCurrentPreview() {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		m.preview.SetContent("")
		m.previewID = ""
		return
	}
	in := m.items[m.cursor]
	if in.ID == m.previewID {
		return
	}
	m.preview.SetContent(renderDetail(in, m.previewWidth()))
	m.preview.GotoTop()
	m.previewID = in.ID
}

// layout helpers

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// header (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}
