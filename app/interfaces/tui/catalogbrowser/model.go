// Package catalogbrowser is a terminal browser over a catalog.CatalogCache: one tab per schema,
// and the tables of the selected schema below.
package catalogbrowser

import (
	"context"
	"fmt"
	"strings"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const EmptySchemaText = "No tables found in this schema"

type Model struct {
	ctx       context.Context
	cache     *catalog.CatalogCache
	selection *catalog.Selection

	schemas        []string
	selected       int
	tables         []string
	loadingSchemas bool
	loadingTables  bool
	err            error

	theme   Theme
	width   int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

func NewModel(ctx context.Context, cache *catalog.CatalogCache) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		ctx:            ctx,
		cache:          cache,
		selection:      &catalog.Selection{},
		loadingSchemas: true,
		theme:          ThemeSystem,
		spinner:        s,
		help:           help.New(),
		keys:           defaultKeys(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSchemas())
}

func (m Model) loadSchemas() tea.Cmd {
	ctx, cache := m.ctx, m.cache
	return func() tea.Msg {
		schemas, err := cache.ListSchemas(ctx)
		return schemasLoadedMsg{Schemas: schemas, Err: err}
	}
}

func (m Model) loadTables(schema string, epoch uint64) tea.Cmd {
	ctx, cache := m.ctx, m.cache
	return func() tea.Msg {
		tables, err := cache.FetchTables(ctx, schema)
		return tablesLoadedMsg{Schema: schema, Epoch: epoch, Tables: tables, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case schemasLoadedMsg:
		m.loadingSchemas = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.schemas = append([]string(nil), msg.Schemas...)
		schema, ok := catalog.SelectDefaultSchema(m.schemas)
		if !ok {
			return m, nil
		}
		for i, s := range m.schemas {
			if s == schema {
				m.selected = i
			}
		}
		return m.selectSchema(m.selected)

	case tablesLoadedMsg:
		// the user has moved on since this fetch started
		if !m.selection.IsCurrent(msg.Epoch) {
			return m, nil
		}
		m.loadingTables = false
		if msg.Err != nil {
			m.err = msg.Err
			m.tables = nil
			return m, nil
		}
		m.err = nil
		m.tables = msg.Tables
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Theme):
		m.theme = m.theme.Next()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if len(m.schemas) == 0 {
			m.loadingSchemas = true
			m.err = nil
			return m, m.loadSchemas()
		}
		return m.selectSchema(m.selected)

	case key.Matches(msg, m.keys.Next):
		if len(m.schemas) == 0 {
			return m, nil
		}
		return m.selectSchema((m.selected + 1) % len(m.schemas))

	case key.Matches(msg, m.keys.Prev):
		if len(m.schemas) == 0 {
			return m, nil
		}
		return m.selectSchema((m.selected + len(m.schemas) - 1) % len(m.schemas))
	}
	return m, nil
}

func (m Model) selectSchema(i int) (tea.Model, tea.Cmd) {
	m.selected = i
	schema := m.schemas[i]
	epoch := m.selection.Select(schema)
	m.loadingTables = true
	m.tables = nil
	m.err = nil
	return m, m.loadTables(schema, epoch)
}

// SelectedSchema is the schema whose tables are shown, or "" before schemas load.
func (m Model) SelectedSchema() string {
	if len(m.schemas) == 0 {
		return ""
	}
	return m.schemas[m.selected]
}

func (m Model) Tables() []string {
	return append([]string(nil), m.tables...)
}

func (m Model) Theme() Theme {
	return m.theme
}

func (m Model) View() string {
	p := m.theme.palette()
	var b strings.Builder

	b.WriteString(p.title.Render("Catalog"))
	b.WriteString(p.muted.Render(fmt.Sprintf("  theme: %s", m.theme)))
	b.WriteString("\n\n")

	switch {
	case m.loadingSchemas:
		b.WriteString(fmt.Sprintf("%s Loading schemas...", m.spinner.View()))
	case len(m.schemas) == 0 && m.err != nil:
		b.WriteString(p.err.Render("Error: " + m.err.Error()))
	case len(m.schemas) == 0:
		b.WriteString(p.muted.Render("No schemas found"))
	default:
		tabs := make([]string, 0, len(m.schemas))
		for i, schema := range m.schemas {
			if i == m.selected {
				tabs = append(tabs, p.selectedTab.Render(schema))
			} else {
				tabs = append(tabs, p.tab.Render(schema))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
		b.WriteString("\n\n")
		b.WriteString(m.tablesView(p))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) tablesView(p palette) string {
	switch {
	case m.loadingTables:
		return fmt.Sprintf("%s Loading tables...", m.spinner.View())
	case m.err != nil:
		return p.err.Render("Error: " + m.err.Error())
	case len(m.tables) == 0:
		return p.muted.Render(EmptySchemaText)
	}
	lines := make([]string, 0, len(m.tables))
	for _, table := range m.tables {
		lines = append(lines, p.item.Render("• "+table))
	}
	return strings.Join(lines, "\n")
}

// Run starts the browser on the terminal and blocks until the user quits.
func Run(ctx context.Context, cache *catalog.CatalogCache) error {
	_, err := tea.NewProgram(NewModel(ctx, cache), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
