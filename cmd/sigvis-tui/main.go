package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/config"
	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/render"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("240"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Underline(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	warnValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginLeft(2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)
)

// Views
type view int

const (
	dashboardView view = iota
	verticesView
	edgesView
	warningsView
	exportView
)

var viewNames = []string{"Dashboard", "Vertices", "Edges", "Warnings", "Export"}

// Key bindings
type keyMap struct {
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Aggregate key.Binding
	Export    key.Binding
	Confirm   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Refresh, k.Aggregate, k.Export, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Refresh, k.Aggregate},
		{k.Export, k.Confirm, k.Back, k.Quit},
	}
}

var keys = keyMap{
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh data"),
	),
	Aggregate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle aggregation"),
	),
	Export: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save svg"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model
type model struct {
	asm        *assembly.Assembler
	renderCfg  config.RenderConfig
	sourceName string

	currentView  view
	vertexTable  table.Model
	edgeTable    table.Model
	warningTable table.Model
	pathInput    textinput.Model
	help         help.Model
	keys         keyMap

	stats     assembly.Stats
	message   string
	messageOK bool
	width     int
	height    int
	startTime time.Time
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(asm *assembly.Assembler, cfg *config.Config) model {
	ti := textinput.New()
	ti.Placeholder = "diagram.svg"
	ti.CharLimit = 200
	ti.Width = 48

	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	vt := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 22},
			{Title: "Category", Width: 16},
			{Title: "Class", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	vt.SetStyles(tableStyles)

	et := table.New(
		table.WithColumns([]table.Column{
			{Title: "From", Width: 16},
			{Title: "To", Width: 16},
			{Title: "Status", Width: 14},
			{Title: "Responsible", Width: 14},
			{Title: "Description", Width: 28},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	et.SetStyles(tableStyles)

	wt := table.New(
		table.WithColumns([]table.Column{
			{Title: "Kind", Width: 20},
			{Title: "Table", Width: 8},
			{Title: "Column", Width: 12},
			{Title: "Row", Width: 5},
			{Title: "Message", Width: 44},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	wt.SetStyles(tableStyles)

	m := model{
		asm:          asm,
		renderCfg:    cfg.Render,
		sourceName:   describeSource(cfg),
		currentView:  dashboardView,
		vertexTable:  vt,
		edgeTable:    et,
		warningTable: wt,
		pathInput:    ti,
		help:         help.New(),
		keys:         keys,
		startTime:    time.Now(),
	}
	m.syncData()
	return m
}

func describeSource(cfg *config.Config) string {
	switch cfg.Dataset.Provider {
	case config.ProviderTemplate:
		return fmt.Sprintf("template:%s", cfg.Dataset.Template)
	case config.ProviderFile:
		return fmt.Sprintf("file:%s", cfg.Dataset.EdgePath)
	case config.ProviderSheet:
		return fmt.Sprintf("sheet:%s", cfg.Dataset.Sheet.SpreadsheetID)
	case config.ProviderS3:
		return fmt.Sprintf("s3://%s", cfg.Dataset.S3.Bucket)
	case config.ProviderPostgres:
		return "postgres"
	default:
		return cfg.Dataset.Provider
	}
}

// syncData repopulates the stats line and the three tables from the
// assembler's current graph.
func (m *model) syncData() {
	m.stats = m.asm.Stats()

	g := m.asm.Graph()
	if g == nil {
		m.vertexTable.SetRows(nil)
		m.edgeTable.SetRows(nil)
		m.warningTable.SetRows(nil)
		return
	}

	vrows := make([]table.Row, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		category := "-"
		if v.HasCategory() {
			category = v.Category
		}
		vrows = append(vrows, table.Row{v.Name, category, v.Class})
	}
	m.vertexTable.SetRows(vrows)

	erows := make([]table.Row, 0, len(g.Edges))
	for _, e := range g.Edges {
		erows = append(erows, table.Row{
			e.From,
			e.To,
			e.Status(),
			e.Attr(assembly.AttrResponsible),
			e.Attr(assembly.AttrDescription),
		})
	}
	m.edgeTable.SetRows(erows)

	wrows := make([]table.Row, 0, m.stats.Warnings)
	for _, w := range m.asm.Warnings() {
		row := ""
		if w.Row > 0 {
			row = strconv.Itoa(w.Row)
		}
		wrows = append(wrows, table.Row{string(w.Kind), w.Table, w.Column, row, w.Message})
	}
	m.warningTable.SetRows(wrows)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.stats = m.asm.Stats()
		return m, tickCmd()

	case tea.KeyMsg:
		// The export view owns the keyboard while the path input is
		// focused, except for confirm/back/quit.
		if m.currentView == exportView {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.saveSVG()
				return m, nil
			case key.Matches(msg, m.keys.Back):
				m.pathInput.Blur()
				m.currentView = dashboardView
				return m, nil
			case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
				return m, tea.Quit
			}
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.currentView = (m.currentView + 1) % exportView
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.currentView = (m.currentView + exportView - 1) % exportView
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.Aggregate):
			m.toggleAggregation()
			return m, nil

		case key.Matches(msg, m.keys.Export):
			m.currentView = exportView
			m.pathInput.Focus()
			m.message = ""
			return m, textinput.Blink
		}
	}

	// Route remaining messages to the focused component.
	switch m.currentView {
	case verticesView:
		m.vertexTable, cmd = m.vertexTable.Update(msg)
	case edgesView:
		m.edgeTable, cmd = m.edgeTable.Update(msg)
	case warningsView:
		m.warningTable, cmd = m.warningTable.Update(msg)
	}
	return m, cmd
}

// reload re-fetches the source tables and rebuilds the graph.
func (m *model) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.asm.Reload(ctx); err != nil {
		m.message = fmt.Sprintf("Refresh failed: %v", err)
		m.messageOK = false
		return
	}
	m.syncData()
	m.message = fmt.Sprintf("Refreshed: %d vertices, %d edges", m.stats.VertexCount, m.stats.EdgeCount)
	m.messageOK = true
}

// toggleAggregation flips between the identity graph and the
// category-collapsed graph.
func (m *model) toggleAggregation() {
	next := assembly.ModeByCategory
	if m.asm.Mode() == assembly.ModeByCategory {
		next = assembly.ModeNone
	}

	if err := m.asm.SetMode(next); err != nil {
		m.message = fmt.Sprintf("Aggregation failed: %v", err)
		m.messageOK = false
		return
	}
	m.syncData()
	m.message = fmt.Sprintf("Aggregation mode: %s", next)
	m.messageOK = true
}

// saveSVG renders the current graph and writes it to the path in the
// export input.
func (m *model) saveSVG() {
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		path = m.pathInput.Placeholder
	}

	opts := []render.Option{
		render.WithLayout(m.renderCfg.Layout),
		render.WithCanvas(float64(m.renderCfg.Width), float64(m.renderCfg.Height)),
	}
	if m.renderCfg.Seed != 0 {
		opts = append(opts, render.WithSeed(m.renderCfg.Seed))
	}
	if m.renderCfg.Title != "" {
		opts = append(opts, render.WithTitle(m.renderCfg.Title))
	}

	renderer, err := render.New(m.asm, opts...)
	if err != nil {
		m.message = fmt.Sprintf("Export failed: %v", err)
		m.messageOK = false
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	artifact, err := renderer.Plot(ctx, render.FormatSVG)
	if err != nil {
		m.message = fmt.Sprintf("Export failed: %v", err)
		m.messageOK = false
		return
	}

	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		m.message = fmt.Sprintf("Export failed: %v", err)
		m.messageOK = false
		return
	}

	m.message = fmt.Sprintf("Saved %s (%d bytes)", path, len(artifact.Data))
	m.messageOK = true
	m.pathInput.Blur()
	m.currentView = dashboardView
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sig-vis"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.currentView {
	case dashboardView:
		b.WriteString(m.renderDashboard())
	case verticesView:
		b.WriteString(contentStyle.Render(m.vertexTable.View()))
	case edgesView:
		b.WriteString(contentStyle.Render(m.edgeTable.View()))
	case warningsView:
		b.WriteString(m.renderWarnings())
	case exportView:
		b.WriteString(m.renderExport())
	}
	b.WriteString("\n")

	if m.message != "" {
		style := errorStyle
		if m.messageOK {
			style = successStyle
		}
		b.WriteString(contentStyle.Render(style.Render(m.message)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(contentStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	b.WriteString("\n")

	return b.String()
}

func (m model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		if view(i) == m.currentView {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) renderDashboard() string {
	var b strings.Builder

	warnStyle := valueStyle
	if m.stats.Warnings > 0 {
		warnStyle = warnValueStyle
	}

	lastBuild := "-"
	if !m.stats.LastBuild.IsZero() {
		lastBuild = m.stats.LastBuild.UTC().Format(time.RFC3339)
	}

	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Source", m.sourceName, valueStyle},
		{"Vertices", strconv.Itoa(m.stats.VertexCount), valueStyle},
		{"Edges", strconv.Itoa(m.stats.EdgeCount), valueStyle},
		{"Mode", m.stats.Mode.String(), valueStyle},
		{"Warnings", strconv.Itoa(m.stats.Warnings), warnStyle},
		{"Last build", lastBuild, valueStyle},
		{"Uptime", time.Since(m.startTime).Round(time.Second).String(), valueStyle},
	}

	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.label))
		b.WriteString(row.style.Render(row.value))
		b.WriteString("\n")
	}

	return contentStyle.Render(b.String())
}

func (m model) renderWarnings() string {
	if m.stats.Warnings == 0 {
		return contentStyle.Render(successStyle.Render("No warnings. All rows assembled cleanly."))
	}
	return contentStyle.Render(m.warningTable.View())
}

func (m model) renderExport() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Write the current graph as SVG. Output path:"))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(m.pathInput.View()))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("enter to save, esc to cancel"))
	return b.String()
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// The TUI owns the terminal, so nothing logs to it.
	src, err := cfg.BuildSource(ctx, logging.NewNopLogger())
	if err != nil {
		fmt.Printf("Error building data source: %v\n", err)
		os.Exit(1)
	}

	mode, err := assembly.ParseMode(cfg.Dataset.Aggregation)
	if err != nil {
		fmt.Printf("Error parsing aggregation mode: %v\n", err)
		os.Exit(1)
	}

	asm, err := assembly.New(ctx, src, assembly.WithMode(mode))
	if err != nil {
		fmt.Printf("Error assembling graph: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(asm, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
