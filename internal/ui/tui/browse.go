// Package tui implements the interactive skill browser built on BubbleTea.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/render"
)

// BrowseAction represents the action to perform on a selected skill.
type BrowseAction int

const (
	// BrowseActionNone means no action was taken (user quit).
	BrowseActionNone BrowseAction = iota
	// BrowseActionShow means the user wants the skill printed after exit.
	BrowseActionShow
	// BrowseActionPath means the user wants the skill path printed after exit.
	BrowseActionPath
)

// BrowseResult contains the result of the browse TUI interaction.
type BrowseResult struct {
	Action BrowseAction
	Skill  model.Skill
}

// browseKeyMap defines the key bindings for the browse screen.
type browseKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Preview  key.Binding
	Show     key.Binding
	Path     key.Binding
	Filter   key.Binding
	ClearFlt key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultBrowseKeyMap() browseKeyMap {
	return browseKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Preview: key.NewBinding(
			key.WithKeys("enter", "v"),
			key.WithHelp("enter/v", "preview"),
		),
		Show: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "show"),
		),
		Path: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy path"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowseModel is the BubbleTea model for interactive library browsing.
type BrowseModel struct {
	table        table.Model
	skills       []model.Skill
	filtered     []model.Skill
	keys         browseKeyMap
	result       BrowseResult
	filter       string
	filtering    bool
	showHelp     bool
	width        int
	height       int
	columnWidths browseColumnWidths
	phase        browsePhase
	previewSkill model.Skill
	viewport     viewport.Model
	ready        bool
	quitting     bool
}

// Styles for the browse screen.
var browseStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Status      lipgloss.Style
	DetailBox   lipgloss.Style
	DetailTitle lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	DetailBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	DetailTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
}

type browsePhase int

const (
	browsePhaseList browsePhase = iota
	browsePhasePreview
)

const (
	browseNameWidth     = 25
	browseKindWidth     = 10
	browseSourceWidth   = 10
	browseDescWidth     = 45
	browseColumnPadding = 2
	browseColumnCount   = 4
	browseDetailLines   = 3
	browseDetailGap     = 1
	browseDetailHeight  = browseDetailLines + 1 + 2 // title + content + border
)

type browseColumnWidths struct {
	name   int
	kind   int
	source int
	desc   int
}

// NewBrowseModel creates a new browse model over the given skills.
func NewBrowseModel(skills []model.Skill) BrowseModel {
	sort.Slice(skills, func(i, j int) bool {
		return strings.ToLower(skills[i].Name) < strings.ToLower(skills[j].Name)
	})

	columns, columnWidths := browseColumns(0)

	m := BrowseModel{
		skills:       skills,
		filtered:     skills,
		keys:         defaultBrowseKeyMap(),
		columnWidths: columnWidths,
		phase:        browsePhaseList,
	}

	rows := m.skillRows(skills)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	return m
}

func (m BrowseModel) skillRows(skills []model.Skill) []table.Row {
	rows := make([]table.Row, len(skills))
	for i, s := range skills {
		rows[i] = table.Row{
			truncateText(s.Name, m.columnWidths.name),
			truncateText(string(s.Kind), m.columnWidths.kind),
			truncateText(string(s.Source), m.columnWidths.source),
			truncateText(s.Description, m.columnWidths.desc),
		}
	}
	return rows
}

func browseColumns(totalWidth int) ([]table.Column, browseColumnWidths) {
	widths := browseColumnWidths{
		name:   browseNameWidth,
		kind:   browseKindWidth,
		source: browseSourceWidth,
		desc:   browseDescWidth,
	}

	if totalWidth > 0 {
		baseTotal := widths.name + widths.kind + widths.source + widths.desc +
			(browseColumnPadding * browseColumnCount)
		extra := totalWidth - baseTotal
		if extra > 0 {
			nameExtra := extra / 3
			widths.name += nameExtra
			widths.desc += extra - nameExtra
		}
	}

	columns := []table.Column{
		{Title: "Name", Width: widths.name},
		{Title: "Kind", Width: widths.kind},
		{Title: "Source", Width: widths.source},
		{Title: "Description", Width: widths.desc},
	}

	return columns, widths
}

func (m *BrowseModel) updateColumns(totalWidth int) {
	columns, widths := browseColumns(totalWidth)
	m.columnWidths = widths
	m.table.SetColumns(columns)
}

func (m BrowseModel) detailPanelWidth() int {
	if m.width > 0 {
		return m.width
	}
	return m.columnWidths.name + m.columnWidths.kind + m.columnWidths.source + m.columnWidths.desc +
		(browseColumnPadding * browseColumnCount)
}

func (m BrowseModel) renderDetailPanel() string {
	width := m.detailPanelWidth()
	contentWidth := max(width-4, 10)

	skill := m.selectedSkill()
	description := strings.TrimSpace(skill.Description)
	if description == "" {
		description = "No description available."
	}

	lines := wrapText(description, contentWidth, browseDetailLines)
	lines = padLines(lines, browseDetailLines)

	header := browseStyles.DetailTitle.Render("Description (selected)")
	content := append([]string{header}, lines...)

	return browseStyles.DetailBox.Width(width).Render(strings.Join(content, "\n"))
}

// Init implements tea.Model.
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case browsePhasePreview:
		return m.updatePreview(msg)
	default:
		return m.updateList(msg)
	}
}

func (m BrowseModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for title, help, status, and the detail panel.
		newHeight := max(msg.Height-10-browseDetailHeight-browseDetailGap, 5)
		m.table.SetHeight(newHeight)
		m.updateColumns(msg.Width)
		m.table.SetRows(m.skillRows(m.filtered))

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
				return m, nil
			case "esc":
				m.filter = ""
				m.filtering = false
				m.applyFilter()
				return m, nil
			case "backspace":
				if len(m.filter) > 0 {
					m.filter = m.filter[:len(m.filter)-1]
					m.applyFilter()
				}
				return m, nil
			default:
				if len(msg.String()) == 1 {
					m.filter += msg.String()
					m.applyFilter()
				}
				return m, nil
			}
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, nil

		case key.Matches(msg, m.keys.ClearFlt):
			m.filter = ""
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Preview):
			if len(m.filtered) > 0 {
				m.previewSkill = m.selectedSkill()
				m.phase = browsePhasePreview
				m.ready = false
				m.ensurePreviewViewport()
				return m, nil
			}
			return m, nil

		case key.Matches(msg, m.keys.Show):
			if len(m.filtered) > 0 {
				m.result = BrowseResult{
					Action: BrowseActionShow,
					Skill:  m.selectedSkill(),
				}
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Path):
			if len(m.filtered) > 0 {
				m.result = BrowseResult{
					Action: BrowseActionPath,
					Skill:  m.selectedSkill(),
				}
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BrowseModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensurePreviewViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.phase = browsePhaseList
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *BrowseModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.skills
	} else {
		var filtered []model.Skill
		lowerFilter := strings.ToLower(m.filter)
		for _, s := range m.skills {
			if browseMatches(s, lowerFilter) {
				filtered = append(filtered, s)
			}
		}
		m.filtered = filtered
	}
	m.table.SetRows(m.skillRows(m.filtered))
	m.table.SetCursor(0)
}

func browseMatches(s model.Skill, lowerFilter string) bool {
	if strings.Contains(strings.ToLower(s.Name), lowerFilter) ||
		strings.Contains(strings.ToLower(string(s.Kind)), lowerFilter) ||
		strings.Contains(strings.ToLower(string(s.Source)), lowerFilter) ||
		strings.Contains(strings.ToLower(s.Description), lowerFilter) {
		return true
	}
	for _, kw := range s.Keywords {
		if strings.Contains(strings.ToLower(kw), lowerFilter) {
			return true
		}
	}
	return false
}

func (m BrowseModel) selectedSkill() model.Skill {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor]
	}
	return model.Skill{}
}

// View implements tea.Model.
func (m BrowseModel) View() string {
	if m.quitting {
		return ""
	}

	if m.phase == browsePhasePreview {
		return m.viewPreview()
	}

	var b strings.Builder

	title := browseStyles.Title.Render("📚 Skill Library")
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		filterStr := browseStyles.Filter.Render("Filter: ")
		filterVal := browseStyles.FilterInput.Render(m.filter)
		if m.filtering {
			filterVal += "█"
		}
		b.WriteString(filterStr + filterVal + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(m.renderDetailPanel())
	b.WriteString("\n")

	status := fmt.Sprintf("%d skill(s)", len(m.filtered))
	if m.filter != "" {
		status = fmt.Sprintf("%d of %d skill(s) (filtered)", len(m.filtered), len(m.skills))
	}
	b.WriteString(browseStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m BrowseModel) viewPreview() string {
	m.ensurePreviewViewport()
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	title := browseStyles.Title.Render(fmt.Sprintf("📖 %s", m.previewSkill.Name))
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	scrollPercent := int(m.viewport.ScrollPercent() * 100)
	status := fmt.Sprintf("Scroll: %d%% • Press b or Esc to go back", scrollPercent)
	b.WriteString(browseStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderPreviewHelp())
	} else {
		keys := []string{
			"↑/↓ scroll",
			"b back",
			"? help",
			"q quit",
		}
		b.WriteString(browseStyles.Help.Render(strings.Join(keys, " • ")))
	}

	return b.String()
}

func (m *BrowseModel) ensurePreviewViewport() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	headerHeight := 4
	footerHeight := 4
	viewportHeight := max(m.height-headerHeight-footerHeight, 5)

	if !m.ready {
		m.viewport = viewport.New(m.width-2, viewportHeight)
		m.viewport.SetContent(m.buildPreviewContent(m.viewport.Width))
		m.ready = true
		return
	}

	m.viewport.Width = m.width - 2
	m.viewport.Height = viewportHeight
	m.viewport.SetContent(m.buildPreviewContent(m.viewport.Width))
}

func (m BrowseModel) buildPreviewContent(width int) string {
	skill := m.previewSkill
	if skill.Name == "" {
		return "No skill selected."
	}

	var b strings.Builder

	titleCaser := cases.Title(language.English)

	b.WriteString(browseStyles.DetailTitle.Render(skill.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Kind: %s\n", titleCaser.String(string(skill.Kind))))
	b.WriteString(fmt.Sprintf("  Source: %s\n", titleCaser.String(string(skill.Source))))
	if skill.Path != "" {
		b.WriteString(fmt.Sprintf("  Path: %s\n", skill.Path))
	}
	if len(skill.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("  Keywords: %s\n", strings.Join(skill.Keywords, ", ")))
	}
	b.WriteString("\n")

	content := strings.TrimSpace(skill.Content)
	if content == "" {
		b.WriteString("No content.")
		return b.String()
	}

	r := render.New(render.Options{Width: width})
	b.WriteString(r.Render(content))
	return b.String()
}

func (m BrowseModel) renderShortHelp() string {
	keys := []string{
		"↑/↓ navigate",
		"enter preview",
		"o show",
		"c copy path",
		"/ filter",
		"? help",
		"q quit",
	}
	return browseStyles.Help.Render(strings.Join(keys, " • "))
}

func (m BrowseModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down
  g/Home   Go to top
  G/End    Go to bottom

Actions:
  Enter/v  Preview rendered skill
  o        Show skill after exit
  c        Copy skill path

Filter:
  /        Start filtering (by name, kind, source, description, or keyword)
  Esc      Clear filter
  Enter    Finish filtering

General:
  ?        Toggle full help
  q        Quit`
	return browseStyles.Help.Render(help)
}

func (m BrowseModel) renderPreviewHelp() string {
	help := `Navigation:
  ↑/k      Scroll up
  ↓/j      Scroll down
  g/Home   Top
  G/End    Bottom

Actions:
  b/Esc    Back to list

General:
  ?        Toggle full help
  q        Quit`
	return browseStyles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m BrowseModel) Result() BrowseResult {
	return m.result
}

// RunBrowse runs the interactive browser and returns the selected action.
func RunBrowse(skills []model.Skill) (BrowseResult, error) {
	if len(skills) == 0 {
		return BrowseResult{}, nil
	}

	m := NewBrowseModel(skills)
	finalModel, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return BrowseResult{}, err
	}

	if bm, ok := finalModel.(BrowseModel); ok {
		return bm.Result(), nil
	}

	return BrowseResult{}, nil
}
