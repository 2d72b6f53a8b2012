// Package reportui provides the Bubble Tea report browser.
package reportui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/gamepulse/internal/model"
	"github.com/verte-zerg/gamepulse/internal/report"
	"github.com/verte-zerg/gamepulse/internal/stats"
)

const (
	screenPlayers = iota
	screenSessions
	screenReport
)

const (
	chartHeight     = 6
	chartLabelWidth = 8
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Source provides telemetry to the browser.
type Source interface {
	ListPlayers(ctx context.Context) ([]model.PlayerSummary, error)
	ListRecords(ctx context.Context, player string) ([]model.Record, error)
}

// Model implements the Bubble Tea report browser.
type Model struct {
	src Source
	cfg model.ReportConfig

	screen int
	errMsg string

	players  []model.PlayerSummary
	player   string
	reports  []report.Report
	selected int

	playerTable  table.Model
	sessionTable table.Model
	reportView   viewport.Model

	width  int
	height int
}

// NewModel constructs a report browser. When cfg.Player is set the browser
// opens directly on that player's sessions.
func NewModel(src Source, cfg model.ReportConfig) *Model {
	m := &Model{
		src:          src,
		cfg:          cfg,
		playerTable:  newTable(playerColumns()),
		sessionTable: newTable(sessionColumns()),
		reportView:   viewport.New(0, 0),
	}
	m.loadPlayers()
	if cfg.Player != "" {
		m.openPlayer(cfg.Player)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.drillDown()
			return m, tea.ClearScreen
		case "esc", "backspace":
			m.goBack()
			return m, tea.ClearScreen
		case "r":
			m.reload()
			return m, nil
		}
		return m.updateActive(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateActive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenPlayers:
		m.playerTable, cmd = m.playerTable.Update(msg)
	case screenSessions:
		m.sessionTable, cmd = m.sessionTable.Update(msg)
	case screenReport:
		m.reportView, cmd = m.reportView.Update(msg)
	}
	return m, cmd
}

func (m *Model) drillDown() {
	switch m.screen {
	case screenPlayers:
		if len(m.players) == 0 {
			return
		}
		m.openPlayer(m.players[m.playerTable.Cursor()].PlayerID)
	case screenSessions:
		if len(m.reports) == 0 {
			return
		}
		m.openReport(m.sessionTable.Cursor())
	}
}

func (m *Model) goBack() {
	switch m.screen {
	case screenReport:
		m.screen = screenSessions
		m.sessionTable.Focus()
	case screenSessions:
		m.screen = screenPlayers
		m.sessionTable.Blur()
		m.playerTable.Focus()
	}
}

func (m *Model) reload() {
	m.loadPlayers()
	if m.player != "" && m.screen != screenPlayers {
		m.openPlayer(m.player)
	}
}

func (m *Model) loadPlayers() {
	players, err := m.src.ListPlayers(context.Background())
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load players: %v", err)
		return
	}
	m.errMsg = ""
	m.players = players
	m.playerTable.SetRows(playerRows(players))
	m.playerTable.Focus()
}

func (m *Model) openPlayer(player string) {
	records, err := m.src.ListRecords(context.Background(), player)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load telemetry for %s: %v", player, err)
		return
	}
	m.errMsg = ""
	m.player = player
	m.reports = report.FilterSince(report.Build(player, records), m.cfg.Since)
	m.sessionTable.SetRows(sessionRows(m.reports))
	m.sessionTable.SetCursor(0)
	m.playerTable.Blur()
	m.sessionTable.Focus()
	m.screen = screenSessions
}

func (m *Model) openReport(idx int) {
	if idx < 0 || idx >= len(m.reports) {
		return
	}
	m.selected = idx
	m.reportView.SetContent(renderReport(m.reports[idx], m.width))
	m.reportView.GotoTop()
	m.sessionTable.Blur()
	m.screen = screenReport
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	navHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = navHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for _, t := range []*table.Model{&m.playerTable, &m.sessionTable} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	m.reportView.Width = m.width
	m.reportView.Height = bodyHeight
	if m.screen == screenReport {
		m.reportView.SetContent(renderReport(m.reports[m.selected], m.width))
	}
}

func (m *Model) renderHeader() string {
	labels := []string{"Players", "Sessions", "Report"}
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		if i == m.screen {
			parts = append(parts, activeNavStyle.Render(label))
		} else {
			parts = append(parts, inactiveNavStyle.Render(label))
		}
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return nav + "\n" + headerStyle.Render(truncateLine(m.contextLine(), m.width))
}

func (m *Model) contextLine() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	switch m.screen {
	case screenSessions:
		return fmt.Sprintf("Player: %s  sessions=%d  since=%s", m.player, len(m.reports), since)
	case screenReport:
		return fmt.Sprintf("Player: %s  %s", m.player, m.reports[m.selected].Session)
	default:
		return fmt.Sprintf("Players: %d  since=%s", len(m.players), since)
	}
}

func (m *Model) renderBody() string {
	switch m.screen {
	case screenSessions:
		if len(m.reports) == 0 {
			return "No sessions found."
		}
		return m.sessionTable.View()
	case screenReport:
		return m.reportView.View()
	default:
		if len(m.players) == 0 {
			return "No players found. Import telemetry with: gamepulse import <file>"
		}
		return m.playerTable.View()
	}
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Open: enter  Back: esc  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func renderReport(r report.Report, width int) string {
	cards := []string{
		metricCard("Duration", r.Duration),
		metricCard("Dominant emotion", r.DominantEmotion),
		metricCard("Score", humanize.Commaf(r.Score)),
		metricCard("Engagement", r.EngagementText),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	sections := []string{
		summary,
		headerStyle.Render(fmt.Sprintf("%s  Date: %s", r.Session, r.SessionDate)),
		"",
		strings.Join(report.LevelLines(r), "\n"),
		"",
		strings.Join(report.EmotionLines(r), "\n"),
	}
	if chart := levelChart(r, width); chart != "" {
		sections = append(sections, "", chart)
	}
	return strings.Join(sections, "\n")
}

func levelChart(r report.Report, width int) string {
	if len(r.Levels) < 2 {
		return ""
	}
	scores := make([]float64, 0, len(r.Levels))
	for _, l := range r.Levels {
		scores = append(scores, l.TotalScore)
	}
	plotWidth := stats.ChartWidthFor(width, chartLabelWidth)
	lines := stats.Chart(scores, plotWidth, chartHeight)
	return headerStyle.Render("Score by level") + "\n" + strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func playerColumns() []table.Column {
	return []table.Column{
		{Title: "Player", Width: 20},
		{Title: "Records", Width: 8},
		{Title: "Last activity", Width: 20},
	}
}

func playerRows(players []model.PlayerSummary) []table.Row {
	rows := make([]table.Row, 0, len(players))
	for _, p := range players {
		rows = append(rows, table.Row{
			p.PlayerID,
			humanize.Comma(int64(p.Records)),
			p.LastActivity.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Session", Width: 12},
		{Title: "Date", Width: 10},
		{Title: "Duration", Width: 14},
		{Title: "Levels", Width: 6},
		{Title: "Score", Width: 8},
		{Title: "Emotion", Width: 10},
		{Title: "Engagement", Width: 10},
	}
}

func sessionRows(reports []report.Report) []table.Row {
	rows := make([]table.Row, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, table.Row{
			r.Session,
			r.SessionDate,
			r.Duration,
			strconv.Itoa(len(r.Levels)),
			humanize.Commaf(r.Score),
			r.DominantEmotion,
			r.EngagementText,
		})
	}
	return rows
}

func newTable(cols []table.Column) table.Model {
	t := table.New(table.WithColumns(cols), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if pad := width - lipgloss.Width(line); pad > 0 {
			lines[i] = line + strings.Repeat(" ", pad)
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
