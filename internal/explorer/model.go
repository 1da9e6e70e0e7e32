// Package explorer provides the Bubble Tea interface for browsing the
// candidate keys of one ciphertext.
package explorer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/freq"
	"github.com/verte-zerg/shiftscope/internal/rank"
	"github.com/verte-zerg/shiftscope/internal/report"
)

const (
	tabCandidates = iota
	tabPreview
	tabFrequencies
)

const (
	plotHeight   = 6
	defaultWidth = 80
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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	letterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	wordStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Model implements the Bubble Tea explorer.
type Model struct {
	label  string
	raw    string
	result rank.Result
	set    freq.Set

	tabs      []string
	activeTab int
	table     table.Model
	viewports []viewport.Model

	keyMode  bool
	keyInput textinput.Model
	errMsg   string

	width  int
	height int
}

// NewModel builds an explorer over a ranked text. raw is the unsanitized
// input, shown in the preview with its spacing and punctuation intact.
func NewModel(label, raw string, res rank.Result, set freq.Set) *Model {
	m := &Model{
		label:  label,
		raw:    raw,
		result: res,
		set:    set,
		tabs:   []string{"Candidates", "Preview", "Frequencies"},
	}
	m.keyInput = textinput.New()
	m.keyInput.Prompt = "Key: "
	m.keyInput.Placeholder = "3 or D"
	m.keyInput.CharLimit = 3
	m.keyInput.Cursor.SetMode(cursor.CursorBlink)
	m.table = buildCandidateTable(res, defaultWidth, 10)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.renderTabContents()
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.keyMode {
			return m.updateKeyInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.keyMode = true
			m.errMsg = ""
			m.keyInput.SetValue("")
			return m, m.keyInput.Focus()
		case "enter":
			if m.activeTab == tabCandidates {
				m.activeTab = tabPreview
				m.table.Blur()
			}
			return m, nil
		default:
			if m.activeTab == tabCandidates {
				before := m.table.Cursor()
				var cmd tea.Cmd
				m.table, cmd = m.table.Update(msg)
				if m.table.Cursor() != before {
					m.renderTabContents()
				}
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
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

// Selected returns the candidate under the table cursor.
func (m *Model) Selected() rank.Score {
	scores := m.result.Unigram.Scores
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(scores) {
		return m.result.Unigram.Best()
	}
	return scores[idx]
}

func (m *Model) updateKeyInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.keyMode = false
		m.keyInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.keyMode = false
		m.keyInput.Blur()
		if err := m.selectEncryptionKey(m.keyInput.Value()); err != nil {
			m.errMsg = err.Error()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) selectEncryptionKey(input string) error {
	key, err := cipher.ParseKey(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	for i, s := range m.result.Unigram.Scores {
		if s.EncryptionKey() == key {
			m.table.SetCursor(i)
			m.errMsg = ""
			m.renderTabContents()
			return nil
		}
	}
	return fmt.Errorf("key %d not ranked", key)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 2
	if m.errMsg != "" || m.keyMode {
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
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, bodyHeight-1))
	m.keyInput.Width = max(4, m.width-lipgloss.Width(m.keyInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabCandidates {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	key := m.Selected().Key
	m.viewports[tabPreview].SetContent(renderPreview(m.raw, key, width))
	m.viewports[tabFrequencies].SetContent(m.renderFrequencies(key))
}

func renderPreview(raw string, key cipher.Key, width int) string {
	text := cipher.ShiftPreserving(raw, key)
	return wrapStyledRunes(buildStyledRunes([]rune(text)), width)
}

func (m *Model) renderFrequencies(key cipher.Key) string {
	var buf bytes.Buffer
	if err := report.RenderFrequencies(&buf, m.result.Candidate(key), m.set.Unigram); err != nil {
		return fmt.Sprintf("Failed to render frequencies: %v", err)
	}
	series := []report.Series{
		{Name: "chi-square", Values: report.ByEncryptionKey(m.result.ChiByKey)},
		{Name: "bigram chi-square", Values: report.ByEncryptionKey(m.result.ChiBigramByKey)},
	}
	if err := report.PlotKeys(&buf, "Scores by encryption key", series, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render plot: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("Input: %s  Letters: %d  IC: %.4f  Tables: %s", m.label, m.result.Letters, m.result.IC, m.set.Name)
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.activeTab == tabCandidates {
		return tableMutedStyle.Render(m.table.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderFooter() string {
	lines := []string{m.renderStatus(), headerStyle.Render("Nav: left/right  Select: up/down  Preview: enter  Jump to key: /  Quit: q")}
	if m.keyMode {
		lines = append(lines, m.keyInput.View())
	} else if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	s := m.Selected()
	ratio := "n/a"
	if m.result.Unigram.Normalized {
		ratio = fmt.Sprintf("x%.2f", s.Ratio)
	}
	enc := s.EncryptionKey()
	return fmt.Sprintf("Key %c (%d)  chi %.2f  %s  bigram #%d  candidate %d/%d",
		enc.Letter(), int(enc), s.Value, ratio, m.result.Bigram.Position(s.Key),
		m.result.Unigram.Position(s.Key), len(m.result.Unigram.Scores))
}

func buildCandidateTable(res rank.Result, width, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Key", Width: 5},
		{Title: "Chi-square", Width: 11},
		{Title: "x Best", Width: 7},
		{Title: "Bigram", Width: 9},
		{Title: "B#", Width: 3},
		{Title: "Preview", Width: 24},
	}
	rows := make([]table.Row, 0, len(res.Unigram.Scores))
	for i, s := range res.Unigram.Scores {
		ratio := "n/a"
		if res.Unigram.Normalized {
			ratio = fmt.Sprintf("%.2f", s.Ratio)
		}
		enc := s.EncryptionKey()
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%2d %c", int(enc), enc.Letter()),
			fmt.Sprintf("%.2f", s.Value),
			ratio,
			fmt.Sprintf("%.2f", res.ChiBigramByKey[s.Key]),
			fmt.Sprintf("%d", res.Bigram.Position(s.Key)),
			truncateLine(res.Candidate(s.Key), 24),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(candidateTableStyles())
	return t
}

func candidateTableStyles() table.Styles {
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
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
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
