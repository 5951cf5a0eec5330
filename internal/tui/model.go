// Package tui implements an interactive viewer for ranking artifacts.
package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docrank/internal/output"
)

// Model is the Bubble Tea model for browsing a ranking artifact.
type Model struct {
	doc      output.Document
	input    textinput.Model
	viewport viewport.Model
	visible  []int
	filter   string
	status   string
	cursor   int
	ready    bool
}

// New creates a viewer over doc. All sections are visible initially.
func New(doc output.Document) Model {
	ti := textinput.New()
	ti.Prompt = "filter> "
	ti.Placeholder = "Type words and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{doc: doc, input: ti, viewport: vp}
	m.applyFilter("")
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := sectionBoxStyle.GetFrameSize()
		_, qh := filterBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and metadata, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentSection())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.applyFilter(m.input.Value())
			m.viewport.SetContent(m.renderCurrentSection())
			return m, nil
		case "down":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor + 1) % len(m.visible)
				m.viewport.SetContent(m.renderCurrentSection())
				return m, nil
			}
		case "up":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
				m.viewport.SetContent(m.renderCurrentSection())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the header, the selected section and the filter box.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docrank: " + m.doc.Metadata.Persona)
	meta := mutedStyle.Render(fmt.Sprintf("%s | %d documents | %s",
		m.doc.Metadata.JobToBeDone, len(m.doc.Metadata.Documents), m.doc.Metadata.Timestamp))
	body := sectionBoxStyle.Render(m.viewport.View())
	input := filterBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + meta + "\n" + body + "\n" + input + "\n" + status
}

// applyFilter keeps the sections whose document, title or refined text
// contain every word of filter.
func (m *Model) applyFilter(filter string) {
	m.filter = strings.TrimSpace(filter)
	words := toTokenSet(m.filter)
	visible := make([]int, 0, len(m.doc.ExtractedSections))
	for i, sec := range m.doc.ExtractedSections {
		if matchesAll(words, sectionText(sec)) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	m.cursor = 0
	switch {
	case len(m.doc.ExtractedSections) == 0:
		m.status = "Artifact has no ranked sections."
	case m.filter == "":
		m.status = fmt.Sprintf("%d sections. Up/down to browse, Esc to quit.", len(m.visible))
	default:
		m.status = fmt.Sprintf("%d of %d sections match %q", len(m.visible), len(m.doc.ExtractedSections), m.filter)
	}
}

func (m Model) renderCurrentSection() string {
	if len(m.visible) == 0 {
		return "No sections."
	}
	sec := m.doc.ExtractedSections[m.visible[m.cursor]]
	var b strings.Builder
	fmt.Fprintf(&b, "#%d  %s  %s  (%d/%d)\n\n",
		sec.ImportanceRank, sec.Document, sec.SectionTitle, m.cursor+1, len(m.visible))
	if len(sec.SubSectionAnalysis) == 0 {
		b.WriteString(mutedStyle.Render("No refined sentences."))
		return b.String()
	}
	words := toTokenSet(m.filter)
	for i, sub := range sec.SubSectionAnalysis {
		text := strings.TrimSpace(sub.RefinedText)
		if i == 0 || (len(words) > 0 && overlapScore(words, text) > 0) {
			text = highlightStyle.Render(text)
		}
		fmt.Fprintf(&b, "%d. %s  %s\n", i+1, text, mutedStyle.Render(fmt.Sprintf("p.%d", sub.PageNumber)))
	}
	return b.String()
}

var (
	sectionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	filterBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	unicodeWordRe   = regexp.MustCompile(`\p{L}+(?:['\x{2019}]\p{L}+)*|\p{N}+`)
)

func sectionText(sec output.Section) string {
	parts := []string{sec.Document, sec.SectionTitle}
	for _, sub := range sec.SubSectionAnalysis {
		parts = append(parts, sub.RefinedText)
	}
	return strings.Join(parts, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func matchesAll(words map[string]struct{}, text string) bool {
	if len(words) == 0 {
		return true
	}
	return overlapScore(words, text) == len(words)
}

// overlapScore counts the distinct words of text found in words.
func overlapScore(words map[string]struct{}, text string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := words[t]; ok {
			score++
		}
	}
	return score
}
