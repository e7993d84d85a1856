package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recommender/internal/domain"
	"recommender/internal/summarizer"
)

// RecommenderPort is the TUI-facing subset of the recommendation service.
type RecommenderPort interface {
	CatalogSummary(ctx context.Context) (*domain.CatalogSummary, error)
	Recommend(ctx context.Context, seed string) (*domain.RecommendationPayload, error)
}

// requestTimeout bounds each call into the service from the UI.
const requestTimeout = 30 * time.Second

type catalogMsg struct {
	summary *domain.CatalogSummary
	err     error
}

type resultMsg struct {
	payload *domain.RecommendationPayload
	err     error
}

// Model is the Bubble Tea model for the recommendation browser.
type Model struct {
	service       RecommenderPort
	excerpter     *summarizer.Excerpter
	plotSentences int

	input    textinput.Model
	viewport viewport.Model
	catalog  *domain.CatalogSummary
	payload  *domain.RecommendationPayload
	status   string
	cursor   int
	ready    bool
	loading  bool
}

// New creates a browser model. plotSentences limits the plot excerpt shown
// for each recommendation.
func New(service RecommenderPort, plotSentences int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a title or describe what you want, then press Enter"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		service:       service,
		excerpter:     summarizer.NewExcerpter(),
		plotSentences: plotSentences,
		input:         ti,
		viewport:      viewport.New(0, 0),
		status:        "Building index...",
		loading:       true,
	}
}

// Init loads the catalog and the default recommendations.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCatalog(), m.recommend(""))
}

func (m Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := m.service.CatalogSummary(ctx)
		return catalogMsg{summary: s, err: err}
	}
}

func (m Model) recommend(seed string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := m.service.Recommend(ctx, seed)
		return resultMsg{payload: p, err: err}
	}
}

// Update handles key, window and service events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1 // header, profile, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case catalogMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.catalog = msg.summary
		return m, nil
	case resultMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.payload = nil
		} else {
			m.payload = msg.payload
			m.cursor = 0
			m.status = describePayload(msg.payload)
		}
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.status = "Searching..."
			return m, m.recommend(m.input.Value())
		case "down":
			if n := m.count(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if n := m.count(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout and the selected recommendation.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Recommender"
	if m.catalog != nil {
		title = fmt.Sprintf("Recommender · %d titles", len(m.catalog.Items))
	}
	header := headerStyle.Render(title)
	profile := mutedStyle.Render(m.renderProfile())
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + profile + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) count() int {
	if m.payload == nil {
		return 0
	}
	return len(m.payload.Recommendations)
}

func (m Model) renderProfile() string {
	if m.payload == nil {
		return ""
	}
	var parts []string
	if m.payload.ReferenceTitle != nil {
		parts = append(parts, "Because you picked "+*m.payload.ReferenceTitle)
	}
	if len(m.payload.Profile.Categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(m.payload.Profile.Categories, ", "))
	}
	if m.payload.Profile.Year != nil {
		parts = append(parts, fmt.Sprintf("year: %d", *m.payload.Profile.Year))
	}
	return strings.Join(parts, " | ")
}

func (m Model) renderCurrent() string {
	if m.count() == 0 {
		return "No recommendations yet."
	}
	r := m.payload.Recommendations[m.cursor]
	heading := fmt.Sprintf("%d/%d  %s", m.cursor+1, m.count(), titleStyle.Render(r.Title))
	if r.Year != nil {
		heading += fmt.Sprintf(" (%d)", *r.Year)
	}
	meta := fmt.Sprintf("%s  score=%.4f", r.Category, r.Score)
	insight := insightStyle.Render(r.Insight)
	return heading + "\n" + mutedStyle.Render(meta) + "\n" + insight + "\n\n" + m.renderPlot(r.Plot)
}

func (m Model) renderPlot(plot string) string {
	sentences := m.excerpter.Excerpt(plot, m.payload.Seed, m.plotSentences)
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		if s.Focus {
			parts[i] = highlightStyle.Render(s.Text)
		} else {
			parts[i] = s.Text
		}
	}
	return strings.Join(parts, " ")
}

func describePayload(p *domain.RecommendationPayload) string {
	if p.ReferenceTitle != nil {
		return fmt.Sprintf("%d titles like %q", len(p.Recommendations), *p.ReferenceTitle)
	}
	return fmt.Sprintf("%d titles matching %q", len(p.Recommendations), p.Seed)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	insightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Italic(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
