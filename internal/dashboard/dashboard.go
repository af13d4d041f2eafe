// Package dashboard is the interactive terminal front end: pick a country,
// walk the analysis year, and read the metrics, comparison and tips panes.
//
// It consumes only the session's read API; every keystroke that changes the
// selection triggers one synchronous recomputation of the metrics snapshot.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikeMitch88/carbon-tracker/internal/metrics"
	"github.com/MikeMitch88/carbon-tracker/internal/session"
)

// yearHeadroom extends the selectable range past the last observed year, the
// window in which values come from the model instead of the dataset.
const yearHeadroom = 11

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("22")).Padding(0, 1)
	metricStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginRight(1)
	labelStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	predictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model for the dashboard.
type Model struct {
	sess *session.Session

	picking bool
	input   textinput.Model

	country    string
	year       int
	snap       *metrics.Snapshot
	comparison []metrics.ComparisonRow
	status     string
}

// New builds the dashboard over an opened session.
func New(sess *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "country name"
	ti.CharLimit = 64

	m := Model{
		sess:  sess,
		input: ti,
		year:  2020,
	}
	if ds := sess.Dataset(); ds != nil {
		if m.year < ds.EarliestYear() || m.year > ds.LatestYear()+yearHeadroom {
			m.year = ds.LatestYear()
		}
	}

	if country, ok := matchCountry(sess.Countries(), sess.Settings.DefaultCountry); ok {
		m.country = country
		m.recompute()
	} else {
		m.picking = true
		m.input.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.picking {
		return textinput.Blink
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.picking {
		return m.updatePicker(keyMsg)
	}

	switch keyMsg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "c":
		m.picking = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "left":
		m.setYear(m.year - 1)
	case "right":
		m.setYear(m.year + 1)
	case "shift+left":
		m.setYear(m.year - 5)
	case "shift+right":
		m.setYear(m.year + 5)
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.country != "" {
			m.picking = false
		}
		return m, nil
	case tea.KeyEnter:
		country, ok := matchCountry(m.sess.Countries(), m.input.Value())
		if !ok {
			m.status = fmt.Sprintf("no country matches %q", m.input.Value())
			return m, nil
		}
		m.country = country
		m.picking = false
		m.status = ""
		m.recompute()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// setYear clamps to the dataset's earliest year through latest+headroom.
func (m *Model) setYear(year int) {
	ds := m.sess.Dataset()
	if ds == nil {
		return
	}
	if year < ds.EarliestYear() {
		year = ds.EarliestYear()
	}
	if max := ds.LatestYear() + yearHeadroom; year > max {
		year = max
	}
	if year != m.year {
		m.year = year
		m.recompute()
	}
}

// recompute refreshes the snapshot and comparison rows for the current
// selection.
func (m *Model) recompute() {
	snap, err := m.sess.Metrics(m.country, m.year)
	if err != nil {
		m.snap = nil
		m.status = err.Error()
		return
	}
	m.snap = snap
	m.status = ""

	compare := append([]string{m.country}, m.sess.Settings.CompareWith...)
	m.comparison = m.sess.Comparison(compare)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Country CO2 Emissions Analyzer"))
	b.WriteString("\n\n")

	if m.sess.State == session.Degraded {
		b.WriteString(warnStyle.Render("degraded mode: no prediction model — dataset browsing only"))
		b.WriteString("\n")
	}
	for _, w := range m.sess.Warnings {
		b.WriteString(warnStyle.Render("warning: " + w))
		b.WriteString("\n")
	}

	if m.picking {
		fmt.Fprintf(&b, "\nSelect country (%d available): %s\n", len(m.sess.Countries()), m.input.View())
		if m.status != "" {
			b.WriteString(errorStyle.Render(m.status))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("\nenter: confirm · esc: cancel · ctrl+c: quit\n"))
		return b.String()
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.snap != nil {
		b.WriteString(m.viewSnapshot())
	}

	b.WriteString(helpStyle.Render("\n←/→: year · shift+←/→: ±5 years · c: country · q: quit\n"))
	return b.String()
}

func (m Model) viewSnapshot() string {
	snap := m.snap
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s — %d\n\n", snap.Country, snap.Year)

	source := "observed"
	if snap.Predicted {
		source = predictStyle.Render("predicted")
	}
	boxes := []string{
		metricStyle.Render(fmt.Sprintf("%s\n%.1f kg CO2 (%s)",
			labelStyle.Render(fmt.Sprintf("%d per capita", snap.Year)), snap.Current, source)),
		metricStyle.Render(fmt.Sprintf("%s\n%.1fx %s",
			labelStyle.Render("vs global average"), snap.RatioToAverage, aboveBelow(snap.RatioToAverage))),
		metricStyle.Render(fmt.Sprintf("%s\n%.1f kg in %d",
			labelStyle.Render("historical peak"), snap.PeakValue, snap.PeakYear)),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")

	if snap.Trend != nil {
		fmt.Fprintf(&b, "\nLinear trend: %+.1f kg/year\n", snap.Trend.AnnualChangeKg)
	}

	if len(m.comparison) > 0 {
		b.WriteString("\nComparison (latest available data):\n")
		for _, row := range m.comparison {
			fmt.Fprintf(&b, "  %-20s %d  %10.1f kg\n", row.Country, row.LatestYear, row.LatestValue)
		}
	}

	b.WriteString("\nReduction targets:\n")
	for _, tgt := range snap.Targets {
		fmt.Fprintf(&b, "  %-18s %10.1f kg\n", tgt.Label, tgt.Value)
	}

	b.WriteString("\nClimate action:\n")
	for _, tip := range snap.Tips {
		fmt.Fprintf(&b, "  • %s\n", tip)
	}
	return b.String()
}

func aboveBelow(ratio float64) string {
	if ratio < 1 {
		return "(below average)"
	}
	return "(above average)"
}

// matchCountry resolves a user-typed name against the country list: exact
// match first (case-insensitive), then a unique case-insensitive prefix.
func matchCountry(countries []string, query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	var prefix []string
	for _, c := range countries {
		lc := strings.ToLower(c)
		if lc == q {
			return c, true
		}
		if strings.HasPrefix(lc, q) {
			prefix = append(prefix, c)
		}
	}
	if len(prefix) == 1 {
		return prefix[0], true
	}
	return "", false
}
