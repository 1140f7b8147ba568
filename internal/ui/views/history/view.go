package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	insightsdto "fasttrack/internal/modules/insights/dto"
	"fasttrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context, input insightsdto.HistoryInput) ([]insightsdto.RecordOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordsLoadedMsg struct {
	Records []insightsdto.RecordOutput
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	record insightsdto.RecordOutput
	now    time.Time
}

func (i recordItem) Title() string {
	mark := "✗"
	if i.record.Completed {
		mark = "✓"
	}
	return fmt.Sprintf("%s %s  %s", mark, i.record.Start.Local().Format("Mon Jan 2 15:04"), i.record.Protocol)
}

func (i recordItem) Description() string {
	return fmt.Sprintf("%s of %.0fh  %s", i.record.DurationLabel, i.record.TargetHours,
		humanize.RelTime(i.record.Start, i.now, "ago", "from now"))
}

func (i recordItem) FilterValue() string {
	return i.record.Start.Local().Format("2006-01-02") + " " + i.record.Protocol
}

// ─── model ───────────────────────────────────────────────────────────────────

var (
	ranges   = []string{"week", "month", "all"}
	statuses = []string{"all", "completed", "incomplete"}
)

type Model struct {
	port    HistoryPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	filter  insightsdto.HistoryInput
	now     func() time.Time
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	m := Model{
		port:    port,
		list:    l,
		detail:  vp,
		spinner: sp,
		loading: true,
		filter:  insightsdto.HistoryInput{Range: "all", Status: "all"},
		now:     time.Now,
	}
	m.list.Title = m.title()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RecordsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "History: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = m.title()
		now := m.now()
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r, now: now}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if !m.Filtering() {
			switch msg.String() {
			case "r":
				m.filter.Range = next(ranges, m.filter.Range)
				return m, m.Reload()
			case "c":
				m.filter.Status = next(statuses, m.filter.Status)
				return m, m.Reload()
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 5 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SetFilter replaces both filter fields and reloads. Empty values keep the current one.
func (m *Model) SetFilter(rangeValue, status string) tea.Cmd {
	if rangeValue != "" {
		m.filter.Range = rangeValue
	}
	if status != "" {
		m.filter.Status = status
	}
	return m.Reload()
}

func (m Model) Reload() tea.Cmd {
	port, filter := m.port, m.filter
	return func() tea.Msg {
		if port == nil {
			return RecordsLoadedMsg{}
		}
		records, err := port.History(context.Background(), filter)
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

// SelectedID returns the highlighted fast's id, if any.
func (m Model) SelectedID() (string, bool) {
	if item, ok := m.list.SelectedItem().(recordItem); ok {
		return item.record.ID, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) title() string {
	return fmt.Sprintf("History  %s · %s", m.filter.Range, m.filter.Status)
}

func (m *Model) resize() {
	listW := m.width * 5 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(recordItem)
	if !ok {
		return theme.Muted.Render("No fasts in this range")
	}
	r := item.record
	outcome := theme.Hot.Render("incomplete")
	if r.Completed {
		outcome = lipgloss.NewStyle().Foreground(theme.Green).Render("completed")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.Protocol+" fast") + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + r.ID + "\n")
	sb.WriteString(theme.Muted.Render("started:  ") + r.Start.Local().Format("2006-01-02 15:04") + "\n")
	sb.WriteString(theme.Muted.Render("duration: ") + r.DurationLabel + "\n")
	sb.WriteString(fmt.Sprintf("%s%.0fh\n", theme.Muted.Render("target:   "), r.TargetHours))
	sb.WriteString(theme.Muted.Render("outcome:  ") + outcome + "\n")
	sb.WriteString("\n" + theme.Muted.Render("r: range  c: status  d: delete  /: search"))
	return sb.String()
}

func next(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
