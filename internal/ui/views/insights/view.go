package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	insightsdto "fasttrack/internal/modules/insights/dto"
	"fasttrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type InsightsPort interface {
	Stats(ctx context.Context) (insightsdto.StatsOutput, error)
	Month(ctx context.Context, year int, month time.Month) (insightsdto.MonthOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Stats insightsdto.StatsOutput
	Month insightsdto.MonthOutput
	Err   error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   InsightsPort
	stats  insightsdto.StatsOutput
	month  insightsdto.MonthOutput
	year   int
	mon    time.Month
	err    error
	now    func() time.Time
	width  int
	height int
}

func New(port InsightsPort) Model {
	return Model{port: port, now: time.Now}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.stats = msg.Stats
			m.month = msg.Month
			m.year, m.mon = msg.Month.Year, msg.Month.Month
		}

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch msg.String() {
		case "[":
			cmd = m.shift(-1)
		case "]":
			cmd = m.shift(1)
		}
		return m, cmd
	}
	return m, nil
}

// ShowMonth jumps the calendar to the given month.
func (m *Model) ShowMonth(year int, month time.Month) tea.Cmd {
	m.year, m.mon = year, month
	return m.Reload()
}

// Reload fetches stats and the displayed month. Before the first load that is the current month.
func (m Model) Reload() tea.Cmd {
	port, year, mon := m.port, m.year, m.mon
	return func() tea.Msg {
		if port == nil {
			return LoadedMsg{}
		}
		ctx := context.Background()
		stats, err := port.Stats(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		month, err := port.Month(ctx, year, mon)
		return LoadedMsg{Stats: stats, Month: month, Err: err}
	}
}

func (m Model) View() string {
	if m.err != nil {
		return theme.Pane.Render(theme.Hot.Render("insights: ") + m.err.Error())
	}
	statsW := max(30, m.width*4/10)
	left := theme.Pane.Width(statsW - 2).Render(m.renderStats())
	right := theme.Pane.Width(max(30, m.width-statsW) - 2).Render(m.renderCalendar())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) shift(delta int) tea.Cmd {
	if m.year == 0 {
		return nil
	}
	first := time.Date(m.year, m.mon, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return m.ShowMonth(first.Year(), first.Month())
}

func (m Model) renderStats() string {
	s := m.stats
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Overview") + "\n\n")
	row := func(label, value string) {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-16s", label)) + value + "\n")
	}
	row("total fasts", fmt.Sprintf("%d", s.Total))
	row("completed", fmt.Sprintf("%d (%.0f%%)", s.Completed, s.CompletionRate))
	row("this week", fmt.Sprintf("%d", s.ThisWeek))
	row("this month", fmt.Sprintf("%d", s.ThisMonth))
	row("average", s.AverageLabel)
	row("current streak", fmt.Sprintf("%d days", s.CurrentStreak))
	return sb.String()
}

func (m Model) renderCalendar() string {
	mo := m.month
	if mo.Year == 0 {
		return theme.Muted.Render("no calendar yet")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("%s %d", mo.Month, mo.Year)) + "\n\n")
	sb.WriteString(theme.Muted.Render(" Su  Mo  Tu  We  Th  Fr  Sa") + "\n")

	today := m.now()
	col := 0
	if len(mo.Days) > 0 {
		col = int(mo.Days[0].Date.Weekday())
	}
	sb.WriteString(strings.Repeat("    ", col))
	for _, d := range mo.Days {
		sb.WriteString(dayCell(d, sameDay(d.Date, today)))
		col++
		if col == 7 {
			sb.WriteString("\n")
			col = 0
		} else {
			sb.WriteString(" ")
		}
	}
	if col != 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s %d of %d completed (%.0f%%), %d fasting days\n",
		theme.Muted.Render("month:"), mo.Completed, mo.Total, mo.CompletionRate, mo.FastingDays))
	sb.WriteString(theme.DayCompleted.Render(" ✓ ") + " done  " +
		theme.DayIncomplete.Render(" ✗ ") + " short  " +
		theme.DayMixed.Render(" ~ ") + " mixed\n")
	sb.WriteString("\n" + theme.Muted.Render("[ / ]: previous / next month"))
	return sb.String()
}

func dayCell(d insightsdto.DayOutput, today bool) string {
	label := fmt.Sprintf("%3d", d.Date.Day())
	style := theme.DayNone
	switch d.Status {
	case "completed":
		style = theme.DayCompleted
	case "incomplete":
		style = theme.DayIncomplete
	case "mixed":
		style = theme.DayMixed
	}
	if today {
		style = style.Inherit(theme.DayToday)
	}
	return style.Render(label)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
