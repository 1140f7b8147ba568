package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	fastingdto "fasttrack/internal/modules/fasting/dto"
	"fasttrack/internal/ui/theme"
)

var protocols = []string{"16:8", "18:6", "20:4"}

// Model renders the live fast. It holds no port; the app model feeds it statuses.
type Model struct {
	status fastingdto.StatusOutput
	loaded bool
	bar    progress.Model
	now    func() time.Time
	width  int
	height int
}

func New() Model {
	bar := progress.New(progress.WithGradient(string(theme.Peach), string(theme.Green)))
	return Model{bar: bar, now: time.Now}
}

func (m *Model) SetStatus(status fastingdto.StatusOutput) {
	m.status = status
	m.loaded = true
}

func (m Model) Status() fastingdto.StatusOutput {
	return m.status
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if sz, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = sz.Width
		m.height = sz.Height
		m.bar.Width = max(10, min(sz.Width-8, 72))
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Loading fasting state…"))
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Fasting timer") + "\n\n")
	sb.WriteString(m.renderProtocols() + "\n\n")

	st := m.status
	if !st.Hydrated {
		sb.WriteString(theme.Muted.Render("restoring history…") + "\n")
	} else if st.Active == nil {
		sb.WriteString(theme.Muted.Render("Not fasting.") + "\n\n")
		sb.WriteString(m.bar.ViewAs(0) + "\n")
	} else {
		a := st.Active
		sb.WriteString(theme.Hot.Render("● fasting") + "  " + a.Protocol + "\n\n")
		sb.WriteString(theme.Muted.Render("elapsed:   ") + Clock(st.Progress.Elapsed) + "\n")
		sb.WriteString(theme.Muted.Render("remaining: ") + Clock(st.Progress.Remaining) + "\n")
		sb.WriteString(theme.Muted.Render("started:   ") + a.StartTime.Local().Format("Mon 15:04") +
			theme.Muted.Render("  ("+humanize.RelTime(a.StartTime, m.now(), "ago", "from now")+")") + "\n")
		end := a.StartTime.Add(time.Duration(a.TargetHours * float64(time.Hour)))
		sb.WriteString(theme.Muted.Render("ends:      ") + end.Local().Format("Mon 15:04") + "\n\n")
		sb.WriteString(m.bar.ViewAs(st.Progress.Percent/100) + "\n")
	}

	sb.WriteString("\n")
	if st.Identified {
		sb.WriteString(theme.Muted.Render("signed in, syncing to the records service") + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("anonymous, history stays on this device") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("s: start  x: stop  1/2/3: protocol"))

	return theme.Pane.Width(max(20, m.width-2)).Render(sb.String())
}

func (m Model) renderProtocols() string {
	parts := make([]string, len(protocols))
	for i, p := range protocols {
		label := fmt.Sprintf("%d %s", i+1, p)
		if p == m.status.Protocol {
			parts[i] = theme.Hot.Render("[" + label + "]")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	return strings.Join(parts, "  ")
}

// Clock formats a duration as HH:MM:SS, truncated to whole seconds.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
