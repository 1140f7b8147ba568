package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	fastingdto "fasttrack/internal/modules/fasting/dto"
	insightsdto "fasttrack/internal/modules/insights/dto"
	apperrors "fasttrack/internal/platform/errors"
	"fasttrack/internal/ui/components"
	"fasttrack/internal/ui/theme"
	historyview "fasttrack/internal/ui/views/history"
	insightsview "fasttrack/internal/ui/views/insights"
	timerview "fasttrack/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type fastingPort interface {
	Status(ctx context.Context) (fastingdto.StatusOutput, error)
	Start(ctx context.Context) (fastingdto.SessionOutput, error)
	Stop(ctx context.Context) (fastingdto.StopOutput, error)
	SelectProtocol(ctx context.Context, protocol string) error
	AddManual(ctx context.Context, input fastingdto.ManualInput) (fastingdto.SessionOutput, error)
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) (fastingdto.SyncOutput, error)
	Export(ctx context.Context) (fastingdto.ExportOutput, error)
}

type insightsPort interface {
	Stats(ctx context.Context) (insightsdto.StatsOutput, error)
	History(ctx context.Context, input insightsdto.HistoryInput) ([]insightsdto.RecordOutput, error)
	Month(ctx context.Context, year int, month time.Month) (insightsdto.MonthOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabHistory
	tabInsights
	tabCount
)

var tabLabels = [tabCount]string{
	"Timer", "History", "Insights",
}

const pollInterval = time.Second

// ─── async messages ───────────────────────────────────────────────────────────

type pollMsg struct{}

type statusLoadedMsg struct {
	status fastingdto.StatusOutput
	err    error
}

type statusRefreshMsg struct {
	status fastingdto.StatusOutput
}

// actionDoneMsg reports a finished write. Records changed, so lists reload.
type actionDoneMsg struct {
	text string
	err  error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Start    key.Binding
	Stop     key.Binding
	Protocol key.Binding
	Delete   key.Binding
	Month    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start fast")),
		Stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop fast")),
		Protocol: key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "16:8 18:6 20:4")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete fast")),
		Month:    key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[/]", "month")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Protocol},
		{k.Tab, k.Delete, k.Month},
		{k.Help, k.Palette, k.Quit},
	}
}

var protocolKeys = map[string]string{"1": "16:8", "2": "18:6", "3": "20:4"}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the status poll,
// the global help overlay, and the command palette. All business logic is
// delegated to port interfaces; all rendering is delegated to sub-views.
type Model struct {
	fasting fastingPort

	// sub-views (one per tab)
	timerView    timerview.Model
	historyView  historyview.Model
	insightsView insightsview.Model

	// global UI state
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	wasActive bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(fasting fastingPort, insights insightsPort) Model {
	return Model{
		fasting:      fasting,
		timerView:    timerview.New(),
		historyView:  historyview.New(historyPortBridge{p: insights}),
		insightsView: insightsview.New(insightsPortBridge{p: insights}),
		activeTab:    tabTimer,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.historyView.Init(),
		m.insightsView.Init(),
		m.loadStatusCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette takes every key while open; ticks and loads still flow below.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case pollMsg:
		return m, m.loadStatusCmd()

	case statusLoadedMsg:
		cmds = append(cmds, tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} }))
		if msg.err != nil {
			m.status = "status: " + msg.err.Error()
			return m, tea.Batch(cmds...)
		}
		st := msg.status
		m.timerView.SetStatus(st)
		switch {
		case st.Finished != nil:
			m.status = fmt.Sprintf("fast complete: %s target reached", st.Finished.Protocol)
		case st.Notice != "":
			m.status = st.Notice
		}
		// The runtime may finish the fast between polls, so any active to idle
		// edge means the history changed.
		isActive := st.Active != nil
		if st.Finished != nil || (m.wasActive && !isActive) {
			if st.Finished == nil {
				m.status = "fast finished"
			}
			cmds = append(cmds, m.historyView.Reload(), m.insightsView.Reload())
		}
		m.wasActive = isActive
		return m, tea.Batch(cmds...)

	case statusRefreshMsg:
		m.timerView.SetStatus(msg.status)
		m.wasActive = msg.status.Active != nil
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = describe(msg.err)
			return m, nil
		}
		m.status = msg.text
		m.wasActive = false
		return m, tea.Batch(m.loadStatusOnceCmd(), m.historyView.Reload(), m.insightsView.Reload())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case historyview.RecordsLoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case insightsview.LoadedMsg:
		var cmd tea.Cmd
		m.insightsView, cmd = m.insightsView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		case "s":
			return m, m.startCmd("")
		case "x":
			return m, m.stopCmd()
		case "1", "2", "3":
			return m, m.selectProtocolCmd(protocolKeys[msg.String()])
		case "d":
			if m.activeTab == tabHistory {
				if id, ok := m.historyView.SelectedID(); ok {
					return m, m.deleteCmd(id)
				}
			}
		}
	}

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	case tabInsights:
		m.insightsView, tabCmd = m.insightsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabHistory:
		return m.historyView.View()
	case tabInsights:
		return m.insightsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "fasttrack  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	st := m.timerView.Status()
	if st.Active != nil {
		left = theme.Hot.Render(fmt.Sprintf("● %s %.0f%%", st.Active.Protocol, st.Progress.Percent)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "start":
		protocol := ""
		if len(parts) >= 2 {
			protocol = parts[1]
		}
		return m, m.startCmd(protocol)

	case "stop":
		return m, m.stopCmd()

	case "protocol":
		if len(parts) < 2 {
			m.status = "usage: protocol <16:8|18:6|20:4>"
			return m, nil
		}
		return m, m.selectProtocolCmd(parts[1])

	case "add":
		if len(parts) < 2 {
			m.status = "usage: add <start> [for HH:MM] [done]"
			return m, nil
		}
		return m, m.addManualCmd(ParseManual(parts[1:]))

	case "delete":
		if len(parts) < 2 {
			m.status = "usage: delete <id>"
			return m, nil
		}
		return m, m.deleteCmd(parts[1])

	case "filter":
		if len(parts) < 2 {
			m.status = "usage: filter <week|month|all> [completed|incomplete]"
			return m, nil
		}
		status := ""
		if len(parts) >= 3 {
			status = parts[2]
		}
		m.activeTab = tabHistory
		cmd := m.historyView.SetFilter(parts[1], status)
		return m, cmd

	case "month":
		if len(parts) < 2 {
			m.status = "usage: month <YYYY-MM>"
			return m, nil
		}
		at, err := time.Parse("2006-01", parts[1])
		if err != nil {
			m.status = "invalid month: " + parts[1]
			return m, nil
		}
		m.activeTab = tabInsights
		cmd := m.insightsView.ShowMonth(at.Year(), at.Month())
		return m, cmd

	case "sync":
		return m, m.syncCmd()

	case "export":
		return m, m.exportCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ParseManual reads "add" arguments: "for HH:MM" sets the duration, a
// trailing "done" marks the fast completed, and the rest is the start text.
func ParseManual(args []string) fastingdto.ManualInput {
	var in fastingdto.ManualInput
	var start []string
	for i := 0; i < len(args); i++ {
		switch {
		case strings.EqualFold(args[i], "done") && i == len(args)-1:
			in.Completed = true
		case strings.EqualFold(args[i], "for") && i+1 < len(args):
			in.Duration = args[i+1]
			i++
		default:
			start = append(start, args[i])
		}
	}
	in.StartText = strings.Join(start, " ")
	return in
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	if m.activeTab == tabHistory {
		return m.historyView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timerView, _ = m.timerView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
	m.insightsView, _ = m.insightsView.Update(sz)
}

func describe(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotHydrated):
		return "still restoring history, try again in a moment"
	case errors.Is(err, apperrors.ErrActiveSessionExists):
		return "a fast is already running"
	case errors.Is(err, apperrors.ErrNoActiveSession):
		return "no fast is running"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return "sign in to sync"
	}
	return err.Error()
}

// ─── async commands ───────────────────────────────────────────────────────────

// loadStatusCmd feeds the poll loop; every result schedules the next tick.
func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.fasting.Status(context.Background())
		return statusLoadedMsg{status: st, err: err}
	}
}

// loadStatusOnceCmd refreshes the timer after a write without starting a second poll loop.
func (m Model) loadStatusOnceCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.fasting.Status(context.Background())
		if err != nil {
			return nil
		}
		return statusRefreshMsg{status: st}
	}
}

func (m Model) startCmd(protocol string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if protocol != "" {
			if err := m.fasting.SelectProtocol(ctx, protocol); err != nil {
				return actionDoneMsg{err: err}
			}
		}
		out, err := m.fasting.Start(ctx)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: fmt.Sprintf("%s fast started at %s", out.Protocol, out.StartTime.Local().Format("15:04"))}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.fasting.Stop(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		hours := 0.0
		if out.Session.ActualHours != nil {
			hours = *out.Session.ActualHours
		}
		return actionDoneMsg{text: fmt.Sprintf("fast stopped after %.1fh", hours)}
	}
}

func (m Model) selectProtocolCmd(protocol string) tea.Cmd {
	return func() tea.Msg {
		if err := m.fasting.SelectProtocol(context.Background(), protocol); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: "protocol " + protocol}
	}
}

func (m Model) addManualCmd(input fastingdto.ManualInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.fasting.AddManual(context.Background(), input)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: "added fast from " + out.StartTime.Local().Format("2006-01-02 15:04")}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.fasting.Delete(context.Background(), id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: "deleted " + id}
	}
}

func (m Model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.fasting.Sync(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if out.SessionID == "" {
			return actionDoneMsg{text: "nothing to sync"}
		}
		return actionDoneMsg{text: "synced " + out.SessionID}
	}
}

func (m Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.fasting.Export(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: fmt.Sprintf("exported %d fasts to the journal", len(out.Paths))}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type historyPortBridge struct{ p insightsPort }

func (b historyPortBridge) History(ctx context.Context, input insightsdto.HistoryInput) ([]insightsdto.RecordOutput, error) {
	return b.p.History(ctx, input)
}

type insightsPortBridge struct{ p insightsPort }

func (b insightsPortBridge) Stats(ctx context.Context) (insightsdto.StatsOutput, error) {
	return b.p.Stats(ctx)
}
func (b insightsPortBridge) Month(ctx context.Context, year int, month time.Month) (insightsdto.MonthOutput, error) {
	return b.p.Month(ctx, year, month)
}
