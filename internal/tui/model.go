package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"soloquest/internal/engine"
	"soloquest/internal/ui"
)

// boardModel renders the engine snapshot: profile and stat bars on the left,
// quests and life tasks on the right, with a countdown to the next daily
// reset. Every mutation reloads the snapshot.
type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	snap *engine.Snapshot

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	snap *engine.Snapshot
	err  error
}

type toggledMsg struct {
	quest *engine.ToggleQuestResult
	life  *engine.CompleteLifeTaskResult
	err   error
}

type tickMsg time.Time

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.svc.Snapshot(m.ctx)
		return loadedMsg{snap: snap, err: err}
	}
}

func (m boardModel) toggleQuestCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ToggleQuest(m.ctx, id)
		return toggledMsg{quest: res, err: err}
	}
}

func (m boardModel) completeLifeTaskCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteLifeTask(m.ctx, id)
		return toggledMsg{life: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tickCmd()
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		return m, nil
	case toggledMsg:
		if msg.err != nil {
			var it engine.IllegalTransitionError
			if errors.As(msg.err, &it) {
				m.lastLog = "Life tasks are permanent once completed."
			} else {
				m.lastLog = "Toggle failed: " + msg.err.Error()
			}
			return m, nil
		}
		m.lastLog = toggleLogLine(msg)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.rows())-1 {
				m.selected++
			}
			return m, nil
		case " ", "enter":
			rows := m.rows()
			if m.selected < 0 || m.selected >= len(rows) {
				return m, nil
			}
			row := rows[m.selected]
			if row.isLifeTask {
				if row.completed {
					m.lastLog = "Life tasks are permanent once completed."
					return m, nil
				}
				m.lastLog = "Completing life task…"
				return m, m.completeLifeTaskCmd(row.id)
			}
			m.lastLog = "Toggling quest…"
			return m, m.toggleQuestCmd(row.id)
		}
	}
	return m, nil
}

func toggleLogLine(msg toggledMsg) string {
	if msg.life != nil {
		b := msg.life.Boost
		return fmt.Sprintf("Boost granted: +%d%% %s for %d days", b.Percentage, b.StatType, engine.BoostDurationDays)
	}
	if msg.quest == nil {
		return "Done."
	}
	if msg.quest.CompletedNow {
		res := msg.quest.Complete
		line := fmt.Sprintf("+%d XP", res.XPAwarded)
		if res.BoostXP > 0 {
			line += fmt.Sprintf(" (%d base, %d boost)", res.BaseXP, res.BoostXP)
		}
		if res.LevelUp {
			line += " " + ui.BadgeLevelUp
		}
		if res.AllQuestsDone {
			line += " | all quests complete!"
		}
		return line
	}
	return fmt.Sprintf("Undone: -%d XP", msg.quest.Uncomplete.XPDeducted)
}

type boardRow struct {
	id         string
	isLifeTask bool
	completed  bool
	text       string
}

func (m boardModel) rows() []boardRow {
	if m.snap == nil {
		return nil
	}
	var out []boardRow
	for _, q := range m.snap.Quests {
		out = append(out, boardRow{id: q.ID, completed: q.Completed, text: q.Text})
	}
	for _, t := range m.snap.LifeTasks {
		out = append(out, boardRow{id: t.ID, isLifeTask: true, completed: t.Completed, text: t.Text})
	}
	return out
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := "\n" + m.lastLog

	leftW := 30
	if m.width > 0 {
		if maxLeft := m.width / 2; maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 20 {
			leftW = 20
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.snap == nil {
		return "soloquest | loading…"
	}
	lvl := m.snap.Profile
	bar := ui.ProgressBar(lvl.CurrentXP, lvl.MaxXP, 30)
	return fmt.Sprintf("soloquest | Level %d | XP %d/%d %s | reset in %s",
		lvl.Level, lvl.CurrentXP, lvl.MaxXP, bar, untilMidnight(time.Now()))
}

// untilMidnight formats the countdown to the next daily quest reset.
func untilMidnight(now time.Time) string {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	d := midnight.Sub(now)
	h := int(d.Hours())
	mn := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, mn, sec)
}

func (m boardModel) renderSidebar() string {
	if m.snap == nil {
		return "Stats\n\nLoading…"
	}
	lines := []string{"Stats"}
	for _, sp := range m.snap.Stats {
		bar := ui.ProgressBar(sp.Level.CurrentXP, sp.Level.MaxXP, 12)
		line := fmt.Sprintf("- %s %s L%d %s", ui.StatIcon(string(sp.Stat)), sp.Stat, sp.Level.Level, bar)
		if sp.BoostPercent > 0 {
			line += " " + ui.Gold.Render(fmt.Sprintf("+%d%%", sp.BoostPercent))
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- space/enter: toggle")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading || m.snap == nil {
		return "Loading…"
	}

	var out []string
	out = append(out, fmt.Sprintf("Quests (%d pending)", m.snap.PendingQuests))
	idx := 0
	if len(m.snap.Quests) == 0 {
		out = append(out, "(no quests)")
	}
	for _, q := range m.snap.Quests {
		cursor := "  "
		if idx == m.selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s (%d XP)", cursor, ui.Checkbox(q.Completed), q.Text, q.BaseXP)
		if !q.Completed && q.BoostXP > 0 {
			line += " " + ui.Gold.Render(fmt.Sprintf("+%d XP (%d%%)", q.BoostXP, q.BoostPercent))
		}
		out = append(out, line)
		idx++
	}

	out = append(out, "")
	out = append(out, "Life Tasks")
	if len(m.snap.LifeTasks) == 0 {
		out = append(out, "(no life tasks)")
	}
	for _, t := range m.snap.LifeTasks {
		cursor := "  "
		if idx == m.selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s %s +%d%% %s", cursor, ui.Checkbox(t.Completed), t.Text,
			ui.StatIcon(t.BoostStat), t.BoostPercent, t.BoostStat)
		if t.Completed && t.BoostExpiresAt != nil {
			line += " " + ui.Muted.Render("boost until "+t.BoostExpiresAt.Local().Format("Jan 2 15:04"))
		}
		out = append(out, line)
		idx++
	}
	return strings.Join(out, "\n")
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
