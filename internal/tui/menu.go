// Package tui is the menu-driven terminal UI. It renders only cached
// snapshots — opening or redrawing the menu never queries hardware — and
// dispatches actions through the engine, re-rendering when the follow-up
// refresh publishes.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"deskstate/internal/engine"
	"deskstate/internal/events"
	"deskstate/internal/models"
)

type section int

const (
	sectionOutputs section = iota
	sectionInputs
	sectionMonitors
	sectionCount
)

// Menu is the bubbletea model.
type Menu struct {
	ctx     context.Context
	engine  *engine.Engine
	bus     *events.Bus
	subID   string
	updates <-chan models.Snapshot

	snap    models.Snapshot
	section section
	cursor  int
	presets []int
	status  string
}

type snapshotMsg models.Snapshot

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	defaultMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// New creates the menu. presets is the list of scale percentages offered for
// monitors.
func New(ctx context.Context, eng *engine.Engine, bus *events.Bus, presets []int) *Menu {
	id := uuid.New().String()
	return &Menu{
		ctx:     ctx,
		engine:  eng,
		bus:     bus,
		subID:   id,
		updates: bus.Subscribe(id),
		snap:    eng.ReadSnapshot(),
		presets: presets,
	}
}

func (m *Menu) Init() tea.Cmd {
	m.engine.TriggerRefresh(m.ctx)
	return m.waitForSnapshot()
}

// waitForSnapshot blocks on the bus subscription and feeds publications into
// the update loop.
func (m *Menu) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		// Drop deliveries older than what is already rendered.
		if models.Snapshot(msg).Seq >= m.snap.Seq {
			m.snap = models.Snapshot(msg)
			m.clampCursor()
			m.status = ""
		}
		return m, m.waitForSnapshot()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.bus.Unsubscribe(m.subID)
			return m, tea.Quit
		case "r":
			m.status = "refreshing..."
			m.engine.TriggerRefresh(m.ctx)
		case "tab":
			m.section = (m.section + 1) % sectionCount
			m.cursor = 0
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.sectionLen()-1 {
				m.cursor++
			}
		case "enter":
			m.activate(models.RoleBoth)
		case "c":
			m.activate(models.RoleConsole)
		case "m":
			m.activate(models.RoleCommunications)
		case "left", "right":
			m.cycleScale(msg.String() == "right")
		default:
			if n, err := strconv.Atoi(msg.String()); err == nil {
				m.assignMapping(n)
			}
		}
	}
	return m, nil
}

func (m *Menu) sectionLen() int {
	switch m.section {
	case sectionOutputs:
		return len(m.snap.Outputs)
	case sectionInputs:
		return len(m.snap.Inputs)
	default:
		return len(m.snap.Monitors)
	}
}

func (m *Menu) clampCursor() {
	if n := m.sectionLen(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

// activate sets the selected endpoint as a default for the given role.
func (m *Menu) activate(role models.Role) {
	var id string
	switch m.section {
	case sectionOutputs:
		if m.cursor < len(m.snap.Outputs) {
			id = m.snap.Outputs[m.cursor].ID
		}
	case sectionInputs:
		if m.cursor < len(m.snap.Inputs) {
			id = m.snap.Inputs[m.cursor].ID
		}
	default:
		return
	}
	if id == "" {
		return
	}
	m.status = fmt.Sprintf("setting %s default...", role)
	m.engine.SetDefaultEndpoint(m.ctx, id, role)
}

// cycleScale steps the selected monitor through the scale presets.
func (m *Menu) cycleScale(up bool) {
	if m.section != sectionMonitors || m.cursor >= len(m.snap.Monitors) || len(m.presets) == 0 {
		return
	}
	mon := m.snap.Monitors[m.cursor]
	idx := m.snap.Mapping.EffectiveIndex(mon)

	current := 0
	if v, ok := m.snap.Scale[idx]; ok {
		for i, p := range m.presets {
			if strconv.Itoa(p) == v {
				current = i
				break
			}
		}
	}
	if up && current < len(m.presets)-1 {
		current++
	} else if !up && current > 0 {
		current--
	}
	m.status = fmt.Sprintf("setting %s to %d%%...", mon.Name, m.presets[current])
	m.engine.SetScale(m.ctx, m.presets[current], idx)
}

// assignMapping maps the selected monitor's fingerprint to a target index.
func (m *Menu) assignMapping(targetIndex int) {
	if m.section != sectionMonitors || m.cursor >= len(m.snap.Monitors) {
		return
	}
	mon := m.snap.Monitors[m.cursor]
	m.status = fmt.Sprintf("mapping %s to index %d...", mon.Name, targetIndex)
	m.engine.SetMapping(m.ctx, mon.Fingerprint, targetIndex)
}

func (m *Menu) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("deskstate"))
	if !m.snap.Taken.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  snapshot #%d %s", m.snap.Seq, m.snap.Taken.Format("15:04:05"))))
	}
	b.WriteString("\n\n")

	m.renderEndpoints(&b, "Playback", sectionOutputs, m.snap.Outputs,
		m.snap.Defaults.ConsolePlayback, m.snap.Defaults.CommunicationsPlayback)
	m.renderEndpoints(&b, "Recording", sectionInputs, m.snap.Inputs,
		m.snap.Defaults.ConsoleRecording, m.snap.Defaults.CommunicationsRecording)
	m.renderMonitors(&b)

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString(dimStyle.Render("\ntab: section  enter: default  c/m: console/comms  ←/→: scale  1-9: map index  r: refresh  q: quit\n"))
	return b.String()
}

func (m *Menu) renderEndpoints(b *strings.Builder, title string, sec section, list []models.AudioEndpoint, console, comms string) {
	b.WriteString(titleStyle.Render(title) + "\n")
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n\n")
		return
	}
	for i, ep := range list {
		line := "  " + ep.Name
		var marks []string
		if ep.ID == console {
			marks = append(marks, "console")
		}
		if ep.ID == comms {
			marks = append(marks, "comms")
		}
		if len(marks) > 0 {
			line += " " + defaultMark.Render("["+strings.Join(marks, ",")+"]")
		}
		if m.section == sec && m.cursor == i {
			line = selectedStyle.Render("▸" + line[1:])
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func (m *Menu) renderMonitors(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Monitors") + "\n")
	if len(m.snap.Monitors) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
		return
	}
	for i, mon := range m.snap.Monitors {
		idx := m.snap.Mapping.EffectiveIndex(mon)
		scale := "unknown"
		if v, ok := m.snap.Scale[idx]; ok {
			scale = v + "%"
		}
		mapped := ""
		if _, ok := m.snap.Mapping[mon.Fingerprint]; ok {
			mapped = " (mapped)"
		}
		line := fmt.Sprintf("  %s — index %d%s — scale %s", mon.Name, idx, mapped, scale)
		if mon.Fingerprint.Degraded() {
			line += dimStyle.Render(" [no EDID]")
		}
		if m.section == sectionMonitors && m.cursor == i {
			line = selectedStyle.Render("▸" + line[1:])
		}
		b.WriteString(line + "\n")
	}
}
