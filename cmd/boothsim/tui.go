package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	commentary "github.com/castwerk/booth-core/core"
	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/events"
	"github.com/castwerk/booth-core/core/telemetry"
)

const stormInterval = 250 * time.Millisecond

type (
	subtitleMsg       commentary.SubtitleLine
	audioMsg          commentary.AudioClip
	busMsg            struct{ event events.Event }
	configReloadedMsg struct{}
	// stormTickMsg carries its generation so a toggled-off storm's pending
	// tick cannot resurrect the loop.
	stormTickMsg struct{ gen int }
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#5A56E0")).Padding(0, 1)
	seqStyle      = lipgloss.NewStyle().Faint(true)
	fallbackStyle = lipgloss.NewStyle().Italic(true).Faint(true)
	noteStyle     = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

var (
	simEnemies  = []string{"goon", "sniper", "brute", "drone"}
	simSegments = []string{"Canyon Gauntlet", "Neon Flats", "Rust Yards"}
)

type boothStats struct {
	accepted, merged, dropped      int
	dispatched, completed, failed  int
	cancelled, released, fallbacks int
}

type simModel struct {
	booth     *commentary.Booth
	simulated bool

	viewport viewport.Model
	ready    bool

	transcript []string
	stats      boothStats
	lastAudio  string

	segment int
	streak  int
	health  float64
	enemy   int
	flips   int
	tier    int

	storm    bool
	stormGen int
}

func newSimModel(booth *commentary.Booth, simulated bool) simModel {
	return simModel{
		booth:      booth,
		simulated:  simulated,
		health:     1.0,
		lastAudio:  "quiet",
		transcript: []string{noteStyle.Render("* the booth is live, make something happen *")},
	}
}

func (m simModel) Init() tea.Cmd {
	return nil
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		chrome := 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case subtitleMsg:
		line := commentary.SubtitleLine(msg)
		m.stats.released++
		if line.Fallback {
			m.stats.fallbacks++
		}
		m.transcript = append(m.transcript, renderLine(line))
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case audioMsg:
		clip := commentary.AudioClip(msg)
		m.lastAudio = fmt.Sprintf("voice %.1fs @ gain %.2f", clip.Duration.Seconds(), clip.Gain)
		return m, nil

	case busMsg:
		m.countEvent(msg.event)
		return m, nil

	case configReloadedMsg:
		m.note("* configuration reloaded *")
		return m, nil

	case stormTickMsg:
		if !m.storm || msg.gen != m.stormGen {
			return m, nil
		}
		event, streakDelta, healthDelta := m.stormEvent()
		return m.submit(event, streakDelta, healthDelta), stormTick(msg.gen)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m simModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j":
		return m.submit(telemetry.Jump(telemetry.BucketBig), 1, 0), nil
	case "J":
		return m.submit(telemetry.Jump(telemetry.BucketHuge), 2, 0), nil
	case "w":
		return m.submit(telemetry.WheelieLong(), 1, 0), nil
	case "f":
		m.flips = m.flips%3 + 1
		return m.submit(telemetry.Flip(m.flips), 1, 0), nil
	case "k":
		m.enemy = (m.enemy + 1) % len(simEnemies)
		return m.submit(telemetry.Kill(simEnemies[m.enemy]), 1, 0), nil
	case "b":
		return m.submit(telemetry.BossKilled(), 5, 0), nil
	case "c":
		return m.submit(telemetry.Crash(), -m.streak, -0.25), nil
	case "n":
		return m.submit(telemetry.NearDeath(m.health), 0, 0), nil
	case "s":
		m.tier = m.tier%2 + 1
		return m.submit(telemetry.SpeedTier(m.tier), 0, 0), nil
	case "x":
		return m.submit(telemetry.BombHit(), -m.streak, -0.15), nil
	case "p":
		return m.submit(telemetry.CrowdPressure(), 0, 0), nil
	case "a":
		m.storm = !m.storm
		if m.storm {
			m.stormGen++
			m.note("* event storm on *")
			return m, stormTick(m.stormGen)
		}
		m.note("* event storm off *")
		return m, nil
	case "r":
		m.booth.ResetRun()
		m.segment = (m.segment + 1) % len(simSegments)
		m.streak = 0
		m.health = 1.0
		m.pushRunContext()
		m.note(fmt.Sprintf("* new run: %s *", simSegments[m.segment]))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func stormTick(gen int) tea.Cmd {
	return tea.Tick(stormInterval, func(time.Time) tea.Msg {
		return stormTickMsg{gen: gen}
	})
}

// stormEvent rolls one random moment, weighted toward the common stunts so
// a storm floods the queue the way a hot run would.
func (m simModel) stormEvent() (telemetry.Event, int, float64) {
	switch roll := rand.Intn(100); {
	case roll < 25:
		return telemetry.Kill(simEnemies[rand.Intn(len(simEnemies))]), 1, 0
	case roll < 45:
		return telemetry.Jump(telemetry.BucketBig), 1, 0
	case roll < 55:
		return telemetry.Jump(telemetry.BucketHuge), 2, 0
	case roll < 65:
		return telemetry.Flip(rand.Intn(3)+1), 1, 0
	case roll < 75:
		return telemetry.WheelieLong(), 1, 0
	case roll < 85:
		return telemetry.SpeedTier(rand.Intn(2)+1), 0, 0
	case roll < 90:
		return telemetry.CrowdPressure(), 0, 0
	case roll < 94:
		return telemetry.BombHit(), -m.streak, -0.15
	case roll < 97:
		return telemetry.Crash(), -m.streak, -0.25
	case roll < 99:
		return telemetry.NearDeath(m.health), 0, 0
	default:
		return telemetry.BossKilled(), 5, 0
	}
}

// submit feeds one event to the booth and folds its side effects into the
// simulated run state.
func (m simModel) submit(event telemetry.Event, streakDelta int, healthDelta float64) simModel {
	m.streak += streakDelta
	if m.streak < 0 {
		m.streak = 0
	}
	m.health += healthDelta
	if m.health < 0.05 {
		m.health = 0.05
	}
	if m.health > 1 {
		m.health = 1
	}
	m.booth.Submit(event)
	m.pushRunContext()
	return m
}

func (m simModel) pushRunContext() {
	m.booth.UpdateRunContext(commentary.RunContext{
		Segment:     simSegments[m.segment],
		ScoreStreak: m.streak,
		HealthFrac:  m.health,
	})
}

func (m *simModel) note(text string) {
	m.transcript = append(m.transcript, noteStyle.Render(text))
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

func (m *simModel) refreshTranscript() {
	if !m.ready {
		return
	}
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	m.viewport.SetContent(wordwrap.String(strings.Join(m.transcript, "\n"), width))
}

func (m *simModel) countEvent(event events.Event) {
	switch event.Kind() {
	case events.KindGameplayAccepted:
		m.stats.accepted++
	case events.KindGameplayMerged:
		m.stats.merged++
	case events.KindGameplayDropped:
		m.stats.dropped++
	case events.KindTurnDispatched:
		m.stats.dispatched++
	case events.KindTurnCompleted:
		m.stats.completed++
	case events.KindTurnFailed:
		m.stats.failed++
	case events.KindTurnCancelled:
		m.stats.cancelled++
	}
}

func (m simModel) View() string {
	if !m.ready {
		return "warming up the booth..."
	}
	mode := "SIMULATED"
	if !m.simulated {
		mode = "LIVE"
	}
	if m.storm {
		mode += " * STORM"
	}
	title := titleStyle.Render("COMMENTARY BOOTH " + mode)
	booth := m.booth.Stats()
	run := statusStyle.Render(fmt.Sprintf(
		"%s | streak %d | health %d%% | queue %d | next %s | in flight %d | %s",
		simSegments[m.segment], m.streak, int(m.health*100),
		booth.QueueDepth, booth.NextPersona, booth.InFlight, m.lastAudio,
	))
	counters := statusStyle.Render(fmt.Sprintf(
		"in %d/%d/%d acc/mrg/drop | turns %d/%d/%d/%d disp/ok/fail/cxl | lines %d (%d fallback)",
		m.stats.accepted, m.stats.merged, m.stats.dropped,
		m.stats.dispatched, m.stats.completed, m.stats.failed, m.stats.cancelled,
		m.stats.released, m.stats.fallbacks,
	))
	help := helpStyle.Render("j/J jump  w wheelie  f flip  k kill  b boss  c crash  n near-death  s speed  x bomb  p crowd  a storm  r new run  q quit")
	return strings.Join([]string{title, m.viewport.View(), run, counters, help}, "\n")
}

func renderLine(line commentary.SubtitleLine) string {
	name := lipgloss.NewStyle().Bold(true).Foreground(personaColor(line.Color)).Render(line.PersonaName)
	seq := seqStyle.Render(fmt.Sprintf("#%03d", line.Seq))
	text := line.Text
	if line.Fallback {
		text = fallbackStyle.Render(text + "  [fallback]")
	}
	return fmt.Sprintf("%s %s: %s", seq, name, text)
}

func personaColor(color config.Color) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", channel(color[0]), channel(color[1]), channel(color[2])))
}

func channel(value float64) int {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return int(value*255 + 0.5)
}
