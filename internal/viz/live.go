package viz

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 90
	panelWidth      = 48

	frameInterval = time.Second / 60
	// maxElapsed caps one tick so a stalled terminal does not fling
	// bodies across the screen.
	maxElapsed = 100 * time.Millisecond

	cursorStep = 4 // sub-pixels per key press
	pathStride = 3

	svgPath = "gravsim.svg"
	gifPath = "gravsim.gif"
)

type TickMsg time.Time

type pathsMsg sim.PathSet

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model hosts a sandbox: it forwards input as commands, drives the tick
// loop and schedules orbit predictions off the update path.
type Model struct {
	cfg  *config.Config
	name string
	log  logr.Logger

	sb        *sim.Sandbox
	drift     *metrics.EnergyDrift
	stability *metrics.Stability
	gen       uint64

	canvas        *Canvas
	view          Viewport
	width, height int
	cursor        r2.Vec
	selected      uint64
	spawn         physics.Kind
	spawnRandom   bool

	trails     map[uint64][]r2.Vec
	energy     []float64
	fps        []float64
	last       time.Time
	predicting bool

	recording bool
	recorder  *gifRecorder

	styles   Styles
	status   string
	showHelp bool
}

// NewModel builds a sandbox from cfg and wraps it for the terminal.
func NewModel(cfg *config.Config, name string, log logr.Logger) (Model, error) {
	m := Model{
		cfg:    cfg.Clone(),
		name:   name,
		log:    log,
		width:  width,
		height: height,
		canvas: NewCanvas(width, height),
		spawn:  physics.KindPlanet,
		styles: NewStyles(CurrentTheme),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// reset rebuilds the sandbox from the configuration.
func (m *Model) reset() error {
	sb, err := m.cfg.Build(m.log)
	if err != nil {
		return err
	}
	m.sb = sb
	m.drift = metrics.NewEnergyDrift()
	m.stability = metrics.NewStability()
	sb.AddMetric(m.drift)
	sb.AddMetric(m.stability)

	m.gen = sb.Generation()
	m.trails = map[uint64][]r2.Vec{}
	m.energy = m.energy[:0]
	m.fps = m.fps[:0]
	m.last = time.Time{}
	m.predicting = false
	m.selected = 0
	m.fit()
	m.cursor = m.view.Center
	m.ensureSelection()
	return nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Sandbox exposes the hosted sandbox.
func (m Model) Sandbox() *sim.Sandbox { return m.sb }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width-panelWidth-4, msg.Height-2)

	case TickMsg:
		now := time.Time(msg)
		elapsed := frameInterval
		if !m.last.IsZero() {
			elapsed = now.Sub(m.last)
		}
		if elapsed > maxElapsed {
			elapsed = maxElapsed
		}
		m.last = now

		m.observe(m.sb.Tick(elapsed))
		m.draw()
		if m.recording {
			m.recorder.capture(m.canvas)
		}
		cmd := m.predictCmd()
		return m, tea.Batch(tick(), cmd)

	case pathsMsg:
		m.predicting = false
		if !m.sb.ApplyPaths(sim.PathSet(msg)) {
			// the next tick schedules a fresh job
			m.log.V(2).Info("prediction arrived late", "generation", msg.Generation)
		}
	}
	return m, nil
}

// predictCmd starts a prediction job when the paths no longer match the
// roster and none is in flight. Only one job runs at a time.
func (m *Model) predictCmd() tea.Cmd {
	if m.predicting || !m.sb.PathsStale() {
		return nil
	}
	return m.forcePredict()
}

func (m *Model) forcePredict() tea.Cmd {
	if m.predicting {
		return nil
	}
	m.predicting = true
	job := m.sb.PredictionJob()
	return func() tea.Msg { return pathsMsg(job.Run()) }
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.stopRecording()
		}
		return m, tea.Quit
	case " ":
		m.sb.SetPlaying(!m.sb.Params().Playing)
	case "r":
		if err := m.reset(); err != nil {
			m.status = err.Error()
		}
	case "?":
		m.showHelp = !m.showHelp
	case "t":
		NextTheme()
		m.styles = NewStyles(CurrentTheme)

	case "p":
		m.sb.SetPlanetaryForces(!m.sb.Params().PlanetaryForces)
	case "o":
		if err := m.sb.ToggleOrbitalMode(m.selected); err != nil {
			m.status = err.Error()
		}
	case "x":
		if err := m.sb.RemoveBody(m.selected); err != nil {
			m.status = err.Error()
		}
		m.ensureSelection()
	case "tab":
		m.cycleSelection()
	case "a", "enter":
		b, err := m.sb.AddBody(m.cursor, m.spawnSpec())
		if err != nil {
			m.status = err.Error()
		} else {
			m.selected = b.ID
			m.status = "added " + b.String()
		}
	case "1":
		m.spawn = physics.KindStar
	case "2":
		m.spawn = physics.KindPlanet
	case "3":
		m.spawn = physics.KindMoon
	case "4":
		m.spawn = physics.KindAsteroid
	case "m":
		m.spawnRandom = !m.spawnRandom

	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "z":
		m.view.Scale /= 1.25
	case "Z":
		m.view.Scale *= 1.25
	case "c":
		m.fit()

	case "+", "=":
		m.setErr(m.sb.SetTimeScale(m.sb.Params().TimeScale * 1.25))
	case "-", "_":
		m.setErr(m.sb.SetTimeScale(m.sb.Params().TimeScale / 1.25))
	case "g":
		m.setErr(m.sb.SetG(m.sb.Params().G * 1.1))
	case "G":
		m.setErr(m.sb.SetG(m.sb.Params().G / 1.1))
	case "i":
		m.setErr(m.sb.SetIntegrator(nextName(integrators.Names(), m.sb.Integrator())))
	case "f":
		cmd = m.forcePredict()

	case "e":
		m.exportSVG()
	case "R":
		if m.recording {
			m.stopRecording()
		} else {
			m.recording = true
			m.recorder = newGIFRecorder()
			m.status = "recording"
		}
	}
	m.draw()
	return m, cmd
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) spawnSpec() sim.BodySpec {
	spec := sim.DefaultSpec(m.spawn)
	spec.Orbital = !m.spawnRandom
	return spec
}

func (m *Model) moveCursor(dx, dy float64) {
	step := cursorStep * m.view.Scale
	m.cursor = r2.Add(m.cursor, r2.Vec{X: dx * step, Y: dy * step})
}

// ensureSelection falls back to the primary when the selected body is
// gone.
func (m *Model) ensureSelection() {
	if _, ok := m.sb.Body(m.selected); ok {
		return
	}
	m.selected = 0
	if bodies := m.sb.Bodies(); len(bodies) > 0 {
		m.selected = bodies[0].ID
	}
}

func (m *Model) cycleSelection() {
	bodies := m.sb.Bodies()
	if len(bodies) == 0 {
		return
	}
	for i, b := range bodies {
		if b.ID == m.selected {
			m.selected = bodies[(i+1)%len(bodies)].ID
			return
		}
	}
	m.selected = bodies[0].ID
}

func nextName(names []string, cur string) string {
	for i, n := range names {
		if n == cur {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// observe folds a frame into the trails and histories.
func (m *Model) observe(f sim.Frame) {
	if f.Err != nil {
		m.sb.SetPlaying(false)
		m.status = f.Err.Error()
		return
	}

	if g := m.sb.Generation(); g != m.gen {
		m.gen = g
		m.energy = m.energy[:0]
		for id := range m.trails {
			if _, ok := m.sb.Body(id); !ok {
				delete(m.trails, id)
			}
		}
		m.ensureSelection()
	}

	m.fps = appendCapped(m.fps, f.Telemetry.FPS, historyCapacity)
	if !f.Stepped {
		return
	}
	for _, b := range f.Bodies {
		m.trails[b.ID] = appendCapped(m.trails[b.ID], b.Pos, trailCapacity)
	}
	m.energy = appendCapped(m.energy, m.drift.Current(), historyCapacity)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

func (m *Model) resize(w, h int) {
	if w < 20 {
		w = 20
	}
	if h < 8 {
		h = 8
	}
	m.width, m.height = w, h
	m.canvas = NewCanvas(w, h)
}

// fit frames every body, keeping the origin centered.
func (m *Model) fit() {
	bodies := m.sb.Bodies()
	pts := make([]r2.Vec, 0, len(bodies)*2)
	for _, b := range bodies {
		pts = append(pts, b.Pos, r2.Vec{X: -b.Pos.X, Y: -b.Pos.Y})
	}
	m.view = Fit(m.canvas, pts)
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, trail := range m.trails {
		m.canvas.DrawPath(m.view, trail, 1)
	}
	for _, res := range m.sb.Paths() {
		m.canvas.DrawPath(m.view, res.Points, pathStride)
	}
	for _, b := range m.sb.Bodies() {
		x, y := m.view.Project(m.canvas, b.Pos)
		m.canvas.FillCircle(x, y, int(b.Radius/m.view.Scale))
	}
	cx, cy := m.view.Project(m.canvas, m.cursor)
	m.canvas.Set(cx-2, cy)
	m.canvas.Set(cx+2, cy)
	m.canvas.Set(cx, cy-2)
	m.canvas.Set(cx, cy+2)
}

func (m *Model) exportSVG() {
	scene := export.Scene{Bodies: m.sb.Bodies(), Paths: m.sb.Paths(), Trails: m.trails}
	if err := os.WriteFile(svgPath, []byte(export.SceneToSVG(scene, 800, 600)), 0o644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + svgPath
}

func (m *Model) stopRecording() {
	m.recording = false
	if err := m.recorder.save(gifPath); err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("saved %s (%d frames)", gifPath, m.recorder.len())
	}
	m.recorder = nil
}

func (m Model) View() string {
	s := m.styles
	canvasView := s.Canvas.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, s.Panel.Render(m.statsView()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) statsView() string {
	s := m.styles
	p := m.sb.Params()
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(s.Label.Render(label) + s.Value.Render(value) + "\n")
	}

	b.WriteString(GradientText("GRAVSIM "+strings.ToUpper(m.name), CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	switch {
	case m.recording:
		b.WriteString(s.Error.Render("● REC") + " ")
		fallthrough
	case p.Playing:
		b.WriteString(s.Running.Render("RUNNING") + "\n\n")
	default:
		b.WriteString(s.Paused.Render("PAUSED") + "\n\n")
	}

	row("Time", fmt.Sprintf("%.2fs", m.sb.Time()))
	row("FPS", fmt.Sprintf("%.0f %s", m.sb.Telemetry().FPS, Sparkline(m.fps, 20)))
	row("Bodies", fmt.Sprintf("%d", len(m.sb.Bodies())))
	row("Integrator", m.sb.Integrator())
	row("G", fmt.Sprintf("%.3g", p.G))
	row("Time scale", fmt.Sprintf("%.3gx", p.TimeScale))
	row("Planetary", onOff(p.PlanetaryForces))
	switch {
	case m.predicting:
		row("Paths", "predicting")
	case m.sb.PathsStale():
		row("Paths", "stale")
	default:
		row("Paths", fmt.Sprintf("gen %d", m.sb.Generation()))
	}

	b.WriteString("\n" + s.Title.Render("SELECTED") + "\n")
	if body, ok := m.sb.Body(m.selected); ok {
		b.WriteString(s.Selected.Render(fmt.Sprintf("%s #%d", body.Kind, body.ID)) + "\n")
		row("Mass", fmt.Sprintf("%.4g", body.Mass))
		row("Mode", map[bool]string{true: "orbital", false: "random"}[body.Orbital])
		if primary, ok := m.sb.World().Primary(); ok && primary.ID != body.ID {
			d := physics.Decompose(body, primary)
			row("Distance", fmt.Sprintf("%.1f", r2.Norm(r2.Sub(primary.Pos, body.Pos))))
			row("Radial", fmt.Sprintf("%.2f", r2.Norm(d.Radial)))
			row("Tangential", fmt.Sprintf("%.2f", r2.Norm(d.Tangential)))
			if res, ok := m.sb.Paths()[body.ID]; ok {
				row("Orbit", fmt.Sprintf("%s after %d steps", res.Reason, res.Steps))
			}
		} else {
			row("Role", "primary")
		}
	} else {
		b.WriteString(s.Hint.Render("none") + "\n")
	}

	b.WriteString("\n" + s.Title.Render("SPAWN") + "\n")
	row("Kind", string(m.spawn))
	row("Mode", map[bool]string{false: "orbital", true: "random"}[m.spawnRandom])

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		b.WriteString("\n" + s.Graph.Render(chart) + "\n")
	}
	b.WriteString("\n")
	row("Bound", Bar(m.stability.Value(), 20, s))
	row("Escapes", fmt.Sprintf("%d", m.stability.Escapes()))

	if m.status != "" {
		b.WriteString("\n" + s.Paused.Render(m.status) + "\n")
	}
	b.WriteString("\n" + Separator(36, s) + "\n")
	b.WriteString(s.Hint.Render("SP:Pause A:Add X:Remove Tab:Select\nO:Orbit P:Planetary ?:Help Q:Quit"))
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset to preset          ║
║  A/Enter  - Add body at cursor       ║
║  1-4      - Spawn star/planet/moon/  ║
║             asteroid                 ║
║  M        - Spawn orbital or random  ║
║  X        - Remove selected body     ║
║  Tab      - Select next body         ║
║  O        - Toggle orbital mode      ║
║  P        - Toggle planetary forces  ║
║  Arrows   - Move cursor (hjkl)       ║
║  +/-      - Time scale               ║
║  g/G      - Gravity up/down          ║
║  z/Z      - Zoom in/out, C to fit    ║
║  I        - Cycle integrators        ║
║  F        - Refresh predicted paths  ║
║  E        - Export SVG snapshot      ║
║  Shift+R  - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`
