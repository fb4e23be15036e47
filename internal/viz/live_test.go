package viz

import (
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/config"
)

func newTestModel(t *testing.T, preset string) Model {
	t.Helper()
	m, err := NewModel(config.GetPreset(preset), preset, logr.Discard())
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("update returned %T", next)
	}
	return out, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ticks(t *testing.T, m Model, n int) Model {
	t.Helper()
	t0 := time.Unix(1000, 0)
	for i := 0; i < n; i++ {
		m, _ = update(t, m, TickMsg(t0.Add(time.Duration(i)*frameInterval)))
	}
	return m
}

func TestNewModelSelectsPrimary(t *testing.T) {
	m := newTestModel(t, "two-body")
	if m.selected != 1 {
		t.Errorf("selected %d, want the primary", m.selected)
	}
	if !m.sb.PathsStale() {
		t.Error("fresh model should need a prediction")
	}
}

func TestTickAdvancesAndTrails(t *testing.T) {
	m := ticks(t, newTestModel(t, "two-body"), 30)

	if m.sb.Time() <= 0 {
		t.Fatal("simulation did not advance")
	}
	if got := len(m.trails[2]); got != 30 {
		t.Errorf("planet trail has %d points, want 30", got)
	}
	if len(m.energy) != 30 {
		t.Errorf("energy history has %d samples, want 30", len(m.energy))
	}
	if !m.predicting {
		t.Error("tick should have started a prediction")
	}
}

func TestTickCapsElapsed(t *testing.T) {
	m := newTestModel(t, "two-body")
	t0 := time.Unix(1000, 0)
	m, _ = update(t, m, TickMsg(t0))
	before := m.sb.Time()
	m, _ = update(t, m, TickMsg(t0.Add(10*time.Second)))

	if dt := m.sb.Time() - before; math.Abs(dt-maxElapsed.Seconds()) > 1e-12 {
		t.Errorf("stalled tick advanced %v, want %v", dt, maxElapsed.Seconds())
	}
}

func TestPredictionApplied(t *testing.T) {
	m := newTestModel(t, "two-body")
	cmd := m.predictCmd()
	if cmd == nil {
		t.Fatal("expected a prediction job")
	}
	if m.predictCmd() != nil {
		t.Error("second job started while one is in flight")
	}

	m, _ = update(t, m, cmd())
	if m.predicting {
		t.Error("predicting flag not cleared")
	}
	if m.sb.PathsStale() {
		t.Error("paths not applied")
	}
	if _, ok := m.sb.Paths()[2]; !ok {
		t.Error("planet has no predicted path")
	}
}

func TestPredictionDiscardedAfterRosterChange(t *testing.T) {
	m := newTestModel(t, "two-body")
	cmd := m.predictCmd()

	m, _ = update(t, m, key("l"))
	m, _ = update(t, m, key("a"))
	if len(m.sb.Bodies()) != 3 {
		t.Fatalf("expected 3 bodies, got %d", len(m.sb.Bodies()))
	}

	m, _ = update(t, m, cmd())
	if !m.sb.PathsStale() {
		t.Error("stale prediction was applied")
	}
	if m.predictCmd() == nil {
		t.Error("expected a fresh job for the new roster")
	}
}

func TestKeyCommands(t *testing.T) {
	m := newTestModel(t, "two-body")

	m, _ = update(t, m, key(" "))
	if m.sb.Params().Playing {
		t.Error("space should pause")
	}

	m, _ = update(t, m, key("p"))
	if !m.sb.Params().PlanetaryForces {
		t.Error("p should enable planetary forces")
	}

	scale := m.sb.Params().TimeScale
	m, _ = update(t, m, key("+"))
	if got := m.sb.Params().TimeScale; math.Abs(got-scale*1.25) > 1e-12 {
		t.Errorf("time scale %v, want %v", got, scale*1.25)
	}

	g := m.sb.Params().G
	m, _ = update(t, m, key("G"))
	if got := m.sb.Params().G; got >= g {
		t.Errorf("G should decrease, got %v from %v", got, g)
	}

	m, _ = update(t, m, key("i"))
	if m.sb.Integrator() != "verlet" {
		t.Errorf("integrator %q, want verlet", m.sb.Integrator())
	}
}

func TestSelectionAndRemoval(t *testing.T) {
	m := newTestModel(t, "two-body")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.selected != 2 {
		t.Fatalf("tab selected %d, want 2", m.selected)
	}

	orbital := m.sb.Bodies()[1].Orbital
	m, _ = update(t, m, key("o"))
	if m.sb.Bodies()[1].Orbital == orbital {
		t.Error("o did not toggle orbital mode")
	}

	m, _ = update(t, m, key("x"))
	if len(m.sb.Bodies()) != 1 {
		t.Fatalf("expected 1 body after removal, got %d", len(m.sb.Bodies()))
	}
	if m.selected != 1 {
		t.Errorf("selection fell back to %d, want 1", m.selected)
	}
}

func TestAddUsesSpawnSettings(t *testing.T) {
	m := newTestModel(t, "two-body")
	m, _ = update(t, m, key("3"))
	m, _ = update(t, m, key("m"))
	m, _ = update(t, m, key("j"))
	m, _ = update(t, m, key("a"))

	b, ok := m.sb.Body(m.selected)
	if !ok {
		t.Fatal("new body not selected")
	}
	if b.Kind != "moon" || b.Orbital {
		t.Errorf("spawned %s orbital=%v, want random moon", b.Kind, b.Orbital)
	}
	if b.Pos.Y <= 0 {
		t.Errorf("body placed at %v, want below the origin", b.Pos)
	}
}

func TestInvalidStatePauses(t *testing.T) {
	m := newTestModel(t, "two-body")
	if err := m.sb.SetG(math.MaxFloat64); err != nil {
		t.Fatal(err)
	}
	m = ticks(t, m, 1)

	if m.sb.Params().Playing {
		t.Error("invalid tick should pause the sandbox")
	}
	if m.status == "" {
		t.Error("error not surfaced")
	}
}

func TestResetRestoresPreset(t *testing.T) {
	m := ticks(t, newTestModel(t, "two-body"), 10)
	m, _ = update(t, m, key("x"))
	m, _ = update(t, m, key("r"))

	if len(m.sb.Bodies()) != 2 || m.sb.Time() != 0 {
		t.Errorf("reset gave %d bodies at t=%v", len(m.sb.Bodies()), m.sb.Time())
	}
	if len(m.trails) != 0 {
		t.Error("trails survived reset")
	}
}

func TestViewShowsStats(t *testing.T) {
	m := ticks(t, newTestModel(t, "solar"), 5)
	out := m.View()
	for _, want := range []string{"Integrator", "symplectic", "SELECTED", "Planetary"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, key("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay not shown")
	}
}

func TestRecorderWritesGIF(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(1, 1)

	rec := newGIFRecorder()
	rec.capture(c)
	rec.capture(c)

	img := rec.frames[0]
	if img.Bounds().Dx() != 8*dotSize || img.Bounds().Dy() != 8*dotSize {
		t.Errorf("unexpected frame size %v", img.Bounds())
	}
	if img.ColorIndexAt(dotSize, dotSize) != 1 || img.ColorIndexAt(0, 0) != 0 {
		t.Error("dot not rasterized")
	}

	path := filepath.Join(t.TempDir(), "out.gif")
	if err := rec.save(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("decoded %d frames, want 2", len(anim.Image))
	}

	if err := newGIFRecorder().save(path); err == nil {
		t.Error("saving an empty recording should fail")
	}
}

func TestThemeCycle(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)
	SetTheme("nebula")
	NextTheme()
	if CurrentTheme.Name != "phosphor" {
		t.Errorf("next theme %q, want phosphor", CurrentTheme.Name)
	}
	if GetTheme("missing").Name != "nebula" {
		t.Error("unknown theme should fall back to nebula")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2, 3}, 2); got != "▅█" {
		t.Errorf("sparkline %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline %q", got)
	}
}
