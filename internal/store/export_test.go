package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func runTwoBody(t *testing.T, rec *Recorder, ticks int) *sim.Sandbox {
	t.Helper()
	s, err := sim.New(sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s.AddObserver(rec)
	if _, err := s.AddBody(r2.Vec{}, sim.DefaultSpec(physics.KindStar)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddBody(r2.Vec{X: 200}, sim.DefaultSpec(physics.KindPlanet)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ticks; i++ {
		s.Tick(time.Second / 60)
	}
	return s
}

func TestRecorderSampling(t *testing.T) {
	rec := NewRecorder(3)
	runTwoBody(t, rec, 10)

	if rec.Steps() != 10 {
		t.Errorf("expected 10 steps, got %d", rec.Steps())
	}
	if len(rec.Frames()) != 4 {
		t.Fatalf("expected 4 recorded frames, got %d", len(rec.Frames()))
	}
	if rec.Frames()[1].Seq != 4 {
		t.Errorf("second sample seq = %d, want 4", rec.Frames()[1].Seq)
	}

	planet := rec.Frames()[0].Bodies[1]
	if planet.Tangential == [2]float64{} {
		t.Error("tangential velocity not recorded")
	}
}

func TestRecorderSkipsIdleFrames(t *testing.T) {
	rec := NewRecorder(0)
	s, err := sim.New(sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s.AddObserver(rec)
	s.Tick(time.Second / 60)

	if rec.Steps() != 0 || len(rec.Frames()) != 0 {
		t.Error("recorded a frame of an empty world")
	}
}

func TestExportJSON(t *testing.T) {
	rec := NewRecorder(1)
	s := runTwoBody(t, rec, 5)

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, rec.Export(s, "two-body", 1.0/60, 5.0/60)); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Steps != 5 || len(got.Frames) != 5 || got.Integrator != "symplectic" {
		t.Errorf("unexpected export: steps %d frames %d integrator %s", got.Steps, len(got.Frames), got.Integrator)
	}
}

func TestEncodeIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, ExportData{Integrator: "rk4"}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"integrator\": \"rk4\"")) {
		t.Errorf("unexpected encoding:\n%s", buf.String())
	}
}
