package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// BodySample is one body in one recorded frame.
type BodySample struct {
	ID         uint64     `json:"id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	VX         float64    `json:"vx"`
	VY         float64    `json:"vy"`
	Radial     [2]float64 `json:"radial"`
	Tangential [2]float64 `json:"tangential"`
}

type FrameSample struct {
	Seq    int          `json:"seq"`
	Time   float64      `json:"time"`
	Bodies []BodySample `json:"bodies"`
}

type ExportData struct {
	Preset     string             `json:"preset,omitempty"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Frames     []FrameSample      `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Recorder is a sim.Observer keeping every Every-th stepped frame.
type Recorder struct {
	Every  int
	frames []FrameSample
	seen   int
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{Every: every}
}

func (r *Recorder) OnFrame(f sim.Frame) {
	if !f.Stepped {
		return
	}
	r.seen++
	if (r.seen-1)%r.Every != 0 {
		return
	}

	decomp := make(map[uint64]physics.Decomposition, len(f.Decompositions))
	for _, d := range f.Decompositions {
		decomp[d.ID] = d
	}

	fs := FrameSample{Seq: f.Seq, Time: f.Time, Bodies: make([]BodySample, len(f.Bodies))}
	for i, b := range f.Bodies {
		d := decomp[b.ID]
		fs.Bodies[i] = BodySample{
			ID:         b.ID,
			X:          b.Pos.X,
			Y:          b.Pos.Y,
			VX:         b.Vel.X,
			VY:         b.Vel.Y,
			Radial:     [2]float64{d.Radial.X, d.Radial.Y},
			Tangential: [2]float64{d.Tangential.X, d.Tangential.Y},
		}
	}
	r.frames = append(r.frames, fs)
}

func (r *Recorder) Frames() []FrameSample { return r.frames }

// Steps is the number of stepped frames seen, recorded or not.
func (r *Recorder) Steps() int { return r.seen }

// Export builds the document for a finished run.
func (r *Recorder) Export(s *sim.Sandbox, preset string, dt, duration float64) ExportData {
	return ExportData{
		Preset:     preset,
		Integrator: s.Integrator(),
		Dt:         dt,
		Duration:   duration,
		Steps:      r.seen,
		Frames:     r.frames,
		Metrics:    s.Metrics(),
	}
}

func Encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Encode(file, data)
}

func ExportJSONStdout(data ExportData) error {
	return Encode(os.Stdout, data)
}
