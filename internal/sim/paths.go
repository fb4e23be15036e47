package sim

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/predict"
)

// PathSet is the output of one prediction job, tagged with the roster
// generation it was computed for.
type PathSet struct {
	Generation uint64
	Results    map[uint64]predict.Result
}

// PredictionJob holds everything a prediction needs so it can run off
// the host loop. It shares no memory with the sandbox.
type PredictionJob struct {
	Generation uint64
	world      *physics.World
	params     dynamo.Params
	predictor  *predict.Predictor
}

func (j PredictionJob) Run() PathSet {
	return PathSet{Generation: j.Generation, Results: j.predictor.PredictAll(j.world, j.params)}
}

// PredictionJob snapshots the world for a background prediction.
func (s *Sandbox) PredictionJob() PredictionJob {
	return PredictionJob{
		Generation: s.generation,
		world:      s.world.Clone(),
		params:     s.params,
		predictor:  s.predictor,
	}
}

// ApplyPaths installs a finished path set. Results computed for an older
// roster are discarded and false is returned.
func (s *Sandbox) ApplyPaths(ps PathSet) bool {
	if ps.Generation != s.generation {
		s.log.V(2).Info("discarding stale paths", "have", ps.Generation, "want", s.generation)
		return false
	}
	s.paths = ps.Results
	s.pathsGen = ps.Generation
	return true
}

// RefreshPaths recomputes the paths synchronously.
func (s *Sandbox) RefreshPaths() {
	s.ApplyPaths(s.PredictionJob().Run())
}

// PathsStale reports whether the roster changed since the last applied
// path set.
func (s *Sandbox) PathsStale() bool { return s.pathsGen != s.generation }

// Paths returns a copy of the current predicted paths by body ID.
func (s *Sandbox) Paths() map[uint64]predict.Result {
	out := make(map[uint64]predict.Result, len(s.paths))
	for id, res := range s.paths {
		res.Points = append(predict.Path(nil), res.Points...)
		out[id] = res
	}
	return out
}
