package export

import (
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/predict"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestSceneToSVG(t *testing.T) {
	scene := Scene{
		Bodies: []physics.Body{
			{ID: 1, Radius: 20, Kind: physics.KindStar, Payload: physics.StarPayload{Temperature: 5800}},
			{ID: 2, Radius: 6, Pos: r2.Vec{X: 200}, Kind: physics.KindPlanet, Payload: physics.PlanetPayload{Color: "#ff0000"}},
		},
		Paths: map[uint64]predict.Result{
			2: {ID: 2, Points: predict.Path{{X: 200}, {X: 0, Y: 200}, {X: -200}}, Reason: predict.ReasonClosed},
		},
		Trails: map[uint64][]r2.Vec{
			2: {{X: 190, Y: -50}, {X: 200}},
		},
	}

	svg := SceneToSVG(scene, 400, 300)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 bodies, got %d", n)
	}
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Errorf("expected trail and path, got %d", n)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("planet color not used")
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("predicted path should be dashed")
	}
}

func TestSceneToSVGEmpty(t *testing.T) {
	svg := SceneToSVG(Scene{}, 100, 100)
	if strings.Contains(svg, "<circle") || strings.Contains(svg, "<path") {
		t.Error("empty scene drew shapes")
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("empty scene produced non-finite coordinates")
	}
}

func TestBodyColor(t *testing.T) {
	tests := []struct {
		name string
		body physics.Body
		want string
	}{
		{"hot star", physics.Body{Payload: physics.StarPayload{Temperature: 12000}}, "#9bb0ff"},
		{"cool star", physics.Body{Payload: physics.StarPayload{Temperature: 3000}}, "#ffad51"},
		{"planet", physics.Body{Payload: physics.PlanetPayload{Color: "#123456"}}, "#123456"},
		{"asteroid", physics.Body{Payload: physics.AsteroidPayload{}}, "#8a7f70"},
		{"no payload", physics.Body{}, "#4f8fff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BodyColor(tt.body); got != tt.want {
				t.Errorf("BodyColor() = %s, want %s", got, tt.want)
			}
		})
	}
}
