package config

import (
	"sort"

	"github.com/san-kum/gravsim/internal/physics"
)

func preset(planetary bool, bodies ...BodyConfig) *Config {
	cfg := DefaultConfig()
	cfg.Params.PlanetaryForces = planetary
	cfg.Bodies = bodies
	return cfg
}

var Presets = map[string]*Config{
	"empty": preset(false),
	"two-body": preset(false,
		BodyConfig{Kind: physics.KindStar},
		BodyConfig{Kind: physics.KindPlanet, X: 200},
	),
	"solar": preset(false,
		BodyConfig{Kind: physics.KindStar},
		BodyConfig{Kind: physics.KindPlanet, X: 120, Mass: 4, Radius: 4},
		BodyConfig{Kind: physics.KindPlanet, Y: -200},
		BodyConfig{Kind: physics.KindPlanet, X: -320, Mass: 40, Radius: 10},
		BodyConfig{Kind: physics.KindMoon, X: -345},
		BodyConfig{Kind: physics.KindPlanet, Y: 450, Mass: 25, Radius: 8},
		BodyConfig{Kind: physics.KindAsteroid, X: 560, Y: 60, Random: true},
		BodyConfig{Kind: physics.KindAsteroid, X: -520, Y: -240, Random: true},
	),
	"chaos": preset(true,
		BodyConfig{Kind: physics.KindStar},
		BodyConfig{Kind: physics.KindStar, X: 260, Mass: 3e5, Radius: 14},
		BodyConfig{Kind: physics.KindPlanet, X: -150, Y: 90, Mass: 2000},
		BodyConfig{Kind: physics.KindPlanet, X: 80, Y: -220, Random: true},
		BodyConfig{Kind: physics.KindAsteroid, X: 330, Y: 40, Random: true},
		BodyConfig{Kind: physics.KindMoon, X: 0, Y: 300},
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
