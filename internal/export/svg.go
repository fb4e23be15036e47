package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/predict"
	"gonum.org/v1/gonum/spatial/r2"
)

// Scene is everything drawn into one SVG snapshot.
type Scene struct {
	Bodies []physics.Body
	Paths  map[uint64]predict.Result
	// Trails holds past positions per body, oldest first.
	Trails map[uint64][]r2.Vec
}

type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b *bounds) add(p r2.Vec, pad float64) {
	b.minX = math.Min(b.minX, p.X-pad)
	b.minY = math.Min(b.minY, p.Y-pad)
	b.maxX = math.Max(b.maxX, p.X+pad)
	b.maxY = math.Max(b.maxY, p.Y+pad)
}

func (s Scene) bounds() bounds {
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, body := range s.Bodies {
		b.add(body.Pos, body.Radius)
	}
	for _, res := range s.Paths {
		for _, p := range res.Points {
			b.add(p, 0)
		}
	}
	for _, trail := range s.Trails {
		for _, p := range trail {
			b.add(p, 0)
		}
	}
	if math.IsInf(b.minX, 0) {
		return bounds{-1, -1, 1, 1}
	}

	// Add padding
	rangeX := math.Max(b.maxX-b.minX, 1)
	rangeY := math.Max(b.maxY-b.minY, 1)
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

// BodyColor picks the fill of a body from its payload.
func BodyColor(b physics.Body) string {
	switch p := b.Payload.(type) {
	case physics.StarPayload:
		return starColor(p.Temperature)
	case physics.PlanetPayload:
		if p.Color != "" {
			return p.Color
		}
	case physics.MoonPayload:
		if p.Color != "" {
			return p.Color
		}
	case physics.AsteroidPayload:
		return "#8a7f70"
	}
	return "#4f8fff"
}

func starColor(kelvin float64) string {
	switch {
	case kelvin >= 10000:
		return "#9bb0ff"
	case kelvin >= 7000:
		return "#f8f7ff"
	case kelvin >= 5200:
		return "#fff4ea"
	case kelvin >= 3700:
		return "#ffd2a1"
	default:
		return "#ffad51"
	}
}

// SceneToSVG renders a scene fitted into a width×height image. World y
// grows downward, as on the original canvas, so no axis flip is applied.
func SceneToSVG(s Scene, width, height int) string {
	b := s.bounds()
	scale := math.Min(float64(width)/(b.maxX-b.minX), float64(height)/(b.maxY-b.minY))
	project := func(p r2.Vec) (float64, float64) {
		return (p.X - b.minX) * scale, (p.Y - b.minY) * scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	colors := make(map[uint64]string, len(s.Bodies))
	for _, body := range s.Bodies {
		colors[body.ID] = BodyColor(body)
	}

	for _, id := range sortedKeys(s.Trails) {
		writePolyline(&sb, s.Trails[id], project, colors[id], "0.35", "")
	}
	for _, id := range sortedKeys(s.Paths) {
		writePolyline(&sb, s.Paths[id].Points, project, colors[id], "0.8", "4 3")
	}

	for _, body := range s.Bodies {
		cx, cy := project(body.Pos)
		r := math.Max(body.Radius*scale, 1.5)
		sb.WriteString(fmt.Sprintf(`<circle id="body-%d" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, body.ID, cx, cy, r, colors[body.ID]))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writePolyline(sb *strings.Builder, pts []r2.Vec, project func(r2.Vec) (float64, float64), color, opacity, dash string) {
	if len(pts) < 2 {
		return
	}
	if color == "" {
		color = "#00ff00"
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="%s" stroke-width="1.5"`, color, opacity))
	if dash != "" {
		sb.WriteString(fmt.Sprintf(` stroke-dasharray="%s"`, dash))
	}
	sb.WriteString(` d="M`)
	for i, p := range pts {
		x, y := project(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
