package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	mask := ^rune(pixelMap[y%4][x%2])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < 0x2800 {
		c.Grid[row][col] = 0x2800
	}
}

// IsSet reports whether the sub-pixel is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillCircle lights every sub-pixel within r of the center. A radius
// below one still lights the center.
func (c *Canvas) FillCircle(cx, cy, r int) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates onto canvas sub-pixels. Center is the
// world point drawn at the middle of the canvas; Scale is world units per
// sub-pixel.
type Viewport struct {
	Center r2.Vec
	Scale  float64
}

// Project returns the sub-pixel of a world point. Both axes keep the
// world orientation: y grows downward.
func (v Viewport) Project(c *Canvas, p r2.Vec) (int, int) {
	cw, ch := c.Width*2, c.Height*4
	x := (p.X-v.Center.X)/v.Scale + float64(cw)/2
	y := (p.Y-v.Center.Y)/v.Scale + float64(ch)/2
	return int(math.Round(x)), int(math.Round(y))
}

// Unproject is the inverse of Project.
func (v Viewport) Unproject(c *Canvas, x, y int) r2.Vec {
	cw, ch := c.Width*2, c.Height*4
	return r2.Vec{
		X: (float64(x)-float64(cw)/2)*v.Scale + v.Center.X,
		Y: (float64(y)-float64(ch)/2)*v.Scale + v.Center.Y,
	}
}

// Fit returns a viewport showing every point with a margin.
func Fit(c *Canvas, pts []r2.Vec) Viewport {
	if len(pts) == 0 {
		return Viewport{Scale: 4}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	cw, ch := float64(c.Width*2), float64(c.Height*4)
	scale := math.Max((maxX-minX)/cw, (maxY-minY)/ch) * 1.2
	if scale <= 0 {
		scale = 4
	}
	return Viewport{
		Center: r2.Vec{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
		Scale:  scale,
	}
}

// DrawPath draws a world-space polyline. A stride above one lights only
// every stride-th vertex instead, which reads as a dotted line.
func (c *Canvas) DrawPath(v Viewport, pts []r2.Vec, stride int) {
	for i, p := range pts {
		x, y := v.Project(c, p)
		if stride > 1 {
			if i%stride == 0 {
				c.Set(x, y)
			}
			continue
		}
		if i == 0 {
			c.Set(x, y)
			continue
		}
		px, py := v.Project(c, pts[i-1])
		if c.far(px, py) || c.far(x, y) {
			continue
		}
		c.DrawLine(px, py, x, y)
	}
}

// far reports sub-pixels well outside the canvas, where Bresenham would
// walk a long way without lighting anything.
func (c *Canvas) far(x, y int) bool {
	cw, ch := c.Width*2, c.Height*4
	return x < -cw || y < -ch || x > 2*cw || y > 2*ch
}
