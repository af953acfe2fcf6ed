package grid

import "math"

// Square 是方格拓扑：4 邻接，Chebyshev 距离。
type Square struct {
	bounds
}

var squareDirs = [4]Coord{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func (g *Square) Kind() Kind { return KindSquare }

func (g *Square) Center(c Coord) Point {
	return Point{X: (float64(c.X) + 0.5) * g.size, Y: (float64(c.Y) + 0.5) * g.size}
}

func (g *Square) Corners(c Coord) []Point {
	x0, y0 := float64(c.X)*g.size, float64(c.Y)*g.size
	return []Point{
		{X: x0, Y: y0},
		{X: x0 + g.size, Y: y0},
		{X: x0 + g.size, Y: y0 + g.size},
		{X: x0, Y: y0 + g.size},
	}
}

func (g *Square) At(p Point) (Coord, bool) {
	if p.X < 0 || p.Y < 0 {
		return Coord{}, false
	}
	c := Coord{X: int(math.Floor(p.X / g.size)), Y: int(math.Floor(p.Y / g.size))}
	if !g.Contains(c) {
		return Coord{}, false
	}
	return c, true
}

func (g *Square) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range squareDirs {
		n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
		if g.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

func (g *Square) Distance(a, b Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func (g *Square) Draw(s Surface, theme Theme) {
	drawAll(g, s, theme)
}

func (g *Square) DrawTile(s Surface, c Coord, fill Color, theme Theme) {
	if s != nil && g.Contains(c) {
		s.Polygon(g.Corners(c), fill, theme.Stroke)
	}
}
