package grid

import "math"

// Hex 是尖顶六边形拓扑，存储用 odd-r 偏移坐标（奇数行右移半格），
// 邻接和距离换算到 cube 坐标计算。
type Hex struct {
	bounds
}

var sqrt3 = math.Sqrt(3)

// odd-r 偏移下偶数行/奇数行的 6 个邻居方向。
var hexDirs = [2][6]Coord{
	{{1, 0}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}},
	{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {0, 1}, {1, 1}},
}

type cube struct {
	q, r, s int
}

func toCube(c Coord) cube {
	q := c.X - (c.Y-(c.Y&1))/2
	return cube{q: q, r: c.Y, s: -q - c.Y}
}

func fromCube(h cube) Coord {
	return Coord{X: h.q + (h.r-(h.r&1))/2, Y: h.r}
}

func (g *Hex) Kind() Kind { return KindHex }

func (g *Hex) Center(c Coord) Point {
	x := g.size * sqrt3 * (float64(c.X) + 0.5*float64(c.Y&1))
	y := g.size * 1.5 * float64(c.Y)
	// 整体平移，使 (0,0) 的外接矩形贴着原点。
	return Point{X: x + g.size*sqrt3/2, Y: y + g.size}
}

func (g *Hex) Corners(c Coord) []Point {
	center := g.Center(c)
	out := make([]Point, 6)
	for i := 0; i < 6; i++ {
		angle := math.Pi / 180 * float64(60*i-30)
		out[i] = Point{X: center.X + g.size*math.Cos(angle), Y: center.Y + g.size*math.Sin(angle)}
	}
	return out
}

func (g *Hex) At(p Point) (Coord, bool) {
	px := p.X - g.size*sqrt3/2
	py := p.Y - g.size
	fq := (sqrt3/3*px - py/3) / g.size
	fr := (2.0 / 3 * py) / g.size
	c := fromCube(roundCube(fq, fr, -fq-fr))
	if !g.Contains(c) {
		return Coord{}, false
	}
	return c, true
}

func roundCube(fq, fr, fs float64) cube {
	q, r, s := math.Round(fq), math.Round(fr), math.Round(fs)
	dq, dr, ds := math.Abs(q-fq), math.Abs(r-fr), math.Abs(s-fs)
	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	default:
		s = -q - r
	}
	return cube{q: int(q), r: int(r), s: int(s)}
}

func (g *Hex) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 6)
	for _, d := range hexDirs[c.Y&1] {
		n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
		if g.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

func (g *Hex) Distance(a, b Coord) int {
	ca, cb := toCube(a), toCube(b)
	return (abs(ca.q-cb.q) + abs(ca.r-cb.r) + abs(ca.s-cb.s)) / 2
}

func (g *Hex) Draw(s Surface, theme Theme) {
	drawAll(g, s, theme)
}

func (g *Hex) DrawTile(s Surface, c Coord, fill Color, theme Theme) {
	if s != nil && g.Contains(c) {
		s.Polygon(g.Corners(c), fill, theme.Stroke)
	}
}
