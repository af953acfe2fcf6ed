// Package grid 把整数格子坐标映射到世界坐标，提供邻接与格距；方格与六边形两种拓扑共用同一接口。
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord 是格子坐标，String() 形如 "x,y"，作为 map key 使用。
type Coord struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

func (c Coord) String() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func ParseCoord(s string) (Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("grid: bad coord %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coord{}, fmt.Errorf("grid: bad coord %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coord{}, fmt.Errorf("grid: bad coord %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}

// Point 是世界坐标（像素）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Kind string

const (
	KindSquare Kind = "square"
	KindHex    Kind = "hex"
)

type Color struct {
	R, G, B, A uint8
}

// Theme 是绘制用的主题色，由渲染层传入。
type Theme struct {
	Fill      Color
	Stroke    Color
	Highlight Color
}

// Surface 是渲染层提供的绘制目标；grid 只负责算多边形。
type Surface interface {
	Polygon(points []Point, fill, stroke Color)
}

// Grid 的拓扑在创建后不可变。
type Grid interface {
	Kind() Kind
	Width() int
	Height() int
	TileCount() int
	TileSize() float64
	Contains(c Coord) bool
	Center(c Coord) Point
	Corners(c Coord) []Point
	// At 返回包含 p 的格子；该位置没有格子时 ok=false。
	At(p Point) (c Coord, ok bool)
	// Neighbors 只返回地图内的邻居（方格 4 个、六边形 6 个）。
	Neighbors(c Coord) []Coord
	Distance(a, b Coord) int
	Draw(s Surface, theme Theme)
	DrawTile(s Surface, c Coord, fill Color, theme Theme)
}

func New(kind Kind, width, height int, tileSize float64) (Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid size %dx%d", width, height)
	}
	if tileSize <= 0 {
		tileSize = 1
	}
	b := bounds{w: width, h: height, size: tileSize}
	switch kind {
	case KindSquare, "":
		return &Square{bounds: b}, nil
	case KindHex:
		return &Hex{bounds: b}, nil
	default:
		return nil, fmt.Errorf("grid: unknown kind %q", kind)
	}
}

type bounds struct {
	w, h int
	size float64
}

func (b bounds) Width() int        { return b.w }
func (b bounds) Height() int       { return b.h }
func (b bounds) TileCount() int    { return b.w * b.h }
func (b bounds) TileSize() float64 { return b.size }

func (b bounds) Contains(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < b.w && c.Y < b.h
}

// All 按行优先返回全部格子。
func All(g Grid) []Coord {
	out := make([]Coord, 0, g.TileCount())
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

func drawAll(g Grid, s Surface, theme Theme) {
	if s == nil {
		return
	}
	for _, c := range All(g) {
		s.Polygon(g.Corners(c), theme.Fill, theme.Stroke)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
