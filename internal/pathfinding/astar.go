package pathfinding

import "container/heap"

var dirs = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

type node struct {
	x, y  int
	g, f  int
	seq   int
	index int
}

// openSet 按 f 升序，f 相同比 g 大者优先（更靠近终点），再按入堆顺序，保证结果确定。
type openSet []*node

func (h openSet) Len() int { return len(h) }
func (h openSet) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g > h[j].g
	}
	return h[i].seq < h[j].seq
}
func (h openSet) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openSet) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	n.index = -1
	return n
}

// FindPath 在障碍矩阵上做 4 方向 A*（曼哈顿启发）。
// 返回包含起点和终点的坐标序列；起终点越界、被阻挡或不可达时返回空切片。
func FindPath(grid [][]int, start, end Point) [][2]int {
	h := len(grid)
	if h == 0 {
		return [][2]int{}
	}
	w := len(grid[0])
	inside := func(x, y int) bool { return x >= 0 && y >= 0 && y < h && x < len(grid[y]) && x < w }
	if !inside(start.X, start.Y) || !inside(end.X, end.Y) {
		return [][2]int{}
	}
	if grid[start.Y][start.X] != 0 || grid[end.Y][end.X] != 0 {
		return [][2]int{}
	}

	idx := func(x, y int) int { return y*w + x }
	gScore := make([]int, w*h)
	for i := range gScore {
		gScore[i] = -1
	}
	parent := make([]int, w*h)
	closed := make([]bool, w*h)
	nodes := make(map[int]*node)

	seq := 0
	open := &openSet{}
	first := &node{x: start.X, y: start.Y, f: manhattan(start.X, start.Y, end), seq: seq}
	heap.Push(open, first)
	nodes[idx(start.X, start.Y)] = first
	gScore[idx(start.X, start.Y)] = 0
	parent[idx(start.X, start.Y)] = -1

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		ci := idx(cur.x, cur.y)
		if closed[ci] {
			continue
		}
		closed[ci] = true
		if cur.x == end.X && cur.y == end.Y {
			return rebuild(parent, ci, w)
		}
		for _, d := range dirs {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if !inside(nx, ny) || grid[ny][nx] != 0 {
				continue
			}
			ni := idx(nx, ny)
			if closed[ni] {
				continue
			}
			g := cur.g + 1
			if gScore[ni] >= 0 && g >= gScore[ni] {
				continue
			}
			gScore[ni] = g
			parent[ni] = ci
			if n, ok := nodes[ni]; ok && n.index >= 0 {
				n.g, n.f = g, g+manhattan(nx, ny, end)
				heap.Fix(open, n.index)
				continue
			}
			seq++
			n := &node{x: nx, y: ny, g: g, f: g + manhattan(nx, ny, end), seq: seq}
			nodes[ni] = n
			heap.Push(open, n)
		}
	}
	return [][2]int{}
}

func rebuild(parent []int, at, w int) [][2]int {
	var rev [][2]int
	for i := at; i >= 0; i = parent[i] {
		rev = append(rev, [2]int{i % w, i / w})
	}
	out := make([][2]int, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

func manhattan(x, y int, end Point) int {
	return abs(x-end.X) + abs(y-end.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
