package pathfinding

// Point 是格子坐标，线上格式为 {x, y}。
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PathRequest 携带一份障碍矩阵快照（grid[y][x]，1 为阻挡）和若干 (起点, 终点) 对。
type PathRequest struct {
	ID    string     `json:"id"`
	Grid  [][]int    `json:"grid"`
	Input [][2]Point `json:"input"`
}

// PathResult 每个 (起点, 终点) 对回一条；Index 是该对在 Input 里的下标。
// 不可达时 Path 为空数组。
type PathResult struct {
	ID    string   `json:"id"`
	Index int      `json:"index"`
	Path  [][2]int `json:"path"`
}

// Callback 收到一个请求的全部路径（按 Input 顺序）或错误。
type Callback func(paths [][][2]int, err error)

// Finder 异步寻路；done 只会被调用一次。
type Finder interface {
	Submit(grid [][]int, pairs [][2]Point, done Callback) string
}
