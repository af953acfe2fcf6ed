package pathfinding

import "github.com/google/uuid"

// LocalFinder 在调用方 goroutine 里同步寻路，给无头模拟和测试使用。
type LocalFinder struct{}

func (LocalFinder) Submit(grid [][]int, pairs [][2]Point, done Callback) string {
	id := uuid.NewString()
	res := Solve(&PathRequest{ID: id, Grid: grid, Input: pairs})
	paths := make([][][2]int, len(res))
	for _, r := range res {
		paths[r.Index] = r.Path
	}
	if done != nil {
		done(paths, nil)
	}
	return id
}

// Solve 对请求里的每一对起终点求路径，结果按 Input 顺序。
func Solve(req *PathRequest) []PathResult {
	if req == nil {
		return nil
	}
	out := make([]PathResult, 0, len(req.Input))
	for i, pair := range req.Input {
		out = append(out, PathResult{ID: req.ID, Index: i, Path: FindPath(req.Grid, pair[0], pair[1])})
	}
	return out
}

var _ Finder = LocalFinder{}
