package pathfinding

import (
	"encoding/json"
	"reflect"
	"testing"
)

func open(w, h int) [][]int {
	g := make([][]int, h)
	for y := range g {
		g[y] = make([]int, w)
	}
	return g
}

func TestFindPath_直线(t *testing.T) {
	g := open(6, 1)
	got := FindPath(g, Point{0, 0}, Point{5, 0})
	want := [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("path got=%v", got)
	}
}

func TestFindPath_绕过障碍且不走斜线(t *testing.T) {
	g := open(5, 3)
	g[0][2] = 1
	g[1][2] = 1
	got := FindPath(g, Point{0, 0}, Point{4, 0})
	// 必须从第 2 行绕过：4 步横向 + 2 下 + 2 上
	if len(got) != 9 {
		t.Fatalf("path len got=%d path=%v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		dx, dy := abs(got[i][0]-got[i-1][0]), abs(got[i][1]-got[i-1][1])
		if dx+dy != 1 {
			t.Fatalf("非 4 方向移动: %v -> %v", got[i-1], got[i])
		}
		if g[got[i][1]][got[i][0]] != 0 {
			t.Fatalf("路径穿过障碍 %v", got[i])
		}
	}
}

func TestFindPath_不可达返回空(t *testing.T) {
	g := open(3, 3)
	g[0][1], g[1][1], g[2][1] = 1, 1, 1
	if got := FindPath(g, Point{0, 0}, Point{2, 2}); got == nil || len(got) != 0 {
		t.Fatalf("got=%v", got)
	}
	if got := FindPath(g, Point{1, 1}, Point{2, 2}); len(got) != 0 {
		t.Fatalf("起点被阻挡 got=%v", got)
	}
	if got := FindPath(g, Point{0, 0}, Point{9, 9}); len(got) != 0 {
		t.Fatalf("终点越界 got=%v", got)
	}
	if got := FindPath(g, Point{0, 0}, Point{0, 0}); len(got) != 1 {
		t.Fatalf("起终点相同 got=%v", got)
	}
}

func TestLocalFinder_批量按顺序回调(t *testing.T) {
	g := open(4, 4)
	var got [][][2]int
	calls := 0
	id := LocalFinder{}.Submit(g, [][2]Point{{{0, 0}, {3, 0}}, {{0, 3}, {0, 0}}}, func(paths [][][2]int, err error) {
		calls++
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		got = paths
	})
	if id == "" || calls != 1 || len(got) != 2 {
		t.Fatalf("id=%q calls=%d paths=%v", id, calls, got)
	}
	if got[0][len(got[0])-1] != [2]int{3, 0} || got[1][len(got[1])-1] != [2]int{0, 0} {
		t.Fatalf("paths got=%v", got)
	}
}

func TestMessages_线上格式(t *testing.T) {
	raw, err := json.Marshal(PathRequest{ID: "a", Grid: [][]int{{0, 1}}, Input: [][2]Point{{{0, 0}, {1, 0}}}})
	if err != nil {
		t.Fatalf("marshal err=%v", err)
	}
	want := `{"id":"a","grid":[[0,1]],"input":[[{"x":0,"y":0},{"x":1,"y":0}]]}`
	if string(raw) != want {
		t.Fatalf("got=%s", raw)
	}
	raw, _ = json.Marshal(PathResult{ID: "a", Path: [][2]int{}})
	if string(raw) != `{"id":"a","index":0,"path":[]}` {
		t.Fatalf("got=%s", raw)
	}
}
