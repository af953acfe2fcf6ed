package defense

import (
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/grid"
)

// Layout 是一次寻路用的障碍快照：grid[y][x] 为 1 表示阻挡。
type Layout struct {
	Grid    [][]int
	Portals []grid.Coord
	Home    grid.Coord
}

// BuildLayout 每次都从当前建筑占用重建障碍矩阵。
// 主基地和入口可通行；其它建筑在已建成或已开始扣料时阻挡。
// blocked 是临时追加的阻挡格（预览“如果在这里放一个建筑”）。
func BuildLayout(w *entity.World, cat *building.Catalog, blocked ...grid.Coord) (Layout, error) {
	g := w.Grid()
	matrix := make([][]int, g.Height())
	for y := range matrix {
		matrix[y] = make([]int, g.Width())
	}

	var (
		l       Layout
		hasHome bool
	)
	for _, b := range w.Buildings() {
		def, ok := cat.Get(b.Type)
		switch {
		case ok && def.Kind == building.KindHome:
			if !hasHome {
				l.Home, hasHome = b.Coord, true
			}
			continue
		case ok && def.Kind == building.KindPortal:
			l.Portals = append(l.Portals, b.Coord)
			continue
		case ok && def.Passable:
			continue
		}
		if !b.Constructed() && !b.Committed {
			continue
		}
		if g.Contains(b.Coord) {
			matrix[b.Coord.Y][b.Coord.X] = 1
		}
	}
	for _, c := range blocked {
		if g.Contains(c) {
			matrix[c.Y][c.X] = 1
		}
	}
	l.Grid = matrix

	if !hasHome {
		return l, ErrNoHome.WithData("map_id", w.MapID())
	}
	if len(l.Portals) == 0 {
		return l, ErrNoPortal.WithData("map_id", w.MapID())
	}
	return l, nil
}

// TowerSite 是一座可以开火的防御塔。
type TowerSite struct {
	Coord grid.Coord
	Stats building.Tower
}

// Towers 返回已建成、未关停且有电的防御塔，按坐标顺序。
func Towers(w *entity.World, cat *building.Catalog) []TowerSite {
	var out []TowerSite
	for _, b := range w.Buildings() {
		def, ok := cat.Get(b.Type)
		if !ok || def.Kind != building.KindTower || def.Tower == nil {
			continue
		}
		if !b.Active() || !b.Powered {
			continue
		}
		out = append(out, TowerSite{Coord: b.Coord, Stats: *def.Tower})
	}
	return out
}
