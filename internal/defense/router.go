package defense

import (
	"context"

	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/grid"
	"Tycoon/modules/kit/logx"

	"go.uber.org/zap"
)

// Executor 把寻路回调切回 Router 所属的 goroutine（通常是模拟 actor 的 mailbox）。
// 为 nil 时直接在回调所在 goroutine 上执行。
type Executor func(fn func())

// Routes 是一次寻路的结果：入口坐标 key -> 路径（含两端）。不可达的入口没有条目。
type Routes map[string][]grid.Coord

// Router 维护每个入口到主基地的缓存路径，以及所有路径经过的格子集合。
// 只有正式重算（没有临时阻挡）会写缓存；预览结果只交给调用方。
type Router struct {
	finder pathfinding.Finder
	post   Executor
	log    logx.Logger

	version uint64
	applied uint64
	portals []grid.Coord
	home    grid.Coord
	paths   Routes
	used    map[string]struct{}
}

func NewRouter(finder pathfinding.Finder, post Executor, log logx.Logger) *Router {
	if finder == nil {
		finder = pathfinding.LocalFinder{}
	}
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if log == nil {
		log = logx.Nop()
	}
	return &Router{
		finder: finder,
		post:   post,
		log:    log,
		paths:  make(Routes),
		used:   make(map[string]struct{}),
	}
}

// Recompute 发起一次正式重算。更早发出、晚到的结果按版本号丢弃。
func (r *Router) Recompute(l Layout, done func(error)) {
	r.version++
	v := r.version
	portals := append([]grid.Coord(nil), l.Portals...)
	home := l.Home
	r.submit(l, func(routes Routes, err error) {
		if err == nil {
			r.apply(v, portals, home, routes)
		} else {
			logx.ReportSysErrorWithLoggerContext(context.Background(), r.log, logx.NewSysLog("defense.recompute", err),
				zap.Uint64("version", v))
		}
		if done != nil {
			done(err)
		}
	})
}

// Preview 用带临时阻挡的快照寻路，不动缓存。
func (r *Router) Preview(l Layout, done func(Routes, error)) {
	r.submit(l, func(routes Routes, err error) {
		if done != nil {
			done(routes, err)
		}
	})
}

// Clear 清空缓存（地图上没有入口或主基地时）。
func (r *Router) Clear() {
	r.version++
	r.applied = r.version
	r.portals = nil
	r.paths = make(Routes)
	r.used = make(map[string]struct{})
}

func (r *Router) submit(l Layout, done func(Routes, error)) {
	pairs := make([][2]pathfinding.Point, 0, len(l.Portals))
	for _, p := range l.Portals {
		pairs = append(pairs, [2]pathfinding.Point{
			{X: p.X, Y: p.Y},
			{X: l.Home.X, Y: l.Home.Y},
		})
	}
	portals := append([]grid.Coord(nil), l.Portals...)
	r.finder.Submit(l.Grid, pairs, func(paths [][][2]int, err error) {
		r.post(func() {
			if err != nil {
				done(nil, ErrRouteFailed.WithCause(err))
				return
			}
			done(toRoutes(portals, paths), nil)
		})
	})
}

func (r *Router) apply(v uint64, portals []grid.Coord, home grid.Coord, routes Routes) {
	if v != r.version {
		r.log.Debug("drop stale route", zap.Uint64("version", v), zap.Uint64("latest", r.version))
		return
	}
	r.applied = v
	r.portals = portals
	r.home = home
	r.paths = routes
	r.used = make(map[string]struct{})
	for _, path := range routes {
		for _, c := range path {
			r.used[c.String()] = struct{}{}
		}
	}
}

func toRoutes(portals []grid.Coord, paths [][][2]int) Routes {
	out := make(Routes, len(portals))
	for i, p := range portals {
		if i >= len(paths) || len(paths[i]) == 0 {
			continue
		}
		path := make([]grid.Coord, len(paths[i]))
		for j, xy := range paths[i] {
			path[j] = grid.Coord{X: xy[0], Y: xy[1]}
		}
		out[p.String()] = path
	}
	return out
}

// Path 返回入口的缓存路径；被堵死时 ok=false。
func (r *Router) Path(portal grid.Coord) ([]grid.Coord, bool) {
	p, ok := r.paths[portal.String()]
	if !ok {
		return nil, false
	}
	return append([]grid.Coord(nil), p...), true
}

func (r *Router) Portals() []grid.Coord {
	return append([]grid.Coord(nil), r.portals...)
}

func (r *Router) Home() grid.Coord { return r.home }

// OnPath 判断格子是否在任一缓存路径上。
func (r *Router) OnPath(c grid.Coord) bool {
	_, ok := r.used[c.String()]
	return ok
}

// Routes 返回缓存路径的副本。
func (r *Router) Routes() Routes {
	out := make(Routes, len(r.paths))
	for k, v := range r.paths {
		out[k] = append([]grid.Coord(nil), v...)
	}
	return out
}

// Settled 表示最近一次正式重算的结果已经落地。
func (r *Router) Settled() bool { return r.applied == r.version }
