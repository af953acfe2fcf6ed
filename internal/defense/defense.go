package defense

import (
	"time"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/grid"
	"Tycoon/modules/kit/logx"

	"golang.org/x/time/rate"
)

type Options struct {
	Buildings    *building.Catalog
	Finder       pathfinding.Finder
	Post         Executor
	Wave         WaveConfig
	PreviewRate  float64 // 每秒
	PreviewBurst int
	Logger       logx.Logger
}

// Defense 把一张地图的寻路缓存、波次状态机和选格交互绑在一起，归模拟 actor 独占。
type Defense struct {
	w       *entity.World
	cat     *building.Catalog
	router  *Router
	waves   *Manager
	hijack  Selector
	limiter *rate.Limiter
	log     logx.Logger
}

func New(w *entity.World, opts Options) *Defense {
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	if opts.Buildings == nil {
		opts.Buildings = building.MustDefault()
	}
	if opts.PreviewRate <= 0 {
		opts.PreviewRate = 4
	}
	if opts.PreviewBurst <= 0 {
		opts.PreviewBurst = 1
	}
	d := &Defense{
		w:       w,
		cat:     opts.Buildings,
		router:  NewRouter(opts.Finder, opts.Post, opts.Logger),
		limiter: rate.NewLimiter(rate.Limit(opts.PreviewRate), opts.PreviewBurst),
		log:     opts.Logger,
	}
	d.waves = NewManager(opts.Wave, w.Grid(), d.router, func() []TowerSite {
		return Towers(d.w, d.cat)
	}, opts.Logger)
	return d
}

func (d *Defense) Router() *Router      { return d.router }
func (d *Defense) Waves() *Manager      { return d.waves }
func (d *Defense) World() *entity.World { return d.w }

// Reroute 用当前布局正式重算缓存路径。没有主基地或入口时清空缓存。
func (d *Defense) Reroute(done func(error)) error {
	l, err := BuildLayout(d.w, d.cat)
	if err != nil {
		d.router.Clear()
		return err
	}
	d.router.Recompute(l, done)
	return nil
}

// Select 处理一次选格：先交给挂起的劫持监听；否则在没有进行中的波次、且格子在缓存路径上
// （主基地除外）时，按“这里被堵上”做一次预览寻路。previewed 表示是否发起了预览。
func (d *Defense) Select(c grid.Coord, now time.Time, onPreview func(Routes, error)) (previewed bool, err error) {
	if !d.w.Grid().Contains(c) {
		return false, entity.ErrOutOfBounds.WithData("coord", c.String())
	}
	if d.hijack.Resolve(c) {
		return false, nil
	}
	if d.waves.Status() == StatusInProgress {
		return false, nil
	}
	if c == d.router.Home() || !d.router.OnPath(c) {
		return false, nil
	}
	if !d.limiter.AllowN(now, 1) {
		return false, ErrPreviewThrottled
	}
	l, err := BuildLayout(d.w, d.cat, c)
	if err != nil {
		return false, err
	}
	d.router.Preview(l, onPreview)
	return true, nil
}

// Deselect 取消选格，刷新正式路径。
func (d *Defense) Deselect(done func(error)) error {
	if d.waves.Status() == StatusInProgress {
		return nil
	}
	return d.Reroute(done)
}

func (d *Defense) Hijack(done HijackFunc) { d.hijack.Hijack(done) }

func (d *Defense) CancelHijack() { d.hijack.Cancel() }

func (d *Defense) StartWave() error { return d.waves.StartNextWave() }

func (d *Defense) StopWave() bool { return d.waves.StopNextWave() }

func (d *Defense) ClaimReward() (float64, error) { return d.waves.ClaimReward() }

func (d *Defense) Step(dt time.Duration) StepReport {
	return d.waves.Step(dt)
}

// PayReward 在秒 tick 上调用，返回本次到账金额。
func (d *Defense) PayReward() float64 {
	amount := d.waves.DrainReward()
	if amount > 0 {
		d.w.AddMoney(amount)
	}
	return amount
}
