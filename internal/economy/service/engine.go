package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/gameconfig/resource"
	"Tycoon/modules/kit/logx"
	"Tycoon/modules/kit/tracex"

	"go.uber.org/zap"
)

// Redrawer 接收每个 tick 末的重绘通知。
type Redrawer interface {
	Redraw(mapID string, tick uint64)
}

// Saver 是持久化协作方：Flush 异步落库，FlushSync 等待写完。
type Saver interface {
	Flush(ctx context.Context) error
	FlushSync(ctx context.Context) error
}

// OfflineEarner 只在补算离线时间时被调用。
type OfflineEarner interface {
	Accrue(ctx context.Context, w *entity.World, valuation float64)
}

// IDGenerator 按 tick 时刻出订单号。
type IDGenerator interface {
	NextID(now time.Time) int64
}

// OfflineCash 按估值的固定比例给离线收益。
type OfflineCash struct {
	Rate float64
}

func (o OfflineCash) Accrue(_ context.Context, w *entity.World, valuation float64) {
	w.AddMoney(valuation * o.Rate)
}

type Options struct {
	Resources  *resource.Catalog
	Buildings  *building.Catalog
	Feed       *crowdfunding.Feed
	Offline    OfflineEarner
	Redraw     Redrawer
	Saver      Saver
	IDs        IDGenerator
	Logger     logx.Logger
	Hooks      map[string]Hook
	SaveEvery  int           // 每 N 个 tick 落一次库
	OrderEvery int           // 每 N 个 tick 生成一张订单
	OrderTTL   time.Duration // 订单有效期
	MaxCatchUp time.Duration // 离线补算上限
}

const (
	defaultOrderTTL   = 5 * time.Minute
	defaultMaxCatchUp = 24 * time.Hour
	maxOpenOrders     = 5
)

// Engine 是一张地图的 tick 结算器，和所属 actor 一样单线程使用。
type Engine struct {
	opt   Options
	log   logx.Logger
	adj   *adjacencyCache
	hooks map[string]Hook
}

func NewEngine(opt Options) (*Engine, error) {
	if opt.Resources == nil || opt.Buildings == nil {
		return nil, errors.New("economy engine: catalogs are required")
	}
	if opt.Logger == nil {
		opt.Logger = logx.Nop()
	}
	if opt.OrderTTL <= 0 {
		opt.OrderTTL = defaultOrderTTL
	}
	if opt.MaxCatchUp <= 0 {
		opt.MaxCatchUp = defaultMaxCatchUp
	}
	e := &Engine{
		opt:   opt,
		log:   opt.Logger,
		adj:   newAdjacencyCache(),
		hooks: map[string]Hook{building.HookGrowth: GrowthHook{}},
	}
	for name, h := range opt.Hooks {
		e.hooks[name] = h
	}
	return e, nil
}

func (e *Engine) Resources() *resource.Catalog { return e.opt.Resources }
func (e *Engine) Buildings() *building.Catalog { return e.opt.Buildings }
func (e *Engine) Feed() *crowdfunding.Feed     { return e.opt.Feed }

// tickState 只活在一次 Tick 内。
type tickState struct {
	ctx     context.Context
	w       *entity.World
	now     time.Time
	next    *entity.Cycle
	offline bool
	mods    map[string]float64
	runs    []*run
	errs    []error
}

type step struct {
	name string
	fn   func(ts *tickState) error
}

// Steps 是一次 tick 的固定顺序，后一步只在前一步完成后开始。
func (e *Engine) steps() []step {
	return []step{
		{"caches", e.clearCaches},
		{"policies", e.resolvePolicies},
		{"production", e.resolveProduction},
		{"pricing", e.resolvePricing},
		{"crowdfunding", e.resolveCrowdfunding},
		{"power", e.resolvePower},
		{"hooks", e.resolveHooks},
		{"offline", e.resolveOffline},
		{"trade", e.resolveTrade},
		{"swap", e.swap},
		{"notify", e.notify},
	}
}

// StepNames 返回 tick 步骤名，按执行顺序。
func (e *Engine) StepNames() []string {
	steps := e.steps()
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.name
	}
	return out
}

// Tick 结算一秒。单个建筑的失败被隔离并记录在 cycle.Failed；
// 返回的错误只包含需要上报给外部协作方的跨边界失败（例如种子源不可用）。
func (e *Engine) Tick(ctx context.Context, w *entity.World, now time.Time) error {
	return e.tick(ctx, w, now, false)
}

func (e *Engine) tick(ctx context.Context, w *entity.World, now time.Time, offline bool) error {
	ts := &tickState{
		w:       w,
		now:     now,
		next:    w.BeginCycle(),
		offline: offline,
	}
	for _, s := range e.steps() {
		ts.ctx = tracex.WithTick(ctx, w.MapID(), ts.next.Tick, s.name)
		if err := s.fn(ts); err != nil {
			ts.errs = append(ts.errs, err)
			logx.ReportSysErrorWithLoggerContext(ts.ctx, e.log, logx.NewSysLog("economy.tick."+s.name, err),
				zap.String("map_id", w.MapID()))
		}
	}
	return errors.Join(ts.errs...)
}

// MinuteTick 同步落库并记录离线检查点。
func (e *Engine) MinuteTick(ctx context.Context, w *entity.World, now time.Time) error {
	w.SetOfflineAt(now)
	if e.opt.Saver == nil {
		return nil
	}
	if err := e.opt.Saver.FlushSync(ctx); err != nil {
		err = ErrPersist.WithCause(err).WithData("map_id", w.MapID())
		logx.ReportSysErrorWithLoggerContext(ctx, e.log, logx.NewSysLog("economy.minute_tick", err))
		return err
	}
	return nil
}

// CatchUp 从离线检查点补算到 to，每秒一个 tick，并开启离线收益。返回补算的 tick 数。
func (e *Engine) CatchUp(ctx context.Context, w *entity.World, to time.Time) (int, error) {
	from := w.OfflineAt()
	if from.IsZero() || !to.After(from) {
		w.SetOfflineAt(to)
		return 0, nil
	}
	elapsed := min(to.Sub(from), e.opt.MaxCatchUp)
	n := int(elapsed / time.Second)
	var errs []error
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return i - 1, err
		}
		if err := e.tick(ctx, w, from.Add(time.Duration(i)*time.Second), true); err != nil {
			errs = append(errs, err)
		}
	}
	w.SetOfflineAt(to)
	e.log.WithContext(ctx).Info("offline catch up finished",
		zap.String("map_id", w.MapID()),
		zap.Int("ticks", n),
		zap.Float64("money", w.Money()),
	)
	if len(errs) > 0 {
		return n, fmt.Errorf("catch up: %d ticks reported errors: %w", len(errs), errs[len(errs)-1])
	}
	return n, nil
}

func (e *Engine) clearCaches(ts *tickState) error {
	e.adj.reset()
	return nil
}

// resolvePolicies 汇总当前时间生效的产出乘数；"" 表示作用于全部资源。
func (e *Engine) resolvePolicies(ts *tickState) error {
	ts.w.PruneModifiers(ts.now)
	ts.mods = make(map[string]float64)
	for _, m := range ts.w.Modifiers() {
		if !m.ActiveAt(ts.now) {
			continue
		}
		cur, ok := ts.mods[m.Resource]
		if !ok {
			cur = 1
		}
		ts.mods[m.Resource] = cur * m.Multiplier
	}
	return nil
}

func (ts *tickState) modifier(resourceID string) float64 {
	v := 1.0
	if m, ok := ts.mods[""]; ok {
		v *= m
	}
	if m, ok := ts.mods[resourceID]; ok {
		v *= m
	}
	return v
}

func (e *Engine) resolveCrowdfunding(ts *tickState) error {
	if e.opt.Feed == nil {
		return nil
	}
	return e.opt.Feed.Tick(ts.ctx, ts.w, ts.now)
}

func (e *Engine) resolveOffline(ts *tickState) error {
	ts.next.Valuation = e.valuation(ts.w, ts.next)
	if ts.offline && e.opt.Offline != nil {
		e.opt.Offline.Accrue(ts.ctx, ts.w, ts.next.Valuation)
	}
	return nil
}

// swap 换 cycle；在线 tick 同时推进离线检查点，重启时不会重放已经跑过的秒。
func (e *Engine) swap(ts *tickState) error {
	ts.w.SwapCycle()
	if !ts.offline && ts.now.After(ts.w.OfflineAt()) {
		ts.w.SetOfflineAt(ts.now)
	}
	return nil
}

func (e *Engine) notify(ts *tickState) error {
	tick := ts.w.Tick()
	if e.opt.Redraw != nil && !ts.offline {
		e.opt.Redraw.Redraw(ts.w.MapID(), tick)
	}
	if e.opt.Saver != nil && e.opt.SaveEvery > 0 && tick%uint64(e.opt.SaveEvery) == 0 {
		if err := e.opt.Saver.Flush(ts.ctx); err != nil {
			return ErrPersist.WithCause(err).WithData("tick", tick)
		}
	}
	return nil
}

// guard 隔离单个建筑的失败：recover panic、记录到 cycle.Failed、打 sys 日志，tick 继续。
func (e *Engine) guard(ts *tickState, b *entity.Building, action string, fn func() error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = ErrEntityPanic.WithCause(fmt.Errorf("%v", r)).WithData("coord", b.Key())
			}
		}()
		return fn()
	}()
	if err == nil {
		return
	}
	ts.next.Failed[b.Key()] = err.Error()
	logx.ReportSysErrorWithLoggerContext(ts.ctx, e.log, logx.NewSysLog(action, err),
		zap.String("map_id", ts.w.MapID()),
		zap.String("coord", b.Key()),
		zap.String("type", b.Type),
	)
}
