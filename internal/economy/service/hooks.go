package service

import (
	"context"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"

	"go.uber.org/zap"
)

// Hook 是建筑级的 tick 逻辑，按目录表里的 hook 名挂载。
type Hook interface {
	Tick(ctx context.Context, w *entity.World, b *entity.Building, def building.Building) error
}

type HookFunc func(ctx context.Context, w *entity.World, b *entity.Building, def building.Building) error

func (f HookFunc) Tick(ctx context.Context, w *entity.World, b *entity.Building, def building.Building) error {
	return f(ctx, w, b, def)
}

// GrowthHook 让建筑在运行中逐渐成熟，成熟度决定产出倍率。
type GrowthHook struct{}

func (GrowthHook) Tick(_ context.Context, w *entity.World, b *entity.Building, def building.Building) error {
	if def.GrowthTicks <= 0 || b.Growth >= def.GrowthTicks || !b.Powered {
		return nil
	}
	b.Growth++
	w.MarkDirty()
	return nil
}

func growthFactor(b *entity.Building, def building.Building) float64 {
	if def.Hook != building.HookGrowth || def.GrowthTicks <= 0 || def.GrowthBonus <= 0 {
		return 1
	}
	progress := min(1, float64(b.Growth)/float64(def.GrowthTicks))
	return 1 + (def.GrowthBonus-1)*progress
}

// resolveHooks 先推进施工，再执行已建成建筑的 hook。
func (e *Engine) resolveHooks(ts *tickState) error {
	for _, b := range ts.w.Buildings() {
		if !b.Constructed() {
			e.guard(ts, b, "economy.construct", func() error {
				return e.construct(ts, b)
			})
			continue
		}
		if !b.Active() {
			continue
		}
		def, ok := e.opt.Buildings.Get(b.Type)
		if !ok || def.Hook == building.HookNone {
			continue
		}
		h, ok := e.hooks[def.Hook]
		if !ok {
			continue
		}
		e.guard(ts, b, "economy.hook."+def.Hook, func() error {
			return h.Tick(ts.ctx, ts.w, b, def)
		})
	}
	return nil
}

// construct 第一次推进时一次性扣除造价；扣不起就原地等待。
func (e *Engine) construct(ts *tickState, b *entity.Building) error {
	def, ok := e.opt.Buildings.Get(b.Type)
	if !ok {
		return ErrRecipeMissing.WithData("type", b.Type).WithData("coord", b.Key())
	}
	if !b.Committed {
		for id, amt := range def.Cost {
			if ts.w.Usable(id) < amt {
				return nil
			}
		}
		for _, id := range sortedKeys(def.Cost) {
			ts.w.Take(id, def.Cost[id])
		}
		b.Committed = true
		ts.next.LayoutChanged = true
	}
	b.Progress++
	ts.w.MarkDirty()
	if b.Progress >= max(1, def.BuildTicks) {
		b.Status = entity.StatusConstructed
		ts.next.LayoutChanged = true
		e.log.WithContext(ts.ctx).Info("building constructed",
			zap.String("map_id", ts.w.MapID()),
			zap.String("coord", b.Key()),
			zap.String("type", b.Type),
		)
	}
	return nil
}

var _ Hook = GrowthHook{}
