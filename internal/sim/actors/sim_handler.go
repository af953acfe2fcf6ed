package actors

import (
	"context"

	"Tycoon/internal/defense"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/shared/grid"
	"Tycoon/modules/kit/errx"
	"Tycoon/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type SimHandler struct{}

var SH = &SimHandler{}

// ---- 驱动 ----

func (h *SimHandler) HandleSecondTick(ctx actor.Context, p *SimActor, req *messages.SecondTick) {
	tctx, cancel := p.tickContext()
	defer cancel()

	// 单个建筑的失败已在结算器内隔离；这里只剩跨边界失败（种子源、落库），tick 本身照常推进
	err := p.engine.Tick(tctx, p.world, p.now(req.Now))
	paid := p.defense.PayReward()
	if p.world.Current().LayoutChanged {
		p.reroute()
	}
	payload := map[string]any{"tick": p.world.Tick(), "reward_paid": paid}
	if err != nil {
		payload["errors"] = errorCodes(err)
	}
	respond(ctx, ok(payload))
}

// errorCodes 展开 errors.Join 的结果，逐个取 errx code；没有 code 的记为内部错误。
func errorCodes(err error) []string {
	if err == nil {
		return nil
	}
	var list []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		list = joined.Unwrap()
	} else {
		list = []error{err}
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		code := errx.CodeOf(e)
		if code == "" {
			code = errx.CodeInternal
		}
		out = append(out, string(code))
	}
	return out
}

func (h *SimHandler) HandleMinuteTick(ctx actor.Context, p *SimActor, req *messages.MinuteTick) {
	tctx, cancel := p.tickContext()
	defer cancel()

	if err := p.engine.MinuteTick(tctx, p.world, p.now(req.Now)); err != nil {
		respond(ctx, fail(err))
		return
	}
	respond(ctx, ok(map[string]any{"tick": p.world.Tick(), "saved": p.dc.Saved()}))
}

func (h *SimHandler) HandleWaveStep(ctx actor.Context, p *SimActor, req *messages.WaveStep) {
	rep := p.defense.Step(req.Dt)
	if rep.Finished {
		p.log.Info("wave finished",
			zap.String("map_id", p.mapID),
			zap.Int("wave", p.defense.Waves().Wave()),
			zap.String("status", rep.Status.String()),
		)
	}
	if p.deps.Redraw != nil && (rep.Spawned > 0 || rep.Killed > 0 || rep.Breached > 0 || rep.Finished) {
		p.deps.Redraw.Redraw(p.mapID, p.world.Tick())
	}
	respond(ctx, ok(rep))
}

// ---- 建筑 ----

func (h *SimHandler) HandlePlaceBuilding(ctx actor.Context, p *SimActor, req *messages.PlaceBuilding) {
	b, err := p.engine.Place(p.world, req.Type, grid.Coord{X: req.X, Y: req.Y})
	if err != nil {
		p.reportBiz("sim.place_building", err)
		respond(ctx, fail(err))
		return
	}
	respond(ctx, ok(buildingView(b)))
}

func (h *SimHandler) HandleDemolish(ctx actor.Context, p *SimActor, req *messages.Demolish) {
	b, err := p.engine.Demolish(p.world, grid.Coord{X: req.X, Y: req.Y})
	if err != nil {
		p.reportBiz("sim.demolish", err)
		respond(ctx, fail(err))
		return
	}
	p.reroute()
	respond(ctx, ok(buildingView(b)))
}

func (h *SimHandler) HandleSetPolicy(ctx actor.Context, p *SimActor, req *messages.SetPolicy) {
	c := grid.Coord{X: req.X, Y: req.Y}
	if err := p.engine.SetPolicy(p.world, c, req.Policy); err != nil {
		p.reportBiz("sim.set_policy", err)
		respond(ctx, fail(err))
		return
	}
	b, _ := p.world.Building(c)
	respond(ctx, ok(buildingView(b)))
}

// ---- 防守 ----

func (h *SimHandler) HandleStartWave(ctx actor.Context, p *SimActor, req *messages.StartWave) {
	if err := p.defense.StartWave(); err != nil {
		p.reportBiz("sim.start_wave", err)
		respond(ctx, fail(err))
		return
	}
	respond(ctx, ok(waveView(p.defense)))
}

func (h *SimHandler) HandleStopWave(ctx actor.Context, p *SimActor, req *messages.StopWave) {
	stopped := p.defense.StopWave()
	respond(ctx, ok(map[string]any{"stopped": stopped, "wave": waveView(p.defense)}))
}

func (h *SimHandler) HandleClaimReward(ctx actor.Context, p *SimActor, req *messages.ClaimReward) {
	amount, err := p.defense.ClaimReward()
	if err != nil {
		p.reportBiz("sim.claim_reward", err)
		respond(ctx, fail(err))
		return
	}
	respond(ctx, ok(map[string]any{"reward": amount, "wave": waveView(p.defense)}))
}

// HandleSelectTile 发起预览时等寻路结果回来再回包。
func (h *SimHandler) HandleSelectTile(ctx actor.Context, p *SimActor, req *messages.SelectTile) {
	c := grid.Coord{X: req.X, Y: req.Y}
	reply := p.replier(ctx)
	previewed, err := p.defense.Select(c, p.now(req.Now), func(routes defense.Routes, err error) {
		if err != nil {
			reply(fail(err))
			return
		}
		reply(ok(map[string]any{"previewed": true, "preview": RoutesView{Blocked: c, Routes: routes}}))
	})
	if err != nil {
		p.reportBiz("sim.select_tile", err)
		respond(ctx, fail(err))
		return
	}
	if !previewed {
		respond(ctx, ok(map[string]any{"previewed": false}))
	}
}

func (h *SimHandler) HandleDeselect(ctx actor.Context, p *SimActor, req *messages.Deselect) {
	reply := p.replier(ctx)
	err := p.defense.Deselect(func(err error) {
		if err != nil {
			reply(fail(err))
			return
		}
		reply(ok(p.defense.Router().Routes()))
	})
	if err != nil {
		p.reportBiz("sim.deselect", err)
		respond(ctx, fail(err))
		return
	}
	if p.defense.Waves().Status() == defense.StatusInProgress {
		// 波次进行中不重算，直接回当前缓存
		respond(ctx, ok(p.defense.Router().Routes()))
	}
}

// HandleHijackTile 挂起到下一次选格；被替换或取消时以错误回包。
func (h *SimHandler) HandleHijackTile(ctx actor.Context, p *SimActor, req *messages.HijackTile) {
	reply := p.replier(ctx)
	p.defense.Hijack(func(c grid.Coord, err error) {
		if err != nil {
			reply(fail(err))
			return
		}
		reply(ok(c))
	})
}

// ---- 经济 ----

func (h *SimHandler) HandlePledge(ctx actor.Context, p *SimActor, req *messages.Pledge) {
	if err := p.engine.Pledge(p.world, req.Resource, req.Amount); err != nil {
		p.reportBiz("sim.pledge", err)
		respond(ctx, fail(err))
		return
	}
	c, _ := p.world.Campaign(p.world.CampaignID())
	respond(ctx, ok(c))
}

func (h *SimHandler) HandleAcceptOrder(ctx actor.Context, p *SimActor, req *messages.AcceptOrder) {
	if err := p.engine.AcceptOrder(p.world, req.OrderID); err != nil {
		p.reportBiz("sim.accept_order", err)
		respond(ctx, fail(err))
		return
	}
	respond(ctx, ok(map[string]any{"order_id": req.OrderID}))
}

func (h *SimHandler) HandleFulfillOrder(ctx actor.Context, p *SimActor, req *messages.FulfillOrder) {
	paid, err := p.engine.FulfillOrder(p.world, req.OrderID)
	if err != nil && paid == 0 {
		p.reportBiz("sim.fulfill_order", err)
		respond(ctx, fail(err))
		return
	}
	if err != nil {
		// 已交付收钱，只是认捐没记上
		logx.ReportSysErrorWithLoggerContext(context.Background(), p.log, logx.NewSysLog("sim.fulfill_order.pledge", err),
			zap.String("map_id", p.mapID), zap.Int64("order_id", req.OrderID))
	}
	respond(ctx, ok(map[string]any{"order_id": req.OrderID, "paid": paid, "money": p.world.Money()}))
}

func (h *SimHandler) HandleStateQuery(ctx actor.Context, p *SimActor, req *messages.StateQuery) {
	respond(ctx, ok(stateView(p)))
}
