package actors

import (
	"context"
	"errors"
	"time"

	"Tycoon/internal/defense"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/economy/service"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/sim/app/port"
	"Tycoon/internal/sim/dc"
	"Tycoon/modules/kit/errx"
	"Tycoon/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

const CodeMapNotReady errx.Code = "ERR_MAP_NOT_READY"

// deferredCall 把 actor 外部的回调（寻路结果）送回邮箱里执行。
type deferredCall struct {
	fn func()
}

// SimActor 独占一张地图：World、tick 结算器、防守状态都只在这里被修改。
type SimActor struct {
	state      State
	mapID      string
	userID     string
	deps       *Deps
	dc         *dc.EconomyDC
	world      *entity.World
	engine     *service.Engine
	defense    *defense.Defense
	dispatcher *Dispatcher
	log        logx.Logger
}

func NewSimActor(mapID, userID string, deps *Deps) *SimActor {
	deps = deps.withDefaults()
	return &SimActor{
		state:      None,
		mapID:      mapID,
		userID:     userID,
		deps:       deps,
		dc:         dc.NewEconomyDC(deps.Repo, deps.Logger),
		dispatcher: NewDispatcher(),
		log:        deps.Logger,
	}
}

func (p *SimActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		if p.defense != nil {
			p.defense.CancelHijack()
		}
		if p.world != nil {
			if now := p.deps.now(); now.After(p.world.OfflineAt()) {
				p.world.SetOfflineAt(now)
			}
		}
		closeCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := p.dc.Close(closeCtx); err != nil {
			logx.ReportSysErrorWithLoggerContext(closeCtx, p.log, logx.NewSysLog("sim.actor.close", err),
				zap.String("map_id", p.mapID))
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.state = Offline
		return
	case *actor.Restarting:
		p.state = Init
		return
	case *deferredCall:
		if p.state != Online || msg == nil || msg.fn == nil {
			return
		}
		msg.fn()
		return
	case messages.SimMessage:
		if p.state != Online {
			respond(ctx, failReason(CodeMapNotReady, "map not online"))
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *SimActor) init(ctx actor.Context) {
	loadCtx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	w, err := p.dc.Load(loadCtx, p.mapID)
	switch {
	case err == nil:
	case errors.Is(err, port.ErrMapNotFound):
		w, err = SeedWorld(p.mapID, p.userID, p.deps.Sim, p.deps.Buildings)
		if err == nil {
			p.dc.Attach(w)
		}
	}
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(loadCtx, p.log, logx.NewSysLog("sim.actor.init", err),
			zap.String("map_id", p.mapID))
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}

	engine, err := service.NewEngine(service.Options{
		Resources:  p.deps.Resources,
		Buildings:  p.deps.Buildings,
		Feed:       p.deps.Feed,
		Offline:    service.OfflineCash{Rate: p.deps.OfflineRate},
		Redraw:     p.deps.Redraw,
		Saver:      p.dc,
		IDs:        p.deps.IDs,
		Logger:     p.log,
		SaveEvery:  p.deps.Sim.SaveEveryTicks,
		OrderEvery: p.deps.Sim.OrderEvery,
		OrderTTL:   p.deps.Sim.OrderTTL,
	})
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(loadCtx, p.log, logx.NewSysLog("sim.actor.init", err),
			zap.String("map_id", p.mapID))
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}

	p.world = w
	p.engine = engine
	p.defense = defense.New(w, defense.Options{
		Buildings:    p.deps.Buildings,
		Finder:       p.deps.Finder,
		Post:         p.post(ctx),
		Wave:         p.deps.Wave,
		PreviewRate:  p.deps.PreviewRate,
		PreviewBurst: p.deps.PreviewBurst,
		Logger:       p.log,
	})
	p.state = Online

	if n, err := engine.CatchUp(loadCtx, w, p.deps.now()); err != nil {
		logx.ReportSysErrorWithLoggerContext(loadCtx, p.log, logx.NewSysLog("sim.actor.catch_up", err),
			zap.String("map_id", p.mapID), zap.Int("ticks", n))
	}
	p.reroute()
	p.log.Info("sim actor online",
		zap.String("map_id", p.mapID),
		zap.Uint64("tick", w.Tick()),
		zap.Int("buildings", w.BuildingCount()),
	)
}

// post 返回的 Executor 把回调投递回本 actor 的邮箱。
func (p *SimActor) post(ctx actor.Context) defense.Executor {
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	return func(fn func()) {
		root.Send(self, &deferredCall{fn: fn})
	}
}

// reroute 用当前布局重算缓存路径，布局不完整时只记日志。
func (p *SimActor) reroute() {
	err := p.defense.Reroute(func(err error) {
		if err != nil {
			logx.ReportSysErrorWithLoggerContext(context.Background(), p.log, logx.NewSysLog("sim.actor.reroute", err),
				zap.String("map_id", p.mapID))
		}
	})
	if err != nil {
		p.reportBiz("sim.actor.reroute", err)
	}
}

func (p *SimActor) MapID() string { return p.mapID }

func (p *SimActor) World() *entity.World { return p.world }

func (p *SimActor) Defense() *defense.Defense { return p.defense }

func (p *SimActor) tickContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flushTimeout)
}

func (p *SimActor) now(t time.Time) time.Time {
	if t.IsZero() {
		return p.deps.now()
	}
	return t
}

// replier 记住当前请求的发送方，供异步回调（寻路、选格劫持）稍后回包。
// 回调经 post 回到本 actor 执行，读 world 是安全的。
func (p *SimActor) replier(ctx actor.Context) func(*messages.Reply) {
	sender := ctx.Sender()
	root := ctx.ActorSystem().Root
	return func(r *messages.Reply) {
		if sender == nil {
			return
		}
		if r != nil && p.world != nil {
			r.Tick = p.world.Tick()
		}
		root.Send(sender, r)
	}
}

func (p *SimActor) reportBiz(action string, err error) {
	var e *errx.Error
	if !errors.As(err, &e) || !e.IsBiz() {
		logx.ReportSysErrorWithLoggerContext(context.Background(), p.log, logx.NewSysLog(action, err),
			zap.String("map_id", p.mapID))
		return
	}
	logx.ReportBizWithLoggerContext(context.Background(), p.log,
		logx.NewBizLog(action, string(e.Code()), e.Msg()),
		zap.String("map_id", p.mapID))
}
