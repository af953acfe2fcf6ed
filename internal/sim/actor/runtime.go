package actor

import (
	"context"
	"errors"
	"sync"
	"time"

	"Tycoon/internal/defense"
	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/economy/service"
	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/shared/transport"
	"Tycoon/internal/sim/actors"
	"Tycoon/internal/sim/app/port"
	"Tycoon/modules/kit/errx"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

const defaultAskTimeout = 3 * time.Second

type RuntimeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
	once    sync.Once
}

func NewRuntime(deps *actors.Deps, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	// manager 只做路由和子 actor 表维护，结算都在每张地图自己的 actor 里
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(deps)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		if r.root != nil && r.manager != nil {
			// 等子 actor 走完 Stopping（落库）再关系统
			_ = r.root.StopFuture(r.manager).Wait()
		}
		if r.system != nil {
			r.system.Shutdown()
		}
	})
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor runtime 未初始化"}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor pid 为空"}
	}

	future := r.root.RequestFuture(pid, msg, timeout)
	res, err := future.Result()
	if err != nil {
		code := transport.SystemError
		if errors.Is(err, protoactor.ErrTimeout) {
			code = transport.Timeout
		}
		return nil, &RuntimeError{
			Code:    code,
			Message: "actor 请求失败",
			Cause:   err,
		}
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

// Handle 把消息交给对应地图的 actor 并等待回包。
func (r *Runtime) Handle(ctx context.Context, req messages.SimMessage) (*messages.Reply, error) {
	if req == nil {
		return nil, &RuntimeError{
			Code:    transport.InvalidParam,
			Message: "sim request 不能为空",
		}
	}

	res, err := r.request(r.manager, req, r.timeoutFromContext(ctx))
	if err != nil {
		return nil, err
	}

	resp, ok := res.(*messages.Reply)
	if !ok {
		return nil, &RuntimeError{
			Code:    transport.SystemError,
			Message: "actor 返回类型非法",
		}
	}
	return resp, nil
}

// Tell 只投递不等回包。
func (r *Runtime) Tell(req messages.SimMessage) {
	if r == nil || r.root == nil || req == nil {
		return
	}
	r.root.Send(r.manager, req)
}

// Maps 返回在线地图。
func (r *Runtime) Maps(ctx context.Context) ([]string, error) {
	res, err := r.request(r.manager, &actors.MapsQuery{}, r.timeoutFromContext(ctx))
	if err != nil {
		return nil, err
	}
	ids, _ := res.([]string)
	return ids, nil
}

// DriveConfig 是驱动循环的三个节拍，<=0 表示不发该消息。
type DriveConfig struct {
	Tick     time.Duration
	Minute   time.Duration
	WaveStep time.Duration
	Clock    func() time.Time
}

// Drive 按节拍向所有在线地图广播驱动消息，直到 ctx 结束。
func (r *Runtime) Drive(ctx context.Context, cfg DriveConfig) error {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	tick, stopTick := ticker(cfg.Tick)
	defer stopTick()
	minute, stopMinute := ticker(cfg.Minute)
	defer stopMinute()
	step, stopStep := ticker(cfg.WaveStep)
	defer stopStep()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			r.Tell(&messages.SecondTick{Now: clock()})
		case <-minute:
			r.Tell(&messages.MinuteTick{Now: clock()})
		case <-step:
			r.Tell(&messages.WaveStep{Dt: cfg.WaveStep})
		}
	}
}

// ticker 在 d<=0 时返回永不触发的 channel。
func ticker(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func CodeFromError(err error) int {
	if err == nil {
		return transport.OK
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != 0 {
		return re.Code
	}
	var e *errx.Error
	if errors.As(err, &e) {
		return codeFromErrx(e.Code(), e.IsBiz())
	}
	return transport.SystemError
}

// CodeFromReply 把 actor 回包里的错误码映射为对外业务码。
func CodeFromReply(r *messages.Reply) int {
	if r == nil {
		return transport.SystemError
	}
	if r.OK {
		return transport.OK
	}
	return codeFromErrx(errx.Code(r.Code), r.Biz)
}

func codeFromErrx(code errx.Code, biz bool) int {
	switch code {
	case pathfinding.CodePathTimeout, errx.CodeTimeout:
		return transport.Timeout
	case pathfinding.CodeWorkerUnavailable, errx.CodeUnavailable, actors.CodeMapNotReady,
		crowdfunding.CodeSeedUnavailable:
		return transport.Unavailable
	case entity.CodeNoBuilding, entity.CodeOrderMissing, port.CodeMapNotFound:
		return transport.NotFound
	case entity.CodeTileOccupied, service.CodeOrderState,
		defense.CodeWaveNotIdle, defense.CodeRewardUnavailable,
		defense.CodeHijackReplaced, defense.CodeHijackCancelled:
		return transport.Conflict
	case defense.CodePreviewThrottled, errx.CodeRateLimited:
		return transport.TooManyRequests
	}
	if biz {
		return transport.InvalidParam
	}
	return transport.SystemError
}
