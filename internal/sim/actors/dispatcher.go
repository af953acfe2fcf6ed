package actors

import (
	"reflect"

	"Tycoon/internal/shared/actor/messages"
	"Tycoon/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, SH.HandleSecondTick)
	register(d, SH.HandleMinuteTick)
	register(d, SH.HandleWaveStep)

	register(d, SH.HandlePlaceBuilding)
	register(d, SH.HandleDemolish)
	register(d, SH.HandleSetPolicy)

	register(d, SH.HandleStartWave)
	register(d, SH.HandleStopWave)
	register(d, SH.HandleClaimReward)
	register(d, SH.HandleSelectTile)
	register(d, SH.HandleDeselect)
	register(d, SH.HandleHijackTile)

	register(d, SH.HandlePledge)
	register(d, SH.HandleAcceptOrder)
	register(d, SH.HandleFulfillOrder)
	register(d, SH.HandleStateQuery)
}

func register[Req any](
	d *Dispatcher,
	fn func(ctx actor.Context, p *SimActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *SimActor, req messages.SimMessage) {
	if req == nil {
		respond(ctx, fail(errx.ErrBadRequest.WithReason("nil req")))
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		respond(ctx, fail(errx.ErrBadRequest.WithReason("no handler for "+bodyType.String())))
		return
	}

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}

// Registered 返回已注册的消息类型数，测试用。
func (d *Dispatcher) Registered() int {
	return len(d.handlers)
}
