package actors

import (
	"errors"

	"Tycoon/internal/shared/actor/messages"
	"Tycoon/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

func ok(payload any) *messages.Reply {
	return &messages.Reply{OK: true, Payload: payload}
}

func fail(err error) *messages.Reply {
	r := &messages.Reply{OK: false, Code: string(errx.CodeInternal), Message: "internal error"}
	if err == nil {
		return r
	}
	var e *errx.Error
	if errors.As(err, &e) {
		r.Code = string(e.Code())
		r.Biz = e.IsBiz()
		r.Message = e.Msg()
		return r
	}
	r.Message = err.Error()
	return r
}

func failReason(code errx.Code, reason string) *messages.Reply {
	return &messages.Reply{OK: false, Code: string(code), Biz: true, Message: reason}
}

// respond 只在有发送方时回包，广播来的 tick 没有发送方。回包带上地图当前 tick。
func respond(ctx actor.Context, r *messages.Reply) {
	if ctx.Sender() == nil {
		return
	}
	if p, ok := ctx.Actor().(*SimActor); ok && r != nil && p.world != nil {
		r.Tick = p.world.Tick()
	}
	ctx.Respond(r)
}
