package actors

import (
	"time"

	"Tycoon/internal/pathfinding"
	"Tycoon/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// WorkerActor 是隔离的寻路 worker：只通过消息收发，不和调用方共享内存。
// 每个 (起点, 终点) 对回一条 PathResult 给请求的 sender。
type WorkerActor struct {
	log logx.Logger
}

func NewWorkerActor(log logx.Logger) *WorkerActor {
	if log == nil {
		log = logx.Nop()
	}
	return &WorkerActor{log: log}
}

func (a *WorkerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *pathfinding.PathRequest:
		if msg == nil || ctx.Sender() == nil {
			return
		}
		start := time.Now()
		for _, res := range pathfinding.Solve(msg) {
			ctx.Send(ctx.Sender(), &res)
		}
		a.log.Debug("path request solved",
			zap.String("request_id", msg.ID),
			zap.Int("pairs", len(msg.Input)),
			zap.Duration("cost", time.Since(start)),
		)
	default:
		return
	}
}
