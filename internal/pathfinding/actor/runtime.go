package actor

import (
	"context"
	"sync"
	"time"

	"Tycoon/internal/pathfinding"
	"Tycoon/internal/pathfinding/actors"
	"Tycoon/modules/kit/logx"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 3 * time.Second

// call 是一个未完成的请求：按 Index 收齐全部路径后回调并从表里删除。
type call struct {
	paths [][][2]int
	seen  []bool
	left  int
	done  pathfinding.Callback
	timer *time.Timer
}

// Runtime 持有寻路 worker 和接收回包的 receiver actor；请求按 UUID 关联，超时后失败而不是永远挂起。
type Runtime struct {
	system   *protoactor.ActorSystem
	root     *protoactor.RootContext
	worker   *protoactor.PID
	receiver *protoactor.PID
	timeout  time.Duration
	log      logx.Logger

	mu      sync.Mutex
	pending map[string]*call
}

func NewRuntime(timeout time.Duration, log logx.Logger) *Runtime {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logx.Nop()
	}
	system := protoactor.NewActorSystem()
	r := &Runtime{
		system:  system,
		root:    system.Root,
		timeout: timeout,
		log:     log,
		pending: make(map[string]*call),
	}
	r.worker = r.root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewWorkerActor(log)
	}))
	r.receiver = r.root.Spawn(protoactor.PropsFromFunc(func(ctx protoactor.Context) {
		if res, ok := ctx.Message().(*pathfinding.PathResult); ok && res != nil {
			r.deliver(res)
		}
	}))
	return r
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	r.mu.Lock()
	calls := r.pending
	r.pending = make(map[string]*call)
	r.mu.Unlock()
	for _, c := range calls {
		c.timer.Stop()
		c.done(nil, pathfinding.ErrWorkerUnavailable)
	}
	if r.root != nil {
		if r.worker != nil {
			r.root.Stop(r.worker)
		}
		if r.receiver != nil {
			r.root.Stop(r.receiver)
		}
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

// Submit 发出一个批量寻路请求；done 在 receiver 的 goroutine 上被调用，恰好一次。
func (r *Runtime) Submit(grid [][]int, pairs [][2]pathfinding.Point, done pathfinding.Callback) string {
	id := uuid.NewString()
	if done == nil {
		done = func([][][2]int, error) {}
	}
	if len(pairs) == 0 {
		done([][][2]int{}, nil)
		return id
	}
	c := &call{
		paths: make([][][2]int, len(pairs)),
		seen:  make([]bool, len(pairs)),
		left:  len(pairs),
		done:  done,
	}
	r.mu.Lock()
	r.pending[id] = c
	c.timer = time.AfterFunc(r.timeout, func() { r.expire(id) })
	r.mu.Unlock()

	r.root.RequestWithCustomSender(r.worker, &pathfinding.PathRequest{ID: id, Grid: grid, Input: pairs}, r.receiver)
	return id
}

// Find 是 Submit 的阻塞版本，ctx 的 deadline 比默认超时短时以 ctx 为准。
func (r *Runtime) Find(ctx context.Context, grid [][]int, pairs [][2]pathfinding.Point) ([][][2]int, error) {
	type reply struct {
		paths [][][2]int
		err   error
	}
	ch := make(chan reply, 1)
	id := r.Submit(grid, pairs, func(paths [][][2]int, err error) {
		ch <- reply{paths: paths, err: err}
	})
	select {
	case rep := <-ch:
		return rep.paths, rep.err
	case <-ctx.Done():
		r.cancel(id)
		return nil, pathfinding.ErrPathTimeout.WithCause(ctx.Err()).WithData("request_id", id)
	}
}

func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Runtime) deliver(res *pathfinding.PathResult) {
	r.mu.Lock()
	c, ok := r.pending[res.ID]
	if !ok || res.Index < 0 || res.Index >= len(c.paths) || c.seen[res.Index] {
		r.mu.Unlock()
		r.log.Debug("drop path result", zap.String("request_id", res.ID), zap.Int("index", res.Index))
		return
	}
	c.seen[res.Index] = true
	c.paths[res.Index] = res.Path
	c.left--
	if c.left > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.pending, res.ID)
	r.mu.Unlock()

	c.timer.Stop()
	c.done(c.paths, nil)
}

func (r *Runtime) expire(id string) {
	r.mu.Lock()
	c, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	err := pathfinding.ErrPathTimeout.WithData("request_id", id).WithData("timeout", r.timeout.String())
	logx.ReportSysErrorWithLoggerContext(context.Background(), r.log, logx.NewSysLog("pathfinding.expire", err))
	c.done(nil, err)
}

func (r *Runtime) cancel(id string) {
	r.mu.Lock()
	c, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if ok {
		c.timer.Stop()
	}
}

var _ pathfinding.Finder = (*Runtime)(nil)
