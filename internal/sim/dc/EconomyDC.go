package dc

import (
	"context"
	"errors"
	"sync"
	"time"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/sim/app/port"
	"Tycoon/modules/kit/logx"

	"go.uber.org/zap"
)

const retryDelay = 200 * time.Millisecond

// EconomyDC 是一张地图的写回缓存：actor 只负责拍快照入队，后台 goroutine 按 version 取最新的落库。
type EconomyDC struct {
	repo   port.EconomyRepository
	entity *entity.World
	log    logx.Logger

	mu      sync.Mutex
	pending *entity.WorldPersistSnapshot
	version uint64
	saved   uint64
	closed  bool
	waiters []waiter

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// waiter 等待 version 之前（含）的快照落库。
type waiter struct {
	version uint64
	ch      chan error
}

func NewEconomyDC(repo port.EconomyRepository, log logx.Logger) *EconomyDC {
	if log == nil {
		log = logx.Nop()
	}
	d := &EconomyDC{
		repo: repo,
		log:  log,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Load 读取地图状态；仓储里没有时返回 port.ErrMapNotFound，由调用方新建后 Attach。
func (d *EconomyDC) Load(ctx context.Context, mapID string) (*entity.World, error) {
	if d.repo == nil {
		return nil, errors.New("economy repository is nil")
	}
	s, err := d.repo.LoadState(ctx, mapID)
	if err != nil {
		return nil, err
	}
	w, err := entity.HydrateWorld(*s)
	if err != nil {
		return nil, err
	}
	d.entity = w
	return w, nil
}

// Attach 绑定一个新建的 World。
func (d *EconomyDC) Attach(w *entity.World) {
	d.entity = w
}

// Flush 脏时拍一份快照入队，不等待落库。
func (d *EconomyDC) Flush(ctx context.Context) error {
	_ = ctx
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return errors.New("economy repository is nil")
	}
	s, ok := d.buildNextSnapshot()
	if !ok {
		return nil
	}
	d.enqueueLatest(s)
	return nil
}

// FlushSync 入队并等待到当前 version 落库或 ctx 结束。
func (d *EconomyDC) FlushSync(ctx context.Context) error {
	if err := d.Flush(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	target := d.version
	if d.saved >= target || d.closed {
		d.mu.Unlock()
		return nil
	}
	ch := make(chan error, 1)
	d.waiters = append(d.waiters, waiter{version: target, ch: ch})
	d.mu.Unlock()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *EconomyDC) IsDirty() bool {
	if d.entity == nil {
		return false
	}
	return d.entity.Dirty()
}

func (d *EconomyDC) Entity() *entity.World {
	return d.entity
}

// Saved 返回已落库的最大 version。
func (d *EconomyDC) Saved() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saved
}

func (d *EconomyDC) Close(ctx context.Context) error {
	_ = d.Flush(ctx)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *EconomyDC) buildNextSnapshot() (*entity.WorldPersistSnapshot, bool) {
	if d.entity == nil {
		return nil, false
	}
	d.mu.Lock()
	d.version++
	version := d.version
	d.mu.Unlock()

	s, ok := d.entity.BuildPersistSnapshot(version)
	if !ok {
		return nil, false
	}
	d.entity.ClearDirty()
	return s, true
}

func (d *EconomyDC) enqueueLatest(s *entity.WorldPersistSnapshot) {
	if s == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *EconomyDC) popPending() *entity.WorldPersistSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.pending
	d.pending = nil
	return s
}

// requeueOnError 重排失败的快照；若已有更新的快照则以新的为准。
func (d *EconomyDC) requeueOnError(s *entity.WorldPersistSnapshot) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()
	return true
}

func (d *EconomyDC) markSaved(version uint64) {
	d.mu.Lock()
	if version > d.saved {
		d.saved = version
	}
	kept := d.waiters[:0]
	var ready []waiter
	for _, w := range d.waiters {
		if w.version <= d.saved {
			ready = append(ready, w)
		} else {
			kept = append(kept, w)
		}
	}
	d.waiters = kept
	d.mu.Unlock()
	for _, w := range ready {
		w.ch <- nil
	}
}

func (d *EconomyDC) releaseWaiters(err error) {
	d.mu.Lock()
	ws := d.waiters
	d.waiters = nil
	d.mu.Unlock()
	for _, w := range ws {
		w.ch <- err
	}
}

func (d *EconomyDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending(false)
		case <-d.stop:
			d.consumePending(true)
			d.releaseWaiters(errors.New("economy dc closed"))
			return
		}
	}
}

func (d *EconomyDC) consumePending(closing bool) {
	for {
		s := d.popPending()
		if s == nil {
			return
		}
		if err := d.repo.Save(context.TODO(), s); err != nil {
			logx.ReportSysErrorWithLoggerContext(context.Background(), d.log, logx.NewSysLog("sim.dc.save", err),
				zap.String("map_id", s.State.MapID),
				zap.Uint64("version", s.Version),
			)
			if closing {
				return
			}
			if d.requeueOnError(s) {
				time.Sleep(retryDelay)
			}
			continue
		}
		d.markSaved(s.Version)
	}
}
