package defense

import "Tycoon/internal/shared/grid"

// HijackFunc 在选格请求被满足或被拒绝时调用一次。
type HijackFunc func(c grid.Coord, err error)

// Selector 同一时刻最多挂一个选格劫持；重复注册会同时拒绝旧的和新的，不排队。
type Selector struct {
	pending HijackFunc
}

// Hijack 注册一个监听，下一次选格交给它而不是走普通选格流程。
func (s *Selector) Hijack(done HijackFunc) {
	if done == nil {
		done = func(grid.Coord, error) {}
	}
	if prev := s.pending; prev != nil {
		s.pending = nil
		prev(grid.Coord{}, ErrHijackReplaced)
		done(grid.Coord{}, ErrHijackReplaced)
		return
	}
	s.pending = done
}

// Resolve 把选中的格子交给挂起的监听；没有监听时返回 false。
func (s *Selector) Resolve(c grid.Coord) bool {
	fn := s.pending
	if fn == nil {
		return false
	}
	s.pending = nil
	fn(c, nil)
	return true
}

func (s *Selector) Cancel() {
	if fn := s.pending; fn != nil {
		s.pending = nil
		fn(grid.Coord{}, ErrHijackCancelled)
	}
}

func (s *Selector) Pending() bool { return s.pending != nil }
