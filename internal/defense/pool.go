package defense

// Pool 持有可复用对象；Get/Put 是唯一的修改入口。
// 一个对象要么在空闲栈里，要么在 active 里，不会同时出现。
type Pool[T any] struct {
	newFn  func() *T
	reset  func(*T)
	free   []*T
	active []*T
	index  map[*T]int
}

func NewPool[T any](newFn func() *T, reset func(*T)) *Pool[T] {
	if newFn == nil {
		newFn = func() *T { return new(T) }
	}
	return &Pool[T]{
		newFn: newFn,
		reset: reset,
		index: make(map[*T]int),
	}
}

// Get 优先复用最近一次 Put 回来的对象。
func (p *Pool[T]) Get() *T {
	var x *T
	if n := len(p.free); n > 0 {
		x = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		x = p.newFn()
	}
	p.index[x] = len(p.active)
	p.active = append(p.active, x)
	return x
}

// Put 归还一个活跃对象；不在 active 里的对象（重复归还、外来对象）被忽略并返回 false。
func (p *Pool[T]) Put(x *T) bool {
	i, ok := p.index[x]
	if !ok {
		return false
	}
	delete(p.index, x)
	copy(p.active[i:], p.active[i+1:])
	p.active[len(p.active)-1] = nil
	p.active = p.active[:len(p.active)-1]
	for j := i; j < len(p.active); j++ {
		p.index[p.active[j]] = j
	}
	if p.reset != nil {
		p.reset(x)
	}
	p.free = append(p.free, x)
	return true
}

func (p *Pool[T]) IsActive(x *T) bool {
	_, ok := p.index[x]
	return ok
}

// Active 返回活跃对象的快照，按取出顺序。
func (p *Pool[T]) Active() []*T {
	out := make([]*T, len(p.active))
	copy(out, p.active)
	return out
}

func (p *Pool[T]) Len() int  { return len(p.active) }
func (p *Pool[T]) Free() int { return len(p.free) }

// Flush 把全部活跃对象归还。
func (p *Pool[T]) Flush() {
	for i := len(p.active) - 1; i >= 0; i-- {
		p.Put(p.active[i])
	}
}
