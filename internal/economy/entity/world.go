package entity

import (
	"maps"
	"slices"
	"time"

	"Tycoon/internal/shared/grid"
)

// World 是一张地图的全部经济状态，只由所属的模拟 actor 修改。
type World struct {
	mapID  string
	userID string
	grid   grid.Grid

	buildings map[string]*Building
	deposits  map[string]string

	stock    map[string]float64
	reserved map[string]float64
	money    float64

	prices    map[string]float64
	modifiers []Modifier
	orders    map[int64]*TradeOrder

	campaigns  map[string]*Campaign
	campaignID int64
	news       map[string]NewsEntry

	tick      uint64
	offlineAt time.Time
	current   *Cycle
	next      *Cycle

	dirty bool
}

func NewWorld(mapID, userID string, g grid.Grid) *World {
	return &World{
		mapID:     mapID,
		userID:    userID,
		grid:      g,
		buildings: make(map[string]*Building),
		deposits:  make(map[string]string),
		stock:     make(map[string]float64),
		reserved:  make(map[string]float64),
		prices:    make(map[string]float64),
		orders:    make(map[int64]*TradeOrder),
		campaigns: make(map[string]*Campaign),
		news:      make(map[string]NewsEntry),
		current:   NewCycle(0),
		next:      NewCycle(1),
	}
}

func (w *World) MapID() string   { return w.mapID }
func (w *World) UserID() string  { return w.userID }
func (w *World) Grid() grid.Grid { return w.grid }

func (w *World) Dirty() bool { return w != nil && w.dirty }

func (w *World) MarkDirty() { w.dirty = true }

func (w *World) ClearDirty() { w.dirty = false }

// ---- 建筑表 ----

func (w *World) Building(c grid.Coord) (*Building, bool) {
	b, ok := w.buildings[c.String()]
	return b, ok
}

// Buildings 按坐标顺序（先 y 后 x）返回，结算顺序由此固定。
func (w *World) Buildings() []*Building {
	out := make([]*Building, 0, len(w.buildings))
	for _, b := range w.buildings {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Building) int { return CompareCoord(a.Coord, b.Coord) })
	return out
}

func (w *World) BuildingCount() int { return len(w.buildings) }

func CompareCoord(a, b grid.Coord) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

// Place 放下一个施工中的建筑。
func (w *World) Place(typ string, c grid.Coord) (*Building, error) {
	if !w.grid.Contains(c) {
		return nil, ErrOutOfBounds.WithData("coord", c.String())
	}
	if _, ok := w.buildings[c.String()]; ok {
		return nil, ErrTileOccupied.WithData("coord", c.String())
	}
	b := NewBuilding(typ, c)
	w.buildings[b.Key()] = b
	w.dirty = true
	return b, nil
}

// PlaceConstructed 直接放下已建成的建筑（主基地、入口、初始布局）。
func (w *World) PlaceConstructed(typ string, c grid.Coord) (*Building, error) {
	b, err := w.Place(typ, c)
	if err != nil {
		return nil, err
	}
	b.Status = StatusConstructed
	b.Committed = true
	return b, nil
}

func (w *World) Remove(c grid.Coord) (*Building, error) {
	b, ok := w.buildings[c.String()]
	if !ok {
		return nil, ErrNoBuilding.WithData("coord", c.String())
	}
	delete(w.buildings, c.String())
	w.dirty = true
	return b, nil
}

func (w *World) SetPolicy(c grid.Coord, p Policy) error {
	b, ok := w.buildings[c.String()]
	if !ok {
		return ErrNoBuilding.WithData("coord", c.String())
	}
	if err := p.Validate(); err != nil {
		return ErrBadPolicy.WithCause(err)
	}
	b.Policy = p
	w.dirty = true
	return nil
}

// ---- 矿脉 ----

func (w *World) SetDeposit(c grid.Coord, resource string) {
	w.deposits[c.String()] = resource
	w.dirty = true
}

func (w *World) Deposit(c grid.Coord) (string, bool) {
	r, ok := w.deposits[c.String()]
	return r, ok
}

// ---- 库存 ----

func (w *World) Stock(r string) float64    { return w.stock[r] }
func (w *World) Reserved(r string) float64 { return w.reserved[r] }

// Usable = stock - reserved。
func (w *World) Usable(r string) float64 {
	return max(0, w.stock[r]-w.reserved[r])
}

func (w *World) StockAll() map[string]float64 { return maps.Clone(w.stock) }

// Take 从可用库存里最多取 amount，返回实际取到的量。
func (w *World) Take(r string, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	n := min(amount, w.Usable(r))
	if n <= 0 {
		return 0
	}
	w.stock[r] -= n
	w.dirty = true
	return n
}

func (w *World) Put(r string, amount float64) {
	if amount <= 0 {
		return
	}
	w.stock[r] += amount
	w.dirty = true
}

func (w *World) Reserve(r string, amount float64) error {
	if w.Usable(r) < amount {
		return ErrShortStock.WithData("resource", r).WithData("amount", amount)
	}
	w.reserved[r] += amount
	w.dirty = true
	return nil
}

func (w *World) Release(r string, amount float64) {
	w.reserved[r] = max(0, w.reserved[r]-amount)
	if w.reserved[r] == 0 {
		delete(w.reserved, r)
	}
	w.dirty = true
}

// ConsumeReserved 交付已锁定的库存。
func (w *World) ConsumeReserved(r string, amount float64) {
	w.Release(r, amount)
	w.stock[r] = max(0, w.stock[r]-amount)
}

func (w *World) Money() float64 { return w.money }

func (w *World) AddMoney(delta float64) {
	if delta == 0 {
		return
	}
	w.money += delta
	w.dirty = true
}

// ---- 价格与政策 ----

func (w *World) Price(r string) (float64, bool) {
	p, ok := w.prices[r]
	return p, ok
}

func (w *World) SetPrice(r string, p float64) {
	w.prices[r] = p
	w.dirty = true
}

func (w *World) Prices() map[string]float64 { return maps.Clone(w.prices) }

func (w *World) Modifiers() []Modifier { return slices.Clone(w.modifiers) }

func (w *World) AddModifier(m Modifier) {
	w.modifiers = append(w.modifiers, m)
	w.dirty = true
}

// PruneModifiers 删除已经结束的政策效果。
func (w *World) PruneModifiers(now time.Time) {
	n := len(w.modifiers)
	w.modifiers = slices.DeleteFunc(w.modifiers, func(m Modifier) bool { return !now.Before(m.Until) })
	if len(w.modifiers) != n {
		w.dirty = true
	}
}

// ---- 订单 ----

func (w *World) Orders() []*TradeOrder {
	out := make([]*TradeOrder, 0, len(w.orders))
	for _, o := range w.orders {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *TradeOrder) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (w *World) Order(id int64) (*TradeOrder, bool) {
	o, ok := w.orders[id]
	return o, ok
}

func (w *World) AddOrder(o *TradeOrder) {
	w.orders[o.ID] = o
	w.dirty = true
}

func (w *World) RemoveOrder(id int64) {
	delete(w.orders, id)
	w.dirty = true
}

// ---- 众筹与新闻 ----

// Campaigns 直接返回内部表，只给众筹结算使用。
func (w *World) Campaigns() map[string]*Campaign { return w.campaigns }

func (w *World) Campaign(id int64) (*Campaign, bool) {
	c, ok := w.campaigns[CampaignKey(id)]
	return c, ok
}

func (w *World) PutCampaign(c *Campaign) {
	w.campaigns[CampaignKey(c.ID)] = c
	w.dirty = true
}

func (w *World) DeleteCampaign(key string) {
	delete(w.campaigns, key)
	w.dirty = true
}

func (w *World) CampaignID() int64 { return w.campaignID }

func (w *World) SetCampaignID(id int64) {
	w.campaignID = id
	w.dirty = true
}

func (w *World) News() map[string]NewsEntry { return maps.Clone(w.news) }

func (w *World) NewsFor(r string) (NewsEntry, bool) {
	n, ok := w.news[r]
	return n, ok
}

// ReplaceNews 整表替换，旧条目不保留。
func (w *World) ReplaceNews(news map[string]NewsEntry) {
	w.news = maps.Clone(news)
	if w.news == nil {
		w.news = make(map[string]NewsEntry)
	}
	w.dirty = true
}

// ---- tick 与双缓冲 ----

func (w *World) Tick() uint64 { return w.tick }

// Current 是上一个 tick 结算完成的汇总。
func (w *World) Current() *Cycle { return w.current }

// Next 只在 tick 内由结算器访问。
func (w *World) Next() *Cycle { return w.next }

// BeginCycle 保证本 tick 从一个全新的 next 开始。
func (w *World) BeginCycle() *Cycle {
	w.next = NewCycle(w.tick + 1)
	return w.next
}

// SwapCycle 把 next 提升为 current，并换上新的空 next。
func (w *World) SwapCycle() {
	w.current = w.next
	w.tick = w.current.Tick
	w.next = NewCycle(w.tick + 1)
	w.dirty = true
}

func (w *World) OfflineAt() time.Time { return w.offlineAt }

func (w *World) SetOfflineAt(t time.Time) {
	w.offlineAt = t
	w.dirty = true
}
