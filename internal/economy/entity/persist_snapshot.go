package entity

import (
	"fmt"
	"maps"
	"time"

	"Tycoon/internal/shared/grid"
)

// WorldState 是可落库的完整状态，仓储层只认这个结构。
type WorldState struct {
	MapID      string               `json:"map_id" bson:"_id"`
	UserID     string               `json:"user_id" bson:"user_id"`
	GridKind   grid.Kind            `json:"grid_kind" bson:"grid_kind"`
	Width      int                  `json:"width" bson:"width"`
	Height     int                  `json:"height" bson:"height"`
	TileSize   float64              `json:"tile_size" bson:"tile_size"`
	Buildings  map[string]*Building `json:"buildings" bson:"buildings"` // 坐标字符串 -> 建筑
	Deposits   map[string]string    `json:"deposits" bson:"deposits"`
	Stock      map[string]float64   `json:"stock" bson:"stock"`
	Reserved   map[string]float64   `json:"reserved" bson:"reserved"`
	Money      float64              `json:"money" bson:"money"`
	Prices     map[string]float64   `json:"prices" bson:"prices"`
	Modifiers  []Modifier           `json:"modifiers" bson:"modifiers"`
	Orders     []*TradeOrder        `json:"orders" bson:"orders"`
	Campaigns  map[string]*Campaign `json:"campaigns" bson:"campaigns"` // campaign id 字符串 -> 众筹
	CampaignID int64                `json:"campaign_id" bson:"campaign_id"`
	News       map[string]NewsEntry `json:"news" bson:"news"` // 资源 -> 新闻
	Tick       uint64               `json:"tick" bson:"tick"`
	OfflineAt  time.Time            `json:"offline_at" bson:"offline_at"`
}

type WorldPersistSnapshot struct {
	Version uint64
	State   WorldState
}

// BuildPersistSnapshot 深拷贝出当前状态；不脏时返回 false。
func (w *World) BuildPersistSnapshot(version uint64) (*WorldPersistSnapshot, bool) {
	if w == nil || !w.Dirty() {
		return nil, false
	}
	return &WorldPersistSnapshot{Version: version, State: w.State()}, true
}

func (w *World) State() WorldState {
	s := WorldState{
		MapID:      w.mapID,
		UserID:     w.userID,
		GridKind:   w.grid.Kind(),
		Width:      w.grid.Width(),
		Height:     w.grid.Height(),
		TileSize:   w.grid.TileSize(),
		Buildings:  make(map[string]*Building, len(w.buildings)),
		Deposits:   maps.Clone(w.deposits),
		Stock:      maps.Clone(w.stock),
		Reserved:   maps.Clone(w.reserved),
		Money:      w.money,
		Prices:     maps.Clone(w.prices),
		Modifiers:  append([]Modifier(nil), w.modifiers...),
		Orders:     make([]*TradeOrder, 0, len(w.orders)),
		Campaigns:  make(map[string]*Campaign, len(w.campaigns)),
		CampaignID: w.campaignID,
		News:       maps.Clone(w.news),
		Tick:       w.tick,
		OfflineAt:  w.offlineAt,
	}
	for k, b := range w.buildings {
		s.Buildings[k] = b.clone()
	}
	for _, o := range w.Orders() {
		cp := *o
		s.Orders = append(s.Orders, &cp)
	}
	for k, c := range w.campaigns {
		s.Campaigns[k] = c.clone()
	}
	return s
}

// HydrateWorld 从落库状态重建 World，建筑 key 以坐标为准重新生成。
func HydrateWorld(s WorldState) (*World, error) {
	g, err := grid.New(s.GridKind, s.Width, s.Height, s.TileSize)
	if err != nil {
		return nil, fmt.Errorf("hydrate world %s: %w", s.MapID, err)
	}
	w := NewWorld(s.MapID, s.UserID, g)
	for _, b := range s.Buildings {
		if b == nil {
			continue
		}
		if !g.Contains(b.Coord) {
			return nil, fmt.Errorf("hydrate world %s: building %s out of bounds", s.MapID, b.Coord)
		}
		w.buildings[b.Key()] = b.clone()
	}
	copyInto(w.deposits, s.Deposits)
	copyInto(w.stock, s.Stock)
	copyInto(w.reserved, s.Reserved)
	copyInto(w.prices, s.Prices)
	copyInto(w.news, s.News)
	w.money = s.Money
	w.modifiers = append([]Modifier(nil), s.Modifiers...)
	for _, o := range s.Orders {
		if o == nil {
			continue
		}
		cp := *o
		w.orders[cp.ID] = &cp
	}
	for _, c := range s.Campaigns {
		if c == nil {
			continue
		}
		w.campaigns[CampaignKey(c.ID)] = c.clone()
	}
	w.campaignID = s.CampaignID
	w.tick = s.Tick
	w.offlineAt = s.OfflineAt
	w.current = NewCycle(s.Tick)
	w.next = NewCycle(s.Tick + 1)
	return w, nil
}

func copyInto[V any](dst, src map[string]V) {
	for k, v := range src {
		dst[k] = v
	}
}
