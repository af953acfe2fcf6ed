package actors

import (
	"Tycoon/internal/defense"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/grid"
)

type BuildingView struct {
	Type        string        `json:"type"`
	X           int           `json:"x"`
	Y           int           `json:"y"`
	Constructed bool          `json:"constructed"`
	Progress    int           `json:"progress"`
	Powered     bool          `json:"powered"`
	Policy      entity.Policy `json:"policy"`
}

type OrderView struct {
	ID        int64   `json:"id"`
	Resource  string  `json:"resource"`
	Amount    float64 `json:"amount"`
	UnitPrice float64 `json:"unit_price"`
	Accepted  bool    `json:"accepted"`
}

type WaveView struct {
	defense.Progress
	Monsters      []defense.MonsterView `json:"monsters"`
	Bullets       int                   `json:"bullets"`
	PendingReward float64               `json:"pending_reward"`
}

// StateView 是一张地图对外的只读快照。
type StateView struct {
	MapID     string                      `json:"map_id"`
	Tick      uint64                      `json:"tick"`
	Money     float64                     `json:"money"`
	Stock     map[string]float64          `json:"stock"`
	Prices    map[string]float64          `json:"prices"`
	Buildings []BuildingView              `json:"buildings"`
	Orders    []OrderView                 `json:"orders"`
	Campaign  *entity.Campaign            `json:"campaign,omitempty"`
	News      map[string]entity.NewsEntry `json:"news"`
	Cycle     *entity.Cycle               `json:"cycle"`
	Wave      WaveView                    `json:"wave"`
	Routes    defense.Routes              `json:"routes"`
}

type RoutesView struct {
	Blocked grid.Coord     `json:"blocked"`
	Routes  defense.Routes `json:"routes"`
}

func buildingView(b *entity.Building) BuildingView {
	return BuildingView{
		Type:        b.Type,
		X:           b.Coord.X,
		Y:           b.Coord.Y,
		Constructed: b.Constructed(),
		Progress:    b.Progress,
		Powered:     b.Powered,
		Policy:      b.Policy,
	}
}

func waveView(d *defense.Defense) WaveView {
	m := d.Waves()
	return WaveView{
		Progress:      m.Progress(),
		Monsters:      m.Monsters(),
		Bullets:       m.ActiveBullets(),
		PendingReward: m.PendingReward(),
	}
}

func stateView(p *SimActor) StateView {
	w := p.world
	v := StateView{
		MapID:     w.MapID(),
		Tick:      w.Tick(),
		Money:     w.Money(),
		Stock:     w.StockAll(),
		Prices:    w.Prices(),
		Buildings: make([]BuildingView, 0, w.BuildingCount()),
		News:      w.News(),
		Cycle:     w.Current().Clone(),
		Wave:      waveView(p.defense),
		Routes:    p.defense.Router().Routes(),
	}
	for _, b := range w.Buildings() {
		v.Buildings = append(v.Buildings, buildingView(b))
	}
	for _, o := range w.Orders() {
		v.Orders = append(v.Orders, OrderView{
			ID:        o.ID,
			Resource:  o.Resource,
			Amount:    o.Amount,
			UnitPrice: o.UnitPrice,
			Accepted:  o.Status == entity.OrderAccepted,
		})
	}
	if c, ok := w.Campaign(w.CampaignID()); ok {
		cp := *c
		cp.Pledges = append([]entity.Pledge(nil), c.Pledges...)
		v.Campaign = &cp
	}
	return v
}
