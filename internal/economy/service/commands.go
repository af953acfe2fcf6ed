package service

import (
	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/grid"
)

// 玩家操作，都在所属 actor 里串行调用，和 tick 不会交错。

func (e *Engine) Place(w *entity.World, typ string, c grid.Coord) (*entity.Building, error) {
	def, ok := e.opt.Buildings.Get(typ)
	if !ok {
		return nil, ErrUnknownBuilding.WithData("type", typ)
	}
	if def.Kind == building.KindHome || def.Kind == building.KindPortal {
		return nil, ErrNotPlaceable.WithData("type", typ)
	}
	return w.Place(typ, c)
}

// Demolish 拆除建筑，已扣过造价的退一半。
func (e *Engine) Demolish(w *entity.World, c grid.Coord) (*entity.Building, error) {
	b, ok := w.Building(c)
	if !ok {
		return nil, entity.ErrNoBuilding.WithData("coord", c.String())
	}
	def, known := e.opt.Buildings.Get(b.Type)
	if known && (def.Kind == building.KindHome || def.Kind == building.KindPortal) {
		return nil, ErrNotPlaceable.WithData("type", b.Type)
	}
	if _, err := w.Remove(c); err != nil {
		return nil, err
	}
	if known && b.Committed {
		for id, amt := range def.Cost {
			w.Put(id, amt/2)
		}
	}
	for id, amt := range b.InputBuffer {
		w.Put(id, amt)
	}
	return b, nil
}

func (e *Engine) SetPolicy(w *entity.World, c grid.Coord, p entity.Policy) error {
	return w.SetPolicy(c, p)
}

func (e *Engine) AddModifier(w *entity.World, m entity.Modifier) error {
	if m.Multiplier <= 0 || !m.Until.After(m.From) {
		return ErrBadAmount.WithData("multiplier", m.Multiplier)
	}
	w.AddModifier(m)
	return nil
}

// AcceptOrder 接单并锁定库存。
func (e *Engine) AcceptOrder(w *entity.World, id int64) error {
	o, ok := w.Order(id)
	if !ok {
		return entity.ErrOrderMissing.WithData("order_id", id)
	}
	if o.Status != entity.OrderOpen {
		return ErrOrderState.WithData("order_id", id)
	}
	if err := w.Reserve(o.Resource, o.Amount); err != nil {
		return err
	}
	o.Status = entity.OrderAccepted
	w.MarkDirty()
	return nil
}

// FulfillOrder 交付订单、收钱；资源在本期众筹里时同时记一笔认捐。
func (e *Engine) FulfillOrder(w *entity.World, id int64) (float64, error) {
	o, ok := w.Order(id)
	if !ok {
		return 0, entity.ErrOrderMissing.WithData("order_id", id)
	}
	switch o.Status {
	case entity.OrderAccepted:
		w.ConsumeReserved(o.Resource, o.Amount)
	case entity.OrderOpen:
		if w.Usable(o.Resource) < o.Amount {
			return 0, entity.ErrShortStock.WithData("resource", o.Resource).WithData("amount", o.Amount)
		}
		w.Take(o.Resource, o.Amount)
	default:
		return 0, ErrOrderState.WithData("order_id", id)
	}
	paid := o.Amount * o.UnitPrice
	w.AddMoney(paid)
	w.RemoveOrder(id)
	if feed := e.opt.Feed; feed != nil && feed.InCampaign(w, o.Resource) {
		if err := feed.Pledge(w, o.Resource, o.Amount); err != nil {
			return paid, err
		}
	}
	return paid, nil
}

// Pledge 直接从可用库存认捐给本期众筹。
func (e *Engine) Pledge(w *entity.World, resourceID string, amount float64) error {
	if amount <= 0 {
		return ErrBadAmount.WithData("amount", amount)
	}
	feed := e.opt.Feed
	if feed == nil {
		return crowdfunding.ErrNoCampaign
	}
	if _, ok := w.Campaign(w.CampaignID()); !ok {
		return crowdfunding.ErrNoCampaign
	}
	if !feed.InCampaign(w, resourceID) {
		return crowdfunding.ErrNotPledged.WithData("resource", resourceID)
	}
	if w.Usable(resourceID) < amount {
		return entity.ErrShortStock.WithData("resource", resourceID).WithData("amount", amount)
	}
	w.Take(resourceID, amount)
	return feed.Pledge(w, resourceID, amount)
}
