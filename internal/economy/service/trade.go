package service

import (
	"math"
	"strconv"

	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/resource"

	"go.uber.org/zap"
)

// resolveTrade 先处理过期订单（释放锁定库存），再按节奏生成新订单。
func (e *Engine) resolveTrade(ts *tickState) error {
	for _, o := range ts.w.Orders() {
		if !o.Expired(ts.now) {
			continue
		}
		if o.Status == entity.OrderAccepted {
			ts.w.Release(o.Resource, o.Amount)
		}
		ts.w.RemoveOrder(o.ID)
		e.log.WithContext(ts.ctx).Debug("trade order expired",
			zap.String("map_id", ts.w.MapID()),
			zap.Int64("order_id", o.ID),
		)
	}

	every := e.opt.OrderEvery
	if every <= 0 || e.opt.IDs == nil || ts.next.Tick%uint64(every) != 0 || len(ts.w.Orders()) >= maxOpenOrders {
		return nil
	}
	var pool []resource.Resource
	for _, r := range e.opt.Resources.All() {
		if r.TradeableOn(ts.w.MapID()) && r.BasePrice > 0 {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	rng := crowdfunding.NewRand("order-" + ts.w.MapID() + "-" + strconv.FormatUint(ts.next.Tick, 10))
	r := pool[rng.IntN(len(pool))]
	price, ok := ts.w.Price(r.ID)
	if !ok {
		price = r.BasePrice
	}
	o := &entity.TradeOrder{
		ID:        e.opt.IDs.NextID(ts.now),
		Resource:  r.ID,
		Amount:    math.Round(10 + rng.Float64()*90),
		UnitPrice: price * (1.1 + rng.Float64()*0.3),
		Status:    entity.OrderOpen,
		CreatedAt: ts.now,
		ExpiresAt: ts.now.Add(e.opt.OrderTTL),
	}
	ts.w.AddOrder(o)
	return nil
}
