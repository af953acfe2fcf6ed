package service

import "math"

const (
	priceStep     = 0.1
	priceFloorMul = 0.2
	priceCeilMul  = 5.0
)

// resolvePricing 按本 tick 的产销比调整价格：
// target = base * ((consumed+1)/(produced+1))^elasticity，每 tick 向 target 移动 10%，限制在 [0.2, 5] 倍基准价。
func (e *Engine) resolvePricing(ts *tickState) error {
	for _, r := range priceEligible(e.opt.Resources.All()) {
		if r.BasePrice <= 0 {
			continue
		}
		price, ok := ts.w.Price(r.ID)
		if !ok {
			price = r.BasePrice
		}
		ratio := (ts.next.Consumed[r.ID] + 1) / (ts.next.Produced[r.ID] + 1)
		target := r.BasePrice * math.Pow(ratio, r.Elasticity)
		price += (target - price) * priceStep
		price = min(max(price, r.BasePrice*priceFloorMul), r.BasePrice*priceCeilMul)
		ts.w.SetPrice(r.ID, price)
	}
	return nil
}
