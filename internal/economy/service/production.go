package service

import (
	"math"
	"slices"

	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/gameconfig/resource"
)

const epsilon = 1e-9

// run 记录一个建筑本 tick 的暂存结果，供停电时回滚。
type run struct {
	b         *entity.Building
	def       building.Building
	drawn     map[string]float64 // 本 tick 从输入缓冲消耗的量
	made      map[string]float64 // 本 tick 暂存到输出缓冲的量
	supply    float64
	ratio     float64
	tiered    bool
	curtailed bool
}

func (r *run) consumer() bool { return r.def.PowerUsage > 0 }

// resolveProduction 高优先级建筑先结算，同组按坐标顺序；先到先得库存。
func (e *Engine) resolveProduction(ts *tickState) error {
	var high, normal []*entity.Building
	for _, b := range ts.w.Buildings() {
		if !b.Active() {
			continue
		}
		if b.Policy.HighPriority {
			high = append(high, b)
		} else {
			normal = append(normal, b)
		}
	}
	for _, b := range append(high, normal...) {
		e.guard(ts, b, "economy.produce", func() error {
			return e.produce(ts, b)
		})
	}
	return nil
}

func (e *Engine) produce(ts *tickState, b *entity.Building) error {
	def, ok := e.opt.Buildings.Get(b.Type)
	if !ok {
		return ErrRecipeMissing.WithData("type", b.Type).WithData("coord", b.Key())
	}
	for id := range def.Inputs {
		if _, ok := e.opt.Resources.Get(id); !ok {
			return ErrRecipeMissing.WithData("type", b.Type).WithData("resource", id)
		}
	}
	for id := range def.Outputs {
		if _, ok := e.opt.Resources.Get(id); !ok {
			return ErrRecipeMissing.WithData("type", b.Type).WithData("resource", id)
		}
	}
	if b.InputBuffer == nil {
		b.InputBuffer = make(map[string]float64)
	}
	if b.OutputBuffer == nil {
		b.OutputBuffer = make(map[string]float64)
	}

	r := &run{b: b, def: def, drawn: map[string]float64{}, made: map[string]float64{}}
	ts.runs = append(ts.runs, r)

	if def.Kind != building.KindProducer && def.Kind != building.KindGenerator {
		r.ratio = 1
		return nil
	}
	if def.Deposit != "" && !e.adj.nearDeposit(ts.w, b.Coord, def.Deposit) {
		return nil
	}

	mult := e.multiplier(ts, b, def)
	if outputBlocked(b, def, mult) {
		return nil
	}

	inputs := sortedKeys(def.Inputs)
	ratio := 1.0
	for _, id := range inputs {
		need := def.Inputs[id] * mult
		if need <= 0 {
			continue
		}
		target := inputTarget(b.Policy, need, def.Buffer())
		if want := target - b.InputBuffer[id]; want > epsilon {
			b.InputBuffer[id] += ts.w.Take(id, want)
		}
		ratio = min(ratio, b.InputBuffer[id]/need)
	}
	if ratio < 1-epsilon && b.Policy.InputOverrideFallback == entity.InputFallbackSkip {
		ratio = 0
	}
	ratio = min(1, ratio)
	if ratio <= epsilon {
		return nil
	}

	for _, id := range inputs {
		amt := def.Inputs[id] * mult * ratio
		b.InputBuffer[id] = clampZero(b.InputBuffer[id] - amt)
		r.drawn[id] = amt
		ts.next.Consumed[id] += amt
	}
	for _, id := range sortedKeys(def.Outputs) {
		amt := def.Outputs[id] * mult * ratio * ts.modifier(id)
		b.OutputBuffer[id] += amt
		r.made[id] = amt
		ts.next.Produced[id] += amt
	}
	r.ratio = ratio
	r.supply = def.PowerSupply * ratio
	if def.Kind == building.KindProducer && len(def.Outputs) > 0 {
		ts.next.TierActive[def.Tier]++
		r.tiered = true
	}
	return nil
}

// inputTarget：auto 补到缓冲容量，fixed 只补一个 tick 的需求；容量覆盖优先。
func inputTarget(p entity.Policy, need, bufferSeconds float64) float64 {
	capacity := need * bufferSeconds
	if p.InputCapacityOverride > 0 {
		capacity = p.InputCapacityOverride
	}
	switch p.InputBuffer {
	case entity.InputBufferFixed:
		return min(need, capacity)
	case entity.InputBufferAuto:
		return capacity
	default:
		return capacity
	}
}

// multiplier = (1 + 邻接加成 + 增幅器叠加) × 成长系数。
func (e *Engine) multiplier(ts *tickState, b *entity.Building, def building.Building) float64 {
	boost := e.boost(ts, b)
	if boost > 0 {
		ts.next.Boosts[b.Key()] = boost
	}
	return (1 + e.adj.bonus(ts.w, b.Coord, def) + boost) * growthFactor(b, def)
}

// boost 叠加相邻、已建成、上个 tick 有电的增幅器。
func (e *Engine) boost(ts *tickState, b *entity.Building) float64 {
	total := 0.0
	for _, n := range ts.w.Grid().Neighbors(b.Coord) {
		nb, ok := ts.w.Building(n)
		if !ok || !nb.Active() || !nb.Powered {
			continue
		}
		def, ok := e.opt.Buildings.Get(nb.Type)
		if ok && def.Kind == building.KindBooster {
			total += def.Boost
		}
	}
	return total
}

// outputBlocked 输出缓冲已满（下游没运走）时停产。
func outputBlocked(b *entity.Building, def building.Building, mult float64) bool {
	for id, n := range def.Outputs {
		limit := n * mult * def.Buffer()
		if limit > 0 && b.OutputBuffer[id] >= limit-epsilon {
			return true
		}
	}
	return false
}

// transport 把输出缓冲运进库存。默认整单运输（放不下就都不运），partialTransport 时能运多少运多少。
func (e *Engine) transport(w *entity.World, b *entity.Building) {
	ids := sortedKeys(b.OutputBuffer)
	if !b.Policy.PartialTransport {
		for _, id := range ids {
			if b.OutputBuffer[id] > e.space(w, id)+epsilon {
				return
			}
		}
	}
	for _, id := range ids {
		amt := min(b.OutputBuffer[id], e.space(w, id))
		if amt <= 0 {
			continue
		}
		w.Put(id, amt)
		b.OutputBuffer[id] = clampZero(b.OutputBuffer[id] - amt)
		if b.OutputBuffer[id] == 0 {
			delete(b.OutputBuffer, id)
		}
	}
}

func (e *Engine) space(w *entity.World, id string) float64 {
	r, ok := e.opt.Resources.Get(id)
	if !ok || r.StorageCap <= 0 {
		return math.Inf(1)
	}
	return max(0, r.StorageCap-w.Stock(id))
}

// valuation = Σ 产出 × 价格 × 新闻系数 × (1 + 众筹加成)。
func (e *Engine) valuation(w *entity.World, c *entity.Cycle) float64 {
	bonus := 1 + crowdfunding.ActiveBonus(w)
	total := 0.0
	for _, id := range sortedKeys(c.Produced) {
		price, ok := w.Price(id)
		if !ok {
			r, found := e.opt.Resources.Get(id)
			if !found {
				continue
			}
			price = r.BasePrice
		}
		total += c.Produced[id] * price * newsModifier(w, id) * bonus
	}
	return total
}

func newsModifier(w *entity.World, id string) float64 {
	n, ok := w.NewsFor(id)
	if !ok || (n.Filter != entity.FilterOutput && n.Filter != entity.FilterBoth) {
		return 1
	}
	return n.Modifier
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func clampZero(v float64) float64 {
	if v < epsilon {
		return 0
	}
	return v
}

// priceEligible 过滤出参与定价的资源。
func priceEligible(list []resource.Resource) []resource.Resource {
	out := make([]resource.Resource, 0, len(list))
	for _, r := range list {
		if r.PriceEligible {
			out = append(out, r)
		}
	}
	return out
}
