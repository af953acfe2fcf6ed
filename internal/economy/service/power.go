package service

import (
	"slices"
)

// resolvePower 汇总供电与用电；电不够时按“非高优先级在前、坐标倒序”逐个切断用电建筑，
// 被切断的建筑本 tick 产出作废、消耗的输入退回缓冲。最后把所有输出缓冲运进库存。
func (e *Engine) resolvePower(ts *tickState) error {
	supply, required := 0.0, 0.0
	var consumers []*run
	for _, r := range ts.runs {
		supply += r.supply
		if r.consumer() {
			required += r.def.PowerUsage
			consumers = append(consumers, r)
		}
	}

	usage := required
	if usage > supply+epsilon {
		for _, r := range curtailOrder(consumers) {
			if usage <= supply+epsilon {
				break
			}
			e.curtail(ts, r)
			usage -= r.def.PowerUsage
		}
	}
	for _, r := range consumers {
		r.b.Powered = !r.curtailed
	}

	ts.next.PowerSupply = supply
	ts.next.PowerRequired = required
	ts.next.PowerUsage = max(0, usage)

	for _, r := range ts.runs {
		e.transport(ts.w, r.b)
	}
	return nil
}

// curtailOrder：先切普通建筑，再切高优先级；同组内坐标大的先切。
func curtailOrder(consumers []*run) []*run {
	var high, normal []*run
	for _, r := range consumers {
		if r.b.Policy.HighPriority {
			high = append(high, r)
		} else {
			normal = append(normal, r)
		}
	}
	slices.Reverse(high)
	slices.Reverse(normal)
	return append(normal, high...)
}

func (e *Engine) curtail(ts *tickState, r *run) {
	r.curtailed = true
	for id, amt := range r.made {
		r.b.OutputBuffer[id] = clampZero(r.b.OutputBuffer[id] - amt)
		if r.b.OutputBuffer[id] == 0 {
			delete(r.b.OutputBuffer, id)
		}
		ts.next.Produced[id] = clampZero(ts.next.Produced[id] - amt)
	}
	for id, amt := range r.drawn {
		r.b.InputBuffer[id] += amt
		ts.next.Consumed[id] = clampZero(ts.next.Consumed[id] - amt)
	}
	if r.tiered {
		ts.next.TierActive[r.def.Tier]--
	}
	r.made = map[string]float64{}
	r.drawn = map[string]float64{}
	ts.next.Curtailed = append(ts.next.Curtailed, r.b.Key())
}
