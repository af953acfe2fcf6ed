package entity

import "maps"

// Cycle 是一个 tick 的汇总：current 给读者看，next 在 tick 内累加，tick 末交换。
type Cycle struct {
	Tick          uint64             `json:"tick"`
	Produced      map[string]float64 `json:"produced"`
	Consumed      map[string]float64 `json:"consumed"`
	PowerSupply   float64            `json:"power_supply"`
	PowerUsage    float64            `json:"power_usage"`
	PowerRequired float64            `json:"power_required"`
	Boosts        map[string]float64 `json:"boosts"`      // 坐标 -> 叠加倍率
	TierActive    map[int]int        `json:"tier_active"` // 工业区：每个 tier 有产出的建筑数
	Curtailed     []string           `json:"curtailed"`   // 因缺电停产的坐标
	Failed        map[string]string  `json:"failed"`      // 坐标 -> 错误
	Valuation     float64            `json:"valuation"`
	LayoutChanged bool               `json:"layout_changed"` // 本 tick 有建筑开始占格或完工
}

func NewCycle(tick uint64) *Cycle {
	return &Cycle{
		Tick:       tick,
		Produced:   make(map[string]float64),
		Consumed:   make(map[string]float64),
		Boosts:     make(map[string]float64),
		TierActive: make(map[int]int),
		Failed:     make(map[string]string),
	}
}

// Clone 深拷贝，给 tick 外的读者（HTTP 查询、测试）使用。
func (c *Cycle) Clone() *Cycle {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Produced = maps.Clone(c.Produced)
	cp.Consumed = maps.Clone(c.Consumed)
	cp.Boosts = maps.Clone(c.Boosts)
	cp.TierActive = maps.Clone(c.TierActive)
	cp.Failed = maps.Clone(c.Failed)
	cp.Curtailed = append([]string(nil), c.Curtailed...)
	return &cp
}
