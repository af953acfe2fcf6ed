package service

import (
	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/grid"
)

// adjacencyCache 是每个 tick 的记忆化缓存：放置/拆除会改变结果，所以每个 tick 开头清空。
type adjacencyCache struct {
	counts  map[string]map[string]int // 坐标 -> 相邻已建成建筑类型计数
	deposit map[string]map[string]bool
}

func newAdjacencyCache() *adjacencyCache {
	c := &adjacencyCache{}
	c.reset()
	return c
}

func (c *adjacencyCache) reset() {
	c.counts = make(map[string]map[string]int)
	c.deposit = make(map[string]map[string]bool)
}

func (c *adjacencyCache) neighbours(w *entity.World, at grid.Coord) map[string]int {
	key := at.String()
	if m, ok := c.counts[key]; ok {
		return m
	}
	m := make(map[string]int)
	for _, n := range w.Grid().Neighbors(at) {
		if b, ok := w.Building(n); ok && b.Constructed() {
			m[b.Type]++
		}
	}
	c.counts[key] = m
	return m
}

// nearDeposit 判断本格或相邻格是否有 resource 矿脉。
func (c *adjacencyCache) nearDeposit(w *entity.World, at grid.Coord, resource string) bool {
	key := at.String()
	if m, ok := c.deposit[key]; ok {
		if v, ok := m[resource]; ok {
			return v
		}
	} else {
		c.deposit[key] = make(map[string]bool)
	}
	found := false
	if r, ok := w.Deposit(at); ok && r == resource {
		found = true
	}
	for _, n := range w.Grid().Neighbors(at) {
		if found {
			break
		}
		if r, ok := w.Deposit(n); ok && r == resource {
			found = true
		}
	}
	c.deposit[key][resource] = found
	return found
}

func (c *adjacencyCache) bonus(w *entity.World, at grid.Coord, def building.Building) float64 {
	if len(def.Adjacency) == 0 {
		return 0
	}
	total := 0.0
	for typ, cnt := range c.neighbours(w, at) {
		total += def.Adjacency[typ] * float64(cnt)
	}
	return total
}
