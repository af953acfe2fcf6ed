package defense

import (
	"time"

	"Tycoon/internal/shared/grid"
)

// Monster 沿缓存路径前进，走到路径终点（主基地）即突破。
type Monster struct {
	ID       int
	HP       float64
	MaxHP    float64
	Speed    float64 // 格/秒
	Portal   grid.Coord
	Path     []grid.Coord
	Index    int
	progress float64
}

func resetMonster(m *Monster) {
	path := m.Path[:0]
	*m = Monster{Path: path}
}

func (m *Monster) Alive() bool { return m.HP > 0 }

func (m *Monster) Position() grid.Coord {
	if len(m.Path) == 0 {
		return m.Portal
	}
	return m.Path[m.Index]
}

// advance 前进 dt，返回是否到达终点。
func (m *Monster) advance(dt time.Duration) bool {
	if len(m.Path) == 0 {
		return false
	}
	m.progress += m.Speed * dt.Seconds()
	for m.progress >= 1 && m.Index < len(m.Path)-1 {
		m.Index++
		m.progress--
	}
	return m.Index == len(m.Path)-1
}

// Bullet 飞行 TTL 个 step 后命中；目标已经死亡或被回收时直接消失。
type Bullet struct {
	Target   *Monster
	TargetID int
	Damage   float64
	From     grid.Coord
	TTL      int
}

func resetBullet(b *Bullet) { *b = Bullet{} }

// MonsterView 是对外暴露的只读快照。
type MonsterView struct {
	ID       int        `json:"id"`
	HP       float64    `json:"hp"`
	MaxHP    float64    `json:"max_hp"`
	Position grid.Coord `json:"position"`
	Portal   grid.Coord `json:"portal"`
}
