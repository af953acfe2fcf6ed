package actors

import (
	"time"

	"Tycoon/internal/defense"
	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/service"
	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/gameconfig/resource"
	"Tycoon/internal/shared/serverconfig"
	"Tycoon/internal/sim/app/port"
	"Tycoon/modules/kit/logx"
)

const (
	defaultOfflineRate = 0.1
	loadTimeout        = 5 * time.Second
	flushTimeout       = 3 * time.Second
)

// Deps 是所有地图 actor 共享的协作方，由 manager 传给每个子 actor。
type Deps struct {
	Repo         port.EconomyRepository
	Resources    *resource.Catalog
	Buildings    *building.Catalog
	Feed         *crowdfunding.Feed
	Finder       pathfinding.Finder
	IDs          service.IDGenerator
	Redraw       service.Redrawer
	Sim          serverconfig.SimConfig
	Wave         defense.WaveConfig
	PreviewRate  float64
	PreviewBurst int
	OfflineRate  float64
	Clock        func() time.Time
	Logger       logx.Logger
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d *Deps) withDefaults() *Deps {
	cp := *d
	if cp.Logger == nil {
		cp.Logger = logx.Nop()
	}
	if cp.Resources == nil {
		cp.Resources = resource.MustDefault()
	}
	if cp.Buildings == nil {
		cp.Buildings = building.MustDefault()
	}
	if cp.OfflineRate <= 0 {
		cp.OfflineRate = defaultOfflineRate
	}
	return &cp
}

// WaveFromConfig 把配置段转换成波次参数。
func WaveFromConfig(c serverconfig.WaveConfig) defense.WaveConfig {
	return defense.WaveConfig{
		TotalCount:   c.TotalCount,
		SpawnDelay:   c.SpawnDelay,
		AutoContinue: c.AutoContinue,
		MonsterHP:    c.MonsterHP,
		HPGrowth:     c.HPGrowth,
		MonsterSpeed: c.MonsterSpeed,
		RewardBase:   c.RewardBase,
		RewardTicks:  c.RewardTicks,
		BulletTicks:  c.BulletTicks,
	}
}
