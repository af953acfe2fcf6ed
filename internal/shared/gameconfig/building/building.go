package building

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"Tycoon/internal/shared/config"
)

const fileName = "building.json"

//go:embed building.json
var embedded []byte

type Type = string

// Kind 决定建筑在结算里走哪条分支。
type Kind string

const (
	KindHome      Kind = "home"
	KindPortal    Kind = "portal"
	KindWall      Kind = "wall"
	KindProducer  Kind = "producer"
	KindGenerator Kind = "generator"
	KindBooster   Kind = "booster"
	KindTower     Kind = "tower"
)

const (
	HookNone   = ""
	HookGrowth = "growth"
)

const defaultBufferSeconds = 2

type Tower struct {
	Range        int           `json:"range" mapstructure:"range"`
	Damage       float64       `json:"damage" mapstructure:"damage"`
	FireInterval time.Duration `json:"fire_interval" mapstructure:"fire_interval"`
}

type Building struct {
	Type          Type               `mapstructure:"type"`
	Name          string             `mapstructure:"name"`
	Kind          Kind               `mapstructure:"kind"`
	Tier          int                `mapstructure:"tier"`
	Passable      bool               `mapstructure:"passable"` // 怪物可以穿过（主基地、入口）
	Inputs        map[string]float64 `mapstructure:"inputs"`   // 每秒
	Outputs       map[string]float64 `mapstructure:"outputs"`  // 每秒
	PowerUsage    float64            `mapstructure:"power_usage"`
	PowerSupply   float64            `mapstructure:"power_supply"`
	Adjacency     map[string]float64 `mapstructure:"adjacency"` // 每个相邻的该类型建筑提供的加成
	Boost         float64            `mapstructure:"boost"`     // booster 给相邻建筑的叠加倍率
	Deposit       string             `mapstructure:"deposit"`   // 需要相邻矿脉
	BufferSeconds float64            `mapstructure:"buffer_seconds"`
	Hook          string             `mapstructure:"hook"`
	GrowthTicks   int                `mapstructure:"growth_ticks"`
	GrowthBonus   float64            `mapstructure:"growth_bonus"`
	Tower         *Tower             `mapstructure:"tower"`
	Cost          map[string]float64 `mapstructure:"cost"`
	BuildTicks    int                `mapstructure:"build_ticks"`
}

// Buffer 返回输入缓冲能容纳的秒数。
func (b Building) Buffer() float64 {
	if b.BufferSeconds <= 0 {
		return defaultBufferSeconds
	}
	return b.BufferSeconds
}

type Catalog struct {
	Title  string     `mapstructure:"title"`
	List   []Building `mapstructure:"list"`
	byType map[Type]Building
}

// Load 读取 dir 下的 building.json；dir 为空时使用内嵌默认表。
func Load(dir string) (*Catalog, error) {
	c := &Catalog{}
	if dir == "" {
		if err := config.LoadBytes(embedded, "json", c); err != nil {
			return nil, fmt.Errorf("load building catalog failed: %w", err)
		}
	} else {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("load building catalog failed: %w", err)
		}
		if err := config.Load(path, c); err != nil {
			return nil, fmt.Errorf("load building catalog failed: %w", err)
		}
	}
	return c, c.index()
}

func MustDefault() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// New 用给定列表构造目录表，测试用。
func New(list []Building) (*Catalog, error) {
	c := &Catalog{List: list}
	return c, c.index()
}

func (c *Catalog) index() error {
	c.byType = make(map[Type]Building, len(c.List))
	for _, b := range c.List {
		if b.Type == "" {
			return fmt.Errorf("building catalog: empty type")
		}
		if _, dup := c.byType[b.Type]; dup {
			return fmt.Errorf("building catalog: duplicate type %q", b.Type)
		}
		switch b.Kind {
		case KindHome, KindPortal, KindWall, KindProducer, KindGenerator, KindBooster, KindTower:
		default:
			return fmt.Errorf("building catalog: type %q has unknown kind %q", b.Type, b.Kind)
		}
		if b.Kind == KindTower && b.Tower == nil {
			return fmt.Errorf("building catalog: tower %q without tower stats", b.Type)
		}
		c.byType[b.Type] = b
	}
	return nil
}

func (c *Catalog) Get(t Type) (Building, bool) {
	b, ok := c.byType[t]
	return b, ok
}

// FirstOfKind 返回第一个该种类的建筑（主基地、入口在目录里各只有一种）。
func (c *Catalog) FirstOfKind(k Kind) (Building, bool) {
	for _, b := range c.List {
		if b.Kind == k {
			return b, true
		}
	}
	return Building{}, false
}
