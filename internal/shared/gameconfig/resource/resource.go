package resource

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"Tycoon/internal/shared/config"
)

const fileName = "resource.json"

//go:embed resource.json
var embedded []byte

type ID = string

type Resource struct {
	ID            ID       `json:"id" mapstructure:"id"`
	Name          string   `json:"name" mapstructure:"name"`
	Tier          int      `json:"tier" mapstructure:"tier"`
	BasePrice     float64  `json:"base_price" mapstructure:"base_price"`
	Elasticity    float64  `json:"elasticity" mapstructure:"elasticity"`
	PriceEligible bool     `json:"price_eligible" mapstructure:"price_eligible"`
	Global        bool     `json:"global" mapstructure:"global"` // 任意地图都能产出
	Maps          []string `json:"maps" mapstructure:"maps"`     // 可交易的地图，空表示全部
	StorageCap    float64  `json:"storage_cap" mapstructure:"storage_cap"`
}

// TradeableOn 判断资源能否在 mapID 上交易。
func (r Resource) TradeableOn(mapID string) bool {
	if !r.PriceEligible {
		return false
	}
	return len(r.Maps) == 0 || slices.Contains(r.Maps, mapID)
}

// TradeableEverywhere 表示不限地图。
func (r Resource) TradeableEverywhere() bool {
	return r.PriceEligible && len(r.Maps) == 0
}

type Catalog struct {
	Title string     `mapstructure:"title"`
	List  []Resource `mapstructure:"list"`
	byID  map[ID]Resource
}

// Load 读取 dir 下的 resource.json；dir 为空时使用内嵌的默认表。
func Load(dir string) (*Catalog, error) {
	c := &Catalog{}
	if dir == "" {
		if err := config.LoadBytes(embedded, "json", c); err != nil {
			return nil, fmt.Errorf("load resource catalog failed: %w", err)
		}
	} else {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("load resource catalog failed: %w", err)
		}
		if err := config.Load(path, c); err != nil {
			return nil, fmt.Errorf("load resource catalog failed: %w", err)
		}
	}
	return c, c.index()
}

// MustDefault 返回内嵌目录表，解析失败直接 panic（内嵌文件随二进制发布）。
func MustDefault() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// New 用给定列表构造目录表，测试用。
func New(list []Resource) (*Catalog, error) {
	c := &Catalog{List: list}
	return c, c.index()
}

func (c *Catalog) index() error {
	c.byID = make(map[ID]Resource, len(c.List))
	for _, r := range c.List {
		if r.ID == "" {
			return fmt.Errorf("resource catalog: empty id")
		}
		if _, dup := c.byID[r.ID]; dup {
			return fmt.Errorf("resource catalog: duplicate id %q", r.ID)
		}
		c.byID[r.ID] = r
	}
	return nil
}

func (c *Catalog) Get(id ID) (Resource, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// All 返回按 id 排序的副本，遍历顺序稳定。
func (c *Catalog) All() []Resource {
	out := slices.Clone(c.List)
	slices.SortFunc(out, func(a, b Resource) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}
