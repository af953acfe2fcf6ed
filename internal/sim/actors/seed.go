package actors

import (
	"fmt"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/grid"
	"Tycoon/internal/shared/serverconfig"
)

const starterWood = 50

// SeedWorld 生成一张新地图：左侧入口、右侧主基地、上下各一条矿脉，外加启动资金和木头。
func SeedWorld(mapID, userID string, cfg serverconfig.SimConfig, cat *building.Catalog) (*entity.World, error) {
	if cfg.Width < 3 || cfg.Height < 1 {
		return nil, fmt.Errorf("seed world %s: map %dx%d too small", mapID, cfg.Width, cfg.Height)
	}
	g, err := grid.New(grid.Kind(cfg.GridType), cfg.Width, cfg.Height, cfg.TileSize)
	if err != nil {
		return nil, fmt.Errorf("seed world %s: %w", mapID, err)
	}
	home, ok := cat.FirstOfKind(building.KindHome)
	if !ok {
		return nil, fmt.Errorf("seed world %s: catalog has no home", mapID)
	}
	portal, ok := cat.FirstOfKind(building.KindPortal)
	if !ok {
		return nil, fmt.Errorf("seed world %s: catalog has no portal", mapID)
	}

	w := entity.NewWorld(mapID, userID, g)
	mid := cfg.Height / 2
	if _, err := w.PlaceConstructed(portal.Type, grid.Coord{X: 0, Y: mid}); err != nil {
		return nil, err
	}
	if _, err := w.PlaceConstructed(home.Type, grid.Coord{X: cfg.Width - 1, Y: mid}); err != nil {
		return nil, err
	}
	if cfg.Height > 2 {
		w.SetDeposit(grid.Coord{X: cfg.Width / 2, Y: 0}, "iron_ore")
		w.SetDeposit(grid.Coord{X: cfg.Width / 2, Y: cfg.Height - 1}, "coal")
	}
	w.AddMoney(cfg.StartMoney)
	w.Put("wood", starterWood)
	return w, nil
}
