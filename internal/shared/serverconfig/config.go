package serverconfig

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"Tycoon/internal/shared/config"
)

var defaultConfigRelPath = filepath.Join("configs", "conf.yml")

// Conf 是进程级配置，只在 main 里 Load 一次，业务代码通过参数注入拿到需要的段。
var Conf = Default()

// Load 读取配置文件（name 为空时向上查找 configs/conf.yml），缺省字段用 Default 补齐。
func Load(name string) error {
	path, err := config.Locate(name, defaultConfigRelPath)
	if err != nil {
		return err
	}
	cfg := Default()
	if err := config.Load(path, &cfg); err != nil {
		return err
	}
	cfg.fillDefaults()
	Conf = cfg
	// 环境变量优先；未设置时回填配置里的 jwt_secret，兼容本地开发。
	if os.Getenv("JWT_SECRET") == "" && Conf.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.JWTSecret)
	}
	return nil
}

// Watch 监听配置文件，变化后把补齐默认值的新配置交给 onChange。Conf 本身不变。
func Watch(name string, onChange func(Config)) (*config.Watcher, error) {
	path, err := config.Locate(name, defaultConfigRelPath)
	if err != nil {
		return nil, err
	}
	live := Default()
	return config.Watch(path, &live, func() {
		c := live
		c.fillDefaults()
		if onChange != nil {
			onChange(c)
		}
	})
}

const redactedMask = "***"

// Redacted 返回可以打日志的副本：密钥、数据库密码和带凭据的 mongo URI 都被遮掉。
func (c Config) Redacted() Config {
	mask := func(v string) string {
		if v == "" {
			return ""
		}
		return redactedMask
	}
	c.JWTSecret = mask(c.JWTSecret)
	c.Crowdfunding.SeedSecret = mask(c.Crowdfunding.SeedSecret)
	c.MySQL.Password = mask(c.MySQL.Password)
	c.MongoDB.URI = c.MongoDB.SafeURI()
	return c
}

// SafeURI 去掉 URI 里的账号密码，只留 host 和参数。
func (c MongoDBConfig) SafeURI() string {
	u, err := url.Parse(c.URI)
	if err != nil || u.User == nil {
		return c.URI
	}
	u.User = url.User(redactedMask)
	return u.String()
}

// Default 返回可直接跑起来的单机配置（内存存储、20x20 方格地图）。
func Default() Config {
	c := Config{
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Driver: "memory"},
	}
	c.fillDefaults()
	return c
}

func (c *Config) fillDefaults() {
	s := &c.Sim
	if s.MapID == "" {
		s.MapID = "default"
	}
	if s.UserID == "" {
		s.UserID = "local"
	}
	if s.GridType == "" {
		s.GridType = "square"
	}
	if s.Width <= 0 {
		s.Width = 20
	}
	if s.Height <= 0 {
		s.Height = 20
	}
	if s.TileSize <= 0 {
		s.TileSize = 32
	}
	if s.TickInterval <= 0 {
		s.TickInterval = time.Second
	}
	if s.MinuteInterval <= 0 {
		s.MinuteInterval = time.Minute
	}
	if s.SaveEveryTicks <= 0 {
		s.SaveEveryTicks = 10
	}
	if s.OrderEvery <= 0 {
		s.OrderEvery = 60
	}
	if s.OrderTTL <= 0 {
		s.OrderTTL = 5 * time.Minute
	}
	if c.Crowdfunding.DayLength <= 0 {
		c.Crowdfunding.DayLength = 24 * time.Hour
	}
	w := &c.Wave
	if w.TotalCount <= 0 {
		w.TotalCount = 5
	}
	if w.SpawnDelay <= 0 {
		w.SpawnDelay = 3 * time.Second
	}
	if w.MonsterHP <= 0 {
		w.MonsterHP = 10
	}
	if w.MonsterSpeed <= 0 {
		w.MonsterSpeed = 1
	}
	if w.HPGrowth <= 0 {
		w.HPGrowth = 0.15
	}
	if w.RewardBase <= 0 {
		w.RewardBase = 100
	}
	if w.RewardTicks <= 0 {
		w.RewardTicks = 10
	}
	if w.BulletTicks <= 0 {
		w.BulletTicks = 2
	}
	if w.StepInterval <= 0 {
		w.StepInterval = 100 * time.Millisecond
	}
	if c.Pathfinding.Timeout <= 0 {
		c.Pathfinding.Timeout = 3 * time.Second
	}
	if c.Pathfinding.PreviewRate <= 0 {
		c.Pathfinding.PreviewRate = 4
	}
	if c.Pathfinding.PreviewBurst <= 0 {
		c.Pathfinding.PreviewBurst = 2
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
}
