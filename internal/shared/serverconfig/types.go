package serverconfig

import "time"

type Config struct {
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	HTTPServer   HTTPServerConfig   `yaml:"httpserver" mapstructure:"httpserver"`
	Sim          SimConfig          `yaml:"sim" mapstructure:"sim"`
	Crowdfunding CrowdfundingConfig `yaml:"crowdfunding" mapstructure:"crowdfunding"`
	Wave         WaveConfig         `yaml:"wave" mapstructure:"wave"`
	Pathfinding  PathfindingConfig  `yaml:"pathfinding" mapstructure:"pathfinding"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	MongoDB      MongoDBConfig      `yaml:"mongodb" mapstructure:"mongodb"`
	MySQL        MySQLConfig        `yaml:"mysql" mapstructure:"mysql"`
	JWTSecret    string             `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type SimConfig struct {
	MapID          string        `yaml:"map_id" mapstructure:"map_id"`
	UserID         string        `yaml:"user_id" mapstructure:"user_id"`
	NodeID         int64         `yaml:"node_id" mapstructure:"node_id"`     // 订单号节点位，多实例部署时各不相同
	GridType       string        `yaml:"grid_type" mapstructure:"grid_type"` // square/hex
	Width          int           `yaml:"width" mapstructure:"width"`
	Height         int           `yaml:"height" mapstructure:"height"`
	TileSize       float64       `yaml:"tile_size" mapstructure:"tile_size"`
	TickInterval   time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
	MinuteInterval time.Duration `yaml:"minute_interval" mapstructure:"minute_interval"`
	SaveEveryTicks int           `yaml:"save_every_ticks" mapstructure:"save_every_ticks"`
	OrderEvery     int           `yaml:"order_every_ticks" mapstructure:"order_every_ticks"`
	OrderTTL       time.Duration `yaml:"order_ttl" mapstructure:"order_ttl"`
	StartMoney     float64       `yaml:"start_money" mapstructure:"start_money"`
	CatalogDir     string        `yaml:"catalog_dir" mapstructure:"catalog_dir"`
}

type CrowdfundingConfig struct {
	DayLength  time.Duration `yaml:"day_length" mapstructure:"day_length"`
	SeedSecret string        `yaml:"seed_secret" mapstructure:"seed_secret"`
}

type WaveConfig struct {
	TotalCount   int           `yaml:"total_count" mapstructure:"total_count"`
	SpawnDelay   time.Duration `yaml:"spawn_delay" mapstructure:"spawn_delay"`
	AutoContinue bool          `yaml:"auto_continue" mapstructure:"auto_continue"`
	MonsterHP    float64       `yaml:"monster_hp" mapstructure:"monster_hp"`
	MonsterSpeed float64       `yaml:"monster_speed" mapstructure:"monster_speed"` // 格/秒
	HPGrowth     float64       `yaml:"hp_growth" mapstructure:"hp_growth"`
	RewardBase   float64       `yaml:"reward_base" mapstructure:"reward_base"`
	RewardTicks  int           `yaml:"reward_ticks" mapstructure:"reward_ticks"`
	BulletTicks  int           `yaml:"bullet_ticks" mapstructure:"bullet_ticks"` // 子弹飞行的 step 数
	StepInterval time.Duration `yaml:"step_interval" mapstructure:"step_interval"`
}

type PathfindingConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	PreviewRate  float64       `yaml:"preview_rate" mapstructure:"preview_rate"` // 每秒允许的预览次数
	PreviewBurst int           `yaml:"preview_burst" mapstructure:"preview_burst"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory/mongodb/mysql
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}
