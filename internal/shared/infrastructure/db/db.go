package db

import (
	"fmt"
	"time"

	"Tycoon/internal/shared/errs"
	"Tycoon/internal/shared/logs"
	"Tycoon/internal/shared/serverconfig"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultMaxConn = 10
	defaultMaxIdle = 2

	opMigrate = "db.Migrate"
)

// DSN 拼 go-sql-driver 的连接串；快照是二进制 blob，字符集用 utf8mb4，时间按 UTC 解析。
func DSN(cfg serverconfig.MySQLConfig) string {
	port := cfg.Port
	if port <= 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		port,
		cfg.DBName,
	)
}

// Open 连接 MySQL，并对 models 做 AutoMigrate。调用方传入自己要落库的行模型，
// 连接池参数未配置时用默认值。
func Open(cfg serverconfig.MySQLConfig, models ...any) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logs.NewGormLogger(logger.Warn, 200*time.Millisecond),
	}
	db, err := gorm.Open(mysql.Open(DSN(cfg)), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(orDefault(cfg.MaxConn, defaultMaxConn))
	sqlDB.SetMaxIdleConns(orDefault(cfg.MaxIdle, defaultMaxIdle))

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			_ = sqlDB.Close()
			return nil, errs.Wrap(opMigrate, errs.KindInfra, err, map[string]any{"db": cfg.DBName})
		}
	}

	logs.Info("open db success",
		zap.String("host", cfg.Host),
		zap.String("db", cfg.DBName),
		zap.String("user", cfg.User),
		zap.Int("migrated", len(models)),
	)
	return db, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
