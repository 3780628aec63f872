// Package orm 按配置打开 GORM 连接
package orm

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var dialects = map[DBType]func(dsn string) gorm.Dialector{
	MySQL:      mysql.Open,
	PostgreSQL: postgres.Open,
	SQLite:     sqlite.Open,
	"":         sqlite.Open,
	SQLServer:  sqlserver.Open,
}

// New 打开数据库并设置连接池，cfg 为 nil 时使用 DefaultConfig
func New(cfg *Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.DSN == "" {
		return nil, ErrInvalidConfig.WithMessage("dsn is required")
	}
	dialector, err := dialect(cfg.Type, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger(cfg),
		NamingStrategy: schema.NamingStrategy{TablePrefix: cfg.TablePrefix},
	})
	if err != nil {
		return nil, ErrConnect.WithError(err)
	}
	if err := cfg.applyPool(db); err != nil {
		return nil, ErrConnect.WithError(err)
	}
	return db, nil
}

func dialect(typ DBType, dsn string) (gorm.Dialector, error) {
	open, ok := dialects[typ]
	if !ok {
		return nil, ErrUnsupportedType.WithMessage(fmt.Sprintf("unsupported database type: %s", typ))
	}
	return open(dsn), nil
}

// applyPool 只设置大于 0 的项
func (c *Config) applyPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	return nil
}

// gormLogger 写 stderr，stdout 留给命令输出
func gormLogger(c *Config) logger.Interface {
	level := logger.LogLevel(c.LogLevel)
	if level == 0 {
		level = logger.Silent
	}
	return logger.New(log.New(os.Stderr, "", log.LstdFlags), logger.Config{
		SlowThreshold:             c.SlowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
