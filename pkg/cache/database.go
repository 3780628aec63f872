package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipper-video/clipper/pkg/orm"
)

const defaultEntryTable = "cache_entries"

// entry 存储表的一行
type entry struct {
	Key       string     `gorm:"column:cache_key;primaryKey;size:191"`
	Value     []byte     `gorm:"column:cache_value"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

// live 未设置过期时间或尚未过期
func (e *entry) live(now time.Time) bool {
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// databaseCache 关系型数据库单表存储，过期行在读取时删除
type databaseCache struct {
	codec
	db    *gorm.DB
	table string
}

func newDatabaseCache(cfg *Config) (Cache, error) {
	db, err := orm.New(cfg.Database.ORM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheConnection, err)
	}
	table := cfg.Database.Table
	if table == "" {
		table = defaultEntryTable
	}
	if err := db.Table(table).AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("%w: migrate %s: %w", ErrCacheConnection, table, err)
	}
	return &databaseCache{codec: newCodec(cfg), db: db, table: table}, nil
}

func (d *databaseCache) rows(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Table(d.table)
}

func (d *databaseCache) Get(ctx context.Context, key string, value any) error {
	var row entry
	err := d.rows(ctx).Where("cache_key = ?", d.key(key)).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCacheNotFound
	case err != nil:
		return opError(err)
	}
	if !row.live(time.Now()) {
		_ = d.Delete(ctx, key)
		return ErrCacheNotFound
	}
	return d.decode(row.Value, value)
}

// Set 按主键 upsert
func (d *databaseCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := d.encode(value)
	if err != nil {
		return err
	}
	now := time.Now()
	row := entry{Key: d.key(key), Value: data, UpdatedAt: now}
	if ttl := d.expiry(ttl); ttl > 0 {
		exp := now.Add(ttl)
		row.ExpiresAt = &exp
	}
	err = d.rows(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"cache_value", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return opError(err)
	}
	return nil
}

func (d *databaseCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := d.rows(ctx).Where("cache_key IN ?", d.keys(keys)).Delete(&entry{}).Error; err != nil {
		return opError(err)
	}
	return nil
}

func (d *databaseCache) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCacheConnection, err)
	}
	return nil
}

func (d *databaseCache) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return opError(err)
	}
	return sqlDB.Close()
}
