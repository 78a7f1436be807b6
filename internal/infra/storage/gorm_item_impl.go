package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go_jsoning_server/internal/domain/model/resource"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/utils"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// collectionRecord 集合是否存在以及下一个插入位置
type collectionRecord struct {
	Name         string `gorm:"primaryKey;type:varchar(128)"`
	NextPosition int64  `gorm:"not null;default:0"`
}

func (collectionRecord) TableName() string { return "jsoning_collections" }

// itemRecord item 以 JSON 文本保存，position 保证列表顺序与插入顺序一致
type itemRecord struct {
	Resource  string `gorm:"primaryKey;type:varchar(128)"`
	ItemID    string `gorm:"column:item_id;primaryKey;type:varchar(191)"`
	Position  int64  `gorm:"not null;index"`
	Data      string `gorm:"type:text;not null"`
	CreatedAt int64  `gorm:"autoCreateTime"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

func (itemRecord) TableName() string { return "jsoning_items" }

type GormItemStorage struct {
	db *gorm.DB
}

// NewGormClient 根据 store.driver 打开 mysql 或 sqlite 并自动建表
func NewGormClient(c *configs.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Store.Driver {
	case configs.StoreDriverMySQL:
		dialector = mysql.Open(c.Store.Database.GetDSN())
	case configs.StoreDriverSQLite:
		dialector = sqlite.Open(c.Store.SQLite)
	default:
		return nil, fmt.Errorf("store driver %q is not backed by gorm", c.Store.Driver)
	}

	opts := c.Store.Options
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(utils.GetLogger(), logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  gormLogLevel(opts.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	if err := db.AutoMigrate(&collectionRecord{}, &itemRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	utils.GetLogger().Infof("Successfully connected to %s", c.Store.Driver)
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func NewGormItemStorage(db *gorm.DB) *GormItemStorage {
	return &GormItemStorage{db: db}
}

var _ ItemStorageIface = (*GormItemStorage)(nil)

func (s *GormItemStorage) ListItems(ctx context.Context, name string) ([]resource.Item, error) {
	db := s.db.WithContext(ctx)

	var collection collectionRecord
	if err := db.First(&collection, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resource.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get collection from db: %w", err)
	}

	var records []itemRecord
	if err := db.Where("resource = ?", name).Order("position ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list items from db: %w", err)
	}

	items := make([]resource.Item, 0, len(records))
	for i := range records {
		item, err := records[i].decode()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *GormItemStorage) GetItem(ctx context.Context, name, id string) (resource.Item, error) {
	var record itemRecord
	if err := s.db.WithContext(ctx).First(&record, "resource = ? AND item_id = ?", name, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resource.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item from db: %w", err)
	}
	return record.decode()
}

func (s *GormItemStorage) InsertItem(ctx context.Context, name string, item resource.Item) error {
	id, ok := item.ID()
	if !ok {
		return resource.ErrInvalidItem
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&collectionRecord{Name: name}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// 先自增再读取，行锁保证并发插入拿到不同位置
	if err := tx.Model(&collectionRecord{}).Where("name = ?", name).
		Update("next_position", gorm.Expr("next_position + 1")).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to allocate position: %w", err)
	}
	var collection collectionRecord
	if err := tx.First(&collection, "name = ?", name).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to read collection: %w", err)
	}

	record := &itemRecord{
		Resource: name,
		ItemID:   id,
		Position: collection.NextPosition,
		Data:     string(data),
	}
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return resource.ErrAlreadyExists
		}
		return fmt.Errorf("failed to save item to db: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *GormItemStorage) ReplaceItem(ctx context.Context, name, id string, item resource.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	// 存在性在事务内判断：内容未变化时部分驱动的 RowsAffected 为 0
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var count int64
	if err := tx.Model(&itemRecord{}).Where("resource = ? AND item_id = ?", name, id).Count(&count).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to get item from db: %w", err)
	}
	if count == 0 {
		tx.Rollback()
		return resource.ErrNotFound
	}

	if err := tx.Model(&itemRecord{}).
		Where("resource = ? AND item_id = ?", name, id).
		Update("data", string(data)).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update item in db: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *GormItemStorage) DeleteItem(ctx context.Context, name, id string) (resource.Item, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var record itemRecord
	if err := tx.First(&record, "resource = ? AND item_id = ?", name, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resource.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item from db: %w", err)
	}

	if err := tx.Delete(&itemRecord{}, "resource = ? AND item_id = ?", name, id).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to delete item from db: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return record.decode()
}

func (s *GormItemStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *itemRecord) decode() (resource.Item, error) {
	var item resource.Item
	if err := json.Unmarshal([]byte(r.Data), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s/%s: %w", r.Resource, r.ItemID, err)
	}
	return item, nil
}
