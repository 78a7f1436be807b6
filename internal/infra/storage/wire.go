package storage

import (
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/utils"

	"github.com/google/wire"
)

// StorageSet is a Wire provider set that includes all storage-related providers
var StorageSet = wire.NewSet(
	NewItemStorage,
	NewItemCache,
)

// NewItemStorage 按 store.driver 选择存储后端
func NewItemStorage(c *configs.Config) (ItemStorageIface, func(), error) {
	var (
		st  ItemStorageIface
		err error
	)
	switch c.Store.Driver {
	case configs.StoreDriverMySQL, configs.StoreDriverSQLite:
		db, dbErr := NewGormClient(c)
		if dbErr != nil {
			return nil, nil, dbErr
		}
		st = NewGormItemStorage(db)
	default:
		st, err = NewFileItemStorage(c.Store.File)
		if err != nil {
			return nil, nil, err
		}
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			utils.GetLogger().Warnf("failed to close item storage: %v", err)
		}
	}
	return st, cleanup, nil
}

// NewItemCache redis 未启用时返回空缓存
func NewItemCache(c *configs.Config) (ItemCacheIface, func(), error) {
	if !c.Redis.Enabled {
		return NewNoopItemCache(), func() {}, nil
	}

	client, err := NewRedisClient(c)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			utils.GetLogger().Warnf("failed to close redis client: %v", err)
		}
	}
	return NewRedisItemCache(client, c), cleanup, nil
}
