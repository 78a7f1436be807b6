package repo

import (
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/internal/infra/storage"

	"github.com/google/wire"
)

var Reposet = wire.NewSet(
	NewRepoConfig,
	storage.StorageSet,
	NewItemRepoImpl,
)

func NewRepoConfig(c *configs.Config) *configs.RepoConfig {
	return &c.Repo
}
