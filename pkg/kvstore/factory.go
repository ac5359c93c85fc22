package kvstore

import (
	"fmt"

	"github.com/dexwatch/swap-tracker/pkg/common/config"
	"github.com/dexwatch/swap-tracker/pkg/common/enum"
	"github.com/dexwatch/swap-tracker/pkg/infra"
)

// NewFromConfig constructs an infra.KVStore based on kvstore configuration.
func NewFromConfig(cfg config.KVStoreCfg) (infra.KVStore, error) {
	switch cfg.Type {
	case enum.KVStoreTypeBadger:
		return NewBadgerStore(cfg.Badger.Directory, cfg.Badger.Prefix, infra.JSON)
	case enum.KVStoreTypeRedis:
		return NewRedisStore(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			Codec:    infra.JSON,
		})
	default:
		return nil, fmt.Errorf("unsupported kvstore type: %s", cfg.Type)
	}
}
