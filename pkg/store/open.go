package store

import (
	"context"
	"fmt"
	"log"

	"github.com/backsoul/quizconsole/pkg/config"
	"github.com/backsoul/quizconsole/pkg/redis"
)

// Open builds the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverCSV, "":
		log.Printf("📂 Using CSV files in %s", cfg.DataDir)
		s, err := NewCSVStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		log.Println("🧠 Using in-memory tables; nothing will be persisted")
		return NewMemoryStore(), nil
	case config.DriverSQLite, config.DriverPostgres:
		log.Printf("🗄️  Using %s", cfg.StoreDriver)
		s, err := OpenSQL(ctx, cfg.StoreDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		log.Printf("🔌 Connecting to Redis at %s...", cfg.RedisAddr)
		c, err := redis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.DriverMongo:
		log.Printf("🔌 Connecting to MongoDB at %s...", cfg.MongoURI)
		m, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.StoreDriver)
	}
}
