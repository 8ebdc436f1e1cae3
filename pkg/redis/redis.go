package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const (
	tablesKey   = "quiz:tables"
	tablePrefix = "quiz:table:"
)

// RedisClient guarda cada tabla del quiz como una lista de filas en JSON
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient crea el cliente y verifica la conexión con un ping
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", addr, err)
	}

	log.Println("✅ Conexión exitosa a Redis")
	return &RedisClient{client: rdb}, nil
}

func tableKey(name string) string { return tablePrefix + name }

// Load obtiene las filas de una tabla, o una colección vacía si nunca se guardó
func (r *RedisClient) Load(ctx context.Context, name string) ([][]string, error) {
	known, err := r.client.SIsMember(ctx, tablesKey, name).Result()
	if err != nil {
		return nil, fmt.Errorf("error checking table %s: %w", name, err)
	}
	if !known {
		log.Printf("Error: table %s not found.", name)
		return [][]string{}, nil
	}

	items, err := r.client.LRange(ctx, tableKey(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("error loading table %s: %w", name, err)
	}

	rows := make([][]string, 0, len(items))
	for i, item := range items {
		var row []string
		if err := json.Unmarshal([]byte(item), &row); err != nil {
			return nil, fmt.Errorf("error parsing row %d of %s: %w", i, name, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save reemplaza una tabla completa dentro de un bloque MULTI/EXEC
func (r *RedisClient) Save(ctx context.Context, name string, rows [][]string) error {
	items := make([]interface{}, len(rows))
	for i, row := range rows {
		buf, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("error serializing row %d of %s: %w", i, name, err)
		}
		items[i] = buf
	}

	key := tableKey(name)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(items) > 0 {
			pipe.RPush(ctx, key, items...)
		}
		pipe.SAdd(ctx, tablesKey, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving table %s: %w", name, err)
	}
	return nil
}

// Tables lista todas las tablas guardadas
func (r *RedisClient) Tables(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, tablesKey).Result()
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis responda
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if _, err := r.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
