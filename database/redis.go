package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client
var Ctx = context.Background()

// InitRedis inicializa a conexão com o Redis
func InitRedis() error {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")
	dbStr := getEnv("REDIS_DB", "0")

	db, err := strconv.Atoi(dbStr)
	if err != nil {
		db = 0
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	})

	if err := Redis.Ping(Ctx).Err(); err != nil {
		return fmt.Errorf("não foi possível conectar ao Redis: %w", err)
	}

	log.Println("✅ Conectado ao Redis com sucesso")
	return nil
}

// GetRedis devolve a instância do cliente Redis
func GetRedis() *redis.Client {
	return Redis
}

// CacheSet salva um valor no cache com TTL
func CacheSet(key string, value interface{}, ttl time.Duration) error {
	return Redis.Set(Ctx, key, value, ttl).Err()
}

// CacheGet obtém um valor do cache
func CacheGet(key string) (string, error) {
	return Redis.Get(Ctx, key).Result()
}

// CacheDel remove um valor do cache
func CacheDel(key string) error {
	return Redis.Del(Ctx, key).Err()
}

// CacheSetJSON salva um objeto JSON no cache
func CacheSetJSON(key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao serializar JSON: %w", err)
	}
	return CacheSet(key, string(jsonData), ttl)
}

// CacheGetJSON obtém um objeto JSON do cache
func CacheGetJSON(key string, dest interface{}) error {
	jsonData, err := CacheGet(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return fmt.Errorf("erro ao desserializar JSON: %w", err)
	}

	return nil
}

// GenerateCacheKey gera uma chave de cache escopada por organização
func GenerateCacheKey(organizationID uint, prefix string, suffix string) string {
	return fmt.Sprintf("org:%d:%s:%s", organizationID, prefix, suffix)
}

// ClearOrganizationCache limpa todo o cache de uma organização
func ClearOrganizationCache(organizationID uint) error {
	pattern := fmt.Sprintf("org:%d:*", organizationID)
	keys, err := Redis.Keys(Ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return Redis.Del(Ctx, keys...).Err()
	}

	return nil
}
