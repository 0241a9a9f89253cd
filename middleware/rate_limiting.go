package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend_pitstop/database"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
)

// RateLimitConfig configuração do rate limiting
type RateLimitConfig struct {
	Requests     int                       // Quantidade de requisições
	Window       time.Duration             // Janela de tempo
	KeyGenerator func(*gin.Context) string // Gerador de chaves
}

// DefaultKeyGenerator gera a chave com base no endereço IP
func DefaultKeyGenerator(c *gin.Context) string {
	return c.ClientIP()
}

// UserKeyGenerator gera a chave com base no usuário autenticado
func UserKeyGenerator(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			return fmt.Sprintf("user:%d", id)
		}
	}
	return c.ClientIP()
}

// RateLimit cria o middleware de limitação de frequência de requisições
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := database.GetRedis()
		if redisClient == nil {
			// Sem Redis disponível, o rate limiting é ignorado
			c.Next()
			return
		}

		key := "rate_limit:" + config.KeyGenerator(c)

		current, err := redisClient.Get(database.Ctx, key).Int()
		if err != nil && err != redis.Nil {
			// Em caso de erro do Redis a requisição passa
			c.Next()
			return
		}

		if current >= config.Requests {
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Limite de requisições excedido",
				"message": fmt.Sprintf("Muitas requisições. Limite: %d requisições por %v",
					config.Requests, config.Window),
				"retry_after": config.Window.Seconds(),
			})
			c.Abort()
			return
		}

		// Incrementa o contador e renova o TTL da janela
		pipe := redisClient.Pipeline()
		incr := pipe.Incr(database.Ctx, key)
		pipe.Expire(database.Ctx, key, config.Window)
		if _, err := pipe.Exec(database.Ctx); err == nil {
			remaining := config.Requests - int(incr.Val())
			if remaining < 0 {
				remaining = 0
			}
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}
