package middleware

import (
	"net/http"
	"strings"
	"time"

	"backend_pitstop/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims representa as claims do token JWT emitido no login
type Claims struct {
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken emite um token JWT para o usuário autenticado
func GenerateToken(user *models.User, secret string, expiresIn time.Duration, issuer string) (string, error) {
	claims := Claims{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Username:       user.Username,
		Role:           user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthMiddleware verifica a autenticação do usuário
type AuthMiddleware struct {
	Secret string
}

// NewAuthMiddleware cria uma nova instância de AuthMiddleware
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{Secret: secret}
}

// RequireAuth middleware que exige um token JWT válido
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Obtém o token do cabeçalho
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.GetHeader("authorization")
		}

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Cabeçalho Authorization é obrigatório",
			})
			c.Abort()
			return
		}

		// Extrai o token do cabeçalho
		var tokenString string
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if strings.HasPrefix(authHeader, "Token ") {
			tokenString = strings.TrimPrefix(authHeader, "Token ")
		} else {
			tokenString = authHeader
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Token não informado",
			})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(am.Secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Token inválido ou expirado",
			})
			c.Abort()
			return
		}

		// Disponibiliza os dados do usuário para os handlers
		c.Set("user_id", claims.UserID)
		c.Set("organization_id", claims.OrganizationID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}
