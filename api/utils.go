package api

import (
	"github.com/gin-gonic/gin"
)

// GetOrganizationID extrai o ID da organização do contexto Gin
func GetOrganizationID(c *gin.Context) uint {
	if orgID, exists := c.Get("organization_id"); exists {
		if id, ok := orgID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetUserID extrai o ID do usuário autenticado do contexto Gin
func GetUserID(c *gin.Context) *uint {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			return &id
		}
	}
	return nil
}

// RequireConfirmation verifica a flag confirm=true exigida nas operações
// destrutivas. Sem confirmação a operação é um no-op verdadeiro.
func RequireConfirmation(c *gin.Context) bool {
	return c.Query("confirm") == "true"
}
