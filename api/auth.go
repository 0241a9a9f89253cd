package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"backend_pitstop/config"
	"backend_pitstop/middleware"
	"backend_pitstop/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginRequest credenciais de acesso
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=3,max=64"`
}

// AuthAPI representa a API de autenticação
type AuthAPI struct {
	DB *gorm.DB
}

// NewAuthAPI cria uma nova instância de AuthAPI
func NewAuthAPI(db *gorm.DB) *AuthAPI {
	return &AuthAPI{DB: db}
}

// Log estruturado das operações de autenticação
func logAuthOperation(operation, username string, details map[string]interface{}) {
	logData := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"operation": operation,
		"username":  username,
	}

	for key, value := range details {
		logData[key] = value
	}

	logJSON, _ := json.Marshal(logData)
	log.Printf("AUTH_LOG: %s", string(logJSON))
}

// Login autentica o usuário e emite um token JWT
func (api *AuthAPI) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logAuthOperation("login_validation_error", req.Username, map[string]interface{}{
			"error":      err.Error(),
			"status":     "failed",
			"ip_address": c.ClientIP(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Usuário ou senha inválidos"})
		return
	}

	logAuthOperation("login_attempt", req.Username, map[string]interface{}{
		"ip_address": c.ClientIP(),
		"user_agent": c.GetHeader("User-Agent"),
	})

	var user models.User
	if err := api.DB.Where("username = ? AND is_active = ?", req.Username, true).First(&user).Error; err != nil {
		logAuthOperation("login_user_not_found", req.Username, map[string]interface{}{
			"status":     "failed",
			"ip_address": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Usuário ou senha inválidos"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logAuthOperation("login_invalid_password", req.Username, map[string]interface{}{
			"status":     "failed",
			"ip_address": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Usuário ou senha inválidos"})
		return
	}

	cfg := config.GetConfig()
	token, err := middleware.GenerateToken(&user, cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.Issuer)
	if err != nil {
		logAuthOperation("login_token_error", req.Username, map[string]interface{}{
			"error":  err.Error(),
			"status": "failed",
		})
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Erro ao gerar token"})
		return
	}

	logAuthOperation("login_success", req.Username, map[string]interface{}{
		"user_id":         user.ID,
		"organization_id": user.OrganizationID,
		"status":          "success",
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

// Me devolve os dados do usuário autenticado
func (api *AuthAPI) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Não autenticado"})
		return
	}

	var user models.User
	if err := api.DB.Preload("Organization").First(&user, *userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Usuário não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
}
