package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
	"github.com/awsomeshop/rewards-be/services"
)

type AuthController struct {
	authService  *services.AuthService
	auditService *services.AuditService
}

func NewAuthController() *AuthController {
	return &AuthController{
		authService:  services.NewAuthService(),
		auditService: services.NewAuditService(),
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	Username     string `json:"username" binding:"required"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid login request", err.Error())
		return
	}

	user, tokens, err := ac.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var locked *services.LockedError
		if errors.As(err, &locked) {
			respondError(c, http.StatusLocked, "ACCOUNT_LOCKED", err.Error(),
				gin.H{"remaining_seconds": locked.RemainingSeconds})
			return
		}
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"id_token":      tokens.IDToken,
		"token_type":    "bearer",
		"user":          user,
	})
}

func (ac *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid refresh request", err.Error())
		return
	}

	tokens, err := ac.authService.Refresh(req.RefreshToken, req.Username)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": tokens.AccessToken,
		"id_token":     tokens.IDToken,
		"token_type":   "bearer",
	})
}

// Me returns the current user's profile, re-read from the database so the
// client's cached profile can be revalidated after restart.
func (ac *AuthController) Me(c *gin.Context) {
	userID := c.GetUint("user_id")

	var user models.User
	if err := config.DB.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "User no longer exists or is inactive", nil)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) Logout(c *gin.Context) {
	userID := c.GetUint("user_id")
	ac.auditService.Record(userID, "logout", "user", userID, "")

	// Tokens are stateless; logout is an audited no-op server-side and the
	// client clears its own storage.
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
