package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finwise/finwise-backend/internal/http/response"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
	"github.com/finwise/finwise-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, "registration_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "refresh_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondServiceError(c, "logout_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) SendVerification(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := ah.authService.SendVerificationEmail(c.Request.Context(), rd.UserID); err != nil {
		response.RespondServiceError(c, "verification_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) ConfirmVerification(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := ah.authService.ConfirmVerification(c.Request.Context(), rd.UserID); err != nil {
		response.RespondServiceError(c, "verification_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) SendPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ah.authService.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.RespondServiceError(c, "password_reset_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
