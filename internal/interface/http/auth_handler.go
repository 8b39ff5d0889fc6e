package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/application"
	"github.com/psims/scholar-portal/pkg/helpers"
	"github.com/psims/scholar-portal/pkg/response"
	"github.com/psims/scholar-portal/pkg/validation"
)

// resetAck is shown for every forgot-password request so the response cannot
// be used to enumerate accounts.
const resetAck = "If an account with that email exists, a password reset link has been sent."

// AuthHandler covers account initialization, login/logout/refresh and the
// password-reset flow.
type AuthHandler struct {
	Svc     *application.ScholarService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.ScholarService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type initializeRequest struct {
	InitializationCode string `json:"initialization_code" binding:"required"`
	Username           string `json:"username" binding:"required"`
	Password           string `json:"password" binding:"required,pwd"`
	ConfirmPassword    string `json:"confirm_password" binding:"required"`
}

// Initialize POST /api/initialize
func (h *AuthHandler) Initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	sc, err := h.Svc.Initialize(c.Request.Context(), req.InitializationCode, req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrPasswordMismatch):
			response.Error[any](c, http.StatusBadRequest, "Passwords do not match", nil)
		case errors.Is(err, application.ErrInvalidCode):
			response.Error[any](c, http.StatusBadRequest, "Invalid Initialization Code", nil)
		case errors.Is(err, application.ErrAlreadyInitialized):
			response.Error[any](c, http.StatusConflict, "Account already initialized. Please log in.", nil)
		case errors.Is(err, application.ErrMissingField):
			response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		default:
			h.Logger.WithError(err).Error("initialization failed")
			response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		}
		return
	}

	pair, err := h.Svc.IssueTokens(c.Request.Context(), sc)
	if err != nil {
		h.Logger.WithError(err).Error("session establishment failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, gin.H{"scholar_id": sc.ID, "username": sc.Username}, "account initialized", nil)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	sc, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountNotFound):
			response.Error[any](c, http.StatusUnauthorized, "Account not found or not initialized", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, "Invalid password", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		}
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"scholar_id": sc.ID, "name": sc.FullName()}, "login successful", nil)
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", nil)
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("scholarID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /api/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("password reset request failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	// Same acknowledgement whether or not the email matched.
	response.Success[any](c, http.StatusOK, nil, resetAck, nil)
}

// ResolveReset GET /api/reset-password/:token
func (h *AuthHandler) ResolveReset(c *gin.Context) {
	_, err := h.Svc.ResolveReset(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, application.ErrInvalidResetToken) {
			response.Error[any](c, http.StatusBadRequest, "Password reset token is invalid or has expired.", nil)
			return
		}
		h.Logger.WithError(err).Error("reset token lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"valid": true}, "reset token valid", nil)
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// CompleteReset POST /api/reset-password/:token
func (h *AuthHandler) CompleteReset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.CompleteReset(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrPasswordMismatch):
			response.Error[any](c, http.StatusBadRequest, "Passwords do not match.", nil)
		case errors.Is(err, application.ErrPasswordTooShort):
			response.Error[any](c, http.StatusBadRequest, "Password must be at least 8 characters long.", nil)
		case errors.Is(err, application.ErrMissingField):
			response.Error[any](c, http.StatusBadRequest, "Please enter and confirm your new password.", nil)
		case errors.Is(err, application.ErrInvalidResetToken):
			response.Error[any](c, http.StatusBadRequest, "Password reset token is invalid or has expired.", nil)
		default:
			h.Logger.WithError(err).Error("password reset failed")
			response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "Your password has been successfully reset. Please log in.", nil)
}
