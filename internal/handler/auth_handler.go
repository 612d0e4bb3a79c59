package handler

import (
	"net/http"
	"strings"
	"time"

	"todoapi/internal/apperror"
	"todoapi/internal/auth"
	"todoapi/internal/middleware"
	"todoapi/internal/model"
	"todoapi/internal/repository"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users        repository.UserRepositoryInterface
	issuer       *auth.TokenIssuer
	cookieMaxAge int
	secureCookie bool
}

func NewAuthHandler(users repository.UserRepositoryInterface, issuer *auth.TokenIssuer, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		issuer:       issuer,
		cookieMaxAge: int(tokenTTL.Seconds()),
		secureCookie: secureCookie,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid registration payload"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(c, apperror.Validation("username cannot be empty"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, apperror.Internal("failed to hash password", err))
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Email, user.Username, time.Now())
	if err != nil {
		respondError(c, apperror.Internal("failed to create token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid login payload"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, apperror.Unauthorized("Invalid email or password"))
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		respondError(c, apperror.Internal("stored credential is malformed", err))
		return
	}
	if !ok {
		respondError(c, apperror.Unauthorized("Invalid email or password"))
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Email, user.Username, time.Now())
	if err != nil {
		respondError(c, apperror.Internal("failed to create token", err))
		return
	}

	h.setAuthCookie(c, token, h.cookieMaxAge)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"token": token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me echoes the identity carried by the validated token. Claims are trusted
// verbatim; no database round trip.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       c.GetUint(middleware.UserIDKey),
			"email":    c.GetString(middleware.EmailKey),
			"username": c.GetString(middleware.UsernameKey),
		},
	})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, maxAge, "/", "", h.secureCookie, true)
}
