package middleware

import (
	"errors"
	"net/http"
	"strings"

	"todoapi/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated identity.
const (
	UserIDKey   = "userID"
	EmailKey    = "userEmail"
	UsernameKey = "username"
)

// CookieName carries the session token as an alternative to the
// Authorization header.
const CookieName = "auth_token"

var (
	errMissingToken    = errors.New("no token in request")
	errMalformedHeader = errors.New("malformed authorization header")
)

// RequireAuth rejects requests without a valid session token. The token is
// looked up in the auth cookie first, then in the Authorization header.
func RequireAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			if errors.Is(err, errMalformedHeader) {
				// Distinct from "absent": the caller sent a broken header.
				c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header format must be Bearer {token}"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			}
			c.Abort()
			return
		}

		claims, err := issuer.Validate(token)
		if err != nil {
			// Expired and invalid answer alike; no validity-window leaking.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if !attachIdentity(c, claims) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// continues anonymously otherwise.
func OptionalAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err == nil {
			if claims, err := issuer.Validate(token); err == nil {
				attachIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errMalformedHeader
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

func attachIdentity(c *gin.Context, claims *auth.Claims) bool {
	userID, err := claims.UserID()
	if err != nil {
		return false
	}
	c.Set(UserIDKey, userID)
	c.Set(EmailKey, claims.Email)
	c.Set(UsernameKey, claims.Username)
	return true
}
