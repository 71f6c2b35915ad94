package api

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Techtees/civicpro/internal/errors"
	"github.com/Techtees/civicpro/internal/models"
	"github.com/Techtees/civicpro/internal/storage"
)

const userContextKey = "current_user"

// Auth issues and verifies admin session tokens. Sessions are stateless
// JWTs; logout is a client-side token discard.
type Auth struct {
	store  storage.Store
	secret []byte
	ttl    time.Duration
}

// NewAuth creates an Auth helper over the given store.
func NewAuth(store storage.Store, secret string, ttl time.Duration) *Auth {
	return &Auth{store: store, secret: []byte(secret), ttl: ttl}
}

type sessionClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Authenticate checks a username/password pair against the store.
func (a *Auth) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errors.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

// IssueToken signs a session token for the user.
func (a *Auth) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Auth) parseToken(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorizedError("Unexpected token signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.NewUnauthorizedError("Invalid or expired session token")
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return nil, errors.NewUnauthorizedError("Invalid session token")
	}
	return claims, nil
}

// RequireAuth aborts the request unless a valid bearer token resolves to an
// existing user. The user is stashed on the context for handlers.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			appErr := errors.NewUnauthorizedError("Not authenticated")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		claims, err := a.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			appErr := errors.ToAppError(err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		user, err := a.store.UserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			appErr := errors.NewUnauthorizedError("Session user no longer exists")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin aborts the request unless the authenticated user is an
// administrator. Must run after RequireAuth.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin {
			appErr := errors.NewForbiddenError("Admin access required")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
