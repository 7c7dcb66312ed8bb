package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/config"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/utils"
)

// CasdoorAuthMiddleware provides authentication using Casdoor SDK.
// Identity comes from the token; authorization is decided by the admin
// gate, never by anything inside the token.
type CasdoorAuthMiddleware struct {
	client   *casdoorsdk.Client
	userRepo repositories.UserRepository
	gate     *auth.Gate
	logger   utils.Logger
	config   config.CasdoorConfig
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository, gate *auth.Gate, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:   client,
		userRepo: userRepo,
		gate:     gate,
		logger:   logger,
		config:   cfg,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authorization header missing",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("failed to resolve user: %v", err),
			})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_email", user.Email)
		c.Set("admin_role", cam.gate.RoleOf(user.ID))

		c.Next()
	}
}

// RequireAdmin rejects anyone not on the primary or secondary allow-list.
func (cam *CasdoorAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserIDFromContext(c)
		if err != nil || !cam.gate.IsAuthorized(userID) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireDelete rejects secondary admins; destructive routes are
// restricted to the primary allow-list.
func (cam *CasdoorAuthMiddleware) RequireDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserIDFromContext(c)
		if err != nil || !cam.gate.Can(userID, auth.ActionDelete) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "delete is restricted to primary admins",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// resolveUser maps verified claims to the local user mirror, creating or
// refreshing the row on the way through.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	userID := claims.Id
	if userID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	user := &models.User{
		ID:          userID,
		Email:       claims.User.Email,
		DisplayName: claims.User.DisplayName,
	}

	if err := cam.userRepo.Upsert(ctx, nil, user); err != nil {
		// The mirror is best-effort; a write failure must not block login.
		cam.logger.Warn("Failed to mirror user", "user_id", userID, "error", err)
	}

	return user, nil
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetAdminRoleFromContext extracts the gate role from Gin context
func GetAdminRoleFromContext(c *gin.Context) (auth.Role, error) {
	role, exists := c.Get("admin_role")
	if !exists {
		return "", fmt.Errorf("admin role not found in context")
	}

	r, ok := role.(auth.Role)
	if !ok {
		return "", fmt.Errorf("invalid admin role type in context")
	}

	return r, nil
}
