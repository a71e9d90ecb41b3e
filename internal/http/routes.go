package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codetutor/internal/domain"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Auth endpoints (no token required; they produce tokens)
	auth := s.engine.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/refresh", s.refresh)
		auth.POST("/logout", s.logout)
		auth.GET("/status", s.status)
		auth.GET("/github", s.githubLogin)
		auth.GET("/github/callback", s.githubCallback)
	}

	// Health check endpoint (no auth required)
	s.engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "codetutor",
		})
	})

	// API routes - all protected by authentication
	api := s.engine.Group("/api")
	api.Use(s.requireAuth())
	{
		api.GET("/me", s.getMe)
		api.PUT("/me", s.updateMe)

		// Admin routes - role gate on top of auth
		admin := api.Group("/admin")
		admin.Use(s.requireRole(domain.RoleAdmin))
		{
			admin.GET("/users", s.listUsers)
			admin.PUT("/users/:id/role", s.updateUserRole)
			admin.PUT("/users/:id/active", s.setUserActive)
			admin.GET("/system", s.getSystemStats)
		}
	}
}
