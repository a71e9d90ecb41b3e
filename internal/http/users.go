package http

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/system"
	"github.com/codetutor/internal/validation"
)

var errUnknownRole = errors.New("role must be one of student, mentor, admin")

// UpdateProfileRequest represents a profile update; empty fields keep their
// current value
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

// SetActiveRequest soft-enables or soft-disables an account
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// getMe returns the authenticated user's fresh record
func (s *Server) getMe(c *gin.Context) {
	authUser, _ := getAuthUser(c)

	user, err := s.database.GetUserByID(authUser.ID)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user.Public()})
}

// updateMe changes the caller's username and/or email
func (s *Server) updateMe(c *gin.Context) {
	authUser, _ := getAuthUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	user, err := s.database.GetUserByID(authUser.ID)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	username := user.Username
	if req.Username != "" {
		if err := validation.ValidateUsername(req.Username); err != nil {
			s.respondDomainError(c, domain.WrapValidationError("username", err))
			return
		}
		username = req.Username
	}

	email := user.Email
	if req.Email != "" {
		normalized := validation.NormalizeEmail(req.Email)
		if err := validation.ValidateEmail(normalized); err != nil {
			s.respondDomainError(c, domain.WrapValidationError("email", err))
			return
		}
		email = normalized
	}

	if err := s.database.UpdateProfile(user.ID, username, email); err != nil {
		s.respondDomainError(c, err)
		return
	}

	user.Username = username
	user.Email = email
	respondOK(c, http.StatusOK, gin.H{"user": user.Public()})
}

// listUsers returns all accounts (admin only)
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.database.ListUsers()
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	public := make([]any, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	respondOK(c, http.StatusOK, gin.H{"users": public})
}

// updateUserRole changes a user's role (admin only). The new role takes
// effect on the target's next token issuance, not on tokens already issued.
func (s *Server) updateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}
	if !domain.ValidRole(req.Role) {
		s.respondDomainError(c, domain.WrapValidationError("role", errUnknownRole))
		return
	}

	userID := c.Param("id")
	authUser, _ := getAuthUser(c)
	if userID == authUser.ID && req.Role != domain.RoleAdmin {
		// an admin demoting themselves locks everyone out of user management
		respondError(c, http.StatusBadRequest, "cannot demote your own account")
		return
	}

	if err := s.database.UpdateRole(userID, req.Role); err != nil {
		s.respondDomainError(c, err)
		return
	}

	user, err := s.database.GetUserByID(userID)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user.Public()})
}

// setUserActive soft-disables or re-enables an account (admin only)
func (s *Server) setUserActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	userID := c.Param("id")
	authUser, _ := getAuthUser(c)
	if userID == authUser.ID && !*req.Active {
		respondError(c, http.StatusBadRequest, "cannot disable your own account")
		return
	}

	if err := s.database.SetActive(userID, *req.Active); err != nil {
		s.respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"active": *req.Active})
}

// getSystemStats returns a host snapshot (admin only)
func (s *Server) getSystemStats(c *gin.Context) {
	respondOK(c, http.StatusOK, system.Collect(filepath.Dir(s.config.DatabasePath)))
}
