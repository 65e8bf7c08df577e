package auth

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

// setupMutex serializes setup requests so two callers cannot both create the
// first admin.
var setupMutex sync.Mutex

// LoginAuditor records authentication attempts.
type LoginAuditor interface {
	LogAuth(userID uint, action string, ipAddr string, success bool)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type createUserRequest struct {
	Username string            `json:"username"`
	Password string            `json:"password"`
	Role     entities.UserRole `json:"role"`
}

// AuthController serves the staff login, logout, setup and account endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	rateLimiter    *RateLimiter
	auditor        LoginAuditor
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		rateLimiter:    rateLimiter,
	}
}

// SetAuditor enables login auditing.
func (ac *AuthController) SetAuditor(auditor LoginAuditor) {
	ac.auditor = auditor
}

// RegisterRoutes registers the authentication routes. User management is
// limited to admins.
func (ac *AuthController) RegisterRoutes(router gin.IRouter, mw *Middleware) {
	group := router.Group("/api/auth")
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.POST("/setup", ac.Setup)
	group.GET("/csrf", ac.CSRFToken)
	group.GET("/me", mw.RequireAuth(), ac.Me)
	group.POST("/token", mw.RequireAuth(), ac.GenerateToken)
	group.DELETE("/token", mw.RequireAuth(), ac.RevokeToken)
	group.POST("/password", mw.RequireAuth(), ac.ChangePassword)
	group.POST("/users", mw.RequireRole(entities.UserRoleAdmin), ac.CreateUser)
}

// Stop cleans up the rate limiter goroutine.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

func authError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// Login checks the credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	clientIP := c.ClientIP()

	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			authError(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(clientIP, req.Username)
		}
		ac.logAuth(0, "login", clientIP, false)

		message := "Invalid username or password."
		if errors.Is(err, ErrAccountLocked) {
			message = "Account is locked. Please try again later."
		}
		authError(c, http.StatusUnauthorized, message)
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Username)
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			authError(c, http.StatusInternalServerError, "Failed to create session.")
			return
		}
	}
	ac.logAuth(user.ID, "login", clientIP, true)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out."})
}

// Setup creates the first admin account. It is only available while no
// staff account exists.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		authError(c, http.StatusInternalServerError, "Database error. Please try again.")
		return
	}
	if hasUsers {
		authError(c, http.StatusConflict, "Setup has already been completed.")
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := ac.service.CreateUser(req.Username, req.Password, entities.UserRoleAdmin)
	if err != nil {
		ac.respondCreateError(c, err)
		return
	}

	if ac.sessionManager != nil {
		_ = ac.sessionManager.CreateSession(c.Request, user)
	}
	ac.logAuth(user.ID, "setup", c.ClientIP(), true)

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// CreateUser adds a librarian or admin account.
func (ac *AuthController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Role == "" {
		req.Role = entities.UserRoleLibrarian
	}

	user, err := ac.service.CreateUser(req.Username, req.Password, req.Role)
	if err != nil {
		ac.respondCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (ac *AuthController) respondCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		authError(c, http.StatusBadRequest, "Password must be at least 12 characters.")
	case errors.Is(err, ErrPasswordTooLong):
		authError(c, http.StatusBadRequest, "Password exceeds maximum length of 72 characters.")
	case errors.Is(err, ErrUsernameRequired):
		authError(c, http.StatusBadRequest, "Username is required.")
	case errors.Is(err, ErrPasswordRequired):
		authError(c, http.StatusBadRequest, "Password is required.")
	case errors.Is(err, ErrUsernameInvalid):
		authError(c, http.StatusBadRequest, "Username must be 3-64 characters, alphanumeric with underscore/hyphen only.")
	case errors.Is(err, ErrInvalidRole):
		authError(c, http.StatusBadRequest, "Role must be admin or librarian.")
	case errors.Is(err, ErrUserExists):
		authError(c, http.StatusConflict, "A user with this username already exists.")
	default:
		authError(c, http.StatusInternalServerError, "Failed to create user.")
	}
}

// CSRFToken returns the token staff clients send back in the X-CSRF-Token
// header on session authenticated writes.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
}

// Me returns the authenticated account.
func (ac *AuthController) Me(c *gin.Context) {
	staff, _ := CurrentStaff(c)
	c.JSON(http.StatusOK, staff)
}

// GenerateToken creates a new API token for the authenticated account.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	staff, _ := CurrentStaff(c)
	token, err := ac.service.GenerateToken(staff.ID)
	if err != nil {
		authError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"message": "Store this token securely. It will not be shown again.",
	})
}

// RevokeToken revokes the API token of the authenticated account.
func (ac *AuthController) RevokeToken(c *gin.Context) {
	staff, _ := CurrentStaff(c)
	if err := ac.service.RevokeToken(staff.ID); err != nil {
		authError(c, http.StatusInternalServerError, "Failed to revoke token.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token revoked."})
}

// ChangePassword replaces the caller's password after checking the current one.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	staff, _ := CurrentStaff(c)
	err := ac.service.ChangePassword(staff.ID, req.CurrentPassword, req.NewPassword)
	ac.logAuth(staff.ID, "password_change", c.ClientIP(), err == nil)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed."})
	case errors.Is(err, ErrInvalidPassword):
		authError(c, http.StatusForbidden, "Current password is incorrect.")
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		ac.respondCreateError(c, err)
	default:
		authError(c, http.StatusInternalServerError, "Failed to change password.")
	}
}

func (ac *AuthController) logAuth(userID uint, action, ip string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, ip, success)
}
