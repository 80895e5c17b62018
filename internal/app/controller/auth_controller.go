package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
	"github.com/lumiskin/skincare-backend/pkg/util"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type RegisterRequest struct {
	Email    string `json:"Email" binding:"required,email"`
	Password string `json:"Password" binding:"required"`
	Name     string `json:"Name" binding:"required"`
	Phone    string `json:"Phone"`
}

type LoginRequest struct {
	Email    string `json:"Email" binding:"required,email"`
	Password string `json:"Password" binding:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"IdToken" binding:"required"`
}

type FacebookLoginRequest struct {
	AccessToken string `json:"AccessToken" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"RefreshToken" binding:"required"`
}

type UpdateProfileRequest struct {
	Name      string `json:"Name"`
	Phone     string `json:"Phone"`
	Address   string `json:"Address"`
	AvatarURL string `json:"AvatarUrl"` // from the upload endpoint
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"CurrentPassword"`
	NewPassword     string `json:"NewPassword" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"Email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"Token" binding:"required"`
	NewPassword string `json:"NewPassword" binding:"required"`
}

// AuthResponse is returned by every login flavour
type AuthResponse struct {
	User   *model.User     `json:"User"`
	Tokens *util.TokenPair `json:"Tokens"`
}

// Register handles customer registration
// POST /api/Auth/Register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		respondError(c, err, "register user", map[string]interface{}{
			"email": req.Email,
		})
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusCreated, AuthResponse{User: user, Tokens: tokens})
}

// Login handles email and password login
// POST /api/Auth/Login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login", map[string]interface{}{
			"email": req.Email,
		})
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, AuthResponse{User: user, Tokens: tokens})
}

// GoogleLogin exchanges a Google ID token for a session
// POST /api/Auth/google-login
func (ctrl *AuthController) GoogleLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, tokens, err := ctrl.authService.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err, "login with Google", nil)
		return
	}

	log.Info("Google login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, AuthResponse{User: user, Tokens: tokens})
}

// FacebookLogin exchanges a Facebook access token for a session
// POST /api/Auth/facebook-login
func (ctrl *AuthController) FacebookLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req FacebookLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, tokens, err := ctrl.authService.FacebookLogin(c.Request.Context(), req.AccessToken)
	if err != nil {
		respondError(c, err, "login with Facebook", nil)
		return
	}

	log.Info("Facebook login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, AuthResponse{User: user, Tokens: tokens})
}

// RefreshToken issues a new token pair
// POST /api/Auth/refresh-token
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	tokens, err := ctrl.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Token refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid or expired refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"Tokens": tokens})
}

// Logout blacklists the current access token
// POST /api/Auth/Logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), middleware.GetAccessToken(c)); err != nil {
		respondError(c, err, "logout", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("User logged out", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{"Message": "Logged out successfully"})
}

// GetMe returns the current user
// GET /api/Auth/Me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		respondError(c, err, "get user", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"User": user})
}

// UpdateMe updates the current user's profile
// PUT /api/Auth/Me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.ProfileInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err, "update profile", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("User profile updated", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{"User": user})
}

// ChangePassword replaces the current user's password
// PUT /api/Auth/change-password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	if err := ctrl.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "change password", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Message": "Password changed successfully"})
}

// ForgotPassword emails a reset link
// POST /api/Auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	if err := ctrl.passwordResetService.RequestReset(req.Email); err != nil {
		log.Error("Failed to process password reset request", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "Failed to request a password reset")
		return
	}

	// same answer whether or not the account exists
	c.JSON(http.StatusOK, gin.H{
		"Message": "If the email exists, a password reset link has been sent",
	})
}

// ResetPassword sets a new password with a reset token
// POST /api/Auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	if err := ctrl.passwordResetService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondError(c, err, "reset password", nil)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Password reset successful", nil)

	c.JSON(http.StatusOK, gin.H{"Message": "Password reset successful"})
}

// UserController exposes account administration to the backoffice
type UserController struct {
	authService service.AuthService
}

func NewUserController(authService service.AuthService) *UserController {
	return &UserController{authService: authService}
}

type UpdateRoleRequest struct {
	Role model.UserRole `json:"Role" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"IsActive" binding:"required"`
}

// ListUsers lists accounts, optionally by role
// GET /api/User?role=
func (ctrl *UserController) ListUsers(c *gin.Context) {
	users, err := ctrl.authService.ListUsers(model.UserRole(c.Query("role")))
	if err != nil {
		respondError(c, err, "list users", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"Users": users,
		"Count": len(users),
	})
}

// GetUser returns one account
// GET /api/User/:id
func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(id)
	if err != nil {
		respondError(c, err, "get user", map[string]interface{}{"user_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"User": user})
}

// UpdateRole changes an account's role
// PUT /api/User/:id/role
func (ctrl *UserController) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, err := ctrl.authService.UpdateUserRole(id, req.Role)
	if err != nil {
		respondError(c, err, "update user role", map[string]interface{}{"user_id": id})
		return
	}

	middleware.GetLoggerFromContext(c).Info("User role updated", map[string]interface{}{
		"user_id": id,
		"role":    req.Role,
	})

	c.JSON(http.StatusOK, gin.H{"User": user})
}

// SetActive enables or disables an account
// PUT /api/User/:id/active
func (ctrl *UserController) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, err := ctrl.authService.SetUserActive(id, *req.IsActive)
	if err != nil {
		respondError(c, err, "update user status", map[string]interface{}{"user_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"User": user})
}
