package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/oauth"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrSocialLoginFailed   = errors.New("social login failed")
	ErrSocialLoginDisabled = errors.New("social login provider not configured")
	ErrEmailNotVerified    = errors.New("provider email is not verified")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrInvalidRole         = errors.New("invalid role")
)

const minPasswordLength = 8

// ProfileInput holds the editable profile fields; empty values are left unchanged
type ProfileInput struct {
	Name      string
	Phone     string
	Address   string
	AvatarURL string
}

type AuthService interface {
	Register(email, password, name, phone string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	GoogleLogin(ctx context.Context, idToken string) (*model.User, *util.TokenPair, error)
	FacebookLogin(ctx context.Context, accessToken string) (*model.User, *util.TokenPair, error)
	RefreshToken(refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, input ProfileInput) (*model.User, error)
	ChangePassword(userID uint, currentPassword, newPassword string) error

	ListUsers(role model.UserRole) ([]model.User, error)
	UpdateUserRole(userID uint, role model.UserRole) (*model.User, error)
	SetUserActive(userID uint, active bool) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	google        IdentityVerifier
	facebook      IdentityVerifier
	revoker       TokenRevoker
}

// NewAuthService wires password and social login. google, facebook and
// revoker may be nil when the integration is not configured.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
	google, facebook IdentityVerifier,
	revoker TokenRevoker,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		google:        google,
		facebook:      facebook,
		revoker:       revoker,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

func (s *authService) Register(email, password, name, phone string) (*model.User, *util.TokenPair, error) {
	email = normalizeEmail(email)
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	if len(password) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Phone:        phone,
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	// social-only accounts have no password
	if user.PasswordHash == "" || !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		logger.Warn("Login failed: account disabled", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrAccountDisabled
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) GoogleLogin(ctx context.Context, idToken string) (*model.User, *util.TokenPair, error) {
	if s.google == nil {
		return nil, nil, ErrSocialLoginDisabled
	}
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		logger.Warn("Google token rejected", map[string]interface{}{
			"error": err.Error(),
		})
		if errors.Is(err, oauth.ErrProviderUnavailable) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrSocialLoginFailed, err)
	}
	if !identity.EmailVerified {
		return nil, nil, ErrEmailNotVerified
	}
	return s.socialLogin(identity)
}

func (s *authService) FacebookLogin(ctx context.Context, accessToken string) (*model.User, *util.TokenPair, error) {
	if s.facebook == nil {
		return nil, nil, ErrSocialLoginDisabled
	}
	identity, err := s.facebook.Verify(ctx, accessToken)
	if err != nil {
		logger.Warn("Facebook token rejected", map[string]interface{}{
			"error": err.Error(),
		})
		if errors.Is(err, oauth.ErrProviderUnavailable) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrSocialLoginFailed, err)
	}
	return s.socialLogin(identity)
}

func (s *authService) findByProvider(identity *oauth.Identity) (*model.User, error) {
	switch identity.Provider {
	case "google":
		return s.userRepo.FindByGoogleID(identity.Subject)
	case "facebook":
		return s.userRepo.FindByFacebookID(identity.Subject)
	}
	return nil, fmt.Errorf("%w: unknown provider %s", ErrSocialLoginFailed, identity.Provider)
}

func linkProvider(user *model.User, identity *oauth.Identity) {
	subject := identity.Subject
	switch identity.Provider {
	case "google":
		user.GoogleID = &subject
	case "facebook":
		user.FacebookID = &subject
	}
	if user.AvatarURL == "" {
		user.AvatarURL = identity.Picture
	}
}

// socialLogin finds the account linked to the identity, links an existing
// account with the same email, or creates a new customer
func (s *authService) socialLogin(identity *oauth.Identity) (*model.User, *util.TokenPair, error) {
	fields := map[string]interface{}{
		"provider": identity.Provider,
		"subject":  identity.Subject,
	}

	user, err := s.findByProvider(identity)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up social account", err, fields)
		return nil, nil, err
	}

	if user == nil {
		email := normalizeEmail(identity.Email)
		if email == "" {
			// Facebook accounts registered by phone carry no email
			email = fmt.Sprintf("%s_%s@noemail.invalid", identity.Provider, identity.Subject)
		}

		user, err = s.userRepo.FindByEmail(email)
		switch {
		case err == nil:
			linkProvider(user, identity)
			if err := s.userRepo.Update(user); err != nil {
				return nil, nil, err
			}
			logger.Info("Linked social account to existing user", fields)

		case errors.Is(err, gorm.ErrRecordNotFound):
			name := identity.Name
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			user = &model.User{
				Email:    email,
				Name:     name,
				Role:     model.RoleCustomer,
				IsActive: true,
			}
			linkProvider(user, identity)
			if err := s.userRepo.Create(user); err != nil {
				return nil, nil, err
			}
			logger.Info("Created user from social login", fields)

		default:
			return nil, nil, err
		}
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) RefreshToken(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	// re-read the user so role changes and deactivation take effect
	user, err := s.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	if s.revoker == nil || accessToken == "" {
		return nil
	}
	claims, err := util.ValidateToken(accessToken, s.jwtSecret)
	if err != nil {
		// an already invalid token needs no revocation
		return nil
	}

	ttl := claims.RemainingValidity(time.Now())
	if err := s.revoker.Revoke(ctx, accessToken, ttl); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if err := copier.CopyWithOption(user, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("failed to apply profile changes: %w", err)
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	// social-only accounts may set a first password without the current one
	if user.PasswordHash != "" && !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password change rejected: wrong current password", map[string]interface{}{
			"user_id": userID,
		})
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) ListUsers(role model.UserRole) ([]model.User, error) {
	if role != "" && !validRole(role) {
		return nil, ErrInvalidRole
	}
	return s.userRepo.FindAll(role)
}

func validRole(role model.UserRole) bool {
	switch role {
	case model.RoleCustomer, model.RoleStaff, model.RoleAdmin:
		return true
	}
	return false
}

func (s *authService) UpdateUserRole(userID uint, role model.UserRole) (*model.User, error) {
	if !validRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User role updated", map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})
	return user, nil
}

func (s *authService) SetUserActive(userID uint, active bool) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User active flag updated", map[string]interface{}{
		"user_id":   userID,
		"is_active": active,
	})
	return user, nil
}
