package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/mailer"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenUsed    = errors.New("reset token has already been used")
)

const (
	ResetTokenExpiry = 1 * time.Hour
	ResetTokenLength = 32
)

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
	CleanupExpired(now time.Time) (int64, error)
}

type passwordResetService struct {
	resetRepo   repository.PasswordResetRepository
	userRepo    repository.UserRepository
	mailer      mailer.Mailer
	frontendURL string
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	frontendURL string,
) PasswordResetService {
	return &passwordResetService{
		resetRepo:   resetRepo,
		userRepo:    userRepo,
		mailer:      m,
		frontendURL: frontendURL,
	}
}

// RequestReset returns nil for unknown emails so callers cannot enumerate accounts
func (s *passwordResetService) RequestReset(email string) error {
	email = normalizeEmail(email)
	logger.Info("Password reset requested", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	// one live token per account
	if err := s.resetRepo.InvalidateByEmail(email); err != nil {
		logger.Error("Failed to invalidate existing reset tokens", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	token, err := util.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	reset := &model.PasswordReset{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	if err := s.mailer.SendPasswordReset(user.Email, user.Name, link); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	logger.Info("Processing password reset with token")

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid reset token provided")
			return ErrInvalidResetToken
		}
		return err
	}

	if reset.Used {
		logger.Warn("Reset token has already been used", map[string]interface{}{
			"email": reset.Email,
		})
		return ErrResetTokenUsed
	}
	if !reset.Usable(time.Now()) {
		logger.Warn("Reset token has expired", map[string]interface{}{
			"email":      reset.Email,
			"expires_at": reset.ExpiresAt,
		})
		return ErrResetTokenExpired
	}

	user, err := s.userRepo.FindByEmail(reset.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		// the password is already changed; the token expires on its own
		logger.Error("Failed to mark reset token as used", err, map[string]interface{}{
			"reset_id": reset.ID,
		})
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// CleanupExpired deletes tokens that expired before now
func (s *passwordResetService) CleanupExpired(now time.Time) (int64, error) {
	deleted, err := s.resetRepo.DeleteExpired(now)
	if err != nil {
		logger.Error("Failed to delete expired reset tokens", err)
		return 0, err
	}
	if deleted > 0 {
		logger.Info("Expired reset tokens deleted", map[string]interface{}{
			"count": deleted,
		})
	}
	return deleted, nil
}
