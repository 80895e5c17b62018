package repository

import (
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(reset *model.PasswordReset) error
	FindByToken(token string) (*model.PasswordReset, error)
	MarkAsUsed(id uint) error
	InvalidateByEmail(email string) error
	DeleteExpired(before time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(reset *model.PasswordReset) error {
	if err := r.db.Create(reset).Error; err != nil {
		logger.Error("Failed to store password reset token", err, map[string]interface{}{
			"email": reset.Email,
		})
		return err
	}
	return nil
}

func (r *passwordResetRepository) FindByToken(token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	if err := r.db.Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) MarkAsUsed(id uint) error {
	if err := r.db.Model(&model.PasswordReset{}).Where("id = ?", id).
		Update("used", true).Error; err != nil {
		logger.Error("Failed to mark password reset token as used", err, map[string]interface{}{
			"id": id,
		})
		return err
	}
	return nil
}

// InvalidateByEmail burns every outstanding token of an account
func (r *passwordResetRepository) InvalidateByEmail(email string) error {
	if err := r.db.Model(&model.PasswordReset{}).
		Where("email = ? AND used = ?", email, false).
		Update("used", true).Error; err != nil {
		logger.Error("Failed to invalidate password reset tokens", err, map[string]interface{}{
			"email": email,
		})
		return err
	}
	return nil
}

func (r *passwordResetRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password reset tokens", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Expired password reset tokens deleted", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
