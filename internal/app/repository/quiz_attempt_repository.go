package repository

import (
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type QuizAttemptRepository interface {
	// Create stores the attempt with its histories and result in one transaction
	Create(attempt *model.UserQuizAttempt, result *model.Result) error
	FindByID(id uint) (*model.UserQuizAttempt, error)
	FindByUserID(userID uint) ([]model.UserQuizAttempt, error)
}

type quizAttemptRepository struct {
	db *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) QuizAttemptRepository {
	return &quizAttemptRepository{db: db}
}

func (r *quizAttemptRepository) Create(attempt *model.UserQuizAttempt, result *model.Result) error {
	logger.Debug("Creating quiz attempt in database", map[string]interface{}{
		"user_id":     attempt.UserID,
		"quiz_id":     attempt.QuizID,
		"total_score": attempt.TotalScore,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Quiz", "Result").
			Create(attempt).Error; err != nil {
			logger.Error("Failed to create quiz attempt in database", err, map[string]interface{}{
				"user_id": attempt.UserID,
			})
			return err
		}

		result.AttemptID = attempt.ID
		if err := tx.Omit("SkinType").Create(result).Error; err != nil {
			logger.Error("Failed to create quiz result in database", err, map[string]interface{}{
				"attempt_id": attempt.ID,
			})
			return err
		}

		if err := tx.Model(&model.User{}).Where("id = ?", attempt.UserID).
			Update("skin_type_id", result.SkinTypeID).Error; err != nil {
			logger.Error("Failed to store skin type on user", err, map[string]interface{}{
				"user_id": attempt.UserID,
			})
			return err
		}
		return nil
	})
}

func (r *quizAttemptRepository) FindByID(id uint) (*model.UserQuizAttempt, error) {
	var attempt model.UserQuizAttempt
	if err := r.db.
		Preload("Quiz").
		Preload("Histories").
		Preload("Result.SkinType").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *quizAttemptRepository) FindByUserID(userID uint) ([]model.UserQuizAttempt, error) {
	var attempts []model.UserQuizAttempt
	if err := r.db.
		Preload("Quiz").
		Preload("Result.SkinType").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		logger.Error("Failed to find quiz attempts by user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return attempts, nil
}
