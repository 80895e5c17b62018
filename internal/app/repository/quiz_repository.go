package repository

import (
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(quiz *model.Quiz) error
	FindAll(activeOnly bool) ([]model.Quiz, error)
	FindByID(id uint) (*model.Quiz, error)
	Update(quiz *model.Quiz) error
	Delete(id uint) error

	CreateQuestion(question *model.Question) error
	FindQuestionByID(id uint) (*model.Question, error)
	UpdateQuestion(question *model.Question) error
	DeleteQuestion(id uint) error

	CreateAnswer(answer *model.Answer) error
	FindAnswerByID(id uint) (*model.Answer, error)
	UpdateAnswer(answer *model.Answer) error
	DeleteAnswer(id uint) error
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) withQuestions(db *gorm.DB) *gorm.DB {
	return db.Preload("Questions", func(qdb *gorm.DB) *gorm.DB {
		return qdb.Order("questions.sort_order ASC, questions.id ASC")
	}).Preload("Questions.Answers", func(adb *gorm.DB) *gorm.DB {
		return adb.Order("answers.id ASC")
	})
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	logger.Debug("Creating quiz in database", map[string]interface{}{
		"title":          quiz.Title,
		"question_count": len(quiz.Questions),
	})

	if err := r.db.Create(quiz).Error; err != nil {
		logger.Error("Failed to create quiz in database", err, map[string]interface{}{
			"title": quiz.Title,
		})
		return err
	}
	return nil
}

func (r *quizRepository) FindAll(activeOnly bool) ([]model.Quiz, error) {
	query := r.db.Model(&model.Quiz{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var quizzes []model.Quiz
	if err := r.withQuestions(query).Order("id ASC").Find(&quizzes).Error; err != nil {
		logger.Error("Failed to list quizzes", err)
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.withQuestions(r.db).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) Update(quiz *model.Quiz) error {
	if err := r.db.Omit("Questions").Save(quiz).Error; err != nil {
		logger.Error("Failed to update quiz in database", err, map[string]interface{}{
			"quiz_id": quiz.ID,
		})
		return err
	}
	return nil
}

func (r *quizRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Quiz{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete quiz from database", result.Error, map[string]interface{}{
			"quiz_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *quizRepository) CreateQuestion(question *model.Question) error {
	if err := r.db.Create(question).Error; err != nil {
		logger.Error("Failed to create question in database", err, map[string]interface{}{
			"quiz_id": question.QuizID,
		})
		return err
	}
	return nil
}

func (r *quizRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.Preload("Answers").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *quizRepository) UpdateQuestion(question *model.Question) error {
	return r.db.Omit("Answers").Save(question).Error
}

func (r *quizRepository) DeleteQuestion(id uint) error {
	result := r.db.Delete(&model.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *quizRepository) CreateAnswer(answer *model.Answer) error {
	if err := r.db.Create(answer).Error; err != nil {
		logger.Error("Failed to create answer in database", err, map[string]interface{}{
			"question_id": answer.QuestionID,
		})
		return err
	}
	return nil
}

func (r *quizRepository) FindAnswerByID(id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *quizRepository) UpdateAnswer(answer *model.Answer) error {
	return r.db.Save(answer).Error
}

func (r *quizRepository) DeleteAnswer(id uint) error {
	result := r.db.Delete(&model.Answer{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
