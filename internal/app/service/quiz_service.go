package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
)

var (
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizInactive       = errors.New("quiz is not active")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrInvalidAnswer      = errors.New("answer does not belong to the question")
	ErrIncompleteAttempt  = errors.New("every question must be answered exactly once")
	ErrNoMatchingSkinType = errors.New("no skin type matches the score")
	ErrAttemptNotFound    = errors.New("quiz attempt not found")
	ErrContentRequired    = errors.New("content is required")
)

type AnswerInput struct {
	Content string
	Score   int
}

type QuestionInput struct {
	Content   string
	SortOrder int
	Answers   []AnswerInput
}

type QuizInput struct {
	Title       string
	Description string
	IsActive    *bool
	Questions   []QuestionInput
}

// AttemptAnswer is the answer picked for one question
type AttemptAnswer struct {
	QuestionID uint
	AnswerID   uint
}

type AttemptResult struct {
	AttemptID  uint            `json:"AttemptId"`
	QuizID     uint            `json:"QuizId"`
	TotalScore int             `json:"TotalScore"`
	SkinType   model.SkinType  `json:"SkinType"`
	Routines   []model.Routine `json:"Routines"`
}

type QuizService interface {
	GetAllQuizzes(activeOnly bool) ([]model.Quiz, error)
	GetQuizByID(id uint) (*model.Quiz, error)
	CreateQuiz(input QuizInput) (*model.Quiz, error)
	UpdateQuiz(id uint, input QuizInput) (*model.Quiz, error)
	DeleteQuiz(id uint) error

	AddQuestion(quizID uint, input QuestionInput) (*model.Question, error)
	UpdateQuestion(questionID uint, input QuestionInput) (*model.Question, error)
	DeleteQuestion(questionID uint) error
	AddAnswer(questionID uint, input AnswerInput) (*model.Answer, error)
	UpdateAnswer(answerID uint, input AnswerInput) (*model.Answer, error)
	DeleteAnswer(answerID uint) error

	SubmitAttempt(userID, quizID uint, answers []AttemptAnswer) (*AttemptResult, error)
	GetUserAttempts(userID uint) ([]model.UserQuizAttempt, error)
	GetAttemptByID(attemptID, userID uint, role model.UserRole) (*model.UserQuizAttempt, error)
}

type quizService struct {
	quizRepo     repository.QuizRepository
	attemptRepo  repository.QuizAttemptRepository
	skinTypeRepo repository.SkinTypeRepository
	routineRepo  repository.RoutineRepository
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.QuizAttemptRepository,
	skinTypeRepo repository.SkinTypeRepository,
	routineRepo repository.RoutineRepository,
) QuizService {
	return &quizService{
		quizRepo:     quizRepo,
		attemptRepo:  attemptRepo,
		skinTypeRepo: skinTypeRepo,
		routineRepo:  routineRepo,
	}
}

// DetermineSkinType scans skin types in stored order and returns the first
// whose inclusive score range contains total
func DetermineSkinType(skinTypes []model.SkinType, total int) (*model.SkinType, bool) {
	for i := range skinTypes {
		if skinTypes[i].Matches(total) {
			return &skinTypes[i], true
		}
	}
	return nil, false
}

func buildQuestion(input QuestionInput) (model.Question, error) {
	if strings.TrimSpace(input.Content) == "" {
		return model.Question{}, ErrContentRequired
	}
	question := model.Question{
		Content:   strings.TrimSpace(input.Content),
		SortOrder: input.SortOrder,
	}
	for _, a := range input.Answers {
		if strings.TrimSpace(a.Content) == "" {
			return model.Question{}, ErrContentRequired
		}
		question.Answers = append(question.Answers, model.Answer{
			Content: strings.TrimSpace(a.Content),
			Score:   a.Score,
		})
	}
	return question, nil
}

func (s *quizService) GetAllQuizzes(activeOnly bool) ([]model.Quiz, error) {
	return s.quizRepo.FindAll(activeOnly)
}

func (s *quizService) GetQuizByID(id uint) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound)
	}
	return quiz, nil
}

func (s *quizService) CreateQuiz(input QuizInput) (*model.Quiz, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrNameRequired
	}

	quiz := &model.Quiz{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		IsActive:    true,
	}
	for i, q := range input.Questions {
		question, err := buildQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if question.SortOrder == 0 {
			question.SortOrder = i + 1
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}
	if input.IsActive != nil && !*input.IsActive {
		quiz.IsActive = false
		if err := s.quizRepo.Update(quiz); err != nil {
			return nil, err
		}
	}

	logger.Info("Quiz created", map[string]interface{}{
		"quiz_id":   quiz.ID,
		"questions": len(quiz.Questions),
	})
	return s.GetQuizByID(quiz.ID)
}

// UpdateQuiz changes the quiz header; questions are edited individually
func (s *quizService) UpdateQuiz(id uint, input QuizInput) (*model.Quiz, error) {
	quiz, err := s.GetQuizByID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrNameRequired
	}

	quiz.Title = strings.TrimSpace(input.Title)
	quiz.Description = input.Description
	if input.IsActive != nil {
		quiz.IsActive = *input.IsActive
	}
	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return s.GetQuizByID(id)
}

func (s *quizService) DeleteQuiz(id uint) error {
	if err := s.quizRepo.Delete(id); err != nil {
		return notFoundAs(err, ErrQuizNotFound)
	}
	logger.Info("Quiz deleted", map[string]interface{}{
		"quiz_id": id,
	})
	return nil
}

func (s *quizService) AddQuestion(quizID uint, input QuestionInput) (*model.Question, error) {
	if _, err := s.GetQuizByID(quizID); err != nil {
		return nil, err
	}
	question, err := buildQuestion(input)
	if err != nil {
		return nil, err
	}
	question.QuizID = quizID
	if err := s.quizRepo.CreateQuestion(&question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *quizService) UpdateQuestion(questionID uint, input QuestionInput) (*model.Question, error) {
	question, err := s.quizRepo.FindQuestionByID(questionID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	question.Content = strings.TrimSpace(input.Content)
	question.SortOrder = input.SortOrder
	if err := s.quizRepo.UpdateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *quizService) DeleteQuestion(questionID uint) error {
	if err := s.quizRepo.DeleteQuestion(questionID); err != nil {
		return notFoundAs(err, ErrQuestionNotFound)
	}
	return nil
}

func (s *quizService) AddAnswer(questionID uint, input AnswerInput) (*model.Answer, error) {
	if _, err := s.quizRepo.FindQuestionByID(questionID); err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	answer := &model.Answer{
		QuestionID: questionID,
		Content:    strings.TrimSpace(input.Content),
		Score:      input.Score,
	}
	if err := s.quizRepo.CreateAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *quizService) UpdateAnswer(answerID uint, input AnswerInput) (*model.Answer, error) {
	answer, err := s.quizRepo.FindAnswerByID(answerID)
	if err != nil {
		return nil, notFoundAs(err, ErrAnswerNotFound)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	answer.Content = strings.TrimSpace(input.Content)
	answer.Score = input.Score
	if err := s.quizRepo.UpdateAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *quizService) DeleteAnswer(answerID uint) error {
	if err := s.quizRepo.DeleteAnswer(answerID); err != nil {
		return notFoundAs(err, ErrAnswerNotFound)
	}
	return nil
}

func (s *quizService) SubmitAttempt(userID, quizID uint, answers []AttemptAnswer) (*AttemptResult, error) {
	fields := map[string]interface{}{
		"user_id": userID,
		"quiz_id": quizID,
	}
	logger.Info("Scoring quiz attempt", fields)

	quiz, err := s.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, ErrQuizInactive
	}

	questions := make(map[uint]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}
	if len(answers) != len(questions) || len(answers) == 0 {
		logger.Warn("Quiz attempt rejected: incomplete", fields)
		return nil, ErrIncompleteAttempt
	}

	seen := make(map[uint]bool, len(answers))
	histories := make([]model.History, 0, len(answers))
	total := 0
	for _, picked := range answers {
		question, ok := questions[picked.QuestionID]
		if !ok || seen[picked.QuestionID] {
			logger.Warn("Quiz attempt rejected: unknown or repeated question", map[string]interface{}{
				"quiz_id":     quizID,
				"question_id": picked.QuestionID,
			})
			return nil, ErrIncompleteAttempt
		}
		seen[picked.QuestionID] = true

		var answer *model.Answer
		for i := range question.Answers {
			if question.Answers[i].ID == picked.AnswerID {
				answer = &question.Answers[i]
				break
			}
		}
		if answer == nil {
			logger.Warn("Quiz attempt rejected: answer not in question", map[string]interface{}{
				"question_id": picked.QuestionID,
				"answer_id":   picked.AnswerID,
			})
			return nil, ErrInvalidAnswer
		}

		total += answer.Score
		histories = append(histories, model.History{
			QuestionID: question.ID,
			AnswerID:   answer.ID,
			Score:      answer.Score,
		})
	}

	skinTypes, err := s.skinTypeRepo.FindAll()
	if err != nil {
		return nil, err
	}
	skinType, ok := DetermineSkinType(skinTypes, total)
	if !ok {
		logger.Warn("No skin type matches quiz score", map[string]interface{}{
			"quiz_id":     quizID,
			"total_score": total,
		})
		return nil, ErrNoMatchingSkinType
	}

	attempt := &model.UserQuizAttempt{
		UserID:     userID,
		QuizID:     quizID,
		TotalScore: total,
		Histories:  histories,
	}
	result := &model.Result{
		SkinTypeID: skinType.ID,
		TotalScore: total,
	}
	if err := s.attemptRepo.Create(attempt, result); err != nil {
		logger.Error("Failed to store quiz attempt", err, fields)
		return nil, err
	}

	routines, err := s.routineRepo.FindBySkinType(skinType.ID, "")
	if err != nil {
		return nil, err
	}

	logger.Info("Quiz attempt scored", map[string]interface{}{
		"attempt_id":   attempt.ID,
		"user_id":      userID,
		"total_score":  total,
		"skin_type_id": skinType.ID,
	})
	return &AttemptResult{
		AttemptID:  attempt.ID,
		QuizID:     quizID,
		TotalScore: total,
		SkinType:   *skinType,
		Routines:   routines,
	}, nil
}

func (s *quizService) GetUserAttempts(userID uint) ([]model.UserQuizAttempt, error) {
	return s.attemptRepo.FindByUserID(userID)
}

func (s *quizService) GetAttemptByID(attemptID, userID uint, role model.UserRole) (*model.UserQuizAttempt, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, notFoundAs(err, ErrAttemptNotFound)
	}
	if attempt.UserID != userID && !role.IsBackoffice() {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}
