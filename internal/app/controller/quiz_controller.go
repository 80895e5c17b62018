package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type QuizController struct {
	quizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

type AnswerRequest struct {
	Content string `json:"Content" binding:"required"`
	Score   int    `json:"Score"`
}

type QuestionRequest struct {
	Content   string          `json:"Content" binding:"required"`
	SortOrder int             `json:"SortOrder"`
	Answers   []AnswerRequest `json:"Answers" binding:"dive"`
}

type QuizRequest struct {
	Title       string            `json:"Title" binding:"required"`
	Description string            `json:"Description"`
	IsActive    *bool             `json:"IsActive"`
	Questions   []QuestionRequest `json:"Questions" binding:"dive"`
}

type AttemptAnswerRequest struct {
	QuestionID uint `json:"QuestionId" binding:"required"`
	AnswerID   uint `json:"AnswerId" binding:"required"`
}

type SubmitAttemptRequest struct {
	Answers []AttemptAnswerRequest `json:"Answers" binding:"required,min=1,dive"`
}

func (req QuestionRequest) toInput() service.QuestionInput {
	answers := make([]service.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.AnswerInput(a))
	}
	return service.QuestionInput{
		Content:   req.Content,
		SortOrder: req.SortOrder,
		Answers:   answers,
	}
}

func (req QuizRequest) toInput() service.QuizInput {
	questions := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, q.toInput())
	}
	return service.QuizInput{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		Questions:   questions,
	}
}

// GetQuizzes lists active quizzes, or all of them for the backoffice
// GET /api/Quiz
func (ctrl *QuizController) GetQuizzes(c *gin.Context) {
	activeOnly := !currentRole(c).IsBackoffice()
	quizzes, err := ctrl.quizService.GetAllQuizzes(activeOnly)
	if err != nil {
		respondError(c, err, "list quizzes", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Quizzes": quizzes, "Count": len(quizzes)})
}

// GetQuiz returns a quiz with its questions and answers
// GET /api/Quiz/:id
func (ctrl *QuizController) GetQuiz(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	quiz, err := ctrl.quizService.GetQuizByID(id)
	if err != nil {
		respondError(c, err, "get quiz", map[string]interface{}{"quiz_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Quiz": quiz})
}

// CreateQuiz POST /api/Quiz
func (ctrl *QuizController) CreateQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	quiz, err := ctrl.quizService.CreateQuiz(req.toInput())
	if err != nil {
		respondError(c, err, "create quiz", nil)
		return
	}
	middleware.GetLoggerFromContext(c).Info("Quiz created", map[string]interface{}{
		"quiz_id":   quiz.ID,
		"questions": len(req.Questions),
	})
	c.JSON(http.StatusCreated, gin.H{"Quiz": quiz})
}

// UpdateQuiz changes the quiz header. Questions are edited through their own routes.
// PUT /api/Quiz/:id
func (ctrl *QuizController) UpdateQuiz(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	quiz, err := ctrl.quizService.UpdateQuiz(id, req.toInput())
	if err != nil {
		respondError(c, err, "update quiz", map[string]interface{}{"quiz_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Quiz": quiz})
}

// DeleteQuiz DELETE /api/Quiz/:id
func (ctrl *QuizController) DeleteQuiz(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.quizService.DeleteQuiz(id); err != nil {
		respondError(c, err, "delete quiz", map[string]interface{}{"quiz_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Quiz deleted"})
}

// AddQuestion POST /api/Quiz/:id/questions
func (ctrl *QuizController) AddQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	question, err := ctrl.quizService.AddQuestion(id, req.toInput())
	if err != nil {
		respondError(c, err, "add question", map[string]interface{}{"quiz_id": id})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Question": question})
}

// UpdateQuestion PUT /api/Question/:id
func (ctrl *QuizController) UpdateQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	question, err := ctrl.quizService.UpdateQuestion(id, req.toInput())
	if err != nil {
		respondError(c, err, "update question", map[string]interface{}{"question_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Question": question})
}

// DeleteQuestion DELETE /api/Question/:id
func (ctrl *QuizController) DeleteQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.quizService.DeleteQuestion(id); err != nil {
		respondError(c, err, "delete question", map[string]interface{}{"question_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Question deleted"})
}

// AddAnswer POST /api/Question/:id/answers
func (ctrl *QuizController) AddAnswer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	answer, err := ctrl.quizService.AddAnswer(id, service.AnswerInput(req))
	if err != nil {
		respondError(c, err, "add answer", map[string]interface{}{"question_id": id})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Answer": answer})
}

// UpdateAnswer PUT /api/Answer/:id
func (ctrl *QuizController) UpdateAnswer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	answer, err := ctrl.quizService.UpdateAnswer(id, service.AnswerInput(req))
	if err != nil {
		respondError(c, err, "update answer", map[string]interface{}{"answer_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Answer": answer})
}

// DeleteAnswer DELETE /api/Answer/:id
func (ctrl *QuizController) DeleteAnswer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.quizService.DeleteAnswer(id); err != nil {
		respondError(c, err, "delete answer", map[string]interface{}{"answer_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Answer deleted"})
}

// SubmitAttempt scores the caller's answers and returns the matched skin type
// with its recommended routines
// POST /api/Quiz/:id/attempts
func (ctrl *QuizController) SubmitAttempt(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	answers := make([]service.AttemptAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.AttemptAnswer(a))
	}

	result, err := ctrl.quizService.SubmitAttempt(userID, quizID, answers)
	if err != nil {
		respondError(c, err, "submit quiz attempt", map[string]interface{}{
			"user_id": userID,
			"quiz_id": quizID,
		})
		return
	}

	log.Info("Quiz attempt scored", map[string]interface{}{
		"user_id":      userID,
		"quiz_id":      quizID,
		"total_score":  result.TotalScore,
		"skin_type_id": result.SkinType.ID,
	})

	c.JSON(http.StatusCreated, result)
}

// GetMyAttempts GET /api/QuizAttempt
func (ctrl *QuizController) GetMyAttempts(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	attempts, err := ctrl.quizService.GetUserAttempts(userID)
	if err != nil {
		respondError(c, err, "list quiz attempts", map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Attempts": attempts, "Count": len(attempts)})
}

// GetAttempt GET /api/QuizAttempt/:id
func (ctrl *QuizController) GetAttempt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	attempt, err := ctrl.quizService.GetAttemptByID(id, userID, currentRole(c))
	if err != nil {
		respondError(c, err, "get quiz attempt", map[string]interface{}{
			"user_id":    userID,
			"attempt_id": id,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Attempt": attempt})
}
