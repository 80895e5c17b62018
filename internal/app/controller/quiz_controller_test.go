package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type quizControllerFixture struct {
	db   *gorm.DB
	ctrl *QuizController
}

func setupQuizControllerTest(t *testing.T) *quizControllerFixture {
	testDB := setupControllerTestDB(t)

	quizService := service.NewQuizService(
		repository.NewQuizRepository(testDB),
		repository.NewQuizAttemptRepository(testDB),
		repository.NewSkinTypeRepository(testDB),
		repository.NewRoutineRepository(testDB),
	)

	// overlapping ranges: the first stored bucket wins
	for _, st := range []model.SkinType{
		{Name: "Dry", MinScore: 0, MaxScore: 5},
		{Name: "Combination", MinScore: 3, MaxScore: 8},
		{Name: "Oily", MinScore: 9, MaxScore: 20},
	} {
		st := st
		require.NoError(t, testDB.Create(&st).Error)
	}

	return &quizControllerFixture{db: testDB, ctrl: NewQuizController(quizService)}
}

func (f *quizControllerFixture) routerFor(user *model.User) *gin.Engine {
	router := gin.New()
	api := router.Group("/api", asUser(user.ID, user.Role))
	api.GET("/Quiz", f.ctrl.GetQuizzes)
	api.GET("/Quiz/:id", f.ctrl.GetQuiz)
	api.POST("/Quiz", f.ctrl.CreateQuiz)
	api.PUT("/Quiz/:id", f.ctrl.UpdateQuiz)
	api.POST("/Quiz/:id/attempts", f.ctrl.SubmitAttempt)
	api.GET("/QuizAttempt", f.ctrl.GetMyAttempts)
	api.GET("/QuizAttempt/:id", f.ctrl.GetAttempt)
	return router
}

// createQuiz returns the quiz id and, per question, the answer ids in order
func createQuiz(t *testing.T, router *gin.Engine) (uint, [][]uint) {
	w := performRequest(router, http.MethodPost, "/api/Quiz", QuizRequest{
		Title: "What is your skin type?",
		Questions: []QuestionRequest{
			{
				Content:   "How does your skin feel after cleansing?",
				SortOrder: 1,
				Answers: []AnswerRequest{
					{Content: "Tight", Score: 1},
					{Content: "Shiny", Score: 5},
				},
			},
			{
				Content:   "How often do you get breakouts?",
				SortOrder: 2,
				Answers: []AnswerRequest{
					{Content: "Rarely", Score: 3},
					{Content: "Often", Score: 6},
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	quiz := decodeBody(t, w)["Quiz"].(map[string]interface{})
	questions := quiz["Questions"].([]interface{})
	require.Len(t, questions, 2)

	answerIDs := make([][]uint, 0, len(questions))
	for _, q := range questions {
		var ids []uint
		for _, a := range q.(map[string]interface{})["Answers"].([]interface{}) {
			ids = append(ids, uint(a.(map[string]interface{})["Id"].(float64)))
		}
		answerIDs = append(answerIDs, ids)
	}
	return uint(quiz["Id"].(float64)), answerIDs
}

func questionIDs(t *testing.T, router *gin.Engine, quizID uint) []uint {
	w := performRequest(router, http.MethodGet, fmt.Sprintf("/api/Quiz/%d", quizID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ids []uint
	for _, q := range decodeBody(t, w)["Quiz"].(map[string]interface{})["Questions"].([]interface{}) {
		ids = append(ids, uint(q.(map[string]interface{})["Id"].(float64)))
	}
	return ids
}

func TestQuizController_SubmitAttempt(t *testing.T) {
	f := setupQuizControllerTest(t)
	admin := createUser(t, f.db, "quiz-admin@example.com", model.RoleAdmin)
	customer := createUser(t, f.db, "quiz-taker@example.com", model.RoleCustomer)

	quizID, answers := createQuiz(t, f.routerFor(admin))
	router := f.routerFor(customer)
	questions := questionIDs(t, router, quizID)
	attemptPath := fmt.Sprintf("/api/Quiz/%d/attempts", quizID)

	t.Run("First matching skin type wins", func(t *testing.T) {
		// 1 + 3 = 4 falls in both Dry and Combination
		w := performRequest(router, http.MethodPost, attemptPath, SubmitAttemptRequest{
			Answers: []AttemptAnswerRequest{
				{QuestionID: questions[0], AnswerID: answers[0][0]},
				{QuestionID: questions[1], AnswerID: answers[1][0]},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		result := decodeBody(t, w)
		assert.EqualValues(t, 4, result["TotalScore"])
		assert.Equal(t, "Dry", result["SkinType"].(map[string]interface{})["Name"])
	})

	t.Run("Higher score", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, attemptPath, SubmitAttemptRequest{
			Answers: []AttemptAnswerRequest{
				{QuestionID: questions[0], AnswerID: answers[0][1]},
				{QuestionID: questions[1], AnswerID: answers[1][1]},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "Oily", decodeBody(t, w)["SkinType"].(map[string]interface{})["Name"])
	})

	t.Run("Answer from another question", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, attemptPath, SubmitAttemptRequest{
			Answers: []AttemptAnswerRequest{
				{QuestionID: questions[0], AnswerID: answers[1][0]},
				{QuestionID: questions[1], AnswerID: answers[1][1]},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing question", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, attemptPath, SubmitAttemptRequest{
			Answers: []AttemptAnswerRequest{
				{QuestionID: questions[0], AnswerID: answers[0][0]},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Attempts are listed for the owner", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/QuizAttempt", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decodeBody(t, w)["Count"])
	})

	var user model.User
	require.NoError(t, f.db.First(&user, customer.ID).Error)
	require.NotNil(t, user.SkinTypeID)
}

func TestQuizController_InactiveQuiz(t *testing.T) {
	f := setupQuizControllerTest(t)
	admin := createUser(t, f.db, "inactive-admin@example.com", model.RoleAdmin)
	customer := createUser(t, f.db, "inactive-taker@example.com", model.RoleCustomer)
	adminRouter := f.routerFor(admin)

	quizID, answers := createQuiz(t, adminRouter)
	questions := questionIDs(t, adminRouter, quizID)

	inactive := false
	w := performRequest(adminRouter, http.MethodPut, fmt.Sprintf("/api/Quiz/%d", quizID), QuizRequest{
		Title:    "What is your skin type?",
		IsActive: &inactive,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	router := f.routerFor(customer)
	w = performRequest(router, http.MethodGet, "/api/Quiz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["Count"])

	w = performRequest(adminRouter, http.MethodGet, "/api/Quiz", nil)
	assert.EqualValues(t, 1, decodeBody(t, w)["Count"])

	w = performRequest(router, http.MethodPost, fmt.Sprintf("/api/Quiz/%d/attempts", quizID), SubmitAttemptRequest{
		Answers: []AttemptAnswerRequest{
			{QuestionID: questions[0], AnswerID: answers[0][0]},
			{QuestionID: questions[1], AnswerID: answers[1][0]},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
