package model

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID          uint           `gorm:"primarykey" json:"Id"`
	Title       string         `gorm:"not null" json:"Title"`
	Description string         `gorm:"type:text" json:"Description"`
	IsActive    bool           `gorm:"default:true" json:"IsActive"`
	CreatedAt   time.Time      `json:"CreatedAt"`
	UpdatedAt   time.Time      `json:"UpdatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"Questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	ID        uint      `gorm:"primarykey" json:"Id"`
	QuizID    uint      `gorm:"index;not null" json:"QuizId"`
	Content   string    `gorm:"type:text;not null" json:"Content"`
	SortOrder int       `gorm:"default:0" json:"SortOrder"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`

	Answers []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"Answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	ID         uint      `gorm:"primarykey" json:"Id"`
	QuestionID uint      `gorm:"index;not null" json:"QuestionId"`
	Content    string    `gorm:"type:text;not null" json:"Content"`
	Score      int       `gorm:"not null" json:"Score"`
	CreatedAt  time.Time `json:"CreatedAt"`
	UpdatedAt  time.Time `json:"UpdatedAt"`
}

func (Answer) TableName() string {
	return "answers"
}

type UserQuizAttempt struct {
	ID         uint      `gorm:"primarykey" json:"Id"`
	UserID     uint      `gorm:"index;not null" json:"UserId"`
	QuizID     uint      `gorm:"index;not null" json:"QuizId"`
	TotalScore int       `gorm:"not null" json:"TotalScore"`
	CreatedAt  time.Time `json:"CreatedAt"`

	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Quiz      Quiz      `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"Quiz,omitempty"`
	Histories []History `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"Histories,omitempty"`
	Result    *Result   `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"Result,omitempty"`
}

func (UserQuizAttempt) TableName() string {
	return "user_quiz_attempts"
}

// History records the answer chosen for one question of an attempt
type History struct {
	ID         uint `gorm:"primarykey" json:"Id"`
	AttemptID  uint `gorm:"index;not null" json:"AttemptId"`
	QuestionID uint `gorm:"index;not null" json:"QuestionId"`
	AnswerID   uint `gorm:"index;not null" json:"AnswerId"`
	Score      int  `gorm:"not null" json:"Score"`

	Question Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	Answer   Answer   `gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (History) TableName() string {
	return "histories"
}

type Result struct {
	ID         uint      `gorm:"primarykey" json:"Id"`
	AttemptID  uint      `gorm:"uniqueIndex;not null" json:"AttemptId"`
	SkinTypeID uint      `gorm:"index;not null" json:"SkinTypeId"`
	TotalScore int       `gorm:"not null" json:"TotalScore"`
	CreatedAt  time.Time `json:"CreatedAt"`

	SkinType SkinType `gorm:"foreignKey:SkinTypeID;constraint:OnDelete:RESTRICT" json:"SkinType"`
}

func (Result) TableName() string {
	return "results"
}
