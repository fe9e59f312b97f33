package model

import "time"

// UnansweredAnswer 未作答题目的 selectedAnswer 哨兵值
const UnansweredAnswer = -1

type AnswerResult struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer int    `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
}

// UserProgress 一次测验提交记录，只追加、不修改
// swagger:model UserProgress
type UserProgress struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string         `gorm:"index:idx_progress_user_completed,priority:1;type:varchar(36)" json:"userId"`
	ProgrammeID    string         `gorm:"index;type:varchar(36)" json:"programmeId"`
	QuizID         string         `gorm:"index;type:varchar(36)" json:"quizId"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"totalQuestions"`
	CorrectAnswers int            `gorm:"not null" json:"correctAnswers"`
	TimeSpent      int            `gorm:"not null" json:"timeSpent"` // 秒
	Answers        []AnswerResult `gorm:"serializer:json;type:json" json:"answers"`
	CompletedAt    time.Time      `gorm:"index:idx_progress_user_completed,priority:2" json:"completedAt"`
	// Seq 写入顺序，completedAt 相同时用于排序
	Seq uint64 `gorm:"autoIncrement;uniqueIndex" json:"-"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// ProgressStats 仪表盘汇总
type ProgressStats struct {
	AvgScore         int `json:"avgScore"`
	TotalQuizzes     int `json:"totalQuizzes"`
	TotalTimeMinutes int `json:"totalTimeMinutes"`
}
