package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuizQuestion 题目。Points 只做存储，计分时所有题目等权。
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Points        int      `json:"points"`
}

// ValidAnswer 判断 index 是否落在选项范围内
func (q QuizQuestion) ValidAnswer(index int) bool {
	return index >= 0 && index < len(q.Options)
}

// swagger:model Quiz
type Quiz struct {
	Document
	ProgrammeID  string         `gorm:"index;type:varchar(36)" json:"programmeId"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Subject      string         `gorm:"size:100" json:"subject"`
	Difficulty   Difficulty     `gorm:"size:10;default:'medium'" json:"difficulty"`
	Questions    []QuizQuestion `gorm:"serializer:json;type:json" json:"questions"`
	TimeLimit    int            `gorm:"not null" json:"timeLimit"`    // 分钟
	PassingScore int            `gorm:"not null" json:"passingScore"` // 百分比
	IsPublished  bool           `gorm:"index;default:false" json:"isPublished"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuestionByID 按 ID 查找题目
func (q *Quiz) QuestionByID(id string) (QuizQuestion, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return QuizQuestion{}, false
}
