package service

import (
	"faaqs_backend/internal/model"
	"math"
)

// ComputeResult 按题目顺序逐题判分，所有题目等权；未作答记为 -1 且判错。
// 纯函数，空测验得 0 分。
func ComputeResult(quiz *model.Quiz, answers map[string]int, elapsedSeconds int) model.UserProgress {
	results := make([]model.AnswerResult, 0, len(quiz.Questions))
	correct := 0
	for _, q := range quiz.Questions {
		selected, ok := answers[q.ID]
		if !ok {
			selected = model.UnansweredAnswer
		}
		isCorrect := ok && selected == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		results = append(results, model.AnswerResult{
			QuestionID:     q.ID,
			SelectedAnswer: selected,
			IsCorrect:      isCorrect,
		})
	}

	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	return model.UserProgress{
		ProgrammeID:    quiz.ProgrammeID,
		QuizID:         quiz.ID,
		Score:          Percentage(correct, len(quiz.Questions)),
		TotalQuestions: len(quiz.Questions),
		CorrectAnswers: correct,
		TimeSpent:      elapsedSeconds,
		Answers:        results,
	}
}

// Percentage 四舍五入的百分比，分母为 0 时返回 0
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// AggregateStats 平均分取整、累计用时按分钟取整，无记录时全为 0
func AggregateStats(attempts []model.UserProgress) model.ProgressStats {
	if len(attempts) == 0 {
		return model.ProgressStats{}
	}
	var scoreSum, seconds int
	for _, a := range attempts {
		scoreSum += a.Score
		seconds += a.TimeSpent
	}
	return model.ProgressStats{
		AvgScore:         int(math.Round(float64(scoreSum) / float64(len(attempts)))),
		TotalQuizzes:     len(attempts),
		TotalTimeMinutes: int(math.Round(float64(seconds) / 60)),
	}
}
