package app

import "quiz-room-service/internal/domain"

// scoreAnswer compares a recorded submission against the question's
// accepted answers and returns whether it matched and the points to
// award. Matching is normalization-insensitive; a mismatch never costs
// points.
func scoreAnswer(question domain.Question, submission string) (bool, int) {
	if !question.Answer.Matches(submission) {
		return false, 0
	}
	return true, question.PointValue()
}
