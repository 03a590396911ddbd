package model

import (
	"math"

	"credilink_backend/internals/helpers/apperr"
)

// ScoreQuiz grades a full answer sheet against an ordered question list.
//
// answers maps question index -> selected option index and must cover every
// question; any gap or out-of-range index rejects the whole submission
// before anything is written.
//
// score = round(100 * correct / total), half rounds up.
func ScoreQuiz(questions []QuizQuestion, answers map[int]int) (int, error) {
	if len(questions) == 0 {
		return 0, apperr.PreconditionFailed("quiz has no questions")
	}

	correct := 0
	for i, q := range questions {
		selected, ok := answers[i]
		if !ok {
			return 0, apperr.Newf(apperr.KindInvalidArgument, "missing answer for question %d", i)
		}
		if selected < 0 || selected >= len(q.Options) {
			return 0, apperr.Newf(apperr.KindInvalidArgument, "answer for question %d out of range", i)
		}
		if selected == q.CorrectOptionIndex {
			correct++
		}
	}
	if len(answers) > len(questions) {
		return 0, apperr.InvalidArgument("answers refer to unknown questions")
	}

	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	return score, nil
}
