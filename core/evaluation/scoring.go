package evaluation

import (
	"fmt"
	"math"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
)

// Dedupe collapses answers to one per question, last write wins. Order of the
// first occurrence is preserved so progress displays stay stable.
func Dedupe(answers []Answer) []Answer {
	idx := make(map[int]int, len(answers))
	out := make([]Answer, 0, len(answers))
	for _, a := range answers {
		if i, ok := idx[a.QuestionID]; ok {
			out[i] = a
			continue
		}
		idx[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out
}

// AnsweredCount reports distinct questions answered, for progress display.
func AnsweredCount(answers []Answer) int {
	return len(Dedupe(answers))
}

// Score grades a submission against the question set. Unanswered questions
// count as incorrect and TotalQuestions is always the full question count,
// so partial (force) submissions score only what was provided. An answer
// referencing an unknown question is rejected as a validation error rather
// than crashing or being silently dropped.
func Score(questions []Question, answers []Answer, passingScore int) (Result, error) {
	known := make(map[int]Question, len(questions))
	for _, q := range questions {
		known[q.ID] = q
	}

	answers = Dedupe(answers)
	picked := make(map[int]int, len(answers))
	for _, a := range answers {
		if _, ok := known[a.QuestionID]; !ok {
			return Result{}, core.NewValidationError(ErrUnknownQuestion, core.FieldError{
				Field: "answers",
				Error: fmt.Sprintf("question %d does not exist", a.QuestionID),
			})
		}
		picked[a.QuestionID] = a.Answer
	}

	res := Result{
		TotalQuestions: len(questions),
		PassingScore:   passingScore,
		Results:        make([]QuestionResult, 0, len(questions)),
	}
	for _, q := range questions {
		answer, answered := picked[q.ID]
		correct := answered && answer == q.CorrectAnswer
		if correct {
			res.TotalCorrect++
		}
		res.Results = append(res.Results, QuestionResult{
			QuestionID:    q.ID,
			Correct:       correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if res.TotalQuestions > 0 {
		pct := float64(res.TotalCorrect) / float64(res.TotalQuestions) * 100
		res.Score = math.Round(pct*10) / 10
	}
	res.Passed = res.Score >= float64(passingScore)
	return res, nil
}
