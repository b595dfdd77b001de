package evaluation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("evaluation not found")
	ErrUnknownQuestion = errors.New("answer references an unknown question")
)

type (
	// Evaluation is one graded checkpoint. Two exist per module.
	Evaluation struct {
		ID             uuid.UUID `json:"id"`
		Number         int       `json:"evaluationNumber"` // 1 or 2
		ModuleNumber   int       `json:"moduleNumber"`
		LevelSubjectID uuid.UUID `json:"levelSubjectId"`
		FormURL        string    `json:"formUrl,omitempty"`
		PassingScore   int       `json:"passingScore"` // percentage threshold
	}

	// Slot is a module's placeholder for one of its two evaluations.
	// The release date gates visibility independent of completion.
	Slot struct {
		Number      int         `json:"number"` // 1 or 2
		Title       string      `json:"title"`
		ReleaseDate time.Time   `json:"releaseDate"`
		Evaluation  *Evaluation `json:"evaluation,omitempty"`
		Completed   bool        `json:"completed"`
	}

	// SlotView adds the date-gate derivation the front-end renders.
	SlotView struct {
		Slot
		IsReleased           bool   `json:"isReleased"`
		ReleaseDateFormatted string `json:"releaseDateFormatted"`
	}

	// Question as served to takers: the correct index and explanation never
	// leave the server before submission.
	Question struct {
		ID            int      `json:"id"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"-"`
		Explanation   string   `json:"-"`
	}

	// Answer is one submitted option index. Unique per question;
	// re-answering replaces, never appends.
	Answer struct {
		QuestionID int `json:"questionId"`
		Answer     int `json:"answer"`
	}

	QuestionResult struct {
		QuestionID    int    `json:"questionId"`
		Correct       bool   `json:"correct"`
		CorrectAnswer int    `json:"correctAnswer"`
		Explanation   string `json:"explanation,omitempty"`
	}

	// Result is the server's verdict. Clients render it, never recompute it.
	Result struct {
		Score          float64          `json:"score"` // 0-100, one decimal
		TotalCorrect   int              `json:"totalCorrect"`
		TotalQuestions int              `json:"totalQuestions"`
		Passed         bool             `json:"passed"`
		PassingScore   int              `json:"passingScore"`
		Results        []QuestionResult `json:"results"`
	}

	// Completion is the persisted record that a student finished an
	// evaluation. One row per (user, evaluation); repeats are no-ops.
	Completion struct {
		UserID       uuid.UUID `json:"userId"`
		EvaluationID uuid.UUID `json:"evaluationId"`
		Score        float64   `json:"score"`
		Passed       bool      `json:"passed"`
		CompletedAt  time.Time `json:"completedAt"`
	}

	// ModuleEvaluations is a module's pair of slots plus its objective link.
	ModuleEvaluations struct {
		ModuleNumber        int       `json:"moduleNumber"`
		LevelSubjectID      uuid.UUID `json:"levelSubjectId"`
		LearningObjectiveID uuid.UUID `json:"learningObjectiveId"`
		Slots               []Slot    `json:"evaluations"`
	}

	// ModuleEvaluationsView is ModuleEvaluations with per-slot derivations.
	ModuleEvaluationsView struct {
		ModuleNumber        int        `json:"moduleNumber"`
		LevelSubjectID      uuid.UUID  `json:"levelSubjectId"`
		LearningObjectiveID uuid.UUID  `json:"learningObjectiveId"`
		Slots               []SlotView `json:"evaluations"`
		CanAdvance          bool       `json:"canAdvance"`
	}
)
