package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
)

type evaluationRow struct {
	ID             uuid.UUID   `db:"id"`
	Number         int         `db:"number"`
	ModuleNumber   int         `db:"module_number"`
	LevelSubjectID uuid.UUID   `db:"level_subject_id"`
	FormURL        null.String `db:"form_url"`
	PassingScore   int         `db:"passing_score"`
}

func (r evaluationRow) model() evaluation.Evaluation {
	return evaluation.Evaluation{
		ID:             r.ID,
		Number:         r.Number,
		ModuleNumber:   r.ModuleNumber,
		LevelSubjectID: r.LevelSubjectID,
		FormURL:        r.FormURL.String,
		PassingScore:   r.PassingScore,
	}
}

type slotRow struct {
	LevelSubjectID uuid.UUID     `db:"level_subject_id"`
	ModuleNumber   int           `db:"module_number"`
	Number         int           `db:"number"`
	Title          string        `db:"title"`
	ReleaseDate    time.Time     `db:"release_date"`
	EvaluationID   uuid.NullUUID `db:"evaluation_id"`
	EvNumber       null.Int      `db:"ev_number"`
	EvFormURL      null.String   `db:"ev_form_url"`
	EvPassingScore null.Int      `db:"ev_passing_score"`
}

func (r slotRow) model() evaluation.Slot {
	s := evaluation.Slot{
		Number:      r.Number,
		Title:       r.Title,
		ReleaseDate: r.ReleaseDate,
	}
	if r.EvaluationID.Valid {
		s.Evaluation = &evaluation.Evaluation{
			ID:             r.EvaluationID.UUID,
			Number:         r.EvNumber.Int,
			ModuleNumber:   r.ModuleNumber,
			LevelSubjectID: r.LevelSubjectID,
			FormURL:        r.EvFormURL.String,
			PassingScore:   r.EvPassingScore.Int,
		}
	}
	return s
}

const slotQuery = `
SELECT s.level_subject_id, s.module_number, s.number, s.title, s.release_date, s.evaluation_id,
       e.number AS ev_number, e.form_url AS ev_form_url, e.passing_score AS ev_passing_score
FROM evaluation_slot s
         LEFT JOIN evaluation e ON e.id = s.evaluation_id`

type evaluationRepository struct {
	db *sqlx.DB
}

var _ evaluation.Repository = (*evaluationRepository)(nil)

func NewEvaluationRepository(db *sqlx.DB) evaluation.Repository {
	return &evaluationRepository{db: db}
}

func (repo *evaluationRepository) GetModuleEvaluations(ctx context.Context, levelSubjectID uuid.UUID, moduleNumber int) (evaluation.ModuleEvaluations, error) {
	var rows []slotRow
	err := repo.db.SelectContext(ctx, &rows,
		slotQuery+` WHERE s.level_subject_id = $1 AND s.module_number = $2 ORDER BY s.number`,
		levelSubjectID, moduleNumber)
	if err != nil {
		return evaluation.ModuleEvaluations{}, errors.Wrap(err, "querying evaluation slots")
	}
	if len(rows) == 0 {
		return evaluation.ModuleEvaluations{}, evaluation.ErrNotFound
	}

	me := evaluation.ModuleEvaluations{
		ModuleNumber:   moduleNumber,
		LevelSubjectID: levelSubjectID,
		Slots:          make([]evaluation.Slot, 0, len(rows)),
	}
	for _, r := range rows {
		me.Slots = append(me.Slots, r.model())
	}

	var objID uuid.NullUUID
	err = repo.db.GetContext(ctx, &objID,
		`SELECT objective_id FROM module WHERE level_subject_id = $1 AND number = $2`,
		levelSubjectID, moduleNumber)
	if err != nil && err != sql.ErrNoRows {
		return evaluation.ModuleEvaluations{}, errors.Wrap(err, "getting module objective")
	}
	if objID.Valid {
		me.LearningObjectiveID = objID.UUID
	}
	return me, nil
}

func (repo *evaluationRepository) GetEvaluationByID(ctx context.Context, id uuid.UUID) (evaluation.Evaluation, error) {
	var row evaluationRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM evaluation WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return evaluation.Evaluation{}, evaluation.ErrNotFound
	}
	if err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "getting evaluation")
	}
	return row.model(), nil
}

func (repo *evaluationRepository) QueryQuestions(ctx context.Context, evaluationID uuid.UUID) ([]evaluation.Question, error) {
	rows, err := repo.db.QueryxContext(ctx,
		`SELECT id, question, options, correct, COALESCE(explanation, '')
		 FROM question WHERE evaluation_id = $1 ORDER BY id`, evaluationID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	defer func() { _ = rows.Close() }()

	var questions []evaluation.Question
	for rows.Next() {
		var q evaluation.Question
		var opts pq.StringArray
		if err = rows.Scan(&q.ID, &q.Question, &opts, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, errors.Wrap(err, "scanning question")
		}
		q.Options = opts
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (repo *evaluationRepository) QueryReleasedOn(ctx context.Context, day time.Time) ([]evaluation.Slot, error) {
	var rows []slotRow
	err := repo.db.SelectContext(ctx, &rows,
		slotQuery+` WHERE s.release_date::date = $1::date ORDER BY s.level_subject_id, s.module_number, s.number`,
		day)
	if err != nil {
		return nil, errors.Wrap(err, "querying released slots")
	}
	slots := make([]evaluation.Slot, 0, len(rows))
	for _, r := range rows {
		slots = append(slots, r.model())
	}
	return slots, nil
}

func (repo *evaluationRepository) GetCompletion(ctx context.Context, userID, evaluationID uuid.UUID) (evaluation.Completion, error) {
	var c evaluation.Completion
	err := repo.db.QueryRowxContext(ctx,
		`SELECT user_id, evaluation_id, score, passed, completed_at
		 FROM completion WHERE user_id = $1 AND evaluation_id = $2`,
		userID, evaluationID,
	).Scan(&c.UserID, &c.EvaluationID, &c.Score, &c.Passed, &c.CompletedAt)
	if err == sql.ErrNoRows {
		return evaluation.Completion{}, evaluation.ErrNotFound
	}
	if err != nil {
		return evaluation.Completion{}, errors.Wrap(err, "getting completion")
	}
	return c, nil
}

func (repo *evaluationRepository) CreateCompletion(ctx context.Context, c evaluation.Completion) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO completion (user_id, evaluation_id, score, passed, completed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, evaluation_id) DO NOTHING`,
		c.UserID, c.EvaluationID, c.Score, c.Passed, c.CompletedAt,
	)
	return errors.Wrap(err, "creating completion")
}

func (repo *evaluationRepository) QueryCompletions(ctx context.Context, userID, levelSubjectID uuid.UUID) ([]evaluation.Completion, error) {
	rows, err := repo.db.QueryxContext(ctx,
		`SELECT c.user_id, c.evaluation_id, c.score, c.passed, c.completed_at
		 FROM completion c
		          JOIN evaluation e ON e.id = c.evaluation_id
		 WHERE c.user_id = $1 AND e.level_subject_id = $2`,
		userID, levelSubjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	defer func() { _ = rows.Close() }()

	var completions []evaluation.Completion
	for rows.Next() {
		var c evaluation.Completion
		if err = rows.Scan(&c.UserID, &c.EvaluationID, &c.Score, &c.Passed, &c.CompletedAt); err != nil {
			return nil, errors.Wrap(err, "scanning completion")
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
