package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
)

type moduleRow struct {
	Number         int           `db:"number"`
	LevelSubjectID uuid.UUID     `db:"level_subject_id"`
	StartDate      time.Time     `db:"start_date"`
	EndDate        time.Time     `db:"end_date"`
	ObjectiveID    uuid.NullUUID `db:"objective_id"`
	Code           null.String   `db:"code"`
	Title          null.String   `db:"title"`
	Description    null.String   `db:"description"`
}

func (r moduleRow) model() program.Module {
	m := program.Module{
		Number:         r.Number,
		LevelSubjectID: r.LevelSubjectID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
	}
	if r.ObjectiveID.Valid {
		m.Objective = &program.Objective{
			ID:          r.ObjectiveID.UUID,
			Code:        r.Code.String,
			Title:       r.Title.String,
			Description: r.Description.String,
		}
	}
	return m
}

const moduleQuery = `
SELECT m.number, m.level_subject_id, m.start_date, m.end_date, m.objective_id,
       o.code, o.title, o.description
FROM module m
         LEFT JOIN learning_objective o ON o.id = m.objective_id`

type programRepository struct {
	db *sqlx.DB
}

var _ program.Repository = (*programRepository)(nil)

func NewProgramRepository(db *sqlx.DB) program.Repository {
	return &programRepository{db: db}
}

func (repo *programRepository) QueryModules(ctx context.Context, levelSubjectID uuid.UUID) ([]program.Module, error) {
	var rows []moduleRow
	err := repo.db.SelectContext(ctx, &rows,
		moduleQuery+` WHERE m.level_subject_id = $1 ORDER BY m.number`, levelSubjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	mods := make([]program.Module, 0, len(rows))
	for _, r := range rows {
		mods = append(mods, r.model())
	}
	return mods, nil
}

func (repo *programRepository) GetModule(ctx context.Context, levelSubjectID uuid.UUID, number int) (program.Module, error) {
	var row moduleRow
	err := repo.db.GetContext(ctx, &row,
		moduleQuery+` WHERE m.level_subject_id = $1 AND m.number = $2`, levelSubjectID, number)
	if err == sql.ErrNoRows {
		return program.Module{}, program.ErrNotFound
	}
	if err != nil {
		return program.Module{}, errors.Wrap(err, "getting module")
	}
	return row.model(), nil
}
