package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
)

type levelRepository struct {
	db *sqlx.DB
}

var _ level.Repository = (*levelRepository)(nil)

func NewLevelRepository(db *sqlx.DB) level.Repository {
	return &levelRepository{db: db}
}

func (repo *levelRepository) GetLevelByID(ctx context.Context, id uuid.UUID) (level.Level, error) {
	var lvl level.Level
	err := repo.db.QueryRowxContext(ctx,
		`SELECT id, name, ordinal FROM level WHERE id = $1`, id,
	).Scan(&lvl.ID, &lvl.Name, &lvl.Ordinal)
	if err == sql.ErrNoRows {
		return level.Level{}, level.ErrNotFound
	}
	if err != nil {
		return level.Level{}, errors.Wrap(err, "getting level")
	}
	return lvl, nil
}

func (repo *levelRepository) QueryLevels(ctx context.Context) ([]level.Level, error) {
	rows, err := repo.db.QueryxContext(ctx, `SELECT id, name, ordinal FROM level ORDER BY ordinal`)
	if err != nil {
		return nil, errors.Wrap(err, "querying levels")
	}
	defer func() { _ = rows.Close() }()

	var levels []level.Level
	for rows.Next() {
		var lvl level.Level
		if err = rows.Scan(&lvl.ID, &lvl.Name, &lvl.Ordinal); err != nil {
			return nil, errors.Wrap(err, "scanning level")
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}

func (repo *levelRepository) GetLevelSubjectByID(ctx context.Context, id uuid.UUID) (level.LevelSubject, error) {
	var ls level.LevelSubject
	err := repo.db.QueryRowxContext(ctx,
		`SELECT id, level_id, subject FROM level_subject WHERE id = $1`, id,
	).Scan(&ls.ID, &ls.LevelID, &ls.Subject)
	if err == sql.ErrNoRows {
		return level.LevelSubject{}, level.ErrNotFound
	}
	if err != nil {
		return level.LevelSubject{}, errors.Wrap(err, "getting level subject")
	}
	return ls, nil
}

func (repo *levelRepository) GetCopilotByLevel(ctx context.Context, levelID uuid.UUID) (level.GeminiCopilot, error) {
	var cp level.GeminiCopilot
	err := repo.db.QueryRowxContext(ctx,
		`SELECT id, level_id, name, prompt_url FROM gemini_copilot WHERE level_id = $1`, levelID,
	).Scan(&cp.ID, &cp.LevelID, &cp.Name, &cp.PromptURL)
	if err == sql.ErrNoRows {
		return level.GeminiCopilot{}, level.ErrCopilotNotFound
	}
	if err != nil {
		return level.GeminiCopilot{}, errors.Wrap(err, "getting copilot")
	}
	return cp, nil
}
