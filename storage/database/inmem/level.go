package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
)

type levelRepository struct {
	db *levelTable
}

var _ level.Repository = (*levelRepository)(nil)

func NewLevelRepository(db *DB) *levelRepository {
	return &levelRepository{db: db.level}
}

func (repo *levelRepository) SeedLevels(levels ...level.Level) {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i := range levels {
		lvl := levels[i]
		repo.db.levels[lvl.ID] = &lvl
	}
}

func (repo *levelRepository) SeedLevelSubjects(subjects ...level.LevelSubject) {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i := range subjects {
		ls := subjects[i]
		repo.db.subjects[ls.ID] = &ls
	}
}

func (repo *levelRepository) SeedCopilots(copilots ...level.GeminiCopilot) {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i := range copilots {
		cp := copilots[i]
		repo.db.copilots[cp.LevelID] = &cp
	}
}

func (repo *levelRepository) GetLevelByID(_ context.Context, id uuid.UUID) (level.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lvl, ok := repo.db.levels[id]; ok {
		return *lvl, nil
	}
	return level.Level{}, level.ErrNotFound
}

func (repo *levelRepository) QueryLevels(_ context.Context) ([]level.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	levels := make([]level.Level, 0, len(repo.db.levels))
	for _, lvl := range repo.db.levels {
		levels = append(levels, *lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Ordinal < levels[j].Ordinal })
	return levels, nil
}

func (repo *levelRepository) GetLevelSubjectByID(_ context.Context, id uuid.UUID) (level.LevelSubject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ls, ok := repo.db.subjects[id]; ok {
		return *ls, nil
	}
	return level.LevelSubject{}, level.ErrNotFound
}

func (repo *levelRepository) GetCopilotByLevel(_ context.Context, levelID uuid.UUID) (level.GeminiCopilot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cp, ok := repo.db.copilots[levelID]; ok {
		return *cp, nil
	}
	return level.GeminiCopilot{}, level.ErrCopilotNotFound
}
