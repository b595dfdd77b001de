package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
)

type programRepository struct {
	db *programTable
}

var _ program.Repository = (*programRepository)(nil)

func NewProgramRepository(db *DB) *programRepository {
	return &programRepository{db: db.program}
}

// SeedModules loads modules for tests and local runs.
func (repo *programRepository) SeedModules(mods ...program.Module) {
	repo.db.Lock()
	defer repo.db.Unlock()
	for i := range mods {
		m := mods[i]
		repo.db.table[moduleKey{m.LevelSubjectID, m.Number}] = &m
	}
}

func (repo *programRepository) QueryModules(_ context.Context, levelSubjectID uuid.UUID) ([]program.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var mods []program.Module
	for key, m := range repo.db.table {
		if key.levelSubjectID == levelSubjectID {
			mods = append(mods, *m)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Number < mods[j].Number })
	return mods, nil
}

func (repo *programRepository) GetModule(_ context.Context, levelSubjectID uuid.UUID, number int) (program.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[moduleKey{levelSubjectID, number}]; ok {
		return *m, nil
	}
	return program.Module{}, program.ErrNotFound
}
