// Package inmemdb holds mutex-guarded map implementations of the core
// repositories, for tests and local runs without Postgres.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
)

type (
	DB struct {
		user       *userTable
		program    *programTable
		evaluation *evaluationTable
		level      *levelTable
	}

	userTable struct {
		sync.RWMutex
		table map[uuid.UUID]*user.User
	}

	moduleKey struct {
		levelSubjectID uuid.UUID
		number         int
	}

	programTable struct {
		sync.RWMutex
		table map[moduleKey]*program.Module
	}

	completionKey struct {
		userID       uuid.UUID
		evaluationID uuid.UUID
	}

	evaluationTable struct {
		sync.RWMutex
		evaluations map[uuid.UUID]*evaluation.Evaluation
		slots       map[moduleKey][]evaluation.Slot
		objectives  map[moduleKey]uuid.UUID
		questions   map[uuid.UUID][]evaluation.Question
		completions map[completionKey]*evaluation.Completion
	}

	levelTable struct {
		sync.RWMutex
		levels   map[uuid.UUID]*level.Level
		subjects map[uuid.UUID]*level.LevelSubject
		copilots map[uuid.UUID]*level.GeminiCopilot // keyed by level ID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[uuid.UUID]*user.User)},
		program: &programTable{table: make(map[moduleKey]*program.Module)},
		evaluation: &evaluationTable{
			evaluations: make(map[uuid.UUID]*evaluation.Evaluation),
			slots:       make(map[moduleKey][]evaluation.Slot),
			objectives:  make(map[moduleKey]uuid.UUID),
			questions:   make(map[uuid.UUID][]evaluation.Question),
			completions: make(map[completionKey]*evaluation.Completion),
		},
		level: &levelTable{
			levels:   make(map[uuid.UUID]*level.Level),
			subjects: make(map[uuid.UUID]*level.LevelSubject),
			copilots: make(map[uuid.UUID]*level.GeminiCopilot),
		},
	}
	return db, nil
}
