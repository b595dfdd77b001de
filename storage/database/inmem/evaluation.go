package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
)

type evaluationRepository struct {
	db *evaluationTable
}

var _ evaluation.Repository = (*evaluationRepository)(nil)

func NewEvaluationRepository(db *DB) *evaluationRepository {
	return &evaluationRepository{db: db.evaluation}
}

// SeedModuleEvaluations registers a module's slot pair and its objective link.
func (repo *evaluationRepository) SeedModuleEvaluations(me evaluation.ModuleEvaluations) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := moduleKey{me.LevelSubjectID, me.ModuleNumber}
	slots := make([]evaluation.Slot, len(me.Slots))
	copy(slots, me.Slots)
	repo.db.slots[key] = slots
	repo.db.objectives[key] = me.LearningObjectiveID
	for _, s := range me.Slots {
		if s.Evaluation != nil {
			ev := *s.Evaluation
			repo.db.evaluations[ev.ID] = &ev
		}
	}
}

func (repo *evaluationRepository) SeedQuestions(evaluationID uuid.UUID, questions ...evaluation.Question) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.questions[evaluationID] = append(repo.db.questions[evaluationID], questions...)
}

func (repo *evaluationRepository) GetModuleEvaluations(_ context.Context, levelSubjectID uuid.UUID, moduleNumber int) (evaluation.ModuleEvaluations, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	key := moduleKey{levelSubjectID, moduleNumber}
	slots, ok := repo.db.slots[key]
	if !ok {
		return evaluation.ModuleEvaluations{}, evaluation.ErrNotFound
	}
	me := evaluation.ModuleEvaluations{
		ModuleNumber:        moduleNumber,
		LevelSubjectID:      levelSubjectID,
		LearningObjectiveID: repo.db.objectives[key],
		Slots:               make([]evaluation.Slot, len(slots)),
	}
	copy(me.Slots, slots)
	return me, nil
}

func (repo *evaluationRepository) GetEvaluationByID(_ context.Context, id uuid.UUID) (evaluation.Evaluation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ev, ok := repo.db.evaluations[id]; ok {
		return *ev, nil
	}
	return evaluation.Evaluation{}, evaluation.ErrNotFound
}

func (repo *evaluationRepository) QueryQuestions(_ context.Context, evaluationID uuid.UUID) ([]evaluation.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	src := repo.db.questions[evaluationID]
	questions := make([]evaluation.Question, len(src))
	copy(questions, src)
	return questions, nil
}

func (repo *evaluationRepository) QueryReleasedOn(_ context.Context, day time.Time) ([]evaluation.Slot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	y, m, d := day.Date()
	var slots []evaluation.Slot
	for _, ss := range repo.db.slots {
		for _, s := range ss {
			ry, rm, rd := s.ReleaseDate.Date()
			if ry == y && rm == m && rd == d {
				slots = append(slots, s)
			}
		}
	}
	return slots, nil
}

func (repo *evaluationRepository) GetCompletion(_ context.Context, userID, evaluationID uuid.UUID) (evaluation.Completion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.completions[completionKey{userID, evaluationID}]; ok {
		return *c, nil
	}
	return evaluation.Completion{}, evaluation.ErrNotFound
}

func (repo *evaluationRepository) CreateCompletion(_ context.Context, c evaluation.Completion) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := completionKey{c.UserID, c.EvaluationID}
	if _, exists := repo.db.completions[key]; exists {
		return nil
	}
	repo.db.completions[key] = &c
	return nil
}

func (repo *evaluationRepository) QueryCompletions(_ context.Context, userID, levelSubjectID uuid.UUID) ([]evaluation.Completion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var completions []evaluation.Completion
	for key, c := range repo.db.completions {
		if key.userID != userID {
			continue
		}
		if ev, ok := repo.db.evaluations[key.evaluationID]; ok && ev.LevelSubjectID == levelSubjectID {
			completions = append(completions, *c)
		}
	}
	sort.Slice(completions, func(i, j int) bool {
		return completions[i].CompletedAt.Before(completions[j].CompletedAt)
	})
	return completions, nil
}
