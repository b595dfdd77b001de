package level

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

type (
	Repository interface {
		GetLevelByID(ctx context.Context, id uuid.UUID) (Level, error)
		QueryLevels(ctx context.Context) ([]Level, error)
		GetLevelSubjectByID(ctx context.Context, id uuid.UUID) (LevelSubject, error)
		GetCopilotByLevel(ctx context.Context, levelID uuid.UUID) (GeminiCopilot, error)
	}

	ServiceInterface interface {
		GetByID(ctx context.Context, id uuid.UUID) (Level, error)
		QueryAll(ctx context.Context) ([]Level, error)
		GetLevelSubject(ctx context.Context, id uuid.UUID) (LevelSubject, error)
		CopilotByLevel(ctx context.Context, levelID uuid.UUID) (GeminiCopilot, error)
		PlansForLevel(ctx context.Context, levelID uuid.UUID) ([]Plan, error)
		AllPlans() []Plan
	}

	service struct {
		repo  Repository
		plans []Plan
	}
)

var _ ServiceInterface = (*service)(nil)

// NewService wires the level domain. The plans dataset is injected, already
// validated by LoadPlans.
func NewService(repo Repository, plans []Plan) ServiceInterface {
	return &service{repo: repo, plans: plans}
}

func (svc *service) GetByID(ctx context.Context, id uuid.UUID) (Level, error) {
	return svc.repo.GetLevelByID(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Level, error) {
	return svc.repo.QueryLevels(ctx)
}

func (svc *service) GetLevelSubject(ctx context.Context, id uuid.UUID) (LevelSubject, error) {
	return svc.repo.GetLevelSubjectByID(ctx, id)
}

func (svc *service) CopilotByLevel(ctx context.Context, levelID uuid.UUID) (GeminiCopilot, error) {
	return svc.repo.GetCopilotByLevel(ctx, levelID)
}

// PlansForLevel returns the plans configured for the level's ordinal,
// cheapest first.
func (svc *service) PlansForLevel(ctx context.Context, levelID uuid.UUID) ([]Plan, error) {
	lvl, err := svc.repo.GetLevelByID(ctx, levelID)
	if err != nil {
		return nil, err
	}
	plans := make([]Plan, 0, len(svc.plans))
	for _, p := range svc.plans {
		if p.LevelOrdinal == lvl.Ordinal {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].PriceCLP < plans[j].PriceCLP })
	return plans, nil
}

func (svc *service) AllPlans() []Plan {
	out := make([]Plan, len(svc.plans))
	copy(out, svc.plans)
	return out
}
