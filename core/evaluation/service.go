package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
)

const moduleEvalsCacheTTL = 5 * time.Minute

type (
	Repository interface {
		GetModuleEvaluations(ctx context.Context, levelSubjectID uuid.UUID, moduleNumber int) (ModuleEvaluations, error)
		GetEvaluationByID(ctx context.Context, id uuid.UUID) (Evaluation, error)
		QueryQuestions(ctx context.Context, evaluationID uuid.UUID) ([]Question, error)
		// QueryReleasedOn returns slots whose release date falls on the given day.
		QueryReleasedOn(ctx context.Context, day time.Time) ([]Slot, error)
		GetCompletion(ctx context.Context, userID, evaluationID uuid.UUID) (Completion, error)
		// CreateCompletion persists a completion; inserting an existing
		// (user, evaluation) pair must be a no-op, not an error.
		CreateCompletion(ctx context.Context, c Completion) error
		QueryCompletions(ctx context.Context, userID, levelSubjectID uuid.UUID) ([]Completion, error)
	}

	ServiceInterface interface {
		ModuleEvaluations(ctx context.Context, usr user.User, levelSubjectID uuid.UUID, moduleNumber int) (ModuleEvaluationsView, error)
		Submit(ctx context.Context, usr user.User, evaluationID uuid.UUID, answers []Answer) (Result, error)
		MarkComplete(ctx context.Context, usr user.User, evaluationID uuid.UUID, score float64, passed bool) error
		CompletedModules(ctx context.Context, userID, levelSubjectID uuid.UUID) (map[int]bool, error)
	}

	service struct {
		conf    *core.Config
		repo    Repository
		cache   core.Cache
		mailSvc core.EmailService
		logger  core.Logger
		now     func() time.Time
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(conf *core.Config, repo Repository, cache core.Cache, mailSvc core.EmailService, logger core.Logger) ServiceInterface {
	return &service{conf: conf, repo: repo, cache: cache, mailSvc: mailSvc, logger: logger, now: time.Now}
}

// NewServiceAt is NewService with an injectable clock.
func NewServiceAt(conf *core.Config, repo Repository, cache core.Cache, mailSvc core.EmailService, logger core.Logger, now func() time.Time) ServiceInterface {
	return &service{conf: conf, repo: repo, cache: cache, mailSvc: mailSvc, logger: logger, now: now}
}

// ModuleEvaluations returns a module's two slots with the student's
// completion state folded in and the release gate derived per slot.
func (svc *service) ModuleEvaluations(ctx context.Context, usr user.User, levelSubjectID uuid.UUID, moduleNumber int) (ModuleEvaluationsView, error) {
	key := core.ModuleEvalsCacheKey(levelSubjectID.String(), moduleNumber) + ":" + usr.ID.String()
	if data, err := svc.cache.Get(ctx, key); err == nil {
		var view ModuleEvaluationsView
		if err = json.Unmarshal(data, &view); err == nil {
			return view, nil
		}
		_ = svc.cache.Delete(ctx, key)
	}

	me, err := svc.repo.GetModuleEvaluations(ctx, levelSubjectID, moduleNumber)
	if err != nil {
		return ModuleEvaluationsView{}, errors.Wrap(err, "querying module evaluations")
	}

	today := svc.now()
	view := ModuleEvaluationsView{
		ModuleNumber:        me.ModuleNumber,
		LevelSubjectID:      me.LevelSubjectID,
		LearningObjectiveID: me.LearningObjectiveID,
		Slots:               make([]SlotView, 0, len(me.Slots)),
	}
	slots := make([]Slot, 0, len(me.Slots))
	for _, slot := range me.Slots {
		if slot.Evaluation != nil {
			if _, err := svc.repo.GetCompletion(ctx, usr.ID, slot.Evaluation.ID); err == nil {
				slot.Completed = true
			} else if err != ErrNotFound {
				return ModuleEvaluationsView{}, errors.Wrap(err, "querying completion")
			}
		}
		slots = append(slots, slot)
		view.Slots = append(view.Slots, View(slot, today))
	}
	view.CanAdvance = CanAdvance(slots)

	if data, err := json.Marshal(view); err == nil {
		if err = svc.cache.Set(ctx, key, data, moduleEvalsCacheTTL); err != nil {
			svc.logger.Warn("caching module evaluations: " + err.Error())
		}
	}
	return view, nil
}

// Submit grades the packaged answers against the evaluation's question set.
// Grading is authoritative here; callers render the verdict, nothing more.
func (svc *service) Submit(ctx context.Context, usr user.User, evaluationID uuid.UUID, answers []Answer) (Result, error) {
	ev, err := svc.repo.GetEvaluationByID(ctx, evaluationID)
	if err != nil {
		return Result{}, err
	}
	questions, err := svc.repo.QueryQuestions(ctx, ev.ID)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying questions")
	}
	return Score(questions, answers, ev.PassingScore)
}

// MarkComplete records a completion. Idempotent: repeating a completed mark
// neither double-counts nor errors. On first success the module-evaluations
// and calendar caches for the track are invalidated so the next read observes
// the write, and the student is emailed their result.
func (svc *service) MarkComplete(ctx context.Context, usr user.User, evaluationID uuid.UUID, score float64, passed bool) error {
	ev, err := svc.repo.GetEvaluationByID(ctx, evaluationID)
	if err != nil {
		return err
	}

	if _, err := svc.repo.GetCompletion(ctx, usr.ID, evaluationID); err == nil {
		return nil // already recorded
	} else if err != ErrNotFound {
		return errors.Wrap(err, "querying completion")
	}

	err = svc.repo.CreateCompletion(ctx, Completion{
		UserID:       usr.ID,
		EvaluationID: evaluationID,
		Score:        score,
		Passed:       passed,
		CompletedAt:  svc.now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "creating completion")
	}

	svc.invalidate(ctx, ev.LevelSubjectID)
	svc.sendResultEmail(usr, ev, score, passed)
	return nil
}

// CompletedModules implements program.CompletionSource: a module counts as
// completed once both of its evaluations have completions.
func (svc *service) CompletedModules(ctx context.Context, userID, levelSubjectID uuid.UUID) (map[int]bool, error) {
	completions, err := svc.repo.QueryCompletions(ctx, userID, levelSubjectID)
	if err != nil {
		return nil, err
	}
	byModule := make(map[int]int)
	for _, c := range completions {
		ev, err := svc.repo.GetEvaluationByID(ctx, c.EvaluationID)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		byModule[ev.ModuleNumber]++
	}
	out := make(map[int]bool, len(byModule))
	for num, n := range byModule {
		out[num] = n >= 2
	}
	return out, nil
}

func (svc *service) invalidate(ctx context.Context, levelSubjectID uuid.UUID) {
	ls := levelSubjectID.String()
	if err := svc.cache.DeletePrefix(ctx, core.ModuleEvalsCachePrefix(ls)); err != nil {
		svc.logger.Warn("invalidating module evaluations cache: " + err.Error())
	}
	if err := svc.cache.DeletePrefix(ctx, core.CalendarCacheKey(ls)); err != nil {
		svc.logger.Warn("invalidating calendar cache: " + err.Error())
	}
}

func (svc *service) sendResultEmail(usr user.User, ev Evaluation, score float64, passed bool) {
	verdict := "Reprobada"
	if passed {
		verdict = "Aprobada"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: fmt.Sprintf("Evaluación %d del módulo %d: %s", ev.Number, ev.ModuleNumber, verdict),
		BodyStr: fmt.Sprintf(
			"Hola %s,\n\nTu evaluación %d del módulo %d fue registrada con un puntaje de %.1f%%.\nResultado: %s.\n",
			usr.Name, ev.Number, ev.ModuleNumber, score, verdict,
		),
	})
}
