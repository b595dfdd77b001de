package evaluation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
	cachesvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/cache"
	emailsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/email"
	inmemdb "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/storage/database/inmem"
)

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

var today = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     evaluation.ServiceInterface
	repo    evaluation.Repository
	lsID    uuid.UUID
	eval1   evaluation.Evaluation
	eval2   evaluation.Evaluation
	student user.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	emailsvc.ClearSentMessages()

	conf := &core.Config{
		TestMode:        true,
		AppName:         "Barkley Instituto",
		DefaultFromName: "Barkley Instituto",
		DefaultFromAddr: "noreply@test.cl",
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewEvaluationRepository(db)

	lsID := uuid.New()
	eval1 := evaluation.Evaluation{ID: uuid.New(), Number: 1, ModuleNumber: 1, LevelSubjectID: lsID, PassingScore: 70}
	eval2 := evaluation.Evaluation{ID: uuid.New(), Number: 2, ModuleNumber: 1, LevelSubjectID: lsID, PassingScore: 70}
	repo.SeedModuleEvaluations(evaluation.ModuleEvaluations{
		ModuleNumber:        1,
		LevelSubjectID:      lsID,
		LearningObjectiveID: uuid.New(),
		Slots: []evaluation.Slot{
			{Number: 1, Title: "Evaluación 1", ReleaseDate: today.AddDate(0, 0, -5), Evaluation: &eval1},
			{Number: 2, Title: "Evaluación 2", ReleaseDate: today.AddDate(0, 0, 5), Evaluation: &eval2},
		},
	})
	repo.SeedQuestions(eval1.ID,
		evaluation.Question{ID: 1, Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0},
		evaluation.Question{ID: 2, Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1},
	)

	student := user.User{ID: uuid.New(), Name: "Amanda", Email: "amanda@test.cl", Roles: []string{user.RoleStudent}}

	svc := evaluation.NewServiceAt(conf, repo, cachesvc.NewMemoryCache(), emailsvc.NewConsoleServiceMock(conf), testLogger{},
		func() time.Time { return today })

	return fixture{svc: svc, repo: repo, lsID: lsID, eval1: eval1, eval2: eval2, student: student}
}

func Test_service_ModuleEvaluations(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	view, err := fx.svc.ModuleEvaluations(ctx, fx.student, fx.lsID, 1)
	if err != nil {
		t.Fatalf("ModuleEvaluations() failed: %v", err)
	}
	if len(view.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(view.Slots))
	}
	if !view.Slots[0].IsReleased {
		t.Error("slot 1 past its release date must be released")
	}
	if view.Slots[1].IsReleased {
		t.Error("slot 2 before its release date must not be released")
	}
	if view.CanAdvance {
		t.Error("CanAdvance with no completions")
	}

	t.Run("unknown module", func(t *testing.T) {
		_, err := fx.svc.ModuleEvaluations(ctx, fx.student, fx.lsID, 9)
		if errors.Cause(err) != evaluation.ErrNotFound {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func Test_service_Submit(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	res, err := fx.svc.Submit(ctx, fx.student, fx.eval1.ID, []evaluation.Answer{{QuestionID: 1, Answer: 0}, {QuestionID: 2, Answer: 0}})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if res.Score != 50 || res.Passed {
		t.Errorf("unexpected result: %+v", res)
	}

	t.Run("unknown evaluation", func(t *testing.T) {
		_, err := fx.svc.Submit(ctx, fx.student, uuid.New(), nil)
		if errors.Cause(err) != evaluation.ErrNotFound {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func Test_service_MarkComplete(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	if err := fx.svc.MarkComplete(ctx, fx.student, fx.eval1.ID, 85, true); err != nil {
		t.Fatalf("MarkComplete() failed: %v", err)
	}

	// read-after-write: the next view observes the completion
	view, err := fx.svc.ModuleEvaluations(ctx, fx.student, fx.lsID, 1)
	if err != nil {
		t.Fatalf("ModuleEvaluations() failed: %v", err)
	}
	if !view.Slots[0].Completed {
		t.Error("slot 1 not completed after MarkComplete")
	}
	if view.CanAdvance {
		t.Error("CanAdvance with one of two completions")
	}

	// result email went out
	if n := len(emailsvc.SentMessages); n != 1 {
		t.Fatalf("sent %d emails, want 1", n)
	}
	if subj := emailsvc.SentMessages[0].Subject; !strings.Contains(subj, "Aprobada") {
		t.Errorf("email subject = %q, want a passing verdict", subj)
	}

	// idempotent: repeating neither errors nor re-mails
	if err := fx.svc.MarkComplete(ctx, fx.student, fx.eval1.ID, 40, false); err != nil {
		t.Fatalf("repeated MarkComplete() failed: %v", err)
	}
	if n := len(emailsvc.SentMessages); n != 1 {
		t.Errorf("sent %d emails after repeat, want 1", n)
	}
	c, err := fx.repo.GetCompletion(ctx, fx.student.ID, fx.eval1.ID)
	if err != nil {
		t.Fatalf("GetCompletion() failed: %v", err)
	}
	if c.Score != 85 || !c.Passed {
		t.Errorf("completion mutated by repeat: %+v", c)
	}

	// completing the second slot unlocks advancement
	if err := fx.svc.MarkComplete(ctx, fx.student, fx.eval2.ID, 90, true); err != nil {
		t.Fatalf("MarkComplete() failed: %v", err)
	}
	view, err = fx.svc.ModuleEvaluations(ctx, fx.student, fx.lsID, 1)
	if err != nil {
		t.Fatalf("ModuleEvaluations() failed: %v", err)
	}
	if !view.CanAdvance {
		t.Error("CanAdvance false with both slots completed")
	}
}

func Test_service_CompletedModules(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	completed, err := fx.svc.CompletedModules(ctx, fx.student.ID, fx.lsID)
	if err != nil {
		t.Fatalf("CompletedModules() failed: %v", err)
	}
	if completed[1] {
		t.Error("module 1 completed with no completions")
	}

	if err := fx.svc.MarkComplete(ctx, fx.student, fx.eval1.ID, 80, true); err != nil {
		t.Fatalf("MarkComplete() failed: %v", err)
	}
	completed, _ = fx.svc.CompletedModules(ctx, fx.student.ID, fx.lsID)
	if completed[1] {
		t.Error("module 1 completed with one of two completions")
	}

	if err := fx.svc.MarkComplete(ctx, fx.student, fx.eval2.ID, 75, true); err != nil {
		t.Fatalf("MarkComplete() failed: %v", err)
	}
	completed, _ = fx.svc.CompletedModules(ctx, fx.student.ID, fx.lsID)
	if !completed[1] {
		t.Error("module 1 not completed with both completions")
	}
}
