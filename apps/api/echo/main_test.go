package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/apps/api/echo"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
	cachesvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/cache"
	emailsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/email"
	pdfsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/pdf"
	inmemdb "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/storage/database/inmem"
)

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

var (
	conf *core.Config
	app  echoapi.Server

	usrRepo user.Repository

	// fixtures seeded in TestMain
	admin     user.User // admin:
	student   user.User // student: enrolled in primero/ls
	completer user.User // student: reserved for the completion flow tests
	loginUser user.User // student: reserved for the login flow, lastLogin changes there
	inactive  user.User

	primero level.Level
	ls      level.LevelSubject
	copilot level.GeminiCopilot
	plans   []level.Plan

	module1 program.Module
	module2 program.Module

	eval1 evaluation.Evaluation // released, has questions
	eval2 evaluation.Evaluation // released, second slot of module 1

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

const testPlansDoc = `[
  {"id": "1m-basico-mensual", "levelOrdinal": 1, "name": "Plan Básico Mensual", "priceClp": 29990,
   "billingPeriod": "monthly", "checkoutUrl": "https://pagos.barkleyinstituto.cl/1m-basico-mensual"},
  {"id": "1m-completo-anual", "levelOrdinal": 1, "name": "Plan Completo Anual", "priceClp": 299900,
   "billingPeriod": "yearly", "checkoutUrl": "https://pagos.barkleyinstituto.cl/1m-completo-anual"},
  {"id": "2m-basico-mensual", "levelOrdinal": 2, "name": "Plan Básico Mensual", "priceClp": 31990,
   "billingPeriod": "monthly", "checkoutUrl": "https://pagos.barkleyinstituto.cl/2m-basico-mensual"}
]`

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:        true,
		AppName:         "Barkley Instituto",
		SecretKey:       "secret",
		DefaultFromName: "Barkley Instituto",
		DefaultFromAddr: "noreply@test.cl",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	db, err := inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	programRepo := inmemdb.NewProgramRepository(db)
	evalRepo := inmemdb.NewEvaluationRepository(db)
	lvlRepo := inmemdb.NewLevelRepository(db)

	seedLevels(lvlRepo)
	seedUsers()
	seedModules(programRepo)
	seedEvaluations(evalRepo)

	if plans, err = level.ParsePlans([]byte(testPlansDoc)); err != nil {
		fmt.Printf("level.ParsePlans(): %v", err)
		os.Exit(1)
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	cache := cachesvc.NewMemoryCache()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := testLogger{}

	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	evalSvc := evaluation.NewService(conf, evalRepo, cache, mailSvc, logger)
	programSvc := program.NewService(programRepo, evalSvc, cache, logger)
	lvlSvc := level.NewService(lvlRepo, plans)
	pdfProxy := pdfsvc.NewProxy(logger)

	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			ProgramSvc: programSvc,
			EvalSvc:    evalSvc,
			LevelSvc:   lvlSvc,
			PDFSvc:     pdfProxy,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}

func seedLevels(repo interface {
	SeedLevels(...level.Level)
	SeedLevelSubjects(...level.LevelSubject)
	SeedCopilots(...level.GeminiCopilot)
}) {
	primero = level.Level{ID: uuid.New(), Name: "Primero Medio", Ordinal: 1}
	ls = level.LevelSubject{ID: uuid.New(), LevelID: primero.ID, Subject: "Matemática"}
	copilot = level.GeminiCopilot{
		ID:        uuid.New(),
		LevelID:   primero.ID,
		Name:      "Copiloto Primero Medio",
		PromptURL: "https://gemini.google.com/gem/primero-medio",
	}
	repo.SeedLevels(primero)
	repo.SeedLevelSubjects(ls)
	repo.SeedCopilots(copilot)
}

func seedUsers() {
	now := time.Now().UTC().Truncate(time.Second)
	mkUser := func(name, uname string, roles []string, active bool, levelID *uuid.UUID) user.User {
		usr := user.User{
			ID:        uuid.New(),
			Name:      name,
			Username:  uname,
			Email:     uname + "@test.cl",
			IsActive:  active,
			Roles:     roles,
			LevelID:   levelID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword("LeP@sswd"); err != nil {
			fmt.Printf("SetPassword(): %v", err)
			os.Exit(1)
		}
		usr, err := usrRepo.CreateUser(context.Background(), usr)
		if err != nil {
			fmt.Printf("CreateUser(): %v", err)
			os.Exit(1)
		}
		return usr
	}

	admin = mkUser("Admin", "admin", []string{user.RoleAdmin}, true, nil)
	student = mkUser("Amanda", "amanda", []string{user.RoleStudent}, true, &primero.ID)
	completer = mkUser("Benja", "benja", []string{user.RoleStudent}, true, &primero.ID)
	loginUser = mkUser("Diego", "diego", []string{user.RoleStudent}, true, &primero.ID)
	inactive = mkUser("N Dog", "ndog", []string{user.RoleStudent}, false, nil)
}

func seedModules(repo interface{ SeedModules(...program.Module) }) {
	now := time.Now()
	module1 = program.Module{
		Number:         1,
		LevelSubjectID: ls.ID,
		StartDate:      now.AddDate(0, 0, -14),
		EndDate:        now.AddDate(0, 0, 14),
		Objective: &program.Objective{
			ID:    uuid.New(),
			Code:  "OA-01",
			Title: "Operar con números racionales",
		},
	}
	module2 = program.Module{
		Number:         2,
		LevelSubjectID: ls.ID,
		StartDate:      now.AddDate(0, 1, 0),
		EndDate:        now.AddDate(0, 2, 0),
	}
	repo.SeedModules(module1, module2)
}

func seedEvaluations(repo interface {
	SeedModuleEvaluations(evaluation.ModuleEvaluations)
	SeedQuestions(uuid.UUID, ...evaluation.Question)
}) {
	now := time.Now()
	eval1 = evaluation.Evaluation{ID: uuid.New(), Number: 1, ModuleNumber: 1, LevelSubjectID: ls.ID, PassingScore: 70}
	eval2 = evaluation.Evaluation{ID: uuid.New(), Number: 2, ModuleNumber: 1, LevelSubjectID: ls.ID, PassingScore: 70}
	repo.SeedModuleEvaluations(evaluation.ModuleEvaluations{
		ModuleNumber:        1,
		LevelSubjectID:      ls.ID,
		LearningObjectiveID: module1.Objective.ID,
		Slots: []evaluation.Slot{
			{Number: 1, Title: "Evaluación 1", ReleaseDate: now.AddDate(0, 0, -7), Evaluation: &eval1},
			{Number: 2, Title: "Evaluación 2", ReleaseDate: now.AddDate(0, 0, -1), Evaluation: &eval2},
		},
	})
	repo.SeedQuestions(eval1.ID,
		evaluation.Question{ID: 1, Question: "2 + 2", Options: []string{"3", "4"}, CorrectAnswer: 1, Explanation: "suma directa"},
		evaluation.Question{ID: 2, Question: "5 - 3", Options: []string{"2", "3"}, CorrectAnswer: 0},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(conf, usr)
	token, err := echoapi.GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if l1, ok := j1.([]interface{}); ok {
		if l2, ok := j2.([]interface{}); ok {
			return assert.ElementsMatch(t, l1, l2), nil
		}
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
