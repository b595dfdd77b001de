package echoapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	echoapi "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/apps/api/echo"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
)

func moduleEvalsPath(moduleNumber int, lsID string) string {
	return fmt.Sprintf("/v1/modules/%d/evaluations?levelSubjectId=%s", moduleNumber, lsID)
}

func getModuleEvals(t *testing.T, token string) evaluation.ModuleEvaluationsView {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, moduleEvalsPath(1, ls.ID.String()), token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var view evaluation.ModuleEvaluationsView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshalling ModuleEvaluationsView: %v", err)
	}
	return view
}

func Test_evaluationApi_moduleEvaluations(t *testing.T) {
	tests := []httpTest{
		{
			name: "Auth required", path: moduleEvalsPath(1, ls.ID.String()),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "missing levelSubjectId", path: "/v1/modules/1/evaluations", token: getToken(t, student),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"levelSubjectId": "a valid level subject id is required"}),
		},
		{
			name: "invalid module number", path: "/v1/modules/uno/evaluations?levelSubjectId=" + ls.ID.String(),
			token:    getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "unknown module", path: moduleEvalsPath(9, ls.ID.String()), token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "evaluation not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("released slots", func(t *testing.T) {
		view := getModuleEvals(t, getToken(t, student))

		if view.ModuleNumber != 1 || view.LevelSubjectID != ls.ID {
			t.Errorf("unexpected view header: %+v", view)
		}
		if len(view.Slots) != 2 {
			t.Fatalf("got %d slots, want 2", len(view.Slots))
		}
		for _, slot := range view.Slots {
			if !slot.IsReleased {
				t.Errorf("slot %d past its release date must be released", slot.Number)
			}
			if slot.Completed {
				t.Errorf("slot %d must not be completed yet", slot.Number)
			}
			if slot.ReleaseDateFormatted == "" {
				t.Errorf("slot %d releaseDateFormatted must be set", slot.Number)
			}
		}
		if view.CanAdvance {
			t.Error("canAdvance with no completions")
		}
	})
}

func Test_evaluationApi_submit(t *testing.T) {
	submitPath := "/v1/evaluations/" + eval1.ID.String() + "/submit"

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: submitPath, body: []byte(`{"answers": [{"questionId": 1, "answer": 1}]}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "empty answers", method: http.MethodPost, path: submitPath, token: getToken(t, student),
			body:     []byte(`{"answers": []}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"answers": "this field is required"}),
		},
		{
			name: "unknown evaluation", method: http.MethodPost, path: "/v1/evaluations/" + uuid.NewString() + "/submit",
			token:    getToken(t, student),
			body:     []byte(`{"answers": [{"questionId": 1, "answer": 1}]}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "evaluation not found"}),
		},
		{
			name: "unknown question", method: http.MethodPost, path: submitPath, token: getToken(t, student),
			body:     []byte(`{"answers": [{"questionId": 99, "answer": 0}]}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("graded submission", func(t *testing.T) {
		body := []byte(`{"answers": [{"questionId": 1, "answer": 1}, {"questionId": 2, "answer": 1}]}`)
		req, rec := newAuthRequest(http.MethodPost, submitPath, getToken(t, student), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var result evaluation.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("unmarshalling Result: %v", err)
		}
		if result.Score != 50 {
			t.Errorf("score = %v, want 50", result.Score)
		}
		if result.TotalCorrect != 1 || result.TotalQuestions != 2 {
			t.Errorf("totals = %d/%d, want 1/2", result.TotalCorrect, result.TotalQuestions)
		}
		if result.Passed {
			t.Error("a score of 50 must not pass a threshold of 70")
		}
		if len(result.Results) != 2 {
			t.Fatalf("got %d question results, want 2", len(result.Results))
		}
		if !result.Results[0].Correct || result.Results[1].Correct {
			t.Errorf("unexpected per-question verdicts: %+v", result.Results)
		}
		if result.Results[0].Explanation != "suma directa" {
			t.Errorf("explanation = %q, want %q", result.Results[0].Explanation, "suma directa")
		}
	})
}

// Test_evaluationApi_complete walks the completion flow end to end with a
// dedicated student so the other tests keep observing a clean slate.
func Test_evaluationApi_complete(t *testing.T) {
	token := getToken(t, completer)
	completeBody := []byte(`{"score": 85, "passed": true}`)
	completed := marchallObj(t, echoapi.SuccessResponse{Success: "evaluation completed"})

	doComplete := func(t *testing.T, evalID uuid.UUID) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/evaluations/"+evalID.String()+"/complete", token, completeBody)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: completed}, rec)
	}

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/evaluations/"+eval1.ID.String()+"/complete", completeBody)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("unknown evaluation", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/evaluations/"+uuid.NewString()+"/complete", token, completeBody)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "evaluation not found"})}, rec)
	})

	t.Run("score out of range", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/evaluations/"+eval1.ID.String()+"/complete", token, []byte(`{"score": 101, "passed": true}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("first completion", func(t *testing.T) {
		doComplete(t, eval1.ID)

		view := getModuleEvals(t, token)
		if !view.Slots[0].Completed {
			t.Error("slot 1 must read back completed")
		}
		if view.Slots[1].Completed {
			t.Error("slot 2 must not be completed")
		}
		if view.CanAdvance {
			t.Error("canAdvance with one of two completions")
		}
	})

	t.Run("repeat completion is a no-op", func(t *testing.T) {
		doComplete(t, eval1.ID)

		view := getModuleEvals(t, token)
		if !view.Slots[0].Completed || view.Slots[1].Completed {
			t.Errorf("repeat completion changed state: %+v", view.Slots)
		}
	})

	t.Run("both slots unlock the next module", func(t *testing.T) {
		doComplete(t, eval2.ID)

		view := getModuleEvals(t, token)
		if !view.CanAdvance {
			t.Error("canAdvance must be true with both slots completed")
		}

		// the calendar cache was invalidated; module 1 now reads completed
		req, rec := newAuthRequest(http.MethodGet, "/v1/level-subjects/"+ls.ID.String()+"/calendar", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var cal program.Calendar
		if err := json.Unmarshal(rec.Body.Bytes(), &cal); err != nil {
			t.Fatalf("unmarshalling Calendar: %v", err)
		}
		if cal.Modules[0].Status != program.StatusCompleted {
			t.Errorf("module 1 status = %v, want %v", cal.Modules[0].Status, program.StatusCompleted)
		}
		if cal.Summary.Completed != 1 {
			t.Errorf("summary.completed = %d, want 1", cal.Summary.Completed)
		}
	})
}
