package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func Test_levelApi_copilotByLevel(t *testing.T) {
	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/gemini-copilots/by-level/" + primero.ID.String(),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "invalid id", path: "/v1/gemini-copilots/by-level/lol", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "unknown level", path: "/v1/gemini-copilots/by-level/" + uuid.NewString(), token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "copilot not found"}),
		},
		{
			name: "copilot for level", path: "/v1/gemini-copilots/by-level/" + primero.ID.String(), token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, copilot),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_levelApi_plans(t *testing.T) {
	tests := []httpTest{
		{name: "Auth required", path: "/v1/plans", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "all plans", path: "/v1/plans", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, plans[0], plans[1], plans[2]),
		},
		{
			name: "plans for level, cheapest first", path: "/v1/plans?levelId=" + primero.ID.String(), token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, plans[0], plans[1]),
		},
		{
			name: "invalid levelId", path: "/v1/plans?levelId=lol", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "unknown level", path: "/v1/plans?levelId=" + uuid.NewString(), token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "level not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
