package echoapi_test

import (
	"net/http"
	"net/url"
	"testing"
)

// The happy path needs a live Drive host; these cover the gate in front of it.
func Test_pdfApi_proxy(t *testing.T) {
	path := func(rawURL string) string {
		return "/v1/pdf-proxy?url=" + url.QueryEscape(rawURL)
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/pdf-proxy", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "url required", path: "/v1/pdf-proxy", token: getToken(t, student),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"url": "this field is required"}),
		},
		{
			name: "host not allowed", path: path("https://evil.test/doc.pdf"), token: getToken(t, student),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "pdf host not allowed"}),
		},
		{
			name: "plain http refused", path: path("http://drive.google.com/doc.pdf"), token: getToken(t, student),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "pdf host not allowed"}),
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
