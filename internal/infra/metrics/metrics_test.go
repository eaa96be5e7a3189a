//go:build !integration

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_ExposesRegisteredCollectors(t *testing.T) {
	IncChatSend("answered")
	ObserveBackendCall("chat", 200, 12)
	SetBuildInfo("test", "abc")

	h := Handler()
	Handler() // registering twice must not panic

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`textbook_chat_sends_total{outcome="answered"}`,
		`textbook_backend_requests_total{code="200",endpoint="chat"}`,
		`textbook_build_info{commit="abc",version="test"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in scrape output", want)
		}
	}
}
