package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wildhacks-2025/app/internal/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewRouter(NewMemoryStore(), middleware.SignToken).Register(mux)
	srv := httptest.NewServer(middleware.WithAuth(mux))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func registerUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email": email, "password": "correct-horse",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("register status=%d body=%v", res.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "riley@example.com")

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email": "riley@example.com", "password": "correct-horse",
	})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status=%d", res.StatusCode)
	}

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "riley@example.com", "password": "correct-horse",
	})
	if res.StatusCode != http.StatusOK || body["token"] == "" {
		t.Fatalf("login status=%d body=%v", res.StatusCode, body)
	}

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "riley@example.com", "password": "wrong",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status=%d", res.StatusCode)
	}
}

func TestRegisterRejectsBadPayload(t *testing.T) {
	srv := newTestServer(t)
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "correct-horse",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email": "a@b.co", "password": "short",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("short password status=%d, want 400", res.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/profile", "/api/logs", "/api/insights", "/api/calendar/week"} {
		res, _ := doJSON(t, http.MethodGet, srv.URL+path, "", nil)
		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s status=%d, want 401", path, res.StatusCode)
		}
	}
}

func TestLogLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "riley@example.com")

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/logs", token, map[string]any{
		"date":         "2025-05-10",
		"partner_name": "Alex",
		"sex_types":    map[string]any{"kissing": true},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create log status=%d body=%v", res.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("created log has no id")
	}

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/logs", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d", res.StatusCode)
	}
	if n, _ := body["count"].(float64); n != 1 {
		t.Fatalf("count=%v, want 1", body["count"])
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/logs/"+id, token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get by id status=%d", res.StatusCode)
	}

	// Another account cannot see it.
	other := registerUser(t, srv, "sam@example.com")
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/logs/"+id, other, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-account get status=%d, want 404", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/logs/"+id, token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete status=%d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/logs/"+id, token, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted status=%d, want 404", res.StatusCode)
	}
}

func TestCreateLogRejectsBadDate(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "riley@example.com")
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/logs", token, map[string]any{
		"date": "05/10/2025",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", res.StatusCode)
	}
}

func TestInsightsAfterLogging(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "riley@example.com")

	today := timeNowDate()
	_, _ = doJSON(t, http.MethodPost, srv.URL+"/api/logs", token, map[string]any{
		"date":      today,
		"sex_types": map[string]any{"vaginalSexReceiving": true},
	})

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/insights", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("insights status=%d body=%v", res.StatusCode, body)
	}
	risk, _ := body["risk"].(map[string]any)
	if risk == nil {
		t.Fatalf("no risk in %v", body)
	}
	if score, _ := risk["score"].(float64); score != 15 {
		t.Fatalf("score=%v, want 15", risk["score"])
	}
	if level, _ := risk["level"].(string); level != "Moderate" {
		t.Fatalf("level=%v, want Moderate", risk["level"])
	}
}

func TestCalendarEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "riley@example.com")

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/calendar/month?year=2025&month=5", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("month status=%d body=%v", res.StatusCode, body)
	}
	days, _ := body["days"].([]any)
	if len(days) != 35 {
		t.Fatalf("may 2025 grid has %d cells, want 35", len(days))
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/calendar/month?year=2025&month=13", token, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("month 13 status=%d, want 400", res.StatusCode)
	}

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/calendar/week?date=2025-05-15", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("week status=%d body=%v", res.StatusCode, body)
	}
	if days, _ := body["days"].([]any); len(days) != 7 {
		t.Fatalf("week has %d cells, want 7", len(days))
	}
}

func TestProfileRoundTripAndErase(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "riley@example.com")

	res, body := doJSON(t, http.MethodPut, srv.URL+"/api/profile", token, map[string]any{
		"name": "Riley", "age": 24, "sex": "female", "orientation": "bisexual",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("put profile status=%d body=%v", res.StatusCode, body)
	}
	if body["sex_label"] != "Female" {
		t.Fatalf("sex_label=%v", body["sex_label"])
	}

	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/profile/complete", token, nil)
	if res.StatusCode != http.StatusOK || body["onboarding_complete"] != true {
		t.Fatalf("complete status=%d body=%v", res.StatusCode, body)
	}

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/profile/export", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export status=%d", res.StatusCode)
	}
	if body["profile"] == nil {
		t.Fatalf("export missing profile: %v", body)
	}

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/profile", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("erase status=%d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/profile/export", token, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("export after erase status=%d, want 404", res.StatusCode)
	}
}

func timeNowDate() string {
	return time.Now().UTC().Format("2006-01-02")
}
