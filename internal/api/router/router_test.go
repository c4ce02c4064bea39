package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

func TestHealthEndpoint(t *testing.T) {
	h := New(&Config{Logger: logging.Default()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestAdminLeadsRequiresJWT(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	h := New(&Config{
		Logger:          logging.Default(),
		LeadsHandler:    leads.NewHandler(repo, logging.Default()),
		AdminAuthSecret: "secret",
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminLeadsWithValidToken(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	h := New(&Config{
		Logger:          logging.Default(),
		LeadsHandler:    leads.NewHandler(repo, logging.Default()),
		AdminAuthSecret: "secret",
	})

	claims := jwt.RegisteredClaims{
		Subject:   "sales-manager",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestKnowledgeRouteAbsentWithoutHandler(t *testing.T) {
	h := New(&Config{Logger: logging.Default()})

	req := httptest.NewRequest(http.MethodPost, "/knowledge", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatalf("expected knowledge route to be absent")
	}
}

func TestKnowledgeTokenRejected(t *testing.T) {
	mw := requireKnowledgeToken("expected")
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodPost, "/knowledge", nil)
	req.Header.Set("X-Knowledge-Token", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected rejection, called=%v code=%d", called, rec.Code)
	}
}

func TestKnowledgeTokenAccepted(t *testing.T) {
	mw := requireKnowledgeToken("expected")
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodPost, "/knowledge", nil)
	req.Header.Set("X-Knowledge-Token", "expected")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to run")
	}
}

func TestKnowledgeTokenEmptyDisables(t *testing.T) {
	mw := requireKnowledgeToken("")
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodPost, "/knowledge", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected ingestion disabled, called=%v code=%d", called, rec.Code)
	}
}
