package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them
// against a real PostgreSQL instance.
func setupIntegrationServer(t *testing.T) *gin.Engine {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	cfg = loadConfig()
	tmp := t.TempDir()
	cfg.UploadBase = tmp
	cfg.BackupDir = tmp
	initDB()
	r := gin.New()
	setupRoutes(r)
	return r
}

// session carries the cookies and CSRF token of one logged-in client.
type session struct {
	r       http.Handler
	cookies []*http.Cookie
	csrf    string
}

func (s *session) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && s.csrf != "" {
		req.Header.Set(csrfHeader, s.csrf)
	}
	for _, ck := range s.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	s.absorb(rec)
	return rec
}

// absorb merges Set-Cookie responses into the session jar.
func (s *session) absorb(rec *httptest.ResponseRecorder) {
	for _, ck := range rec.Result().Cookies() {
		replaced := false
		for i, have := range s.cookies {
			if have.Name == ck.Name {
				s.cookies[i] = ck
				replaced = true
				break
			}
		}
		if !replaced {
			s.cookies = append(s.cookies, ck)
		}
	}
}

func login(t *testing.T, r http.Handler, username, password string) *session {
	t.Helper()
	s := &session{r: r}

	rec := s.do(t, http.MethodGet, "/api/csrf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csrf failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	var csrfBody map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &csrfBody); err != nil {
		t.Fatalf("csrf body: %v", err)
	}
	s.csrf = csrfBody["token"]

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	return s
}

func TestAdminFullFlow(t *testing.T) {
	r := setupIntegrationServer(t)
	s := login(t, r, "admin", "Test123!")

	// session check
	rec := s.do(t, http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"admin"`) {
		t.Fatalf("me body missing admin user: %s", rec.Body.String())
	}

	// create and list a customer
	rec = s.do(t, http.MethodPost, "/api/customers", map[string]string{
		"companyName": "Testfirma GmbH",
		"lastName":    "Muster",
		"city":        "Berlin",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create customer failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	var customer struct {
		ID uint `json:"ID"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &customer); err != nil || customer.ID == 0 {
		t.Fatalf("create customer response: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/customers?search=Testfirma", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Testfirma") {
		t.Fatalf("list customers status=%d body=%s", rec.Code, rec.Body.String())
	}

	// product needed for the offer
	rec = s.do(t, http.MethodPost, "/api/products", map[string]any{
		"sku":        "TEST-001",
		"name":       "Testartikel",
		"priceCents": 1999,
		"vatRate":    19,
		"stock":      10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create product failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	var product struct {
		ID uint `json:"ID"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &product); err != nil || product.ID == 0 {
		t.Fatalf("create product response: %s", rec.Body.String())
	}

	// offer lifecycle: create draft, send, convert to invoice
	rec = s.do(t, http.MethodPost, "/api/offers", map[string]any{
		"customerId": customer.ID,
		"items": []map[string]any{
			{"productId": product.ID, "quantity": 2},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create offer failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	var offer struct {
		ID     uint   `json:"ID"`
		Number string `json:"Number"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &offer); err != nil || offer.ID == 0 {
		t.Fatalf("create offer response: %s", rec.Body.String())
	}
	if !strings.HasPrefix(offer.Number, "AN-") {
		t.Fatalf("unexpected offer number %q", offer.Number)
	}

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/offers/%d/status", offer.ID), map[string]string{"status": "sent"})
	if rec.Code != http.StatusOK {
		t.Fatalf("offer status failed status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/offers/%d/convert", offer.ID), map[string]string{"target": "invoice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("offer convert failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "RE-") {
		t.Fatalf("converted document has no invoice number: %s", rec.Body.String())
	}

	// document generation
	rec = s.do(t, http.MethodPost, "/api/pdf", map[string]any{"offerId": offer.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf failed status=%d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf response is not a PDF")
	}

	// logout invalidates the session cookies
	rec = s.do(t, http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed status=%d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout status=%d", rec.Code)
	}
}

func TestRefreshFlow(t *testing.T) {
	r := setupIntegrationServer(t)
	s := login(t, r, "admin", "Test123!")

	// drop the access cookie, keep the refresh cookie
	kept := s.cookies[:0]
	for _, ck := range s.cookies {
		if ck.Name != accessCookie {
			kept = append(kept, ck)
		}
	}
	s.cookies = kept

	rec := s.do(t, http.MethodPost, "/api/auth/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me after refresh status=%d body=%s", rec.Code, rec.Body.String())
	}
}
