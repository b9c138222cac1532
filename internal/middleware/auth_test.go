package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inhabitapp/inhabit/internal/models"
)

type stubResolver struct {
	user *models.User
	err  error
}

func (s *stubResolver) UserByToken(ctx context.Context, token string) (*models.User, error) {
	return s.user, s.err
}

func TestBearerAuth_ValidToken(t *testing.T) {
	resolver := &stubResolver{user: &models.User{ID: "u1", Name: "Ann"}}

	var seen *models.User
	handler := BearerAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if seen == nil || seen.ID != "u1" {
		t.Errorf("context user = %+v; want u1", seen)
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	handler := BearerAuth(&stubResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rr.Code)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	resolver := &stubResolver{err: errors.New("unauthorized")}
	handler := BearerAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rr.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"well formed", "Bearer abc", "abc"},
		{"case insensitive scheme", "bearer abc", "abc"},
		{"missing", "", ""},
		{"wrong scheme", "Basic abc", ""},
		{"no token", "Bearer", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if got := ExtractBearerToken(req); got != tc.want {
				t.Errorf("ExtractBearerToken(%q) = %q; want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestGetUserFromContext_Empty(t *testing.T) {
	if u := GetUserFromContext(context.Background()); u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
}
