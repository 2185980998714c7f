package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/bankledger/internal/domain"
)

type authServiceStub struct {
	registerFn func(ctx context.Context, username, password string) error
	loginFn    func(ctx context.Context, username, password string) (string, error)
}

func (s *authServiceStub) Register(ctx context.Context, username, password string) error {
	return s.registerFn(ctx, username, password)
}

func (s *authServiceStub) Login(ctx context.Context, username, password string) (string, error) {
	return s.loginFn(ctx, username, password)
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"success", `{"username":"alice","password":"pw"}`, nil, http.StatusOK, "User registered successfully"},
		{"duplicate", `{"username":"alice","password":"pw"}`, domain.ErrUserExists, http.StatusBadRequest, "User already exists"},
		{"empty username", `{"username":"","password":"pw"}`, domain.ErrInvalidUsername, http.StatusBadRequest, "Username must not be empty"},
		{"bad json", `not json`, nil, http.StatusBadRequest, "Invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&authServiceStub{
				registerFn: func(ctx context.Context, username, password string) error {
					return tt.err
				},
			})

			rec := httptest.NewRecorder()
			handler.Register(rec, httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, resp.Message)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	handler := NewAuthHandler(&authServiceStub{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			if password != "secret" {
				return "", domain.ErrInvalidCredentials
			}
			return "token-for-" + username, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"alice","password":"secret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Token != "token-for-alice" || resp.Message != "Login successful" {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"alice","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Protected(t *testing.T) {
	handler := NewAuthHandler(&authServiceStub{})

	rec := httptest.NewRecorder()
	handler.Protected(rec, authedRequest(http.MethodGet, "/protected", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Message != "Hello, alice!" {
		t.Fatalf("unexpected greeting %q", resp.Message)
	}
}
