package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/safewalk/safewalk/internal/backend"
	"github.com/safewalk/safewalk/internal/store"
)

// mockAuthenticator is a mock backend authenticator for testing.
type mockAuthenticator struct {
	user *backend.User
	err  error
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (*backend.User, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, "backend-token", nil
}

func testUser() *backend.User {
	return &backend.User{
		ID:    "u_1",
		Name:  "Sarah Johnson",
		Email: "sarah@example.com",
		EmergencyContacts: []backend.Contact{
			{Name: "Alex Johnson", Phone: "+1-555-0100"},
		},
	}
}

func newTestService(authenticator Authenticator) (*Service, store.Store) {
	s := store.NewMemoryStore()
	svc := NewService(ServiceConfig{
		Backend: authenticator,
		Store:   s,
		JWT: NewJWTService(JWTConfig{
			SigningKey: "test-signing-key",
			Issuer:     "safewalk",
			Audience:   "safewalk-app",
		}),
	})
	return svc, s
}

func TestService_Login(t *testing.T) {
	svc, s := newTestService(&mockAuthenticator{user: testUser()})

	session, err := svc.Login(context.Background(), "sarah@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.Name != "Sarah Johnson" {
		t.Errorf("user name = %q", session.User.Name)
	}
	if session.Offline {
		t.Error("online login must not be marked offline")
	}

	claims, err := svc.ValidateSessionToken(session.Token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.UserID != "u_1" {
		t.Errorf("claims user ID = %q", claims.UserID)
	}

	if _, err := s.Get(store.KeyAuthToken); err != nil {
		t.Error("session token should be persisted")
	}
	if _, ok := store.GetJSON[backend.User](s, store.KeyCachedUser); !ok {
		t.Error("user profile should be cached")
	}
}

func TestService_Login_Validation(t *testing.T) {
	svc, _ := newTestService(&mockAuthenticator{user: testUser()})

	if _, err := svc.Login(context.Background(), "not-an-email", "secret"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "sarah@example.com", ""); !errors.Is(err, ErrMissingPassword) {
		t.Errorf("expected ErrMissingPassword, got %v", err)
	}
}

func TestService_Login_RejectedCredentials(t *testing.T) {
	svc, _ := newTestService(&mockAuthenticator{err: backend.ErrUnauthorized})

	_, err := svc.Login(context.Background(), "sarah@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Login_OfflineWithCachedProfile(t *testing.T) {
	unreachable := fmt.Errorf("%w: connection refused", backend.ErrUnavailable)
	svc, s := newTestService(&mockAuthenticator{err: unreachable})

	store.SetJSON(s, store.KeyCachedUser, *testUser())

	session, err := svc.Login(context.Background(), "sarah@example.com", "secret")
	if err != nil {
		t.Fatalf("expected offline login to succeed: %v", err)
	}
	if !session.Offline {
		t.Error("cached-profile session must be marked offline")
	}
	if session.User.ID != "u_1" {
		t.Errorf("unexpected user: %+v", session.User)
	}
}

func TestService_Login_OfflineWithoutCachedProfile(t *testing.T) {
	unreachable := fmt.Errorf("%w: connection refused", backend.ErrUnavailable)
	svc, _ := newTestService(&mockAuthenticator{err: unreachable})

	_, err := svc.Login(context.Background(), "sarah@example.com", "secret")
	if !errors.Is(err, ErrLoginUnavailable) {
		t.Errorf("expected ErrLoginUnavailable, got %v", err)
	}
}

func TestService_Login_OfflineCachedProfileDifferentAccount(t *testing.T) {
	unreachable := fmt.Errorf("%w: connection refused", backend.ErrUnavailable)
	svc, s := newTestService(&mockAuthenticator{err: unreachable})

	store.SetJSON(s, store.KeyCachedUser, *testUser())

	_, err := svc.Login(context.Background(), "other@example.com", "secret")
	if !errors.Is(err, ErrLoginUnavailable) {
		t.Errorf("cached profile must not satisfy a different account, got %v", err)
	}
}

func TestService_Logout(t *testing.T) {
	svc, s := newTestService(&mockAuthenticator{user: testUser()})

	if _, err := svc.Login(context.Background(), "sarah@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := s.Get(store.KeyAuthToken); !errors.Is(err, store.ErrNotFound) {
		t.Error("session token should be removed on logout")
	}
	if _, ok := svc.CachedUser(); !ok {
		t.Error("cached profile should survive logout for offline login")
	}
}

func TestJWTService_RejectsForeignToken(t *testing.T) {
	issuer := NewJWTService(JWTConfig{SigningKey: "key-a", Issuer: "safewalk", Audience: "safewalk-app"})
	validator := NewJWTService(JWTConfig{SigningKey: "key-b", Issuer: "safewalk", Audience: "safewalk-app"})

	token, _, err := issuer.GenerateSessionToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := validator.ValidateSessionToken(token); !errors.Is(err, ErrInvalidSessionToken) {
		t.Errorf("expected ErrInvalidSessionToken, got %v", err)
	}
}
