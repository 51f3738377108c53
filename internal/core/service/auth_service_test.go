package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const testSecret = "test-secret"

func newAuthFixture() (*AuthService, *stubUserRepo, *stubCreditService) {
	users := newStubUserRepo()
	credits := &stubCreditService{}
	svc := NewAuthService(users, credits, testSecret, time.Hour, discardLogger)
	return svc, users, credits
}

// ---------------------------------------------------------------------------
// Register tests
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, credits := newAuthFixture()

	token, user, err := svc.Register(context.Background(), "ana@example.com", "hunter22", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if token == "" {
		t.Error("expected a token")
	}
	if user.ID == "" {
		t.Error("expected an assigned user id")
	}
	if user.Credits != 3 {
		t.Errorf("expected 3 trial credits, got %d", user.Credits)
	}
	if !user.TrialUsed {
		t.Error("expected trial_used=true")
	}
	if user.TrialExpiresAt == nil {
		t.Fatal("expected a trial expiry")
	}
	wantExpiry := time.Now().UTC().AddDate(0, 0, 7)
	if diff := user.TrialExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("trial expiry: expected ~7 days out, got %v", user.TrialExpiresAt)
	}

	if len(credits.trialGrants) != 1 || credits.trialGrants[0] != 3 {
		t.Errorf("expected one trial grant of 3, got %v", credits.trialGrants)
	}
	stored, err := users.FindByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "hunter22" {
		t.Error("password must be stored hashed")
	}
}

func TestAuthService_Register_TokenCarriesIdentity(t *testing.T) {
	svc, _, _ := newAuthFixture()

	token, user, err := svc.Register(context.Background(), "ana@example.com", "hunter22", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims["user_id"] != user.ID {
		t.Errorf("user_id claim: expected %q, got %v", user.ID, claims["user_id"])
	}
	if claims["email"] != "ana@example.com" {
		t.Errorf("email claim: got %v", claims["email"])
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, _, err := svc.Register(context.Background(), "ana@example.com", "hunter22", "Ana"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, _, err := svc.Register(context.Background(), "ana@example.com", "other-pass", "Ana B")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_EmptyFields(t *testing.T) {
	svc, _, _ := newAuthFixture()

	cases := []struct{ email, password, name string }{
		{"", "pass", "Ana"},
		{"a@example.com", "", "Ana"},
		{"a@example.com", "pass", ""},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(context.Background(), tc.email, tc.password, tc.name); err == nil {
			t.Errorf("register(%q, _, %q): expected error, got nil", tc.email, tc.name)
		}
	}
}

// ---------------------------------------------------------------------------
// Login tests
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, credits := newAuthFixture()
	if _, _, err := svc.Register(context.Background(), "ana@example.com", "hunter22", "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "ana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	// The login balance comes from the credit service so trial expiry has
	// been applied.
	if user.Credits != credits.balance {
		t.Errorf("expected balance %d from credit service, got %d", credits.balance, user.Credits)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	if _, _, err := svc.Register(context.Background(), "ana@example.com", "hunter22", "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
