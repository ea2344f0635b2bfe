package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupAuth(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	env := setupEnv(t)
	return env, NewAuthService(env.users, "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	_, auth := setupAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "ann@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("registered user has no id")
	}
	if user.PasswordHash == "hunter2" {
		t.Fatal("password stored in plain text")
	}

	token, loggedIn, err := auth.Login(ctx, "ann@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned user %s, want %s", loggedIn.ID, user.ID)
	}

	subject, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if subject != user.ID {
		t.Fatalf("token subject = %s, want %s", subject, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, auth := setupAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ann@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(ctx, "ann@example.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate register: got %v, want ErrEmailTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, auth := setupAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ann@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := auth.Login(ctx, "ann@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, auth := setupAuth(t)
	if _, err := auth.VerifyToken("not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("garbage token: got %v, want ErrInvalidCredentials", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	env, _ := setupAuth(t)
	auth := NewAuthService(env.users, "test-secret", time.Minute)
	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ann@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := auth.Login(ctx, "ann@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := auth.VerifyToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired token: got %v, want ErrInvalidCredentials", err)
	}
}
