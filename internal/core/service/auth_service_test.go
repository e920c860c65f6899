package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const testSecret = "test-secret"

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{ID: "u-1", Nom: "Martin", Email: email, PasswordHash: string(hash), Role: role}
	repo.users[u.ID] = u
	return u
}

func TestAuthService_Register(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour)

	u, err := svc.Register(context.Background(), ports.RegisterInput{
		Nom:      "Martin",
		Prenom:   "Léa",
		Email:    "  Lea.Martin@Example.com ",
		Password: "secret123",
		Role:     "Expediteur",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "lea.martin@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.Role != domain.RoleExpediteur {
		t.Errorf("expected expediteur, got %s", u.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) != nil {
		t.Error("password was not hashed with bcrypt")
	}

	_, err = svc.Register(context.Background(), ports.RegisterInput{
		Nom: "Autre", Email: "lea.martin@example.com", Password: "x", Role: "conducteur",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("duplicate email: expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   ports.RegisterInput
	}{
		{name: "missing email", in: ports.RegisterInput{Nom: "A", Password: "p", Role: "conducteur"}},
		{name: "missing password", in: ports.RegisterInput{Nom: "A", Email: "a@b.c", Role: "conducteur"}},
		{name: "missing nom", in: ports.RegisterInput{Email: "a@b.c", Password: "p", Role: "conducteur"}},
		{name: "unknown role", in: ports.RegisterInput{Nom: "A", Email: "a@b.c", Password: "p", Role: "pilote"}},
		{name: "admin self-registration", in: ports.RegisterInput{Nom: "A", Email: "a@b.c", Password: "p", Role: "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)
			if _, err := svc.Register(context.Background(), tt.in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "driver@example.com", "secret123", domain.RoleConducteur)
	svc := NewAuthService(repo, testSecret, time.Hour)

	token, u, err := svc.Login(context.Background(), "Driver@Example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != "u-1" {
		t.Errorf("expected user u-1, got %q", u.ID)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte(testSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "u-1" || claims["role"] != "conducteur" || claims["email"] != "driver@example.com" {
		t.Errorf("unexpected claims %v", claims)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || time.Until(exp.Time) > time.Hour {
		t.Errorf("unexpected expiry %v (%v)", exp, err)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "driver@example.com", "secret123", domain.RoleConducteur)
	svc := NewAuthService(repo, testSecret, 0)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "driver@example.com", "nope"},
		{"unknown email", "ghost@example.com", "secret123"},
		{"empty password", "driver@example.com", ""},
		{"empty email", "", "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "driver@example.com", "secret123", domain.RoleConducteur)
	svc := NewAuthService(repo, testSecret, time.Hour)

	u, err := svc.Me(context.Background(), "u-1")
	if err != nil || u.Email != "driver@example.com" {
		t.Fatalf("unexpected result %+v, %v", u, err)
	}
	if _, err := svc.Me(context.Background(), "u-404"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
