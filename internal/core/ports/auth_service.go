package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// RegisterInput carries the account details of a new user.
type RegisterInput struct {
	Nom       string
	Prenom    string
	Email     string
	Password  string
	Telephone string
	Role      string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// RateLimiter counts attempts per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
