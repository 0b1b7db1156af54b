package port

import (
	"context"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetVerifiedByPhone returns the account holding the phone with
	// phone_verified = true. Unverified rows with the same phone are ignored.
	GetVerifiedByPhone(ctx context.Context, phone string) (*domain.Account, error)
	// GetVerifiedByEmail returns the account holding the email with
	// email_verified = true.
	GetVerifiedByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, account domain.Account) error
}
