package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/repository"
)

// ErrAccountNotFound indicates no account matches the supplied identifier.
var ErrAccountNotFound = errors.New("account not found")

// AccountService exposes read access to account profiles.
type AccountService struct {
	accounts port.AccountRepository
}

// NewAccountService constructs an AccountService.
func NewAccountService(accounts port.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// GetProfile returns the account for the authenticated caller with the
// password hash blanked.
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (domain.Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Account{}, ErrAccountNotFound
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	return account.Sanitized(), nil
}
