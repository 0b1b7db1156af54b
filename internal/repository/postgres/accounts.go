package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/repository"
)

// pgExecutor abstracts pgxpool.Pool and pgx.Tx so repositories can run against
// either, and tests can substitute a mock.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var accountColumns = []string{
	"id",
	"full_name",
	"phone",
	"phone_otp",
	"phone_otp_expires_at",
	"phone_verified",
	"email",
	"email_verification_token",
	"email_verification_expires_at",
	"email_verified",
	"password_hash",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	sql, args, err := r.builder.Insert("accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.FullName,
			account.Phone,
			account.PhoneOTP,
			account.PhoneOTPExpiresAt,
			account.PhoneVerified,
			account.Email,
			account.EmailVerificationToken,
			account.EmailVerificationExpiresAt,
			account.EmailVerified,
			account.PasswordHash,
			account.CreatedAt,
			account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByPhone retrieves an account by phone number.
func (r *AccountRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"phone": phone})
}

// GetByEmail retrieves an account by email address.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetVerifiedByPhone retrieves the account holding the phone with
// phone_verified = true.
func (r *AccountRepository) GetVerifiedByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"phone": phone, "phone_verified": true})
}

// GetVerifiedByEmail retrieves the account holding the email with
// email_verified = true.
func (r *AccountRepository) GetVerifiedByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email, "email_verified": true})
}

// Update persists the mutated account record wholesale. Verification flags,
// challenge pairs, and the password hash all travel through here.
func (r *AccountRepository) Update(ctx context.Context, account domain.Account) error {
	sql, args, err := r.builder.Update("accounts").
		Set("full_name", account.FullName).
		Set("phone", account.Phone).
		Set("phone_otp", account.PhoneOTP).
		Set("phone_otp_expires_at", account.PhoneOTPExpiresAt).
		Set("phone_verified", account.PhoneVerified).
		Set("email", account.Email).
		Set("email_verification_token", account.EmailVerificationToken).
		Set("email_verification_expires_at", account.EmailVerificationExpiresAt).
		Set("email_verified", account.EmailVerified).
		Set("password_hash", account.PasswordHash).
		Set("updated_at", account.UpdatedAt).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, pred squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("accounts").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		account     domain.Account
		phoneOTP    *string
		phoneExpiry *time.Time
		emailToken  *string
		emailExpiry *time.Time
	)

	if err := row.Scan(
		&account.ID,
		&account.FullName,
		&account.Phone,
		&phoneOTP,
		&phoneExpiry,
		&account.PhoneVerified,
		&account.Email,
		&emailToken,
		&emailExpiry,
		&account.EmailVerified,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	account.PhoneOTP = phoneOTP
	account.PhoneOTPExpiresAt = phoneExpiry
	account.EmailVerificationToken = emailToken
	account.EmailVerificationExpiresAt = emailExpiry

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
